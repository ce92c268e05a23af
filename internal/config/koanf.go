// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/events"
	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/personalize"
	"github.com/tomtom215/vantage/internal/storage"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vantage/config.yaml",
	"/etc/vantage/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Coi:         coi.DefaultConfig(),
		Personalize: personalize.DefaultConfig(),
		Storage: StorageConfig{
			Badger: storage.BadgerConfig{
				Path:        "/data/vantage/users",
				SyncWrites:  true,
				Compression: true,
				GCRatio:     0.5,
			},
			DuckDB: storage.DuckDBConfig{
				Path:      "/data/vantage/documents.duckdb",
				Threads:   0, // 0 = DuckDB default (all cores)
				MaxMemory: "1GB",
			},
			Breaker:    storage.DefaultBreakerConfig(),
			GCInterval: 10 * time.Minute,
		},
		Events: EventsConfig{
			Enabled:   true,
			Transport: events.DefaultTransportConfig(),
			Router:    events.DefaultRouterConfig(),
		},
		Server: ServerConfig{
			Port:            9464,
			Host:            "0.0.0.0",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			ReadyRateLimit:  120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile loads configuration like LoadWithKoanf but from an explicit
// config file. An empty path loads defaults and environment only.
func LoadFile(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	return loadFrom(path)
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// LOG_LEVEL -> logging.level, COI_THRESHOLD -> coi.threshold
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"personalize.score_weights",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's a string, split by comma
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower case) to koanf paths.
var envMappings = map[string]string{
	// Center of interest mappings
	"coi_shift_factor":      "coi.shift_factor",
	"coi_threshold":         "coi.threshold",
	"coi_min_positive_cois": "coi.min_positive_cois",
	"coi_min_negative_cois": "coi.min_negative_cois",
	"coi_horizon":           "coi.horizon",

	// Personalization mappings
	"personalize_max_documents":      "personalize.max_number_documents",
	"personalize_default_documents":  "personalize.default_number_documents",
	"personalize_max_candidates":     "personalize.max_number_candidates",
	"personalize_max_cois_for_knn":   "personalize.max_cois_for_knn",
	"personalize_interest_tag_bias":  "personalize.interest_tag_bias",
	"personalize_score_weights":      "personalize.score_weights",
	"personalize_rerank_mode":        "personalize.rerank_mode",
	"personalize_store_user_history": "personalize.store_user_history",
	"personalize_max_history_size":   "personalize.max_stateless_history_size",
	"personalize_query_timeout":      "personalize.query_timeout",
	"personalize_queries_per_second": "personalize.queries_per_second",
	"personalize_query_burst":        "personalize.query_burst",

	// Storage mappings
	"badger_path":            "storage.badger.path",
	"badger_in_memory":       "storage.badger.in_memory",
	"badger_sync_writes":     "storage.badger.sync_writes",
	"badger_gc_ratio":        "storage.badger.gc_ratio",
	"badger_gc_interval":     "storage.gc_interval",
	"duckdb_path":            "storage.duckdb.path",
	"duckdb_threads":         "storage.duckdb.threads",
	"duckdb_max_memory":      "storage.duckdb.max_memory",
	"search_breaker_timeout": "storage.breaker.timeout",
	"search_breaker_ratio":   "storage.breaker.failure_ratio",

	// Event mappings
	"events_enabled":       "events.enabled",
	"events_backend":       "events.transport.backend",
	"events_topic":         "events.transport.topic",
	"nats_url":             "events.transport.nats.url",
	"nats_embedded":        "events.transport.nats.embedded",
	"nats_host":            "events.transport.nats.server.host",
	"nats_port":            "events.transport.nats.server.port",
	"nats_store_dir":       "events.transport.nats.server.store_dir",
	"nats_max_memory":      "events.transport.nats.server.jetstream_max_mem",
	"nats_max_store":       "events.transport.nats.server.jetstream_max_store",
	"nats_max_payload":     "events.transport.nats.server.max_payload",
	"nats_ready_timeout":   "events.transport.nats.server.ready_timeout",
	"nats_debug":           "events.transport.nats.server.debug",
	"nats_subscribers":     "events.transport.nats.subscribers_count",
	"nats_durable_name":    "events.transport.nats.durable_name",
	"nats_queue_group":     "events.transport.nats.queue_group",
	"nats_max_deliver":     "events.transport.nats.max_deliver",
	"nats_ack_wait":        "events.transport.nats.ack_wait_timeout",
	"router_retry_count":   "events.router.retry_max_retries",
	"router_retry_delay":   "events.router.retry_initial_interval",
	"router_throttle":      "events.router.throttle_per_second",
	"router_poison_topic":  "events.router.poison_queue_topic",
	"router_close_timeout": "events.router.close_timeout",

	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_ready_rate_limit": "server.ready_rate_limit",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - LOG_LEVEL -> logging.level
//   - COI_HORIZON -> coi.horizon
//   - DUCKDB_PATH -> storage.duckdb.path
//   - NATS_EMBEDDED -> events.transport.nats.embedded
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// ConfigFile returns the config file Load would read: CONFIG_PATH, or the
// first existing entry of DefaultConfigPaths. Empty when there is none.
func ConfigFile() string {
	return findConfigFile()
}

// WatchConfigFile reloads the configuration whenever the file at path
// changes and passes the result to callback. Changes that fail to load or
// validate are logged and skipped; the previous configuration stays in
// effect. The caller is responsible for synchronizing access to anything
// replaced from the callback.
func WatchConfigFile(path string, callback func(*Config)) error {
	provider := file.Provider(path)

	return provider.Watch(func(_ interface{}, err error) {
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Config watch error")
			return
		}
		cfg, err := LoadFile(path)
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid config change")
			return
		}
		callback(cfg)
	})
}

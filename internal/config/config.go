// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/events"
	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/personalize"
	"github.com/tomtom215/vantage/internal/storage"
)

// Config holds all application configuration loaded from defaults, an
// optional config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Configuration Categories:
//
//  1. Personalization:
//     - Coi: Centers of interest (shift factor, threshold, horizon)
//     - Personalize: Retrieval counts, re-ranking and kNN query limits
//
//  2. Infrastructure:
//     - Storage: Badger user store, DuckDB document store, search breaker
//     - Events: Reaction event transport (gochannel or NATS JetStream)
//     - Server: Operational HTTP server (metrics and health)
//
//  3. Observability:
//     - Logging: Log levels and output formats
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Coi         coi.Config         `koanf:"coi"`
	Personalize personalize.Config `koanf:"personalize"`
	Storage     StorageConfig      `koanf:"storage"`
	Events      EventsConfig       `koanf:"events"`
	Server      ServerConfig       `koanf:"server"`
	Logging     LoggingConfig      `koanf:"logging"`
}

// StorageConfig configures the user and document stores.
//
// Environment Variables:
//   - BADGER_PATH: Directory of the Badger user store (default: /data/vantage/users)
//   - BADGER_IN_MEMORY: Keep user state in memory only (default: false)
//   - BADGER_GC_INTERVAL: Value log GC interval, 0 disables (default: 10m)
//   - DUCKDB_PATH: DuckDB document database (default: /data/vantage/documents.duckdb)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
type StorageConfig struct {
	Badger storage.BadgerConfig `koanf:"badger"`
	DuckDB storage.DuckDBConfig `koanf:"duckdb"`

	// Breaker guards the document search.
	Breaker storage.BreakerConfig `koanf:"breaker"`

	// GCInterval is how often the Badger value log is garbage collected.
	GCInterval time.Duration `koanf:"gc_interval" validate:"gte=0"`
}

// EventsConfig configures asynchronous reaction ingestion.
//
// Environment Variables:
//   - EVENTS_ENABLED: Consume reaction events (default: true)
//   - EVENTS_BACKEND: gochannel or nats (default: gochannel)
//   - NATS_URL: External NATS server (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: Start an embedded NATS server (default: false)
type EventsConfig struct {
	Enabled   bool                   `koanf:"enabled"`
	Transport events.TransportConfig `koanf:"transport"`
	Router    events.RouterConfig    `koanf:"router"`
}

// ServerConfig holds the operational HTTP server settings. The server
// exposes Prometheus metrics and health checks only.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"gte=0,lte=65535"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`

	// ReadyRateLimit caps readiness checks per client IP per minute,
	// since each check pings the stores. Zero disables the limit.
	ReadyRateLimit int `koanf:"ready_rate_limit" validate:"gte=0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// ToLogging converts the settings for logging.Init.
func (l LoggingConfig) ToLogging() logging.Config {
	return logging.Config{
		Level:     l.Level,
		Format:    l.Format,
		Caller:    l.Caller,
		Timestamp: true,
		Output:    os.Stderr,
		Service:   "vantage",
	}
}

// Load loads configuration with Koanf. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

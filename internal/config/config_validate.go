// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/vantage/internal/events"
	"github.com/tomtom215/vantage/internal/validation"
)

// Validate checks struct tag constraints first, then the rules that span
// several fields.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}

	if err := c.Coi.Validate(); err != nil {
		return fmt.Errorf("coi: %w", err)
	}

	if err := c.Personalize.Validate(); err != nil {
		return fmt.Errorf("personalize: %w", err)
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateStorage validates the Badger and DuckDB settings
func (c *Config) validateStorage() error {
	badger := c.Storage.Badger
	if !badger.InMemory && badger.Path == "" {
		return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	if badger.GCRatio <= 0 || badger.GCRatio >= 1 {
		return fmt.Errorf("BADGER_GC_RATIO must be in (0, 1), got %v", badger.GCRatio)
	}
	if c.Storage.DuckDB.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must not be negative, got %d", c.Storage.DuckDB.Threads)
	}
	breaker := c.Storage.Breaker
	if breaker.FailureRatio <= 0 || breaker.FailureRatio > 1 {
		return fmt.Errorf("SEARCH_BREAKER_RATIO must be in (0, 1], got %v", breaker.FailureRatio)
	}
	if breaker.Timeout <= 0 {
		return fmt.Errorf("SEARCH_BREAKER_TIMEOUT must be positive, got %v", breaker.Timeout)
	}
	return nil
}

// validateEvents validates the event transport (only if enabled)
func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}

	transport := c.Events.Transport
	if transport.Backend != events.BackendNATS || transport.NATS.Embedded {
		return nil
	}
	if transport.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when EVENTS_BACKEND=nats and NATS_EMBEDDED=false")
	}
	if err := validateBrokerURL(transport.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL: %w", err)
	}
	return nil
}

// brokerSchemes are the URL schemes nats.Connect dials.
var brokerSchemes = map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}

// validateBrokerURL checks each entry of a comma separated NATS server list.
func validateBrokerURL(raw string) error {
	for _, server := range strings.Split(raw, ",") {
		u, err := url.Parse(strings.TrimSpace(server))
		if err != nil {
			return fmt.Errorf("parse %q: %w", server, err)
		}
		if !brokerSchemes[u.Scheme] {
			return fmt.Errorf("unsupported scheme %q in %q (want nats, tls, ws or wss)", u.Scheme, server)
		}
		if u.Host == "" {
			return fmt.Errorf("missing host in %q", server)
		}
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

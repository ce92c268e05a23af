// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vantage/internal/logging"
)

// ServerConfig configures the embedded NATS server that carries reaction
// events in single node deployments.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"gte=-1,lte=65535"`
	StoreDir          string        `koanf:"store_dir"`
	JetStreamMaxMem   int64         `koanf:"jetstream_max_mem" validate:"gte=0"`
	JetStreamMaxStore int64         `koanf:"jetstream_max_store" validate:"gte=0"`
	MaxPayload        int32         `koanf:"max_payload" validate:"gte=0"`
	ReadyTimeout      time.Duration `koanf:"ready_timeout" validate:"gte=0"`
	Debug             bool          `koanf:"debug"`
}

// DefaultServerConfig returns defaults for a single node embedded server.
// A reaction event is a few hundred bytes, so the payload cap is small.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              4222,
		StoreDir:          "/data/vantage/nats",
		JetStreamMaxMem:   64 << 20, // 64MB
		JetStreamMaxStore: 1 << 30,  // 1GB
		MaxPayload:        64 << 10, // 64KB
		ReadyTimeout:      30 * time.Second,
	}
}

// EmbeddedServer is an in-process NATS JetStream server.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// NewEmbeddedServer starts an embedded NATS server and waits until it
// accepts connections. Server logs go to the zerolog stream under
// component=nats.
func NewEmbeddedServer(cfg *ServerConfig) (*EmbeddedServer, error) {
	readyTimeout := cfg.ReadyTimeout
	if readyTimeout <= 0 {
		readyTimeout = 30 * time.Second
	}

	opts := &server.Options{
		ServerName:         "vantage-events",
		Host:               cfg.Host,
		Port:               cfg.Port,
		JetStream:          true,
		StoreDir:           cfg.StoreDir,
		JetStreamMaxMemory: cfg.JetStreamMaxMem,
		JetStreamMaxStore:  cfg.JetStreamMaxStore,
		MaxPayload:         cfg.MaxPayload,
		Debug:              cfg.Debug,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	ns.SetLoggerV2(newServerLogger(logging.WithComponent("nats")), cfg.Debug, false, false)

	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within %v", readyTimeout)
	}
	if !ns.JetStreamEnabled() {
		ns.Shutdown()
		return nil, errors.New("NATS server started without JetStream")
	}

	return &EmbeddedServer{
		server:    ns,
		clientURL: ns.ClientURL(),
	}, nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Shutdown stops the server and waits for it to exit unless ctx ends first.
func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	s.server.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.WaitForShutdown()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// IsRunning reports whether the server is accepting clients.
func (s *EmbeddedServer) IsRunning() bool {
	return s.server.Running()
}

// JetStreamEnabled reports whether JetStream is enabled.
func (s *EmbeddedServer) JetStreamEnabled() bool {
	return s.server.JetStreamEnabled()
}

// serverLogger implements server.Logger on top of zerolog.
type serverLogger struct {
	log zerolog.Logger
}

func newServerLogger(log zerolog.Logger) *serverLogger {
	return &serverLogger{log: log}
}

func (l *serverLogger) Noticef(format string, v ...any) { l.log.Info().Msgf(format, v...) }
func (l *serverLogger) Warnf(format string, v ...any)   { l.log.Warn().Msgf(format, v...) }
func (l *serverLogger) Errorf(format string, v ...any)  { l.log.Error().Msgf(format, v...) }
func (l *serverLogger) Debugf(format string, v ...any)  { l.log.Debug().Msgf(format, v...) }
func (l *serverLogger) Tracef(format string, v ...any)  { l.log.Trace().Msgf(format, v...) }

// Fatalf is logged at error level; the server shuts itself down after it.
func (l *serverLogger) Fatalf(format string, v ...any) { l.log.Error().Bool("fatal", true).Msgf(format, v...) }

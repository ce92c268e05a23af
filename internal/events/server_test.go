// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package events

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog"
)

var _ server.Logger = (*serverLogger)(nil)

func TestServerLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := newServerLogger(zerolog.New(&buf))

	l.Noticef("Listening for client connections on %s", "127.0.0.1:4222")
	l.Warnf("slow consumer %d", 7)
	l.Fatalf("store dir %q not writable", "/nope")

	out := buf.String()
	for _, want := range []string{
		`"level":"info"`,
		`Listening for client connections on 127.0.0.1:4222`,
		`"level":"warn"`,
		`slow consumer 7`,
		`"fatal":true`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got: %s", want, out)
		}
	}
}

func TestDefaultServerConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultServerConfig()
	if cfg.MaxPayload <= 0 || cfg.ReadyTimeout <= 0 {
		t.Errorf("Expected positive payload cap and ready timeout, got %+v", cfg)
	}
	if cfg.JetStreamMaxMem <= 0 || cfg.JetStreamMaxStore <= cfg.JetStreamMaxMem {
		t.Errorf("Expected store limit above memory limit, got %+v", cfg)
	}
}

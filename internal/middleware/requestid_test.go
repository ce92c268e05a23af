// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/vantage/internal/logging"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generates ID when missing", incoming: "", wantSame: false},
		{name: "reuses upstream ID", incoming: "abc-123", wantSame: true},
		{name: "replaces oversized ID", incoming: strings.Repeat("x", maxRequestIDLength+1), wantSame: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ctxID, correlationID string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
				correlationID = logging.CorrelationIDFromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if header == "" {
				t.Fatal("Expected X-Request-ID response header")
			}
			if header != ctxID {
				t.Errorf("Expected context ID %q, got %q", header, ctxID)
			}
			if tt.wantSame && header != tt.incoming {
				t.Errorf("Expected %q, got %q", tt.incoming, header)
			}
			if !tt.wantSame && header == tt.incoming {
				t.Errorf("Expected a generated ID, got %q", header)
			}
			if correlationID == "" {
				t.Error("Expected correlation ID in context")
			}
		})
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	t.Parallel()

	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("Expected empty request ID, got %q", got)
	}
}

// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package services

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/metrics"
)

// GarbageCollector is satisfied by *storage.BadgerStore.
type GarbageCollector interface {
	RunGC() (bool, error)
}

// BadgerGCService runs value log garbage collection of the user store on
// a fixed interval.
//
//	tree.Add(supervisor.LayerUserState, services.NewBadgerGCService(userStore, cfg.Storage.GCInterval))
type BadgerGCService struct {
	gc       GarbageCollector
	interval time.Duration
	name     string
}

// NewBadgerGCService creates a new GC service. An interval of zero
// disables collection.
func NewBadgerGCService(gc GarbageCollector, interval time.Duration) *BadgerGCService {
	return &BadgerGCService{
		gc:       gc,
		interval: interval,
		name:     "badger-gc",
	}
}

// Serve implements suture.Service. GC errors are logged and counted but
// do not stop the service; the next tick tries again.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		logging.Info().Str("service", s.name).Msg("Badger GC disabled")
		return suture.ErrDoNotRestart
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.collect()
		}
	}
}

func (s *BadgerGCService) collect() {
	rewritten, err := s.gc.RunGC()
	switch {
	case err != nil:
		metrics.RecordBadgerGC("error")
		logging.Error().Err(err).Str("service", s.name).Msg("Badger value log GC failed")
	case rewritten:
		metrics.RecordBadgerGC("rewritten")
		logging.Debug().Str("service", s.name).Msg("Badger value log GC rewrote files")
	default:
		metrics.RecordBadgerGC("noop")
	}
}

// String implements fmt.Stringer.
func (s *BadgerGCService) String() string {
	return s.name
}

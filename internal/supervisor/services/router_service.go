// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/vantage/internal/logging"
)

// EventRouter is the lifecycle subset of *events.Router.
//
// A router cannot be run again once closed, so the service builds a new
// one for every run.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a router with its handlers registered.
type RouterFactory func() (EventRouter, error)

// RouterService runs the reaction event router as a supervised service.
//
//	build := func() (services.EventRouter, error) {
//	    router, err := events.NewRouter(&cfg.Events.Router, ps.Publisher, wmLogger)
//	    if err != nil {
//	        return nil, err
//	    }
//	    handler.Register(router, ps.RouterSubscriber())
//	    return router, nil
//	}
//	tree.Add(supervisor.LayerEvents, services.NewRouterService(build, cfg.Events.Router.CloseTimeout))
type RouterService struct {
	build        RouterFactory
	closeTimeout time.Duration
	name         string
}

// NewRouterService creates a new router service. A non-positive
// closeTimeout defaults to 30 seconds.
func NewRouterService(build RouterFactory, closeTimeout time.Duration) *RouterService {
	if closeTimeout <= 0 {
		closeTimeout = 30 * time.Second
	}
	return &RouterService{
		build:        build,
		closeTimeout: closeTimeout,
		name:         "event-router",
	}
}

// Serve implements suture.Service.
//
// A router that stops on its own (for example because the subscription was
// closed by a broker disconnect) is reported as an error so suture
// restarts it with a fresh router.
func (s *RouterService) Serve(ctx context.Context) error {
	router, err := s.build()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Run(ctx)
	}()

	select {
	case err := <-errCh:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			err = errors.New("router stopped unexpectedly")
		}
		return fmt.Errorf("event router: %w", err)

	case <-ctx.Done():
		if err := router.Close(); err != nil {
			logging.Warn().Err(err).Str("service", s.name).Msg("Event router close failed")
		}
		select {
		case <-errCh:
		case <-time.After(s.closeTimeout):
			logging.Warn().Str("service", s.name).Dur("timeout", s.closeTimeout).
				Msg("Event router did not stop in time")
		}
		return ctx.Err()
	}
}

// String implements fmt.Stringer.
func (s *RouterService) String() string {
	return s.name
}

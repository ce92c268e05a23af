// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package supervisor provides Suture-based process supervision for the
// long-running parts of Vantage.
//
// # Tree Layout
//
//	vantage (root)
//	├── user-state
//	│   └── badger-gc          (services.BadgerGCService)
//	├── events
//	│   └── event-router       (services.RouterService)
//	└── ops
//	    └── ops-server         (services.HTTPServerService)
//
// Each layer is its own supervisor, so repeated failures of the event router
// put only the events layer into backoff.
//
// # Usage
//
//	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
//	tree.Add(supervisor.LayerUserState, services.NewBadgerGCService(store, cfg.Storage.GCInterval))
//	tree.Add(supervisor.LayerEvents, services.NewRouterService(buildRouter, closeTimeout))
//	tree.Add(supervisor.LayerOps, services.NewHTTPServerService(server, shutdownTimeout))
//
//	errCh := tree.ServeBackground(ctx)
//
// Supervisor events (restarts, backoff, panics) are logged through
// sutureslog into the zerolog stream.
package supervisor

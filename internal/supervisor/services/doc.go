// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package services adapts Vantage components to suture.Service.
//
// Each wrapper translates a component lifecycle into the blocking
// Serve(ctx) error contract:
//
//   - HTTPServerService: ListenAndServe/Shutdown of the ops server
//   - RouterService: builds and runs a fresh events.Router on every start
//   - BadgerGCService: periodic value log GC of the user store
//
// Serve returns ctx.Err() on a clean shutdown. Any other error makes suture
// restart the service with backoff. BadgerGCService returns
// suture.ErrDoNotRestart when collection is disabled.
package services

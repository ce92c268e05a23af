// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package main

import (
	"errors"
	"fmt"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/config"
	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/personalize"
	"github.com/tomtom215/vantage/internal/storage"
)

// app holds the stores and the engine shared by the commands.
type app struct {
	cfg      *config.Config
	system   *coi.System
	users    *storage.BadgerStore
	docs     *storage.DuckDBStore
	searcher *storage.BreakerSearcher
	engine   *personalize.Engine
}

// openApp opens both stores and builds the engine. The Badger store is
// exclusive: commands other than serve fail while a server holds it.
func openApp(cfg *config.Config) (*app, error) {
	system, err := coi.NewSystem(cfg.Coi)
	if err != nil {
		return nil, err
	}

	users, err := storage.OpenBadgerStore(&cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}

	docs, err := storage.OpenDuckDBStore(&cfg.Storage.DuckDB)
	if err != nil {
		_ = users.Close()
		return nil, fmt.Errorf("open document store: %w", err)
	}

	searcher := storage.NewBreakerSearcher(docs, cfg.Storage.Breaker)
	engine, err := personalize.NewEngine(cfg.Personalize, system, searcher, docs, users, logging.Logger())
	if err != nil {
		_ = docs.Close()
		_ = users.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		system:   system,
		users:    users,
		docs:     docs,
		searcher: searcher,
		engine:   engine,
	}, nil
}

// Close closes both stores.
func (a *app) Close() error {
	var errs []error
	if err := a.docs.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close document store: %w", err))
	}
	if err := a.users.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close user store: %w", err))
	}
	return errors.Join(errs...)
}

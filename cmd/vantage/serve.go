// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/vantage/internal/config"
	"github.com/tomtom215/vantage/internal/events"
	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/metrics"
	"github.com/tomtom215/vantage/internal/supervisor"
	"github.com/tomtom215/vantage/internal/supervisor/services"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reaction consumer, store maintenance and ops server",
		Long: `serve consumes reaction events into user interests, runs user store
garbage collection and exposes /metrics, /health/live and /health/ready.
All long-running parts run under a supervisor tree.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, opts.configPath)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, configPath string) error {
	started := time.Now()
	metrics.SetAppInfo(version)
	logging.Info().Str("version", version).Msg("Starting Vantage")

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing stores")
		}
	}()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), treeCfg)

	checks := map[string]readinessCheck{
		"document_store": a.docs.Ping,
		"search_breaker": func(context.Context) error {
			if state := a.searcher.State(); state == "open" {
				return fmt.Errorf("circuit %s", state)
			}
			return nil
		},
	}

	if _, err := tree.Add(supervisor.LayerUserState, services.NewBadgerGCService(a.users, cfg.Storage.GCInterval)); err != nil {
		return err
	}

	if cfg.Events.Enabled {
		ps, err := startEvents(cfg, a, tree)
		if err != nil {
			return err
		}
		defer func() {
			if err := ps.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event transport")
			}
		}()
		if srv := ps.Embedded(); srv != nil {
			checks["nats_server"] = func(context.Context) error {
				if !srv.IsRunning() {
					return errors.New("embedded server stopped")
				}
				return nil
			}
		}
	} else {
		logging.Info().Msg("Reaction events disabled")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newOpsRouter(started, checks, cfg.Server.ReadyRateLimit),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	if _, err := tree.Add(supervisor.LayerOps, services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout)); err != nil {
		return err
	}
	logging.Info().Str("addr", server.Addr).Msg("Ops server service added")

	watchLogLevel(configPath)

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("Vantage stopped")
	return nil
}

// startEvents creates the transport and adds the reaction router to tree.
func startEvents(cfg *config.Config, a *app, tree *supervisor.Tree) (*events.PubSub, error) {
	wmLogger := events.NewLoggerAdapter(logging.WithComponent("events"))
	ps, err := events.NewPubSub(&cfg.Events.Transport, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create event transport: %w", err)
	}

	handler := events.NewReactionHandler(a.engine, cfg.Events.Transport.Topic, logging.Logger())
	routerCfg := cfg.Events.Router
	build := func() (services.EventRouter, error) {
		router, err := events.NewRouter(&routerCfg, ps.Publisher, wmLogger)
		if err != nil {
			return nil, err
		}
		handler.Register(router, ps.RouterSubscriber())
		return router, nil
	}
	if _, err := tree.Add(supervisor.LayerEvents, services.NewRouterService(build, routerCfg.CloseTimeout)); err != nil {
		_ = ps.Close()
		return nil, err
	}

	logging.Info().
		Str("backend", cfg.Events.Transport.Backend).
		Str("topic", cfg.Events.Transport.Topic).
		Msg("Reaction event router added")
	return ps, nil
}

// watchLogLevel applies log level changes of the config file without a
// restart. Other settings need a restart.
func watchLogLevel(configPath string) {
	if configPath == "" {
		configPath = config.ConfigFile()
	}
	if configPath == "" {
		return
	}
	err := config.WatchConfigFile(configPath, func(next *config.Config) {
		applied := logging.SetLevel(next.Logging.Level)
		logging.Info().Str("log_level", applied.String()).Msg("Log level reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", configPath).Msg("Config file watch disabled")
	}
}

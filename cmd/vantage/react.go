// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package main

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/config"
	"github.com/tomtom215/vantage/internal/events"
	"github.com/tomtom215/vantage/internal/logging"
	"github.com/tomtom215/vantage/internal/models"
)

func newReactCmd(opts *rootOptions) *cobra.Command {
	var (
		polarity string
		viewTime time.Duration
	)

	cmd := &cobra.Command{
		Use:   "react <user> <document>",
		Short: "Publish a reaction or view event to a running server",
		Long: `react publishes one event to the NATS reaction topic. With --view-time a
view time report is sent instead of a reaction. The gochannel transport is
in-process only and cannot be reached from this command.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := models.NewUserID(args[0])
			if err != nil {
				return err
			}
			doc, err := models.NewDocumentID(args[1])
			if err != nil {
				return err
			}

			var event *events.ReactionEvent
			if viewTime > 0 {
				event = events.NewView(user, doc, viewTime, time.Now())
			} else {
				p, err := coi.ParsePolarity(polarity)
				if err != nil {
					return err
				}
				event = events.NewReaction(user, doc, p, time.Now())
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			url, err := reactionBrokerURL(cfg)
			if err != nil {
				return err
			}

			wmLogger := events.NewLoggerAdapter(logging.WithComponent("events"))
			pub, err := events.NewNATSPublisher(url, &cfg.Events.Transport.NATS, wmLogger)
			if err != nil {
				return err
			}
			defer pub.Close()
			publisher := events.NewPublisher(pub, cfg.Events.Transport.Topic)
			publisher.SetCircuitBreaker(events.NewPublishBreaker("react"))
			defer publisher.Close()

			ctx := logging.ContextWithNewCorrelationID(cmd.Context())
			if err := publisher.Publish(ctx, event); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s %s (correlation %s)\n",
				event.Kind, event.EventID, logging.CorrelationIDFromContext(ctx))
			return nil
		},
	}
	cmd.Flags().StringVarP(&polarity, "polarity", "p", "positive", "reaction polarity: positive or negative")
	cmd.Flags().DurationVar(&viewTime, "view-time", 0, "report time spent reading instead of a reaction")
	return cmd
}

// reactionBrokerURL returns the NATS URL a server with cfg consumes from.
func reactionBrokerURL(cfg *config.Config) (string, error) {
	transport := cfg.Events.Transport
	if !cfg.Events.Enabled || transport.Backend != events.BackendNATS {
		return "", errors.New("react needs events enabled with the nats backend")
	}
	if !transport.NATS.Embedded {
		return transport.NATS.URL, nil
	}
	server := transport.NATS.Server
	return "nats://" + net.JoinHostPort(server.Host, strconv.Itoa(server.Port)), nil
}

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

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
)

// Transport backends.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// TransportConfig selects and configures the message transport.
type TransportConfig struct {
	Backend string     `koanf:"backend" validate:"oneof=gochannel nats"`
	Topic   string     `koanf:"topic" validate:"required"`
	NATS    NATSConfig `koanf:"nats"`
}

// NATSConfig configures the JetStream publisher and subscriber.
type NATSConfig struct {
	// URL of the NATS server. Ignored when Embedded is set.
	URL      string       `koanf:"url"`
	Embedded bool         `koanf:"embedded"`
	Server   ServerConfig `koanf:"server"`

	QueueGroup       string        `koanf:"queue_group"`
	DurableName      string        `koanf:"durable_name"`
	SubscribersCount int           `koanf:"subscribers_count" validate:"gte=1"`
	MaxReconnects    int           `koanf:"max_reconnects"`
	ReconnectWait    time.Duration `koanf:"reconnect_wait" validate:"gte=0"`
	ReconnectBuffer  int           `koanf:"reconnect_buffer" validate:"gte=0"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait_timeout" validate:"gt=0"`
	CloseTimeout     time.Duration `koanf:"close_timeout" validate:"gte=0"`
	MaxDeliver       int           `koanf:"max_deliver" validate:"gte=1"`
	MaxAckPending    int           `koanf:"max_ack_pending" validate:"gte=1"`
	TrackMsgID       bool          `koanf:"track_msg_id"`
}

// DefaultTransportConfig returns an in-process transport.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Backend: BackendGoChannel,
		Topic:   TopicReactions,
		NATS: NATSConfig{
			URL:              natsgo.DefaultURL,
			Server:           DefaultServerConfig(),
			QueueGroup:       "vantage",
			DurableName:      "vantage-reactions",
			SubscribersCount: 2,
			MaxReconnects:    -1,
			ReconnectWait:    2 * time.Second,
			ReconnectBuffer:  8 * 1024 * 1024,
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     30 * time.Second,
			MaxDeliver:       5,
			MaxAckPending:    1000,
			TrackMsgID:       true,
		},
	}
}

// PubSub holds the publisher and subscriber of one transport.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	server     *EmbeddedServer
}

// NewPubSub creates the configured transport. With BackendNATS and
// Embedded set, an embedded JetStream server is started first and shut
// down by Close.
func NewPubSub(cfg *TransportConfig, logger watermill.LoggerAdapter) (*PubSub, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	switch cfg.Backend {
	case BackendGoChannel, "":
		ch := NewGoChannel(logger)
		return &PubSub{Publisher: ch, Subscriber: ch}, nil
	case BackendNATS:
		return newNATSPubSub(&cfg.NATS, logger)
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.Backend)
	}
}

// NewGoChannel creates an in-process pub/sub. Every subscriber receives
// every message; messages published without a subscriber are dropped.
func NewGoChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		BlockPublishUntilSubscriberAck: false,
	}, logger)
}

func newNATSPubSub(cfg *NATSConfig, logger watermill.LoggerAdapter) (*PubSub, error) {
	ps := &PubSub{}
	url := cfg.URL
	if cfg.Embedded {
		srv, err := NewEmbeddedServer(&cfg.Server)
		if err != nil {
			return nil, err
		}
		ps.server = srv
		url = srv.ClientURL()
	}

	pub, err := NewNATSPublisher(url, cfg, logger)
	if err != nil {
		ps.closeServer()
		return nil, err
	}
	ps.Publisher = pub

	sub, err := NewNATSSubscriber(url, cfg, logger)
	if err != nil {
		_ = pub.Close()
		ps.closeServer()
		return nil, err
	}
	ps.Subscriber = sub
	return ps, nil
}

func connectionOptions(cfg *NATSConfig, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}
}

// NewNATSPublisher creates a JetStream publisher. Streams are provisioned
// on first use.
func NewNATSPublisher(url string, cfg *NATSConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: connectionOptions(cfg, logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    cfg.TrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	return pub, nil
}

// NewNATSSubscriber creates a durable JetStream subscriber load balanced
// over the configured queue group.
func NewNATSSubscriber(url string, cfg *NATSConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   cfg.AckWaitTimeout,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      connectionOptions(cfg, logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.MaxDeliver(cfg.MaxDeliver),
				natsgo.MaxAckPending(cfg.MaxAckPending),
				natsgo.AckWait(cfg.AckWaitTimeout),
				natsgo.DeliverNew(),
			},
			DurablePrefix: cfg.DurableName,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	return sub, nil
}

// Embedded returns the embedded server, or nil.
func (p *PubSub) Embedded() *EmbeddedServer {
	return p.server
}

// RouterSubscriber returns the subscriber for use by a Router. A Router
// closes its subscribers when it stops; the returned view ignores Close so
// the router can be rebuilt on the same transport. PubSub.Close closes the
// underlying subscriber.
func (p *PubSub) RouterSubscriber() message.Subscriber {
	return keepOpenSubscriber{p.Subscriber}
}

type keepOpenSubscriber struct {
	message.Subscriber
}

func (keepOpenSubscriber) Close() error { return nil }

// Close closes the subscriber, the publisher and the embedded server.
func (p *PubSub) Close() error {
	var errs []error
	if p.Subscriber != nil {
		if err := p.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if p.Publisher != nil {
		if err := p.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	p.closeServer()
	return errors.Join(errs...)
}

func (p *PubSub) closeServer() {
	if p.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = p.server.Shutdown(ctx)
	p.server = nil
}

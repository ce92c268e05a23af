// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names a branch of the tree. Each layer has its own failure
// budget.
type Layer string

// Layers in start order.
const (
	// LayerUserState maintains the user store (Badger value log GC).
	LayerUserState Layer = "user-state"
	// LayerEvents consumes reaction events.
	LayerEvents Layer = "events"
	// LayerOps serves health and metrics endpoints.
	LayerOps Layer = "ops"
)

var layers = []Layer{LayerUserState, LayerEvents, LayerOps}

// TreeConfig holds the restart policy shared by every layer.
type TreeConfig struct {
	// FailureThreshold is the failure score that puts a layer into backoff.
	FailureThreshold float64
	// FailureDecay is the half life of the failure score in seconds.
	FailureDecay float64
	// FailureBackoff is how long a layer waits once over the threshold.
	FailureBackoff time.Duration
	// ShutdownTimeout bounds how long a service may take to stop.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's built-in defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec() suture.Spec {
	return suture.Spec{
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// Tree supervises the long-running parts of the serve command. A crash
// loop in one layer leaves the others running: retrieval keeps its ops
// endpoints while the event router backs off.
type Tree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	config TreeConfig
}

// NewTree builds the root supervisor and one child per layer. Zero values
// in cfg are replaced with defaults. Supervisor events are logged to
// logger through sutureslog.
func NewTree(logger *slog.Logger, cfg TreeConfig) *Tree {
	cfg = cfg.withDefaults()

	// MustHook has a pointer receiver. Children inherit the hook.
	handler := &sutureslog.Handler{Logger: logger}
	rootSpec := cfg.spec()
	rootSpec.EventHook = handler.MustHook()

	t := &Tree{
		root:   suture.New("vantage", rootSpec),
		layers: make(map[Layer]*suture.Supervisor, len(layers)),
		config: cfg,
	}
	for _, layer := range layers {
		sup := suture.New(string(layer), cfg.spec())
		t.root.Add(sup)
		t.layers[layer] = sup
	}
	return t
}

// Add starts svc under layer once the tree is served, or immediately if it
// already is.
func (t *Tree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("unknown supervisor layer %q", layer)
	}
	return sup.Add(svc), nil
}

// ServeBackground runs the tree until ctx is canceled. The channel
// receives one value when the tree has stopped.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that outlived ShutdownTimeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}

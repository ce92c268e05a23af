// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package coi implements the centers of interest (CoI) model of a user.
//
// A CoI is a unit length embedding that summarizes one facet of what a user
// reads. Positive CoIs additionally carry engagement statistics (view count,
// view time, last view), negative CoIs only the time of the last reaction.
//
// # Update Rules
//
// A reaction moves the closest CoI of the same polarity towards the
// document embedding if their similarity reaches Config.Threshold, otherwise
// it creates a new CoI:
//
//	system, err := coi.NewSystem(coi.DefaultConfig())
//	err = system.Reinforce(&interests, docEmbedding, coi.Positive, now)
//
// # Relevance
//
// DecayFactor, Relevances and Weights turn the statistics into time decayed
// scores. Weights is the distribution the personalized kNN search uses to
// split its result budget across CoIs; SelectTop picks the CoIs that take
// part in a search.
//
// # Thread Safety
//
// System is stateless apart from its configuration and may be shared.
// UserInterests values are not synchronized; the host serializes mutations
// per user.
package coi

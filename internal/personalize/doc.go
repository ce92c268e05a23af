// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

/*
Package personalize retrieves and orders documents for a user's centers of
interest.

# Retrieval

The Orchestrator splits the requested count across the user's most
relevant positive CoIs, runs one kNN query per CoI concurrently and merges
the hits with weighted reciprocal rank fusion. Queries that fail are
reported in KnnResult.Failures; the search only fails when every query
does:

	result, err := orch.Search(ctx, personalize.KnnRequest{
	    Interests: &interests,
	    Count:     10,
	    Time:      time.Now(),
	})

Each query runs under Config.QueryTimeout and, when QueriesPerSecond is
set, a shared token bucket limiter.

# Re-ranking

Two modes are available. RerankBlend blends the interest rank and the tag
rank of every document with Config.InterestTagBias. RerankRRF fuses the
retrieval, interest and tag scores with Config.ScoreWeights.

# Engine

Engine combines retrieval and re-ranking with user state from a
storage.UserStore. Reactions and view time updates are serialized per
user. PersonalizeStateless derives the interests from a client supplied
history instead.
*/
package personalize

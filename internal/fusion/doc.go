// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

// Package fusion merges independently produced score maps.
//
// The main combinator is reciprocal rank fusion (RRF): every map is ranked on
// its own and each key receives weight / (k + rank + 1) per map it appears
// in. Contributions are summed per key, so fusion is independent of input
// order and a key found by several sources is boosted.
//
//	fused := fusion.RRF(fusion.DefaultRRFK,
//	    fusion.Weighted[string]{Weight: 0.7, Scores: knnScores},
//	    fusion.Weighted[string]{Weight: 0.3, Scores: lexicalScores},
//	)
//	top := fusion.TakeHighestN(10, fused)
//
// Ties are always broken by key so that results are reproducible.
package fusion

// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package personalize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/vantage/internal/coi"
	"github.com/tomtom215/vantage/internal/filter"
	"github.com/tomtom215/vantage/internal/fusion"
	"github.com/tomtom215/vantage/internal/metrics"
	"github.com/tomtom215/vantage/internal/models"
	"github.com/tomtom215/vantage/internal/storage"
)

// KnnRequest describes a personalized kNN retrieval.
type KnnRequest struct {
	Interests *coi.UserInterests
	// Count is the total number of documents wanted.
	Count int
	// NumCandidates is the total candidate budget. Zero means Count.
	NumCandidates int
	Excluded      []models.DocumentID
	Filter        filter.Filter
	// PublishedAfter optionally restricts results by publication date.
	PublishedAfter *time.Time
	// Time is the logical time used for decay.
	Time time.Time
}

// KnnFailure is a failed per-CoI query.
type KnnFailure struct {
	Coi coi.ID
	Err error
}

// KnnResult is the fused result of a retrieval. Documents are ordered by
// fused score descending, then id descending, and carry the fused score.
// Failures lists the per-CoI queries that failed while others succeeded.
type KnnResult struct {
	Documents []models.PersonalizedDocument
	Failures  []KnnFailure
}

// Budget is the share of a request assigned to one CoI.
type Budget struct {
	Coi           coi.WeightedCoi
	K             int
	NumCandidates int
}

// Orchestrator fans out one kNN query per selected CoI and fuses the results.
// It is safe for concurrent use and never mutates the interests it reads.
type Orchestrator struct {
	searcher storage.Searcher
	horizon  time.Duration
	maxCois  int
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// NewOrchestrator creates an orchestrator over searcher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOrchestrator(searcher storage.Searcher, cfg Config, horizon time.Duration, logger zerolog.Logger) *Orchestrator {
	o := &Orchestrator{
		searcher: searcher,
		horizon:  horizon,
		maxCois:  cfg.MaxCoisForKnn,
		timeout:  cfg.QueryTimeout,
		logger:   logger.With().Str("component", "knn").Logger(),
	}
	if cfg.QueriesPerSecond > 0 {
		burst := cfg.QueryBurst
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(cfg.QueriesPerSecond), burst)
	}
	return o
}

// Budgets selects the top CoIs by weight, normalizes their weights over the
// selection and assigns each k = ceil(w*count) and
// candidates = max(k, ceil(w*numCandidates)).
func Budgets(cois []coi.PositiveCoi, horizon time.Duration, now time.Time, maxCois, count, numCandidates int) []Budget {
	if numCandidates <= 0 {
		numCandidates = count
	}
	weights := coi.Weights(cois, horizon, now)
	selected := coi.NormalizeWeights(coi.SelectTop(cois, weights, maxCois))

	budgets := make([]Budget, 0, len(selected))
	for _, s := range selected {
		k := int(math.Ceil(float64(s.Weight) * float64(count)))
		candidates := max(k, int(math.Ceil(float64(s.Weight)*float64(numCandidates))))
		budgets = append(budgets, Budget{Coi: s, K: k, NumCandidates: candidates})
	}
	return budgets
}

type queryResult struct {
	budget Budget
	docs   []models.PersonalizedDocument
	err    error
}

// Search runs the retrieval. Zero CoIs yield an empty result. If every
// query fails the error wraps ErrRetrievalFailed and the joined query
// errors; otherwise failures are reported in the result.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (o *Orchestrator) Search(ctx context.Context, req KnnRequest) (*KnnResult, error) {
	start := time.Now()
	if req.Interests == nil || len(req.Interests.Positive) == 0 || req.Count <= 0 {
		metrics.RecordRetrieval("empty", time.Since(start), 0)
		return &KnnResult{}, nil
	}

	budgets := Budgets(req.Interests.Positive, o.horizon, req.Time, o.maxCois, req.Count, req.NumCandidates)
	results := o.runQueries(ctx, &req, budgets)

	docs := make(map[models.DocumentID]models.PersonalizedDocument)
	weighted := make([]fusion.Weighted[models.DocumentID], 0, len(results))
	var failures []KnnFailure
	var errs []error
	succeeded := 0

	for _, r := range results {
		if r.err != nil {
			failures = append(failures, KnnFailure{Coi: r.budget.Coi.Coi.ID, Err: r.err})
			errs = append(errs, fmt.Errorf("coi %s: %w", r.budget.Coi.Coi.ID, r.err))
			o.logger.Warn().
				Err(r.err).
				Str("coi", string(r.budget.Coi.Coi.ID)).
				Int("k", r.budget.K).
				Msg("kNN query failed")
			continue
		}
		succeeded++

		scores := make(fusion.Scores[models.DocumentID], len(r.docs))
		for _, doc := range r.docs {
			scores[doc.ID] = doc.Score
			if _, ok := docs[doc.ID]; !ok {
				docs[doc.ID] = doc
			}
		}
		weighted = append(weighted, fusion.Weighted[models.DocumentID]{Weight: r.budget.Coi.Weight, Scores: scores})
	}

	if succeeded == 0 && len(errs) > 0 {
		metrics.RecordRetrieval("failure", time.Since(start), 0)
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailed, errors.Join(errs...))
	}

	// Ceiling the per-CoI budgets can find more than Count documents.
	fused := fusion.TakeHighestN(req.Count, fusion.RRF(fusion.DefaultRRFK, weighted...))
	out := make([]models.PersonalizedDocument, 0, len(fused))
	for _, entry := range fusion.Sorted(fused) {
		doc := docs[entry.Key]
		doc.Score = entry.Score
		out = append(out, doc)
	}

	result := "success"
	if len(failures) > 0 {
		result = "partial"
	}
	metrics.RecordRetrieval(result, time.Since(start), len(out))
	return &KnnResult{Documents: out, Failures: failures}, nil
}

// runQueries issues one query per budget concurrently and waits for all of
// them. Budgets with k = 0 are not queried.
func (o *Orchestrator) runQueries(ctx context.Context, req *KnnRequest, budgets []Budget) []queryResult {
	results := make([]queryResult, 0, len(budgets))
	for _, b := range budgets {
		if b.K > 0 {
			results = append(results, queryResult{budget: b})
		}
	}

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(r *queryResult) {
			defer wg.Done()
			r.docs, r.err = o.query(ctx, req, r.budget)
		}(&results[i])
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) query(ctx context.Context, req *KnnRequest, b Budget) ([]models.PersonalizedDocument, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	start := time.Now()
	docs, err := o.searcher.KNN(ctx, storage.KnnParams{
		Embedding:      b.Coi.Coi.Point,
		K:              b.K,
		NumCandidates:  b.NumCandidates,
		Excluded:       req.Excluded,
		Filter:         req.Filter,
		PublishedAfter: req.PublishedAfter,
		Time:           req.Time,
	})
	metrics.RecordKnnQuery(time.Since(start), err)
	return docs, err
}

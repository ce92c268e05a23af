// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package metrics

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordDBQuery tests database query metric recording
func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful kNN query",
			operation: "knn",
			table:     "documents",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful insert",
			operation: "upsert",
			table:     "documents",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query with short error",
			operation: "get",
			table:     "documents",
			duration:  100 * time.Millisecond,
			err:       errors.New("connection refused"),
		},
		{
			name:      "failed query with long error - should truncate to 50 chars",
			operation: "knn",
			table:     "documents",
			duration:  50 * time.Millisecond,
			err:       errors.New("this is a very long error message that exceeds fifty characters and should be truncated properly"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.CollectAndCount(DBQueryErrors)
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
			after := testutil.CollectAndCount(DBQueryErrors)
			if tt.err == nil && after != before {
				t.Errorf("Expected no new error series, got %d -> %d", before, after)
			}
		})
	}
}

// TestRecordDBQuery_ErrorTruncation verifies error labels are truncated at 50 chars
func TestRecordDBQuery_ErrorTruncation(t *testing.T) {
	long := strings.Repeat("x", 80)
	RecordDBQuery("truncate", "test", time.Millisecond, errors.New(long))

	got := testutil.ToFloat64(DBQueryErrors.WithLabelValues("truncate", "test", long[:50]))
	if got != 1 {
		t.Errorf("Expected truncated error series to be 1, got %v", got)
	}
}

func TestRecordKnnQuery(t *testing.T) {
	success := testutil.ToFloat64(KnnQueries.WithLabelValues("success"))
	failure := testutil.ToFloat64(KnnQueries.WithLabelValues("failure"))

	RecordKnnQuery(time.Millisecond, nil)
	RecordKnnQuery(time.Millisecond, nil)
	RecordKnnQuery(time.Millisecond, errors.New("timeout"))

	if got := testutil.ToFloat64(KnnQueries.WithLabelValues("success")) - success; got != 2 {
		t.Errorf("Expected 2 successful queries, got %v", got)
	}
	if got := testutil.ToFloat64(KnnQueries.WithLabelValues("failure")) - failure; got != 1 {
		t.Errorf("Expected 1 failed query, got %v", got)
	}
}

func TestRecordReinforcement(t *testing.T) {
	before := testutil.ToFloat64(CoiReinforcements.WithLabelValues("positive", "created"))
	RecordReinforcement("positive", "created")
	if got := testutil.ToFloat64(CoiReinforcements.WithLabelValues("positive", "created")) - before; got != 1 {
		t.Errorf("Expected 1 reinforcement, got %v", got)
	}
}

func TestRecordViewTime(t *testing.T) {
	before := testutil.ToFloat64(CoiViewTimeSeconds)
	RecordViewTime(1500 * time.Millisecond)
	RecordViewTime(-time.Second)
	if got := testutil.ToFloat64(CoiViewTimeSeconds) - before; math.Abs(got-1.5) > 1e-9 {
		t.Errorf("Expected 1.5s view time, got %v", got)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	before := testutil.ToFloat64(InterestStoreOperations.WithLabelValues("load", "failure"))
	RecordStoreOperation("load", errors.New("closed"))
	if got := testutil.ToFloat64(InterestStoreOperations.WithLabelValues("load", "failure")) - before; got != 1 {
		t.Errorf("Expected 1 failed load, got %v", got)
	}
}

func TestRecordEventConsumed(t *testing.T) {
	before := testutil.ToFloat64(EventsConsumed.WithLabelValues("reactions", "processed"))
	RecordEventConsumed("reactions", "processed", time.Millisecond)
	RecordEventPublished("reactions")
	if got := testutil.ToFloat64(EventsConsumed.WithLabelValues("reactions", "processed")) - before; got != 1 {
		t.Errorf("Expected 1 processed event, got %v", got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	cbName := "document-search"

	// Test state changes (0=closed, 1=half-open, 2=open)
	CircuitBreakerState.WithLabelValues(cbName).Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(cbName)); got != 2 {
		t.Errorf("Expected open state 2, got %v", got)
	}

	CircuitBreakerRequests.WithLabelValues(cbName, "success").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "failure").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "rejected").Inc()
	CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(5)
	CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open").Inc()
}

func TestAppMetrics(t *testing.T) {
	SetAppInfo("test")
	UpdateUptime(time.Now().Add(-time.Minute))
	if got := testutil.ToFloat64(AppUptime); got < 59 {
		t.Errorf("Expected uptime of about 60s, got %v", got)
	}
}

func TestRecordOpsRequest(t *testing.T) {
	counter := OpsRequests.WithLabelValues("GET", "/health/live", "200")
	before := testutil.ToFloat64(counter)
	RecordOpsRequest("GET", "/health/live", "200", 5*time.Millisecond)
	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("Expected %v requests, got %v", before+1, got)
	}

	active := testutil.ToFloat64(OpsActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(OpsActiveRequests); got != active+1 {
		t.Errorf("Expected %v active requests, got %v", active+1, got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(OpsActiveRequests); got != active {
		t.Errorf("Expected %v active requests, got %v", active, got)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 50
	operationsPerGoroutine := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordKnnQuery(time.Duration(j)*time.Millisecond, nil)
				RecordRetrieval("success", time.Millisecond, j)
				RecordRerank(time.Microsecond)
				RecordCoiCounts(j, 0)
			}
		}()
	}
	wg.Wait()
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		DBQueryDuration,
		DBQueryErrors,
		InterestStoreOperations,
		CoiReinforcements,
		CoiViewTimeSeconds,
		CoisPerUser,
		KnnQueries,
		KnnQueryDuration,
		RetrievalDuration,
		RetrievalDocuments,
		RerankDuration,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerConsecutiveFailures,
		CircuitBreakerTransitions,
		EventsPublished,
		EventsConsumed,
		EventProcessingDuration,
		BadgerGCRuns,
		AppInfo,
		AppUptime,
	}

	for _, m := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordRetrieval("partial", time.Millisecond, 3)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordKnnQuery(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordKnnQuery(10*time.Millisecond, nil)
	}
}

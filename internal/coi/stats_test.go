// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package coi

import (
	"math"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func approxEqual(a, b float32, tolerance float64) bool {
	return math.Abs(float64(a)-float64(b)) <= tolerance
}

func TestDecayFactor_Contract(t *testing.T) {
	horizons := []time.Duration{
		time.Second,
		time.Hour,
		2 * Day,
		30 * Day,
		365 * Day,
	}

	for _, h := range horizons {
		t.Run(h.String(), func(t *testing.T) {
			if got := DecayFactor(h, testNow, testNow); !approxEqual(got, 1, 1e-5) {
				t.Errorf("decay at age 0 = %f, want 1", got)
			}
			if got := DecayFactor(h, testNow, testNow.Add(-h)); got != 0 {
				t.Errorf("decay at age == horizon = %f, want 0", got)
			}
			if got := DecayFactor(h, testNow, testNow.Add(-2*h)); got != 0 {
				t.Errorf("decay beyond horizon = %f, want 0", got)
			}
		})
	}
}

func TestDecayFactor_Monotonic(t *testing.T) {
	horizon := 30 * Day
	prev := float32(2)
	for age := time.Duration(0); age <= 31*Day; age += 6 * time.Hour {
		got := DecayFactor(horizon, testNow, testNow.Add(-age))
		if got > prev {
			t.Fatalf("decay increased at age %s: %f > %f", age, got, prev)
		}
		if got < 0 || got > 1 {
			t.Fatalf("decay at age %s = %f, out of [0, 1]", age, got)
		}
		prev = got
	}
}

func TestDecayFactor_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		horizon  time.Duration
		lastView time.Time
		want     float32
	}{
		{"zero horizon", 0, testNow, 0},
		{"negative horizon", -Day, testNow, 0},
		{"clock skew", 30 * Day, testNow.Add(time.Hour), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecayFactor(tt.horizon, testNow, tt.lastView); got != tt.want {
				t.Errorf("DecayFactor() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDecayFactor_KnownValues(t *testing.T) {
	horizon := 2 * Day
	tests := []struct {
		age  time.Duration
		want float32
	}{
		{12 * time.Hour, 0.73094953},
		{24 * time.Hour, 0.47502083},
		{36 * time.Hour, 0.23157388},
	}
	for _, tt := range tests {
		got := DecayFactor(horizon, testNow, testNow.Add(-tt.age))
		if !approxEqual(got, tt.want, 1e-5) {
			t.Errorf("decay(%s) = %f, want %f", tt.age, got, tt.want)
		}
	}
}

func TestRelevances_Empty(t *testing.T) {
	got := Relevances(nil, 30*Day, testNow)
	if got == nil || len(got) != 0 {
		t.Errorf("Relevances(nil) = %v, want empty non-nil slice", got)
	}
}

func TestRelevances_ZeroHorizon(t *testing.T) {
	cois := []PositiveCoi{
		{ID: "a", Stats: Stats{ViewCount: 3, ViewTime: time.Minute, LastView: testNow}},
		{ID: "b", Stats: Stats{ViewCount: 1, LastView: testNow.Add(-Day)}},
	}
	for i, r := range Relevances(cois, 0, testNow) {
		if r != 0 {
			t.Errorf("relevance[%d] = %f, want 0", i, r)
		}
	}
}

func TestRelevances_Values(t *testing.T) {
	cois := []PositiveCoi{
		{ID: "a", Stats: Stats{ViewCount: 3, ViewTime: 30 * time.Second, LastView: testNow}},
		{ID: "b", Stats: Stats{ViewCount: 1, ViewTime: 10 * time.Second, LastView: testNow}},
	}
	got := Relevances(cois, 30*Day, testNow)

	if !approxEqual(got[0], 0.75+0.75, 1e-5) {
		t.Errorf("relevance[0] = %f, want 1.5", got[0])
	}
	if !approxEqual(got[1], 0.25+0.25, 1e-5) {
		t.Errorf("relevance[1] = %f, want 0.5", got[1])
	}
}

func TestRelevances_ExtremeStatsStayFinite(t *testing.T) {
	cois := []PositiveCoi{
		{ID: "a", Stats: Stats{ViewCount: math.MaxInt, ViewTime: time.Duration(math.MaxInt64), LastView: testNow}},
		{ID: "b", Stats: Stats{ViewCount: math.MaxInt, ViewTime: time.Duration(math.MaxInt64), LastView: testNow}},
		{ID: "c", Stats: Stats{ViewCount: 0, ViewTime: 0, LastView: testNow}},
	}
	for i, r := range Relevances(cois, 30*Day, testNow) {
		if math.IsNaN(float64(r)) || math.IsInf(float64(r), 0) || r < 0 {
			t.Errorf("relevance[%d] = %f, want finite and non-negative", i, r)
		}
	}
}

func TestWeights(t *testing.T) {
	cois := []PositiveCoi{
		{ID: "a", Stats: Stats{ViewCount: 5, LastView: testNow}},
		{ID: "b", Stats: Stats{ViewCount: 1, LastView: testNow.Add(-10 * Day)}},
		{ID: "c", Stats: Stats{ViewCount: 1, LastView: testNow.Add(-40 * Day)}},
	}
	weights := Weights(cois, 30*Day, testNow)

	if len(weights) != len(cois) {
		t.Fatalf("len(weights) = %d, want %d", len(weights), len(cois))
	}
	var sum float32
	for i, w := range weights {
		if w < 0 {
			t.Errorf("weight[%d] = %f, want >= 0", i, w)
		}
		sum += w
	}
	if !approxEqual(sum, 1, 1e-5) {
		t.Errorf("sum(weights) = %f, want 1", sum)
	}
	if !(weights[0] > weights[1]) {
		t.Errorf("frequent recent coi weight %f should exceed %f", weights[0], weights[1])
	}
	if weights[2] != 0 {
		t.Errorf("coi beyond horizon weight = %f, want 0", weights[2])
	}
}

func TestWeights_AllDecayedIsUniform(t *testing.T) {
	cois := []PositiveCoi{
		{ID: "a", Stats: Stats{ViewCount: 1, LastView: testNow.Add(-60 * Day)}},
		{ID: "b", Stats: Stats{ViewCount: 1, LastView: testNow.Add(-90 * Day)}},
	}
	for i, w := range Weights(cois, 30*Day, testNow) {
		if !approxEqual(w, 0.5, 1e-6) {
			t.Errorf("weight[%d] = %f, want 0.5", i, w)
		}
	}
	if got := Weights(nil, 30*Day, testNow); len(got) != 0 {
		t.Errorf("Weights(nil) = %v, want empty", got)
	}
}

func TestSelectTop(t *testing.T) {
	cois := []PositiveCoi{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	weights := []float32{0.1, 0.4, 0.4, 0.1}

	got := SelectTop(cois, weights, 3)
	wantIDs := []ID{"c", "b", "d"}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].Coi.ID != id {
			t.Errorf("selected[%d] = %s, want %s", i, got[i].Coi.ID, id)
		}
	}

	if got := SelectTop(cois, weights, 0); got != nil {
		t.Errorf("SelectTop(n=0) = %v, want nil", got)
	}
	if got := SelectTop(cois, weights, 10); len(got) != 4 {
		t.Errorf("SelectTop(n=10) len = %d, want 4", len(got))
	}
}

func TestNormalizeWeights(t *testing.T) {
	selected := []WeightedCoi{{Weight: 0.2}, {Weight: 0.6}}
	got := NormalizeWeights(selected)
	if !approxEqual(got[0].Weight, 0.25, 1e-6) || !approxEqual(got[1].Weight, 0.75, 1e-6) {
		t.Errorf("NormalizeWeights = %v", got)
	}
	if selected[0].Weight != 0.2 {
		t.Error("NormalizeWeights modified its input")
	}

	zero := NormalizeWeights([]WeightedCoi{{Weight: 0}, {Weight: 0}})
	if zero[0].Weight != 0.5 || zero[1].Weight != 0.5 {
		t.Errorf("zero weights normalized to %v, want uniform", zero)
	}
}

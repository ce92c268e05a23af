// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package embedding

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		values  []float32
		wantErr bool
	}{
		{"valid", []float32{3, 4}, false},
		{"empty", nil, true},
		{"zero vector", []float32{0, 0, 0}, true},
		{"NaN", []float32{1, float32(math.NaN())}, true},
		{"positive infinity", []float32{float32(math.Inf(1)), 1}, true},
		{"negative infinity", []float32{1, float32(math.Inf(-1))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.values)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEmbedding) {
					t.Fatalf("New(%v) error = %v, want ErrInvalidEmbedding", tt.values, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%v) unexpected error: %v", tt.values, err)
			}
			if !approxEqual(e.Norm(), 1) {
				t.Errorf("norm = %f, want 1", e.Norm())
			}
		})
	}
}

func TestNew_DoesNotModifyInput(t *testing.T) {
	values := []float32{3, 4}
	if _, err := New(values); err != nil {
		t.Fatal(err)
	}
	if values[0] != 3 || values[1] != 4 {
		t.Errorf("input modified: %v", values)
	}
}

func TestValidate_Dimension(t *testing.T) {
	e := Embedding{1, 0, 0}
	if err := e.Validate(3); err != nil {
		t.Errorf("Validate(3) = %v, want nil", err)
	}
	if err := e.Validate(4); !errors.Is(err, ErrInvalidEmbedding) {
		t.Errorf("Validate(4) = %v, want ErrInvalidEmbedding", err)
	}
	if err := e.Validate(0); err != nil {
		t.Errorf("Validate(0) = %v, want nil", err)
	}
}

func TestDot(t *testing.T) {
	a, _ := New([]float32{1, 0})
	b, _ := New([]float32{0, 1})
	c, _ := New([]float32{-1, 0})

	if got := a.Dot(a); !approxEqual(got, 1) {
		t.Errorf("a·a = %f, want 1", got)
	}
	if got := a.Dot(b); !approxEqual(got, 0) {
		t.Errorf("a·b = %f, want 0", got)
	}
	if got := a.Dot(c); !approxEqual(got, -1) {
		t.Errorf("a·c = %f, want -1", got)
	}
}

func TestScaleAddClone(t *testing.T) {
	e := Embedding{1, 2}
	sum := e.Scale(2).Add(Embedding{1, 1})
	if sum[0] != 3 || sum[1] != 5 {
		t.Errorf("sum = %v, want [3 5]", sum)
	}

	clone := e.Clone()
	clone[0] = 42
	if e[0] != 1 {
		t.Error("Clone shares memory with the original")
	}
	if Embedding(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestPooling(t *testing.T) {
	tokens := [][]float32{{1, 0}, {0, 1}}

	first, err := PoolingFirst.Pool(tokens)
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(first[0], 1) || !approxEqual(first[1], 0) {
		t.Errorf("first pooling = %v, want [1 0]", first)
	}

	avg, err := PoolingAverage.Pool(tokens)
	if err != nil {
		t.Fatal(err)
	}
	want := float32(1 / math.Sqrt2)
	if !approxEqual(avg[0], want) || !approxEqual(avg[1], want) {
		t.Errorf("average pooling = %v, want [%f %f]", avg, want, want)
	}

	if _, err := PoolingAverage.Pool(nil); !errors.Is(err, ErrInvalidEmbedding) {
		t.Errorf("Pool(nil) error = %v, want ErrInvalidEmbedding", err)
	}
	if _, err := PoolingAverage.Pool([][]float32{{1, 0}, {1}}); !errors.Is(err, ErrInvalidEmbedding) {
		t.Errorf("ragged Pool error = %v, want ErrInvalidEmbedding", err)
	}
}

func TestParsePooling(t *testing.T) {
	tests := []struct {
		in      string
		want    Pooling
		wantErr bool
	}{
		{"", PoolingAverage, false},
		{"average", PoolingAverage, false},
		{"MEAN", PoolingAverage, false},
		{"first", PoolingFirst, false},
		{"cls", PoolingFirst, false},
		{"max", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePooling(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePooling(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePooling(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

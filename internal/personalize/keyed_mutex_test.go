// Vantage - Personalized Document Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vantage

package personalize

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	t.Parallel()
	k := newKeyedMutex()
	var a, b int

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		key, counter := "a", &a
		if i%2 == 1 {
			key, counter = "b", &b
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()
			*counter++
		}()
	}
	wg.Wait()

	if a != 50 || b != 50 {
		t.Errorf("Expected 50 increments per key, got a=%d b=%d", a, b)
	}
	if n := k.size(); n != 0 {
		t.Errorf("Expected all keys released, got %d", n)
	}
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	t.Parallel()
	k := newKeyedMutex()

	unlockA := k.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := k.Lock("b")
		unlock()
		close(done)
	}()
	<-done
	if n := k.size(); n != 1 {
		t.Errorf("Expected 1 live key, got %d", n)
	}
	unlockA()
	if n := k.size(); n != 0 {
		t.Errorf("Expected 0 live keys, got %d", n)
	}
}

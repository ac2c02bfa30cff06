// engine_test.go: tests for the concurrent facade and shard/lock plumbing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import (
	"sync"
	"sync/atomic"
	"testing"
)

// manualTimeProvider lets tests advance the engine's monotonic clock
// deterministically instead of sleeping, the same role the teacher
// library's injected TimeProvider plays in its own tests.
type manualTimeProvider struct {
	nanos atomic.Int64
}

func newManualTimeProvider(start int64) *manualTimeProvider {
	p := &manualTimeProvider{}
	p.nanos.Store(start)
	return p
}

func (p *manualTimeProvider) Now() int64 { return p.nanos.Load() }

func (p *manualTimeProvider) Advance(d int64) { p.nanos.Add(d) }

func newTestEngine(tp TimeProvider) *Engine {
	return WithConfig(Config{
		SweepIntervalMs: 100,
		TimeProvider:    tp,
	})
}

func TestNewAppliesDefaults(t *testing.T) {
	e := New(50)
	defer e.Close()
	if e.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 on a fresh engine", e.Len())
	}
}

func TestWithConfigDefaultShardCount(t *testing.T) {
	e := WithConfig(Config{})
	defer e.Close()
	if len(e.shards) != DefaultShardCount {
		t.Fatalf("shard count = %d, want %d", len(e.shards), DefaultShardCount)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	e := New(10)
	e.StartSweeper()
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

func TestStartSweeperIdempotent(t *testing.T) {
	e := New(10)
	defer e.Close()
	e.StartSweeper()
	e.StartSweeper() // must not panic or double-start
}

func TestShardsForKeysAscendingOrder(t *testing.T) {
	tp := newManualTimeProvider(0)
	e := newTestEngine(tp)
	defer e.Close()

	keys := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	shards := e.shardsForKeys(keys)

	idx := make(map[*shard]int, len(e.shards))
	for i, s := range e.shards {
		idx[s] = i
	}
	for i := 1; i < len(shards); i++ {
		if idx[shards[i-1]] >= idx[shards[i]] {
			t.Fatalf("shardsForKeys not strictly ascending at %d", i)
		}
	}
}

func TestLenCountsOnlyLiveKeys(t *testing.T) {
	tp := newManualTimeProvider(0)
	e := newTestEngine(tp)
	defer e.Close()

	if _, err := e.Set("a", []byte("1"), SetOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Set("b", []byte("2"), SetOptions{ExpireMs: 10}); err != nil {
		t.Fatal(err)
	}
	if e.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", e.Len())
	}

	tp.Advance(20 * 1_000_000)
	if e.Len() != 1 {
		t.Fatalf("Len() after expiry = %d, want 1", e.Len())
	}
}

func TestFlushAllClearsEverything(t *testing.T) {
	tp := newManualTimeProvider(0)
	e := newTestEngine(tp)
	defer e.Close()

	e.Set("a", []byte("1"), SetOptions{})
	e.Set("b", []byte("2"), SetOptions{ExpireMs: 1000})
	e.FlushAll()

	if e.Len() != 0 {
		t.Fatalf("Len() after FlushAll = %d, want 0", e.Len())
	}
	if e.CurrentMemoryUsage() != 0 {
		t.Fatalf("CurrentMemoryUsage() after FlushAll = %d, want 0", e.CurrentMemoryUsage())
	}
	if ttl := e.TTL("b"); ttl != -2 {
		t.Fatalf("TTL(b) after FlushAll = %d, want -2 (expiration schedule must be cleared too)", ttl)
	}
}

func TestConcurrentSAddNoLostUpdates(t *testing.T) {
	tp := newManualTimeProvider(0)
	e := newTestEngine(tp)
	defer e.Close()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(n int) {
			defer wg.Done()
			member := []byte{byte(n)}
			if _, err := e.SAdd("concurrent-set", member); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	card, err := e.SCard("concurrent-set")
	if err != nil {
		t.Fatal(err)
	}
	if card != goroutines {
		t.Fatalf("SCard() = %d, want %d (lost update under concurrent SADD)", card, goroutines)
	}
}

func TestWrongTypeLeavesStateUnchanged(t *testing.T) {
	tp := newManualTimeProvider(0)
	e := newTestEngine(tp)
	defer e.Close()

	if _, err := e.Set("k", []byte("hello"), SetOptions{}); err != nil {
		t.Fatal(err)
	}

	_, err := e.LPush("k", []byte("x"))
	if !IsWrongType(err) {
		t.Fatalf("LPush on a String key: err = %v, want WrongType", err)
	}

	val, ok, err := e.Get("k")
	if err != nil || !ok || string(val) != "hello" {
		t.Fatalf("state changed after failed LPush: val=%q ok=%v err=%v", val, ok, err)
	}
}

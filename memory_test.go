// memory_test.go: tests for the memory accountant and eviction policies
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import "testing"

func TestAccountantAddRemoveMemory(t *testing.T) {
	a := newMemoryAccountant(0, NoEviction, 1)
	a.addMemory("a", 100, false, 0)
	if a.currentTotal() != 100 {
		t.Fatalf("currentTotal() = %d, want 100", a.currentTotal())
	}
	a.removeMemory("a", 100)
	if a.currentTotal() != 0 {
		t.Fatalf("currentTotal() = %d, want 0", a.currentTotal())
	}
}

func TestAccountantEnabled(t *testing.T) {
	a := newMemoryAccountant(0, NoEviction, 1)
	if a.enabled() {
		t.Fatal("enabled() = true with maxMemory=0, want false")
	}
	a.setMaxMemory(100)
	if !a.enabled() {
		t.Fatal("enabled() = false with maxMemory=100, want true")
	}
}

func TestAllKeysLRUEvictsLeastRecentlyAccessed(t *testing.T) {
	a := newMemoryAccountant(100, AllKeysLRU, 1)
	a.addMemory("a", 10, false, 0)
	a.addMemory("b", 10, false, 0)
	a.addMemory("c", 10, false, 0)
	a.recordRead("a") // moves a to back

	victim, ok := a.selectVictim()
	if !ok || victim != "b" {
		t.Fatalf("selectVictim() = (%q, %v), want (b, true)", victim, ok)
	}
}

func TestAllKeysLFUEvictsLowestCounter(t *testing.T) {
	a := newMemoryAccountant(100, AllKeysLFU, 1)
	a.addMemory("a", 10, false, 0)
	a.addMemory("b", 10, false, 0)
	a.recordRead("a")
	a.recordRead("a")

	victim, ok := a.selectVictim()
	if !ok || victim != "b" {
		t.Fatalf("selectVictim() = (%q, %v), want (b, true): b has the lower access counter", victim, ok)
	}
}

func TestVolatilePoliciesOnlyConsiderKeysWithDeadline(t *testing.T) {
	a := newMemoryAccountant(100, VolatileLRU, 1)
	a.addMemory("no-ttl", 10, false, 0)
	a.addMemory("with-ttl", 10, true, 5000)

	victim, ok := a.selectVictim()
	if !ok || victim != "with-ttl" {
		t.Fatalf("selectVictim() = (%q, %v), want (with-ttl, true)", victim, ok)
	}
}

func TestVolatileTTLEvictsEarliestDeadline(t *testing.T) {
	a := newMemoryAccountant(100, VolatileTTL, 1)
	a.addMemory("far", 10, true, 9000)
	a.addMemory("near", 10, true, 1000)

	victim, ok := a.selectVictim()
	if !ok || victim != "near" {
		t.Fatalf("selectVictim() = (%q, %v), want (near, true)", victim, ok)
	}
}

func TestNoEvictionNeverSelectsVictim(t *testing.T) {
	a := newMemoryAccountant(100, NoEviction, 1)
	a.addMemory("a", 10, false, 0)
	if _, ok := a.selectVictim(); ok {
		t.Fatal("selectVictim() under NoEviction returned a victim, want none")
	}
}

func TestVolatileRandomWithNoEligibleKeysFindsNone(t *testing.T) {
	a := newMemoryAccountant(100, VolatileRandom, 1)
	a.addMemory("a", 10, false, 0)
	a.addMemory("b", 10, false, 0)
	if _, ok := a.selectVictim(); ok {
		t.Fatal("selectVictim() under VolatileRandom with no TTL keys returned a victim, want none")
	}
}

func TestProjectedOverflow(t *testing.T) {
	a := newMemoryAccountant(100, NoEviction, 1)
	a.addMemory("a", 50, false, 0)

	overflow, limit, projected := a.projectedOverflow(40)
	if overflow || limit != 100 || projected != 90 {
		t.Fatalf("projectedOverflow(40) = (%v, %d, %d), want (false, 100, 90)", overflow, limit, projected)
	}

	overflow, _, _ = a.projectedOverflow(60)
	if !overflow {
		t.Fatal("projectedOverflow(60) = false, want true (50+60 > 100)")
	}
}

func TestProjectedOverflowUnlimitedIsNeverOverflow(t *testing.T) {
	a := newMemoryAccountant(0, NoEviction, 1)
	a.addMemory("a", 1<<40, false, 0)
	if overflow, _, _ := a.projectedOverflow(1 << 40); overflow {
		t.Fatal("projectedOverflow() with unlimited maxMemory reported overflow")
	}
}

func TestEngineRejectsWriteUnderNoeviction(t *testing.T) {
	tp := newManualTimeProvider(0)
	e := WithConfig(Config{
		SweepIntervalMs: 100,
		TimeProvider:    tp,
		MaxMemory:       1,
		MaxMemoryPolicy: NoEviction,
	})
	defer e.Close()

	_, err := e.Set("k", []byte("a value too big for the budget"), SetOptions{})
	if !IsOutOfMemory(err) {
		t.Fatalf("Set() under a 1-byte noeviction budget: err = %v, want OutOfMemory", err)
	}
	if e.Len() != 0 {
		t.Fatalf("Len() = %d after rejected write, want 0", e.Len())
	}
}

func TestEngineEvictsUnderAllKeysLRU(t *testing.T) {
	tp := newManualTimeProvider(0)
	e := WithConfig(Config{
		SweepIntervalMs: 100,
		TimeProvider:    tp,
		MaxMemory:       140,
		MaxMemoryPolicy: AllKeysLRU,
	})
	defer e.Close()

	if _, err := e.Set("a", []byte("0123456789"), SetOptions{}); err != nil {
		t.Fatalf("Set(a) error = %v", err)
	}
	if _, err := e.Set("b", []byte("0123456789"), SetOptions{}); err != nil {
		t.Fatalf("Set(b) error = %v", err)
	}
	// Touch "a" so it is not the least-recently-used.
	e.Get("a")

	if _, err := e.Set("c", []byte("012345678901234567890123456789"), SetOptions{}); err != nil {
		t.Fatalf("Set(c) error = %v", err)
	}

	if _, ok, _ := e.Get("a"); !ok {
		t.Fatal("recently-read key a was evicted, want it to survive")
	}
	if _, ok, _ := e.Get("b"); ok {
		t.Fatal("least-recently-used key b survived, want it evicted")
	}
	if _, ok, _ := e.Get("c"); !ok {
		t.Fatal("newly-written key c is missing")
	}
}

// hashes_test.go: tests for Hash type operations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import "testing"

func TestHSetReportsOnlyNewFields(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()

	n, err := e.HSet("k", map[string][]byte{"f1": []byte("v1"), "f2": []byte("v2")})
	if err != nil || n != 2 {
		t.Fatalf("HSet() = (%d, %v), want (2, nil)", n, err)
	}

	n, err = e.HSet("k", map[string][]byte{"f1": []byte("updated"), "f3": []byte("v3")})
	if err != nil || n != 1 {
		t.Fatalf("HSet() second call = (%d, %v), want (1, nil): only f3 is new", n, err)
	}

	val, ok, _ := e.HGet("k", "f1")
	if !ok || string(val) != "updated" {
		t.Fatalf("HGet(f1) = (%q, %v), want (updated, true)", val, ok)
	}
}

func TestHSetWrongType(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.Set("k", []byte("v"), SetOptions{})
	if _, err := e.HSet("k", map[string][]byte{"f": []byte("v")}); !IsWrongType(err) {
		t.Fatalf("HSet() on a string key: err = %v, want WrongType", err)
	}
}

func TestHGetMissingFieldOrKey(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	if _, ok, err := e.HGet("missing", "f"); ok || err != nil {
		t.Fatalf("HGet(missing) = (_, %v, %v), want (false, nil)", ok, err)
	}
	e.HSet("k", map[string][]byte{"f1": []byte("v1")})
	if _, ok, err := e.HGet("k", "nope"); ok || err != nil {
		t.Fatalf("HGet(k, nope) = (_, %v, %v), want (false, nil)", ok, err)
	}
}

func TestHMGetMixesHitsAndMisses(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.HSet("k", map[string][]byte{"f1": []byte("v1")})

	got, err := e.HMGet("k", []string{"f1", "missing"})
	if err != nil || len(got) != 2 {
		t.Fatalf("HMGet() = (%v, %v), want 2 entries", got, err)
	}
	if string(got[0]) != "v1" {
		t.Errorf("HMGet()[0] = %q, want v1", got[0])
	}
	if got[1] != nil {
		t.Errorf("HMGet()[1] = %q, want nil", got[1])
	}
}

func TestHGetAllReturnsEveryPair(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.HSet("k", map[string][]byte{"f1": []byte("v1"), "f2": []byte("v2")})

	all, err := e.HGetAll("k")
	if err != nil || len(all) != 2 {
		t.Fatalf("HGetAll() = (%v, %v), want 2 pairs", all, err)
	}
	if string(all["f1"]) != "v1" || string(all["f2"]) != "v2" {
		t.Fatalf("HGetAll() = %v, want f1=v1 f2=v2", all)
	}
}

func TestHKeysAndHVals(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.HSet("k", map[string][]byte{"f1": []byte("v1"), "f2": []byte("v2")})

	keys, err := e.HKeys("k")
	if err != nil || len(keys) != 2 {
		t.Fatalf("HKeys() = (%v, %v), want 2 keys", keys, err)
	}
	vals, err := e.HVals("k")
	if err != nil || len(vals) != 2 {
		t.Fatalf("HVals() = (%v, %v), want 2 values", vals, err)
	}
}

func TestHLenWrongType(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.Set("k", []byte("v"), SetOptions{})
	if _, err := e.HLen("k"); !IsWrongType(err) {
		t.Fatalf("HLen() on a string key: err = %v, want WrongType", err)
	}
}

func TestHExists(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.HSet("k", map[string][]byte{"f1": []byte("v1")})

	ok, err := e.HExists("k", "f1")
	if err != nil || !ok {
		t.Fatalf("HExists(f1) = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = e.HExists("k", "nope")
	if err != nil || ok {
		t.Fatalf("HExists(nope) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestHDelRemovesAndDeletesWhenEmpty(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.HSet("k", map[string][]byte{"f1": []byte("v1"), "f2": []byte("v2")})

	n, err := e.HDel("k", "f1")
	if err != nil || n != 1 {
		t.Fatalf("HDel(f1) = (%d, %v), want (1, nil)", n, err)
	}

	e.HDel("k", "f2")
	if exists := e.Exists("k"); exists != 0 {
		t.Fatal("key survives after its hash became empty, want it removed")
	}
}

func TestHIncrByCreatesFieldAtZero(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()

	n, err := e.HIncrBy("k", "counter", 5)
	if err != nil || n != 5 {
		t.Fatalf("HIncrBy() on absent field = (%d, %v), want (5, nil)", n, err)
	}
	n, err = e.HIncrBy("k", "counter", -2)
	if err != nil || n != 3 {
		t.Fatalf("HIncrBy() = (%d, %v), want (3, nil)", n, err)
	}
}

func TestHIncrByOnNonIntegerFieldIsParseError(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.HSet("k", map[string][]byte{"f": []byte("not a number")})
	if _, err := e.HIncrBy("k", "f", 1); !IsParseError(err) {
		t.Fatalf("HIncrBy() on a non-integer field: err = %v, want ParseError", err)
	}
}

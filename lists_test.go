// lists_test.go: tests for List type operations
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import "testing"

func joinListTest(items [][]byte) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = string(it)
	}
	return out
}

func TestLPushPrependsInReverseArgOrder(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()

	n, err := e.LPush("k", []byte("a"), []byte("b"), []byte("c"))
	if err != nil || n != 3 {
		t.Fatalf("LPush() = (%d, %v), want (3, nil)", n, err)
	}
	got, err := e.LRange("k", 0, -1)
	if err != nil {
		t.Fatalf("LRange() error = %v", err)
	}
	want := []string{"c", "b", "a"}
	if got2 := joinListTest(got); !equalStrings(got2, want) {
		t.Fatalf("LRange() = %v, want %v", got2, want)
	}
}

func TestRPushAppendsInArgOrder(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()

	e.RPush("k", []byte("a"), []byte("b"), []byte("c"))
	got, _ := e.LRange("k", 0, -1)
	want := []string{"a", "b", "c"}
	if got2 := joinListTest(got); !equalStrings(got2, want) {
		t.Fatalf("LRange() = %v, want %v", got2, want)
	}
}

func TestPushWrongType(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.Set("k", []byte("v"), SetOptions{})
	if _, err := e.LPush("k", []byte("x")); !IsWrongType(err) {
		t.Fatalf("LPush() on a string key: err = %v, want WrongType", err)
	}
}

func TestLPopRemovesFrontAndDeletesWhenEmpty(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.RPush("k", []byte("a"), []byte("b"))

	popped, ok, err := e.LPop("k", 1)
	if err != nil || !ok || len(popped) != 1 || string(popped[0]) != "a" {
		t.Fatalf("LPop() = (%v, %v, %v), want ([a], true, nil)", popped, ok, err)
	}

	popped, ok, err = e.LPop("k", 1)
	if err != nil || !ok || string(popped[0]) != "b" {
		t.Fatalf("second LPop() = (%v, %v, %v), want ([b], true, nil)", popped, ok, err)
	}

	if n, _ := e.LLen("k"); n != 0 {
		t.Fatalf("LLen() after popping everything = %d, want 0", n)
	}
	if exists := e.Exists("k"); exists != 0 {
		t.Fatal("key survives after its list became empty, want it removed")
	}
}

func TestRPopReversesBackToFrontOrder(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.RPush("k", []byte("a"), []byte("b"), []byte("c"))

	popped, ok, err := e.RPop("k", 2)
	if err != nil || !ok {
		t.Fatalf("RPop() = (%v, %v, %v)", popped, ok, err)
	}
	want := []string{"c", "b"}
	if got := joinListTest(popped); !equalStrings(got, want) {
		t.Fatalf("RPop(2) = %v, want %v", got, want)
	}
}

func TestPopOnAbsentKey(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	popped, ok, err := e.LPop("missing", 1)
	if err != nil || ok || popped != nil {
		t.Fatalf("LPop(missing) = (%v, %v, %v), want (nil, false, nil)", popped, ok, err)
	}
}

func TestLLenWrongType(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.Set("k", []byte("v"), SetOptions{})
	if _, err := e.LLen("k"); !IsWrongType(err) {
		t.Fatalf("LLen() on a string key: err = %v, want WrongType", err)
	}
}

func TestLRangeNegativeIndices(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.RPush("k", []byte("a"), []byte("b"), []byte("c"), []byte("d"))

	got, err := e.LRange("k", -2, -1)
	if err != nil {
		t.Fatalf("LRange() error = %v", err)
	}
	want := []string{"c", "d"}
	if g := joinListTest(got); !equalStrings(g, want) {
		t.Fatalf("LRange(-2,-1) = %v, want %v", g, want)
	}
}

func TestLIndexNegativeAndOutOfRange(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	e.RPush("k", []byte("a"), []byte("b"), []byte("c"))

	val, ok, err := e.LIndex("k", -1)
	if err != nil || !ok || string(val) != "c" {
		t.Fatalf("LIndex(-1) = (%q, %v, %v), want (c, true, nil)", val, ok, err)
	}

	_, ok, err = e.LIndex("k", 100)
	if err != nil || ok {
		t.Fatalf("LIndex(100) = (_, %v, %v), want (false, nil)", ok, err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// sets.go: Set type operations (SADD/SREM and friends)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import "time"

const opSAdd, opSRem, opSMembers, opSIsMember, opSCard, opSPop =
	"SADD", "SREM", "SMEMBERS", "SISMEMBER", "SCARD", "SPOP"

// SAdd adds members to the Set at key, creating it if absent. Returns
// the number of members actually added (duplicates don't count). Returns
// WrongType if key holds a non-Set value.
func (e *Engine) SAdd(key string, members ...[]byte) (added int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opSAdd, start, err) }()

	var growth int64
	for _, m := range members {
		growth += int64(len(m)) + setEntryOverhead
	}
	if err := e.reserveGrowth(growth); err != nil {
		return 0, err
	}

	s := e.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	prev, exists := s.data[key]
	if exists && prev.expired(now) {
		exists = false
	}

	// Always build a fresh map rather than mutating prev.value.set in
	// place: getLive hands out the shared *entry after releasing its
	// RLock, so a reader iterating the old map while we mutate it here
	// would race (concurrent map read and map write).
	var hasDeadline bool
	var deadline int64
	set := make(map[string]struct{})
	if exists {
		if prev.value.Kind() != KindSet {
			return 0, typeMismatch(key, prev.value.Kind(), KindSet)
		}
		for m := range prev.value.set {
			set[m] = struct{}{}
		}
		hasDeadline, deadline = prev.hasDeadline, prev.deadline
	}

	for _, m := range members {
		ms := string(m)
		if _, ok := set[ms]; !ok {
			set[ms] = struct{}{}
			added++
		}
	}

	ent := &entry{value: Value{kind: KindSet, set: set}, hasDeadline: hasDeadline, deadline: deadline}
	e.storeEntryLocked(s, key, ent)
	return added, nil
}

// SRem removes members from the Set at key. If the set becomes empty,
// the key is removed entirely. Returns the number of members actually
// removed.
func (e *Engine) SRem(key string, members ...[]byte) (removed int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opSRem, start, err) }()

	s := e.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	prev, exists := s.data[key]
	if !exists || prev.expired(now) {
		return 0, nil
	}
	if prev.value.Kind() != KindSet {
		return 0, typeMismatch(key, prev.value.Kind(), KindSet)
	}

	var toRemove []string
	for _, m := range members {
		ms := string(m)
		if _, ok := prev.value.set[ms]; ok {
			toRemove = append(toRemove, ms)
		}
	}
	if len(toRemove) == 0 {
		return 0, nil
	}

	cloned := prev.value.clone()
	for _, ms := range toRemove {
		delete(cloned.set, ms)
	}
	removed = int64(len(toRemove))

	if len(cloned.set) == 0 {
		e.deleteKeyLocked(s, key)
		return removed, nil
	}

	ent := &entry{value: cloned, hasDeadline: prev.hasDeadline, deadline: prev.deadline}
	e.storeEntryLocked(s, key, ent)
	return removed, nil
}

// SMembers returns every member of the Set at key, in no particular
// order.
func (e *Engine) SMembers(key string) (out [][]byte, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opSMembers, start, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opSMembers, key, exists)
	if !exists {
		return nil, nil
	}
	if ent.value.Kind() != KindSet {
		return nil, typeMismatch(key, ent.value.Kind(), KindSet)
	}
	out = make([][]byte, 0, len(ent.value.set))
	for m := range ent.value.set {
		out = append(out, []byte(m))
	}
	return out, nil
}

// SIsMember reports whether member belongs to the Set at key.
func (e *Engine) SIsMember(key string, member []byte) (ok bool, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opSIsMember, start, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opSIsMember, key, exists)
	if !exists {
		return false, nil
	}
	if ent.value.Kind() != KindSet {
		return false, typeMismatch(key, ent.value.Kind(), KindSet)
	}
	_, ok = ent.value.set[string(member)]
	return ok, nil
}

// SCard returns the number of members in the Set at key, or 0 if absent.
func (e *Engine) SCard(key string) (n int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opSCard, start, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opSCard, key, exists)
	if !exists {
		return 0, nil
	}
	if ent.value.Kind() != KindSet {
		return 0, typeMismatch(key, ent.value.Kind(), KindSet)
	}
	return int64(len(ent.value.set)), nil
}

// SPop removes and returns up to count arbitrary members from the Set at
// key. If the set becomes empty, the key is removed entirely.
func (e *Engine) SPop(key string, count int) (out [][]byte, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opSPop, start, err) }()

	if count <= 0 {
		count = 1
	}

	s := e.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	prev, exists := s.data[key]
	if !exists || prev.expired(now) {
		return nil, nil
	}
	if prev.value.Kind() != KindSet {
		return nil, typeMismatch(key, prev.value.Kind(), KindSet)
	}

	for m := range prev.value.set {
		if len(out) >= count {
			break
		}
		out = append(out, []byte(m))
	}

	cloned := prev.value.clone()
	for _, m := range out {
		delete(cloned.set, string(m))
	}

	if len(cloned.set) == 0 {
		e.deleteKeyLocked(s, key)
		return out, nil
	}

	ent := &entry{value: cloned, hasDeadline: prev.hasDeadline, deadline: prev.deadline}
	e.storeEntryLocked(s, key, ent)
	return out, nil
}

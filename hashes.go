// hashes.go: Hash type operations (HSET/HGET and friends)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import (
	"strconv"
	"time"
)

const opHSet, opHGet, opHMGet, opHGetAll, opHKeys, opHVals, opHLen,
	opHExists, opHDel, opHIncrBy =
	"HSET", "HGET", "HMGET", "HGETALL", "HKEYS", "HVALS", "HLEN",
	"HEXISTS", "HDEL", "HINCRBY"

// HSet sets each field/value pair in the Hash at key, creating it if
// absent. Returns the number of fields that were newly created (not
// merely updated). Returns WrongType if key holds a non-Hash value.
func (e *Engine) HSet(key string, fields map[string][]byte) (created int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opHSet, start, err) }()

	var growth int64
	for f, v := range fields {
		growth += int64(len(f)) + int64(len(v)) + hashEntryOverhead
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

	// Build a fresh map rather than mutating prev.value.hash in place:
	// getLive hands out the shared *entry after releasing its RLock, so a
	// reader iterating the old map while we mutate it here would race.
	var hasDeadline bool
	var deadline int64
	hash := make(map[string][]byte)
	if exists {
		if prev.value.Kind() != KindHash {
			return 0, typeMismatch(key, prev.value.Kind(), KindHash)
		}
		for f, v := range prev.value.hash {
			hash[f] = v
		}
		hasDeadline, deadline = prev.hasDeadline, prev.deadline
	}

	for f, v := range fields {
		if _, ok := hash[f]; !ok {
			created++
		}
		hash[f] = cloneBytes(v)
	}

	ent := &entry{value: Value{kind: KindHash, hash: hash}, hasDeadline: hasDeadline, deadline: deadline}
	e.storeEntryLocked(s, key, ent)
	return created, nil
}

// HGet returns the value of field in the Hash at key. ok is false if the
// key, or the field within it, is absent.
func (e *Engine) HGet(key, field string) (val []byte, ok bool, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opHGet, start, err) }()

	ent, exists := e.getLive(key)
	if !exists {
		e.observeRead(opHGet, key, false)
		return nil, false, nil
	}
	if ent.value.Kind() != KindHash {
		return nil, false, typeMismatch(key, ent.value.Kind(), KindHash)
	}
	v, ok := ent.value.hash[field]
	e.observeRead(opHGet, key, ok)
	if !ok {
		return nil, false, nil
	}
	return cloneBytes(v), true, nil
}

// HMGet returns the value for each requested field, or nil for any field
// that's absent.
func (e *Engine) HMGet(key string, fields []string) (out [][]byte, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opHMGet, start, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opHMGet, key, exists)
	out = make([][]byte, len(fields))
	if !exists {
		return out, nil
	}
	if ent.value.Kind() != KindHash {
		return nil, typeMismatch(key, ent.value.Kind(), KindHash)
	}
	for i, f := range fields {
		if v, ok := ent.value.hash[f]; ok {
			out[i] = cloneBytes(v)
		}
	}
	return out, nil
}

// HGetAll returns every field/value pair in the Hash at key.
func (e *Engine) HGetAll(key string) (out map[string][]byte, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opHGetAll, start, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opHGetAll, key, exists)
	if !exists {
		return nil, nil
	}
	if ent.value.Kind() != KindHash {
		return nil, typeMismatch(key, ent.value.Kind(), KindHash)
	}
	out = make(map[string][]byte, len(ent.value.hash))
	for f, v := range ent.value.hash {
		out[f] = cloneBytes(v)
	}
	return out, nil
}

// HKeys returns every field name in the Hash at key.
func (e *Engine) HKeys(key string) (out []string, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opHKeys, start, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opHKeys, key, exists)
	if !exists {
		return nil, nil
	}
	if ent.value.Kind() != KindHash {
		return nil, typeMismatch(key, ent.value.Kind(), KindHash)
	}
	out = make([]string, 0, len(ent.value.hash))
	for f := range ent.value.hash {
		out = append(out, f)
	}
	return out, nil
}

// HVals returns every value in the Hash at key.
func (e *Engine) HVals(key string) (out [][]byte, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opHVals, start, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opHVals, key, exists)
	if !exists {
		return nil, nil
	}
	if ent.value.Kind() != KindHash {
		return nil, typeMismatch(key, ent.value.Kind(), KindHash)
	}
	out = make([][]byte, 0, len(ent.value.hash))
	for _, v := range ent.value.hash {
		out = append(out, cloneBytes(v))
	}
	return out, nil
}

// HLen returns the number of fields in the Hash at key, or 0 if absent.
func (e *Engine) HLen(key string) (n int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opHLen, start, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opHLen, key, exists)
	if !exists {
		return 0, nil
	}
	if ent.value.Kind() != KindHash {
		return 0, typeMismatch(key, ent.value.Kind(), KindHash)
	}
	return int64(len(ent.value.hash)), nil
}

// HExists reports whether field exists within the Hash at key.
func (e *Engine) HExists(key, field string) (ok bool, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opHExists, start, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opHExists, key, exists)
	if !exists {
		return false, nil
	}
	if ent.value.Kind() != KindHash {
		return false, typeMismatch(key, ent.value.Kind(), KindHash)
	}
	_, ok = ent.value.hash[field]
	return ok, nil
}

// HDel removes fields from the Hash at key. If the hash becomes empty,
// the key is removed entirely. Returns the number of fields actually
// removed.
func (e *Engine) HDel(key string, fields ...string) (removed int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opHDel, start, err) }()

	s := e.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	prev, exists := s.data[key]
	if !exists || prev.expired(now) {
		return 0, nil
	}
	if prev.value.Kind() != KindHash {
		return 0, typeMismatch(key, prev.value.Kind(), KindHash)
	}

	var toRemove []string
	for _, f := range fields {
		if _, ok := prev.value.hash[f]; ok {
			toRemove = append(toRemove, f)
		}
	}
	if len(toRemove) == 0 {
		return 0, nil
	}

	cloned := prev.value.clone()
	for _, f := range toRemove {
		delete(cloned.hash, f)
	}
	removed = int64(len(toRemove))

	if len(cloned.hash) == 0 {
		e.deleteKeyLocked(s, key)
		return removed, nil
	}

	ent := &entry{value: cloned, hasDeadline: prev.hasDeadline, deadline: prev.deadline}
	e.storeEntryLocked(s, key, ent)
	return removed, nil
}

// HIncrBy adds delta to the integer value of field within the Hash at
// key, creating both the hash and the field ("0") if absent. Returns
// ParseError if the current field value isn't a base-10 integer.
func (e *Engine) HIncrBy(key, field string, delta int64) (result int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opHIncrBy, start, err) }()

	s := e.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	prev, exists := s.data[key]
	if exists && prev.expired(now) {
		exists = false
	}

	var hasDeadline bool
	var deadline int64
	hash := make(map[string][]byte)
	if exists {
		if prev.value.Kind() != KindHash {
			return 0, typeMismatch(key, prev.value.Kind(), KindHash)
		}
		for f, v := range prev.value.hash {
			hash[f] = v
		}
		hasDeadline, deadline = prev.hasDeadline, prev.deadline
	}

	var cur int64
	if v, ok := hash[field]; ok {
		n, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, NewErrParseError("hash field value is not an integer")
		}
		cur = n
	}

	result = cur + delta
	hash[field] = []byte(strconv.FormatInt(result, 10))

	ent := &entry{value: Value{kind: KindHash, hash: hash}, hasDeadline: hasDeadline, deadline: deadline}
	e.storeEntryLocked(s, key, ent)
	return result, nil
}

// zsets.go: SortedSet type operations (ZADD/ZRANGE and friends)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import (
	"bytes"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const opZAdd, opZRem, opZRange, opZRangeByScore, opZCard, opZScore, opZCount =
	"ZADD", "ZREM", "ZRANGE", "ZRANGEBYSCORE", "ZCARD", "ZSCORE", "ZCOUNT"

// zmember pairs a SortedSet member with its score, used only to produce a
// stable ascending-score, ascending-member-bytes ordering for range queries
// (spec.md §4.5 "ties broken by byte-order of member", §9 open question c).
type zmember struct {
	member string
	score  float64
}

// ZAdd inserts or updates members' scores in the SortedSet at key, creating
// it if absent. Returns the number of members newly added (not merely
// re-scored). Returns WrongType if key holds a non-SortedSet value.
func (e *Engine) ZAdd(key string, scores map[string]float64) (added int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opZAdd, start, err) }()

	var growth int64
	for m := range scores {
		growth += int64(len(m)) + zsetEntryOverhead
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

	// Build a fresh map rather than mutating prev.value.zset in place:
	// getLive hands out the shared *entry after releasing its RLock, so a
	// reader iterating the old map while we mutate it here would race.
	var hasDeadline bool
	var deadline int64
	zset := make(map[string]float64)
	if exists {
		if prev.value.Kind() != KindSortedSet {
			return 0, typeMismatch(key, prev.value.Kind(), KindSortedSet)
		}
		for m, sc := range prev.value.zset {
			zset[m] = sc
		}
		hasDeadline, deadline = prev.hasDeadline, prev.deadline
	}

	for m, sc := range scores {
		if _, ok := zset[m]; !ok {
			added++
		}
		zset[m] = sc
	}

	ent := &entry{value: Value{kind: KindSortedSet, zset: zset}, hasDeadline: hasDeadline, deadline: deadline}
	e.storeEntryLocked(s, key, ent)
	return added, nil
}

// ZRem removes members from the SortedSet at key. If the set becomes empty,
// the key is removed entirely. Returns the number of members actually
// removed.
func (e *Engine) ZRem(key string, members ...string) (removed int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opZRem, start, err) }()

	s := e.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	prev, exists := s.data[key]
	if !exists || prev.expired(now) {
		return 0, nil
	}
	if prev.value.Kind() != KindSortedSet {
		return 0, typeMismatch(key, prev.value.Kind(), KindSortedSet)
	}

	var toRemove []string
	for _, m := range members {
		if _, ok := prev.value.zset[m]; ok {
			toRemove = append(toRemove, m)
		}
	}
	if len(toRemove) == 0 {
		return 0, nil
	}

	cloned := prev.value.clone()
	for _, m := range toRemove {
		delete(cloned.zset, m)
	}
	removed = int64(len(toRemove))

	if len(cloned.zset) == 0 {
		e.deleteKeyLocked(s, key)
		return removed, nil
	}

	ent := &entry{value: cloned, hasDeadline: prev.hasDeadline, deadline: prev.deadline}
	e.storeEntryLocked(s, key, ent)
	return removed, nil
}

// sortedMembers returns z's members ordered by ascending score, ties broken
// by ascending member bytes (spec.md §8 "∀ sorted sets").
func sortedMembers(z map[string]float64) []zmember {
	out := make([]zmember, 0, len(z))
	for m, sc := range z {
		out = append(out, zmember{member: m, score: sc})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score < out[j].score
		}
		return bytes.Compare([]byte(out[i].member), []byte(out[j].member)) < 0
	})
	return out
}

// ZRange returns members of the SortedSet at key between rank indices start
// and stop, inclusive, ordered by ascending score (ties by member bytes),
// with Redis-style negative indexing.
func (e *Engine) ZRange(key string, start, stop int64) (out []string, err error) {
	opStart := time.Now()
	defer func() { e.recordLatency(opZRange, opStart, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opZRange, key, exists)
	if !exists {
		return nil, nil
	}
	if ent.value.Kind() != KindSortedSet {
		return nil, typeMismatch(key, ent.value.Kind(), KindSortedSet)
	}
	ordered := sortedMembers(ent.value.zset)
	lo, hi, ok := clampRange(start, stop, int64(len(ordered)))
	if !ok {
		return nil, nil
	}
	out = make([]string, hi-lo)
	for i := lo; i < hi; i++ {
		out[i-lo] = ordered[i].member
	}
	return out, nil
}

// ZRangeByScore returns members of the SortedSet at key whose score falls
// within [min, max], ordered ascending by score then member bytes. min/max
// accept "-inf"/"+inf" and an optional leading "(" for exclusive bounds,
// matching Redis ZRANGEBYSCORE syntax (spec.md §4.5). Returns
// InvalidArgument if min > max.
func (e *Engine) ZRangeByScore(key string, min, max string) (out []string, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opZRangeByScore, start, err) }()

	lo, loExcl, err := parseScoreBound(min)
	if err != nil {
		return nil, err
	}
	hi, hiExcl, err := parseScoreBound(max)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		return nil, NewErrInvalidArgument("ZRANGEBYSCORE min must be <= max")
	}

	ent, exists := e.getLive(key)
	e.observeRead(opZRangeByScore, key, exists)
	if !exists {
		return nil, nil
	}
	if ent.value.Kind() != KindSortedSet {
		return nil, typeMismatch(key, ent.value.Kind(), KindSortedSet)
	}

	for _, zm := range sortedMembers(ent.value.zset) {
		if !scoreInRange(zm.score, lo, loExcl, hi, hiExcl) {
			continue
		}
		out = append(out, zm.member)
	}
	return out, nil
}

// ZCard returns the number of members in the SortedSet at key, or 0 if
// absent.
func (e *Engine) ZCard(key string) (n int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opZCard, start, err) }()

	ent, exists := e.getLive(key)
	e.observeRead(opZCard, key, exists)
	if !exists {
		return 0, nil
	}
	if ent.value.Kind() != KindSortedSet {
		return 0, typeMismatch(key, ent.value.Kind(), KindSortedSet)
	}
	return int64(len(ent.value.zset)), nil
}

// ZScore returns the score of member within the SortedSet at key. ok is
// false if the key or the member within it is absent.
func (e *Engine) ZScore(key, member string) (score float64, ok bool, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opZScore, start, err) }()

	ent, exists := e.getLive(key)
	if !exists {
		e.observeRead(opZScore, key, false)
		return 0, false, nil
	}
	if ent.value.Kind() != KindSortedSet {
		return 0, false, typeMismatch(key, ent.value.Kind(), KindSortedSet)
	}
	sc, ok := ent.value.zset[member]
	e.observeRead(opZScore, key, ok)
	return sc, ok, nil
}

// ZCount returns the number of members of the SortedSet at key whose score
// falls within [min, max], using the same bound syntax as ZRangeByScore.
func (e *Engine) ZCount(key string, min, max string) (count int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opZCount, start, err) }()

	lo, loExcl, err := parseScoreBound(min)
	if err != nil {
		return 0, err
	}
	hi, hiExcl, err := parseScoreBound(max)
	if err != nil {
		return 0, err
	}
	if lo > hi {
		return 0, NewErrInvalidArgument("ZCOUNT min must be <= max")
	}

	ent, exists := e.getLive(key)
	e.observeRead(opZCount, key, exists)
	if !exists {
		return 0, nil
	}
	if ent.value.Kind() != KindSortedSet {
		return 0, typeMismatch(key, ent.value.Kind(), KindSortedSet)
	}

	for _, sc := range ent.value.zset {
		if scoreInRange(sc, lo, loExcl, hi, hiExcl) {
			count++
		}
	}
	return count, nil
}

// parseScoreBound parses a ZRANGEBYSCORE/ZCOUNT bound: "-inf", "+inf", or a
// float64 with an optional leading "(" marking an exclusive bound.
func parseScoreBound(raw string) (value float64, exclusive bool, err error) {
	if strings.HasPrefix(raw, "(") {
		exclusive = true
		raw = raw[1:]
	}
	switch raw {
	case "-inf":
		return math.Inf(-1), exclusive, nil
	case "+inf", "inf":
		return math.Inf(1), exclusive, nil
	}
	f, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return 0, false, NewErrInvalidArgument("invalid score bound: " + raw)
	}
	return f, exclusive, nil
}

func scoreInRange(score, lo float64, loExcl bool, hi float64, hiExcl bool) bool {
	if loExcl {
		if score <= lo {
			return false
		}
	} else if score < lo {
		return false
	}
	if hiExcl {
		if score >= hi {
			return false
		}
	} else if score > hi {
		return false
	}
	return true
}

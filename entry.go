// entry.go: the stored entry pairing a typed value with its expiration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

// keyOverhead approximates the fixed per-key bookkeeping cost the
// Memory Accountant charges in addition to key and value bytes
// (spec.md §3 invariant I5).
const keyOverhead = 50

// entry pairs a Typed Value with an optional expiration deadline.
//
// deadline is a monotonic nanosecond instant from the engine's
// TimeProvider (never wall-clock), so system clock changes can't
// prematurely expire a key (spec.md §4.2, §9). hasDeadline
// distinguishes "no TTL" from a zero deadline.
type entry struct {
	value       Value
	deadline    int64
	hasDeadline bool
}

// expired reports whether e has a deadline and now is at or past it.
func (e *entry) expired(now int64) bool {
	return e.hasDeadline && now >= e.deadline
}

// size returns the entry's accounted byte footprint: the value's
// estimated size. The key bytes and keyOverhead are added by the caller,
// which is the only place that knows the key.
func (e *entry) size() int64 {
	return e.value.estimatedSize()
}

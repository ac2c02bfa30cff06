// value.go: the typed value sum type stored behind every live key
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

// Kind discriminates the five Typed Value shapes the engine supports.
type Kind int

const (
	// KindString is an opaque byte sequence.
	KindString Kind = iota
	// KindList is an ordered sequence of byte strings.
	KindList
	// KindSet is an unordered collection of unique byte strings.
	KindSet
	// KindHash is a mapping from field to value, both byte strings.
	KindHash
	// KindSortedSet is a mapping from member (byte string) to score (float64).
	KindSortedSet
)

// String returns the TYPE-command name for k ("string", "list", "set",
// "hash", "zset"), or "none" for an unrecognized kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindHash:
		return "hash"
	case KindSortedSet:
		return "zset"
	default:
		return "none"
	}
}

// wordSize approximates one machine word of per-slot structural overhead
// (pointer, slice header element, map bucket slot). Used by estimatedSize
// so the accountant's byte total tracks real allocator pressure rather
// than just payload bytes.
const wordSize = 8

// zsetEntryOverhead approximates the per-member fixed cost of a sorted-set
// entry: the float64 score plus its map/slice bookkeeping.
const zsetEntryOverhead = 16

// hashEntryOverhead approximates a hash bucket's fixed bookkeeping cost
// beyond the field/value payload bytes themselves.
const hashEntryOverhead = wordSize

// setEntryOverhead approximates a set bucket's fixed bookkeeping cost
// beyond the member payload bytes.
const setEntryOverhead = wordSize

// Value is the sum-type container for the five supported Typed Value
// shapes. Exactly one of the per-kind fields is meaningful, selected by
// Kind. Zero value is an empty String.
type Value struct {
	kind Kind

	str   []byte
	list  [][]byte
	set   map[string]struct{}
	hash  map[string][]byte
	zset  map[string]float64
}

// NewStringValue constructs a String Typed Value.
func NewStringValue(b []byte) Value {
	return Value{kind: KindString, str: b}
}

// NewListValue constructs a List Typed Value from an initial slice.
func NewListValue(items [][]byte) Value {
	return Value{kind: KindList, list: items}
}

// NewSetValue constructs an empty Set Typed Value.
func NewSetValue() Value {
	return Value{kind: KindSet, set: make(map[string]struct{})}
}

// NewHashValue constructs an empty Hash Typed Value.
func NewHashValue() Value {
	return Value{kind: KindHash, hash: make(map[string][]byte)}
}

// NewSortedSetValue constructs an empty SortedSet Typed Value.
func NewSortedSetValue() Value {
	return Value{kind: KindSortedSet, zset: make(map[string]float64)}
}

// Kind returns the discriminator for v.
func (v *Value) Kind() Kind { return v.kind }

// clone returns a deep copy of v, used by COPY and by the copy-on-write
// delete paths of the container ops (spec.md §9 "Ownership").
func (v *Value) clone() Value {
	switch v.kind {
	case KindString:
		b := make([]byte, len(v.str))
		copy(b, v.str)
		return Value{kind: KindString, str: b}
	case KindList:
		l := make([][]byte, len(v.list))
		for i, item := range v.list {
			b := make([]byte, len(item))
			copy(b, item)
			l[i] = b
		}
		return Value{kind: KindList, list: l}
	case KindSet:
		s := make(map[string]struct{}, len(v.set))
		for m := range v.set {
			s[m] = struct{}{}
		}
		return Value{kind: KindSet, set: s}
	case KindHash:
		h := make(map[string][]byte, len(v.hash))
		for f, val := range v.hash {
			b := make([]byte, len(val))
			copy(b, val)
			h[f] = b
		}
		return Value{kind: KindHash, hash: h}
	case KindSortedSet:
		z := make(map[string]float64, len(v.zset))
		for m, sc := range v.zset {
			z[m] = sc
		}
		return Value{kind: KindSortedSet, zset: z}
	default:
		return Value{}
	}
}

// estimatedSize returns an approximation of v's retained byte footprint,
// used by the Memory Accountant (C4). The estimate includes payload bytes
// plus per-element structural overhead. It is monotone under append/remove
// and bounded by a constant factor of the true footprint, so eviction
// always terminates (spec.md §4.1).
func (v *Value) estimatedSize() int64 {
	switch v.kind {
	case KindString:
		return int64(len(v.str))
	case KindList:
		var n int64
		for _, item := range v.list {
			n += int64(len(item)) + wordSize
		}
		return n
	case KindSet:
		var n int64
		for m := range v.set {
			n += int64(len(m)) + setEntryOverhead
		}
		return n
	case KindHash:
		var n int64
		for f, val := range v.hash {
			n += int64(len(f)) + int64(len(val)) + hashEntryOverhead
		}
		return n
	case KindSortedSet:
		var n int64
		for m := range v.zset {
			n += int64(len(m)) + zsetEntryOverhead
		}
		return n
	default:
		return 0
	}
}

// lists.go: List type operations (LPUSH/RPUSH and friends)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import "time"

const opLPush, opRPush, opLPop, opRPop, opLLen, opLRange, opLIndex =
	"LPUSH", "RPUSH", "LPOP", "RPOP", "LLEN", "LRANGE", "LINDEX"

// LPush prepends items (in argument order, so the last argument ends up
// frontmost, matching Redis LPUSH) to the List at key, creating it if
// absent. Returns the resulting length. Returns WrongType if key holds a
// non-List value.
func (e *Engine) LPush(key string, items ...[]byte) (int64, error) {
	return e.pushList(key, items, true)
}

// RPush appends items to the List at key, creating it if absent. Returns
// the resulting length. Returns WrongType if key holds a non-List value.
func (e *Engine) RPush(key string, items ...[]byte) (int64, error) {
	return e.pushList(key, items, false)
}

func (e *Engine) pushList(key string, items [][]byte, front bool) (n int64, err error) {
	op := opRPush
	if front {
		op = opLPush
	}
	start := time.Now()
	defer func() { e.recordLatency(op, start, err) }()

	var growth int64
	for _, it := range items {
		growth += int64(len(it)) + wordSize
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

	var cur [][]byte
	var hasDeadline bool
	var deadline int64
	if exists {
		if prev.value.Kind() != KindList {
			return 0, typeMismatch(key, prev.value.Kind(), KindList)
		}
		cur = prev.value.list
		hasDeadline, deadline = prev.hasDeadline, prev.deadline
	}

	cloned := make([][]byte, len(items))
	for i, it := range items {
		cloned[i] = cloneBytes(it)
	}

	var next [][]byte
	if front {
		next = make([][]byte, 0, len(cur)+len(cloned))
		for i := len(cloned) - 1; i >= 0; i-- {
			next = append(next, cloned[i])
		}
		next = append(next, cur...)
	} else {
		next = make([][]byte, 0, len(cur)+len(cloned))
		next = append(next, cur...)
		next = append(next, cloned...)
	}

	ent := &entry{value: NewListValue(next), hasDeadline: hasDeadline, deadline: deadline}
	e.storeEntryLocked(s, key, ent)
	return int64(len(next)), nil
}

// LPop removes and returns the front count elements of the List at key.
// If the list becomes empty, the key is removed entirely (matching
// Redis's "empty containers don't exist" rule, spec.md §4.1). ok is
// false if key is absent or already empty.
func (e *Engine) LPop(key string, count int) (popped [][]byte, ok bool, err error) {
	return e.popList(key, count, true)
}

// RPop removes and returns the back count elements of the List at key.
func (e *Engine) RPop(key string, count int) (popped [][]byte, ok bool, err error) {
	return e.popList(key, count, false)
}

func (e *Engine) popList(key string, count int, front bool) (popped [][]byte, ok bool, err error) {
	op := opRPop
	if front {
		op = opLPop
	}
	start := time.Now()
	defer func() { e.recordLatency(op, start, err) }()

	if count <= 0 {
		count = 1
	}

	s := e.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	prev, exists := s.data[key]
	if !exists || prev.expired(now) {
		return nil, false, nil
	}
	if prev.value.Kind() != KindList {
		return nil, false, typeMismatch(key, prev.value.Kind(), KindList)
	}

	cur := prev.value.list
	if len(cur) == 0 {
		return nil, false, nil
	}
	if count > len(cur) {
		count = len(cur)
	}

	var remaining [][]byte
	if front {
		popped = cur[:count]
		remaining = cur[count:]
	} else {
		// copy before reversing so the stored entry's list is never mutated
		popped = append([][]byte(nil), cur[len(cur)-count:]...)
		remaining = cur[:len(cur)-count]
		// reverse so callers see back-to-front pop order, matching Redis RPOP
		reverseBytes(popped)
	}

	if len(remaining) == 0 {
		e.deleteKeyLocked(s, key)
		return popped, true, nil
	}

	ent := &entry{value: NewListValue(remaining), hasDeadline: prev.hasDeadline, deadline: prev.deadline}
	e.storeEntryLocked(s, key, ent)
	return popped, true, nil
}

func reverseBytes(s [][]byte) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// LLen returns the length of the List at key, or 0 if absent.
func (e *Engine) LLen(key string) (n int64, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opLLen, start, err) }()

	ent, exists := e.getLive(key)
	if !exists {
		e.observeRead(opLLen, key, false)
		return 0, nil
	}
	if ent.value.Kind() != KindList {
		return 0, typeMismatch(key, ent.value.Kind(), KindList)
	}
	e.observeRead(opLLen, key, true)
	return int64(len(ent.value.list)), nil
}

// LRange returns the slice of the List at key between indices start and
// end, inclusive, with Redis-style negative indices counting from the
// end.
func (e *Engine) LRange(key string, from, to int64) (out [][]byte, err error) {
	opStart := time.Now()
	defer func() { e.recordLatency(opLRange, opStart, err) }()

	ent, exists := e.getLive(key)
	if !exists {
		e.observeRead(opLRange, key, false)
		return nil, nil
	}
	if ent.value.Kind() != KindList {
		return nil, typeMismatch(key, ent.value.Kind(), KindList)
	}
	e.observeRead(opLRange, key, true)
	lo, hi, ok := clampRange(from, to, int64(len(ent.value.list)))
	if !ok {
		return nil, nil
	}
	out = make([][]byte, hi-lo)
	for i := lo; i < hi; i++ {
		out[i-lo] = cloneBytes(ent.value.list[i])
	}
	return out, nil
}

// LIndex returns the element at index in the List at key, with
// Redis-style negative indices counting from the end. ok is false if the
// index is out of range or the key is absent.
func (e *Engine) LIndex(key string, index int64) (val []byte, ok bool, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opLIndex, start, err) }()

	ent, exists := e.getLive(key)
	if !exists {
		e.observeRead(opLIndex, key, false)
		return nil, false, nil
	}
	if ent.value.Kind() != KindList {
		return nil, false, typeMismatch(key, ent.value.Kind(), KindList)
	}
	e.observeRead(opLIndex, key, true)
	n := int64(len(ent.value.list))
	if index < 0 {
		index += n
	}
	if index < 0 || index >= n {
		return nil, false, nil
	}
	return cloneBytes(ent.value.list[index]), true, nil
}

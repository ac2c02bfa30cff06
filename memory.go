// memory.go: the memory accountant — byte accounting and eviction selection
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// counterInit is the seed value for a fresh LFU access counter
// (spec.md §4.4: "seeded at 5 with saturating increment").
const counterInit uint32 = 5

// randomSampleSize bounds how many access-order entries the random
// eviction rule inspects before falling back to a full scan. Mirrors the
// teacher's bounded-sampling approach to eviction selection: most
// workloads find an eligible candidate in the first few tries. The bound
// caps the number of samples only: each sample walks the list from its
// front to the chosen offset, so one sample costs up to O(n).
const randomSampleSize = 8

// accessNode is the payload of each container/list element in the
// accountant's access-order sequence.
type accessNode struct {
	key string
}

// memoryAccountant tracks a running byte total, the LRU access-order
// sequence, and per-key LFU counters, and selects eviction victims under
// the configured policy (spec.md §4.4). Its mutations are serialized by
// its own lock, distinct from the keyspace shard locks and the
// expiration schedule's lock (spec.md §5 lock ordering: shard ->
// accountant -> schedule).
type memoryAccountant struct {
	mu sync.Mutex

	maxMemory int64 // <= 0 means unlimited (inert)
	policy    Policy
	total     int64

	order *list.List
	nodes map[string]*list.Element
	freq  map[string]uint32

	// deadlines holds the monotonic deadline for every key that currently
	// has one; a key's absence here means it has no TTL (spec.md §4.4
	// "Volatile policies only consider keys with a live deadline").
	deadlines map[string]int64

	rngState uint64
}

func newMemoryAccountant(maxMemory int64, policy Policy, seed int64) *memoryAccountant {
	a := &memoryAccountant{
		maxMemory: maxMemory,
		policy:    policy,
		order:     list.New(),
		nodes:     make(map[string]*list.Element),
		freq:      make(map[string]uint32),
		deadlines: make(map[string]int64),
		rngState:  uint64(seed) | 1,
	}
	return a
}

// enabled reports whether a maxmemory budget is configured at all.
func (a *memoryAccountant) enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.maxMemory > 0
}

func (a *memoryAccountant) setMaxMemory(bytes int64) {
	a.mu.Lock()
	a.maxMemory = bytes
	a.mu.Unlock()
}

func (a *memoryAccountant) setPolicy(p Policy) {
	a.mu.Lock()
	a.policy = p
	a.mu.Unlock()
}

func (a *memoryAccountant) getPolicy() Policy {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.policy
}

func (a *memoryAccountant) currentTotal() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

func (a *memoryAccountant) budget() (limit int64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.maxMemory <= 0 {
		return 0, false
	}
	return a.maxMemory, true
}

// addMemory credits size to the total, (re)seats key at the back of the
// access-order sequence, tracks its deadline if any, and clamps its LFU
// counter to the seed value on first sight (spec.md §4.4 "Updates": this
// bookkeeping runs unconditionally, independent of which policy flavor is
// currently active, so a later policy switch has metadata to work with).
func (a *memoryAccountant) addMemory(key string, size int64, hasDeadline bool, deadline int64) {
	a.mu.Lock()
	a.total += size
	a.touchLocked(key)
	if _, ok := a.freq[key]; !ok {
		a.freq[key] = counterInit
	}
	if hasDeadline {
		a.deadlines[key] = deadline
	} else {
		delete(a.deadlines, key)
	}
	a.mu.Unlock()
}

// removeMemory debits size from the total and drops key from all
// tracking tables.
func (a *memoryAccountant) removeMemory(key string, size int64) {
	a.mu.Lock()
	a.total -= size
	if elem, ok := a.nodes[key]; ok {
		a.order.Remove(elem)
		delete(a.nodes, key)
	}
	delete(a.freq, key)
	delete(a.deadlines, key)
	a.mu.Unlock()
}

// recordRead updates access metadata for a read of key: move-to-back
// under an LRU-flavoured policy, increment the counter under an
// LFU-flavoured policy (spec.md §4.4 "On read").
func (a *memoryAccountant) recordRead(key string) {
	a.mu.Lock()
	switch a.policy {
	case AllKeysLRU, VolatileLRU:
		a.touchLocked(key)
	case AllKeysLFU, VolatileLFU:
		if c, ok := a.freq[key]; ok {
			if c < ^uint32(0) {
				a.freq[key] = c + 1
			}
		}
	}
	a.mu.Unlock()
}

// touchLocked moves key to the back of the access-order sequence,
// creating its node if this is the first time it's seen. Caller holds mu.
func (a *memoryAccountant) touchLocked(key string) {
	if elem, ok := a.nodes[key]; ok {
		a.order.MoveToBack(elem)
		return
	}
	a.nodes[key] = a.order.PushBack(&accessNode{key: key})
}

// projectedOverflow reports whether total+delta would exceed the
// configured budget, and the budget itself (0 if unlimited).
func (a *memoryAccountant) projectedOverflow(delta int64) (overflow bool, limit, projected int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.maxMemory <= 0 {
		return false, 0, a.total + delta
	}
	projected = a.total + delta
	return projected > a.maxMemory, a.maxMemory, projected
}

// fastRand generates a pseudo-random uint64 using xorshift64, in the same
// spirit as the teacher's lock-free eviction-sampling RNG, repurposed here
// for selecting a random eviction victim.
func (a *memoryAccountant) fastRand() uint64 {
	for {
		old := atomic.LoadUint64(&a.rngState)
		x := old
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		if atomic.CompareAndSwapUint64(&a.rngState, old, x) {
			return x
		}
	}
}

// selectVictim picks one key to evict under the configured policy. It does
// not remove the key from any tracking table; the caller removes it from
// the keyspace, which in turn calls removeMemory. Returns ok=false if no
// eligible candidate exists (e.g. a volatile policy with no keys carrying
// a deadline), matching spec.md §4.4 step 2 "If no victim can be found,
// break".
func (a *memoryAccountant) selectVictim() (key string, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.policy {
	case NoEviction:
		return "", false
	case AllKeysLRU:
		return a.scanOrderLocked(false)
	case VolatileLRU:
		return a.scanOrderLocked(true)
	case AllKeysLFU:
		return a.scanLFULocked(false)
	case VolatileLFU:
		return a.scanLFULocked(true)
	case AllKeysRandom:
		return a.randomLocked(false)
	case VolatileRandom:
		return a.randomLocked(true)
	case VolatileTTL:
		return a.scanTTLLocked()
	default:
		return "", false
	}
}

// eligibleLocked reports whether key satisfies the volatile-only filter.
// Caller holds mu.
func (a *memoryAccountant) eligibleLocked(key string, volatileOnly bool) bool {
	if !volatileOnly {
		return true
	}
	_, has := a.deadlines[key]
	return has
}

// scanOrderLocked walks the access-order sequence front-to-back and
// returns the first eligible key, without disturbing the order of keys it
// skips (so a policy switch, or a later eviction round, still sees them
// in their real recency position). Caller holds mu.
func (a *memoryAccountant) scanOrderLocked(volatileOnly bool) (string, bool) {
	for elem := a.order.Front(); elem != nil; elem = elem.Next() {
		node := elem.Value.(*accessNode)
		if a.eligibleLocked(node.key, volatileOnly) {
			return node.key, true
		}
	}
	return "", false
}

// scanLFULocked returns the eligible key with the lowest access counter.
// Caller holds mu.
func (a *memoryAccountant) scanLFULocked(volatileOnly bool) (string, bool) {
	var (
		best    string
		bestSet bool
		bestC   uint32
	)
	for key, c := range a.freq {
		if !a.eligibleLocked(key, volatileOnly) {
			continue
		}
		if !bestSet || c < bestC {
			best, bestC, bestSet = key, c, true
		}
	}
	return best, bestSet
}

// scanTTLLocked returns the key with the earliest deadline. Caller holds mu.
func (a *memoryAccountant) scanTTLLocked() (string, bool) {
	var (
		best    string
		bestSet bool
		bestAt  int64
	)
	for key, at := range a.deadlines {
		if !bestSet || at < bestAt {
			best, bestAt, bestSet = key, at, true
		}
	}
	return best, bestSet
}

// randomLocked samples up to randomSampleSize entries from the
// access-order sequence at pseudo-random offsets and returns the first
// eligible one found; if the sample misses, it falls back to a full
// linear scan so a sparse volatile candidate set still terminates.
// Caller holds mu.
func (a *memoryAccountant) randomLocked(volatileOnly bool) (string, bool) {
	n := a.order.Len()
	if n == 0 {
		return "", false
	}

	for i := 0; i < randomSampleSize; i++ {
		idx := int(a.fastRand() % uint64(n))
		elem := a.order.Front()
		for j := 0; j < idx; j++ {
			elem = elem.Next()
		}
		node := elem.Value.(*accessNode)
		if a.eligibleLocked(node.key, volatileOnly) {
			return node.key, true
		}
	}

	return a.scanOrderLocked(volatileOnly)
}

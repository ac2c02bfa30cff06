// engine.go: the concurrent facade over the sharded keyspace
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import (
	"sync"
	"time"
)

// shard is one partition of the keyspace, guarded by its own lock. Multi-key
// operations that touch more than one shard must acquire shards in
// ascending shard-index order to avoid deadlock (spec.md §5).
type shard struct {
	mu   sync.RWMutex
	data map[string]*entry
}

// Engine is the embedded, in-process, concurrent-safe facade over the
// multi-type keyspace. It owns the sharded key table, the expiration
// schedule, and the memory accountant, and is the only type callers
// interact with (spec.md §2, component C5).
//
// An Engine is safe for concurrent use by many goroutines. Construct with
// New or WithConfig; call Close when done to stop the background sweeper.
type Engine struct {
	shards    []*shard
	shardMask uint64

	expiration *expirationManager
	memory     *memoryAccountant

	logger  Logger
	timeFn  TimeProvider
	metrics MetricsCollector

	// startedAtUnix is the wall-clock second this Engine was constructed,
	// returned verbatim by LastSave since the engine has no persistence to
	// report a real save timestamp for (spec.md §4.5).
	startedAtUnix int64

	closeOnce sync.Once
}

// New constructs an Engine with default configuration and the given
// background sweep interval in milliseconds. It is equivalent to
// WithConfig(Config{SweepIntervalMs: sweepIntervalMs}).
func New(sweepIntervalMs int64) *Engine {
	return WithConfig(Config{SweepIntervalMs: sweepIntervalMs})
}

// WithConfig constructs an Engine from cfg, applying defaults for any
// unset field (see Config.Validate). The background sweeper is not
// started until StartSweeper is called.
func WithConfig(cfg Config) *Engine {
	cfg.Validate() //nolint:errcheck // Validate never returns a non-nil error today

	shardCount := cfg.ShardCount
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{data: make(map[string]*entry)}
	}

	e := &Engine{
		shards:        shards,
		shardMask:     uint64(shardCount - 1),
		expiration:    newExpirationManager(cfg.SweepIntervalMs, cfg.TimeProvider, cfg.Logger),
		memory:        newMemoryAccountant(cfg.MaxMemory, cfg.MaxMemoryPolicy, cfg.TimeProvider.Now()),
		logger:        cfg.Logger,
		timeFn:        cfg.TimeProvider,
		metrics:       cfg.MetricsCollector,
		startedAtUnix: time.Now().Unix(),
	}

	// shardCount defaults to a power of two (DefaultShardCount); a
	// non-power-of-two ShardCount still works correctly via modulo, just
	// without the AND-mask fast path.
	if shardCount&(shardCount-1) != 0 {
		e.shardMask = 0
	}

	return e
}

// StartSweeper launches the background expiration sweep goroutine. Safe to
// call multiple times; only the first call has any effect (spec.md §4.3).
func (e *Engine) StartSweeper() {
	e.expiration.startSweeper(e.removeExpiredKeys)
}

// Close stops the background sweeper and releases engine resources. Safe
// to call multiple times and safe to call even if StartSweeper was never
// called.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.expiration.stopSweeper()
	})
	return nil
}

// shardFor returns the shard owning key.
func (e *Engine) shardFor(key string) *shard {
	h := fnv64a(key)
	if e.shardMask != 0 {
		return e.shards[h&e.shardMask]
	}
	return e.shards[h%uint64(len(e.shards))]
}

// fnv64a is the FNV-1a hash, used only to distribute keys across shards.
// It is not exposed and carries no correctness requirement beyond
// distributing keys reasonably evenly.
func fnv64a(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// shardsForKeys returns the distinct shards owning keys, sorted by shard
// index, for multi-key operations that must lock in ascending order
// (spec.md §5).
func (e *Engine) shardsForKeys(keys []string) []*shard {
	seen := make(map[*shard]struct{}, len(keys))
	var result []*shard
	for _, k := range keys {
		s := e.shardFor(k)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	// Shards are indexed in e.shards in ascending order; sort the
	// distinct set by that same index so every caller locks consistently.
	idx := make(map[*shard]int, len(e.shards))
	for i, s := range e.shards {
		idx[s] = i
	}
	for i := 1; i < len(result); i++ {
		for j := i; j > 0 && idx[result[j-1]] > idx[result[j]]; j-- {
			result[j-1], result[j] = result[j], result[j-1]
		}
	}
	return result
}

// now returns the engine's current monotonic time.
func (e *Engine) now() int64 {
	return e.timeFn.Now()
}

// wallNowNanos returns the current wall-clock time, used only to convert
// between EXPIREAT-style wall-clock epochs and the engine's monotonic
// deadlines (spec.md §4.2, §9 "Monotonic vs wall clock"). Unlike now(),
// this is deliberately not routed through TimeProvider: TimeProvider
// models the monotonic clock tests advance deterministically, while wall
// time conversion is inherently best-effort and not a correctness axis
// under test.
func (e *Engine) wallNowNanos() int64 {
	return time.Now().UnixNano()
}

// recordLatency reports op's outcome to the configured MetricsCollector.
// Every public operation defers a call to this right after computing its
// start time, the way the teacher's cache.go instruments get/set/delete
// throughout rather than on a single hot path.
func (e *Engine) recordLatency(op string, start time.Time, err error) {
	e.metrics.RecordOp(op, time.Since(start), err)
}

// observeRead reports a single-key read's hit/miss outcome under op and,
// on a hit, updates the Memory Accountant's access metadata (spec.md §4.4
// "On read": move-to-back for LRU-flavoured policies, counter increment
// for LFU-flavoured ones). Call once per read op right after getLive.
func (e *Engine) observeRead(op, key string, found bool) {
	if !found {
		e.metrics.RecordMiss(op)
		return
	}
	e.memory.recordRead(key)
	e.metrics.RecordHit(op)
}

// lookupLocked returns the live (non-expired) entry for key within s, or
// nil. The caller must hold at least a read lock on s. It does not purge
// an expired entry itself (that requires a write lock); callers that find
// an expired entry under a read lock should re-check under a write lock
// and call purgeLocked.
func (s *shard) lookupLocked(key string, now int64) *entry {
	e, ok := s.data[key]
	if !ok {
		return nil
	}
	if e.expired(now) {
		return nil
	}
	return e
}

// purgeExpiredLocked removes key from s if present and expired as of now,
// reporting whether it removed anything. Caller must hold s's write lock.
func (s *shard) purgeExpiredLocked(key string, now int64) bool {
	e, ok := s.data[key]
	if !ok || !e.expired(now) {
		return false
	}
	delete(s.data, key)
	return true
}

// removeExpiredKeys is the expiration manager's sweep callback: it purges
// each key from its owning shard (if still present and actually expired)
// and debits the memory accountant, cancelling nothing further since the
// expiration manager already removed the schedule entry itself.
func (e *Engine) removeExpiredKeys(keys []string) {
	now := e.now()
	for _, key := range keys {
		s := e.shardFor(key)
		s.mu.Lock()
		ent, ok := s.data[key]
		if ok && ent.expired(now) {
			delete(s.data, key)
			e.memory.removeMemory(key, ent.size()+int64(len(key))+keyOverhead)
			e.metrics.RecordExpiration()
		}
		s.mu.Unlock()
	}
}

// deleteKeyLocked removes key from s (if present), debits the accountant,
// and cancels any expiration schedule entry. Caller must hold s's write
// lock. Returns whether a key was actually removed.
func (e *Engine) deleteKeyLocked(s *shard, key string) bool {
	ent, ok := s.data[key]
	if !ok {
		return false
	}
	delete(s.data, key)
	e.memory.removeMemory(key, ent.size()+int64(len(key))+keyOverhead)
	if ent.hasDeadline {
		e.expiration.cancelKey(key)
	}
	return true
}

// setDeadlineLocked installs or clears key's deadline in both the entry
// and the expiration schedule. Caller must hold s's write lock.
func (e *Engine) setDeadlineLocked(s *shard, key string, ent *entry, deadline int64, has bool) {
	if ent.hasDeadline {
		e.expiration.cancelKey(key)
	}
	ent.hasDeadline = has
	ent.deadline = deadline
	if has {
		e.expiration.scheduleKey(key, deadline)
	}
	e.memory.addMemory(key, 0, has, deadline) // re-tags deadline metadata without double-crediting size
}

// storeEntryLocked installs ent at key within s, crediting the accountant
// for the full delta relative to any previous entry the key held and
// moving the key's expiration schedule from the previous entry's deadline
// to ent's. Caller must hold s's write lock.
//
// storeEntryLocked itself only accounts for and installs the new entry;
// it never evicts and never fails. The eviction loop that may run
// beforehand (spec.md §4.4 eviction protocol), and the OutOfMemory error
// under NoEviction, come from the caller's reserve/reserveGrowth call,
// since evicting a key from a different shard requires
// releasing s's lock first (spec.md §5: never hold two shard locks that
// aren't already part of an ascending-order multi-key operation).
func (e *Engine) storeEntryLocked(s *shard, key string, ent *entry) {
	oldSize := int64(0)
	if prev, ok := s.data[key]; ok {
		oldSize = prev.size() + int64(len(key)) + keyOverhead
		if prev.hasDeadline {
			e.expiration.cancelKey(key)
		}
	}
	newSize := ent.size() + int64(len(key)) + keyOverhead
	s.data[key] = ent
	if newSize != oldSize {
		e.memory.addMemory(key, newSize-oldSize, ent.hasDeadline, ent.deadline)
	} else {
		e.memory.addMemory(key, 0, ent.hasDeadline, ent.deadline)
	}
	if ent.hasDeadline {
		e.expiration.scheduleKey(key, ent.deadline)
	}
}

// reserve runs the eviction loop so that crediting delta additional bytes
// would not overflow the configured memory budget. It evicts one key at a
// time, always from whichever shard currently owns the victim (taking
// that shard's own lock only for the duration of the single removal), so
// it never holds two shard locks at once outside the established
// ascending-order discipline. Returns an OutOfMemory error if eviction
// cannot free enough room (NoEviction, or no eligible victim remains).
func (e *Engine) reserve(delta int64) error {
	if !e.memory.enabled() {
		return nil
	}
	for {
		overflow, limit, projected := e.memory.projectedOverflow(delta)
		if !overflow {
			return nil
		}
		victim, ok := e.memory.selectVictim()
		if !ok {
			if e.memory.getPolicy() == NoEviction {
				return NewErrOutOfMemory(limit, projected)
			}
			return NewErrOutOfMemory(limit, projected)
		}
		vs := e.shardFor(victim)
		vs.mu.Lock()
		removed := e.deleteKeyLocked(vs, victim)
		vs.mu.Unlock()
		if removed {
			e.metrics.RecordEviction(e.memory.getPolicy())
		}
	}
}

// Len returns the number of live (non-expired) keys across the keyspace.
// Expired-but-not-yet-swept keys are not counted. O(n) over all shards.
func (e *Engine) Len() int {
	now := e.now()
	var n int
	for _, s := range e.shards {
		s.mu.RLock()
		for _, ent := range s.data {
			if !ent.expired(now) {
				n++
			}
		}
		s.mu.RUnlock()
	}
	return n
}

// FlushAll removes every key from the keyspace, the expiration schedule,
// and the memory accountant. There is a single logical keyspace, so
// FlushDB and FlushAll (spec.md §6 SERVER group) are equivalent and both
// call this.
func (e *Engine) FlushAll() {
	start := time.Now()
	defer func() { e.recordLatency(opFlushAll, start, nil) }()

	for _, s := range e.shards {
		s.mu.Lock()
		for key, ent := range s.data {
			e.memory.removeMemory(key, ent.size()+int64(len(key))+keyOverhead)
		}
		s.data = make(map[string]*entry)
		s.mu.Unlock()
	}
	e.expiration.clear()
}

// CurrentMemoryUsage returns the Memory Accountant's running byte total.
func (e *Engine) CurrentMemoryUsage() int64 {
	return e.memory.currentTotal()
}

// SetMaxMemory updates the accounted-byte budget. A zero or negative
// value disables the budget (the accountant becomes inert).
func (e *Engine) SetMaxMemory(bytes int64) {
	e.memory.setMaxMemory(bytes)
}

// SetMaxMemoryPolicy updates the eviction policy used once a budget is
// exceeded.
func (e *Engine) SetMaxMemoryPolicy(p Policy) {
	e.memory.setPolicy(p)
}

// getLive returns the live, non-expired entry for key, lazily purging it
// (and debiting the accountant) if it has expired but the sweeper hasn't
// reached it yet (spec.md §4.3 "lazy purge on read"). ok is false if the
// key is absent or was just purged.
func (e *Engine) getLive(key string) (ent *entry, ok bool) {
	s := e.shardFor(key)
	now := e.now()

	s.mu.RLock()
	found, exists := s.data[key]
	if exists && !found.expired(now) {
		s.mu.RUnlock()
		return found, true
	}
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	found, exists = s.data[key]
	if !exists {
		return nil, false
	}
	if !found.expired(now) {
		return found, true
	}
	delete(s.data, key)
	e.memory.removeMemory(key, found.size()+int64(len(key))+keyOverhead)
	if found.hasDeadline {
		e.expiration.cancelKey(key)
	}
	e.metrics.RecordExpiration()
	return nil, false
}

// reserveGrowth runs the eviction loop so that growing the keyspace by
// approximately estimatedGrowth bytes will not overflow the configured
// budget. It is a best-effort pre-check taken before the target shard is
// locked (so eviction, which locks shards one at a time, never competes
// with the lock the write itself is about to take); storeEntryLocked
// performs the exact, authoritative accounting once the write happens.
func (e *Engine) reserveGrowth(estimatedGrowth int64) error {
	if estimatedGrowth <= 0 {
		return nil
	}
	return e.reserve(estimatedGrowth)
}

// typeMismatch builds a WrongType error for key currently holding got when
// want was required.
func typeMismatch(key string, got, want Kind) error {
	return NewErrWrongType(key, want.String(), got.String())
}

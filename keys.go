// keys.go: key-space operations (DEL/EXISTS/KEYS/RENAME/COPY) and the
// expiration command surface (EXPIRE/TTL/PERSIST and friends)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import (
	"strings"
	"time"

	"github.com/gobwas/glob"
)

const opDel, opExists, opKeys, opType, opRename, opRenameNX, opCopy,
	opExpire, opPExpire, opExpireAt, opPExpireAt, opTTL, opPTTL,
	opPersist, opExpireTime =
	"DEL", "EXISTS", "KEYS", "TYPE", "RENAME", "RENAMENX", "COPY",
	"EXPIRE", "PEXPIRE", "EXPIREAT", "PEXPIREAT", "TTL", "PTTL",
	"PERSIST", "EXPIRETIME"

// Del removes keys from the keyspace, locking their distinct shards in
// ascending order (spec.md §5). Returns the number of keys actually
// removed (absent/expired keys don't count).
func (e *Engine) Del(keys ...string) (removed int64) {
	start := time.Now()
	defer func() { e.recordLatency(opDel, start, nil) }()

	shards := e.shardsForKeys(keys)
	for _, s := range shards {
		s.mu.Lock()
	}
	defer func() {
		for _, s := range shards {
			s.mu.Unlock()
		}
	}()

	now := e.now()
	for _, key := range keys {
		s := e.shardFor(key)
		ent, ok := s.data[key]
		if !ok || ent.expired(now) {
			continue
		}
		if e.deleteKeyLocked(s, key) {
			removed++
		}
	}
	return removed
}

// Unlink is an alias for Del: this engine has no separate async reclamation
// path, so UNLINK and DEL share the same implementation (spec.md §4.5).
func (e *Engine) Unlink(keys ...string) int64 {
	return e.Del(keys...)
}

// Exists returns the count of the given keys that are currently live
// (present and not expired); the same key listed twice counts twice,
// matching Redis EXISTS semantics.
func (e *Engine) Exists(keys ...string) (n int64) {
	start := time.Now()
	defer func() { e.recordLatency(opExists, start, nil) }()

	for _, k := range keys {
		if _, ok := e.getLive(k); ok {
			n++
		}
	}
	return n
}

// translateGlobNegation rewrites spec.md §6's `[^set]` negated character
// class into the `[!set]` form github.com/gobwas/glob actually recognizes.
// Redis's own glob grammar uses `[^...]`; gobwas/glob follows the POSIX
// shell convention instead, so without this translation a pattern like
// "[^a]*" would compile but never match what Redis users expect.
func translateGlobNegation(pattern string) string {
	if !strings.Contains(pattern, "[^") {
		return pattern
	}
	var b strings.Builder
	b.Grow(len(pattern))
	escaped := false
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case c == '\\':
			b.WriteByte(c)
			escaped = true
		case !inClass && c == '[':
			inClass = true
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				b.WriteString("[!")
				i++
			} else {
				b.WriteByte(c)
			}
		case inClass && c == ']':
			inClass = false
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Keys returns every live key matching the glob pattern (spec.md §6
// "Key-glob pattern grammar": `*`, `?`, `[set]`, `\` escape, `[^set]`
// negation). Returns InvalidArgument if pattern fails to compile.
func (e *Engine) Keys(pattern string) (out []string, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opKeys, start, err) }()

	g, err := glob.Compile(translateGlobNegation(pattern))
	if err != nil {
		return nil, NewErrInvalidArgument("invalid glob pattern: " + pattern)
	}

	now := e.now()
	for _, s := range e.shards {
		s.mu.RLock()
		for key, ent := range s.data {
			if ent.expired(now) {
				continue
			}
			if g.Match(key) {
				out = append(out, key)
			}
		}
		s.mu.RUnlock()
	}
	return out, nil
}

// Type returns the TYPE-command name of the value stored at key
// ("string"|"list"|"set"|"hash"|"zset"), or "none" if absent/expired.
func (e *Engine) Type(key string) string {
	start := time.Now()
	defer func() { e.recordLatency(opType, start, nil) }()

	ent, exists := e.getLive(key)
	if !exists {
		return "none"
	}
	return ent.value.Kind().String()
}

// Rename atomically moves the entry (including any deadline) from src to
// dst, overwriting dst if it already exists. Returns NotFound if src is
// absent or expired.
func (e *Engine) Rename(src, dst string) (err error) {
	start := time.Now()
	defer func() { e.recordLatency(opRename, start, err) }()

	if src == dst {
		if _, ok := e.getLive(src); !ok {
			return NewErrNotFound(src)
		}
		return nil
	}

	shards := e.shardsForKeys([]string{src, dst})
	for _, s := range shards {
		s.mu.Lock()
	}
	defer func() {
		for _, s := range shards {
			s.mu.Unlock()
		}
	}()

	srcShard := e.shardFor(src)
	now := e.now()
	srcEnt, ok := srcShard.data[src]
	if !ok || srcEnt.expired(now) {
		return NewErrNotFound(src)
	}

	e.deleteKeyLocked(srcShard, src)
	dstShard := e.shardFor(dst)
	e.storeEntryLocked(dstShard, dst, srcEnt)
	return nil
}

// RenameNX behaves like Rename but fails without modifying state if dst
// already holds a live value. Returns stored=false (no error) if dst
// exists; NotFound if src is absent or expired.
func (e *Engine) RenameNX(src, dst string) (stored bool, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opRenameNX, start, err) }()

	shards := e.shardsForKeys([]string{src, dst})
	for _, s := range shards {
		s.mu.Lock()
	}
	defer func() {
		for _, s := range shards {
			s.mu.Unlock()
		}
	}()

	now := e.now()
	srcShard := e.shardFor(src)
	srcEnt, ok := srcShard.data[src]
	if !ok || srcEnt.expired(now) {
		return false, NewErrNotFound(src)
	}

	dstShard := e.shardFor(dst)
	if dstEnt, ok := dstShard.data[dst]; ok && !dstEnt.expired(now) {
		return false, nil
	}

	e.deleteKeyLocked(srcShard, src)
	e.storeEntryLocked(dstShard, dst, srcEnt)
	return true, nil
}

// Copy duplicates the entry at src to dst, deep-copying mutable containers
// so the two keys share no storage (spec.md §9 "Ownership"). The copy
// carries no deadline regardless of src's. Returns stored=false if src is
// absent/expired.
func (e *Engine) Copy(src, dst string) (stored bool, err error) {
	start := time.Now()
	defer func() { e.recordLatency(opCopy, start, err) }()

	srcShard := e.shardFor(src)

	srcShard.mu.RLock()
	srcEnt, ok := srcShard.data[src]
	live := ok && !srcEnt.expired(e.now())
	var cloned Value
	if live {
		cloned = srcEnt.value.clone()
	}
	srcShard.mu.RUnlock()
	if !live {
		return false, nil
	}

	// Reserve growth before taking any shard lock: reserve may need to
	// lock the shard of whichever victim selectVictim picks, and that must never happen
	// while we're already holding src's or dst's lock (spec.md §5 lock
	// ordering would otherwise be violated, and a victim landing on src
	// or dst would self-deadlock since RWMutex isn't reentrant).
	if err := e.reserveGrowth(cloned.estimatedSize()); err != nil {
		return false, err
	}

	shards := e.shardsForKeys([]string{src, dst})
	for _, s := range shards {
		s.mu.Lock()
	}
	defer func() {
		for _, s := range shards {
			s.mu.Unlock()
		}
	}()

	now := e.now()
	srcEnt, ok = srcShard.data[src]
	if !ok || srcEnt.expired(now) {
		return false, nil
	}

	dstShard := e.shardFor(dst)
	e.storeEntryLocked(dstShard, dst, &entry{value: cloned})
	return true, nil
}

// Expire sets a TTL of seconds on key. Returns 1 if applied, 0 if key is
// absent or expired.
func (e *Engine) Expire(key string, seconds int64) int64 {
	start := time.Now()
	defer func() { e.recordLatency(opExpire, start, nil) }()
	return e.expireIn(key, seconds*1_000_000_000)
}

// PExpire sets a TTL of ms milliseconds on key. Returns 1 if applied, 0 if
// key is absent or expired.
func (e *Engine) PExpire(key string, ms int64) int64 {
	start := time.Now()
	defer func() { e.recordLatency(opPExpire, start, nil) }()
	return e.expireIn(key, ms*1_000_000)
}

func (e *Engine) expireIn(key string, deltaNanos int64) int64 {
	s := e.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	ent, ok := s.data[key]
	if !ok || ent.expired(now) {
		return 0
	}

	e.setDeadlineLocked(s, key, ent, now+deltaNanos, true)
	return 1
}

// ExpireAt sets key's deadline to the given wall-clock epoch in seconds,
// converting to a monotonic deadline by computing the current difference
// (spec.md §4.2). Returns 1 if applied, 0 if key is absent or expired.
func (e *Engine) ExpireAt(key string, epochSeconds int64) int64 {
	start := time.Now()
	defer func() { e.recordLatency(opExpireAt, start, nil) }()
	return e.expireAtNanos(key, epochSeconds*1_000_000_000)
}

// PExpireAt is ExpireAt with a millisecond epoch.
func (e *Engine) PExpireAt(key string, epochMs int64) int64 {
	start := time.Now()
	defer func() { e.recordLatency(opPExpireAt, start, nil) }()
	return e.expireAtNanos(key, epochMs*1_000_000)
}

func (e *Engine) expireAtNanos(key string, epochNanos int64) int64 {
	s := e.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	ent, ok := s.data[key]
	if !ok || ent.expired(now) {
		return 0
	}

	wallNow := e.wallNowNanos()
	deadline := now + (epochNanos - wallNow)
	e.setDeadlineLocked(s, key, ent, deadline, true)
	return 1
}

// TTL returns the seconds remaining until key expires: -2 if absent, -1 if
// no deadline is set, otherwise the remaining whole seconds (rounded up so
// a key with a sub-second remainder never incorrectly reports 0 as already
// gone).
func (e *Engine) TTL(key string) int64 {
	start := time.Now()
	defer func() { e.recordLatency(opTTL, start, nil) }()

	ms := e.PTTL(key)
	if ms < 0 {
		return ms
	}
	return (ms + 999) / 1000
}

// PTTL returns the milliseconds remaining until key expires: -2 if absent,
// -1 if no deadline is set.
func (e *Engine) PTTL(key string) int64 {
	start := time.Now()
	defer func() { e.recordLatency(opPTTL, start, nil) }()

	ent, exists := e.getLive(key)
	e.observeRead(opPTTL, key, exists)
	if !exists {
		return -2
	}
	if !ent.hasDeadline {
		return -1
	}
	remaining := ent.deadline - e.now()
	if remaining < 0 {
		remaining = 0
	}
	return remaining / 1_000_000
}

// Persist clears key's deadline, making it live forever. Returns 1 if a
// deadline was actually cleared, 0 if key was absent/expired or had none.
func (e *Engine) Persist(key string) int64 {
	start := time.Now()
	defer func() { e.recordLatency(opPersist, start, nil) }()

	s := e.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.now()
	ent, ok := s.data[key]
	if !ok || ent.expired(now) || !ent.hasDeadline {
		return 0
	}

	e.setDeadlineLocked(s, key, ent, 0, false)
	return 1
}

// ExpireTime returns the stored wall-clock deadline (Unix seconds) if key
// has one: -2 if absent, -1 if no deadline, otherwise the reconstructed
// wall-clock epoch (best-effort if the system clock has moved since the
// deadline was set; spec.md §9 "Monotonic vs wall clock").
func (e *Engine) ExpireTime(key string) int64 {
	start := time.Now()
	defer func() { e.recordLatency(opExpireTime, start, nil) }()

	ent, exists := e.getLive(key)
	e.observeRead(opExpireTime, key, exists)
	if !exists {
		return -2
	}
	if !ent.hasDeadline {
		return -1
	}
	wallNow := e.wallNowNanos()
	deltaNanos := ent.deadline - e.now()
	return (wallNow + deltaNanos) / 1_000_000_000
}

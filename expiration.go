// expiration.go: time-indexed expiration schedule and background sweeper
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// expirationManager holds an ordered map from deadline to the set of keys
// expiring at that deadline, and runs the background sweeper that
// periodically evicts everything past its deadline.
//
// schedule/cancel/sweep/clear are the only mutating entry points, and each
// holds mu only for the duration of a single map operation (spec.md §5:
// "its critical sections are short").
type expirationManager struct {
	mu       sync.Mutex
	schedule map[int64]map[string]struct{}

	sweepInterval time.Duration
	timeProvider  TimeProvider
	logger        Logger

	startOnce sync.Once
	started   atomic.Bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// newExpirationManager constructs an expiration manager. The sweeper is
// not started until startSweeper is called.
func newExpirationManager(sweepIntervalMs int64, tp TimeProvider, logger Logger) *expirationManager {
	return &expirationManager{
		schedule:      make(map[int64]map[string]struct{}),
		sweepInterval: time.Duration(sweepIntervalMs) * time.Millisecond,
		timeProvider:  tp,
		logger:        logger,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// scheduleKey inserts key into the bucket at deadline.
func (m *expirationManager) scheduleKey(key string, deadline int64) {
	m.mu.Lock()
	bucket, ok := m.schedule[deadline]
	if !ok {
		bucket = make(map[string]struct{})
		m.schedule[deadline] = bucket
	}
	bucket[key] = struct{}{}
	m.mu.Unlock()
}

// cancelKey removes key from every bucket it appears in. The engine
// guarantees a key appears in at most one bucket; cancelKey tolerates the
// broader case so double-scheduling stays correct (spec.md §4.3).
func (m *expirationManager) cancelKey(key string) {
	m.mu.Lock()
	for deadline, bucket := range m.schedule {
		if _, ok := bucket[key]; ok {
			delete(bucket, key)
			if len(bucket) == 0 {
				delete(m.schedule, deadline)
			}
		}
	}
	m.mu.Unlock()
}

// sweep removes every bucket whose deadline is <= now and returns the
// union of their keys. Buckets are removed atomically with respect to mu.
func (m *expirationManager) sweep(now int64) []string {
	m.mu.Lock()
	var deadlines []int64
	for d := range m.schedule {
		if d <= now {
			deadlines = append(deadlines, d)
		}
	}
	if len(deadlines) == 0 {
		m.mu.Unlock()
		return nil
	}
	sort.Slice(deadlines, func(i, j int) bool { return deadlines[i] < deadlines[j] })

	var keys []string
	for _, d := range deadlines {
		bucket := m.schedule[d]
		delete(m.schedule, d)
		for k := range bucket {
			keys = append(keys, k)
		}
	}
	m.mu.Unlock()
	return keys
}

// clear empties all scheduling state (used by FLUSHDB/FLUSHALL).
func (m *expirationManager) clear() {
	m.mu.Lock()
	m.schedule = make(map[int64]map[string]struct{})
	m.mu.Unlock()
}

// startSweeper launches the background sweep goroutine. Idempotent: a
// second call is a no-op, matching the "installed at most once per engine
// instance" rule (spec.md §4.3). removeFn is invoked outside any lock held
// by the expiration manager, once on each tick that swept at least one key,
// with the keys swept that tick; ticks that sweep nothing skip it.
func (m *expirationManager) startSweeper(removeFn func(keys []string)) {
	m.startOnce.Do(func() {
		m.started.Store(true)
		go func() {
			defer close(m.doneCh)
			ticker := time.NewTicker(m.sweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					now := m.timeProvider.Now()
					keys := m.sweep(now)
					if len(keys) == 0 {
						continue
					}
					m.logger.Debug("expiration sweep", "count", len(keys))
					removeFn(keys)
				case <-m.stopCh:
					return
				}
			}
		}()
	})
}

// stopSweeper signals the sweeper to exit and waits for it to do so. It
// must exit before the next tick's mutations begin (spec.md §5). Safe to
// call even if the sweeper was never started.
func (m *expirationManager) stopSweeper() {
	if !m.started.Load() {
		return
	}
	select {
	case <-m.stopCh:
		// already stopped
		return
	default:
	}
	close(m.stopCh)
	<-m.doneCh
}

// Package embedis provides an embedded, in-process key/value store with a
// Redis-compatible command surface and no network I/O.
//
// # Overview
//
// embedis is a concurrent, multi-type keyspace meant to be linked directly
// into a Go process: a sharded map of String/List/Set/Hash/SortedSet
// values, background time-based expiration, and a pluggable maxmemory
// eviction policy, all exposed behind one facade type, Engine. There is no
// RESP parser, no listener, no persistence, and no cluster/replication;
// those concerns belong to a separate process-boundary adapter layered on
// top of this package, not to the engine itself.
//
// # Quick Start
//
//	eng := embedis.New(100) // 100ms sweep interval
//	defer eng.Close()
//	eng.StartSweeper()
//
//	eng.Set("user:123", []byte("alice"), embedis.SetOptions{})
//	val, ok, err := eng.Get("user:123")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if ok {
//	    fmt.Printf("user:123 = %s\n", val)
//	}
//
// # Data Model
//
// Every key maps to at most one Stored Entry: a Typed Value (C1, value.go)
// paired with an optional monotonic expiration deadline (C2, entry.go).
// Five Typed Value shapes are supported: String, List, Set, Hash, and
// SortedSet. An operation applied to a key whose stored value is a
// different kind fails with a WrongType error rather than silently
// coercing; state is left unchanged.
//
// # Expiration
//
// Deadlines are stored as monotonic instants, not wall-clock timestamps,
// so a system clock adjustment can never prematurely expire a key. A
// background sweeper goroutine (C3, expiration.go), started explicitly via
// StartSweeper, removes expired keys at a configurable interval
// (SweepIntervalMs, default 100ms); a key can also be removed earlier by a
// lazy purge the moment a read observes it past its deadline. EXPIREAT-style
// calls accept a wall-clock epoch and convert it to a monotonic deadline
// by computing the current difference at call time.
//
// # Memory Accounting and Eviction
//
// When MaxMemory is configured, the Memory Accountant (C4, memory.go)
// tracks a running byte total and selects eviction victims under one of
// eight policies (noeviction, allkeys-lru/lfu/random,
// volatile-lru/lfu/random/ttl) before any write that would overflow the
// budget is allowed to proceed. Under noeviction, a write that would
// overflow the budget fails with an OutOfMemory error and leaves state
// unchanged; reads are never affected by the budget.
//
// # Concurrency
//
// The keyspace is partitioned into a fixed number of shards (ShardCount,
// default 32), each guarded by its own sync.RWMutex. A read takes a shared
// lock on the owning shard; a write takes an exclusive lock on that shard
// only. Multi-key operations (MSET, DEL, RENAME, ...) lock every distinct
// shard they touch in ascending shard-index order, so no two concurrent
// multi-key operations can deadlock against each other. The expiration
// schedule and the memory accountant are each guarded by their own single
// lock, acquired (when both are needed by the same call) in the fixed
// order shard -> accountant -> schedule. No engine method suspends while
// holding a shard lock.
//
// # Error Handling
//
// Engine methods return structured errors built on github.com/agilira/go-errors,
// categorized into a closed taxonomy: WrongType, NotFound, ParseError,
// InvalidArgument, OutOfMemory, NotSupported. Use IsWrongType(err),
// IsOutOfMemory(err), etc. (errors.go) to branch on the category rather
// than comparing against sentinel values. Most read operations fold an
// absent key into a null/zero return instead of an error; NotFound is
// reserved for calls that need to distinguish "absent" from "an empty
// successful result".
//
// # Configuration
//
//	eng := embedis.WithConfig(embedis.Config{
//	    MaxMemory:       64 << 20, // 64 MiB
//	    MaxMemoryPolicy: embedis.AllKeysLRU,
//	    SweepIntervalMs: 100,
//	    Logger:          myLogger,          // optional, default NoOpLogger
//	    MetricsCollector: myCollector,       // optional, default NoOpMetricsCollector
//	})
//
// MaxMemory/MaxMemoryPolicy can also be hot-reloaded from a watched
// configuration file via HotConfig (hot-reload.go), built on
// github.com/agilira/argus the same way the teacher library's own
// hot-reload.go reloads its cache configuration.
//
// # Observability
//
// The Logger and MetricsCollector interfaces (interfaces.go) are injected,
// not hard-wired: the default implementations (NoOpLogger,
// NoOpMetricsCollector) cost nothing. The embedis/otel subpackage provides
// a MetricsCollector backed by OpenTelemetry histograms and counters for
// production deployments that want per-operation latency percentiles and
// hit/miss/eviction/expiration rates.
//
// # Non-goals
//
// This package deliberately does not implement: RESP wire framing, disk
// persistence, cluster/replication, pub/sub, transactions/MULTI,
// scripting, blocking list pop variants, client-side sharding, or
// wire-level compatibility with any existing server. Response (C6,
// response.go) and the ArgumentEncoder/ResponseDecoder conversion
// contracts (C7, convert.go) exist so an external protocol adapter can be
// layered on top without reaching into engine internals, but embedis does
// not ship such an adapter itself.
package embedis

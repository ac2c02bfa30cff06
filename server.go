// server.go: server-group operations (PING/ECHO/DBSIZE/FLUSHALL/TIME/LASTSAVE)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import "time"

const opPing, opEcho, opDBSize, opFlushAll, opTime, opLastSave =
	"PING", "ECHO", "DBSIZE", "FLUSHALL", "TIME", "LASTSAVE"

// Ping returns "PONG", matching the Redis no-argument PING reply.
func (e *Engine) Ping() string {
	start := time.Now()
	defer func() { e.recordLatency(opPing, start, nil) }()
	return "PONG"
}

// Echo returns msg unchanged.
func (e *Engine) Echo(msg string) string {
	start := time.Now()
	defer func() { e.recordLatency(opEcho, start, nil) }()
	return msg
}

// DBSize returns the number of live keys in the keyspace. Equivalent to
// Len, exposed under the server-group command name.
func (e *Engine) DBSize() int64 {
	start := time.Now()
	defer func() { e.recordLatency(opDBSize, start, nil) }()
	return int64(e.Len())
}

// FlushDB drops every key and resets the accountant and expiration
// schedule. This engine exposes a single logical keyspace, so FlushDB and
// FlushAll are equivalent (spec.md §4.5).
func (e *Engine) FlushDB() {
	e.FlushAll()
}

// Time returns the current wall-clock time as [seconds, microseconds],
// matching the Redis TIME reply shape.
func (e *Engine) Time() (seconds, microseconds int64) {
	start := time.Now()
	defer func() { e.recordLatency(opTime, start, nil) }()

	nanos := e.wallNowNanos()
	return nanos / 1_000_000_000, (nanos % 1_000_000_000) / 1_000
}

// LastSave returns a monotone-nondecreasing timestamp. This engine has no
// persistence, so it returns the engine's own construction time rather
// than a save timestamp (spec.md §4.5).
func (e *Engine) LastSave() int64 {
	start := time.Now()
	defer func() { e.recordLatency(opLastSave, start, nil) }()
	return e.startedAtUnix
}

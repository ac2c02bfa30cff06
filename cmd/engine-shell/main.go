// engine-shell: an interactive demo REPL over the embedis engine
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

// Command engine-shell is a small line-oriented REPL that exercises the
// embedis facade directly (no network, no RESP framing): it parses
// whitespace-separated commands from stdin and dispatches them to the
// equivalent Engine method, printing a Redis-shell-style reply. It exists
// to let a reader poke at the engine's behavior (TTLs, eviction, wrong-type
// errors) without writing Go, the same role the teacher library's
// examples/ directory plays for its cache API.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/agilira/embedis"
	flashflags "github.com/agilira/flash-flags"
)

func main() {
	fs := flashflags.New("engine-shell", "interactive embedis demo shell")
	maxMemory := fs.Int64("maxmemory", 0, "accounted-byte budget; 0 means unlimited")
	policyName := fs.String("policy", "noeviction", "eviction policy: noeviction|allkeys-lru|allkeys-lfu|allkeys-random|volatile-lru|volatile-lfu|volatile-random|volatile-ttl")
	sweepMs := fs.Int64("sweep-interval-ms", embedis.DefaultSweepIntervalMs, "background expiration sweep period, in milliseconds")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "engine-shell:", err)
		os.Exit(2)
	}

	policy, ok := embedis.ParsePolicy(*policyName)
	if !ok {
		fmt.Fprintf(os.Stderr, "engine-shell: unrecognized policy %q\n", *policyName)
		os.Exit(2)
	}

	eng := embedis.WithConfig(embedis.Config{
		MaxMemory:       *maxMemory,
		MaxMemoryPolicy: policy,
		SweepIntervalMs: *sweepMs,
	})
	defer eng.Close()
	eng.StartSweeper()

	fmt.Printf("embedis shell ready (maxmemory=%d policy=%s sweep=%dms)\n", *maxMemory, policy, *sweepMs)
	fmt.Println("type HELP for a command list, QUIT to exit")

	repl(eng, os.Stdin, os.Stdout)
}

func repl(eng *embedis.Engine, in *os.File, out *os.File) {
	scanner := bufio.NewScanner(in)
	w := bufio.NewWriter(out)
	defer w.Flush()

	for {
		fmt.Fprint(w, "embedis> ")
		w.Flush()

		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := strings.ToUpper(fields[0])
		args := fields[1:]

		if cmd == "QUIT" || cmd == "EXIT" {
			return
		}
		if cmd == "HELP" {
			printHelp(w)
			w.Flush()
			continue
		}

		reply, err := dispatch(eng, cmd, args)
		if err != nil {
			fmt.Fprintf(w, "(error) %v\n", err)
		} else {
			fmt.Fprintln(w, reply)
		}
		w.Flush()
	}
}

func printHelp(w *bufio.Writer) {
	fmt.Fprintln(w, "commands: PING ECHO GET SET DEL EXISTS TYPE TTL PTTL EXPIRE PERSIST KEYS")
	fmt.Fprintln(w, "          LPUSH RPUSH LRANGE LLEN SADD SMEMBERS SCARD HSET HGET HGETALL")
	fmt.Fprintln(w, "          ZADD ZRANGE ZSCORE ZCARD DBSIZE FLUSHALL QUIT")
}

func dispatch(eng *embedis.Engine, cmd string, args []string) (string, error) {
	switch cmd {
	case "PING":
		return eng.Ping(), nil

	case "ECHO":
		return strings.Join(args, " "), nil

	case "SET":
		if len(args) < 2 {
			return "", fmt.Errorf("wrong number of arguments for SET")
		}
		if _, err := eng.Set(args[0], []byte(args[1]), embedis.SetOptions{}); err != nil {
			return "", err
		}
		return "OK", nil

	case "GET":
		if len(args) != 1 {
			return "", fmt.Errorf("wrong number of arguments for GET")
		}
		v, ok, err := eng.Get(args[0])
		if err != nil {
			return "", err
		}
		if !ok {
			return "(nil)", nil
		}
		return string(v), nil

	case "DEL":
		return strconv.FormatInt(eng.Del(args...), 10), nil

	case "EXISTS":
		return strconv.FormatInt(eng.Exists(args...), 10), nil

	case "TYPE":
		if len(args) != 1 {
			return "", fmt.Errorf("wrong number of arguments for TYPE")
		}
		return eng.Type(args[0]), nil

	case "TTL":
		if len(args) != 1 {
			return "", fmt.Errorf("wrong number of arguments for TTL")
		}
		return strconv.FormatInt(eng.TTL(args[0]), 10), nil

	case "PTTL":
		if len(args) != 1 {
			return "", fmt.Errorf("wrong number of arguments for PTTL")
		}
		return strconv.FormatInt(eng.PTTL(args[0]), 10), nil

	case "EXPIRE":
		if len(args) != 2 {
			return "", fmt.Errorf("wrong number of arguments for EXPIRE")
		}
		seconds, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid seconds: %w", err)
		}
		return strconv.FormatInt(eng.Expire(args[0], seconds), 10), nil

	case "PERSIST":
		if len(args) != 1 {
			return "", fmt.Errorf("wrong number of arguments for PERSIST")
		}
		return strconv.FormatInt(eng.Persist(args[0]), 10), nil

	case "KEYS":
		pattern := "*"
		if len(args) == 1 {
			pattern = args[0]
		}
		keys, err := eng.Keys(pattern)
		if err != nil {
			return "", err
		}
		return strings.Join(keys, "\n"), nil

	case "LPUSH", "RPUSH":
		if len(args) < 2 {
			return "", fmt.Errorf("wrong number of arguments for %s", cmd)
		}
		values := make([][]byte, len(args)-1)
		for i, a := range args[1:] {
			values[i] = []byte(a)
		}
		var n int64
		var err error
		if cmd == "LPUSH" {
			n, err = eng.LPush(args[0], values...)
		} else {
			n, err = eng.RPush(args[0], values...)
		}
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil

	case "LRANGE":
		if len(args) != 3 {
			return "", fmt.Errorf("wrong number of arguments for LRANGE")
		}
		start, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return "", err
		}
		stop, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return "", err
		}
		items, err := eng.LRange(args[0], start, stop)
		if err != nil {
			return "", err
		}
		return joinBytes(items), nil

	case "LLEN":
		if len(args) != 1 {
			return "", fmt.Errorf("wrong number of arguments for LLEN")
		}
		n, err := eng.LLen(args[0])
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil

	case "SADD":
		if len(args) < 2 {
			return "", fmt.Errorf("wrong number of arguments for SADD")
		}
		members := make([][]byte, len(args)-1)
		for i, a := range args[1:] {
			members[i] = []byte(a)
		}
		n, err := eng.SAdd(args[0], members...)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil

	case "SMEMBERS":
		if len(args) != 1 {
			return "", fmt.Errorf("wrong number of arguments for SMEMBERS")
		}
		members, err := eng.SMembers(args[0])
		if err != nil {
			return "", err
		}
		return joinBytes(members), nil

	case "SCARD":
		if len(args) != 1 {
			return "", fmt.Errorf("wrong number of arguments for SCARD")
		}
		n, err := eng.SCard(args[0])
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil

	case "HSET":
		if len(args) < 3 || len(args)%2 != 1 {
			return "", fmt.Errorf("wrong number of arguments for HSET")
		}
		fieldValues := make(map[string][]byte, (len(args)-1)/2)
		for i := 1; i < len(args); i += 2 {
			fieldValues[args[i]] = []byte(args[i+1])
		}
		n, err := eng.HSet(args[0], fieldValues)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil

	case "HGET":
		if len(args) != 2 {
			return "", fmt.Errorf("wrong number of arguments for HGET")
		}
		v, ok, err := eng.HGet(args[0], args[1])
		if err != nil {
			return "", err
		}
		if !ok {
			return "(nil)", nil
		}
		return string(v), nil

	case "HGETALL":
		if len(args) != 1 {
			return "", fmt.Errorf("wrong number of arguments for HGETALL")
		}
		fields, err := eng.HGetAll(args[0])
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for k, v := range fields {
			fmt.Fprintf(&b, "%s => %s\n", k, v)
		}
		return strings.TrimRight(b.String(), "\n"), nil

	case "ZADD":
		if len(args) < 3 || len(args)%2 != 1 {
			return "", fmt.Errorf("wrong number of arguments for ZADD")
		}
		scores := make(map[string]float64, (len(args)-1)/2)
		for i := 1; i < len(args); i += 2 {
			score, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return "", fmt.Errorf("invalid score: %w", err)
			}
			scores[args[i+1]] = score
		}
		n, err := eng.ZAdd(args[0], scores)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil

	case "ZRANGE":
		if len(args) != 3 {
			return "", fmt.Errorf("wrong number of arguments for ZRANGE")
		}
		start, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return "", err
		}
		stop, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return "", err
		}
		members, err := eng.ZRange(args[0], start, stop)
		if err != nil {
			return "", err
		}
		return strings.Join(members, "\n"), nil

	case "ZSCORE":
		if len(args) != 2 {
			return "", fmt.Errorf("wrong number of arguments for ZSCORE")
		}
		score, ok, err := eng.ZScore(args[0], args[1])
		if err != nil {
			return "", err
		}
		if !ok {
			return "(nil)", nil
		}
		return strconv.FormatFloat(score, 'g', -1, 64), nil

	case "ZCARD":
		if len(args) != 1 {
			return "", fmt.Errorf("wrong number of arguments for ZCARD")
		}
		n, err := eng.ZCard(args[0])
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil

	case "DBSIZE":
		return strconv.FormatInt(eng.DBSize(), 10), nil

	case "FLUSHALL":
		eng.FlushAll()
		return "OK", nil

	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}
}

func joinBytes(items [][]byte) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = string(it)
	}
	return strings.Join(parts, "\n")
}

// config_test.go: tests for configuration defaults and policy parsing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import "testing"

func TestParsePolicyRecognizesAllCanonicalNames(t *testing.T) {
	tests := []struct {
		name string
		want Policy
	}{
		{"noeviction", NoEviction},
		{"", NoEviction},
		{"allkeys-lru", AllKeysLRU},
		{"allkeys-lfu", AllKeysLFU},
		{"allkeys-random", AllKeysRandom},
		{"volatile-lru", VolatileLRU},
		{"volatile-lfu", VolatileLFU},
		{"volatile-random", VolatileRandom},
		{"volatile-ttl", VolatileTTL},
	}
	for _, tt := range tests {
		got, ok := ParsePolicy(tt.name)
		if !ok {
			t.Errorf("ParsePolicy(%q) ok = false, want true", tt.name)
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParsePolicyRejectsUnknownName(t *testing.T) {
	got, ok := ParsePolicy("bogus")
	if ok {
		t.Fatal("ParsePolicy(bogus) ok = true, want false")
	}
	if got != NoEviction {
		t.Fatalf("ParsePolicy(bogus) = %v, want NoEviction as the safe fallback", got)
	}
}

func TestPolicyStringRoundTripsThroughParsePolicy(t *testing.T) {
	policies := []Policy{
		NoEviction, AllKeysLRU, AllKeysLFU, AllKeysRandom,
		VolatileLRU, VolatileLFU, VolatileRandom, VolatileTTL,
	}
	for _, p := range policies {
		name := p.String()
		got, ok := ParsePolicy(name)
		if !ok || got != p {
			t.Errorf("ParsePolicy(%q) = (%v, %v), want (%v, true)", name, got, ok, p)
		}
	}
}

func TestPolicyVolatileOnly(t *testing.T) {
	volatile := []Policy{VolatileLRU, VolatileLFU, VolatileRandom, VolatileTTL}
	for _, p := range volatile {
		if !p.volatileOnly() {
			t.Errorf("%v.volatileOnly() = false, want true", p)
		}
	}
	allKeys := []Policy{NoEviction, AllKeysLRU, AllKeysLFU, AllKeysRandom}
	for _, p := range allKeys {
		if p.volatileOnly() {
			t.Errorf("%v.volatileOnly() = true, want false", p)
		}
	}
}

func TestConfigValidateAppliesDefaults(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if c.SweepIntervalMs != DefaultSweepIntervalMs {
		t.Errorf("SweepIntervalMs = %d, want %d", c.SweepIntervalMs, DefaultSweepIntervalMs)
	}
	if c.ShardCount != DefaultShardCount {
		t.Errorf("ShardCount = %d, want %d", c.ShardCount, DefaultShardCount)
	}
	if c.Logger == nil {
		t.Error("Logger is nil after Validate()")
	}
	if c.TimeProvider == nil {
		t.Error("TimeProvider is nil after Validate()")
	}
	if c.MetricsCollector == nil {
		t.Error("MetricsCollector is nil after Validate()")
	}
}

func TestConfigValidatePreservesExplicitValues(t *testing.T) {
	c := Config{SweepIntervalMs: 50, ShardCount: 4}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if c.SweepIntervalMs != 50 {
		t.Errorf("SweepIntervalMs = %d, want 50 (explicit value must survive Validate)", c.SweepIntervalMs)
	}
	if c.ShardCount != 4 {
		t.Errorf("ShardCount = %d, want 4 (explicit value must survive Validate)", c.ShardCount)
	}
}

func TestDefaultConfigIsUsable(t *testing.T) {
	c := DefaultConfig()
	if c.MaxMemoryPolicy != NoEviction {
		t.Errorf("DefaultConfig().MaxMemoryPolicy = %v, want NoEviction", c.MaxMemoryPolicy)
	}
	if c.SweepIntervalMs != DefaultSweepIntervalMs {
		t.Errorf("DefaultConfig().SweepIntervalMs = %d, want %d", c.SweepIntervalMs, DefaultSweepIntervalMs)
	}
	if c.TimeProvider == nil || c.Logger == nil || c.MetricsCollector == nil {
		t.Fatal("DefaultConfig() left a collaborator nil")
	}
}

func TestSystemTimeProviderReturnsPositiveNanos(t *testing.T) {
	tp := &systemTimeProvider{}
	if tp.Now() <= 0 {
		t.Fatal("systemTimeProvider.Now() <= 0, want a positive nanosecond timestamp")
	}
}

// hot-reload_test.go: tests for hot-reloadable configuration parsing
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import "testing"

func TestNewHotConfigRequiresConfigPath(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	if _, err := NewHotConfig(e, HotConfigOptions{}); err == nil {
		t.Fatal("NewHotConfig() with empty ConfigPath, want an error")
	}
}

func TestNewHotConfigRequiresEngine(t *testing.T) {
	if _, err := NewHotConfig(nil, HotConfigOptions{ConfigPath: "config.yaml"}); err == nil {
		t.Fatal("NewHotConfig(nil engine), want an error")
	}
}

func TestParsePositiveInt64AcceptsNumericKinds(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int64
		ok    bool
	}{
		{"int", int(5), 5, true},
		{"int64", int64(5), 5, true},
		{"float64", float64(5), 5, true},
		{"zero", int(0), 0, false},
		{"negative", int(-1), 0, false},
		{"string", "5", 0, false},
	}
	for _, tt := range tests {
		got, ok := parsePositiveInt64(tt.value)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parsePositiveInt64(%v) = (%d, %v), want (%d, %v)", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseConfigReadsEngineSection(t *testing.T) {
	hc := &HotConfig{config: DefaultConfig()}
	data := map[string]interface{}{
		"engine": map[string]interface{}{
			"maxmemory":        float64(1024),
			"maxmemory_policy": "allkeys-lru",
			"sweep_interval_ms": float64(250),
		},
	}

	got := hc.parseConfig(data)
	if got.MaxMemory != 1024 {
		t.Errorf("parseConfig().MaxMemory = %d, want 1024", got.MaxMemory)
	}
	if got.MaxMemoryPolicy != AllKeysLRU {
		t.Errorf("parseConfig().MaxMemoryPolicy = %v, want AllKeysLRU", got.MaxMemoryPolicy)
	}
	if got.SweepIntervalMs != 250 {
		t.Errorf("parseConfig().SweepIntervalMs = %d, want 250", got.SweepIntervalMs)
	}
}

func TestParseConfigAcceptsRootLevelKeys(t *testing.T) {
	hc := &HotConfig{config: DefaultConfig()}
	data := map[string]interface{}{"maxmemory": float64(2048)}

	got := hc.parseConfig(data)
	if got.MaxMemory != 2048 {
		t.Errorf("parseConfig().MaxMemory = %d, want 2048", got.MaxMemory)
	}
}

func TestParseConfigIgnoresUnrelatedKeysAndKeepsCurrentValues(t *testing.T) {
	hc := &HotConfig{config: Config{MaxMemory: 99, MaxMemoryPolicy: AllKeysLFU}}
	got := hc.parseConfig(map[string]interface{}{"unrelated": "value"})
	if got.MaxMemory != 99 || got.MaxMemoryPolicy != AllKeysLFU {
		t.Fatalf("parseConfig() with no engine section = %+v, want the current config preserved", got)
	}
}

func TestParseConfigIgnoresUnrecognizedPolicyName(t *testing.T) {
	hc := &HotConfig{config: Config{MaxMemoryPolicy: AllKeysLFU}}
	data := map[string]interface{}{"engine": map[string]interface{}{"maxmemory_policy": "bogus"}}
	got := hc.parseConfig(data)
	if got.MaxMemoryPolicy != AllKeysLFU {
		t.Fatalf("parseConfig() with an unrecognized policy name = %v, want the current policy preserved", got.MaxMemoryPolicy)
	}
}

func TestApplyChangesPushesMaxMemoryAndPolicy(t *testing.T) {
	e := newUnboundedTestEngine()
	defer e.Close()
	hc := &HotConfig{engine: e}

	old := Config{MaxMemory: 0, MaxMemoryPolicy: NoEviction}
	new := Config{MaxMemory: 4096, MaxMemoryPolicy: AllKeysLRU}
	hc.applyChanges(old, new)

	if !e.memory.enabled() {
		t.Fatal("applyChanges() did not push the new MaxMemory onto the engine")
	}
	if e.memory.getPolicy() != AllKeysLRU {
		t.Fatal("applyChanges() did not push the new MaxMemoryPolicy onto the engine")
	}
}

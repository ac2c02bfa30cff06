// hot-reload.go: dynamic maxmemory/policy reload with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotConfig watches a configuration file and pushes MaxMemory and
// MaxMemoryPolicy changes into a live Engine as they're detected,
// following the teacher library's hot-reload.go shape
// (argus.UniversalConfigWatcherWithConfig + a parsed-config cache). The
// sweep interval is deliberately excluded from hot reload: it's installed
// once with the sweeper goroutine and fixed for that goroutine's lifetime
// (spec.md §4.3 "installed at most once per engine instance"); a changed
// sweep_interval_ms is parsed and recorded in GetConfig but takes effect
// only on a fresh Engine built via New/WithConfig.
type HotConfig struct {
	engine  *Engine
	watcher *argus.Watcher
	mu      sync.RWMutex
	config  Config

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats (via argus).
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)
}

// NewHotConfig creates a hot-reloadable configuration view over engine and
// starts watching the file at opts.ConfigPath immediately.
//
// Example configuration file (YAML):
//
//	engine:
//	  maxmemory: 67108864
//	  maxmemory_policy: "allkeys-lru"
//	  sweep_interval_ms: 100
//
// Recognized keys, under an "engine" section, or at the document root when
// the root itself has a "maxmemory" key:
//   - engine.maxmemory (int, bytes): Accounted-byte budget; only positive
//     values are applied, so 0 or a negative value leaves the budget as is
//   - engine.maxmemory_policy (string): One of the eight policy names (config.go ParsePolicy)
//   - engine.sweep_interval_ms (int): Recorded only; requires a fresh Engine to take effect
func NewHotConfig(engine *Engine, opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	hc := &HotConfig{
		engine:   engine,
		OnReload: opts.OnReload,
		config:   DefaultConfig(),
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes. A no-op if
// already running.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the most recently applied configuration (thread-safe).
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// handleConfigChange is invoked by Argus when the watched file changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := hc.parseConfig(configData)
	hc.config = newConfig
	hc.mu.Unlock()

	hc.applyChanges(oldConfig, newConfig)

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

// parsePositiveInt64 extracts a positive int64 from interface{} (YAML/JSON
// may hand back int or float64 depending on the decoder).
func parsePositiveInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return int64(v), true
		}
	case int64:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int64(v), true
		}
	}
	return 0, false
}

// parseConfig extracts engine configuration from Argus config data,
// starting from the last parsed configuration (DefaultConfig before the
// first reload) so an unrelated key changing doesn't reset the rest.
func (hc *HotConfig) parseConfig(data map[string]interface{}) Config {
	config := hc.config

	section, ok := data["engine"].(map[string]interface{})
	if !ok {
		if _, hasMaxMemory := data["maxmemory"]; hasMaxMemory {
			section = data
		} else {
			return config
		}
	}

	if mm, ok := parsePositiveInt64(section["maxmemory"]); ok {
		config.MaxMemory = mm
	}

	if name, ok := section["maxmemory_policy"].(string); ok {
		if p, ok := ParsePolicy(name); ok {
			config.MaxMemoryPolicy = p
		}
	}

	if si, ok := parsePositiveInt64(section["sweep_interval_ms"]); ok {
		config.SweepIntervalMs = si
	}

	return config
}

// applyChanges pushes the parts of new that can change on a live Engine
// (MaxMemory, MaxMemoryPolicy) without reconstruction. SweepIntervalMs is
// recorded in config but cannot be applied to an already-started sweeper
// (spec.md §4.3).
func (hc *HotConfig) applyChanges(old, new Config) {
	if new.MaxMemory != old.MaxMemory {
		hc.engine.SetMaxMemory(new.MaxMemory)
	}
	if new.MaxMemoryPolicy != old.MaxMemoryPolicy {
		hc.engine.SetMaxMemoryPolicy(new.MaxMemoryPolicy)
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultConfigFile is looked up in the working directory when --config is
// not given. A missing default file is not an error.
const defaultConfigFile = "deptrace.yaml"

// Config is the top-level CLI configuration, loaded from YAML and
// overridable by flags.
type Config struct {
	Store StoreConfig `yaml:"store" json:"store"`
	Log   LogConfig   `yaml:"log" json:"log"`
	Walk  WalkConfig  `yaml:"walk" json:"walk"`
	Watch WatchConfig `yaml:"watch" json:"watch"`
}

// StoreConfig locates the snapshot store.
type StoreConfig struct {
	// Path is the snapshot database directory.
	Path string `yaml:"path" json:"path"`

	// Snapshot is the default snapshot name commands operate on when
	// --name is not given.
	Snapshot string `yaml:"snapshot" json:"snapshot"`
}

// LogConfig configures CLI logging.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level" json:"level"`

	// JSON switches stderr output to JSON format.
	JSON bool `yaml:"json" json:"json"`

	// Dir enables file logging to the given directory.
	Dir string `yaml:"dir" json:"dir"`

	// Quiet disables stderr logging.
	Quiet bool `yaml:"quiet" json:"quiet"`
}

// WalkConfig bounds invalidation walks.
type WalkConfig struct {
	// MaxDepth bounds expansion levels. 0 = unlimited.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`

	// MaxAffected bounds the affected set size. 0 = unlimited.
	MaxAffected int `yaml:"max_affected" json:"max_affected"`

	// Exclude drops matching sources from reported results
	// (doublestar globs).
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// Root is the source tree to watch. Default: current directory.
	Root string `yaml:"root" json:"root"`

	// DebounceMs is the debounce window in milliseconds.
	DebounceMs int `yaml:"debounce_ms" json:"debounce_ms"`

	// Ignore lists doublestar globs to skip.
	Ignore []string `yaml:"ignore" json:"ignore"`
}

// DefaultConfig returns the configuration used when no file or flags
// override it.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Path:     ".deptrace",
			Snapshot: "main",
		},
		Log: LogConfig{
			Level: "info",
		},
		Walk: WalkConfig{},
		Watch: WatchConfig{
			Root:       ".",
			DebounceMs: 100,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults.
//
// Inputs:
//
//	path - Config file path. When explicit is false a missing file yields
//	defaults; when true it is an error.
//
// Outputs:
//
//	Config - Merged configuration.
//	error - Non-nil on read, parse, or validation failure.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if c.Store.Snapshot == "" {
		return fmt.Errorf("store.snapshot must not be empty")
	}
	if c.Walk.MaxDepth < 0 {
		return fmt.Errorf("walk.max_depth must be >= 0, got %d", c.Walk.MaxDepth)
	}
	if c.Walk.MaxAffected < 0 {
		return fmt.Errorf("walk.max_affected must be >= 0, got %d", c.Walk.MaxAffected)
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMs)
	}
	return nil
}

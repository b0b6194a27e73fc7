// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/deptrace/pkg/deps"
)

func TestLoadConfig_MissingDefault(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "deptrace.yaml"), false)
	if err != nil {
		t.Fatalf("missing default config should not error: %v", err)
	}
	if cfg.Store.Path != ".deptrace" {
		t.Errorf("Store.Path = %q, expected default", cfg.Store.Path)
	}
	if cfg.Watch.DebounceMs != 100 {
		t.Errorf("Watch.DebounceMs = %d, expected 100", cfg.Watch.DebounceMs)
	}
}

func TestLoadConfig_MissingExplicit(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), true)
	if err == nil {
		t.Fatal("explicitly named missing config should error")
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deptrace.yaml")
	content := `
store:
  path: /var/lib/deptrace
log:
  level: debug
  json: true
walk:
  max_depth: 5
  exclude:
    - "test/**"
watch:
  root: ./src
  debounce_ms: 250
  ignore:
    - "**/*.bak"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Store.Path != "/var/lib/deptrace" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Walk.MaxDepth != 5 || len(cfg.Walk.Exclude) != 1 {
		t.Errorf("Walk = %+v", cfg.Walk)
	}
	if cfg.Watch.Root != "./src" || cfg.Watch.DebounceMs != 250 {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deptrace.yaml")
	if err := os.WriteFile(path, []byte("walk:\n  max_depth: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path, true); err == nil {
		t.Fatal("negative max_depth should fail validation")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg.Store.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty store path should fail validation")
	}
}

func TestFilterSources(t *testing.T) {
	srcs := []deps.SourceID{"src/A.java", "test/ATest.java", "src/B.java"}

	kept, excluded := filterSources(srcs, []string{"test/**"})
	if excluded != 1 || len(kept) != 2 {
		t.Fatalf("kept %v, excluded %d", kept, excluded)
	}
	for _, src := range kept {
		if src == "test/ATest.java" {
			t.Error("excluded source still present")
		}
	}

	kept, excluded = filterSources(srcs, nil)
	if excluded != 0 || len(kept) != 3 {
		t.Errorf("no patterns should keep everything, kept %v", kept)
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOp_String(t *testing.T) {
	cases := map[Op]string{
		OpCreate: "create",
		OpWrite:  "write",
		OpRemove: "remove",
		OpRename: "rename",
		Op(42):   "unknown",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Errorf("Op(%d).String() = %q, expected %q", op, got, want)
		}
	}
}

func TestShouldIgnore(t *testing.T) {
	w := &Watcher{
		root:     "/proj",
		patterns: []string{".git/**", ".git", "**/*.swp", "target/**"},
	}

	cases := []struct {
		path string
		want bool
	}{
		{"/proj/.git/HEAD", true},
		{"/proj/.git", true},
		{"/proj/src/Main.java.swp", true},
		{"/proj/target/classes/A.class", true},
		{"/proj/src/Main.java", false},
		{"/proj/build.sbt", false},
	}
	for _, tc := range cases {
		if got := w.shouldIgnore(tc.path); got != tc.want {
			t.Errorf("shouldIgnore(%q) = %v, expected %v", tc.path, got, tc.want)
		}
	}
}

func TestDedupe(t *testing.T) {
	now := time.Now()
	changes := []Change{
		{Path: "a.java", Op: OpCreate, Time: now},
		{Path: "b.java", Op: OpWrite, Time: now},
		{Path: "a.java", Op: OpWrite, Time: now.Add(time.Millisecond)},
	}

	got := dedupe(changes)
	if len(got) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(got))
	}
	if got[0].Path != "a.java" || got[0].Op != OpWrite {
		t.Errorf("latest change per path should win, got %+v", got[0])
	}
	if got[1].Path != "b.java" {
		t.Errorf("order of first appearance should be kept, got %+v", got[1])
	}
}

func TestWatcher_DetectsWrites(t *testing.T) {
	dir := t.TempDir()

	batches := make(chan []Change, 8)
	w, err := New(dir, func(changes []Change) {
		batches <- changes
	}, &Options{Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !w.IsWatching() {
		t.Fatal("watcher should report watching after Start")
	}

	if err := os.WriteFile(filepath.Join(dir, "Main.java"), []byte("class Main {}"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case changes := <-batches:
		found := false
		for _, c := range changes {
			if c.Path == "Main.java" {
				found = true
			}
		}
		if !found {
			t.Errorf("batch %v should contain Main.java", changes)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
	}
}

func TestWatcher_IgnoredFilesDropped(t *testing.T) {
	dir := t.TempDir()

	batches := make(chan []Change, 8)
	w, err := New(dir, func(changes []Change) {
		batches <- changes
	}, &Options{
		Debounce:       50 * time.Millisecond,
		IgnorePatterns: []string{"**/*.tmp"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "scratch.tmp"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case changes := <-batches:
		t.Errorf("ignored file should not produce a batch, got %v", changes)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Stop()
	w.Stop()
	if w.IsWatching() {
		t.Error("stopped watcher should not report watching")
	}
}

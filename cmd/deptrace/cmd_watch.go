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
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/deptrace/pkg/deps"
	"github.com/AleutianAI/deptrace/pkg/invalidate"
	"github.com/AleutianAI/deptrace/pkg/watch"
)

var (
	watchName     string
	watchRoot     string
	watchDebounce int
	watchIgnore   []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a source tree and report recompilation sets live",
	Long: `Watch monitors a source tree for changes. Changed paths are matched
against the snapshot's sources; each debounced batch triggers an
invalidation walk and prints the sources a compiler run would need to
rebuild. Runs until interrupted.

Example:
  deptrace watch --root ./src --name main`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchName, "name", "",
		"Snapshot name to query")
	watchCmd.Flags().StringVar(&watchRoot, "root", "",
		"Source tree to watch (overrides config)")
	watchCmd.Flags().IntVar(&watchDebounce, "debounce", 0,
		"Debounce window in milliseconds (overrides config)")
	watchCmd.Flags().StringSliceVar(&watchIgnore, "ignore", nil,
		"Glob patterns to ignore (adds to config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cfg.Watch.Root
	if watchRoot != "" {
		root = watchRoot
	}
	debounce := cfg.Watch.DebounceMs
	if cmd.Flags().Changed("debounce") {
		debounce = watchDebounce
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	name := resolveName(watchName)
	rel, err := store.Load(ctx, name)
	if err != nil {
		return err
	}

	tracker := invalidate.NewDirtyTracker()

	opts := watch.DefaultOptions()
	if debounce > 0 {
		opts.Debounce = time.Duration(debounce) * time.Millisecond
	}
	opts.IgnorePatterns = append(opts.IgnorePatterns, cfg.Watch.Ignore...)
	opts.IgnorePatterns = append(opts.IgnorePatterns, watchIgnore...)

	watcher, err := watch.New(root, func(changes []watch.Change) {
		for _, change := range changes {
			tracker.MarkDirtyWithOrigin(deps.SourceID(change.Path), "watcher")
			logger.Debug("change detected", "path", change.Path, "op", change.Op.String())
		}
		reportDirty(ctx, rel, tracker)
	}, &opts)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	logger.Info("watching", "root", root, "snapshot", name)

	<-ctx.Done()
	logger.Info("watch stopped")
	return nil
}

// reportDirty drains the tracker, walks the affected closure, and prints
// the recompilation set.
func reportDirty(ctx context.Context, rel deps.Relations, tracker *invalidate.DirtyTracker) {
	dirty := tracker.Drain()
	if dirty.Len() == 0 {
		return
	}

	res := invalidate.Affected(ctx, rel, invalidate.Seeds{Sources: dirty.Slice()},
		invalidate.WithMaxDepth(cfg.Walk.MaxDepth),
		invalidate.WithMaxAffected(cfg.Walk.MaxAffected),
	)

	affected := res.Affected.Slice()
	sort.Slice(affected, func(i, j int) bool { return affected[i] < affected[j] })

	fmt.Printf("--- %d changed, %d affected ---\n", dirty.Len(), len(affected))
	for _, src := range affected {
		fmt.Println(string(src))
	}
	if res.Truncated {
		logger.Warn("walk truncated, result may be incomplete")
	}
}

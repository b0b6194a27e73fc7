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
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/deptrace/pkg/deps"
	"github.com/AleutianAI/deptrace/pkg/invalidate"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	// Seed flags
	affectedName     string
	affectedProducts []string
	affectedBinaries []string
	affectedClasses  []string

	// Walk flags
	affectedMaxDepth    int
	affectedMaxAffected int
	affectedExclude     []string

	// Output flags
	affectedJSON bool
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var affectedCmd = &cobra.Command{
	Use:   "affected [sources...]",
	Short: "Compute the sources to recompile for a set of changes",
	Long: `Affected walks reverse dependency edges from the given changed inputs
and reports every source the change reaches, i.e. the recompilation set.

Seeds can be any mix of changed sources (positional), changed products,
changed binary artifacts, and changed class names.

Examples:
  deptrace affected src/auth/Validator.java
  deptrace affected --binary lib/guava.jar
  deptrace affected --class com.example.auth.Token --json
  deptrace affected src/A.java --max-depth 3 --exclude 'test/**'

CI/CD Integration:
  deptrace affected --binary lib/api.jar --json
  (reports "truncated": true when a limit stopped the walk early)`,
	Args: cobra.ArbitraryArgs,
	RunE: runAffected,
}

func init() {
	affectedCmd.Flags().StringVar(&affectedName, "name", "",
		"Snapshot name to query")
	affectedCmd.Flags().StringSliceVar(&affectedProducts, "product", nil,
		"Changed product artifacts")
	affectedCmd.Flags().StringSliceVar(&affectedBinaries, "binary", nil,
		"Changed binary artifacts")
	affectedCmd.Flags().StringSliceVar(&affectedClasses, "class", nil,
		"Changed fully-qualified class names")

	affectedCmd.Flags().IntVar(&affectedMaxDepth, "max-depth", 0,
		"Maximum transitive depth (0 = unlimited, overrides config)")
	affectedCmd.Flags().IntVar(&affectedMaxAffected, "max-affected", 0,
		"Maximum affected sources (0 = unlimited, overrides config)")
	affectedCmd.Flags().StringSliceVar(&affectedExclude, "exclude", nil,
		"Glob patterns to drop from results (adds to config)")

	affectedCmd.Flags().BoolVar(&affectedJSON, "json", false,
		"Output as JSON for scripting")
}

// affectedReport is the machine-readable result payload.
type affectedReport struct {
	Snapshot  string   `json:"snapshot"`
	Affected  []string `json:"affected"`
	Excluded  int      `json:"excluded"`
	Depth     int      `json:"depth"`
	Truncated bool     `json:"truncated"`
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runAffected(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	seeds := invalidate.Seeds{}
	for _, s := range args {
		seeds.Sources = append(seeds.Sources, deps.SourceID(s))
	}
	for _, p := range affectedProducts {
		seeds.Products = append(seeds.Products, deps.ProductID(p))
	}
	for _, b := range affectedBinaries {
		seeds.Binaries = append(seeds.Binaries, deps.BinaryID(b))
	}
	for _, c := range affectedClasses {
		seeds.Classes = append(seeds.Classes, deps.ClassName(c))
	}
	if seeds.IsEmpty() {
		return fmt.Errorf("no seeds given: pass sources, --product, --binary, or --class")
	}

	maxDepth := cfg.Walk.MaxDepth
	if cmd.Flags().Changed("max-depth") {
		maxDepth = affectedMaxDepth
	}
	maxAffected := cfg.Walk.MaxAffected
	if cmd.Flags().Changed("max-affected") {
		maxAffected = affectedMaxAffected
	}
	exclude := append(append([]string{}, cfg.Walk.Exclude...), affectedExclude...)

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rel, err := store.Load(ctx, resolveName(affectedName))
	if err != nil {
		return err
	}

	start := time.Now()
	res := invalidate.Affected(ctx, rel, seeds,
		invalidate.WithMaxDepth(maxDepth),
		invalidate.WithMaxAffected(maxAffected),
	)
	logger.Debug("walk finished",
		"affected", res.Affected.Len(),
		"depth", res.Depth,
		"truncated", res.Truncated,
		"duration", time.Since(start),
	)

	kept, excluded := filterSources(res.Affected.Slice(), exclude)
	sort.Slice(kept, func(i, j int) bool { return kept[i] < kept[j] })

	if affectedJSON {
		report := affectedReport{
			Snapshot:  resolveName(affectedName),
			Affected:  make([]string, len(kept)),
			Excluded:  excluded,
			Depth:     res.Depth,
			Truncated: res.Truncated,
		}
		for i, src := range kept {
			report.Affected[i] = string(src)
		}
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	for _, src := range kept {
		fmt.Println(string(src))
	}
	if res.Truncated {
		logger.Warn("walk truncated, result may be incomplete")
	}
	return nil
}

// filterSources drops sources matching any exclude glob, returning the
// kept sources and the number dropped.
func filterSources(srcs []deps.SourceID, patterns []string) ([]deps.SourceID, int) {
	if len(patterns) == 0 {
		return srcs, 0
	}

	kept := make([]deps.SourceID, 0, len(srcs))
	excluded := 0
	for _, src := range srcs {
		drop := false
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, string(src)); ok {
				drop = true
				break
			}
		}
		if drop {
			excluded++
		} else {
			kept = append(kept, src)
		}
	}
	return kept, excluded
}

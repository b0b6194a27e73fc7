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

	"github.com/spf13/cobra"
)

var (
	statsName string
	statsJSON bool
)

// snapshotStats is the machine-readable stats payload.
type snapshotStats struct {
	Name         string `json:"name"`
	Sources      int    `json:"sources"`
	Products     int    `json:"products"`
	Binaries     int    `json:"binaries"`
	ClassNames   int    `json:"class_names"`
	InternalDeps int    `json:"internal_deps"`
	ExternalDeps int    `json:"external_deps"`
	TotalEdges   int    `json:"total_edges"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show size statistics for a snapshot",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsName, "name", "",
		"Snapshot name")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false,
		"Output as JSON for scripting")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := resolveName(statsName)

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rel, err := store.Load(ctx, name)
	if err != nil {
		return err
	}

	stats := snapshotStats{
		Name:         name,
		Sources:      rel.AllSources().Len(),
		Products:     rel.AllProducts().Len(),
		Binaries:     rel.AllBinaryDeps().Len(),
		ClassNames:   rel.Classes().RightKeys().Len(),
		InternalDeps: rel.Direct().Internal.Size(),
		ExternalDeps: rel.Direct().External.Size(),
		TotalEdges:   rel.EdgeCount(),
	}

	if statsJSON {
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Snapshot %q\n", stats.Name)
	fmt.Printf("  Sources:        %d\n", stats.Sources)
	fmt.Printf("  Products:       %d\n", stats.Products)
	fmt.Printf("  Binary deps:    %d\n", stats.Binaries)
	fmt.Printf("  Class names:    %d\n", stats.ClassNames)
	fmt.Printf("  Internal deps:  %d\n", stats.InternalDeps)
	fmt.Printf("  External deps:  %d\n", stats.ExternalDeps)
	fmt.Printf("  Total edges:    %d\n", stats.TotalEdges)
	return nil
}

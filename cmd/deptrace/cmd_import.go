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
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/deptrace/pkg/snapshot"
)

var importName string

var importCmd = &cobra.Command{
	Use:   "import [payload.json]",
	Short: "Import a relations payload into the snapshot store",
	Long: `Import reads a relations payload produced by a compiler run (or by
"deptrace export") and saves it under a snapshot name, replacing any
previous snapshot with that name.

Examples:
  deptrace import build/relations.json
  deptrace import --name release build/relations.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "",
		"Snapshot name to save under")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := resolveName(importName)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	// Decode first so a bad payload never lands in the store.
	rel, err := snapshot.Decode(data)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(ctx, name, rel); err != nil {
		return err
	}

	logger.Info("snapshot imported",
		"name", name,
		"sources", rel.AllSources().Len(),
		"edges", rel.EdgeCount(),
	)
	fmt.Printf("Imported %q: %d sources, %d edges\n",
		name, rel.AllSources().Len(), rel.EdgeCount())
	return nil
}

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

var (
	exportName   string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a snapshot as a canonical JSON payload",
	Long: `Export writes the named snapshot's relations payload to stdout or a
file. The payload is canonical: exporting the same relations always
produces identical bytes, so payloads diff and hash cleanly.

Examples:
  deptrace export > relations.json
  deptrace export --name release --output release.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportName, "name", "",
		"Snapshot name to export")
	exportCmd.Flags().StringVar(&exportOutput, "output", "",
		"Output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := resolveName(exportName)

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rel, err := store.Load(ctx, name)
	if err != nil {
		return err
	}

	data, err := snapshot.Encode(rel)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(exportOutput, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}

	logger.Info("snapshot exported", "name", name, "output", exportOutput)
	return nil
}

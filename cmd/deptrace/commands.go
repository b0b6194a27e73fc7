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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/deptrace/pkg/logging"
	"github.com/AleutianAI/deptrace/pkg/snapshot"
)

// --- Global Command Variables ---
var (
	flagConfig   string
	flagStore    string
	flagLogLevel string
	flagLogJSON  bool
	flagQuiet    bool

	cfg    Config
	logger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "deptrace",
		Short: "Track and query source dependency relations for incremental builds",
		Long: `deptrace stores the dependency relations an incremental compiler
records per run (products, binary deps, internal/external source deps,
generated class names) and answers the question builds actually care
about: given these changes, what must be recompiled?`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = LoadConfig(flagConfig, flagConfig != defaultConfigFile)
			if err != nil {
				return err
			}

			// Flags override file values.
			if flagStore != "" {
				cfg.Store.Path = flagStore
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = flagLogLevel
			}
			if flagLogJSON {
				cfg.Log.JSON = true
			}
			if flagQuiet {
				cfg.Log.Quiet = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			logger = logging.New(logging.Config{
				Level:   level,
				LogDir:  cfg.Log.Dir,
				Service: "deptrace",
				JSON:    cfg.Log.JSON,
				Quiet:   cfg.Log.Quiet,
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Close()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", defaultConfigFile,
		"Config file path")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "",
		"Snapshot store directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info",
		"Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false,
		"Log to stderr in JSON format")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false,
		"Disable stderr logging")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(affectedCmd)
	rootCmd.AddCommand(watchCmd)
}

// resolveName returns the snapshot name a command should operate on: the
// --name flag when given, else the configured default.
func resolveName(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return cfg.Store.Snapshot
}

// openStore opens the configured snapshot store. Callers must Close it.
func openStore() (*snapshot.Store, error) {
	storeCfg := snapshot.DefaultConfig()
	storeCfg.Path = cfg.Store.Path
	storeCfg.Logger = logger.Slog()

	store, err := snapshot.Open(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", cfg.Store.Path, err)
	}
	return store, nil
}

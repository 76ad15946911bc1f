package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pitwall/internal/clean"
)

func newCleanCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the raw source tables",
		Long:  "Reads the raw CSV tables, normalizes null sentinels, parses times and durations, nulls out-of-range values and writes one cleaned artifact per table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func runClean(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, log, err := loadStage(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	summaries, err := clean.Run(cfg, log)
	if err != nil {
		return err
	}

	for _, s := range summaries {
		if s.Skipped {
			fmt.Fprintf(out, "skipped %-13s (raw file missing)\n", s.Table)
			continue
		}
		fmt.Fprintf(out, "cleaned %-13s %d -> %d rows\n", s.Table, s.RowsIn, s.RowsOut)
	}
	fmt.Fprintf(out, "cleaned artifacts written to %s\n", cfg.Paths.InterimData)
	return nil
}

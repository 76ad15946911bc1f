package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pitwall/internal/merge"
)

func newMergeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Join the cleaned tables into one denormalized dataset",
		Long:  "Left-joins every cleaned table onto the results spine, aggregates the per-lap and per-stop children and computes the enrichment columns.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func runMerge(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, log, err := loadStage(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	report, err := merge.Run(cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "merged %d rows (%d DNFs, %d pit-lane starts)\n",
		report.Rows, report.DNFCount, report.PitLaneStarts)
	if report.StatusOrphans > 0 {
		fmt.Fprintf(out, "warning: %d rows reference a missing status label\n", report.StatusOrphans)
	}
	fmt.Fprintf(out, "merged dataset written to %s\n", cfg.MergedFile())
	return nil
}

package main

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newScheduleCmd() *cobra.Command {
	var (
		configPath string
		spec       string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the full pipeline on a cron schedule",
		Long:  "Keeps the process alive and re-runs clean, merge and build on the given cron expression. Each run fully replaces the store, so overlapping data updates between runs are never partially applied.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(cmd, configPath, spec)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().StringVar(&spec, "cron", "0 3 * * *", "cron expression for pipeline runs")
	return cmd
}

func runSchedule(cmd *cobra.Command, configPath, spec string) error {
	out := cmd.OutOrStdout()

	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := runPipeline(cmd, configPath); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "scheduled run failed: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule pipeline: %w", err)
	}

	fmt.Fprintf(out, "pipeline scheduled with %q, waiting for first run\n", spec)
	c.Run()
	return nil
}

package main

import (
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: clean, merge, build",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

// runPipeline executes the stages in their strict order. A stage
// failure stops the run; the next stage would only fail on the missing
// artifact anyway.
func runPipeline(cmd *cobra.Command, configPath string) error {
	if err := runClean(cmd, configPath); err != nil {
		return err
	}
	if err := runMerge(cmd, configPath); err != nil {
		return err
	}
	return runBuild(cmd, configPath, false)
}

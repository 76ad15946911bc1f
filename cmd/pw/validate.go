package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pitwall/internal/validate"
)

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run QA checks over the cleaned tables",
		Long:  "Checks referential integrity, natural-key duplicates and classifier coverage of the live status labels. Findings are reported, never fatal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}

func runValidate(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, log, err := loadStage(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	sc, err := validate.Run(cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "validation: %d checks passed, %d failed\n", sc.Passed, sc.Failed)
	for rel, n := range sc.Orphans {
		if n > 0 {
			fmt.Fprintf(out, "  orphans %-24s %d\n", rel, n)
		}
	}
	for key, n := range sc.Duplicates {
		if n > 0 {
			fmt.Fprintf(out, "  duplicates %-21s %d\n", key, n)
		}
	}
	if len(sc.Unclassified) > 0 {
		fmt.Fprintf(out, "  unclassified labels: %v\n", sc.Unclassified)
	}
	if len(sc.Exclusion) > 0 {
		fmt.Fprintf(out, "  labels both finish and DNF: %v\n", sc.Exclusion)
	}
	return nil
}

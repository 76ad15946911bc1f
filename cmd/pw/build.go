package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pitwall/internal/config"
	"pitwall/internal/db"
	"pitwall/internal/master"
	"pitwall/internal/merge"
	"pitwall/internal/models"
)

func newBuildCmd() *cobra.Command {
	var (
		configPath string
		skipStore  bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the master race table and load the store",
		Long:  "Curates the merged dataset into master_race_table.csv, cross-validates the DNF classification, then drops and reloads the relational store with every table and the analytical views.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, configPath, skipStore)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	cmd.Flags().BoolVar(&skipStore, "skip-store", false, "write the master CSV only, leave the store untouched")
	return cmd
}

func runBuild(cmd *cobra.Command, configPath string, skipStore bool) error {
	out := cmd.OutOrStdout()

	cfg, log, err := loadStage(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	masterRows, report, err := master.Run(cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "master table: %d rows\n", report.Rows)
	if report.Mismatches > 0 {
		fmt.Fprintf(out, "warning: %d DNF flags disagreed with the recomputed classification\n", report.Mismatches)
	}
	fmt.Fprintf(out, "DNFs: %d total, %.1f%% with unattributed cause\n", report.DNFTotal, report.OtherPct())

	if skipStore {
		fmt.Fprintf(out, "store load skipped, master CSV at %s\n", cfg.MasterTableFile())
		return nil
	}

	counts, views, err := loadStore(cfg, masterRows, log)
	if err != nil {
		return err
	}
	for _, c := range counts {
		fmt.Fprintf(out, "loaded %-20s %d rows\n", c.Name, c.Rows)
	}
	fmt.Fprintf(out, "views: %d\n", len(views))
	return nil
}

// loadStore fully replaces the configured store: recreate, migrate,
// load every cleaned table plus the master table, apply the views.
func loadStore(cfg *config.Config, masterRows []models.MasterRace, log *zap.Logger) ([]db.TableCount, []string, error) {
	tables, err := merge.LoadCleanTables(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Recreate(cfg); err != nil {
		return nil, nil, err
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return nil, nil, err
	}
	if err := db.Load(gdb, tables, masterRows, log); err != nil {
		return nil, nil, err
	}
	if err := db.ApplyViews(gdb, cfg.ViewsFile(), log); err != nil {
		return nil, nil, err
	}
	return db.VerifyStore(gdb, log)
}

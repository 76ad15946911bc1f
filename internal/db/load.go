package db

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pitwall/internal/merge"
	"pitwall/internal/models"
)

// loadBatchSize keeps insert statements below the parameter limits of
// both sqlite and mysql for the widest row (the master table).
const loadBatchSize = 500

// AllModels returns every GORM model the store holds, in load order.
// The master table is last so the source tables it was derived from
// are always present first.
func AllModels() []interface{} {
	return []interface{}{
		&models.Circuit{},
		&models.Driver{},
		&models.Constructor{},
		&models.Race{},
		&models.Result{},
		&models.Qualifying{},
		&models.LapTime{},
		&models.PitStop{},
		&models.StatusLabel{},
		&models.MasterRace{},
	}
}

// AutoMigrate creates or updates every table.
func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

func loadTable[T any](gdb *gorm.DB, log *zap.Logger, name string, rows []T) error {
	if len(rows) == 0 {
		log.Warn("no rows to load", zap.String("table", name))
		return nil
	}
	if err := gdb.CreateInBatches(rows, loadBatchSize).Error; err != nil {
		return fmt.Errorf("db: load %s: %w", name, err)
	}
	log.Info("table loaded", zap.String("table", name), zap.Int("rows", len(rows)))
	return nil
}

// Load inserts all cleaned source tables and then the master table.
func Load(gdb *gorm.DB, tables *merge.Tables, master []models.MasterRace, log *zap.Logger) error {
	if err := loadTable(gdb, log, "circuits", tables.Circuits); err != nil {
		return err
	}
	if err := loadTable(gdb, log, "drivers", tables.Drivers); err != nil {
		return err
	}
	if err := loadTable(gdb, log, "constructors", tables.Constructors); err != nil {
		return err
	}
	if err := loadTable(gdb, log, "races", tables.Races); err != nil {
		return err
	}
	if err := loadTable(gdb, log, "results", tables.Results); err != nil {
		return err
	}
	if err := loadTable(gdb, log, "qualifying", tables.Qualifying); err != nil {
		return err
	}
	if err := loadTable(gdb, log, "lap_times", tables.LapTimes); err != nil {
		return err
	}
	if err := loadTable(gdb, log, "pit_stops", tables.PitStops); err != nil {
		return err
	}
	if err := loadTable(gdb, log, "status", tables.Status); err != nil {
		return err
	}
	return loadTable(gdb, log, "master_race_table", master)
}

// ApplyViews executes every statement in the views SQL file. A missing
// file is fatal: the view layer is part of the store contract.
func ApplyViews(gdb *gorm.DB, path string, log *zap.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("db: read views file %s: %w", path, err)
	}
	stmts := splitStatements(string(data))
	for _, stmt := range stmts {
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("db: apply view statement: %w", err)
		}
	}
	log.Info("views applied", zap.String("path", path), zap.Int("statements", len(stmts)))
	return nil
}

// splitStatements breaks a SQL script into executable statements,
// dropping line comments and blank fragments.
func splitStatements(script string) []string {
	var kept []string
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}
	var stmts []string
	for _, chunk := range strings.Split(strings.Join(kept, "\n"), ";") {
		if s := strings.TrimSpace(chunk); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

// TableCount is one line of the store inventory.
type TableCount struct {
	Name string
	Rows int64
}

// VerifyStore reports row counts for every loaded table and lists the
// views present.
func VerifyStore(gdb *gorm.DB, log *zap.Logger) ([]TableCount, []string, error) {
	names := []string{
		"circuits", "drivers", "constructors", "races", "results",
		"qualifying", "lap_times", "pit_stops", "status", "master_race_table",
	}
	counts := make([]TableCount, 0, len(names))
	for _, name := range names {
		var n int64
		if err := gdb.Table(name).Count(&n).Error; err != nil {
			return nil, nil, fmt.Errorf("db: count %s: %w", name, err)
		}
		counts = append(counts, TableCount{Name: name, Rows: n})
		log.Info("store table", zap.String("table", name), zap.Int64("rows", n))
	}

	views, err := listViews(gdb)
	if err != nil {
		return nil, nil, err
	}
	for _, v := range views {
		log.Info("store view", zap.String("view", v))
	}
	return counts, views, nil
}

func listViews(gdb *gorm.DB) ([]string, error) {
	var query string
	switch gdb.Dialector.Name() {
	case "mysql":
		query = "SELECT table_name FROM information_schema.views WHERE table_schema = DATABASE() ORDER BY table_name"
	default:
		query = "SELECT name FROM sqlite_master WHERE type = 'view' ORDER BY name"
	}
	var views []string
	if err := gdb.Raw(query).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("db: list views: %w", err)
	}
	return views, nil
}

// Package clean normalizes the nine raw source tables into validated,
// typed artifacts: null-sentinel replacement, whitespace trimming,
// numeric and time parsing, out-of-bound nulling and per-table
// derivations. Each cleaned table is written to the interim directory
// as <table>_clean.csv for the merge stage to re-read.
package clean

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"pitwall/internal/config"
	"pitwall/internal/csvio"
)

// Tables lists the source tables in cleaning order.
var Tables = []string{
	"circuits", "drivers", "constructors", "races",
	"results", "qualifying", "lap_times", "pit_stops", "status",
}

// TableSummary reports one table's cleaning outcome.
type TableSummary struct {
	Table   string
	RowsIn  int
	RowsOut int
	Skipped bool
}

// Run cleans every raw table found under the raw data directory and
// writes the cleaned artifacts to the interim directory. A missing raw
// file is skipped with a warning; the merge stage treats a missing
// cleaned artifact as fatal.
func Run(cfg *config.Config, log *zap.Logger) ([]TableSummary, error) {
	if err := os.MkdirAll(cfg.Paths.InterimData, 0o755); err != nil {
		return nil, fmt.Errorf("clean: create interim dir: %w", err)
	}

	summaries := make([]TableSummary, 0, len(Tables))
	for _, table := range Tables {
		rawPath := cfg.RawFile(table)
		if _, err := os.Stat(rawPath); os.IsNotExist(err) {
			log.Warn("raw file not found, skipping table",
				zap.String("table", table), zap.String("path", rawPath))
			summaries = append(summaries, TableSummary{Table: table, Skipped: true})
			continue
		}

		tbl, err := csvio.ReadFile(rawPath)
		if err != nil {
			return nil, fmt.Errorf("clean: %s: %w", table, err)
		}
		tlog := log.With(zap.String("table", table))
		tlog.Info("cleaning table", zap.Int("rows", len(tbl.Rows)))

		out, err := cleanTable(table, tbl, cfg.CleanFile(table), tlog)
		if err != nil {
			return nil, err
		}
		tlog.Info("cleaned table written",
			zap.Int("rows_in", len(tbl.Rows)), zap.Int("rows_out", out),
			zap.String("path", cfg.CleanFile(table)))
		summaries = append(summaries, TableSummary{Table: table, RowsIn: len(tbl.Rows), RowsOut: out})
	}

	log.Info("cleaning complete", zap.Int("tables", len(summaries)))
	return summaries, nil
}

func cleanTable(table string, tbl *csvio.Table, outPath string, log *zap.Logger) (int, error) {
	var n int
	var err error
	switch table {
	case "circuits":
		rows := Circuits(tbl, log)
		n, err = len(rows), WriteCircuits(outPath, rows)
	case "drivers":
		rows := Drivers(tbl, log)
		n, err = len(rows), WriteDrivers(outPath, rows)
	case "constructors":
		rows := Constructors(tbl, log)
		n, err = len(rows), WriteConstructors(outPath, rows)
	case "races":
		rows := Races(tbl, log)
		n, err = len(rows), WriteRaces(outPath, rows)
	case "results":
		rows := Results(tbl, log)
		n, err = len(rows), WriteResults(outPath, rows)
	case "qualifying":
		rows := Qualifying(tbl, log)
		n, err = len(rows), WriteQualifying(outPath, rows)
	case "lap_times":
		rows := LapTimes(tbl, log)
		n, err = len(rows), WriteLapTimes(outPath, rows)
	case "pit_stops":
		rows := PitStops(tbl, log)
		n, err = len(rows), WritePitStops(outPath, rows)
	case "status":
		rows := Status(tbl, log)
		n, err = len(rows), WriteStatus(outPath, rows)
	default:
		return 0, fmt.Errorf("clean: unknown table %q", table)
	}
	if err != nil {
		return 0, fmt.Errorf("clean: write %s: %w", table, err)
	}
	return n, nil
}

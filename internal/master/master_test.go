package master

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"pitwall/internal/config"
	"pitwall/internal/csvio"
	"pitwall/internal/merge"
	"pitwall/internal/status"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }
func sp(v string) *string   { return &v }

func floatPtrEq(got *float64, want float64) bool {
	return got != nil && math.Abs(*got-want) < 1e-9
}

func TestBuildDerivedColumns(t *testing.T) {
	year := 2021
	raceDate := time.Date(2021, 3, 28, 0, 0, 0, 0, time.UTC)
	rows := []merge.Row{
		{ResultID: 1, RaceID: 10, DriverID: 1, ConstructorID: 7,
			Year: &year, ConstructorRef: sp("mercedes"), Date: &raceDate,
			Grid: ip(4), Position: ip(1), Points: fp(25), Status: sp("Finished")},
		{ResultID: 2, RaceID: 10, DriverID: 2, ConstructorID: 7,
			Year: &year, ConstructorRef: sp("mercedes"),
			Grid: ip(2), Position: nil, Points: fp(0), Status: sp("Engine")},
		{ResultID: 3, RaceID: 10, DriverID: 3, ConstructorID: 9,
			Year: &year, Grid: ip(10), Position: ip(6), Points: fp(8),
			Status: sp("Finished")},
	}
	out, _ := Build(rows, zap.NewNop())

	if !floatPtrEq(out[0].GridVsFinishDelta, 3) {
		t.Errorf("P4 to P1 delta = %v, want 3", out[0].GridVsFinishDelta)
	}
	if !out[0].IsWinner || !out[0].IsPointsFinish {
		t.Errorf("winner flags: winner=%v points=%v", out[0].IsWinner, out[0].IsPointsFinish)
	}
	if out[0].Date == nil || *out[0].Date != "2021-03-28" {
		t.Errorf("date = %v, want 2021-03-28", out[0].Date)
	}
	if out[0].ConstructorSeasonKey == nil || *out[0].ConstructorSeasonKey != "mercedes_2021" {
		t.Errorf("season key = %v", out[0].ConstructorSeasonKey)
	}

	if out[1].GridVsFinishDelta != nil {
		t.Errorf("non-finisher must not get a delta, got %v", *out[1].GridVsFinishDelta)
	}
	if out[1].IsWinner || out[1].IsPointsFinish {
		t.Error("retired driver flagged as winner or points finish")
	}

	if out[2].ConstructorSeasonKey == nil || *out[2].ConstructorSeasonKey != "unknown_2021" {
		t.Errorf("missing constructorRef must key as unknown, got %v", out[2].ConstructorSeasonKey)
	}
	if !floatPtrEq(out[2].GridVsFinishDelta, 4) {
		t.Errorf("P10 to P6 delta = %v, want 4", out[2].GridVsFinishDelta)
	}
}

func TestBuildCrossValidationCountsMismatches(t *testing.T) {
	rows := []merge.Row{
		{ResultID: 1, Status: sp("Engine"), IsDNF: true},
		{ResultID: 2, Status: sp("Finished"), IsDNF: true},
		{ResultID: 3, Status: sp("Collision"), IsDNF: false},
	}
	out, report := Build(rows, zap.NewNop())

	if report.Mismatches != 2 {
		t.Errorf("mismatches = %d, want 2", report.Mismatches)
	}
	// The recomputed classification wins regardless of the carried flag.
	if !out[0].IsDNF || out[1].IsDNF || !out[2].IsDNF {
		t.Errorf("recomputed flags = %v %v %v", out[0].IsDNF, out[1].IsDNF, out[2].IsDNF)
	}
}

func TestBuildDNFSubTypeReport(t *testing.T) {
	rows := []merge.Row{
		{ResultID: 1, Status: sp("Engine")},
		{ResultID: 2, Status: sp("Gearbox")},
		{ResultID: 3, Status: sp("Collision")},
		{ResultID: 4, Status: sp("Disqualified")},
		{ResultID: 5, Status: sp("Finished")},
		{ResultID: 6, Status: nil},
	}
	out, report := Build(rows, zap.NewNop())

	if report.DNFTotal != 4 {
		t.Fatalf("dnf total = %d, want 4", report.DNFTotal)
	}
	if report.DNFByType[status.DNFTypeMechanical] != 2 ||
		report.DNFByType[status.DNFTypeCrash] != 1 ||
		report.DNFByType[status.DNFTypeOther] != 1 {
		t.Errorf("sub-type counts = %v", report.DNFByType)
	}
	if got := report.OtherPct(); math.Abs(got-25.0) > 1e-9 {
		t.Errorf("other pct = %v, want 25", got)
	}
	if out[0].DNFType == nil || *out[0].DNFType != "mechanical" {
		t.Errorf("Engine dnf_type = %v", out[0].DNFType)
	}
	if out[4].DNFType != nil {
		t.Errorf("Finished must carry a null dnf_type, got %v", *out[4].DNFType)
	}
	if out[5].IsDNF || out[5].DNFType != nil {
		t.Error("missing label must stay unclassified")
	}
}

func TestOtherPctNoDNFs(t *testing.T) {
	_, report := Build([]merge.Row{{ResultID: 1, Status: sp("Finished")}}, zap.NewNop())
	if report.OtherPct() != 0 {
		t.Errorf("other pct with no DNFs = %v, want 0", report.OtherPct())
	}
}

func TestMissingColumns(t *testing.T) {
	missing := missingColumns([]string{"raceId", "driverId", "status"})
	found := false
	for _, c := range missing {
		if c == "q1_ms" {
			found = true
		}
		if c == "raceId" {
			t.Error("present column reported missing")
		}
	}
	if !found {
		t.Error("absent column q1_ms not reported")
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Paths.InterimData = filepath.Join(dir, "interim")
	cfg.Paths.ProcessedData = filepath.Join(dir, "processed")

	if err := os.MkdirAll(cfg.Paths.InterimData, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	year := 2021
	raceDate := time.Date(2021, 3, 28, 0, 0, 0, 0, time.UTC)
	rows := []merge.Row{
		{ResultID: 1, RaceID: 10, DriverID: 1, ConstructorID: 7,
			Year: &year, Round: ip(1), ConstructorRef: sp("mercedes"),
			Date: &raceDate, Grid: ip(2), Position: ip(1),
			PositionText: "1", Points: fp(25), Status: sp("Finished"),
			IsPodium: true},
		{ResultID: 2, RaceID: 10, DriverID: 2, ConstructorID: 7,
			Year: &year, Round: ip(1), ConstructorRef: sp("mercedes"),
			Date: &raceDate, Grid: ip(5), PositionText: "R",
			Points: fp(0), Status: sp("Gearbox"), IsDNF: true},
	}
	if err := merge.WriteRows(cfg.MergedFile(), rows); err != nil {
		t.Fatalf("write merged fixture: %v", err)
	}

	out, report, err := Run(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 2 || report.Rows != 2 {
		t.Fatalf("rows = %d, want 2", len(out))
	}
	if report.Mismatches != 0 {
		t.Errorf("mismatches = %d, want 0", report.Mismatches)
	}

	tbl, err := csvio.ReadFile(cfg.MasterTableFile())
	if err != nil {
		t.Fatalf("read master csv: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("master csv rows = %d, want 2", len(tbl.Rows))
	}
	first := tbl.Rows[0]
	if tbl.Cell(first, "constructor_season_key") != "mercedes_2021" {
		t.Errorf("season key = %q", tbl.Cell(first, "constructor_season_key"))
	}
	if tbl.Cell(first, "is_winner") != "1" {
		t.Errorf("is_winner = %q, want 1", tbl.Cell(first, "is_winner"))
	}
	second := tbl.Rows[1]
	if tbl.Cell(second, "dnf_type") != "mechanical" {
		t.Errorf("dnf_type = %q, want mechanical", tbl.Cell(second, "dnf_type"))
	}
}

func TestRunMissingMergedArtifact(t *testing.T) {
	cfg := &config.Config{}
	cfg.Paths.InterimData = t.TempDir()
	cfg.Paths.ProcessedData = t.TempDir()

	if _, _, err := Run(cfg, zap.NewNop()); err == nil {
		t.Fatal("missing merged artifact must fail the build")
	}
}


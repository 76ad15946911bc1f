package merge

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"pitwall/internal/clean"
	"pitwall/internal/config"
	"pitwall/internal/models"
	"pitwall/internal/status"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }
func sp(v string) *string   { return &v }

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func floatPtrEq(got *float64, want float64) bool {
	return got != nil && math.Abs(*got-want) < 1e-9
}

func TestAggregateQualifyingKeepsFirstDuplicate(t *testing.T) {
	rows := []models.Qualifying{
		{QualifyID: 1, RaceID: 10, DriverID: 1, Position: ip(1), BestQualiMS: fp(89000)},
		{QualifyID: 2, RaceID: 10, DriverID: 1, Position: ip(4), BestQualiMS: fp(95000)},
		{QualifyID: 3, RaceID: 10, DriverID: 2, Position: ip(2), BestQualiMS: fp(90200)},
	}
	agg := AggregateQualifying(rows, zap.NewNop())
	if len(agg) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(agg))
	}
	first := agg[Key{RaceID: 10, DriverID: 1}]
	if first.Position == nil || *first.Position != 1 {
		t.Errorf("duplicate entry should keep the first row, got position %v", first.Position)
	}
	if !floatPtrEq(first.BestQualiMS, 89000) {
		t.Errorf("best quali = %v, want 89000", first.BestQualiMS)
	}
}

func TestAggregatePitStops(t *testing.T) {
	rows := []models.PitStop{
		{RaceID: 10, DriverID: 1, Stop: 1, PitDurationMS: fp(22000)},
		{RaceID: 10, DriverID: 1, Stop: 2, PitDurationMS: fp(25000)},
		{RaceID: 10, DriverID: 1, Stop: 3, PitDurationMS: nil},
	}
	agg := AggregatePitStops(rows, zap.NewNop())
	a := agg[Key{RaceID: 10, DriverID: 1}]
	if a.TotalStops != 3 {
		t.Errorf("total stops = %d, want 3 (null durations still count)", a.TotalStops)
	}
	if a.TotalTimeMS != 47000 {
		t.Errorf("total time = %v, want 47000", a.TotalTimeMS)
	}
	if !floatPtrEq(a.AvgDurationMS, 23500) {
		t.Errorf("avg duration = %v, want 23500", a.AvgDurationMS)
	}
	if !floatPtrEq(a.MinDurationMS, 22000) {
		t.Errorf("min duration = %v, want 22000", a.MinDurationMS)
	}
}

func TestAggregateLapTimes(t *testing.T) {
	rows := []models.LapTime{
		{RaceID: 10, DriverID: 1, Lap: 1, LapTimeMS: fp(90000)},
		{RaceID: 10, DriverID: 1, Lap: 2, LapTimeMS: fp(91000)},
		{RaceID: 10, DriverID: 1, Lap: 3, LapTimeMS: fp(92000)},
	}
	agg := AggregateLapTimes(rows, zap.NewNop())
	a := agg[Key{RaceID: 10, DriverID: 1}]
	if a.LapsCompleted != 3 {
		t.Errorf("laps completed = %d, want 3", a.LapsCompleted)
	}
	if a.AvgMS != 91000 || a.MedianMS != 91000 || a.FastestMS != 90000 {
		t.Errorf("avg/median/fastest = %v/%v/%v", a.AvgMS, a.MedianMS, a.FastestMS)
	}
	// Sample standard deviation of {90000, 91000, 92000} is 1000.
	if !floatPtrEq(a.StdMS, 1000) {
		t.Errorf("std = %v, want 1000", a.StdMS)
	}
	if !floatPtrEq(a.Consistency, 0.989) {
		t.Errorf("consistency = %v, want 0.989", a.Consistency)
	}
}

func TestAggregateLapTimesSingleLap(t *testing.T) {
	rows := []models.LapTime{
		{RaceID: 10, DriverID: 1, Lap: 1, LapTimeMS: fp(90000)},
	}
	agg := AggregateLapTimes(rows, zap.NewNop())
	a := agg[Key{RaceID: 10, DriverID: 1}]
	if a.StdMS != nil || a.Consistency != nil {
		t.Errorf("std and consistency must stay null for a single lap, got %v / %v", a.StdMS, a.Consistency)
	}
}

func TestBuildMergedRejectsDuplicateContextKeys(t *testing.T) {
	tables := &Tables{
		Races: []models.Race{
			{RaceID: 10, Year: 2021, Round: 1, CircuitID: 5, Name: "A", Date: date("2021-03-28")},
			{RaceID: 10, Year: 2021, Round: 2, CircuitID: 6, Name: "B", Date: date("2021-04-18")},
		},
	}
	if _, _, err := BuildMerged(tables, zap.NewNop()); err == nil {
		t.Fatal("duplicate raceId in races must fail the merge")
	}
}

func TestBuildMergedCountsStatusOrphans(t *testing.T) {
	tables := &Tables{
		Results: []models.Result{
			{ResultID: 1, RaceID: 10, DriverID: 1, ConstructorID: 1, StatusID: ip(1)},
			{ResultID: 2, RaceID: 10, DriverID: 2, ConstructorID: 1, StatusID: ip(999)},
		},
		Status: []models.StatusLabel{{StatusID: 1, Status: "Finished"}},
	}
	rows, report, err := BuildMerged(tables, zap.NewNop())
	if err != nil {
		t.Fatalf("BuildMerged: %v", err)
	}
	if report.StatusOrphans != 1 {
		t.Errorf("status orphans = %d, want 1", report.StatusOrphans)
	}
	if rows[0].Status == nil || *rows[0].Status != "Finished" {
		t.Errorf("row 0 status = %v, want Finished", rows[0].Status)
	}
	if rows[1].Status != nil {
		t.Errorf("orphaned statusId must leave the label null, got %v", *rows[1].Status)
	}
}

func TestEnrichClassificationOverridesInterimFlag(t *testing.T) {
	year := 2021
	rows := []Row{
		{ResultID: 1, RaceID: 10, DriverID: 1, Year: &year, Round: ip(1),
			Status: sp("Engine"), IsDNF: false},
		{ResultID: 2, RaceID: 10, DriverID: 2, Year: &year, Round: ip(1),
			Status: sp("+1 Lap"), IsDNF: true},
		{ResultID: 3, RaceID: 10, DriverID: 3, Year: &year, Round: ip(1),
			Status: nil, IsDNF: true},
	}
	report := &Report{}
	Enrich(rows, report, zap.NewNop())

	if !rows[0].IsDNF || rows[0].DNFType != status.DNFTypeMechanical {
		t.Errorf("Engine: is_dnf=%v type=%q, want mechanical DNF", rows[0].IsDNF, rows[0].DNFType)
	}
	if rows[1].IsDNF {
		t.Error("lapped finisher must not stay flagged as DNF")
	}
	if rows[2].IsDNF || rows[2].DNFType != status.DNFTypeNone {
		t.Errorf("missing label must reset to unclassified, got is_dnf=%v type=%q", rows[2].IsDNF, rows[2].DNFType)
	}
	if report.DNFCount != 1 {
		t.Errorf("dnf count = %d, want 1", report.DNFCount)
	}
}

func TestEnrichPitLaneCutoff(t *testing.T) {
	modern, historic := 2021, 1950
	rows := []Row{
		{ResultID: 1, RaceID: 10, DriverID: 1, Year: &modern, Round: ip(1), Grid: nil},
		{ResultID: 2, RaceID: 11, DriverID: 1, Year: &historic, Round: ip(1), Grid: nil},
		{ResultID: 3, RaceID: 10, DriverID: 2, Year: &modern, Round: ip(1), Grid: ip(4)},
	}
	Enrich(rows, &Report{}, zap.NewNop())

	if !rows[0].GridPitLane {
		t.Error("null grid in a modern season is a pit-lane start")
	}
	if rows[1].GridPitLane {
		t.Error("null grid in a historic season is missing data, not a pit-lane start")
	}
	if rows[2].GridPitLane {
		t.Error("a recorded grid slot is never a pit-lane start")
	}
}

func TestEnrichDerivedColumns(t *testing.T) {
	year := 2020
	raceDate := date("2020-01-01")
	dob := date("1990-01-01")
	rows := []Row{
		{ResultID: 1, RaceID: 10, DriverID: 1, Year: &year, Round: ip(1),
			Date: &raceDate, DOB: &dob, BestQualiMS: fp(89000)},
		{ResultID: 2, RaceID: 10, DriverID: 2, Year: &year, Round: ip(1),
			BestQualiMS: fp(90200)},
		{ResultID: 3, RaceID: 11, DriverID: 1, Year: &year, Round: ip(2)},
	}
	Enrich(rows, &Report{}, zap.NewNop())

	if !floatPtrEq(rows[0].DriverAgeAtRace, 30.0) {
		t.Errorf("driver age = %v, want 30.0", rows[0].DriverAgeAtRace)
	}
	if !floatPtrEq(rows[0].QualifyingGapMS, 0) {
		t.Errorf("pole gap = %v, want 0", rows[0].QualifyingGapMS)
	}
	if !floatPtrEq(rows[1].QualifyingGapMS, 1200) {
		t.Errorf("gap to pole = %v, want 1200", rows[1].QualifyingGapMS)
	}
	if !floatPtrEq(rows[1].QualifyingGapPct, 1.3483) {
		t.Errorf("gap pct = %v, want 1.3483", rows[1].QualifyingGapPct)
	}
	if !floatPtrEq(rows[0].SeasonRoundPct, 0.5) {
		t.Errorf("round 1 of 2 season pct = %v, want 0.5", rows[0].SeasonRoundPct)
	}
	if !floatPtrEq(rows[2].SeasonRoundPct, 1.0) {
		t.Errorf("round 2 of 2 season pct = %v, want 1.0", rows[2].SeasonRoundPct)
	}
	if rows[2].QualifyingGapMS != nil {
		t.Errorf("no qualifying time means no gap, got %v", *rows[2].QualifyingGapMS)
	}
}

func TestWriteReadRowsRoundTrip(t *testing.T) {
	raceDate := date("2021-03-28")
	rows := []Row{{
		ResultID: 1, RaceID: 10, DriverID: 1, ConstructorID: 7,
		Grid: ip(3), Position: ip(1), PositionText: "1", Points: fp(25),
		Year: ip(2021), Round: ip(1), RaceName: sp("Bahrain Grand Prix"),
		Date: &raceDate, Status: sp("Finished"), IsDNF: false,
		DNFType: status.DNFTypeNone, IsPodium: true,
		BestQualiMS: fp(89000), LapTimeConsistency: fp(0.989),
	}}
	path := filepath.Join(t.TempDir(), "merged.csv")
	if err := WriteRows(path, rows); err != nil {
		t.Fatalf("WriteRows: %v", err)
	}
	got, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rows = %d, want 1", len(got))
	}
	r := got[0]
	if r.ResultID != 1 || r.RaceID != 10 || r.DriverID != 1 || r.ConstructorID != 7 {
		t.Errorf("spine keys did not round-trip: %+v", r)
	}
	if r.RaceName == nil || *r.RaceName != "Bahrain Grand Prix" {
		t.Errorf("race name = %v", r.RaceName)
	}
	if r.Date == nil || !r.Date.Equal(raceDate) {
		t.Errorf("date = %v, want %v", r.Date, raceDate)
	}
	if !r.IsPodium || r.IsDNF {
		t.Errorf("flags did not round-trip: podium=%v dnf=%v", r.IsPodium, r.IsDNF)
	}
	if !floatPtrEq(r.LapTimeConsistency, 0.989) {
		t.Errorf("consistency = %v, want 0.989", r.LapTimeConsistency)
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Paths.RawData = filepath.Join(dir, "raw")
	cfg.Paths.InterimData = filepath.Join(dir, "interim")
	cfg.Paths.ProcessedData = filepath.Join(dir, "processed")

	writeCleanFixtures(t, cfg)

	report, err := Run(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Rows != 2 {
		t.Fatalf("merged rows = %d, want 2", report.Rows)
	}
	if report.StatusOrphans != 0 {
		t.Errorf("status orphans = %d, want 0", report.StatusOrphans)
	}

	rows, err := ReadRows(cfg.MergedFile())
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}

	var winner, retired *Row
	for i := range rows {
		switch rows[i].ResultID {
		case 1:
			winner = &rows[i]
		case 2:
			retired = &rows[i]
		}
	}
	if winner == nil || retired == nil {
		t.Fatal("expected both results in the merged artifact")
	}

	if winner.CircuitName == nil || *winner.CircuitName != "Bahrain International Circuit" {
		t.Errorf("circuit join missing: %v", winner.CircuitName)
	}
	if winner.FullName == nil || *winner.FullName != "Lewis Hamilton" {
		t.Errorf("driver join missing: %v", winner.FullName)
	}
	if winner.ConstructorName == nil || *winner.ConstructorName != "Mercedes" {
		t.Errorf("constructor join missing: %v", winner.ConstructorName)
	}
	if winner.IsDNF || winner.DNFType != status.DNFTypeNone {
		t.Errorf("Finished must not classify as DNF: %v %q", winner.IsDNF, winner.DNFType)
	}
	if !retired.IsDNF || retired.DNFType != status.DNFTypeMechanical {
		t.Errorf("Gearbox must classify as mechanical DNF: %v %q", retired.IsDNF, retired.DNFType)
	}
	if !retired.GridPitLane {
		t.Error("null grid in 2021 must be reclassified as a pit-lane start")
	}
	if winner.TotalPitStops == nil || *winner.TotalPitStops != 2 {
		t.Errorf("pit aggregate join missing: %v", winner.TotalPitStops)
	}
	if winner.LapsCompleted == nil || *winner.LapsCompleted != 3 {
		t.Errorf("lap aggregate join missing: %v", winner.LapsCompleted)
	}
	if !floatPtrEq(retired.QualifyingGapMS, 1200) {
		t.Errorf("gap to pole = %v, want 1200", retired.QualifyingGapMS)
	}
}

func TestLoadCleanTablesMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Paths.InterimData = dir

	_, err := LoadCleanTables(cfg, zap.NewNop())
	if err == nil {
		t.Fatal("missing cleaned artifacts must fail the merge")
	}
}

func writeCleanFixtures(t *testing.T, cfg *config.Config) {
	t.Helper()
	if err := os.MkdirAll(cfg.Paths.InterimData, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	dob := date("1985-01-07")
	write := func(name string, err error) {
		if err != nil {
			t.Fatalf("write %s fixture: %v", name, err)
		}
	}
	write("circuits", clean.WriteCircuits(cfg.CleanFile("circuits"), []models.Circuit{
		{CircuitID: 3, CircuitRef: "bahrain", Name: "Bahrain International Circuit",
			Country: sp("Bahrain"), Lat: fp(26.0325), Lng: fp(50.5106), Alt: fp(7)},
	}))
	write("drivers", clean.WriteDrivers(cfg.CleanFile("drivers"), []models.Driver{
		{DriverID: 1, DriverRef: "hamilton", Forename: "Lewis", Surname: "Hamilton",
			FullName: "Lewis Hamilton", DOB: &dob, Nationality: sp("British")},
		{DriverID: 2, DriverRef: "bottas", Forename: "Valtteri", Surname: "Bottas",
			FullName: "Valtteri Bottas", Nationality: sp("Finnish")},
	}))
	write("constructors", clean.WriteConstructors(cfg.CleanFile("constructors"), []models.Constructor{
		{ConstructorID: 7, ConstructorRef: "mercedes", Name: "Mercedes", Nationality: sp("German")},
	}))
	write("races", clean.WriteRaces(cfg.CleanFile("races"), []models.Race{
		{RaceID: 10, Year: 2021, Round: 1, CircuitID: 3, Name: "Bahrain Grand Prix",
			Date: date("2021-03-28")},
	}))
	write("results", clean.WriteResults(cfg.CleanFile("results"), []models.Result{
		{ResultID: 1, RaceID: 10, DriverID: 1, ConstructorID: 7, Grid: ip(2),
			Position: ip(1), PositionText: "1", Points: fp(25), Laps: ip(56),
			StatusID: ip(1), IsPodium: true},
		{ResultID: 2, RaceID: 10, DriverID: 2, ConstructorID: 7, Grid: nil,
			PositionText: "R", Points: fp(0), Laps: ip(30), StatusID: ip(2), IsDNF: true},
	}))
	write("qualifying", clean.WriteQualifying(cfg.CleanFile("qualifying"), []models.Qualifying{
		{QualifyID: 1, RaceID: 10, DriverID: 1, ConstructorID: 7, Position: ip(1),
			Q3MS: fp(89000), BestQualiMS: fp(89000)},
		{QualifyID: 2, RaceID: 10, DriverID: 2, ConstructorID: 7, Position: ip(2),
			Q3MS: fp(90200), BestQualiMS: fp(90200)},
	}))
	write("lap_times", clean.WriteLapTimes(cfg.CleanFile("lap_times"), []models.LapTime{
		{RaceID: 10, DriverID: 1, Lap: 1, LapTimeMS: fp(95000)},
		{RaceID: 10, DriverID: 1, Lap: 2, LapTimeMS: fp(94000)},
		{RaceID: 10, DriverID: 1, Lap: 3, LapTimeMS: fp(93000)},
	}))
	write("pit_stops", clean.WritePitStops(cfg.CleanFile("pit_stops"), []models.PitStop{
		{RaceID: 10, DriverID: 1, Stop: 1, Lap: ip(14), PitDurationMS: fp(22500)},
		{RaceID: 10, DriverID: 1, Stop: 2, Lap: ip(38), PitDurationMS: fp(23100)},
	}))
	write("status", clean.WriteStatus(cfg.CleanFile("status"), []models.StatusLabel{
		{StatusID: 1, Status: "Finished"},
		{StatusID: 2, Status: "Gearbox"},
	}))
}

// Package master curates the merged dataset into the analysis-ready
// master race table. The DNF classification is derived a second time
// here, from the same shared classifier the merge stage used, and
// cross-checked against the flags carried in from the merged artifact:
// a mismatch is a data-quality signal to report, never a fatal error.
package master

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"pitwall/internal/config"
	"pitwall/internal/csvio"
	"pitwall/internal/merge"
	"pitwall/internal/models"
	"pitwall/internal/status"
)

// otherBucketWarnPct is the share of DNFs the unattributed-cause bucket
// may reach before the mechanical and crash vocabularies are considered
// too thin.
const otherBucketWarnPct = 25.0

// Report summarizes the build for the operator: row volume, the
// cross-validation outcome and the DNF cause breakdown.
type Report struct {
	Rows           int
	Mismatches     int
	DNFTotal       int
	DNFByType      map[status.DNFType]int
	MissingColumns []string
}

// OtherPct returns the unattributed-cause share of all DNFs, in
// percent. Zero when there are no DNFs.
func (r *Report) OtherPct() float64 {
	if r.DNFTotal == 0 {
		return 0
	}
	return float64(r.DNFByType[status.DNFTypeOther]) / float64(r.DNFTotal) * 100
}

// expectedColumns is what the master stage wants to find in the merged
// artifact. Columns may legitimately be absent for historic eras; an
// absence is logged, and every cell of a missing column reads as null.
var expectedColumns = []string{
	"raceId", "year", "round", "season_round_pct", "race_name", "date",
	"circuitId", "circuit_name", "circuitRef", "country", "lat", "lng", "alt",
	"driverId", "driverRef", "full_name", "driver_nationality",
	"dob", "driver_age_at_race",
	"constructorId", "constructorRef", "constructor_name", "constructor_nationality",
	"grid", "grid_pit_lane", "position", "positionText", "positionOrder",
	"points", "laps", "milliseconds", "statusId", "status",
	"is_dnf", "dnf_type", "is_podium",
	"fastestLap", "rank", "fastestLapTime_ms", "fastestLapSpeed",
	"quali_position", "q1_ms", "q2_ms", "q3_ms",
	"best_quali_ms", "pole_quali_ms", "qualifying_gap_ms", "qualifying_gap_pct",
	"total_pit_stops", "total_pit_time_ms", "avg_pit_duration_ms", "min_pit_duration_ms",
	"laps_completed", "avg_lap_time_ms", "median_lap_time_ms",
	"std_lap_time_ms", "fastest_lap_ms", "lap_time_consistency",
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, c := range header {
		present[c] = true
	}
	var missing []string
	for _, c := range expectedColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// Build curates merged rows into master rows, recomputing the DNF
// classification and deriving the final analytical columns.
func Build(rows []merge.Row, log *zap.Logger) ([]models.MasterRace, *Report) {
	report := &Report{
		Rows:      len(rows),
		DNFByType: make(map[status.DNFType]int),
	}

	out := make([]models.MasterRace, 0, len(rows))
	for i := range rows {
		r := &rows[i]

		verdict := status.Classify(r.Status)
		if verdict.IsDNF != r.IsDNF {
			report.Mismatches++
		}
		if verdict.IsDNF {
			report.DNFTotal++
			report.DNFByType[verdict.DNFType]++
		}

		m := models.MasterRace{
			ResultID:       r.ResultID,
			RaceID:         r.RaceID,
			Year:           r.Year,
			Round:          r.Round,
			SeasonRoundPct: r.SeasonRoundPct,
			RaceName:       r.RaceName,
			Date:           dateStr(r.Date),

			CircuitID:   r.CircuitID,
			CircuitName: r.CircuitName,
			CircuitRef:  r.CircuitRef,
			Country:     r.Country,
			Lat:         r.Lat,
			Lng:         r.Lng,
			Alt:         r.Alt,

			DriverID:          r.DriverID,
			DriverRef:         r.DriverRef,
			FullName:          r.FullName,
			DriverNationality: r.DriverNationality,
			DOB:               dateStr(r.DOB),
			DriverAgeAtRace:   r.DriverAgeAtRace,

			ConstructorID:          r.ConstructorID,
			ConstructorRef:         r.ConstructorRef,
			ConstructorName:        r.ConstructorName,
			ConstructorNationality: r.ConstructorNationality,

			Grid:             r.Grid,
			GridPitLane:      r.GridPitLane,
			Position:         r.Position,
			PositionText:     r.PositionText,
			PositionOrder:    r.PositionOrder,
			Points:           r.Points,
			Laps:             r.Laps,
			Milliseconds:     r.Milliseconds,
			StatusID:         r.StatusID,
			Status:           r.Status,
			IsDNF:            verdict.IsDNF,
			DNFType:          dnfTypeStr(verdict.DNFType),
			IsPodium:         r.IsPodium,
			FastestLap:       r.FastestLap,
			Rank:             r.Rank,
			FastestLapTimeMS: r.FastestLapTimeMS,
			FastestLapSpeed:  r.FastestLapSpeed,

			QualiPosition:    r.QualiPosition,
			Q1MS:             r.Q1MS,
			Q2MS:             r.Q2MS,
			Q3MS:             r.Q3MS,
			BestQualiMS:      r.BestQualiMS,
			PoleQualiMS:      r.PoleQualiMS,
			QualifyingGapMS:  r.QualifyingGapMS,
			QualifyingGapPct: r.QualifyingGapPct,

			TotalPitStops:    r.TotalPitStops,
			TotalPitTimeMS:   r.TotalPitTimeMS,
			AvgPitDurationMS: r.AvgPitDurationMS,
			MinPitDurationMS: r.MinPitDurationMS,

			LapsCompleted:      r.LapsCompleted,
			AvgLapTimeMS:       r.AvgLapTimeMS,
			MedianLapTimeMS:    r.MedianLapTimeMS,
			StdLapTimeMS:       r.StdLapTimeMS,
			FastestLapMS:       r.FastestLapMS,
			LapTimeConsistency: r.LapTimeConsistency,
		}

		// Positive delta means places gained from start to finish.
		// Only classified finishers with a recorded grid slot get one.
		if r.Grid != nil && r.Position != nil {
			delta := float64(*r.Grid - *r.Position)
			m.GridVsFinishDelta = &delta
		}
		m.IsPointsFinish = r.Points != nil && *r.Points > 0
		m.IsWinner = r.Position != nil && *r.Position == 1

		if r.Year != nil {
			ref := "unknown"
			if r.ConstructorRef != nil {
				ref = *r.ConstructorRef
			}
			key := fmt.Sprintf("%s_%d", ref, *r.Year)
			m.ConstructorSeasonKey = &key
		}

		out = append(out, m)
	}

	if report.Mismatches > 0 {
		log.Warn("recomputed DNF flag disagrees with merged flag",
			zap.Int("rows", report.Mismatches))
	} else {
		log.Info("DNF cross-validation clean", zap.Int("rows", report.Rows))
	}
	for _, t := range []status.DNFType{status.DNFTypeMechanical, status.DNFTypeCrash, status.DNFTypeOther} {
		n := report.DNFByType[t]
		pct := 0.0
		if report.DNFTotal > 0 {
			pct = float64(n) / float64(report.DNFTotal) * 100
		}
		log.Info("dnf sub-type",
			zap.String("type", string(t)),
			zap.Int("count", n),
			zap.Float64("pct", pct))
	}
	if report.OtherPct() > otherBucketWarnPct {
		log.Warn("unattributed DNF causes exceed threshold, vocabularies may need extension",
			zap.Float64("other_pct", report.OtherPct()),
			zap.Float64("threshold_pct", otherBucketWarnPct))
	}
	return out, report
}

func dateStr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(csvio.DateLayout)
	return &s
}

func dnfTypeStr(t status.DNFType) *string {
	if t == status.DNFTypeNone {
		return nil
	}
	s := string(t)
	return &s
}

// masterHeader is the fixed column order of master_race_table.csv.
var masterHeader = []string{
	"resultId", "raceId", "year", "round", "season_round_pct",
	"race_name", "date",
	"circuitId", "circuit_name", "circuitRef", "country", "lat", "lng", "alt",
	"driverId", "driverRef", "full_name", "driver_nationality",
	"dob", "driver_age_at_race",
	"constructorId", "constructorRef", "constructor_name", "constructor_nationality",
	"grid", "grid_pit_lane", "position", "positionText", "positionOrder",
	"points", "laps", "milliseconds", "statusId", "status",
	"is_dnf", "dnf_type", "is_podium",
	"fastestLap", "rank", "fastestLapTime_ms", "fastestLapSpeed",
	"quali_position", "q1_ms", "q2_ms", "q3_ms",
	"best_quali_ms", "pole_quali_ms", "qualifying_gap_ms", "qualifying_gap_pct",
	"total_pit_stops", "total_pit_time_ms", "avg_pit_duration_ms", "min_pit_duration_ms",
	"laps_completed", "avg_lap_time_ms", "median_lap_time_ms",
	"std_lap_time_ms", "fastest_lap_ms", "lap_time_consistency",
	"grid_vs_finish_delta", "is_points_finish", "is_winner", "constructor_season_key",
}

func record(m *models.MasterRace) []string {
	return []string{
		csvio.FormatInt(&m.ResultID), csvio.FormatInt(&m.RaceID),
		csvio.FormatInt(m.Year), csvio.FormatInt(m.Round),
		csvio.FormatFloat(m.SeasonRoundPct), csvio.FormatString(m.RaceName),
		csvio.FormatString(m.Date),
		csvio.FormatInt(m.CircuitID), csvio.FormatString(m.CircuitName),
		csvio.FormatString(m.CircuitRef), csvio.FormatString(m.Country),
		csvio.FormatFloat(m.Lat), csvio.FormatFloat(m.Lng), csvio.FormatFloat(m.Alt),
		csvio.FormatInt(&m.DriverID), csvio.FormatString(m.DriverRef),
		csvio.FormatString(m.FullName), csvio.FormatString(m.DriverNationality),
		csvio.FormatString(m.DOB), csvio.FormatFloat(m.DriverAgeAtRace),
		csvio.FormatInt(&m.ConstructorID), csvio.FormatString(m.ConstructorRef),
		csvio.FormatString(m.ConstructorName), csvio.FormatString(m.ConstructorNationality),
		csvio.FormatInt(m.Grid), csvio.FormatBool(m.GridPitLane),
		csvio.FormatInt(m.Position), m.PositionText, csvio.FormatInt(m.PositionOrder),
		csvio.FormatFloat(m.Points), csvio.FormatInt(m.Laps), csvio.FormatFloat(m.Milliseconds),
		csvio.FormatInt(m.StatusID), csvio.FormatString(m.Status),
		csvio.FormatBool(m.IsDNF), csvio.FormatString(m.DNFType), csvio.FormatBool(m.IsPodium),
		csvio.FormatInt(m.FastestLap), csvio.FormatInt(m.Rank),
		csvio.FormatFloat(m.FastestLapTimeMS), csvio.FormatFloat(m.FastestLapSpeed),
		csvio.FormatInt(m.QualiPosition),
		csvio.FormatFloat(m.Q1MS), csvio.FormatFloat(m.Q2MS), csvio.FormatFloat(m.Q3MS),
		csvio.FormatFloat(m.BestQualiMS), csvio.FormatFloat(m.PoleQualiMS),
		csvio.FormatFloat(m.QualifyingGapMS), csvio.FormatFloat(m.QualifyingGapPct),
		csvio.FormatInt(m.TotalPitStops), csvio.FormatFloat(m.TotalPitTimeMS),
		csvio.FormatFloat(m.AvgPitDurationMS), csvio.FormatFloat(m.MinPitDurationMS),
		csvio.FormatInt(m.LapsCompleted), csvio.FormatFloat(m.AvgLapTimeMS),
		csvio.FormatFloat(m.MedianLapTimeMS), csvio.FormatFloat(m.StdLapTimeMS),
		csvio.FormatFloat(m.FastestLapMS), csvio.FormatFloat(m.LapTimeConsistency),
		csvio.FormatFloat(m.GridVsFinishDelta), csvio.FormatBool(m.IsPointsFinish),
		csvio.FormatBool(m.IsWinner), csvio.FormatString(m.ConstructorSeasonKey),
	}
}

// WriteCSV writes the curated master table.
func WriteCSV(path string, rows []models.MasterRace) error {
	recs := make([][]string, len(rows))
	for i := range rows {
		recs[i] = record(&rows[i])
	}
	return csvio.WriteFile(path, masterHeader, recs)
}

// Run executes the master stage: read the merged artifact, curate,
// write master_race_table.csv. The store load is a separate concern
// handled by the caller so a CSV-only build stays possible.
func Run(cfg *config.Config, log *zap.Logger) ([]models.MasterRace, *Report, error) {
	merged := cfg.MergedFile()
	if _, err := os.Stat(merged); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("master: merged artifact %s not found: run the merge stage first", merged)
	}

	header, err := csvio.ReadHeader(merged)
	if err != nil {
		return nil, nil, err
	}
	missing := missingColumns(header)
	if len(missing) > 0 {
		log.Warn("expected columns absent from merged data",
			zap.Strings("columns", missing))
	}

	rows, err := merge.ReadRows(merged)
	if err != nil {
		return nil, nil, err
	}
	log.Info("merged dataset loaded", zap.String("path", merged), zap.Int("rows", len(rows)))

	out, report := Build(rows, log)
	report.MissingColumns = missing

	if err := os.MkdirAll(cfg.Paths.ProcessedData, 0o755); err != nil {
		return nil, nil, fmt.Errorf("master: create processed dir: %w", err)
	}
	path := cfg.MasterTableFile()
	if err := WriteCSV(path, out); err != nil {
		return nil, nil, err
	}
	log.Info("master race table written", zap.String("path", path), zap.Int("rows", len(out)))
	return out, report, nil
}

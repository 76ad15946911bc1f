package merge

import (
	"fmt"
	"time"

	"pitwall/internal/csvio"
	"pitwall/internal/status"
)

// Row is one fully denormalized record of the merged dataset: the
// results spine plus every joined context field and the post-merge
// enrichment columns. Joined fields are pointers because every join
// from the spine is a left join.
type Row struct {
	// Results spine
	ResultID         int
	RaceID           int
	DriverID         int
	ConstructorID    int
	Number           *int
	Grid             *int
	GridPitLane      bool
	Position         *int
	PositionText     string
	PositionOrder    *int
	Points           *float64
	Laps             *int
	Milliseconds     *float64
	FastestLap       *int
	Rank             *int
	FastestLapTimeMS *float64
	FastestLapSpeed  *float64
	StatusID         *int

	// Race context
	Year           *int
	Round          *int
	RaceName       *string
	Date           *time.Time
	CircuitID      *int
	FP1Date        *time.Time
	FP2Date        *time.Time
	FP3Date        *time.Time
	QualiDate      *time.Time
	SprintDate     *time.Time
	SeasonRoundPct *float64

	// Circuit metadata
	CircuitRef  *string
	CircuitName *string
	Location    *string
	Country     *string
	Lat         *float64
	Lng         *float64
	Alt         *float64

	// Driver identity
	DriverRef         *string
	DriverCode        *string
	FullName          *string
	DriverNationality *string
	DOB               *time.Time
	DriverAgeAtRace   *float64

	// Constructor identity
	ConstructorRef         *string
	ConstructorName        *string
	ConstructorNationality *string

	// Status label and classification
	Status   *string
	IsDNF    bool
	DNFType  status.DNFType
	IsPodium bool

	// Qualifying
	QualiPosition    *int
	Q1MS             *float64
	Q2MS             *float64
	Q3MS             *float64
	BestQualiMS      *float64
	PoleQualiMS      *float64
	QualifyingGapMS  *float64
	QualifyingGapPct *float64

	// Pit stop aggregates
	TotalPitStops    *int
	TotalPitTimeMS   *float64
	AvgPitDurationMS *float64
	MinPitDurationMS *float64

	// Lap time aggregates
	LapsCompleted      *int
	AvgLapTimeMS       *float64
	MedianLapTimeMS    *float64
	StdLapTimeMS       *float64
	FastestLapMS       *float64
	LapTimeConsistency *float64
}

// header is the merged artifact's column contract, grouped the way the
// master stage curates them: race context, driver, constructor,
// result, qualifying, pit stops, lap times, session dates.
var header = []string{
	"raceId", "year", "round", "season_round_pct", "race_name",
	"date", "circuitId", "circuit_name", "circuitRef", "location",
	"country", "lat", "lng", "alt",
	"driverId", "driverRef", "driver_code", "full_name",
	"driver_nationality", "dob", "driver_age_at_race",
	"constructorId", "constructorRef", "constructor_name", "constructor_nationality",
	"resultId", "grid", "grid_pit_lane", "position", "positionText", "positionOrder",
	"points", "laps", "milliseconds", "statusId", "status",
	"is_dnf", "dnf_type", "is_podium",
	"number", "fastestLap", "rank", "fastestLapTime_ms", "fastestLapSpeed",
	"quali_position", "q1_ms", "q2_ms", "q3_ms",
	"best_quali_ms", "pole_quali_ms", "qualifying_gap_ms", "qualifying_gap_pct",
	"total_pit_stops", "total_pit_time_ms", "avg_pit_duration_ms", "min_pit_duration_ms",
	"laps_completed", "avg_lap_time_ms", "median_lap_time_ms",
	"std_lap_time_ms", "fastest_lap_ms", "lap_time_consistency",
	"fp1_date", "fp2_date", "fp3_date", "quali_date", "sprint_date",
}

func (r *Row) record() []string {
	return []string{
		csvio.FormatInt(&r.RaceID), csvio.FormatInt(r.Year), csvio.FormatInt(r.Round),
		csvio.FormatFloat(r.SeasonRoundPct), csvio.FormatString(r.RaceName),
		csvio.FormatDate(r.Date), csvio.FormatInt(r.CircuitID),
		csvio.FormatString(r.CircuitName), csvio.FormatString(r.CircuitRef),
		csvio.FormatString(r.Location), csvio.FormatString(r.Country),
		csvio.FormatFloat(r.Lat), csvio.FormatFloat(r.Lng), csvio.FormatFloat(r.Alt),
		csvio.FormatInt(&r.DriverID), csvio.FormatString(r.DriverRef),
		csvio.FormatString(r.DriverCode), csvio.FormatString(r.FullName),
		csvio.FormatString(r.DriverNationality), csvio.FormatDate(r.DOB),
		csvio.FormatFloat(r.DriverAgeAtRace),
		csvio.FormatInt(&r.ConstructorID), csvio.FormatString(r.ConstructorRef),
		csvio.FormatString(r.ConstructorName), csvio.FormatString(r.ConstructorNationality),
		csvio.FormatInt(&r.ResultID), csvio.FormatInt(r.Grid), csvio.FormatBool(r.GridPitLane),
		csvio.FormatInt(r.Position), r.PositionText, csvio.FormatInt(r.PositionOrder),
		csvio.FormatFloat(r.Points), csvio.FormatInt(r.Laps), csvio.FormatFloat(r.Milliseconds),
		csvio.FormatInt(r.StatusID), csvio.FormatString(r.Status),
		csvio.FormatBool(r.IsDNF), string(r.DNFType), csvio.FormatBool(r.IsPodium),
		csvio.FormatInt(r.Number), csvio.FormatInt(r.FastestLap), csvio.FormatInt(r.Rank),
		csvio.FormatFloat(r.FastestLapTimeMS), csvio.FormatFloat(r.FastestLapSpeed),
		csvio.FormatInt(r.QualiPosition),
		csvio.FormatFloat(r.Q1MS), csvio.FormatFloat(r.Q2MS), csvio.FormatFloat(r.Q3MS),
		csvio.FormatFloat(r.BestQualiMS), csvio.FormatFloat(r.PoleQualiMS),
		csvio.FormatFloat(r.QualifyingGapMS), csvio.FormatFloat(r.QualifyingGapPct),
		csvio.FormatInt(r.TotalPitStops), csvio.FormatFloat(r.TotalPitTimeMS),
		csvio.FormatFloat(r.AvgPitDurationMS), csvio.FormatFloat(r.MinPitDurationMS),
		csvio.FormatInt(r.LapsCompleted), csvio.FormatFloat(r.AvgLapTimeMS),
		csvio.FormatFloat(r.MedianLapTimeMS), csvio.FormatFloat(r.StdLapTimeMS),
		csvio.FormatFloat(r.FastestLapMS), csvio.FormatFloat(r.LapTimeConsistency),
		csvio.FormatDate(r.FP1Date), csvio.FormatDate(r.FP2Date), csvio.FormatDate(r.FP3Date),
		csvio.FormatDate(r.QualiDate), csvio.FormatDate(r.SprintDate),
	}
}

// WriteRows writes the merged artifact.
func WriteRows(path string, rows []Row) error {
	recs := make([][]string, len(rows))
	for i := range rows {
		recs[i] = rows[i].record()
	}
	return csvio.WriteFile(path, header, recs)
}

// ReadRows reads the merged artifact back, for the master stage.
func ReadRows(path string) ([]Row, error) {
	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		resultID := csvio.IntPtr(tbl.Cell(rec, "resultId"))
		raceID := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		driverID := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		constructorID := csvio.IntPtr(tbl.Cell(rec, "constructorId"))
		if resultID == nil || raceID == nil || driverID == nil || constructorID == nil {
			return nil, fmt.Errorf("merge: %s: row missing spine key fields", path)
		}
		pitLane := csvio.BoolPtr(tbl.Cell(rec, "grid_pit_lane"))
		isDNF := csvio.BoolPtr(tbl.Cell(rec, "is_dnf"))
		isPodium := csvio.BoolPtr(tbl.Cell(rec, "is_podium"))
		rows = append(rows, Row{
			ResultID:         *resultID,
			RaceID:           *raceID,
			DriverID:         *driverID,
			ConstructorID:    *constructorID,
			Number:           csvio.IntPtr(tbl.Cell(rec, "number")),
			Grid:             csvio.IntPtr(tbl.Cell(rec, "grid")),
			GridPitLane:      pitLane != nil && *pitLane,
			Position:         csvio.IntPtr(tbl.Cell(rec, "position")),
			PositionText:     tbl.Cell(rec, "positionText"),
			PositionOrder:    csvio.IntPtr(tbl.Cell(rec, "positionOrder")),
			Points:           csvio.FloatPtr(tbl.Cell(rec, "points")),
			Laps:             csvio.IntPtr(tbl.Cell(rec, "laps")),
			Milliseconds:     csvio.FloatPtr(tbl.Cell(rec, "milliseconds")),
			FastestLap:       csvio.IntPtr(tbl.Cell(rec, "fastestLap")),
			Rank:             csvio.IntPtr(tbl.Cell(rec, "rank")),
			FastestLapTimeMS: csvio.FloatPtr(tbl.Cell(rec, "fastestLapTime_ms")),
			FastestLapSpeed:  csvio.FloatPtr(tbl.Cell(rec, "fastestLapSpeed")),
			StatusID:         csvio.IntPtr(tbl.Cell(rec, "statusId")),

			Year:           csvio.IntPtr(tbl.Cell(rec, "year")),
			Round:          csvio.IntPtr(tbl.Cell(rec, "round")),
			RaceName:       strPtr(tbl.Cell(rec, "race_name")),
			Date:           csvio.DatePtr(tbl.Cell(rec, "date")),
			CircuitID:      csvio.IntPtr(tbl.Cell(rec, "circuitId")),
			FP1Date:        csvio.DatePtr(tbl.Cell(rec, "fp1_date")),
			FP2Date:        csvio.DatePtr(tbl.Cell(rec, "fp2_date")),
			FP3Date:        csvio.DatePtr(tbl.Cell(rec, "fp3_date")),
			QualiDate:      csvio.DatePtr(tbl.Cell(rec, "quali_date")),
			SprintDate:     csvio.DatePtr(tbl.Cell(rec, "sprint_date")),
			SeasonRoundPct: csvio.FloatPtr(tbl.Cell(rec, "season_round_pct")),

			CircuitRef:  strPtr(tbl.Cell(rec, "circuitRef")),
			CircuitName: strPtr(tbl.Cell(rec, "circuit_name")),
			Location:    strPtr(tbl.Cell(rec, "location")),
			Country:     strPtr(tbl.Cell(rec, "country")),
			Lat:         csvio.FloatPtr(tbl.Cell(rec, "lat")),
			Lng:         csvio.FloatPtr(tbl.Cell(rec, "lng")),
			Alt:         csvio.FloatPtr(tbl.Cell(rec, "alt")),

			DriverRef:         strPtr(tbl.Cell(rec, "driverRef")),
			DriverCode:        strPtr(tbl.Cell(rec, "driver_code")),
			FullName:          strPtr(tbl.Cell(rec, "full_name")),
			DriverNationality: strPtr(tbl.Cell(rec, "driver_nationality")),
			DOB:               csvio.DatePtr(tbl.Cell(rec, "dob")),
			DriverAgeAtRace:   csvio.FloatPtr(tbl.Cell(rec, "driver_age_at_race")),

			ConstructorRef:         strPtr(tbl.Cell(rec, "constructorRef")),
			ConstructorName:        strPtr(tbl.Cell(rec, "constructor_name")),
			ConstructorNationality: strPtr(tbl.Cell(rec, "constructor_nationality")),

			Status:   strPtr(tbl.Cell(rec, "status")),
			IsDNF:    isDNF != nil && *isDNF,
			DNFType:  status.DNFType(tbl.Cell(rec, "dnf_type")),
			IsPodium: isPodium != nil && *isPodium,

			QualiPosition:    csvio.IntPtr(tbl.Cell(rec, "quali_position")),
			Q1MS:             csvio.FloatPtr(tbl.Cell(rec, "q1_ms")),
			Q2MS:             csvio.FloatPtr(tbl.Cell(rec, "q2_ms")),
			Q3MS:             csvio.FloatPtr(tbl.Cell(rec, "q3_ms")),
			BestQualiMS:      csvio.FloatPtr(tbl.Cell(rec, "best_quali_ms")),
			PoleQualiMS:      csvio.FloatPtr(tbl.Cell(rec, "pole_quali_ms")),
			QualifyingGapMS:  csvio.FloatPtr(tbl.Cell(rec, "qualifying_gap_ms")),
			QualifyingGapPct: csvio.FloatPtr(tbl.Cell(rec, "qualifying_gap_pct")),

			TotalPitStops:    csvio.IntPtr(tbl.Cell(rec, "total_pit_stops")),
			TotalPitTimeMS:   csvio.FloatPtr(tbl.Cell(rec, "total_pit_time_ms")),
			AvgPitDurationMS: csvio.FloatPtr(tbl.Cell(rec, "avg_pit_duration_ms")),
			MinPitDurationMS: csvio.FloatPtr(tbl.Cell(rec, "min_pit_duration_ms")),

			LapsCompleted:      csvio.IntPtr(tbl.Cell(rec, "laps_completed")),
			AvgLapTimeMS:       csvio.FloatPtr(tbl.Cell(rec, "avg_lap_time_ms")),
			MedianLapTimeMS:    csvio.FloatPtr(tbl.Cell(rec, "median_lap_time_ms")),
			StdLapTimeMS:       csvio.FloatPtr(tbl.Cell(rec, "std_lap_time_ms")),
			FastestLapMS:       csvio.FloatPtr(tbl.Cell(rec, "fastest_lap_ms")),
			LapTimeConsistency: csvio.FloatPtr(tbl.Cell(rec, "lap_time_consistency")),
		})
	}
	return rows, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

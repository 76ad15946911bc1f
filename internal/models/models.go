// Package models defines the typed rows for every table the pipeline
// reads, writes and loads into the analytical store. Nullable source
// columns are pointer fields; a nil pointer round-trips as an empty CSV
// cell and a SQL NULL.
package models

import "time"

// Circuit is one row of the circuits lookup table.
type Circuit struct {
	CircuitID  int      `gorm:"column:circuitId;primaryKey"`
	CircuitRef string   `gorm:"column:circuitRef;size:64;index"`
	Name       string   `gorm:"column:name;size:128"`
	Location   *string  `gorm:"column:location;size:128"`
	Country    *string  `gorm:"column:country;size:64"`
	Lat        *float64 `gorm:"column:lat"`
	Lng        *float64 `gorm:"column:lng"`
	Alt        *float64 `gorm:"column:alt"`
}

// Driver is one row of the drivers identity table.
type Driver struct {
	DriverID    int        `gorm:"column:driverId;primaryKey"`
	DriverRef   string     `gorm:"column:driverRef;size:64;uniqueIndex"`
	Number      *int       `gorm:"column:number"`
	Code        *string    `gorm:"column:code;size:8"`
	Forename    string     `gorm:"column:forename;size:64"`
	Surname     string     `gorm:"column:surname;size:64"`
	FullName    string     `gorm:"column:full_name;size:128"`
	DOB         *time.Time `gorm:"column:dob"`
	Nationality *string    `gorm:"column:nationality;size:64"`
}

// Constructor is one row of the constructors identity table.
type Constructor struct {
	ConstructorID  int     `gorm:"column:constructorId;primaryKey"`
	ConstructorRef string  `gorm:"column:constructorRef;size:64;index"`
	Name           string  `gorm:"column:name;size:128"`
	Nationality    *string `gorm:"column:nationality;size:64"`
}

// Race is one row of the races context table.
type Race struct {
	RaceID     int        `gorm:"column:raceId;primaryKey"`
	Year       int        `gorm:"column:year;index"`
	Round      int        `gorm:"column:round"`
	CircuitID  int        `gorm:"column:circuitId;index"`
	Name       string     `gorm:"column:name;size:128"`
	Date       time.Time  `gorm:"column:date"`
	FP1Date    *time.Time `gorm:"column:fp1_date"`
	FP2Date    *time.Time `gorm:"column:fp2_date"`
	FP3Date    *time.Time `gorm:"column:fp3_date"`
	QualiDate  *time.Time `gorm:"column:quali_date"`
	SprintDate *time.Time `gorm:"column:sprint_date"`
}

// Result is one row per (race, driver) of the results spine.
//
// Grid is nil either because the slot was never recorded (historic
// seasons) or because the driver started from the pit lane; the two
// cases are told apart by GridPitLane, which the merge stage sets once
// the race year is known. Position is nil for every classified
// non-finisher.
type Result struct {
	ResultID         int      `gorm:"column:resultId;primaryKey"`
	RaceID           int      `gorm:"column:raceId;index:idx_results_race_driver"`
	DriverID         int      `gorm:"column:driverId;index:idx_results_race_driver"`
	ConstructorID    int      `gorm:"column:constructorId;index"`
	Number           *int     `gorm:"column:number"`
	Grid             *int     `gorm:"column:grid"`
	GridPitLane      bool     `gorm:"column:grid_pit_lane"`
	Position         *int     `gorm:"column:position"`
	PositionText     string   `gorm:"column:positionText;size:8"`
	PositionOrder    *int     `gorm:"column:positionOrder"`
	Points           *float64 `gorm:"column:points"`
	Laps             *int     `gorm:"column:laps"`
	Milliseconds     *float64 `gorm:"column:milliseconds"`
	FastestLap       *int     `gorm:"column:fastestLap"`
	Rank             *int     `gorm:"column:rank"`
	FastestLapTimeMS *float64 `gorm:"column:fastestLapTime_ms"`
	FastestLapSpeed  *float64 `gorm:"column:fastestLapSpeed"`
	StatusID         *int     `gorm:"column:statusId;index"`
	IsDNF            bool     `gorm:"column:is_dnf"`
	IsPodium         bool     `gorm:"column:is_podium"`
}

// Qualifying is one cleaned qualifying entry. Session times are already
// parsed to milliseconds; BestQualiMS is the minimum of the available
// sessions.
type Qualifying struct {
	QualifyID     int      `gorm:"column:qualifyId;primaryKey"`
	RaceID        int      `gorm:"column:raceId;index:idx_quali_race_driver"`
	DriverID      int      `gorm:"column:driverId;index:idx_quali_race_driver"`
	ConstructorID int      `gorm:"column:constructorId"`
	Number        *int     `gorm:"column:number"`
	Position      *int     `gorm:"column:position"`
	Q1MS          *float64 `gorm:"column:q1_ms"`
	Q2MS          *float64 `gorm:"column:q2_ms"`
	Q3MS          *float64 `gorm:"column:q3_ms"`
	BestQualiMS   *float64 `gorm:"column:best_quali_ms"`
}

// LapTime is one cleaned lap record.
type LapTime struct {
	RaceID    int      `gorm:"column:raceId;index:idx_laps_race_driver"`
	DriverID  int      `gorm:"column:driverId;index:idx_laps_race_driver"`
	Lap       int      `gorm:"column:lap"`
	Position  *int     `gorm:"column:position"`
	LapTimeMS *float64 `gorm:"column:lap_time_ms"`
}

// PitStop is one cleaned pit stop record.
type PitStop struct {
	RaceID        int      `gorm:"column:raceId;index:idx_pits_race_driver"`
	DriverID      int      `gorm:"column:driverId;index:idx_pits_race_driver"`
	Stop          int      `gorm:"column:stop"`
	Lap           *int     `gorm:"column:lap"`
	PitDurationMS *float64 `gorm:"column:pit_duration_ms"`
}

// StatusLabel is one row of the status lookup table, the authoritative
// source for every DNF derivation.
type StatusLabel struct {
	StatusID int    `gorm:"column:statusId;primaryKey"`
	Status   string `gorm:"column:status;size:64"`
}

// MasterRace is one curated row of the analysis-ready master table, one
// per (race, driver). Date columns are calendar-date strings so the row
// loads identically into sqlite and mysql. The classification columns
// hold the recomputed values, not the interim ones.
type MasterRace struct {
	ResultID       int      `gorm:"column:resultId;primaryKey"`
	RaceID         int      `gorm:"column:raceId;index"`
	Year           *int     `gorm:"column:year;index"`
	Round          *int     `gorm:"column:round"`
	SeasonRoundPct *float64 `gorm:"column:season_round_pct"`
	RaceName       *string  `gorm:"column:race_name;size:128"`
	Date           *string  `gorm:"column:date;size:10"`

	CircuitID   *int     `gorm:"column:circuitId"`
	CircuitName *string  `gorm:"column:circuit_name;size:128"`
	CircuitRef  *string  `gorm:"column:circuitRef;size:64"`
	Country     *string  `gorm:"column:country;size:64"`
	Lat         *float64 `gorm:"column:lat"`
	Lng         *float64 `gorm:"column:lng"`
	Alt         *float64 `gorm:"column:alt"`

	DriverID          int      `gorm:"column:driverId;index"`
	DriverRef         *string  `gorm:"column:driverRef;size:64"`
	FullName          *string  `gorm:"column:full_name;size:128"`
	DriverNationality *string  `gorm:"column:driver_nationality;size:64"`
	DOB               *string  `gorm:"column:dob;size:10"`
	DriverAgeAtRace   *float64 `gorm:"column:driver_age_at_race"`

	ConstructorID          int     `gorm:"column:constructorId;index"`
	ConstructorRef         *string `gorm:"column:constructorRef;size:64"`
	ConstructorName        *string `gorm:"column:constructor_name;size:128"`
	ConstructorNationality *string `gorm:"column:constructor_nationality;size:64"`

	Grid             *int     `gorm:"column:grid"`
	GridPitLane      bool     `gorm:"column:grid_pit_lane"`
	Position         *int     `gorm:"column:position"`
	PositionText     string   `gorm:"column:positionText;size:8"`
	PositionOrder    *int     `gorm:"column:positionOrder"`
	Points           *float64 `gorm:"column:points"`
	Laps             *int     `gorm:"column:laps"`
	Milliseconds     *float64 `gorm:"column:milliseconds"`
	StatusID         *int     `gorm:"column:statusId"`
	Status           *string  `gorm:"column:status;size:64"`
	IsDNF            bool     `gorm:"column:is_dnf"`
	DNFType          *string  `gorm:"column:dnf_type;size:16"`
	IsPodium         bool     `gorm:"column:is_podium"`
	FastestLap       *int     `gorm:"column:fastestLap"`
	Rank             *int     `gorm:"column:rank"`
	FastestLapTimeMS *float64 `gorm:"column:fastestLapTime_ms"`
	FastestLapSpeed  *float64 `gorm:"column:fastestLapSpeed"`

	QualiPosition    *int     `gorm:"column:quali_position"`
	Q1MS             *float64 `gorm:"column:q1_ms"`
	Q2MS             *float64 `gorm:"column:q2_ms"`
	Q3MS             *float64 `gorm:"column:q3_ms"`
	BestQualiMS      *float64 `gorm:"column:best_quali_ms"`
	PoleQualiMS      *float64 `gorm:"column:pole_quali_ms"`
	QualifyingGapMS  *float64 `gorm:"column:qualifying_gap_ms"`
	QualifyingGapPct *float64 `gorm:"column:qualifying_gap_pct"`

	TotalPitStops    *int     `gorm:"column:total_pit_stops"`
	TotalPitTimeMS   *float64 `gorm:"column:total_pit_time_ms"`
	AvgPitDurationMS *float64 `gorm:"column:avg_pit_duration_ms"`
	MinPitDurationMS *float64 `gorm:"column:min_pit_duration_ms"`

	LapsCompleted      *int     `gorm:"column:laps_completed"`
	AvgLapTimeMS       *float64 `gorm:"column:avg_lap_time_ms"`
	MedianLapTimeMS    *float64 `gorm:"column:median_lap_time_ms"`
	StdLapTimeMS       *float64 `gorm:"column:std_lap_time_ms"`
	FastestLapMS       *float64 `gorm:"column:fastest_lap_ms"`
	LapTimeConsistency *float64 `gorm:"column:lap_time_consistency"`

	GridVsFinishDelta    *float64 `gorm:"column:grid_vs_finish_delta"`
	IsPointsFinish       bool     `gorm:"column:is_points_finish"`
	IsWinner             bool     `gorm:"column:is_winner"`
	ConstructorSeasonKey *string  `gorm:"column:constructor_season_key;size:80;index"`
}

func (Circuit) TableName() string     { return "circuits" }
func (Driver) TableName() string      { return "drivers" }
func (Constructor) TableName() string { return "constructors" }
func (Race) TableName() string        { return "races" }
func (Result) TableName() string      { return "results" }
func (Qualifying) TableName() string  { return "qualifying" }
func (LapTime) TableName() string     { return "lap_times" }
func (PitStop) TableName() string     { return "pit_stops" }
func (StatusLabel) TableName() string { return "status" }
func (MasterRace) TableName() string  { return "master_race_table" }

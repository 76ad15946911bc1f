// Package merge joins the cleaned tables into one denormalized record
// per (race, driver): the results spine plus race, circuit, driver,
// constructor and status context, the child-table aggregates and the
// post-merge enrichment columns. The status label is joined before
// enrichment so the DNF classification is always derived from the
// authoritative label, never from the interim cleaning flag.
package merge

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"pitwall/internal/clean"
	"pitwall/internal/config"
	"pitwall/internal/models"
	"pitwall/internal/status"
)

// pitLaneCutoffYear is the first season in which a null grid means a
// genuine pit-lane start. Before it the source data used grid=0 as a
// missing-value sentinel; those rows keep the flag false.
const pitLaneCutoffYear = 1996

// Tables holds every cleaned table the merge consumes.
type Tables struct {
	Circuits     []models.Circuit
	Drivers      []models.Driver
	Constructors []models.Constructor
	Races        []models.Race
	Results      []models.Result
	Qualifying   []models.Qualifying
	LapTimes     []models.LapTime
	PitStops     []models.PitStop
	Status       []models.StatusLabel
}

// Report summarizes merge data quality for the operator.
type Report struct {
	Rows          int
	StatusOrphans int
	DNFCount      int
	PitLaneStarts int
}

// LoadCleanTables reads every cleaned artifact. A missing file is
// fatal: the clean stage must run first.
func LoadCleanTables(cfg *config.Config, log *zap.Logger) (*Tables, error) {
	paths := make(map[string]string, len(clean.Tables))
	for _, table := range clean.Tables {
		path := cfg.CleanFile(table)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("merge: cleaned artifact %s not found: run the clean stage first", path)
		}
		paths[table] = path
	}

	var t Tables
	var err error
	if t.Circuits, err = clean.ReadCircuits(paths["circuits"]); err != nil {
		return nil, err
	}
	if t.Drivers, err = clean.ReadDrivers(paths["drivers"]); err != nil {
		return nil, err
	}
	if t.Constructors, err = clean.ReadConstructors(paths["constructors"]); err != nil {
		return nil, err
	}
	if t.Races, err = clean.ReadRaces(paths["races"]); err != nil {
		return nil, err
	}
	if t.Results, err = clean.ReadResults(paths["results"]); err != nil {
		return nil, err
	}
	if t.Qualifying, err = clean.ReadQualifying(paths["qualifying"]); err != nil {
		return nil, err
	}
	if t.LapTimes, err = clean.ReadLapTimes(paths["lap_times"]); err != nil {
		return nil, err
	}
	if t.PitStops, err = clean.ReadPitStops(paths["pit_stops"]); err != nil {
		return nil, err
	}
	if t.Status, err = clean.ReadStatus(paths["status"]); err != nil {
		return nil, err
	}
	log.Info("cleaned tables loaded",
		zap.Int("results", len(t.Results)),
		zap.Int("races", len(t.Races)),
		zap.Int("lap_times", len(t.LapTimes)))
	return &t, nil
}

// uniqueIndex builds a lookup keyed by id, failing on duplicates: every
// join from the spine must be many-to-one, and a duplicated context key
// would silently multiply spine rows.
func uniqueIndex[T any](items []T, name string, key func(T) int) (map[int]T, error) {
	idx := make(map[int]T, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := idx[k]; ok {
			return nil, fmt.Errorf("merge: %s: duplicate key %d violates many-to-one join", name, k)
		}
		idx[k] = item
	}
	return idx, nil
}

// BuildMerged performs the fixed-order left joins onto the results
// spine and returns one Row per result plus a quality report.
func BuildMerged(t *Tables, log *zap.Logger) ([]Row, *Report, error) {
	races, err := uniqueIndex(t.Races, "races", func(r models.Race) int { return r.RaceID })
	if err != nil {
		return nil, nil, err
	}
	circuits, err := uniqueIndex(t.Circuits, "circuits", func(c models.Circuit) int { return c.CircuitID })
	if err != nil {
		return nil, nil, err
	}
	drivers, err := uniqueIndex(t.Drivers, "drivers", func(d models.Driver) int { return d.DriverID })
	if err != nil {
		return nil, nil, err
	}
	constructors, err := uniqueIndex(t.Constructors, "constructors", func(c models.Constructor) int { return c.ConstructorID })
	if err != nil {
		return nil, nil, err
	}
	labels, err := uniqueIndex(t.Status, "status", func(s models.StatusLabel) int { return s.StatusID })
	if err != nil {
		return nil, nil, err
	}

	qualiAgg := AggregateQualifying(t.Qualifying, log)
	pitAgg := AggregatePitStops(t.PitStops, log)
	lapAgg := AggregateLapTimes(t.LapTimes, log)

	report := &Report{}
	rows := make([]Row, 0, len(t.Results))
	for _, res := range t.Results {
		row := Row{
			ResultID:         res.ResultID,
			RaceID:           res.RaceID,
			DriverID:         res.DriverID,
			ConstructorID:    res.ConstructorID,
			Number:           res.Number,
			Grid:             res.Grid,
			GridPitLane:      res.GridPitLane,
			Position:         res.Position,
			PositionText:     res.PositionText,
			PositionOrder:    res.PositionOrder,
			Points:           res.Points,
			Laps:             res.Laps,
			Milliseconds:     res.Milliseconds,
			FastestLap:       res.FastestLap,
			Rank:             res.Rank,
			FastestLapTimeMS: res.FastestLapTimeMS,
			FastestLapSpeed:  res.FastestLapSpeed,
			StatusID:         res.StatusID,
			IsDNF:            res.IsDNF,
			IsPodium:         res.IsPodium,
		}

		if race, ok := races[res.RaceID]; ok {
			year, round, circuitID := race.Year, race.Round, race.CircuitID
			date := race.Date
			row.Year = &year
			row.Round = &round
			row.CircuitID = &circuitID
			row.RaceName = strPtr(race.Name)
			row.Date = &date
			row.FP1Date = race.FP1Date
			row.FP2Date = race.FP2Date
			row.FP3Date = race.FP3Date
			row.QualiDate = race.QualiDate
			row.SprintDate = race.SprintDate

			if circuit, ok := circuits[race.CircuitID]; ok {
				row.CircuitRef = strPtr(circuit.CircuitRef)
				row.CircuitName = strPtr(circuit.Name)
				row.Location = circuit.Location
				row.Country = circuit.Country
				row.Lat = circuit.Lat
				row.Lng = circuit.Lng
				row.Alt = circuit.Alt
			}
		}

		if driver, ok := drivers[res.DriverID]; ok {
			row.DriverRef = strPtr(driver.DriverRef)
			row.DriverCode = driver.Code
			row.FullName = strPtr(driver.FullName)
			row.DriverNationality = driver.Nationality
			row.DOB = driver.DOB
		}

		if constructor, ok := constructors[res.ConstructorID]; ok {
			row.ConstructorRef = strPtr(constructor.ConstructorRef)
			row.ConstructorName = strPtr(constructor.Name)
			row.ConstructorNationality = constructor.Nationality
		}

		// Status join: mandatory before classification. An orphaned
		// statusId stays unclassifiable rather than defaulting to
		// finished or DNF.
		if res.StatusID != nil {
			if label, ok := labels[*res.StatusID]; ok {
				row.Status = strPtr(label.Status)
			} else {
				report.StatusOrphans++
			}
		}

		k := Key{RaceID: res.RaceID, DriverID: res.DriverID}
		if q, ok := qualiAgg[k]; ok {
			row.QualiPosition = q.Position
			row.Q1MS = q.Q1MS
			row.Q2MS = q.Q2MS
			row.Q3MS = q.Q3MS
			row.BestQualiMS = q.BestQualiMS
		}
		if p, ok := pitAgg[k]; ok {
			stops := p.TotalStops
			total := p.TotalTimeMS
			row.TotalPitStops = &stops
			row.TotalPitTimeMS = &total
			row.AvgPitDurationMS = p.AvgDurationMS
			row.MinPitDurationMS = p.MinDurationMS
		}
		if l, ok := lapAgg[k]; ok {
			laps := l.LapsCompleted
			avg, med, fast := l.AvgMS, l.MedianMS, l.FastestMS
			row.LapsCompleted = &laps
			row.AvgLapTimeMS = &avg
			row.MedianLapTimeMS = &med
			row.StdLapTimeMS = l.StdMS
			row.FastestLapMS = &fast
			row.LapTimeConsistency = l.Consistency
		}

		rows = append(rows, row)
	}

	if report.StatusOrphans > 0 {
		log.Warn("results rows with a statusId but no matching label",
			zap.Int("rows", report.StatusOrphans))
	} else {
		log.Info("all statusId values resolved to a label")
	}
	report.Rows = len(rows)
	return rows, report, nil
}

// Enrich computes the cross-table derived columns in place: the
// authoritative DNF classification, the era-aware pit-lane flag,
// driver age at race, qualifying gap to pole and season progress.
func Enrich(rows []Row, report *Report, log *zap.Logger) {
	// Pole time per race and maximum round per season.
	pole := make(map[int]float64)
	maxRound := make(map[int]int)
	for i := range rows {
		r := &rows[i]
		if r.BestQualiMS != nil {
			if cur, ok := pole[r.RaceID]; !ok || *r.BestQualiMS < cur {
				pole[r.RaceID] = *r.BestQualiMS
			}
		}
		if r.Year != nil && r.Round != nil {
			if cur, ok := maxRound[*r.Year]; !ok || *r.Round > cur {
				maxRound[*r.Year] = *r.Round
			}
		}
	}

	for i := range rows {
		r := &rows[i]

		// Authoritative classification from the status label. The
		// interim positionText flag is overwritten; a nil label leaves
		// the row unclassified (not DNF, not finish).
		verdict := status.Classify(r.Status)
		r.IsDNF = verdict.IsDNF
		r.DNFType = verdict.DNFType
		if r.IsDNF {
			report.DNFCount++
		}

		// Era-aware pit-lane flag: a nulled grid in the modern era is
		// a pit-lane start; in historic seasons it is a data gap.
		if r.Grid == nil && r.Year != nil && *r.Year >= pitLaneCutoffYear {
			r.GridPitLane = true
			report.PitLaneStarts++
		}

		if r.DOB != nil && r.Date != nil {
			age := round2(r.Date.Sub(*r.DOB).Hours() / 24 / 365.25)
			r.DriverAgeAtRace = &age
		}

		if r.BestQualiMS != nil {
			if poleMS, ok := pole[r.RaceID]; ok {
				p := poleMS
				gap := round1(*r.BestQualiMS - poleMS)
				pct := round4(gap / poleMS * 100)
				r.PoleQualiMS = &p
				r.QualifyingGapMS = &gap
				r.QualifyingGapPct = &pct
			}
		}

		if r.Year != nil && r.Round != nil {
			if max, ok := maxRound[*r.Year]; ok && max > 0 {
				pct := round4(float64(*r.Round) / float64(max))
				r.SeasonRoundPct = &pct
			}
		}
	}

	log.Info("enrichment complete",
		zap.Int("rows", len(rows)),
		zap.Int("dnf", report.DNFCount),
		zap.Int("pit_lane_starts", report.PitLaneStarts))
}

// Run executes the full merge stage: load, join, enrich, write.
func Run(cfg *config.Config, log *zap.Logger) (*Report, error) {
	tables, err := LoadCleanTables(cfg, log)
	if err != nil {
		return nil, err
	}
	rows, report, err := BuildMerged(tables, log)
	if err != nil {
		return nil, err
	}
	Enrich(rows, report, log)

	if err := os.MkdirAll(cfg.Paths.InterimData, 0o755); err != nil {
		return nil, fmt.Errorf("merge: create interim dir: %w", err)
	}
	out := cfg.MergedFile()
	if err := WriteRows(out, rows); err != nil {
		return nil, err
	}
	log.Info("merged dataset written", zap.String("path", out), zap.Int("rows", len(rows)))
	return report, nil
}

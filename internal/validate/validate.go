// Package validate runs the post-clean QA checks: referential
// integrity between the cleaned tables, natural-key duplicates and
// classifier coverage over the live label set. Findings are reported
// through the logger as a scorecard; nothing here fails the pipeline.
package validate

import (
	"sort"

	"go.uber.org/zap"

	"pitwall/internal/config"
	"pitwall/internal/merge"
	"pitwall/internal/status"
)

// Scorecard aggregates every check result of one validation run.
type Scorecard struct {
	Orphans      map[string]int
	Duplicates   map[string]int
	Unclassified []string
	Exclusion    []string
	Passed       int
	Failed       int
}

// OK reports whether every check came back clean.
func (s *Scorecard) OK() bool { return s.Failed == 0 }

func (s *Scorecard) record(log *zap.Logger, check string, findings int, detail ...zap.Field) {
	if findings == 0 {
		s.Passed++
		log.Info("check passed", zap.String("check", check))
		return
	}
	s.Failed++
	fields := append([]zap.Field{zap.String("check", check), zap.Int("findings", findings)}, detail...)
	log.Warn("check failed", fields...)
}

// Check runs every validation over already-loaded cleaned tables.
func Check(t *merge.Tables, log *zap.Logger) *Scorecard {
	sc := &Scorecard{
		Orphans:    make(map[string]int),
		Duplicates: make(map[string]int),
	}

	checkForeignKeys(t, sc, log)
	checkDuplicates(t, sc, log)
	checkStatusCoverage(t, sc, log)
	return sc
}

func checkForeignKeys(t *merge.Tables, sc *Scorecard, log *zap.Logger) {
	races := make(map[int]bool, len(t.Races))
	for _, r := range t.Races {
		races[r.RaceID] = true
	}
	drivers := make(map[int]bool, len(t.Drivers))
	for _, d := range t.Drivers {
		drivers[d.DriverID] = true
	}
	constructors := make(map[int]bool, len(t.Constructors))
	for _, c := range t.Constructors {
		constructors[c.ConstructorID] = true
	}
	labels := make(map[int]bool, len(t.Status))
	for _, s := range t.Status {
		labels[s.StatusID] = true
	}
	resultKeys := make(map[merge.Key]bool, len(t.Results))
	for _, r := range t.Results {
		resultKeys[merge.Key{RaceID: r.RaceID, DriverID: r.DriverID}] = true
	}

	for _, r := range t.Results {
		if !races[r.RaceID] {
			sc.Orphans["results->races"]++
		}
		if !drivers[r.DriverID] {
			sc.Orphans["results->drivers"]++
		}
		if !constructors[r.ConstructorID] {
			sc.Orphans["results->constructors"]++
		}
		if r.StatusID != nil && !labels[*r.StatusID] {
			sc.Orphans["results->status"]++
		}
	}
	for _, q := range t.Qualifying {
		if !resultKeys[merge.Key{RaceID: q.RaceID, DriverID: q.DriverID}] {
			sc.Orphans["qualifying->results"]++
		}
	}
	for _, l := range t.LapTimes {
		if !resultKeys[merge.Key{RaceID: l.RaceID, DriverID: l.DriverID}] {
			sc.Orphans["lap_times->results"]++
		}
	}
	for _, p := range t.PitStops {
		if !resultKeys[merge.Key{RaceID: p.RaceID, DriverID: p.DriverID}] {
			sc.Orphans["pit_stops->results"]++
		}
	}

	for _, rel := range []string{
		"results->races", "results->drivers", "results->constructors",
		"results->status", "qualifying->results", "lap_times->results",
		"pit_stops->results",
	} {
		sc.record(log, "fk "+rel, sc.Orphans[rel])
	}
}

func checkDuplicates(t *merge.Tables, sc *Scorecard, log *zap.Logger) {
	countDupes := func(name string, n int, key func(i int) interface{}) {
		seen := make(map[interface{}]bool, n)
		for i := 0; i < n; i++ {
			k := key(i)
			if seen[k] {
				sc.Duplicates[name]++
			}
			seen[k] = true
		}
		sc.record(log, "dupes "+name, sc.Duplicates[name])
	}

	countDupes("results raceId+driverId", len(t.Results), func(i int) interface{} {
		return merge.Key{RaceID: t.Results[i].RaceID, DriverID: t.Results[i].DriverID}
	})
	countDupes("drivers driverRef", len(t.Drivers), func(i int) interface{} {
		return t.Drivers[i].DriverRef
	})
	countDupes("constructors constructorRef", len(t.Constructors), func(i int) interface{} {
		return t.Constructors[i].ConstructorRef
	})
	countDupes("races year+round", len(t.Races), func(i int) interface{} {
		return [2]int{t.Races[i].Year, t.Races[i].Round}
	})
	countDupes("lap_times raceId+driverId+lap", len(t.LapTimes), func(i int) interface{} {
		l := t.LapTimes[i]
		return [3]int{l.RaceID, l.DriverID, l.Lap}
	})
	countDupes("pit_stops raceId+driverId+stop", len(t.PitStops), func(i int) interface{} {
		p := t.PitStops[i]
		return [3]int{p.RaceID, p.DriverID, p.Stop}
	})
}

// checkStatusCoverage classifies every live label. Labels matching no
// vocabulary land in an explicit unclassified bucket instead of being
// silently treated as finishes or DNFs, and no label may register as
// both a finish and a DNF.
func checkStatusCoverage(t *merge.Tables, sc *Scorecard, log *zap.Logger) {
	for _, s := range t.Status {
		label := s.Status
		isDNF := status.IsDNF(label)
		isFinish := status.IsFinish(label)
		if !isDNF && !isFinish {
			sc.Unclassified = append(sc.Unclassified, label)
		}
		if isDNF && isFinish {
			sc.Exclusion = append(sc.Exclusion, label)
		}
	}
	sort.Strings(sc.Unclassified)
	sort.Strings(sc.Exclusion)

	sc.record(log, "status coverage", len(sc.Unclassified),
		zap.Strings("unclassified", sc.Unclassified))
	sc.record(log, "status finish/DNF exclusion", len(sc.Exclusion),
		zap.Strings("labels", sc.Exclusion))
}

// Run loads the cleaned artifacts and validates them.
func Run(cfg *config.Config, log *zap.Logger) (*Scorecard, error) {
	tables, err := merge.LoadCleanTables(cfg, log)
	if err != nil {
		return nil, err
	}
	sc := Check(tables, log)
	log.Info("validation scorecard",
		zap.Int("passed", sc.Passed),
		zap.Int("failed", sc.Failed))
	return sc, nil
}

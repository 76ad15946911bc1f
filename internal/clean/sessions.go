package clean

import (
	"go.uber.org/zap"

	"pitwall/internal/csvio"
	"pitwall/internal/models"
	"pitwall/internal/status"
)

// Qualifying cleans the qualifying table: session time strings parsed
// to milliseconds with validity bounds, plus the derived best time.
func Qualifying(tbl *csvio.Table, log *zap.Logger) []models.Qualifying {
	rows := make([]models.Qualifying, 0, len(tbl.Rows))
	nulled := 0
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "qualifyId"))
		raceID := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		driverID := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		if id == nil || raceID == nil || driverID == nil {
			continue
		}
		constructorID := csvio.IntPtr(tbl.Cell(rec, "constructorId"))
		if constructorID == nil {
			z := 0
			constructorID = &z
		}

		q := models.Qualifying{
			QualifyID:     *id,
			RaceID:        *raceID,
			DriverID:      *driverID,
			ConstructorID: *constructorID,
			Number:        csvio.IntPtr(tbl.Cell(rec, "number")),
			Position:      csvio.IntPtr(tbl.Cell(rec, "position")),
			Q1MS:          ParseLapTime(tbl.Cell(rec, "q1")),
			Q2MS:          ParseLapTime(tbl.Cell(rec, "q2")),
			Q3MS:          ParseLapTime(tbl.Cell(rec, "q3")),
		}
		for _, ms := range []**float64{&q.Q1MS, &q.Q2MS, &q.Q3MS} {
			if outOfRange(*ms, status.LapTimeMinMS, status.LapTimeMaxMS) {
				*ms = nil
				nulled++
			}
		}
		q.BestQualiMS = minFloat(q.Q1MS, q.Q2MS, q.Q3MS)
		rows = append(rows, q)
	}
	if nulled > 0 {
		log.Warn("nulled out-of-range qualifying times", zap.Int("values", nulled))
	}
	return rows
}

// LapTimes cleans the lap times table. The time string parse takes
// priority; the pre-computed milliseconds column is the fallback
// (it carries rounding artefacts). Rows still null after the fallback
// are dropped.
func LapTimes(tbl *csvio.Table, log *zap.Logger) []models.LapTime {
	rows := make([]models.LapTime, 0, len(tbl.Rows))
	nulled := 0
	dropped := 0
	for _, rec := range tbl.Rows {
		raceID := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		driverID := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		lap := csvio.IntPtr(tbl.Cell(rec, "lap"))
		if raceID == nil || driverID == nil || lap == nil {
			dropped++
			continue
		}

		ms := ParseLapTime(tbl.Cell(rec, "time"))
		if ms == nil {
			ms = csvio.FloatPtr(tbl.Cell(rec, "milliseconds"))
		}
		if outOfRange(ms, status.LapTimeMinMS, status.LapTimeMaxMS) {
			ms = nil
			nulled++
		}
		if ms == nil {
			dropped++
			continue
		}

		rows = append(rows, models.LapTime{
			RaceID:    *raceID,
			DriverID:  *driverID,
			Lap:       *lap,
			Position:  csvio.IntPtr(tbl.Cell(rec, "position")),
			LapTimeMS: ms,
		})
	}
	if nulled > 0 {
		log.Warn("nulled out-of-range lap times", zap.Int("values", nulled))
	}
	if dropped > 0 {
		log.Warn("dropped lap rows with unresolvable times", zap.Int("rows", dropped))
	}
	return rows
}

// PitStops cleans the pit stops table. Durations arrive as "SS.mmm" or
// "M:SS.mmm" strings with a pre-computed milliseconds fallback; the
// wall-clock time-of-day column is not carried forward.
func PitStops(tbl *csvio.Table, log *zap.Logger) []models.PitStop {
	rows := make([]models.PitStop, 0, len(tbl.Rows))
	nulled := 0
	for _, rec := range tbl.Rows {
		raceID := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		driverID := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		stop := csvio.IntPtr(tbl.Cell(rec, "stop"))
		if raceID == nil || driverID == nil || stop == nil {
			continue
		}

		ms := ParseDuration(tbl.Cell(rec, "duration"))
		if ms == nil {
			ms = csvio.FloatPtr(tbl.Cell(rec, "milliseconds"))
		}
		if outOfRange(ms, status.PitStopMinMS, status.PitStopMaxMS) {
			ms = nil
			nulled++
		}

		rows = append(rows, models.PitStop{
			RaceID:        *raceID,
			DriverID:      *driverID,
			Stop:          *stop,
			Lap:           csvio.IntPtr(tbl.Cell(rec, "lap")),
			PitDurationMS: ms,
		})
	}
	if nulled > 0 {
		log.Warn("nulled out-of-range pit durations", zap.Int("values", nulled))
	}
	return rows
}

// minFloat returns the minimum of the non-nil arguments, nil when all
// are nil.
func minFloat(vals ...*float64) *float64 {
	var best *float64
	for _, v := range vals {
		if v == nil {
			continue
		}
		if best == nil || *v < *best {
			val := *v
			best = &val
		}
	}
	return best
}

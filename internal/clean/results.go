package clean

import (
	"go.uber.org/zap"

	"pitwall/internal/csvio"
	"pitwall/internal/models"
	"pitwall/internal/status"
)

// Results cleans the results spine table.
//
// A raw grid of 0 carries two meanings: a genuine pit-lane start in the
// modern era, or a missing-data sentinel in historic seasons. This
// stage has no race-year context, so it nulls the grid and initializes
// GridPitLane to false; the merge stage reclassifies once the year is
// known.
//
// The IsDNF flag set here is an interim derivation from the coarse
// positionText retirement codes so the cleaned artifact is
// self-contained. The merge stage recomputes it from the authoritative
// status label and the master stage cross-validates the two.
func Results(tbl *csvio.Table, log *zap.Logger) []models.Result {
	rows := make([]models.Result, 0, len(tbl.Rows))
	gridZero := 0
	fastestLapNulled := 0
	negativePoints := 0
	interimDNF := 0

	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "resultId"))
		raceID := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		driverID := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		constructorID := csvio.IntPtr(tbl.Cell(rec, "constructorId"))
		if id == nil || raceID == nil || driverID == nil || constructorID == nil {
			continue
		}

		r := models.Result{
			ResultID:        *id,
			RaceID:          *raceID,
			DriverID:        *driverID,
			ConstructorID:   *constructorID,
			Number:          csvio.IntPtr(tbl.Cell(rec, "number")),
			Grid:            csvio.IntPtr(tbl.Cell(rec, "grid")),
			Position:        csvio.IntPtr(tbl.Cell(rec, "position")),
			PositionText:    tbl.Cell(rec, "positionText"),
			PositionOrder:   csvio.IntPtr(tbl.Cell(rec, "positionOrder")),
			Points:          csvio.FloatPtr(tbl.Cell(rec, "points")),
			Laps:            csvio.IntPtr(tbl.Cell(rec, "laps")),
			Milliseconds:    csvio.FloatPtr(tbl.Cell(rec, "milliseconds")),
			FastestLap:      csvio.IntPtr(tbl.Cell(rec, "fastestLap")),
			Rank:            csvio.IntPtr(tbl.Cell(rec, "rank")),
			FastestLapSpeed: csvio.FloatPtr(tbl.Cell(rec, "fastestLapSpeed")),
			StatusID:        csvio.IntPtr(tbl.Cell(rec, "statusId")),
		}

		// Grid sentinel: always null, never literal 0. The flag stays
		// false until the merge stage sees the race year.
		if r.Grid != nil && *r.Grid == 0 {
			r.Grid = nil
			gridZero++
		}

		r.FastestLapTimeMS = ParseLapTime(tbl.Cell(rec, "fastestLapTime"))
		if outOfRange(r.FastestLapTimeMS, status.LapTimeMinMS, status.LapTimeMaxMS) {
			r.FastestLapTimeMS = nil
			fastestLapNulled++
		}

		if r.Points != nil && *r.Points < 0 {
			zero := 0.0
			r.Points = &zero
			negativePoints++
		}

		r.IsDNF = status.PositionTextDNFCodes[r.PositionText]
		if r.IsDNF {
			interimDNF++
		}
		r.IsPodium = r.Position != nil && *r.Position <= 3

		rows = append(rows, r)
	}

	if gridZero > 0 {
		log.Info("nulled grid=0 sentinel rows pending era reclassification",
			zap.Int("rows", gridZero))
	}
	if fastestLapNulled > 0 {
		log.Warn("nulled out-of-range fastest lap times", zap.Int("rows", fastestLapNulled))
	}
	if negativePoints > 0 {
		log.Warn("zeroed negative points values", zap.Int("rows", negativePoints))
	}
	log.Info("interim DNF flag from positionText codes",
		zap.Int("dnf", interimDNF), zap.Int("total", len(rows)))
	return rows
}

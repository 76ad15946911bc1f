package clean

import (
	"sort"

	"go.uber.org/zap"

	"pitwall/internal/csvio"
	"pitwall/internal/models"
	"pitwall/internal/status"
)

// countryNames maps source-data country abbreviations to full names.
var countryNames = map[string]string{
	"UK":    "United Kingdom",
	"USA":   "United States",
	"UAE":   "United Arab Emirates",
	"Korea": "South Korea",
}

// Circuits cleans the circuits lookup table: numeric coercion for
// coordinates, GPS bounds enforcement, median fill for the sparse
// altitude column and country name normalization.
func Circuits(tbl *csvio.Table, log *zap.Logger) []models.Circuit {
	rows := make([]models.Circuit, 0, len(tbl.Rows))
	invalidLat, invalidLng := 0, 0
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "circuitId"))
		if id == nil {
			continue
		}
		c := models.Circuit{
			CircuitID:  *id,
			CircuitRef: tbl.Cell(rec, "circuitRef"),
			Name:       tbl.Cell(rec, "name"),
			Location:   strPtr(tbl.Cell(rec, "location")),
			Country:    strPtr(tbl.Cell(rec, "country")),
			Lat:        csvio.FloatPtr(tbl.Cell(rec, "lat")),
			Lng:        csvio.FloatPtr(tbl.Cell(rec, "lng")),
			Alt:        csvio.FloatPtr(tbl.Cell(rec, "alt")),
		}
		if outOfRange(c.Lat, status.LatMin, status.LatMax) {
			c.Lat = nil
			invalidLat++
		}
		if outOfRange(c.Lng, status.LngMin, status.LngMax) {
			c.Lng = nil
			invalidLng++
		}
		if c.Country != nil {
			if full, ok := countryNames[*c.Country]; ok {
				c.Country = &full
			}
		}
		rows = append(rows, c)
	}
	if invalidLat > 0 || invalidLng > 0 {
		log.Warn("nulled invalid GPS coordinates",
			zap.Int("lat", invalidLat), zap.Int("lng", invalidLng))
	}

	// Altitude is a low-impact feature missing for many historic
	// circuits; the table median is a safe fill.
	var alts []float64
	for _, c := range rows {
		if c.Alt != nil {
			alts = append(alts, *c.Alt)
		}
	}
	if median, ok := medianOf(alts); ok {
		filled := 0
		for i := range rows {
			if rows[i].Alt == nil {
				m := median
				rows[i].Alt = &m
				filled++
			}
		}
		if filled > 0 {
			log.Info("filled missing altitude with median",
				zap.Int("rows", filled), zap.Float64("median", median))
		}
	}
	return rows
}

// Drivers cleans the drivers identity table and deduplicates on the
// driverRef natural key, keeping the first occurrence.
func Drivers(tbl *csvio.Table, log *zap.Logger) []models.Driver {
	rows := make([]models.Driver, 0, len(tbl.Rows))
	seen := make(map[string]bool)
	dupes := 0
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		if id == nil {
			continue
		}
		ref := tbl.Cell(rec, "driverRef")
		if seen[ref] {
			dupes++
			continue
		}
		seen[ref] = true
		forename := tbl.Cell(rec, "forename")
		surname := tbl.Cell(rec, "surname")
		rows = append(rows, models.Driver{
			DriverID:    *id,
			DriverRef:   ref,
			Number:      csvio.IntPtr(tbl.Cell(rec, "number")),
			Code:        strPtr(tbl.Cell(rec, "code")),
			Forename:    forename,
			Surname:     surname,
			FullName:    forename + " " + surname,
			DOB:         csvio.DatePtr(tbl.Cell(rec, "dob")),
			Nationality: strPtr(tbl.Cell(rec, "nationality")),
		})
	}
	if dupes > 0 {
		log.Warn("dropped duplicate driverRef rows", zap.Int("rows", dupes))
	}
	return rows
}

// Constructors cleans the constructors identity table.
func Constructors(tbl *csvio.Table, log *zap.Logger) []models.Constructor {
	rows := make([]models.Constructor, 0, len(tbl.Rows))
	seen := make(map[string]bool)
	dupes := 0
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "constructorId"))
		if id == nil {
			continue
		}
		ref := tbl.Cell(rec, "constructorRef")
		if seen[ref] {
			dupes++
			continue
		}
		seen[ref] = true
		rows = append(rows, models.Constructor{
			ConstructorID:  *id,
			ConstructorRef: ref,
			Name:           tbl.Cell(rec, "name"),
			Nationality:    strPtr(tbl.Cell(rec, "nationality")),
		})
	}
	if dupes > 0 {
		log.Warn("dropped duplicate constructorRef rows", zap.Int("rows", dupes))
	}
	return rows
}

// Races cleans the races context table. Rows with an unparseable race
// date are dropped: every downstream derivation (driver age, season
// progress) depends on the date. Sparse session time-of-day columns
// are not carried forward.
func Races(tbl *csvio.Table, log *zap.Logger) []models.Race {
	rows := make([]models.Race, 0, len(tbl.Rows))
	dropped := 0
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		year := csvio.IntPtr(tbl.Cell(rec, "year"))
		round := csvio.IntPtr(tbl.Cell(rec, "round"))
		date := csvio.DatePtr(tbl.Cell(rec, "date"))
		if id == nil || year == nil || round == nil || date == nil {
			dropped++
			continue
		}
		circuit := csvio.IntPtr(tbl.Cell(rec, "circuitId"))
		if circuit == nil {
			z := 0
			circuit = &z
		}
		rows = append(rows, models.Race{
			RaceID:     *id,
			Year:       *year,
			Round:      *round,
			CircuitID:  *circuit,
			Name:       tbl.Cell(rec, "name"),
			Date:       *date,
			FP1Date:    csvio.DatePtr(tbl.Cell(rec, "fp1_date")),
			FP2Date:    csvio.DatePtr(tbl.Cell(rec, "fp2_date")),
			FP3Date:    csvio.DatePtr(tbl.Cell(rec, "fp3_date")),
			QualiDate:  csvio.DatePtr(tbl.Cell(rec, "quali_date")),
			SprintDate: csvio.DatePtr(tbl.Cell(rec, "sprint_date")),
		})
	}
	if dropped > 0 {
		log.Warn("dropped races with unparseable key fields", zap.Int("rows", dropped))
	}
	return rows
}

// Status cleans the status lookup table. Minimal work: it is a small
// authoritative table consumed by every DNF derivation downstream.
func Status(tbl *csvio.Table, log *zap.Logger) []models.StatusLabel {
	for _, col := range []string{"statusId", "status"} {
		if tbl.Col(col) < 0 {
			log.Warn("expected column missing from status table", zap.String("column", col))
		}
	}
	rows := make([]models.StatusLabel, 0, len(tbl.Rows))
	unique := make(map[string]bool)
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "statusId"))
		if id == nil {
			continue
		}
		label := tbl.Cell(rec, "status")
		unique[label] = true
		rows = append(rows, models.StatusLabel{StatusID: *id, Status: label})
	}
	log.Info("status categories", zap.Int("unique", len(unique)))
	return rows
}

// strPtr returns nil for the empty string, otherwise a pointer to s.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// medianOf returns the median of vals, false when vals is empty.
func medianOf(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

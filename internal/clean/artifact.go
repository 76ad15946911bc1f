package clean

import (
	"fmt"

	"pitwall/internal/csvio"
	"pitwall/internal/models"
)

// Cleaned-table artifacts are conventional CSV hand-offs: the clean
// stage writes them, the merge and load stages re-read them from disk.
// This file owns the column contract for every one of them.

var circuitHeader = []string{"circuitId", "circuitRef", "name", "location", "country", "lat", "lng", "alt"}

// WriteCircuits writes the cleaned circuits artifact.
func WriteCircuits(path string, rows []models.Circuit) error {
	recs := make([][]string, len(rows))
	for i, c := range rows {
		recs[i] = []string{
			csvio.FormatInt(&c.CircuitID), c.CircuitRef, c.Name,
			csvio.FormatString(c.Location), csvio.FormatString(c.Country),
			csvio.FormatFloat(c.Lat), csvio.FormatFloat(c.Lng), csvio.FormatFloat(c.Alt),
		}
	}
	return csvio.WriteFile(path, circuitHeader, recs)
}

// ReadCircuits reads the cleaned circuits artifact.
func ReadCircuits(path string) ([]models.Circuit, error) {
	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Circuit, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "circuitId"))
		if id == nil {
			return nil, fmt.Errorf("clean: %s: row missing circuitId", path)
		}
		rows = append(rows, models.Circuit{
			CircuitID:  *id,
			CircuitRef: tbl.Cell(rec, "circuitRef"),
			Name:       tbl.Cell(rec, "name"),
			Location:   strPtr(tbl.Cell(rec, "location")),
			Country:    strPtr(tbl.Cell(rec, "country")),
			Lat:        csvio.FloatPtr(tbl.Cell(rec, "lat")),
			Lng:        csvio.FloatPtr(tbl.Cell(rec, "lng")),
			Alt:        csvio.FloatPtr(tbl.Cell(rec, "alt")),
		})
	}
	return rows, nil
}

var driverHeader = []string{"driverId", "driverRef", "number", "code", "forename", "surname", "full_name", "dob", "nationality"}

// WriteDrivers writes the cleaned drivers artifact.
func WriteDrivers(path string, rows []models.Driver) error {
	recs := make([][]string, len(rows))
	for i, d := range rows {
		recs[i] = []string{
			csvio.FormatInt(&d.DriverID), d.DriverRef,
			csvio.FormatInt(d.Number), csvio.FormatString(d.Code),
			d.Forename, d.Surname, d.FullName,
			csvio.FormatDate(d.DOB), csvio.FormatString(d.Nationality),
		}
	}
	return csvio.WriteFile(path, driverHeader, recs)
}

// ReadDrivers reads the cleaned drivers artifact.
func ReadDrivers(path string) ([]models.Driver, error) {
	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Driver, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		if id == nil {
			return nil, fmt.Errorf("clean: %s: row missing driverId", path)
		}
		rows = append(rows, models.Driver{
			DriverID:    *id,
			DriverRef:   tbl.Cell(rec, "driverRef"),
			Number:      csvio.IntPtr(tbl.Cell(rec, "number")),
			Code:        strPtr(tbl.Cell(rec, "code")),
			Forename:    tbl.Cell(rec, "forename"),
			Surname:     tbl.Cell(rec, "surname"),
			FullName:    tbl.Cell(rec, "full_name"),
			DOB:         csvio.DatePtr(tbl.Cell(rec, "dob")),
			Nationality: strPtr(tbl.Cell(rec, "nationality")),
		})
	}
	return rows, nil
}

var constructorHeader = []string{"constructorId", "constructorRef", "name", "nationality"}

// WriteConstructors writes the cleaned constructors artifact.
func WriteConstructors(path string, rows []models.Constructor) error {
	recs := make([][]string, len(rows))
	for i, c := range rows {
		recs[i] = []string{
			csvio.FormatInt(&c.ConstructorID), c.ConstructorRef,
			c.Name, csvio.FormatString(c.Nationality),
		}
	}
	return csvio.WriteFile(path, constructorHeader, recs)
}

// ReadConstructors reads the cleaned constructors artifact.
func ReadConstructors(path string) ([]models.Constructor, error) {
	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Constructor, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "constructorId"))
		if id == nil {
			return nil, fmt.Errorf("clean: %s: row missing constructorId", path)
		}
		rows = append(rows, models.Constructor{
			ConstructorID:  *id,
			ConstructorRef: tbl.Cell(rec, "constructorRef"),
			Name:           tbl.Cell(rec, "name"),
			Nationality:    strPtr(tbl.Cell(rec, "nationality")),
		})
	}
	return rows, nil
}

var raceHeader = []string{"raceId", "year", "round", "circuitId", "name", "date", "fp1_date", "fp2_date", "fp3_date", "quali_date", "sprint_date"}

// WriteRaces writes the cleaned races artifact.
func WriteRaces(path string, rows []models.Race) error {
	recs := make([][]string, len(rows))
	for i, r := range rows {
		date := r.Date
		recs[i] = []string{
			csvio.FormatInt(&r.RaceID), csvio.FormatInt(&r.Year), csvio.FormatInt(&r.Round),
			csvio.FormatInt(&r.CircuitID), r.Name, csvio.FormatDate(&date),
			csvio.FormatDate(r.FP1Date), csvio.FormatDate(r.FP2Date), csvio.FormatDate(r.FP3Date),
			csvio.FormatDate(r.QualiDate), csvio.FormatDate(r.SprintDate),
		}
	}
	return csvio.WriteFile(path, raceHeader, recs)
}

// ReadRaces reads the cleaned races artifact.
func ReadRaces(path string) ([]models.Race, error) {
	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Race, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		year := csvio.IntPtr(tbl.Cell(rec, "year"))
		round := csvio.IntPtr(tbl.Cell(rec, "round"))
		circuit := csvio.IntPtr(tbl.Cell(rec, "circuitId"))
		date := csvio.DatePtr(tbl.Cell(rec, "date"))
		if id == nil || year == nil || round == nil || circuit == nil || date == nil {
			return nil, fmt.Errorf("clean: %s: row missing race key fields", path)
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
	return rows, nil
}

var resultHeader = []string{
	"resultId", "raceId", "driverId", "constructorId", "number",
	"grid", "grid_pit_lane", "position", "positionText", "positionOrder",
	"points", "laps", "milliseconds", "fastestLap", "rank",
	"fastestLapTime_ms", "fastestLapSpeed", "statusId", "is_dnf", "is_podium",
}

// WriteResults writes the cleaned results artifact.
func WriteResults(path string, rows []models.Result) error {
	recs := make([][]string, len(rows))
	for i, r := range rows {
		recs[i] = []string{
			csvio.FormatInt(&r.ResultID), csvio.FormatInt(&r.RaceID),
			csvio.FormatInt(&r.DriverID), csvio.FormatInt(&r.ConstructorID),
			csvio.FormatInt(r.Number),
			csvio.FormatInt(r.Grid), csvio.FormatBool(r.GridPitLane),
			csvio.FormatInt(r.Position), r.PositionText, csvio.FormatInt(r.PositionOrder),
			csvio.FormatFloat(r.Points), csvio.FormatInt(r.Laps), csvio.FormatFloat(r.Milliseconds),
			csvio.FormatInt(r.FastestLap), csvio.FormatInt(r.Rank),
			csvio.FormatFloat(r.FastestLapTimeMS), csvio.FormatFloat(r.FastestLapSpeed),
			csvio.FormatInt(r.StatusID), csvio.FormatBool(r.IsDNF), csvio.FormatBool(r.IsPodium),
		}
	}
	return csvio.WriteFile(path, resultHeader, recs)
}

// ReadResults reads the cleaned results artifact.
func ReadResults(path string) ([]models.Result, error) {
	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Result, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "resultId"))
		raceID := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		driverID := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		constructorID := csvio.IntPtr(tbl.Cell(rec, "constructorId"))
		if id == nil || raceID == nil || driverID == nil || constructorID == nil {
			return nil, fmt.Errorf("clean: %s: row missing result key fields", path)
		}
		pitLane := csvio.BoolPtr(tbl.Cell(rec, "grid_pit_lane"))
		isDNF := csvio.BoolPtr(tbl.Cell(rec, "is_dnf"))
		isPodium := csvio.BoolPtr(tbl.Cell(rec, "is_podium"))
		rows = append(rows, models.Result{
			ResultID:         *id,
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
			IsDNF:            isDNF != nil && *isDNF,
			IsPodium:         isPodium != nil && *isPodium,
		})
	}
	return rows, nil
}

var qualifyingHeader = []string{"qualifyId", "raceId", "driverId", "constructorId", "number", "position", "q1_ms", "q2_ms", "q3_ms", "best_quali_ms"}

// WriteQualifying writes the cleaned qualifying artifact.
func WriteQualifying(path string, rows []models.Qualifying) error {
	recs := make([][]string, len(rows))
	for i, q := range rows {
		recs[i] = []string{
			csvio.FormatInt(&q.QualifyID), csvio.FormatInt(&q.RaceID),
			csvio.FormatInt(&q.DriverID), csvio.FormatInt(&q.ConstructorID),
			csvio.FormatInt(q.Number), csvio.FormatInt(q.Position),
			csvio.FormatFloat(q.Q1MS), csvio.FormatFloat(q.Q2MS), csvio.FormatFloat(q.Q3MS),
			csvio.FormatFloat(q.BestQualiMS),
		}
	}
	return csvio.WriteFile(path, qualifyingHeader, recs)
}

// ReadQualifying reads the cleaned qualifying artifact.
func ReadQualifying(path string) ([]models.Qualifying, error) {
	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Qualifying, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "qualifyId"))
		raceID := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		driverID := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		constructorID := csvio.IntPtr(tbl.Cell(rec, "constructorId"))
		if id == nil || raceID == nil || driverID == nil || constructorID == nil {
			return nil, fmt.Errorf("clean: %s: row missing qualifying key fields", path)
		}
		rows = append(rows, models.Qualifying{
			QualifyID:     *id,
			RaceID:        *raceID,
			DriverID:      *driverID,
			ConstructorID: *constructorID,
			Number:        csvio.IntPtr(tbl.Cell(rec, "number")),
			Position:      csvio.IntPtr(tbl.Cell(rec, "position")),
			Q1MS:          csvio.FloatPtr(tbl.Cell(rec, "q1_ms")),
			Q2MS:          csvio.FloatPtr(tbl.Cell(rec, "q2_ms")),
			Q3MS:          csvio.FloatPtr(tbl.Cell(rec, "q3_ms")),
			BestQualiMS:   csvio.FloatPtr(tbl.Cell(rec, "best_quali_ms")),
		})
	}
	return rows, nil
}

var lapTimeHeader = []string{"raceId", "driverId", "lap", "position", "lap_time_ms"}

// WriteLapTimes writes the cleaned lap times artifact.
func WriteLapTimes(path string, rows []models.LapTime) error {
	recs := make([][]string, len(rows))
	for i, l := range rows {
		recs[i] = []string{
			csvio.FormatInt(&l.RaceID), csvio.FormatInt(&l.DriverID), csvio.FormatInt(&l.Lap),
			csvio.FormatInt(l.Position), csvio.FormatFloat(l.LapTimeMS),
		}
	}
	return csvio.WriteFile(path, lapTimeHeader, recs)
}

// ReadLapTimes reads the cleaned lap times artifact.
func ReadLapTimes(path string) ([]models.LapTime, error) {
	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.LapTime, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		raceID := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		driverID := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		lap := csvio.IntPtr(tbl.Cell(rec, "lap"))
		if raceID == nil || driverID == nil || lap == nil {
			return nil, fmt.Errorf("clean: %s: row missing lap key fields", path)
		}
		rows = append(rows, models.LapTime{
			RaceID:    *raceID,
			DriverID:  *driverID,
			Lap:       *lap,
			Position:  csvio.IntPtr(tbl.Cell(rec, "position")),
			LapTimeMS: csvio.FloatPtr(tbl.Cell(rec, "lap_time_ms")),
		})
	}
	return rows, nil
}

var pitStopHeader = []string{"raceId", "driverId", "stop", "lap", "pit_duration_ms"}

// WritePitStops writes the cleaned pit stops artifact.
func WritePitStops(path string, rows []models.PitStop) error {
	recs := make([][]string, len(rows))
	for i, p := range rows {
		recs[i] = []string{
			csvio.FormatInt(&p.RaceID), csvio.FormatInt(&p.DriverID), csvio.FormatInt(&p.Stop),
			csvio.FormatInt(p.Lap), csvio.FormatFloat(p.PitDurationMS),
		}
	}
	return csvio.WriteFile(path, pitStopHeader, recs)
}

// ReadPitStops reads the cleaned pit stops artifact.
func ReadPitStops(path string) ([]models.PitStop, error) {
	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.PitStop, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		raceID := csvio.IntPtr(tbl.Cell(rec, "raceId"))
		driverID := csvio.IntPtr(tbl.Cell(rec, "driverId"))
		stop := csvio.IntPtr(tbl.Cell(rec, "stop"))
		if raceID == nil || driverID == nil || stop == nil {
			return nil, fmt.Errorf("clean: %s: row missing pit stop key fields", path)
		}
		rows = append(rows, models.PitStop{
			RaceID:        *raceID,
			DriverID:      *driverID,
			Stop:          *stop,
			Lap:           csvio.IntPtr(tbl.Cell(rec, "lap")),
			PitDurationMS: csvio.FloatPtr(tbl.Cell(rec, "pit_duration_ms")),
		})
	}
	return rows, nil
}

var statusHeader = []string{"statusId", "status"}

// WriteStatus writes the cleaned status artifact.
func WriteStatus(path string, rows []models.StatusLabel) error {
	recs := make([][]string, len(rows))
	for i, s := range rows {
		recs[i] = []string{csvio.FormatInt(&s.StatusID), s.Status}
	}
	return csvio.WriteFile(path, statusHeader, recs)
}

// ReadStatus reads the cleaned status artifact.
func ReadStatus(path string) ([]models.StatusLabel, error) {
	tbl, err := csvio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows := make([]models.StatusLabel, 0, len(tbl.Rows))
	for _, rec := range tbl.Rows {
		id := csvio.IntPtr(tbl.Cell(rec, "statusId"))
		if id == nil {
			return nil, fmt.Errorf("clean: %s: row missing statusId", path)
		}
		rows = append(rows, models.StatusLabel{StatusID: *id, Status: tbl.Cell(rec, "status")})
	}
	return rows, nil
}

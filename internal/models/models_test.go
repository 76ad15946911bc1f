package models

import (
	"reflect"
	"strings"
	"testing"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestResult_Fields(t *testing.T) {
	typ := reflect.TypeOf(Result{})

	assertGormTag(t, typ, "ResultID", "primaryKey")
	assertGormTag(t, typ, "RaceID", "index:idx_results_race_driver")
	assertGormTag(t, typ, "DriverID", "index:idx_results_race_driver")
	assertGormTag(t, typ, "StatusID", "index")
	assertGormTag(t, typ, "PositionText", "size:8")

	// Null-or-recorded fields must be pointers so the era gaps load as
	// SQL NULL rather than zero values.
	assertFieldType(t, typ, "Grid", "*int")
	assertFieldType(t, typ, "Position", "*int")
	assertFieldType(t, typ, "Points", "*float64")
	assertFieldType(t, typ, "FastestLapTimeMS", "*float64")
	assertFieldType(t, typ, "StatusID", "*int")
	assertFieldType(t, typ, "GridPitLane", "bool")
	assertFieldType(t, typ, "IsDNF", "bool")
}

func TestDriver_Fields(t *testing.T) {
	typ := reflect.TypeOf(Driver{})

	assertGormTag(t, typ, "DriverID", "primaryKey")
	assertGormTag(t, typ, "DriverRef", "uniqueIndex")
	assertFieldType(t, typ, "DOB", "*time.Time")
	assertFieldType(t, typ, "Code", "*string")
	assertFieldType(t, typ, "FullName", "string")
}

func TestMasterRace_Fields(t *testing.T) {
	typ := reflect.TypeOf(MasterRace{})

	assertGormTag(t, typ, "ResultID", "primaryKey")
	assertGormTag(t, typ, "Year", "index")
	assertGormTag(t, typ, "ConstructorSeasonKey", "index")

	// Date columns are stored as calendar-date strings in the master
	// table so the row loads identically into sqlite and mysql.
	assertFieldType(t, typ, "Date", "*string")
	assertFieldType(t, typ, "DOB", "*string")
	assertFieldType(t, typ, "DNFType", "*string")
	assertFieldType(t, typ, "GridVsFinishDelta", "*float64")
	assertFieldType(t, typ, "IsWinner", "bool")
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		Circuit{}.TableName():     "circuits",
		Driver{}.TableName():      "drivers",
		Constructor{}.TableName(): "constructors",
		Race{}.TableName():        "races",
		Result{}.TableName():      "results",
		Qualifying{}.TableName():  "qualifying",
		LapTime{}.TableName():     "lap_times",
		PitStop{}.TableName():     "pit_stops",
		StatusLabel{}.TableName(): "status",
		MasterRace{}.TableName():  "master_race_table",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("table name = %q, want %q", got, want)
		}
	}
}

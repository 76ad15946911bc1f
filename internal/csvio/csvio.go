// Package csvio reads and writes the pipeline's delimited-text
// artifacts. Reading normalizes the dataset's universal null sentinel
// and surrounding whitespace before any typed parsing happens, so every
// downstream stage sees "" as the one missing-value marker.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// NullSentinel is the literal escape sequence the raw dataset uses for
// missing values in every table.
const NullSentinel = `\N`

// DateLayout is the calendar-date representation used across all
// file-based artifacts.
const DateLayout = "2006-01-02"

// Table is an in-memory delimited-text table with header-indexed
// column access.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

func newTable(header []string, rows [][]string) *Table {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return &Table{Header: header, Rows: rows, index: idx}
}

// ReadFile loads a CSV file, trims every cell and replaces the null
// sentinel with the empty string.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvio: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csvio: %s: empty file, expected a header row", path)
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	rows := records[1:]
	for _, row := range rows {
		for i := range row {
			cell := strings.TrimSpace(row[i])
			if cell == NullSentinel {
				cell = ""
			}
			row[i] = cell
		}
	}
	return newTable(header, rows), nil
}

// ReadHeader reads only the header row of a CSV file.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csvio: read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return header, nil
}

// WriteFile writes a header and rows as CSV. Missing values are written
// as empty cells.
func WriteFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvio: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csvio: write header to %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("csvio: write rows to %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csvio: flush %s: %w", path, err)
	}
	return nil
}

// Col returns the index of a named column, or -1 if absent.
func (t *Table) Col(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Cell returns the value at (row, named column), or "" when the column
// is absent or the row is short.
func (t *Table) Cell(row []string, name string) string {
	i := t.Col(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Best-effort typed parsers. Each returns nil for empty or unparseable
// input; the row survives with the value recorded as unknown.

// IntPtr parses an integer-semantic cell. Integral floats such as
// "3.0" are accepted, matching the loose numerics in the source data.
func IntPtr(s string) *int {
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		n := int(f)
		return &n
	}
	return nil
}

// FloatPtr parses a float-semantic cell.
func FloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// DatePtr parses a calendar-date cell in DateLayout.
func DatePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &d
}

// BoolPtr parses a 0/1 flag cell.
func BoolPtr(s string) *bool {
	if s == "" {
		return nil
	}
	switch s {
	case "0", "false":
		b := false
		return &b
	case "1", "true":
		b := true
		return &b
	}
	return nil
}

// Formatting helpers for writing typed values back out.

// FormatInt renders a nullable int, "" for nil.
func FormatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// FormatFloat renders a nullable float with minimal digits, "" for nil.
func FormatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatDate renders a nullable date in DateLayout, "" for nil.
func FormatDate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(DateLayout)
}

// FormatBool renders a flag as "1"/"0".
func FormatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// FormatString renders a nullable string, "" for nil.
func FormatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

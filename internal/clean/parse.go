package clean

import (
	"regexp"
	"strconv"
	"strings"
)

// lapTimePattern matches the dataset's "M:SS.mmm" lap time format,
// with one or two minute digits.
var lapTimePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\.(\d{3})$`)

// ParseLapTime converts a "M:SS.mmm" time string to total
// milliseconds. Unparseable or empty input yields nil.
func ParseLapTime(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	m := lapTimePattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	millis, _ := strconv.Atoi(m[3])
	ms := float64(minutes*60_000 + seconds*1_000 + millis)
	return &ms
}

// ParseDuration converts a pit stop duration to milliseconds. Stops
// under a minute arrive as "SS.mmm" seconds, longer ones as "M:SS.mmm".
func ParseDuration(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.Contains(s, ":") {
		return ParseLapTime(s)
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	ms := secs * 1_000
	return &ms
}

// outOfRange reports whether a non-nil value falls outside the
// inclusive [min, max] bound.
func outOfRange(v *float64, min, max float64) bool {
	return v != nil && (*v < min || *v > max)
}

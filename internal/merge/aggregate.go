package merge

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"pitwall/internal/models"
)

// Key identifies one driver's entry in one race.
type Key struct {
	RaceID   int
	DriverID int
}

// QualiAgg is the per-(race, driver) qualifying summary.
type QualiAgg struct {
	Position    *int
	Q1MS        *float64
	Q2MS        *float64
	Q3MS        *float64
	BestQualiMS *float64
}

// PitAgg is the per-(race, driver) pit stop summary.
type PitAgg struct {
	TotalStops    int
	TotalTimeMS   float64
	AvgDurationMS *float64
	MinDurationMS *float64
}

// LapAgg is the per-(race, driver) lap time summary.
type LapAgg struct {
	LapsCompleted int
	AvgMS         float64
	MedianMS      float64
	StdMS         *float64
	FastestMS     float64
	Consistency   *float64
}

// AggregateQualifying reduces qualifying rows to one entry per
// (race, driver), keeping the first occurrence of any duplicate key.
func AggregateQualifying(rows []models.Qualifying, log *zap.Logger) map[Key]QualiAgg {
	out := make(map[Key]QualiAgg, len(rows))
	dupes := 0
	for _, q := range rows {
		k := Key{RaceID: q.RaceID, DriverID: q.DriverID}
		if _, ok := out[k]; ok {
			dupes++
			continue
		}
		out[k] = QualiAgg{
			Position:    q.Position,
			Q1MS:        q.Q1MS,
			Q2MS:        q.Q2MS,
			Q3MS:        q.Q3MS,
			BestQualiMS: q.BestQualiMS,
		}
	}
	if dupes > 0 {
		log.Warn("dropped duplicate qualifying rows", zap.Int("rows", dupes))
	}
	return out
}

// AggregatePitStops reduces pit stop rows to stop count and duration
// statistics per (race, driver). Stops with an unknown duration count
// toward the stop total but not the duration statistics.
func AggregatePitStops(rows []models.PitStop, log *zap.Logger) map[Key]PitAgg {
	durations := make(map[Key][]float64)
	counts := make(map[Key]int)
	for _, p := range rows {
		k := Key{RaceID: p.RaceID, DriverID: p.DriverID}
		counts[k]++
		if p.PitDurationMS != nil {
			durations[k] = append(durations[k], *p.PitDurationMS)
		}
	}

	out := make(map[Key]PitAgg, len(counts))
	for k, n := range counts {
		agg := PitAgg{TotalStops: n}
		if vals := durations[k]; len(vals) > 0 {
			total, min := 0.0, vals[0]
			for _, v := range vals {
				total += v
				if v < min {
					min = v
				}
			}
			avg := round1(total / float64(len(vals)))
			minRounded := round1(min)
			agg.TotalTimeMS = round1(total)
			agg.AvgDurationMS = &avg
			agg.MinDurationMS = &minRounded
		}
		out[k] = agg
	}
	log.Info("pit stops aggregated", zap.Int("driver_races", len(out)))
	return out
}

// AggregateLapTimes reduces lap rows to count, central tendency,
// spread and a bounded consistency score per (race, driver). The
// consistency score is clip(1 - std/mean, 0, 1): zero when the spread
// exceeds the mean, one when every lap is identical. Standard
// deviation needs at least two laps; with fewer it stays unknown,
// along with the score.
func AggregateLapTimes(rows []models.LapTime, log *zap.Logger) map[Key]LapAgg {
	times := make(map[Key][]float64)
	for _, l := range rows {
		if l.LapTimeMS == nil {
			continue
		}
		k := Key{RaceID: l.RaceID, DriverID: l.DriverID}
		times[k] = append(times[k], *l.LapTimeMS)
	}

	out := make(map[Key]LapAgg, len(times))
	for k, vals := range times {
		n := len(vals)
		total, min := 0.0, vals[0]
		for _, v := range vals {
			total += v
			if v < min {
				min = v
			}
		}
		mean := total / float64(n)

		agg := LapAgg{
			LapsCompleted: n,
			AvgMS:         round1(mean),
			MedianMS:      round1(median(vals)),
			FastestMS:     round1(min),
		}
		if n >= 2 {
			var sq float64
			for _, v := range vals {
				d := v - mean
				sq += d * d
			}
			std := math.Sqrt(sq / float64(n-1))
			stdRounded := round1(std)
			agg.StdMS = &stdRounded
			consistency := round4(clip(1-std/mean, 0, 1))
			agg.Consistency = &consistency
		}
		out[k] = agg
	}
	log.Info("lap times aggregated", zap.Int("driver_races", len(out)))
	return out
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

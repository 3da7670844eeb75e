package rollup

import (
	"fmt"
	"sort"
	"time"

	"air_quality_index/aqi"
)

// FieldAQI selects the composite index in Describe.
const FieldAQI = aqi.CompositeScale

// Stats summarizes one field over a set of daily rows.
type Stats struct {
	Field string  `json:"field"`
	Count int     `json:"count"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
}

// DominantCount is the number of days a pollutant was dominant.
type DominantCount struct {
	Pollutant aqi.Pollutant `json:"pollutant"`
	Days      int           `json:"days"`
}

// FilterDaily returns the daily rows dated within [from, to], both inclusive.
func FilterDaily(daily []DailyRow, from, to time.Time) ([]DailyRow, error) {
	if from.After(to) {
		return nil, fmt.Errorf("start date %s is after end date %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	var out []DailyRow
	for _, row := range daily {
		d := row.Date()
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// Describe computes max, mean and min of a field ("AQI" or a pollutant name)
// over the rows where the field is defined.
func Describe(daily []DailyRow, field string) (Stats, error) {
	value, err := fieldGetter(field)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Field: field}
	var sum float64
	for _, row := range daily {
		v, ok := value(row)
		if !ok {
			continue
		}
		if stats.Count == 0 || v > stats.Max {
			stats.Max = v
		}
		if stats.Count == 0 || v < stats.Min {
			stats.Min = v
		}
		sum += v
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Mean = sum / float64(stats.Count)
	}
	return stats, nil
}

func fieldGetter(field string) (func(DailyRow) (float64, bool), error) {
	if field == FieldAQI {
		return func(r DailyRow) (float64, bool) { return r.AQI.Index, r.AQI.Valid }, nil
	}
	p, err := aqi.ParsePollutant(field)
	if err != nil {
		return nil, err
	}
	return func(r DailyRow) (float64, bool) { return r.Concentrations.Get(p) }, nil
}

// DominantCounts counts the days each pollutant was dominant, most frequent
// first. Days without a valid index are not counted.
func DominantCounts(daily []DailyRow) []DominantCount {
	counts := make(map[aqi.Pollutant]int)
	for _, row := range daily {
		if row.AQI.Valid {
			counts[row.AQI.Dominant]++
		}
	}

	var out []DominantCount
	for _, p := range aqi.Pollutants() {
		if n := counts[p]; n > 0 {
			out = append(out, DominantCount{Pollutant: p, Days: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Days > out[j].Days })
	return out
}

// Package rollup derives the hourly, daily, monthly and wind-direction AQI
// tables from a set of readings. Every stage is a pure function of its input
// table; nothing here mutates a table it was handed.
package rollup

import (
	"time"

	"air_quality_index/aqi"
)

// HourlyRow is one reading with its composite index attached.
type HourlyRow struct {
	Year           int                `json:"year"`
	Month          int                `json:"month"`
	Day            int                `json:"day"`
	Hour           int                `json:"hour"`
	Concentrations aqi.Concentrations `json:"concentrations"`
	WindDirection  string             `json:"wd"`
	AQI            aqi.Assessment     `json:"aqi"`
}

// DailyRow holds the mean concentrations of one day and the index
// recomputed from them.
type DailyRow struct {
	Year           int                `json:"year"`
	Month          int                `json:"month"`
	Day            int                `json:"day"`
	Hours          int                `json:"hours"`
	Concentrations aqi.Concentrations `json:"concentrations"`
	AQI            aqi.Assessment     `json:"aqi"`
}

// Date returns the day as a UTC midnight timestamp.
func (r DailyRow) Date() time.Time {
	return time.Date(r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC)
}

// MonthlyRow holds the means of a month's daily rows. AQI is the plain mean
// of the daily indices; HasAQI is false when no day had a defined index.
type MonthlyRow struct {
	Year           int                `json:"year"`
	Month          int                `json:"month"`
	Days           int                `json:"days"`
	DaysWithAQI    int                `json:"days_with_aqi"`
	Concentrations aqi.Concentrations `json:"concentrations"`
	AQI            float64            `json:"aqi"`
	HasAQI         bool               `json:"has_aqi"`
}

// DirectionalRow holds the means of every hourly row observed with one
// compass direction.
type DirectionalRow struct {
	WindDirection  string             `json:"wd"`
	Degree         float64            `json:"wd_degree"`
	Count          int                `json:"count"`
	Concentrations aqi.Concentrations `json:"concentrations"`
	AQI            float64            `json:"aqi"`
	HasAQI         bool               `json:"has_aqi"`
}

// DirectionalTable is the wind-rose table. Hourly rows whose label is not a
// compass code are counted in Unmapped instead of being given a bucket.
type DirectionalTable struct {
	Rows           []DirectionalRow `json:"rows"`
	Unmapped       int              `json:"unmapped"`
	UnmappedLabels []string         `json:"unmapped_labels,omitempty"`
}

// Tables is the full output of one pipeline run.
type Tables struct {
	Hourly      []HourlyRow      `json:"hourly"`
	Daily       []DailyRow       `json:"daily"`
	Monthly     []MonthlyRow     `json:"monthly"`
	Directional DirectionalTable `json:"directional"`
}

// meanAccumulator averages each pollutant over the values that are defined.
type meanAccumulator struct {
	sum   map[aqi.Pollutant]float64
	count map[aqi.Pollutant]int
}

func newMeanAccumulator() *meanAccumulator {
	return &meanAccumulator{
		sum:   make(map[aqi.Pollutant]float64),
		count: make(map[aqi.Pollutant]int),
	}
}

func (m *meanAccumulator) add(c aqi.Concentrations) {
	for _, p := range aqi.Pollutants() {
		if v, ok := c.Get(p); ok {
			m.sum[p] += v
			m.count[p]++
		}
	}
}

// means leaves a pollutant out when none of the added rows defined it.
func (m *meanAccumulator) means() aqi.Concentrations {
	out := make(aqi.Concentrations, len(m.sum))
	for _, p := range aqi.Pollutants() {
		if n := m.count[p]; n > 0 {
			out[p] = m.sum[p] / float64(n)
		}
	}
	return out
}

// indexMean averages valid index values only.
type indexMean struct {
	sum   float64
	count int
}

func (m *indexMean) add(value float64, valid bool) {
	if valid {
		m.sum += value
		m.count++
	}
}

func (m indexMean) mean() (float64, bool) {
	if m.count == 0 {
		return 0, false
	}
	return m.sum / float64(m.count), true
}

package rollup

import (
	"sort"

	"air_quality_index/aqi"
)

type dayKey struct {
	year, month, day int
}

func (k dayKey) less(o dayKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	if k.month != o.month {
		return k.month < o.month
	}
	return k.day < o.day
}

// dayGroup collects the hourly rows of one calendar day.
type dayGroup struct {
	hours         int
	means         *meanAccumulator
	peak          float64
	hasPeak       bool
	dominantCount map[aqi.Pollutant]int
	dominantSeen  []aqi.Pollutant
}

func (g *dayGroup) add(row HourlyRow) {
	g.hours++
	g.means.add(row.Concentrations)
	if !row.AQI.Valid {
		return
	}
	if !g.hasPeak || row.AQI.Index > g.peak {
		g.peak = row.AQI.Index
		g.hasPeak = true
	}
	if g.dominantCount[row.AQI.Dominant] == 0 {
		g.dominantSeen = append(g.dominantSeen, row.AQI.Dominant)
	}
	g.dominantCount[row.AQI.Dominant]++
}

// mode returns the most frequent dominant pollutant. Equal counts go to the
// pollutant seen first in the day.
func (g *dayGroup) mode() aqi.Pollutant {
	var best aqi.Pollutant
	for _, p := range g.dominantSeen {
		if best == "" || g.dominantCount[p] > g.dominantCount[best] {
			best = p
		}
	}
	return best
}

// Daily groups hourly rows by calendar day. Each day first gets the maximum
// hourly index and the modal dominant pollutant; both are then replaced by
// the index recomputed from the day's mean concentrations, which is the
// value the daily table reports.
func Daily(hourly []HourlyRow) []DailyRow {
	rows := aggregateDays(hourly)
	for i := range rows {
		rows[i].AQI = aqi.ComputeIndexAndDominant(rows[i].Concentrations)
	}
	return rows
}

// aggregateDays produces the grouped rows with the preliminary max/mode
// assessment, ordered by date.
func aggregateDays(hourly []HourlyRow) []DailyRow {
	groups := make(map[dayKey]*dayGroup)
	for _, row := range hourly {
		key := dayKey{row.Year, row.Month, row.Day}
		g, ok := groups[key]
		if !ok {
			g = &dayGroup{
				means:         newMeanAccumulator(),
				dominantCount: make(map[aqi.Pollutant]int),
			}
			groups[key] = g
		}
		g.add(row)
	}

	keys := make([]dayKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	rows := make([]DailyRow, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		row := DailyRow{
			Year:           key.year,
			Month:          key.month,
			Day:            key.day,
			Hours:          g.hours,
			Concentrations: g.means.means(),
		}
		if g.hasPeak {
			row.AQI = aqi.Assessment{Index: g.peak, Dominant: g.mode(), Valid: true}
		}
		rows = append(rows, row)
	}
	return rows
}

package rollup

import "sort"

type monthKey struct {
	year, month int
}

type monthGroup struct {
	days  int
	means *meanAccumulator
	index indexMean
}

// Monthly averages the daily rows of each month. The monthly AQI is the mean
// of the valid daily indices; it is not recomputed from the monthly means,
// and no dominant pollutant is carried.
func Monthly(daily []DailyRow) []MonthlyRow {
	groups := make(map[monthKey]*monthGroup)
	for _, row := range daily {
		key := monthKey{row.Year, row.Month}
		g, ok := groups[key]
		if !ok {
			g = &monthGroup{means: newMeanAccumulator()}
			groups[key] = g
		}
		g.days++
		g.means.add(row.Concentrations)
		g.index.add(row.AQI.Index, row.AQI.Valid)
	}

	keys := make([]monthKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	rows := make([]MonthlyRow, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		value, ok := g.index.mean()
		rows = append(rows, MonthlyRow{
			Year:           key.year,
			Month:          key.month,
			Days:           g.days,
			DaysWithAQI:    g.index.count,
			Concentrations: g.means.means(),
			AQI:            value,
			HasAQI:         ok,
		})
	}
	return rows
}

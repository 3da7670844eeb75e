package rollup

import (
	"sort"

	"air_quality_index/aqi"
)

type directionGroup struct {
	count int
	means *meanAccumulator
	index indexMean
}

// Directional averages hourly rows per compass direction. Rows are ordered
// clockwise from north. Labels outside the 16 compass codes never receive a
// degree; they are counted in Unmapped.
func Directional(hourly []HourlyRow) DirectionalTable {
	var table DirectionalTable
	groups := make(map[string]*directionGroup)
	unmapped := make(map[string]bool)

	for _, row := range hourly {
		if !aqi.IsWindDirection(row.WindDirection) {
			table.Unmapped++
			if !unmapped[row.WindDirection] {
				unmapped[row.WindDirection] = true
				table.UnmappedLabels = append(table.UnmappedLabels, row.WindDirection)
			}
			continue
		}
		g, ok := groups[row.WindDirection]
		if !ok {
			g = &directionGroup{means: newMeanAccumulator()}
			groups[row.WindDirection] = g
		}
		g.count++
		g.means.add(row.Concentrations)
		g.index.add(row.AQI.Index, row.AQI.Valid)
	}
	sort.Strings(table.UnmappedLabels)

	for _, label := range aqi.WindDirections() {
		g, ok := groups[label]
		if !ok {
			continue
		}
		degree, _ := aqi.WindDegree(label)
		value, hasAQI := g.index.mean()
		table.Rows = append(table.Rows, DirectionalRow{
			WindDirection:  label,
			Degree:         degree,
			Count:          g.count,
			Concentrations: g.means.means(),
			AQI:            value,
			HasAQI:         hasAQI,
		})
	}
	return table
}

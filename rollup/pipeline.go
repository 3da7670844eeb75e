package rollup

import "air_quality_index/models"

// Run derives every table from the readings. The daily and monthly tables
// are chained from the hourly table; the directional table is built from the
// hourly table as well.
func Run(readings []models.Reading) Tables {
	hourly := Hourly(readings)
	daily := Daily(hourly)
	return Tables{
		Hourly:      hourly,
		Daily:       daily,
		Monthly:     Monthly(daily),
		Directional: Directional(hourly),
	}
}

// InvalidHours counts hourly rows without a defined index.
func (t Tables) InvalidHours() int {
	n := 0
	for _, row := range t.Hourly {
		if !row.AQI.Valid {
			n++
		}
	}
	return n
}

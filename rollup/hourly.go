package rollup

import (
	"air_quality_index/aqi"
	"air_quality_index/models"
)

// Hourly attaches the composite index and dominant pollutant to every
// reading. The output has one row per reading, in input order.
func Hourly(readings []models.Reading) []HourlyRow {
	rows := make([]HourlyRow, 0, len(readings))
	for _, r := range readings {
		c := r.Concentrations()
		rows = append(rows, HourlyRow{
			Year:           r.Year,
			Month:          r.Month,
			Day:            r.Day,
			Hour:           r.Hour,
			Concentrations: c,
			WindDirection:  r.WindDirection,
			AQI:            aqi.ComputeIndexAndDominant(c),
		})
	}
	return rows
}

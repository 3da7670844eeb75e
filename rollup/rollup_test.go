package rollup

import (
	"math"
	"testing"

	"air_quality_index/aqi"
	"air_quality_index/models"
)

const tolerance = 1e-9

func hourRow(year, month, day, hour int, wd string, c aqi.Concentrations) HourlyRow {
	return HourlyRow{
		Year: year, Month: month, Day: day, Hour: hour,
		WindDirection:  wd,
		Concentrations: c,
		AQI:            aqi.ComputeIndexAndDominant(c),
	}
}

func reading(year, month, day, hour int, pm25, co float64, wd string) models.Reading {
	return models.Reading{
		Station: "Dongsi", Year: year, Month: month, Day: day, Hour: hour,
		PM25: pm25, PM10: 20, SO2: 5, NO2: 30, CO: co, O3: 40,
		WindDirection: wd,
	}
}

func mustIndex(t *testing.T, p aqi.Pollutant, c float64) float64 {
	t.Helper()
	v, ok := aqi.PollutantIndex(p, c)
	if !ok {
		t.Fatalf("%s %v outside breakpoint table", p, c)
	}
	return v
}

func TestHourlyKeepsEveryReading(t *testing.T) {
	readings := []models.Reading{
		reading(2013, 3, 1, 0, 10, 0.5, "N"),
		reading(2013, 3, 1, 1, 800, 60, "NE"),
		reading(2013, 3, 1, 0, 10, 0.5, "N"),
	}
	rows := Hourly(readings)
	if len(rows) != len(readings) {
		t.Fatalf("len = %d, want %d", len(rows), len(readings))
	}
	for i, row := range rows {
		want := aqi.ComputeIndexAndDominant(readings[i].Concentrations())
		if row.AQI != want {
			t.Errorf("row %d AQI = %+v, want %+v", i, row.AQI, want)
		}
		if row.WindDirection != readings[i].WindDirection {
			t.Errorf("row %d wd = %s", i, row.WindDirection)
		}
	}
	// PM2.5 and CO above their tables: the O3 sub-index takes over.
	if rows[1].AQI.Dominant != aqi.O3 {
		t.Errorf("row 1 dominant = %s, want O3", rows[1].AQI.Dominant)
	}
}

func TestDailyRecomputesFromMeanConcentrations(t *testing.T) {
	hourly := []HourlyRow{
		hourRow(2014, 5, 2, 0, "N", aqi.Concentrations{aqi.PM25: 10}),
		hourRow(2014, 5, 2, 1, "N", aqi.Concentrations{aqi.PM25: 14}),
	}

	preliminary := aggregateDays(hourly)
	if len(preliminary) != 1 {
		t.Fatalf("preliminary len = %d", len(preliminary))
	}
	peak := mustIndex(t, aqi.PM25, 14)
	if math.Abs(preliminary[0].AQI.Index-peak) > tolerance {
		t.Errorf("preliminary index = %v, want max hourly %v", preliminary[0].AQI.Index, peak)
	}

	daily := Daily(hourly)
	row := daily[0]
	if got, _ := row.Concentrations.Get(aqi.PM25); got != 12 {
		t.Errorf("mean PM2.5 = %v, want 12", got)
	}
	if _, ok := row.Concentrations.Get(aqi.CO); ok {
		t.Error("CO was never measured and must stay undefined")
	}
	if !row.AQI.Valid || math.Abs(row.AQI.Index-50) > tolerance || row.AQI.Dominant != aqi.PM25 {
		t.Errorf("daily AQI = %+v, want PM2.5 at 50", row.AQI)
	}
	if row.AQI.Index == preliminary[0].AQI.Index {
		t.Error("daily index should come from the mean, not the hourly maximum")
	}
	if row.Hours != 2 {
		t.Errorf("Hours = %d, want 2", row.Hours)
	}
}

func TestDailySingleReadingMatchesHourly(t *testing.T) {
	hourly := Hourly([]models.Reading{reading(2015, 7, 9, 13, 77.7, 1.3, "SSW")})
	daily := Daily(hourly)
	if len(daily) != 1 {
		t.Fatalf("len = %d", len(daily))
	}
	if daily[0].AQI != hourly[0].AQI {
		t.Errorf("daily %+v != hourly %+v", daily[0].AQI, hourly[0].AQI)
	}
}

func TestDailyPreliminaryIgnoresUndefinedHours(t *testing.T) {
	hourly := []HourlyRow{
		hourRow(2014, 1, 1, 0, "N", aqi.Concentrations{aqi.PM25: 600}),
		hourRow(2014, 1, 1, 1, "N", aqi.Concentrations{aqi.PM25: 20}),
		hourRow(2014, 1, 2, 0, "N", aqi.Concentrations{aqi.PM25: 600}),
		hourRow(2014, 1, 2, 1, "N", aqi.Concentrations{aqi.PM25: 700}),
	}
	preliminary := aggregateDays(hourly)
	if want := mustIndex(t, aqi.PM25, 20); preliminary[0].AQI.Index != want || preliminary[0].AQI.Dominant != aqi.PM25 {
		t.Errorf("day 1 preliminary = %+v, want PM2.5 at %v", preliminary[0].AQI, want)
	}
	if preliminary[1].AQI.Valid {
		t.Errorf("day 2 has no valid hour, preliminary = %+v", preliminary[1].AQI)
	}

	daily := Daily(hourly)
	// Mean of 600 and 20 is 310, inside the table.
	if want := mustIndex(t, aqi.PM25, 310); !daily[0].AQI.Valid || math.Abs(daily[0].AQI.Index-want) > tolerance {
		t.Errorf("day 1 = %+v, want %v", daily[0].AQI, want)
	}
	if daily[1].AQI.Valid {
		t.Errorf("day 2 mean of 650 is above the table, got %+v", daily[1].AQI)
	}
}

func TestDailyModeTieGoesToFirstSeen(t *testing.T) {
	co := aqi.Concentrations{aqi.CO: 5}
	pm := aqi.Concentrations{aqi.PM25: 10}
	hourly := []HourlyRow{
		hourRow(2016, 2, 29, 0, "E", co),
		hourRow(2016, 2, 29, 1, "E", pm),
		hourRow(2016, 2, 29, 2, "E", pm),
		hourRow(2016, 2, 29, 3, "E", co),
	}
	if got := aggregateDays(hourly)[0].AQI.Dominant; got != aqi.CO {
		t.Errorf("mode = %s, want CO", got)
	}
}

func TestDailyOrderedByDate(t *testing.T) {
	hourly := Hourly([]models.Reading{
		reading(2016, 1, 2, 5, 10, 1, "N"),
		reading(2015, 12, 31, 5, 10, 1, "N"),
		reading(2016, 1, 1, 5, 10, 1, "N"),
		reading(2015, 12, 31, 6, 10, 1, "N"),
	})
	daily := Daily(hourly)
	want := [][3]int{{2015, 12, 31}, {2016, 1, 1}, {2016, 1, 2}}
	if len(daily) != len(want) {
		t.Fatalf("len = %d, want %d", len(daily), len(want))
	}
	for i, w := range want {
		got := [3]int{daily[i].Year, daily[i].Month, daily[i].Day}
		if got != w {
			t.Errorf("row %d = %v, want %v", i, got, w)
		}
	}
}

func TestMonthlyAveragesDailyIndices(t *testing.T) {
	daily := []DailyRow{
		{Year: 2014, Month: 2, Day: 1, Concentrations: aqi.Concentrations{aqi.PM25: 10}, AQI: aqi.Assessment{Index: 40, Dominant: aqi.PM25, Valid: true}},
		{Year: 2014, Month: 2, Day: 2, Concentrations: aqi.Concentrations{aqi.PM25: 100}, AQI: aqi.Assessment{Index: 170, Dominant: aqi.PM25, Valid: true}},
		{Year: 2014, Month: 2, Day: 3, Concentrations: aqi.Concentrations{aqi.PM25: 900}},
		{Year: 2014, Month: 3, Day: 1, Concentrations: aqi.Concentrations{aqi.PM25: 900}},
		{Year: 2013, Month: 12, Day: 31, Concentrations: aqi.Concentrations{aqi.PM25: 5}, AQI: aqi.Assessment{Index: 21, Valid: true}},
	}
	monthly := Monthly(daily)
	if len(monthly) != 3 {
		t.Fatalf("len = %d, want 3", len(monthly))
	}
	if monthly[0].Year != 2013 || monthly[1].Month != 2 || monthly[2].Month != 3 {
		t.Errorf("unexpected order: %+v", monthly)
	}

	feb := monthly[1]
	if feb.Days != 3 || feb.DaysWithAQI != 2 {
		t.Errorf("Days = %d, DaysWithAQI = %d", feb.Days, feb.DaysWithAQI)
	}
	if !feb.HasAQI || math.Abs(feb.AQI-105) > tolerance {
		t.Errorf("Feb AQI = %v (has=%t), want 105", feb.AQI, feb.HasAQI)
	}
	if got, _ := feb.Concentrations.Get(aqi.PM25); math.Abs(got-1010.0/3) > tolerance {
		t.Errorf("Feb PM2.5 = %v", got)
	}
	if monthly[2].HasAQI {
		t.Errorf("March has no valid day, got %v", monthly[2].AQI)
	}
}

func TestMonthlyIsMeanOfDailyIndex(t *testing.T) {
	var readings []models.Reading
	for day := 1; day <= 31; day++ {
		for hour := 0; hour < 24; hour += 6 {
			readings = append(readings, reading(2013, 1, day, hour, float64(day*3+hour), 0.4, "W"))
		}
	}
	for day := 1; day <= 28; day++ {
		readings = append(readings, reading(2013, 2, day, 12, float64(day*9), 2.1, "E"))
	}
	tables := Run(readings)

	for _, m := range tables.Monthly {
		var sum float64
		var n int
		for _, d := range tables.Daily {
			if d.Year == m.Year && d.Month == m.Month && d.AQI.Valid {
				sum += d.AQI.Index
				n++
			}
		}
		if math.Abs(m.AQI-sum/float64(n)) > tolerance {
			t.Errorf("%d-%02d AQI = %v, want %v", m.Year, m.Month, m.AQI, sum/float64(n))
		}
	}
	if tables.Monthly[0].Days != 31 || tables.Monthly[1].Days != 28 {
		t.Errorf("days per month = %d, %d", tables.Monthly[0].Days, tables.Monthly[1].Days)
	}
}

func TestDirectionalBuckets(t *testing.T) {
	hourly := []HourlyRow{
		hourRow(2013, 3, 1, 0, "NNW", aqi.Concentrations{aqi.PM25: 10}),
		hourRow(2013, 3, 1, 1, "N", aqi.Concentrations{aqi.PM25: 20}),
		hourRow(2013, 3, 1, 2, "N", aqi.Concentrations{aqi.PM25: 40}),
		hourRow(2013, 3, 1, 3, "E", aqi.Concentrations{aqi.PM25: 900}),
		hourRow(2013, 3, 1, 4, "NA", aqi.Concentrations{aqi.PM25: 5}),
		hourRow(2013, 3, 1, 5, "", aqi.Concentrations{aqi.PM25: 5}),
		hourRow(2013, 3, 1, 6, "NA", aqi.Concentrations{aqi.PM25: 5}),
	}
	table := Directional(hourly)

	if len(table.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(table.Rows))
	}
	wantOrder := []string{"N", "E", "NNW"}
	total := table.Unmapped
	for i, row := range table.Rows {
		if row.WindDirection != wantOrder[i] {
			t.Errorf("row %d = %s, want %s", i, row.WindDirection, wantOrder[i])
		}
		total += row.Count
	}
	if total != len(hourly) {
		t.Errorf("counts sum to %d, want %d", total, len(hourly))
	}
	if table.Unmapped != 3 || len(table.UnmappedLabels) != 2 || table.UnmappedLabels[0] != "" || table.UnmappedLabels[1] != "NA" {
		t.Errorf("unmapped = %d %q", table.Unmapped, table.UnmappedLabels)
	}

	north := table.Rows[0]
	if north.Degree != 0 || north.Count != 2 {
		t.Errorf("north = %+v", north)
	}
	if got, _ := north.Concentrations.Get(aqi.PM25); got != 30 {
		t.Errorf("north PM2.5 = %v, want 30", got)
	}
	wantAQI := (mustIndex(t, aqi.PM25, 20) + mustIndex(t, aqi.PM25, 40)) / 2
	if math.Abs(north.AQI-wantAQI) > tolerance {
		t.Errorf("north AQI = %v, want mean of hourly %v", north.AQI, wantAQI)
	}
	if east := table.Rows[1]; east.Degree != 90 || east.HasAQI {
		t.Errorf("east = %+v, want degree 90 without AQI", east)
	}
	if table.Rows[2].Degree != 337.5 {
		t.Errorf("NNW degree = %v", table.Rows[2].Degree)
	}
}

func TestDirectionalAtMostSixteenRows(t *testing.T) {
	var readings []models.Reading
	for i := 0; i < 200; i++ {
		dirs := aqi.WindDirections()
		readings = append(readings, reading(2013, 3, 1+i%28, i%24, float64(i%90), 1, dirs[i%len(dirs)]))
	}
	tables := Run(readings)
	if len(tables.Directional.Rows) != 16 {
		t.Fatalf("rows = %d, want 16", len(tables.Directional.Rows))
	}
	total := 0
	for _, row := range tables.Directional.Rows {
		total += row.Count
	}
	if total != len(tables.Hourly) || tables.Directional.Unmapped != 0 {
		t.Errorf("total = %d unmapped = %d, want %d", total, tables.Directional.Unmapped, len(tables.Hourly))
	}
}

func TestRunEmpty(t *testing.T) {
	tables := Run(nil)
	if len(tables.Hourly) != 0 || len(tables.Daily) != 0 || len(tables.Monthly) != 0 || len(tables.Directional.Rows) != 0 {
		t.Errorf("expected empty tables, got %+v", tables)
	}
	if tables.InvalidHours() != 0 {
		t.Error("no invalid hours expected")
	}
}

func TestInvalidHours(t *testing.T) {
	r := reading(2013, 3, 1, 0, 10, 1, "N")
	r.PM25, r.PM10, r.SO2, r.NO2, r.CO, r.O3 = -1, -1, -1, -1, -1, -1
	tables := Run([]models.Reading{r, reading(2013, 3, 1, 1, 10, 1, "N")})
	if got := tables.InvalidHours(); got != 1 {
		t.Errorf("InvalidHours = %d, want 1", got)
	}
}

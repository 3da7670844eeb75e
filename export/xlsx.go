// Package export renders the derived AQI tables as workbooks and reports for
// the presentation layer.
package export

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"air_quality_index/aqi"
	"air_quality_index/rollup"
)

// Sheet names of the tables workbook.
const (
	SummarySheet     = "summary"
	HourlySheet      = "hourly"
	DailySheet       = "daily"
	MonthlySheet     = "monthly"
	DirectionalSheet = "wind"
	LegendSheet      = "legend"
)

// Meta identifies the run that produced the tables.
type Meta struct {
	Station   string
	RunID     string
	Generated time.Time
}

// categoryStyles caches one fill style per category color.
type categoryStyles struct {
	f      *excelize.File
	styles map[string]int
}

func (cs *categoryStyles) get(color string) (int, error) {
	if id, ok := cs.styles[color]; ok {
		return id, nil
	}
	id, err := cs.f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Border: []excelize.Border{{Type: "left", Color: "#BFBFBF", Style: 1}, {Type: "right", Color: "#BFBFBF", Style: 1}},
	})
	if err != nil {
		return 0, err
	}
	cs.styles[color] = id
	return id, nil
}

// sheetWriter appends rows to one sheet.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	row    int
	styles *categoryStyles
}

func (w *sheetWriter) append(values ...interface{}) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	return w.f.SetSheetRow(w.sheet, cell, &values)
}

// paint colors column col of the last written row with the category fill.
func (w *sheetWriter) paint(col int, category aqi.Category) error {
	id, err := w.styles.get(category.Color)
	if err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, cell, cell, id)
}

// BuildTablesXLSX renders the four derived tables plus a summary and a
// category legend into one workbook.
func BuildTablesXLSX(meta Meta, tables rollup.Tables) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	for _, name := range []string{HourlySheet, DailySheet, MonthlySheet, DirectionalSheet, LegendSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	styles := &categoryStyles{f: f, styles: make(map[string]int)}
	newWriter := func(sheet string) *sheetWriter {
		return &sheetWriter{f: f, sheet: sheet, styles: styles}
	}

	steps := []struct {
		name  string
		write func(*sheetWriter) error
	}{
		{SummarySheet, func(w *sheetWriter) error { return writeSummary(w, meta, tables) }},
		{HourlySheet, func(w *sheetWriter) error { return writeHourly(w, tables.Hourly) }},
		{DailySheet, func(w *sheetWriter) error { return writeDaily(w, tables.Daily) }},
		{MonthlySheet, func(w *sheetWriter) error { return writeMonthly(w, tables.Monthly) }},
		{DirectionalSheet, func(w *sheetWriter) error { return writeDirectional(w, tables.Directional) }},
		{LegendSheet, writeLegend},
	}
	for _, step := range steps {
		if err := step.write(newWriter(step.name)); err != nil {
			return nil, fmt.Errorf("failed to write sheet %s: %w", step.name, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(w *sheetWriter, meta Meta, tables rollup.Tables) error {
	rows := [][]interface{}{
		{"Air Quality Index Tables"},
		{"Station", meta.Station},
		{"Run ID", meta.RunID},
		{"Generated", meta.Generated.Format(time.RFC3339)},
		{"Hourly rows", len(tables.Hourly)},
		{"Hours without index", tables.InvalidHours()},
		{"Daily rows", len(tables.Daily)},
		{"Monthly rows", len(tables.Monthly)},
		{"Wind directions", len(tables.Directional.Rows)},
		{"Unmapped wind rows", tables.Directional.Unmapped},
	}
	for _, row := range rows {
		if err := w.append(row...); err != nil {
			return err
		}
	}
	return nil
}

func pollutantHeaders() []interface{} {
	var headers []interface{}
	for _, p := range aqi.Pollutants() {
		headers = append(headers, string(p))
	}
	return headers
}

// concentrationCells leaves undefined concentrations as empty cells.
func concentrationCells(c aqi.Concentrations) []interface{} {
	var cells []interface{}
	for _, p := range aqi.Pollutants() {
		if v, ok := c.Get(p); ok {
			cells = append(cells, v)
		} else {
			cells = append(cells, nil)
		}
	}
	return cells
}

// assessmentCells returns the index, dominant pollutant and category cells.
func assessmentCells(a aqi.Assessment) []interface{} {
	if !a.Valid {
		return []interface{}{nil, nil, nil}
	}
	return []interface{}{a.Index, string(a.Dominant), aqi.ClassifyIndex(a.Index).Label}
}

func writeHourly(w *sheetWriter, rows []rollup.HourlyRow) error {
	header := append([]interface{}{"year", "month", "day", "hour"}, pollutantHeaders()...)
	header = append(header, "wd", "AQI", "dominant_pollutant", "category")
	if err := w.append(header...); err != nil {
		return err
	}
	aqiCol := 4 + len(aqi.Pollutants()) + 2

	for _, row := range rows {
		values := append([]interface{}{row.Year, row.Month, row.Day, row.Hour}, concentrationCells(row.Concentrations)...)
		values = append(values, row.WindDirection)
		values = append(values, assessmentCells(row.AQI)...)
		if err := w.append(values...); err != nil {
			return err
		}
		if row.AQI.Valid {
			if err := w.paint(aqiCol, aqi.ClassifyIndex(row.AQI.Index)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDaily(w *sheetWriter, rows []rollup.DailyRow) error {
	header := append([]interface{}{"date", "hours"}, pollutantHeaders()...)
	header = append(header, "AQI", "dominant_pollutant", "category")
	if err := w.append(header...); err != nil {
		return err
	}
	aqiCol := 2 + len(aqi.Pollutants()) + 1

	for _, row := range rows {
		values := append([]interface{}{row.Date().Format("2006-01-02"), row.Hours}, concentrationCells(row.Concentrations)...)
		values = append(values, assessmentCells(row.AQI)...)
		if err := w.append(values...); err != nil {
			return err
		}
		if row.AQI.Valid {
			if err := w.paint(aqiCol, aqi.ClassifyIndex(row.AQI.Index)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMonthly(w *sheetWriter, rows []rollup.MonthlyRow) error {
	header := append([]interface{}{"month", "days", "days_with_aqi"}, pollutantHeaders()...)
	header = append(header, "AQI", "category")
	if err := w.append(header...); err != nil {
		return err
	}
	aqiCol := 3 + len(aqi.Pollutants()) + 1

	for _, row := range rows {
		values := append([]interface{}{fmt.Sprintf("%04d-%02d", row.Year, row.Month), row.Days, row.DaysWithAQI},
			concentrationCells(row.Concentrations)...)
		if row.HasAQI {
			values = append(values, row.AQI, aqi.ClassifyIndex(row.AQI).Label)
		} else {
			values = append(values, nil, nil)
		}
		if err := w.append(values...); err != nil {
			return err
		}
		if row.HasAQI {
			if err := w.paint(aqiCol, aqi.ClassifyIndex(row.AQI)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDirectional(w *sheetWriter, table rollup.DirectionalTable) error {
	header := append([]interface{}{"wd", "wd_degree", "count"}, pollutantHeaders()...)
	header = append(header, "AQI", "category")
	if err := w.append(header...); err != nil {
		return err
	}
	aqiCol := 3 + len(aqi.Pollutants()) + 1

	for _, row := range table.Rows {
		values := append([]interface{}{row.WindDirection, row.Degree, row.Count}, concentrationCells(row.Concentrations)...)
		if row.HasAQI {
			values = append(values, row.AQI, aqi.ClassifyIndex(row.AQI).Label)
		} else {
			values = append(values, nil, nil)
		}
		if err := w.append(values...); err != nil {
			return err
		}
		if row.HasAQI {
			if err := w.paint(aqiCol, aqi.ClassifyIndex(row.AQI)); err != nil {
				return err
			}
		}
	}

	if table.Unmapped > 0 {
		w.row++
		if err := w.append("unmapped", nil, table.Unmapped); err != nil {
			return err
		}
	}
	return nil
}

// writeLegend lists the category ranges of the composite scale and of every
// pollutant.
func writeLegend(w *sheetWriter) error {
	if err := w.append("field", "low", "high", "category", "color"); err != nil {
		return err
	}
	fields := []string{aqi.CompositeScale}
	for _, p := range aqi.Pollutants() {
		fields = append(fields, string(p))
	}
	for _, field := range fields {
		for _, r := range aqi.Ranges(field) {
			var high interface{} = r.High
			if math.IsInf(r.High, 1) {
				high = "inf"
			}
			if err := w.append(field, r.Low, high, r.Label, r.Color); err != nil {
				return err
			}
			if err := w.paint(5, r.Category); err != nil {
				return err
			}
		}
	}
	return nil
}

package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"air_quality_index/aqi"
	"air_quality_index/rollup"
)

// BuildSummaryPDF renders the monthly AQI table, the dominant pollutant
// counts and the wind-direction table on A4 pages.
func BuildSummaryPDF(meta Meta, tables rollup.Tables) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Air Quality Index Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Station: %s", meta.Station))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Run ID: %s", meta.RunID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", meta.Generated.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Hourly rows: %d (%d without index)", len(tables.Hourly), tables.InvalidHours()))
	pdf.Ln(5)
	if len(tables.Daily) > 0 {
		first, last := tables.Daily[0].Date(), tables.Daily[len(tables.Daily)-1].Date()
		pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", first.Format("2006-01-02"), last.Format("2006-01-02")))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	// Monthly table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Month", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Days", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "AQI", "1", 0, "C", false, 0, "")
	pdf.CellFormat(80, 6, "Category", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range tables.Monthly {
		pdf.CellFormat(30, 6, fmt.Sprintf("%04d-%02d", row.Year, row.Month), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d/%d", row.DaysWithAQI, row.Days), "1", 0, "R", false, 0, "")
		if !row.HasAQI {
			pdf.CellFormat(30, 6, "-", "1", 0, "R", false, 0, "")
			pdf.CellFormat(80, 6, "-", "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
			continue
		}
		pdf.CellFormat(30, 6, fmt.Sprintf("%.1f", row.AQI), "1", 0, "R", false, 0, "")
		categoryCell(pdf, 80, aqi.ClassifyIndex(row.AQI))
		pdf.Ln(-1)
	}

	if counts := rollup.DominantCounts(tables.Daily); len(counts) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 6, "Dominant", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "Days", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, c := range counts {
			pdf.CellFormat(40, 6, string(c.Pollutant), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, strconv.Itoa(c.Days), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	if rows := tables.Directional.Rows; len(rows) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(20, 6, "Wind", "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, "Degree", "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, "Hours", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, "AQI", "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 6, "Category", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, row := range rows {
			pdf.CellFormat(20, 6, row.WindDirection, "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprintf("%.1f", row.Degree), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, strconv.Itoa(row.Count), "1", 0, "R", false, 0, "")
			if row.HasAQI {
				pdf.CellFormat(30, 6, fmt.Sprintf("%.1f", row.AQI), "1", 0, "R", false, 0, "")
				categoryCell(pdf, 80, aqi.ClassifyIndex(row.AQI))
			} else {
				pdf.CellFormat(30, 6, "-", "1", 0, "R", false, 0, "")
				pdf.CellFormat(80, 6, "-", "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		if tables.Directional.Unmapped > 0 {
			pdf.Ln(2)
			pdf.Cell(0, 6, fmt.Sprintf("Hours with unmapped wind labels: %d (%s)",
				tables.Directional.Unmapped, strings.Join(tables.Directional.UnmappedLabels, ", ")))
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// categoryCell draws the category label on its color.
func categoryCell(pdf *gofpdf.Fpdf, width float64, c aqi.Category) {
	r, g, b := hexRGB(c.Color)
	pdf.SetFillColor(r, g, b)
	if r+g+b < 255 {
		pdf.SetTextColor(255, 255, 255)
	}
	pdf.CellFormat(width, 6, c.Label, "1", 0, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// hexRGB parses a "#RRGGBB" color. Anything else is white.
func hexRGB(color string) (int, int, int) {
	v, err := strconv.ParseUint(strings.TrimPrefix(color, "#"), 16, 32)
	if err != nil || len(color) != 7 {
		return 255, 255, 255
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}

package aqi

import "math"

// Category is a health category with its legend color.
type Category struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// CategoryRange is one legend entry. High is +Inf for the most severe category.
type CategoryRange struct {
	Low  float64
	High float64
	Category
}

// Category labels, from least to most severe.
var (
	Good               = Category{"Baik", "#00E400"}
	Moderate           = Category{"Sedang", "#FFFF00"}
	UnhealthySensitive = Category{"Tidak Sehat untuk Kelompok Sensitif", "#FF7E00"}
	Unhealthy          = Category{"Tidak Sehat", "#FF0000"}
	VeryUnhealthy      = Category{"Sangat Tidak Sehat", "#8F3F97"}
	Hazardous          = Category{"Berbahaya", "#7E0023"}

	// Unclassified is returned for values below a scale's floor or NaN.
	Unclassified = Category{"unclassified", "#000000"}
)

// CompositeScale names the category scale of the composite index.
const CompositeScale = "AQI"

var severityOrder = [6]Category{Good, Moderate, UnhealthySensitive, Unhealthy, VeryUnhealthy, Hazardous}

var categoryRangeTables = map[string][]CategoryRange{
	string(PM25):   buildRanges(0, 12, 12, 35, 35, 55, 55, 150, 150, 250, 250),
	string(PM10):   buildRanges(0, 54, 55, 154, 155, 254, 255, 354, 355, 424, 425),
	string(SO2):    buildRanges(0, 35, 36, 75, 76, 185, 186, 304, 305, 604, 605),
	string(NO2):    buildRanges(0, 53, 54, 100, 101, 360, 361, 649, 650, 1249, 1250),
	string(CO):     buildRanges(0, 4, 4, 9, 9, 12, 12, 15, 15, 30, 30),
	string(O3):     buildRanges(0, 54, 55, 70, 71, 85, 86, 105, 106, 200, 201),
	CompositeScale: buildRanges(0, 50, 51, 100, 101, 150, 151, 200, 201, 300, 301),
}

// buildRanges pairs eleven bounds (low/high for five categories and the low
// of the open-ended last one) with the six categories.
func buildRanges(bounds ...float64) []CategoryRange {
	ranges := make([]CategoryRange, 0, len(severityOrder))
	for i, cat := range severityOrder {
		high := math.Inf(1)
		if 2*i+1 < len(bounds) {
			high = bounds[2*i+1]
		}
		ranges = append(ranges, CategoryRange{Low: bounds[2*i], High: high, Category: cat})
	}
	return ranges
}

// Classify returns the health category of a pollutant concentration.
func Classify(value float64, p Pollutant) Category {
	return classify(value, categoryRangeTables[string(p)])
}

// ClassifyIndex returns the health category of a composite AQI value.
func ClassifyIndex(value float64) Category {
	return classify(value, categoryRangeTables[CompositeScale])
}

// ClassifyField classifies a value of a named field: "AQI" or a pollutant name.
func ClassifyField(field string, value float64) (Category, error) {
	if field == CompositeScale {
		return ClassifyIndex(value), nil
	}
	p, err := ParsePollutant(field)
	if err != nil {
		return Unclassified, err
	}
	return Classify(value, p), nil
}

// Ranges returns a copy of the legend for a field ("AQI" or a pollutant name).
func Ranges(field string) []CategoryRange {
	if field != CompositeScale {
		p, err := ParsePollutant(field)
		if err != nil {
			return nil
		}
		field = string(p)
	}
	table := categoryRangeTables[field]
	out := make([]CategoryRange, len(table))
	copy(out, table)
	return out
}

// classify takes the first range with Low <= v <= High. A value in the gap
// between one range's High and the next range's Low stays in the lower range.
func classify(value float64, ranges []CategoryRange) Category {
	for i, r := range ranges {
		if r.Low <= value && value <= r.High {
			return r.Category
		}
		if i+1 < len(ranges) && r.High < value && value < ranges[i+1].Low {
			return r.Category
		}
	}
	return Unclassified
}

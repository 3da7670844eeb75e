package aqi

import "fmt"

// Pollutant identifies a measured pollutant. The string value matches the
// column name used in reading files.
type Pollutant string

const (
	PM25 Pollutant = "PM2.5"
	PM10 Pollutant = "PM10"
	SO2  Pollutant = "SO2"
	NO2  Pollutant = "NO2"
	CO   Pollutant = "CO"
	O3   Pollutant = "O3"
)

// Pollutants returns every pollutant in the fixed enumeration order used for
// tie-breaking between equal sub-indices.
func Pollutants() []Pollutant {
	return []Pollutant{PM25, PM10, SO2, NO2, CO, O3}
}

// ParsePollutant resolves a pollutant name. "PM25" is accepted as an alias
// for "PM2.5" since some consumers cannot use a dot in field names.
func ParsePollutant(name string) (Pollutant, error) {
	if name == "PM25" {
		return PM25, nil
	}
	for _, p := range Pollutants() {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown pollutant: %s", name)
}

// Concentrations maps a pollutant to its measured value. A missing key means
// the concentration is undefined.
type Concentrations map[Pollutant]float64

// Get returns the concentration for p and whether it is defined.
func (c Concentrations) Get(p Pollutant) (float64, bool) {
	v, ok := c[p]
	return v, ok
}

package aqi

// Assessment is the composite index of a reading or an aggregate of readings.
// Valid is false when no pollutant produced a defined sub-index; Index and
// Dominant are then zero values.
type Assessment struct {
	Index    float64   `json:"aqi"`
	Dominant Pollutant `json:"dominant_pollutant"`
	Valid    bool      `json:"valid"`
}

// SubIndices computes the sub-index of every pollutant in c that has a
// defined concentration inside its breakpoint table.
func SubIndices(c Concentrations) map[Pollutant]float64 {
	indices := make(map[Pollutant]float64, len(c))
	for _, p := range Pollutants() {
		value, ok := c.Get(p)
		if !ok {
			continue
		}
		if index, ok := PollutantIndex(p, value); ok {
			indices[p] = index
		}
	}
	return indices
}

// ComputeIndexAndDominant returns the highest sub-index in c and the
// pollutant it belongs to. Equal sub-indices resolve to the pollutant that
// comes first in Pollutants().
func ComputeIndexAndDominant(c Concentrations) Assessment {
	var result Assessment
	for _, p := range Pollutants() {
		value, ok := c.Get(p)
		if !ok {
			continue
		}
		index, ok := PollutantIndex(p, value)
		if !ok {
			continue
		}
		if !result.Valid || index > result.Index {
			result = Assessment{Index: index, Dominant: p, Valid: true}
		}
	}
	return result
}

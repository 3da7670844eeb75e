package aqi

// CalculateIndex interpolates concentration through the first breakpoint
// entry that contains it. The second return value is false when no entry
// matches: readings outside the table are excluded, never extrapolated.
func CalculateIndex(concentration float64, table []Breakpoint) (float64, bool) {
	for _, bp := range table {
		if bp.CLow <= concentration && concentration <= bp.CHigh {
			return interpolate(concentration, bp), true
		}
	}
	return 0, false
}

// PollutantIndex calculates the sub-index of one pollutant.
func PollutantIndex(p Pollutant, concentration float64) (float64, bool) {
	table, ok := breakpointTables[p]
	if !ok {
		return 0, false
	}
	return CalculateIndex(concentration, table)
}

// interpolate evaluates (IHigh-ILow)/(CHigh-CLow)*(c-CLow)+ILow. The position
// ratio is formed first so both ends of the entry map onto ILow and IHigh exactly.
func interpolate(c float64, bp Breakpoint) float64 {
	span := bp.CHigh - bp.CLow
	if span == 0 {
		return bp.ILow
	}
	return bp.ILow + (bp.IHigh-bp.ILow)*((c-bp.CLow)/span)
}

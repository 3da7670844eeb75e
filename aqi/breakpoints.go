package aqi

// Breakpoint maps the concentration range [CLow, CHigh] linearly onto the
// index range [ILow, IHigh].
type Breakpoint struct {
	CLow  float64
	CHigh float64
	ILow  float64
	IHigh float64
}

// breakpointTables is read-only after package initialization. Entries are
// ordered by concentration and contiguous at each pollutant's resolution step.
var breakpointTables = map[Pollutant][]Breakpoint{
	PM25: {
		{0, 12, 0, 50}, {12.1, 35.4, 51, 100}, {35.5, 55.4, 101, 150},
		{55.5, 150.4, 151, 200}, {150.5, 250.4, 201, 300}, {250.5, 500.4, 301, 500},
	},
	PM10: {
		{0, 54, 0, 50}, {55, 154, 51, 100}, {155, 254, 101, 150},
		{255, 354, 151, 200}, {355, 424, 201, 300}, {425, 604, 301, 500},
	},
	SO2: {
		{0, 35, 0, 50}, {36, 75, 51, 100}, {76, 185, 101, 150},
		{186, 304, 151, 200}, {305, 604, 201, 300}, {605, 1004, 301, 500},
	},
	NO2: {
		{0, 53, 0, 50}, {54, 100, 51, 100}, {101, 360, 101, 150},
		{361, 649, 151, 200}, {650, 1249, 201, 300}, {1250, 2049, 301, 500},
	},
	CO: {
		{0, 4.4, 0, 50}, {4.5, 9.4, 51, 100}, {9.5, 12.4, 101, 150},
		{12.5, 15.4, 151, 200}, {15.5, 30.4, 201, 300}, {30.5, 50.4, 301, 500},
	},
	O3: {
		{0, 54, 0, 50}, {55, 70, 51, 100}, {71, 85, 101, 150},
		{86, 105, 151, 200}, {106, 200, 201, 300}, {201, 604, 301, 500},
	},
}

// Breakpoints returns a copy of the breakpoint table for p, or nil if p is
// not a known pollutant.
func Breakpoints(p Pollutant) []Breakpoint {
	table, ok := breakpointTables[p]
	if !ok {
		return nil
	}
	out := make([]Breakpoint, len(table))
	copy(out, table)
	return out
}

package aqi

// compassDegrees maps the 16 compass codes to their bearing in degrees.
var compassDegrees = map[string]float64{
	"N": 0, "NNE": 22.5, "NE": 45, "ENE": 67.5, "E": 90, "ESE": 112.5,
	"SE": 135, "SSE": 157.5, "S": 180, "SSW": 202.5, "SW": 225, "WSW": 247.5,
	"W": 270, "WNW": 292.5, "NW": 315, "NNW": 337.5,
}

// WindDegree returns the bearing of a compass code. ok is false for any label
// outside the 16 codes; callers must not treat the zero value as north.
func WindDegree(label string) (degree float64, ok bool) {
	degree, ok = compassDegrees[label]
	return degree, ok
}

// IsWindDirection reports whether label is one of the 16 compass codes.
func IsWindDirection(label string) bool {
	_, ok := compassDegrees[label]
	return ok
}

// WindDirections returns the compass codes clockwise from north.
func WindDirections() []string {
	return []string{
		"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
		"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
	}
}

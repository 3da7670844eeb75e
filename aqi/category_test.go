package aqi

import (
	"math"
	"testing"
)

func TestClassifyExamples(t *testing.T) {
	tests := []struct {
		value float64
		p     Pollutant
		want  Category
	}{
		{5.0, CO, Moderate},
		{35, CO, Hazardous},
		{4, CO, Good},
		{0, PM25, Good},
		{12, PM25, Good},
		{12.5, PM25, Moderate},
		{300, PM25, Hazardous},
		{54.5, PM10, Good},
		{154.9, PM10, Moderate},
		{1e6, NO2, Hazardous},
		{80, O3, UnhealthySensitive},
		{100, O3, Unhealthy},
		{200.5, O3, VeryUnhealthy},
	}
	for _, tt := range tests {
		if got := Classify(tt.value, tt.p); got != tt.want {
			t.Errorf("Classify(%v, %s) = %q, want %q", tt.value, tt.p, got.Label, tt.want.Label)
		}
	}
}

func TestClassifyIndex(t *testing.T) {
	tests := map[float64]Category{
		0:     Good,
		50:    Good,
		50.5:  Good,
		51:    Moderate,
		150.2: UnhealthySensitive,
		199:   Unhealthy,
		300:   VeryUnhealthy,
		301:   Hazardous,
		900:   Hazardous,
	}
	for value, want := range tests {
		if got := ClassifyIndex(value); got != want {
			t.Errorf("ClassifyIndex(%v) = %q, want %q", value, got.Label, want.Label)
		}
	}
}

func TestClassifyFallback(t *testing.T) {
	if got := Classify(-0.5, PM25); got != Unclassified {
		t.Errorf("negative value classified as %q", got.Label)
	}
	if got := ClassifyIndex(math.NaN()); got != Unclassified {
		t.Errorf("NaN classified as %q", got.Label)
	}
	if Unclassified.Color != "#000000" {
		t.Errorf("fallback color = %s", Unclassified.Color)
	}
}

func TestClassifyNeverFallsBackInDomain(t *testing.T) {
	scales := []string{CompositeScale}
	for _, p := range Pollutants() {
		scales = append(scales, string(p))
	}
	for _, scale := range scales {
		for step := 0; step <= 60000; step++ {
			value := float64(step) * 0.05
			got, err := ClassifyField(scale, value)
			if err != nil {
				t.Fatalf("ClassifyField(%s): %v", scale, err)
			}
			if got == Unclassified {
				t.Fatalf("%s value %v fell through every range", scale, value)
			}
		}
	}
}

func TestClassifyField(t *testing.T) {
	got, err := ClassifyField("PM25", 10)
	if err != nil || got != Good {
		t.Errorf("ClassifyField(PM25) = %q, %v", got.Label, err)
	}
	got, err = ClassifyField("AQI", 120)
	if err != nil || got != UnhealthySensitive {
		t.Errorf("ClassifyField(AQI) = %q, %v", got.Label, err)
	}
	if _, err := ClassifyField("TEMP", 10); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestRanges(t *testing.T) {
	for _, field := range []string{"AQI", "PM2.5", "PM25", "CO"} {
		ranges := Ranges(field)
		if len(ranges) != 6 {
			t.Fatalf("Ranges(%s) len = %d, want 6", field, len(ranges))
		}
		if ranges[0].Category != Good || ranges[5].Category != Hazardous {
			t.Errorf("Ranges(%s) not ordered by severity", field)
		}
		if !math.IsInf(ranges[5].High, 1) {
			t.Errorf("Ranges(%s) last range is bounded: %v", field, ranges[5].High)
		}
		for i := 1; i < len(ranges); i++ {
			if ranges[i].Low < ranges[i-1].Low {
				t.Errorf("Ranges(%s) entry %d not ascending", field, i)
			}
		}
	}
	if Ranges("TEMP") != nil {
		t.Error("expected nil legend for unknown field")
	}
}

func TestWindDegree(t *testing.T) {
	dirs := WindDirections()
	if len(dirs) != 16 {
		t.Fatalf("len = %d, want 16", len(dirs))
	}
	for i, label := range dirs {
		deg, ok := WindDegree(label)
		if !ok {
			t.Fatalf("%s not mapped", label)
		}
		if deg != float64(i)*22.5 {
			t.Errorf("%s = %v, want %v", label, deg, float64(i)*22.5)
		}
	}
	if _, ok := WindDegree("NA"); ok {
		t.Error("NA should not map to a degree")
	}
	if IsWindDirection("n") {
		t.Error("labels are case sensitive")
	}
}

package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"air_quality_index/config"
	"air_quality_index/database"
	"air_quality_index/models"
)

const header = "No,year,month,day,hour,PM2.5,PM10,SO2,NO2,CO,O3,TEMP,wd,WSPM,station\n"

func TestParseReadings(t *testing.T) {
	data := header +
		"1,2013,3,1,0,9,9,3,17,300,89,-0.5,NNW,5.7,Dongsi\n" +
		"2,2013,3,1,1,4.5,4,3,16,0.3,88,-0.7,N,3.9,Dongsi\n"

	readings, err := ParseReadings(strings.NewReader(data), "dongsi.csv", Options{Station: "fallback"})
	if err != nil {
		t.Fatalf("ParseReadings: %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("len = %d, want 2", len(readings))
	}
	want := models.Reading{
		Station: "Dongsi", Year: 2013, Month: 3, Day: 1, Hour: 1,
		PM25: 4.5, PM10: 4, SO2: 3, NO2: 16, CO: 0.3, O3: 88, WindDirection: "N",
	}
	if readings[1] != want {
		t.Errorf("reading = %+v, want %+v", readings[1], want)
	}
}

func TestParseReadingsUsesOptionStation(t *testing.T) {
	data := "year,month,day,hour,PM2.5,PM10,SO2,NO2,CO,O3,wd\n2014,1,1,0,1,2,3,4,0.5,6,SE\n"
	readings, err := ParseReadings(strings.NewReader(data), "x.csv", Options{Station: "Guanyuan"})
	if err != nil {
		t.Fatalf("ParseReadings: %v", err)
	}
	if readings[0].Station != "Guanyuan" {
		t.Errorf("station = %q", readings[0].Station)
	}
}

func TestParseReadingsRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		column string
	}{
		{"missing column", "year,month,day,hour,PM2.5,PM10,SO2,NO2,CO,wd\n", "O3"},
		{"NA value", header + "1,2013,3,1,0,NA,9,3,17,300,89,-0.5,N,5.7,Dongsi\n", "PM2.5"},
		{"empty value", header + "1,2013,3,1,0,9,9,3,17,,89,-0.5,N,5.7,Dongsi\n", "CO"},
		{"not a number", header + "1,2013,3,1,0,9,abc,3,17,300,89,-0.5,N,5.7,Dongsi\n", "PM10"},
		{"NaN", header + "1,2013,3,1,0,9,9,NaN,17,300,89,-0.5,N,5.7,Dongsi\n", "SO2"},
		{"bad hour", header + "1,2013,3,1,x,9,9,3,17,300,89,-0.5,N,5.7,Dongsi\n", "hour"},
		{"impossible date", header + "1,2013,2,30,0,9,9,3,17,300,89,-0.5,N,5.7,Dongsi\n", "date"},
		{"unknown wind", header + "1,2013,3,1,0,9,9,3,17,300,89,-0.5,NORTH,5.7,Dongsi\n", "wd"},
		{"missing wind", header + "1,2013,3,1,0,9,9,3,17,300,89,-0.5,NA,5.7,Dongsi\n", "wd"},
		{"short row", header + "1,2013,3,1,0,9,9\n", "SO2"},
		{"year zero", header + "1,0,3,1,0,9,9,3,17,300,89,-0.5,N,5.7,Dongsi\n", "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReadings(strings.NewReader(tt.data), "in.csv", Options{})
			if !errors.Is(err, ErrMalformedReading) {
				t.Fatalf("err = %v, want ErrMalformedReading", err)
			}
			var rowErr *RowError
			if !errors.As(err, &rowErr) || rowErr.Column != tt.column {
				t.Errorf("err = %v, want column %q", err, tt.column)
			}
		})
	}
}

func TestParseReadingsEmpty(t *testing.T) {
	if _, err := ParseReadings(strings.NewReader(""), "empty.csv", Options{}); !errors.Is(err, ErrMalformedReading) {
		t.Errorf("err = %v", err)
	}
	readings, err := ParseReadings(strings.NewReader(header), "header.csv", Options{})
	if err != nil || len(readings) != 0 {
		t.Errorf("header only: %v, %v", readings, err)
	}
}

func TestParseReadingsUnmappedPolicy(t *testing.T) {
	data := header + "1,2013,3,1,0,9,9,3,17,300,89,-0.5,VAR,5.7,Dongsi\n"
	readings, err := ParseReadings(strings.NewReader(data), "in.csv", Options{AllowUnmappedWind: true})
	if err != nil {
		t.Fatalf("ParseReadings: %v", err)
	}
	if readings[0].WindDirection != "VAR" {
		t.Errorf("wd = %q", readings[0].WindDirection)
	}
}

func TestSelectStation(t *testing.T) {
	data := header +
		"1,2013,3,1,0,10,9,3,17,300,89,-0.5,N,5.7,Dongsi\n" +
		"2,2013,3,1,0,300,9,3,17,300,89,-0.5,N,5.7,Tiantan\n" +
		"3,2013,3,1,1,12,9,3,17,300,89,-0.5,N,5.7,Dongsi\n"
	readings, err := ParseReadings(strings.NewReader(data), "mixed.csv", Options{})
	if err != nil {
		t.Fatalf("ParseReadings: %v", err)
	}

	if _, _, err := SelectStation(readings, ""); !errors.Is(err, ErrMixedStations) {
		t.Fatalf("err = %v, want ErrMixedStations", err)
	}

	dongsi, station, err := SelectStation(readings, "Dongsi")
	if err != nil {
		t.Fatalf("SelectStation: %v", err)
	}
	if station != "Dongsi" || len(dongsi) != 2 {
		t.Fatalf("station = %q, readings = %d, want Dongsi and 2", station, len(dongsi))
	}
	for _, r := range dongsi {
		if r.Station != "Dongsi" || r.PM25 == 300 {
			t.Errorf("unexpected reading %+v", r)
		}
	}

	if _, _, err := SelectStation(readings, "Wanliu"); err == nil {
		t.Error("expected error for a station absent from the file")
	}

	single, station, err := SelectStation(dongsi, "")
	if err != nil || station != "Dongsi" || len(single) != 2 {
		t.Errorf("single station: %q, %d readings, %v", station, len(single), err)
	}

	if empty, station, err := SelectStation(nil, ""); err != nil || station != "" || len(empty) != 0 {
		t.Errorf("empty input: %q, %v", station, err)
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Database:  config.DatabaseConfig{Driver: "sqlite", SQLite: config.SQLiteConfig{Path: filepath.Join(dir, "aqi.db")}},
		Migration: config.MigrationConfig{AutoMigrate: true, MigrationTable: "migrations", Directory: filepath.Join(dir, "none")},
		Logging:   config.LoggingConfig{LogLevel: "error"},
	}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer database.Close()
	if err := database.NewMigrationRunner(db, cfg).RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	input := filepath.Join(dir, "input")
	if err := os.MkdirAll(filepath.Join(input, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"Dongsi.csv": header +
			"1,2013,3,1,0,9,9,3,17,300,89,-0.5,NNW,5.7,\n" +
			"2,2013,3,1,1,4,4,3,16,0.3,88,-0.7,N,3.9,\n",
		"broken.csv":       header + "1,2013,3,1,0,NA,9,3,17,300,89,-0.5,N,5.7,Broken\n",
		"notes.txt":        "ignored",
		"nested/inner.csv": header + "1,2013,3,1,0,9,9,3,17,300,89,-0.5,N,5.7,Inner\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(input, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	scanner := NewCSVScanner(db, Options{})
	scanner.SetWorkerCount(1)
	results, err := scanner.ScanDirectory(input)
	if err == nil {
		t.Fatal("expected error for the broken file")
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	readings, err := database.LoadReadings(db, "Dongsi")
	if err != nil {
		t.Fatalf("LoadReadings: %v", err)
	}
	if len(readings) != 2 {
		t.Errorf("imported %d readings for Dongsi, want 2", len(readings))
	}
	stations, _ := database.Stations(db)
	if len(stations) != 1 {
		t.Errorf("stations = %v, broken and nested files must not be imported", stations)
	}

	if _, err := scanner.ScanDirectory(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

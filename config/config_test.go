package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sqliteYAML = `
database:
  driver: sqlite
  sqlite:
    path: data/readings.db
input:
  station: Dongsi
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sqliteYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Logging.LogFile != "result.log" || cfg.Logging.LogLevel != "info" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Pipeline.UnknownWindDirection != WindPolicyReject || cfg.AcceptsUnmappedWind() {
		t.Errorf("wind policy = %q", cfg.Pipeline.UnknownWindDirection)
	}
	if cfg.Export.XLSXPath != "aqi_tables.xlsx" || cfg.Export.PDFPath != "aqi_summary.pdf" {
		t.Errorf("export defaults = %+v", cfg.Export)
	}
	if cfg.Migration.Directory != "migrations" {
		t.Errorf("migration directory = %q", cfg.Migration.Directory)
	}
	if cfg.GetDSN() != "data/readings.db" {
		t.Errorf("DSN = %q", cfg.GetDSN())
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"driver":      "database:\n  driver: oracle\n",
		"sqlite path": "database:\n  driver: sqlite\n",
		"mysql host":  "database:\n  driver: mysql\n  mysql:\n    user: u\n    dbname: d\n",
		"wind policy": sqliteYAML + "pipeline:\n  unknown_wind_direction: north\n",
		"log level":   sqliteYAML + "logging:\n  log_level: verbose\n",
		"workers":     "database:\n  driver: sqlite\n  sqlite:\n    path: x.db\ninput:\n  workers: -2\n",
		"yaml":        "database: [",
	}
	for name, doc := range tests {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseEnvironmentOverrides(t *testing.T) {
	t.Setenv("AQI_STATION", "Guanyuan")
	t.Setenv("AQI_DB_PASSWORD", "secret")
	t.Setenv("AQI_LOG_LEVEL", "debug")

	doc := `
database:
  driver: postgres
  postgres:
    host: localhost
    port: 5432
    user: aqi
    dbname: air
    sslmode: disable
    timezone: UTC
pipeline:
  unknown_wind_direction: unmapped
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Input.Station != "Guanyuan" || cfg.Logging.LogLevel != "debug" {
		t.Errorf("overrides not applied: %+v %+v", cfg.Input, cfg.Logging)
	}
	if !strings.Contains(cfg.GetDSN(), "password=secret") {
		t.Errorf("DSN = %q", cfg.GetDSN())
	}
	if !cfg.AcceptsUnmappedWind() {
		t.Error("expected unmapped policy")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aqi.yaml")
	if err := os.WriteFile(path, []byte(sqliteYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Input.Station != "Dongsi" {
		t.Errorf("station = %q", cfg.Input.Station)
	}

	t.Setenv("AQI_CONFIG", path)
	if _, err := Load(""); err != nil {
		t.Errorf("Load via AQI_CONFIG: %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

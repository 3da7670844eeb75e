package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Wind direction policies for labels outside the 16 compass codes
const (
	WindPolicyReject   = "reject"
	WindPolicyUnmapped = "unmapped"
)

// DatabaseConfig holds the connection settings for the readings database
type DatabaseConfig struct {
	Driver         string         `yaml:"driver"`
	MySQL          MySQLConfig    `yaml:"mysql"`
	PostgreSQL     PostgresConfig `yaml:"postgres"`
	SQLite         SQLiteConfig   `yaml:"sqlite"`
	ConnectionPool PoolConfig     `yaml:"connection_pool"`
}

// MySQLConfig holds MySQL specific configuration
type MySQLConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	DBName    string `yaml:"dbname"`
	Charset   string `yaml:"charset"`
	ParseTime bool   `yaml:"parse_time"`
	Loc       string `yaml:"loc"`
}

// PostgresConfig holds PostgreSQL specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	TimeZone string `yaml:"timezone"`
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PoolConfig holds connection pool configuration
type PoolConfig struct {
	MaxIdleConns    int `yaml:"max_idle_conns"`
	MaxOpenConns    int `yaml:"max_open_conns"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime"`
}

// MigrationConfig holds migration specific configuration
type MigrationConfig struct {
	AutoMigrate    bool   `yaml:"auto_migrate"`
	MigrationTable string `yaml:"migration_table"`
	Directory      string `yaml:"directory"`
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	LogFile      string `yaml:"log_file"`
	LogToConsole bool   `yaml:"log_to_console"`
	LogLevel     string `yaml:"log_level"`
}

// InputConfig describes where readings come from
type InputConfig struct {
	Station string `yaml:"station"`
	CSVPath string `yaml:"csv_path"`
	Workers int    `yaml:"workers"`
}

// PipelineConfig holds rollup options
type PipelineConfig struct {
	UnknownWindDirection string `yaml:"unknown_wind_direction"`
}

// ExportConfig holds output file locations
type ExportConfig struct {
	XLSXPath string `yaml:"xlsx_path"`
	PDFPath  string `yaml:"pdf_path"`
}

// MetricsConfig holds the Prometheus textfile location; empty disables it
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Config holds the complete application configuration
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Migration MigrationConfig `yaml:"migration"`
	Logging   LoggingConfig   `yaml:"logging"`
	Input     InputConfig     `yaml:"input"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Export    ExportConfig    `yaml:"export"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// Load loads configuration from the specified YAML file. A .env file in the
// working directory is read first so its variables can override file values.
func Load(configPath string) (*Config, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	if configPath == "" {
		configPath = os.Getenv("AQI_CONFIG")
	}
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a configuration from YAML content, applying environment
// overrides and defaults before validating it
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("AQI_DB_PASSWORD"); v != "" {
		c.Database.MySQL.Password = v
		c.Database.PostgreSQL.Password = v
	}
	if v := os.Getenv("AQI_STATION"); v != "" {
		c.Input.Station = v
	}
	if v := os.Getenv("AQI_LOG_LEVEL"); v != "" {
		c.Logging.LogLevel = v
	}
}

func (c *Config) applyDefaults() {
	if c.Logging.LogFile == "" {
		c.Logging.LogFile = "result.log"
	}
	if c.Logging.LogLevel == "" {
		c.Logging.LogLevel = "info"
	}
	if c.Migration.MigrationTable == "" {
		c.Migration.MigrationTable = "migrations"
	}
	if c.Migration.Directory == "" {
		c.Migration.Directory = "migrations"
	}
	if c.Pipeline.UnknownWindDirection == "" {
		c.Pipeline.UnknownWindDirection = WindPolicyReject
	}
	if c.Export.XLSXPath == "" {
		c.Export.XLSXPath = "aqi_tables.xlsx"
	}
	if c.Export.PDFPath == "" {
		c.Export.PDFPath = "aqi_summary.pdf"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql":
		if c.Database.MySQL.Host == "" {
			return fmt.Errorf("mysql host is required")
		}
		if c.Database.MySQL.User == "" {
			return fmt.Errorf("mysql user is required")
		}
		if c.Database.MySQL.DBName == "" {
			return fmt.Errorf("mysql database name is required")
		}
	case "postgres":
		if c.Database.PostgreSQL.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
		if c.Database.PostgreSQL.User == "" {
			return fmt.Errorf("postgres user is required")
		}
		if c.Database.PostgreSQL.DBName == "" {
			return fmt.Errorf("postgres database name is required")
		}
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Pipeline.UnknownWindDirection {
	case WindPolicyReject, WindPolicyUnmapped:
	default:
		return fmt.Errorf("unknown_wind_direction must be %q or %q, got %q",
			WindPolicyReject, WindPolicyUnmapped, c.Pipeline.UnknownWindDirection)
	}

	switch c.Logging.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.Logging.LogLevel)
	}

	if c.Input.Workers < 0 {
		return fmt.Errorf("input workers must not be negative")
	}

	return nil
}

// AcceptsUnmappedWind reports whether readings with unknown wind labels are
// kept and reported as unmapped rather than rejected
func (c *Config) AcceptsUnmappedWind() bool {
	return c.Pipeline.UnknownWindDirection == WindPolicyUnmapped
}

// GetDSN returns the database connection string based on the configured driver
func (c *Config) GetDSN() string {
	switch c.Database.Driver {
	case "mysql":
		mysql := c.Database.MySQL
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
			mysql.User, mysql.Password, mysql.Host, mysql.Port, mysql.DBName,
			mysql.Charset, mysql.ParseTime, mysql.Loc)
	case "postgres":
		pg := c.Database.PostgreSQL
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, pg.SSLMode, pg.TimeZone)
	case "sqlite":
		return c.Database.SQLite.Path
	default:
		return ""
	}
}

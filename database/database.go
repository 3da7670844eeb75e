package database

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"air_quality_index/config"
	"air_quality_index/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ErrSchemaMissing is returned when the readings table is absent or lacks
// columns of the Reading model
var ErrSchemaMissing = errors.New("readings schema missing")

// DB is the global database instance
var DB *gorm.DB

var dialectors = map[string]func(dsn string) gorm.Dialector{
	"mysql":    mysql.Open,
	"postgres": postgres.Open,
	"sqlite":   sqlite.Open,
}

// Connect opens the configured readings database and applies the pool limits
func Connect(cfg *config.Config) (*gorm.DB, error) {
	open, ok := dialectors[cfg.Database.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	// SQL statements are only echoed at debug level
	logMode := gormlogger.Warn
	if cfg.Logging.LogLevel == "debug" {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
	}

	if err := configurePool(db, cfg.Database.ConnectionPool); err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}

// ConnectReadings connects and verifies that the readings table matches the
// Reading model, for commands that read or write readings
func ConnectReadings(cfg *config.Config) (*gorm.DB, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := CheckReadingsSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

// configurePool sets the non-zero pool limits and pings the server
func configurePool(db *gorm.DB, pool config.PoolConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(pool.ConnMaxLifetime) * time.Second)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// CheckReadingsSchema reports ErrSchemaMissing when the readings table does
// not exist or is missing a column the Reading model maps
func CheckReadingsSchema(db *gorm.DB) error {
	table := models.Reading{}.TableName()
	if !db.Migrator().HasTable(&models.Reading{}) {
		return fmt.Errorf("%w: table %s not found, run migrate first", ErrSchemaMissing, table)
	}

	missing, err := missingReadingColumns(db)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: table %s lacks columns %s", ErrSchemaMissing, table, strings.Join(missing, ", "))
	}
	return nil
}

// missingReadingColumns compares the model's columns with the table's
func missingReadingColumns(db *gorm.DB) ([]string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&models.Reading{}); err != nil {
		return nil, fmt.Errorf("failed to parse reading model: %w", err)
	}

	columnTypes, err := db.Migrator().ColumnTypes(&models.Reading{})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s columns: %w", stmt.Schema.Table, err)
	}
	present := make(map[string]bool, len(columnTypes))
	for _, ct := range columnTypes {
		present[strings.ToLower(ct.Name())] = true
	}

	var missing []string
	for _, name := range stmt.Schema.DBNames {
		if !present[strings.ToLower(name)] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	DB = nil
	return sqlDB.Close()
}

// GetDB returns the global database instance
func GetDB() *gorm.DB {
	return DB
}

// IsConnected reports whether the global connection answers a ping
func IsConnected() bool {
	if DB == nil {
		return false
	}
	sqlDB, err := DB.DB()
	return err == nil && sqlDB.Ping() == nil
}

// GetDatabaseInfo describes the connection, its pool and the readings schema
func GetDatabaseInfo(cfg *config.Config) map[string]interface{} {
	info := map[string]interface{}{
		"driver":    cfg.Database.Driver,
		"connected": IsConnected(),
	}
	for key, value := range endpoint(cfg) {
		info[key] = value
	}

	if DB == nil {
		return info
	}
	if sqlDB, err := DB.DB(); err == nil {
		stats := sqlDB.Stats()
		info["max_open_connections"] = stats.MaxOpenConnections
		info["open_connections"] = stats.OpenConnections
		info["in_use"] = stats.InUse
		info["idle"] = stats.Idle
	}

	switch err := CheckReadingsSchema(DB); {
	case err == nil:
		info["readings_table"] = models.Reading{}.TableName()
		info["readings_schema"] = "ok"
	case errors.Is(err, ErrSchemaMissing):
		info["readings_schema"] = err.Error()
	default:
		info["readings_schema"] = fmt.Sprintf("unknown: %v", err)
	}
	return info
}

// endpoint returns where the configured driver connects to
func endpoint(cfg *config.Config) map[string]interface{} {
	switch cfg.Database.Driver {
	case "mysql":
		return map[string]interface{}{
			"host":     cfg.Database.MySQL.Host,
			"port":     cfg.Database.MySQL.Port,
			"database": cfg.Database.MySQL.DBName,
		}
	case "postgres":
		return map[string]interface{}{
			"host":     cfg.Database.PostgreSQL.Host,
			"port":     cfg.Database.PostgreSQL.Port,
			"database": cfg.Database.PostgreSQL.DBName,
		}
	case "sqlite":
		return map[string]interface{}{"path": cfg.Database.SQLite.Path}
	}
	return nil
}

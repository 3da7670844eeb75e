package database

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"air_quality_index/config"
	"air_quality_index/logger"
	"air_quality_index/models"

	"gorm.io/gorm"
)

// Migration records one applied schema change
type Migration struct {
	ID          uint   `gorm:"primaryKey"`
	Version     string `gorm:"unique;not null"`
	Name        string `gorm:"not null"`
	Applied     bool   `gorm:"default:false"`
	AppliedAt   *time.Time
	Description string
}

// MigrationFile represents a SQL migration on disk
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	FilePath    string
	Applied     bool
}

// MigrationRunner keeps the readings schema up to date
type MigrationRunner struct {
	db             *gorm.DB
	migrationTable string
	migrationDir   string
	autoMigrate    bool
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *gorm.DB, cfg *config.Config) *MigrationRunner {
	return &MigrationRunner{
		db:             db,
		migrationTable: cfg.Migration.MigrationTable,
		migrationDir:   cfg.Migration.Directory,
		autoMigrate:    cfg.Migration.AutoMigrate,
	}
}

func (mr *MigrationRunner) table() *gorm.DB {
	return mr.db.Table(mr.migrationTable)
}

// InitializeMigrationTable creates the migration table if it doesn't exist
func (mr *MigrationRunner) InitializeMigrationTable() error {
	return mr.table().AutoMigrate(&Migration{})
}

// GetMigrationFiles returns the SQL files of the migration directory sorted by version
func (mr *MigrationRunner) GetMigrationFiles() ([]MigrationFile, error) {
	var migrationFiles []MigrationFile

	if _, err := os.Stat(mr.migrationDir); os.IsNotExist(err) {
		return migrationFiles, nil
	}

	err := filepath.WalkDir(mr.migrationDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".sql") {
			return nil
		}

		// Format: YYYYMMDD_HHMMSS_description.sql
		parts := strings.SplitN(d.Name(), "_", 3)
		if len(parts) < 3 {
			return fmt.Errorf("invalid migration filename format: %s (expected: YYYYMMDD_HHMMSS_description.sql)", d.Name())
		}

		description := strings.TrimSuffix(parts[2], ".sql")
		migrationFiles = append(migrationFiles, MigrationFile{
			Version:     parts[0] + "_" + parts[1],
			Name:        strings.ReplaceAll(description, "_", " "),
			Description: description,
			FilePath:    path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	sort.Slice(migrationFiles, func(i, j int) bool {
		return migrationFiles[i].Version < migrationFiles[j].Version
	})

	return migrationFiles, nil
}

// appliedVersions returns the set of versions recorded as applied
func (mr *MigrationRunner) appliedVersions() (map[string]bool, error) {
	if err := mr.InitializeMigrationTable(); err != nil {
		return nil, fmt.Errorf("failed to initialize migration table: %w", err)
	}

	var migrations []Migration
	if err := mr.table().Where("applied = ?", true).Order("version ASC").Find(&migrations).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	versions := make(map[string]bool, len(migrations))
	for _, m := range migrations {
		versions[m.Version] = true
	}
	return versions, nil
}

// GetMigrationStatus returns every migration file with its applied flag set
func (mr *MigrationRunner) GetMigrationStatus() ([]MigrationFile, error) {
	files, err := mr.GetMigrationFiles()
	if err != nil {
		return nil, err
	}

	applied, err := mr.appliedVersions()
	if err != nil {
		return nil, err
	}

	for i := range files {
		files[i].Applied = applied[files[i].Version]
	}
	return files, nil
}

// RunMigrations creates the model tables when auto_migrate is set, then
// applies the pending SQL migrations in version order
func (mr *MigrationRunner) RunMigrations() error {
	if mr.autoMigrate {
		logger.Println("Auto-migrating model tables...")
		if err := mr.db.AutoMigrate(models.GetAllModels()...); err != nil {
			return fmt.Errorf("auto migration failed: %w", err)
		}
	}

	files, err := mr.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	var pending []MigrationFile
	for _, f := range files {
		if !f.Applied {
			pending = append(pending, f)
		}
	}

	if len(pending) == 0 {
		logger.Println("No pending migrations to run")
		return nil
	}

	logger.Printf("Running %d pending migration(s)...\n", len(pending))
	for i, migration := range pending {
		logger.LogProgress(i+1, len(pending), migration.Version+" "+migration.Name)
		if err := mr.runSingleMigration(migration); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}
	}

	logger.Println("All migrations completed successfully")
	return nil
}

// runSingleMigration executes one SQL file and records it in a single transaction
func (mr *MigrationRunner) runSingleMigration(migrationFile MigrationFile) error {
	content, err := os.ReadFile(migrationFile.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	return mr.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(content)).Error; err != nil {
			return fmt.Errorf("failed to execute migration SQL: %w", err)
		}

		now := time.Now()
		migration := Migration{
			Version:     migrationFile.Version,
			Name:        migrationFile.Name,
			Applied:     true,
			AppliedAt:   &now,
			Description: migrationFile.Description,
		}
		if err := tx.Table(mr.migrationTable).Create(&migration).Error; err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
}

// CreateMigration writes an empty migration file named after the current time
func (mr *MigrationRunner) CreateMigration(name string) (string, error) {
	if err := os.MkdirAll(mr.migrationDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := time.Now()
	cleanName := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	filename := fmt.Sprintf("%s_%s.sql", now.Format("20060102_150405"), cleanName)
	filePath := filepath.Join(mr.migrationDir, filename)

	template := fmt.Sprintf(`-- Migration: %s
-- Created: %s

-- Add your migration SQL here
-- Example:
-- CREATE INDEX idx_readings_wd ON readings (station, wd);
`, name, now.Format("2006-01-02 15:04:05"))

	if err := os.WriteFile(filePath, []byte(template), 0644); err != nil {
		return "", fmt.Errorf("failed to create migration file: %w", err)
	}

	return filePath, nil
}

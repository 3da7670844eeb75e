package database

import (
	"fmt"

	"air_quality_index/models"

	"gorm.io/gorm"
)

// ReadingStats summarizes the readings stored for one station
type ReadingStats struct {
	Station string
	Count   int64
	First   string
	Last    string
}

// LoadReadings returns every reading of a station in chronological order
func LoadReadings(db *gorm.DB, station string) ([]models.Reading, error) {
	var readings []models.Reading
	result := db.Where("station = ?", station).
		Order("year ASC").Order("month ASC").Order("day ASC").Order("hour ASC").
		Find(&readings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load readings for %s: %w", station, result.Error)
	}
	return readings, nil
}

// Stations lists the distinct stations present in the readings table
func Stations(db *gorm.DB) ([]string, error) {
	var stations []string
	if err := db.Model(&models.Reading{}).Distinct("station").Order("station ASC").Pluck("station", &stations).Error; err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	return stations, nil
}

// StationStats returns the reading count and covered period per station
func StationStats(db *gorm.DB) ([]ReadingStats, error) {
	stations, err := Stations(db)
	if err != nil {
		return nil, err
	}

	stats := make([]ReadingStats, 0, len(stations))
	for _, station := range stations {
		s := ReadingStats{Station: station}
		scope := db.Model(&models.Reading{}).Where("station = ?", station)
		if err := scope.Count(&s.Count).Error; err != nil {
			return nil, fmt.Errorf("failed to count readings for %s: %w", station, err)
		}

		var first, last models.Reading
		if err := db.Where("station = ?", station).
			Order("year ASC").Order("month ASC").Order("day ASC").Order("hour ASC").
			First(&first).Error; err != nil {
			return nil, fmt.Errorf("failed to find first reading for %s: %w", station, err)
		}
		if err := db.Where("station = ?", station).
			Order("year DESC").Order("month DESC").Order("day DESC").Order("hour DESC").
			First(&last).Error; err != nil {
			return nil, fmt.Errorf("failed to find last reading for %s: %w", station, err)
		}
		s.First = first.Time().Format("2006-01-02 15:04")
		s.Last = last.Time().Format("2006-01-02 15:04")
		stats = append(stats, s)
	}
	return stats, nil
}

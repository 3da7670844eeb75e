package models

import (
	"fmt"
	"time"

	"air_quality_index/aqi"
)

// Reading represents one hourly pollutant reading of a monitoring station
type Reading struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	Station       string    `gorm:"uniqueIndex:idx_station_hour;not null;size:64" json:"station"`
	Year          int       `gorm:"uniqueIndex:idx_station_hour;not null" json:"year"`
	Month         int       `gorm:"uniqueIndex:idx_station_hour;not null" json:"month"`
	Day           int       `gorm:"uniqueIndex:idx_station_hour;not null" json:"day"`
	Hour          int       `gorm:"uniqueIndex:idx_station_hour;not null" json:"hour"`
	PM25          float64   `gorm:"column:pm25;not null" json:"PM2.5"`
	PM10          float64   `gorm:"column:pm10;not null" json:"PM10"`
	SO2           float64   `gorm:"column:so2;not null" json:"SO2"`
	NO2           float64   `gorm:"column:no2;not null" json:"NO2"`
	CO            float64   `gorm:"column:co;not null" json:"CO"`
	O3            float64   `gorm:"column:o3;not null" json:"O3"`
	WindDirection string    `gorm:"column:wd;not null;size:8" json:"wd"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"-"`
}

// TableName customizes the table name
func (Reading) TableName() string {
	return "readings"
}

// Concentrations returns the six pollutant values keyed by pollutant
func (r Reading) Concentrations() aqi.Concentrations {
	return aqi.Concentrations{
		aqi.PM25: r.PM25,
		aqi.PM10: r.PM10,
		aqi.SO2:  r.SO2,
		aqi.NO2:  r.NO2,
		aqi.CO:   r.CO,
		aqi.O3:   r.O3,
	}
}

// SetConcentration assigns the value of one pollutant
func (r *Reading) SetConcentration(p aqi.Pollutant, value float64) error {
	switch p {
	case aqi.PM25:
		r.PM25 = value
	case aqi.PM10:
		r.PM10 = value
	case aqi.SO2:
		r.SO2 = value
	case aqi.NO2:
		r.NO2 = value
	case aqi.CO:
		r.CO = value
	case aqi.O3:
		r.O3 = value
	default:
		return fmt.Errorf("unknown pollutant: %s", p)
	}
	return nil
}

// Time returns the start of the reading's hour in UTC
func (r Reading) Time() time.Time {
	return time.Date(r.Year, time.Month(r.Month), r.Day, r.Hour, 0, 0, 0, time.UTC)
}

// Validate checks the calendar fields; it reports the first problem found
func (r Reading) Validate() error {
	if r.Year < 1 {
		return fmt.Errorf("year out of range: %d", r.Year)
	}
	if r.Month < 1 || r.Month > 12 {
		return fmt.Errorf("month out of range: %d", r.Month)
	}
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("hour out of range: %d", r.Hour)
	}
	if r.Day < 1 || r.Day > daysIn(r.Year, r.Month) {
		return fmt.Errorf("day out of range: %04d-%02d-%d", r.Year, r.Month, r.Day)
	}
	return nil
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// GetAllModels returns all models for migration
func GetAllModels() []interface{} {
	return []interface{}{
		&Reading{},
	}
}

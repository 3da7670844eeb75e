package main

import (
	"bufio"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./tools/generate_readings <output_directory> [days]")
		fmt.Println("Example: go run ./tools/generate_readings test_data 365")
		return
	}

	outputDir := os.Args[1]
	days := defaultDays
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			fmt.Printf("Invalid day count: %s\n", os.Args[2])
			return
		}
		days = n
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Printf("Failed to create directory: %v\n", err)
		return
	}

	stations := []Station{
		{"Aotizhongxin", 1.0},
		{"Dongsi", 1.15},
		{"Dingling", 0.7},
		{"Huairou", 0.8},
		{"Wanliu", 1.05},
	}

	var wg sync.WaitGroup
	for i, station := range stations {
		wg.Add(1)
		go generateStation(int64(i+1), outputDir, station, days, &wg)
	}
	wg.Wait()
	fmt.Println("All readings generated.")
}

// Station scales the simulated pollution level of one site
type Station struct {
	Name     string
	Severity float64
}

// Reading is one simulated hourly row
type Reading struct {
	Time      time.Time
	PM25      float64
	PM10      float64
	SO2       float64
	NO2       float64
	CO        float64
	O3        float64
	Temp      float64
	Wind      string
	WindSpeed float64
}

const defaultDays = 4 * 365

var windLabels = []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

func generateStation(seed int64, outputDir string, station Station, days int, wg *sync.WaitGroup) {
	defer wg.Done()
	csvFilepath := filepath.Join(outputDir, station.Name+".csv")
	data := simulate(rand.New(rand.NewSource(seed)), station, days)

	if err := writeCSV(csvFilepath, station.Name, data); err != nil {
		fmt.Printf("Failed to write %s: %v\n", csvFilepath, err)
		return
	}

	fmt.Printf("Generated %s with %d readings\n", csvFilepath, len(data))
}

func simulate(rng *rand.Rand, station Station, days int) []Reading {
	start := time.Date(2013, 3, 1, 0, 0, 0, 0, time.UTC)
	readings := make([]Reading, 0, days*24)

	// Haze episodes build up over a few days and clear with northerly wind
	haze := 1.0
	for h := 0; h < days*24; h++ {
		t := start.Add(time.Duration(h) * time.Hour)
		if t.Hour() == 0 {
			haze = math.Max(0.3, math.Min(4, haze*(0.8+rng.Float64()*0.6)))
		}

		season := 1 + 0.6*math.Cos(float64(t.YearDay())*2*math.Pi/365)
		hourAngle := float64(t.Hour()) * math.Pi / 12
		traffic := 1 + 0.3*math.Sin(hourAngle-math.Pi/3)
		level := station.Severity * season * haze * traffic

		wind := windLabels[rng.Intn(len(windLabels))]
		if wind == "N" || wind == "NNW" || wind == "NW" {
			level *= 0.6
		}

		sunshine := math.Max(0, math.Sin(hourAngle-math.Pi/2))
		readings = append(readings, Reading{
			Time:      t,
			PM25:      noisy(rng, 45*level, 0.25),
			PM10:      noisy(rng, 70*level, 0.25),
			SO2:       noisy(rng, 12*level*season, 0.3),
			NO2:       noisy(rng, 40*level, 0.2),
			CO:        noisy(rng, 1.1*level, 0.2),
			O3:        noisy(rng, 20+60*sunshine/season, 0.2),
			Temp:      12 - 14*math.Cos(float64(t.YearDay())*2*math.Pi/365) + 5*sunshine,
			Wind:      wind,
			WindSpeed: math.Round(rng.Float64()*60) / 10,
		})
	}

	return readings
}

// noisy applies multiplicative noise and keeps the value non-negative
func noisy(rng *rand.Rand, base, spread float64) float64 {
	v := base * (1 + (rng.Float64()*2-1)*spread)
	return math.Max(0, math.Round(v*10)/10)
}

func writeCSV(filename, station string, readings []Reading) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	// Write header
	if _, err := w.WriteString("No,year,month,day,hour,PM2.5,PM10,SO2,NO2,CO,O3,TEMP,wd,WSPM,station\n"); err != nil {
		return err
	}

	// Write data
	for i, r := range readings {
		line := fmt.Sprintf("%d,%d,%d,%d,%d,%.1f,%.1f,%.1f,%.1f,%.1f,%.1f,%.1f,%s,%.1f,%s\n",
			i+1, r.Time.Year(), int(r.Time.Month()), r.Time.Day(), r.Time.Hour(),
			r.PM25, r.PM10, r.SO2, r.NO2, r.CO, r.O3, r.Temp, r.Wind, r.WindSpeed, station)
		if _, err := w.WriteString(line); err != nil {
			return err
		}
	}

	return w.Flush()
}

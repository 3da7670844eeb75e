package scanner

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"air_quality_index/aqi"
	"air_quality_index/logger"
	"air_quality_index/models"

	"gorm.io/gorm"
)

// ErrMalformedReading is wrapped by every RowError
var ErrMalformedReading = errors.New("malformed reading")

// RowError describes the first structural problem found in a reading file
type RowError struct {
	Source string
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *RowError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s row %d column %q: %s (%q)", e.Source, e.Row, e.Column, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s row %d column %q: %s", e.Source, e.Row, e.Column, e.Reason)
}

func (e *RowError) Unwrap() error {
	return ErrMalformedReading
}

// Column names a reading file must provide; pollutant columns come from aqi
const (
	ColumnYear          = "year"
	ColumnMonth         = "month"
	ColumnDay           = "day"
	ColumnHour          = "hour"
	ColumnWindDirection = "wd"
	ColumnStation       = "station"
)

// Options control how reading files are interpreted
type Options struct {
	// Station is used when the file has no station column
	Station string
	// AllowUnmappedWind keeps readings whose wind label is not a compass code
	AllowUnmappedWind bool
}

// RequiredColumns returns the header names every reading file must contain
func RequiredColumns() []string {
	cols := []string{ColumnYear, ColumnMonth, ColumnDay, ColumnHour}
	for _, p := range aqi.Pollutants() {
		cols = append(cols, string(p))
	}
	return append(cols, ColumnWindDirection)
}

// LoadFile parses one reading file. Any missing or malformed field fails the
// whole file.
func LoadFile(path string, opts Options) ([]models.Reading, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReadings(file, filepath.Base(path), opts)
}

// ParseReadings reads a CSV stream with a header row into readings
func ParseReadings(r io.Reader, source string, opts Options) ([]models.Reading, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &RowError{Source: source, Row: 1, Reason: "empty file"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range RequiredColumns() {
		if _, ok := index[col]; !ok {
			return nil, &RowError{Source: source, Row: 1, Column: col, Reason: "missing column"}
		}
	}

	var readings []models.Reading
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		reading, err := parseRecord(record, index, source, row, opts)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

func parseRecord(record []string, index map[string]int, source string, row int, opts Options) (models.Reading, error) {
	field := func(col string) (string, error) {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return "", &RowError{Source: source, Row: row, Column: col, Reason: "missing value"}
		}
		value := strings.TrimSpace(record[i])
		if value == "" || strings.EqualFold(value, "NA") {
			return "", &RowError{Source: source, Row: row, Column: col, Value: value, Reason: "missing value"}
		}
		return value, nil
	}
	integer := func(col string) (int, error) {
		value, err := field(col)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, &RowError{Source: source, Row: row, Column: col, Value: value, Reason: "not an integer"}
		}
		return n, nil
	}

	reading := models.Reading{Station: opts.Station}
	var err error
	if reading.Year, err = integer(ColumnYear); err != nil {
		return reading, err
	}
	if reading.Month, err = integer(ColumnMonth); err != nil {
		return reading, err
	}
	if reading.Day, err = integer(ColumnDay); err != nil {
		return reading, err
	}
	if reading.Hour, err = integer(ColumnHour); err != nil {
		return reading, err
	}
	if err := reading.Validate(); err != nil {
		return reading, &RowError{Source: source, Row: row, Column: "date", Reason: err.Error()}
	}

	for _, p := range aqi.Pollutants() {
		col := string(p)
		value, err := field(col)
		if err != nil {
			return reading, err
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return reading, &RowError{Source: source, Row: row, Column: col, Value: value, Reason: "not a number"}
		}
		if err := reading.SetConcentration(p, f); err != nil {
			return reading, err
		}
	}

	wd, err := field(ColumnWindDirection)
	if err != nil {
		return reading, err
	}
	if !opts.AllowUnmappedWind && !aqi.IsWindDirection(wd) {
		return reading, &RowError{Source: source, Row: row, Column: ColumnWindDirection, Value: wd, Reason: "unknown wind direction"}
	}
	reading.WindDirection = wd

	if i, ok := index[ColumnStation]; ok && i < len(record) {
		if station := strings.TrimSpace(record[i]); station != "" {
			reading.Station = station
		}
	}

	return reading, nil
}

// ErrMixedStations is returned when readings of several stations would be
// rolled up together
var ErrMixedStations = errors.New("readings from more than one station")

// SelectStation keeps the readings of one station. With an empty station
// every reading must belong to the same station, which is returned; a file
// mixing stations fails with ErrMixedStations.
func SelectStation(readings []models.Reading, station string) ([]models.Reading, string, error) {
	if station != "" {
		var selected []models.Reading
		for _, r := range readings {
			if r.Station == station {
				selected = append(selected, r)
			}
		}
		if len(readings) > 0 && len(selected) == 0 {
			return nil, "", fmt.Errorf("no readings for station %s", station)
		}
		return selected, station, nil
	}

	seen := make(map[string]bool)
	var stations []string
	for _, r := range readings {
		if !seen[r.Station] {
			seen[r.Station] = true
			stations = append(stations, r.Station)
		}
	}
	switch len(stations) {
	case 0:
		return readings, "", nil
	case 1:
		return readings, stations[0], nil
	default:
		sort.Strings(stations)
		return nil, "", fmt.Errorf("%w: %s; set input.station to pick one", ErrMixedStations, strings.Join(stations, ", "))
	}
}

// CSVScanner imports reading files into the database
type CSVScanner struct {
	db          *gorm.DB
	opts        Options
	workerCount int
}

// FileJob represents a CSV file to be processed
type FileJob struct {
	FilePath string
	FileName string
}

// ProcessResult contains the result of processing a CSV file
type ProcessResult struct {
	FilePath    string
	RecordCount int
	Duration    time.Duration
	Error       error
}

// NewCSVScanner creates a new CSV scanner
func NewCSVScanner(db *gorm.DB, opts Options) *CSVScanner {
	// Default to number of CPU cores for parallel processing
	workerCount := runtime.NumCPU()
	if workerCount > 8 {
		workerCount = 8 // Limit to 8 workers to avoid overwhelming the database
	}

	return &CSVScanner{
		db:          db,
		opts:        opts,
		workerCount: workerCount,
	}
}

// SetWorkerCount sets the number of parallel workers
func (cs *CSVScanner) SetWorkerCount(count int) {
	if count > 0 {
		cs.workerCount = count
	}
}

// ScanDirectory imports every CSV file of a directory in parallel. A file is
// parsed completely before any of its readings is inserted, so a malformed
// file contributes nothing. The returned error reports how many files failed.
func (cs *CSVScanner) ScanDirectory(directoryPath string) ([]ProcessResult, error) {
	logger.Printf("Scanning directory: %s\n", directoryPath)

	if _, err := os.Stat(directoryPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directoryPath)
	}

	csvFiles, err := cs.findCSVFiles(directoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find CSV files: %w", err)
	}

	if len(csvFiles) == 0 {
		logger.Println("No CSV files found in the directory")
		return nil, nil
	}

	logger.Printf("Found %d CSV file(s) to process\n", len(csvFiles))
	logger.Printf("Processing with %d parallel workers\n", cs.workerCount)

	results := cs.processFilesParallel(csvFiles)
	failed := cs.displaySummary(results)
	if failed > 0 {
		return results, fmt.Errorf("%d of %d file(s) failed to import", failed, len(results))
	}

	return results, nil
}

// findCSVFiles finds all CSV files in the specified directory (non-recursive)
func (cs *CSVScanner) findCSVFiles(directoryPath string) ([]FileJob, error) {
	var csvFiles []FileJob

	entries, err := os.ReadDir(directoryPath)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == ".csv" {
			csvFiles = append(csvFiles, FileJob{
				FilePath: filepath.Join(directoryPath, entry.Name()),
				FileName: entry.Name(),
			})
		}
	}

	return csvFiles, nil
}

// processFilesParallel processes CSV files in parallel using worker goroutines
func (cs *CSVScanner) processFilesParallel(files []FileJob) []ProcessResult {
	jobs := make(chan FileJob, len(files))
	results := make(chan ProcessResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < cs.workerCount; i++ {
		wg.Add(1)
		go cs.worker(jobs, results, &wg)
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var allResults []ProcessResult
	for result := range results {
		allResults = append(allResults, result)
	}

	return allResults
}

// worker processes CSV files from the job channel
func (cs *CSVScanner) worker(jobs <-chan FileJob, results chan<- ProcessResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		results <- cs.processCSVFile(job)
	}
}

// processCSVFile parses and stores a single CSV file
func (cs *CSVScanner) processCSVFile(job FileJob) ProcessResult {
	startTime := time.Now()
	result := ProcessResult{FilePath: job.FilePath}

	logger.Printf("Processing file: %s\n", job.FileName)

	opts := cs.opts
	if opts.Station == "" {
		opts.Station = strings.TrimSuffix(job.FileName, filepath.Ext(job.FileName))
	}

	readings, err := LoadFile(job.FilePath, opts)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(startTime)
		return result
	}
	result.RecordCount = len(readings)

	if len(readings) > 0 {
		if err := cs.batchInsertReadings(readings); err != nil {
			result.Error = fmt.Errorf("failed to insert data: %w", err)
			result.Duration = time.Since(startTime)
			return result
		}
	}

	result.Duration = time.Since(startTime)
	logger.Printf("Completed %s: %d readings in %v\n", job.FileName, result.RecordCount, result.Duration)

	return result
}

// batchInsertReadings inserts readings in batches to improve performance
func (cs *CSVScanner) batchInsertReadings(data []models.Reading) error {
	const batchSize = 1000

	for i := 0; i < len(data); i += batchSize {
		end := i + batchSize
		if end > len(data) {
			end = len(data)
		}

		batch := data[i:end]
		if err := cs.db.CreateInBatches(batch, batchSize).Error; err != nil {
			// Fall back to single inserts to find the rows that conflict
			if err := cs.individualInsert(batch); err != nil {
				return err
			}
		}
	}

	return nil
}

// individualInsert attempts to insert records individually when batch insert fails
func (cs *CSVScanner) individualInsert(data []models.Reading) error {
	var lastError error
	successCount := 0

	for _, record := range data {
		record.ID = 0
		if err := cs.db.Create(&record).Error; err != nil {
			lastError = err
			logger.Warnf("Failed to insert reading %s at %s: %v\n",
				record.Station, record.Time().Format(time.RFC3339), err)
		} else {
			successCount++
		}
	}

	if successCount == 0 && lastError != nil {
		return fmt.Errorf("failed to insert any records: %w", lastError)
	}

	if lastError != nil {
		logger.Printf("Inserted %d out of %d readings with some errors\n", successCount, len(data))
	}

	return nil
}

// displaySummary logs the processing results and returns the failure count
func (cs *CSVScanner) displaySummary(results []ProcessResult) int {
	logger.Println(strings.Repeat("=", 60))
	logger.Println("IMPORT SUMMARY")
	logger.Println(strings.Repeat("=", 60))

	totalRecords := 0
	failedFiles := 0
	totalDuration := time.Duration(0)

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if result.Error != nil {
			failedFiles++
			logger.LogResult(name, false, result.Error.Error())
		} else {
			totalRecords += result.RecordCount
			logger.LogResult(name, true, fmt.Sprintf("%d readings (%v)", result.RecordCount, result.Duration))
		}
		totalDuration += result.Duration
	}

	logger.Println(strings.Repeat("-", 60))
	logger.Printf("Total files processed: %d\n", len(results))
	logger.Printf("Successful: %d\n", len(results)-failedFiles)
	logger.Printf("Failed: %d\n", failedFiles)
	logger.Printf("Total readings imported: %d\n", totalRecords)
	logger.Printf("Total processing time: %v\n", totalDuration)
	logger.Println(strings.Repeat("=", 60))

	return failedFiles
}

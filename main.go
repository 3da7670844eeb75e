package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"air_quality_index/aqi"
	"air_quality_index/config"
	"air_quality_index/database"
	"air_quality_index/export"
	"air_quality_index/logger"
	"air_quality_index/metrics"
	"air_quality_index/models"
	"air_quality_index/rollup"
	"air_quality_index/scanner"
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]
	args, jsonOutput := splitArgs(os.Args[2:])

	// Initialize logging only for commands that need it
	if needsLogging(command) {
		cfg := loadConfig()
		if err := logger.Init(cfg); err != nil {
			log.Fatalf("Failed to initialize logging: %v", err)
		}
		defer func() {
			err := logger.Close()
			if err != nil {
				log.Fatalf("Failed to close logging: %v", err)
			}
		}()
		logger.LogCommand(os.Args[0], os.Args)
	}

	switch command {
	case "connect":
		connectCommand()
	case "migrate":
		migrateCommand()
	case "migrate:create":
		if len(args) < 1 {
			fmt.Println("Error: migration name required")
			fmt.Println("Usage: go run main.go migrate:create <migration_name>")
			return
		}
		createMigrationCommand(args[0])
	case "migrate:status":
		migrationStatusCommand()
	case "db:info":
		dbInfoCommand()
	case "import":
		if len(args) < 1 {
			fmt.Println("Error: directory path required")
			fmt.Println("Usage: go run main.go import <directory_path>")
			return
		}
		importCommand(args[0])
	case "compute":
		computeCommand(optionalArg(args), jsonOutput)
	case "report":
		if len(args) < 3 {
			fmt.Println("Error: field, start date and end date required")
			fmt.Println("Usage: go run main.go report <field> <YYYY-MM-DD> <YYYY-MM-DD> [csv_file]")
			return
		}
		reportCommand(args[0], args[1], args[2], optionalArg(args[3:]))
	case "export":
		exportCommand(optionalArg(args))
	case "classify":
		if len(args) < 2 {
			fmt.Println("Error: field and value required")
			fmt.Println("Usage: go run main.go classify <field> <value>")
			return
		}
		classifyCommand(args[0], args[1])
	case "help":
		showHelp()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showHelp()
	}
}

// needsLogging determines which commands need logging
func needsLogging(command string) bool {
	loggingCommands := map[string]bool{
		"migrate":        true,
		"migrate:create": true,
		"migrate:status": true,
		"import":         true,
		"connect":        true,
		"compute":        true,
		"report":         true,
		"export":         true,
	}
	return loggingCommands[command]
}

// splitArgs separates the --json flag from positional arguments
func splitArgs(args []string) ([]string, bool) {
	var positional []string
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
			continue
		}
		positional = append(positional, arg)
	}
	return positional, jsonOutput
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func showHelp() {
	fmt.Println("Air Quality Index - Computation and Rollup Tool")
	fmt.Println("")
	fmt.Println("Usage: go run main.go <command> [arguments]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  connect                         Test database connection")
	fmt.Println("  migrate                         Create the readings table and run pending migrations")
	fmt.Println("  migrate:create <name>           Create a new migration file")
	fmt.Println("  migrate:status                  Show migration status")
	fmt.Println("  db:info                         Show database information and stored stations")
	fmt.Println("  import <directory>              Import every reading CSV of a directory (non-recursive)")
	fmt.Println("  compute [csv_file] [--json]     Compute hourly, daily, monthly and wind tables")
	fmt.Println("  report <field> <start> <end>    Statistics of a field over daily rows in a date range")
	fmt.Println("  export [csv_file]               Write the tables workbook and the PDF summary")
	fmt.Println("  classify <field> <value>        Show the health category of a value")
	fmt.Println("  help                            Show this help message")
	fmt.Println("")
	fmt.Println("Without a csv_file, readings come from input.csv_path or, when unset,")
	fmt.Println("from the database rows of input.station.")
	fmt.Println("")
	fmt.Println("Configuration:")
	fmt.Println("  Edit config.yaml (or set AQI_CONFIG) to configure database and pipeline settings")
	fmt.Println("")
	fmt.Println("CSV File Format:")
	fmt.Printf("  Required columns: %s\n", strings.Join(scanner.RequiredColumns(), ","))
	fmt.Println("  Optional columns: station (other columns are ignored)")
	fmt.Printf("  Wind labels: %s\n", strings.Join(aqi.WindDirections(), " "))
	fmt.Println("")
	fmt.Println("Fields:")
	fmt.Println("  AQI PM2.5 PM10 SO2 NO2 CO O3")
}

func loadConfig() *config.Config {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func connectDatabase() (*config.Config, error) {
	cfg := loadConfig()

	_, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return cfg, nil
}

// connectReadings connects and requires a migrated readings table
func connectReadings() (*config.Config, error) {
	cfg := loadConfig()

	if _, err := database.ConnectReadings(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func connectCommand() {
	logger.Println("Testing database connection...")

	cfg, err := connectDatabase()
	if err != nil {
		logger.Fatalf("Connection failed: %v", err)
	}

	logger.Printf("✓ Successfully connected to %s database\n", cfg.Database.Driver)

	// Show connection info
	info := database.GetDatabaseInfo(cfg)
	infoJSON, _ := json.MarshalIndent(info, "", "  ")
	logger.Printf("Connection info: %s\n", infoJSON)
}

func migrateCommand() {
	logger.Println("Running database migrations...")

	cfg, err := connectDatabase()
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	runner := database.NewMigrationRunner(database.GetDB(), cfg)

	if err := runner.RunMigrations(); err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}
}

func createMigrationCommand(name string) {
	logger.Printf("Creating migration: %s\n", name)

	cfg := loadConfig()
	runner := database.NewMigrationRunner(nil, cfg) // Don't need DB connection to create files

	filePath, err := runner.CreateMigration(name)
	if err != nil {
		logger.Fatalf("Failed to create migration: %v", err)
	}

	logger.Printf("✓ Migration created: %s\n", filePath)
}

func migrationStatusCommand() {
	logger.Println("Checking migration status...")

	cfg, err := connectDatabase()
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	runner := database.NewMigrationRunner(database.GetDB(), cfg)

	migrations, err := runner.GetMigrationStatus()
	if err != nil {
		logger.Fatalf("Failed to get migration status: %v", err)
	}

	if len(migrations) == 0 {
		logger.Println("No migrations found")
		return
	}

	rows := make([][]string, 0, len(migrations))
	for _, migration := range migrations {
		status := "Pending"
		if migration.Applied {
			status = "Applied"
		}
		rows = append(rows, []string{migration.Version, migration.Name, status})
	}
	logger.LogTable([]string{"Version", "Name", "Status"}, rows)
}

func dbInfoCommand() {
	fmt.Println("Database Information:")
	fmt.Println(strings.Repeat("=", 50))

	cfg, err := connectDatabase()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	info := database.GetDatabaseInfo(cfg)

	// Display basic database info
	fmt.Printf("Database Type:     %v\n", info["driver"])
	fmt.Printf("Connection Status: %v\n", getConnectionStatusText(info["connected"]))

	// Display database-specific connection details
	switch cfg.Database.Driver {
	case "mysql", "postgres":
		fmt.Printf("Host:              %v\n", info["host"])
		fmt.Printf("Port:              %v\n", info["port"])
		fmt.Printf("Database:          %v\n", info["database"])
	case "sqlite":
		fmt.Printf("File Path:         %v\n", info["path"])
	}

	if info["connected"] != true {
		fmt.Println("\nConnection failed - unable to retrieve detailed information")
		fmt.Println(strings.Repeat("=", 50))
		return
	}

	fmt.Println("\nConnection Pool:")
	fmt.Printf("  Max Connections: %v\n", info["max_open_connections"])
	fmt.Printf("  Open Connections:%v\n", info["open_connections"])
	fmt.Printf("  In Use:          %v\n", info["in_use"])
	fmt.Printf("  Idle:            %v\n", info["idle"])

	if _, ok := info["readings_table"]; !ok {
		fmt.Printf("\nReadings schema: %v\n", info["readings_schema"])
		fmt.Println(strings.Repeat("=", 50))
		return
	}

	stats, err := database.StationStats(database.GetDB())
	if err != nil {
		log.Fatalf("Failed to read station statistics: %v", err)
	}
	fmt.Println("\nStations:")
	if len(stats) == 0 {
		fmt.Println("  (no readings imported)")
	}
	for _, s := range stats {
		fmt.Printf("  %-16s %8d readings  %s to %s\n", s.Station, s.Count, s.First, s.Last)
	}

	fmt.Println(strings.Repeat("=", 50))
}

func getConnectionStatusText(connected interface{}) string {
	if conn, ok := connected.(bool); ok && conn {
		return "✓ Connected"
	}
	return "✗ Disconnected"
}

func scannerOptions(cfg *config.Config) scanner.Options {
	return scanner.Options{
		Station:           cfg.Input.Station,
		AllowUnmappedWind: cfg.AcceptsUnmappedWind(),
	}
}

func importCommand(directoryPath string) {
	logger.Printf("Importing readings from: %s\n", directoryPath)

	cfg, err := connectReadings()
	if err != nil {
		logger.Fatalf("Failed to open readings database: %v", err)
	}

	run := metrics.NewRun(cfg.Input.Station)
	started := time.Now()

	csvScanner := scanner.NewCSVScanner(database.GetDB(), scannerOptions(cfg))
	csvScanner.SetWorkerCount(cfg.Input.Workers)

	results, scanErr := csvScanner.ScanDirectory(directoryPath)
	for _, result := range results {
		if result.Error != nil {
			run.ObserveImport("failed", result.RecordCount)
			continue
		}
		run.ObserveImport("ok", result.RecordCount)
	}
	run.ObserveStage("import", time.Since(started))
	run.Complete(time.Now())
	writeMetrics(cfg, run)

	if scanErr != nil {
		logger.Fatalf("Import failed: %v", scanErr)
	}

	logger.Println("✓ Directory import completed successfully")
}

// loadReadings reads the given CSV file, the configured input file, or the
// stored readings of the configured station, in that order of preference.
func loadReadings(cfg *config.Config, csvPath string) ([]models.Reading, string, error) {
	if csvPath == "" {
		csvPath = cfg.Input.CSVPath
	}

	if csvPath != "" {
		opts := scannerOptions(cfg)
		if opts.Station == "" {
			opts.Station = strings.TrimSuffix(filepath.Base(csvPath), filepath.Ext(csvPath))
		}
		logger.Printf("Loading readings from %s\n", csvPath)
		readings, err := scanner.LoadFile(csvPath, opts)
		if err != nil {
			return nil, "", err
		}
		readings, station, err := scanner.SelectStation(readings, cfg.Input.Station)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", csvPath, err)
		}
		if station == "" {
			station = opts.Station
		}
		return readings, station, nil
	}

	if cfg.Input.Station == "" {
		return nil, "", fmt.Errorf("no input: pass a csv file or set input.csv_path or input.station")
	}
	if _, err := database.ConnectReadings(cfg); err != nil {
		return nil, "", err
	}
	logger.Printf("Loading readings of station %s from the database\n", cfg.Input.Station)
	readings, err := database.LoadReadings(database.GetDB(), cfg.Input.Station)
	if err != nil {
		return nil, "", err
	}
	return readings, cfg.Input.Station, nil
}

// runPipeline derives every table stage by stage, logging and recording each
func runPipeline(readings []models.Reading, run *metrics.Run) rollup.Tables {
	run.ObserveReadings(len(readings))

	var tables rollup.Tables
	stage := func(name string, fn func() int) {
		started := time.Now()
		rows := fn()
		elapsed := time.Since(started)
		logger.LogStage(name, rows, elapsed)
		run.ObserveTable(name, rows)
		run.ObserveStage(name, elapsed)
	}

	stage("hourly", func() int {
		tables.Hourly = rollup.Hourly(readings)
		return len(tables.Hourly)
	})
	stage("daily", func() int {
		tables.Daily = rollup.Daily(tables.Hourly)
		return len(tables.Daily)
	})
	stage("monthly", func() int {
		tables.Monthly = rollup.Monthly(tables.Daily)
		return len(tables.Monthly)
	})
	stage("directional", func() int {
		tables.Directional = rollup.Directional(tables.Hourly)
		return len(tables.Directional.Rows)
	})

	run.ObserveQuality(tables.InvalidHours(), tables.Directional.Unmapped)
	if n := tables.InvalidHours(); n > 0 {
		logger.Warnf("%d hourly rows have no pollutant inside its breakpoint table\n", n)
	}
	if n := tables.Directional.Unmapped; n > 0 {
		logger.Warnf("%d hourly rows have unmapped wind labels: %s\n", n, strings.Join(tables.Directional.UnmappedLabels, ", "))
	}
	return tables
}

func writeMetrics(cfg *config.Config, run *metrics.Run) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := run.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.Errorf("Failed to write metrics textfile: %v\n", err)
		return
	}
	logger.Debugf("Metrics written to %s\n", cfg.Metrics.Textfile)
}

// computeTables loads readings and runs the pipeline for the commands that
// need the derived tables
func computeTables(csvPath string) (*config.Config, string, rollup.Tables) {
	cfg := loadConfig()

	readings, station, err := loadReadings(cfg, csvPath)
	if err != nil {
		logger.Fatalf("Failed to load readings: %v", err)
	}
	logger.Printf("Loaded %d readings for %s\n", len(readings), station)

	run := metrics.NewRun(station)
	tables := runPipeline(readings, run)
	run.Complete(time.Now())
	writeMetrics(cfg, run)

	return cfg, station, tables
}

func formatIndex(value float64, valid bool) string {
	if !valid {
		return "-"
	}
	return strconv.FormatFloat(value, 'f', 1, 64)
}

func computeCommand(csvPath string, jsonOutput bool) {
	logger.Println("Computing AQI tables...")

	_, _, tables := computeTables(csvPath)

	if jsonOutput {
		data, err := json.MarshalIndent(tables, "", "  ")
		if err != nil {
			logger.Fatalf("Failed to encode tables: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	logger.LogDivider()
	logger.Println("Monthly AQI:")
	monthly := make([][]string, 0, len(tables.Monthly))
	for _, row := range tables.Monthly {
		category := "-"
		if row.HasAQI {
			category = aqi.ClassifyIndex(row.AQI).Label
		}
		monthly = append(monthly, []string{
			fmt.Sprintf("%04d-%02d", row.Year, row.Month),
			fmt.Sprintf("%d/%d", row.DaysWithAQI, row.Days),
			formatIndex(row.AQI, row.HasAQI),
			category,
		})
	}
	logger.LogTable([]string{"Month", "Days", "AQI", "Category"}, monthly)

	logger.LogDivider()
	logger.Println("AQI by wind direction:")
	wind := make([][]string, 0, len(tables.Directional.Rows))
	for _, row := range tables.Directional.Rows {
		wind = append(wind, []string{
			row.WindDirection,
			strconv.FormatFloat(row.Degree, 'f', 1, 64),
			strconv.Itoa(row.Count),
			formatIndex(row.AQI, row.HasAQI),
		})
	}
	logger.LogTable([]string{"Wind", "Degree", "Hours", "AQI"}, wind)
	if tables.Directional.Unmapped > 0 {
		logger.Printf("Unmapped: %d\n", tables.Directional.Unmapped)
	}

	logger.LogDivider()
	logger.Println("Dominant pollutant by day:")
	var dominant [][]string
	for _, c := range rollup.DominantCounts(tables.Daily) {
		dominant = append(dominant, []string{string(c.Pollutant), strconv.Itoa(c.Days)})
	}
	logger.LogTable([]string{"Pollutant", "Days"}, dominant)

	logger.LogResult("compute", true, fmt.Sprintf("%d hourly, %d daily, %d monthly, %d wind rows",
		len(tables.Hourly), len(tables.Daily), len(tables.Monthly), len(tables.Directional.Rows)))
}

func reportCommand(field, start, end, csvPath string) {
	logger.Printf("Reporting %s from %s to %s\n", field, start, end)

	if field != rollup.FieldAQI {
		p, err := aqi.ParsePollutant(field)
		if err != nil {
			logger.Fatalf("Invalid field: %v", err)
		}
		field = string(p)
	}
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		logger.Fatalf("Invalid start date %q: %v", start, err)
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		logger.Fatalf("Invalid end date %q: %v", end, err)
	}

	_, _, tables := computeTables(csvPath)

	daily, err := rollup.FilterDaily(tables.Daily, from, to)
	if err != nil {
		logger.Fatalf("Invalid date range: %v", err)
	}
	stats, err := rollup.Describe(daily, field)
	if err != nil {
		logger.Fatalf("Failed to describe %s: %v", field, err)
	}

	logger.LogDivider()
	logger.Printf("%s over %d days (%d with a value)\n", field, len(daily), stats.Count)
	if stats.Count == 0 {
		logger.Println("No data in range")
		return
	}

	var rows [][]string
	for _, s := range []struct {
		name  string
		value float64
	}{{"Max", stats.Max}, {"Mean", stats.Mean}, {"Min", stats.Min}} {
		category, err := aqi.ClassifyField(field, s.value)
		if err != nil {
			logger.Fatalf("Failed to classify %s: %v", field, err)
		}
		rows = append(rows, []string{s.name, strconv.FormatFloat(s.value, 'f', 2, 64), category.Label, category.Color})
	}
	logger.LogTable([]string{"Statistic", "Value", "Category", "Color"}, rows)

	var dominant [][]string
	for _, c := range rollup.DominantCounts(daily) {
		dominant = append(dominant, []string{string(c.Pollutant), strconv.Itoa(c.Days)})
	}
	if len(dominant) > 0 {
		logger.LogDivider()
		logger.LogTable([]string{"Dominant", "Days"}, dominant)
	}
}

func exportCommand(csvPath string) {
	logger.Println("Exporting AQI tables...")

	cfg, station, tables := computeTables(csvPath)
	meta := export.Meta{Station: station, RunID: logger.RunID(), Generated: time.Now()}

	workbook, err := export.BuildTablesXLSX(meta, tables)
	if err != nil {
		logger.Fatalf("Failed to build workbook: %v", err)
	}
	if err := os.WriteFile(cfg.Export.XLSXPath, workbook, 0644); err != nil {
		logger.Fatalf("Failed to write %s: %v", cfg.Export.XLSXPath, err)
	}
	logger.LogResult("xlsx", true, cfg.Export.XLSXPath)

	summary, err := export.BuildSummaryPDF(meta, tables)
	if err != nil {
		logger.Fatalf("Failed to build summary: %v", err)
	}
	if err := os.WriteFile(cfg.Export.PDFPath, summary, 0644); err != nil {
		logger.Fatalf("Failed to write %s: %v", cfg.Export.PDFPath, err)
	}
	logger.LogResult("pdf", true, cfg.Export.PDFPath)
}

func classifyCommand(field, raw string) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Printf("Error: invalid value %q\n", raw)
		return
	}
	category, err := aqi.ClassifyField(field, value)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("%s %s: %s (%s)\n", field, raw, category.Label, category.Color)
}

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"air_quality_index/config"

	"github.com/google/uuid"
)

// Level orders log messages by severity
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[string]Level{
	"debug": DEBUG,
	"info":  INFO,
	"warn":  WARN,
	"error": ERROR,
}

var (
	// Global logger instances
	InfoLogger  *log.Logger
	ErrorLogger *log.Logger
	DebugLogger *log.Logger
	WarnLogger  *log.Logger

	logFile  *os.File
	minLevel = INFO
	runID    string
)

// ParseLevel converts a configured level name; unknown names map to INFO
func ParseLevel(name string) Level {
	if level, ok := levelNames[strings.ToLower(name)]; ok {
		return level
	}
	return INFO
}

// Init opens the configured log file and starts a session with a fresh run id
func Init(cfg *config.Config) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	logPath := cfg.Logging.LogFile
	if !filepath.IsAbs(logPath) {
		logPath = filepath.Join(cwd, logPath)
	}

	logFile, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	if cfg.Logging.LogToConsole {
		setWriters(io.MultiWriter(os.Stdout, logFile), io.MultiWriter(os.Stderr, logFile))
	} else {
		setWriters(logFile, logFile)
	}
	minLevel = ParseLevel(cfg.Logging.LogLevel)
	runID = uuid.NewString()

	InfoLogger.Printf("=== Session %s started at %s ===\n", runID, time.Now().Format("2006-01-02 15:04:05"))
	InfoLogger.Printf("Log file: %s\n", logPath)
	InfoLogger.Printf("Log level: %s\n", cfg.Logging.LogLevel)
	LogDivider()

	return nil
}

// SetOutput routes every level to w, used when no log file is wanted
func SetOutput(w io.Writer, level Level) {
	setWriters(w, w)
	minLevel = level
	if runID == "" {
		runID = uuid.NewString()
	}
}

func setWriters(out, errOut io.Writer) {
	InfoLogger = log.New(out, "", 0)
	DebugLogger = log.New(out, "", 0)
	WarnLogger = log.New(out, "", 0)
	ErrorLogger = log.New(errOut, "", 0)
}

// Close ends the session and closes the log file
func Close() error {
	if logFile == nil {
		return nil
	}
	LogDivider()
	InfoLogger.Printf("=== Session %s ended at %s ===\n\n", runID, time.Now().Format("2006-01-02 15:04:05"))
	err := logFile.Close()
	logFile = nil
	return err
}

// RunID identifies the current session in logs and exported files
func RunID() string {
	return runID
}

func enabled(level Level) bool {
	return level >= minLevel
}

// Printf prints formatted text to log (respects log level)
func Printf(format string, v ...interface{}) {
	if !enabled(INFO) {
		return
	}
	if InfoLogger != nil {
		InfoLogger.Printf(format, v...)
	} else {
		fmt.Printf(format, v...)
	}
}

// Println prints a line to log (respects log level)
func Println(v ...interface{}) {
	if !enabled(INFO) {
		return
	}
	if InfoLogger != nil {
		InfoLogger.Println(v...)
	} else {
		fmt.Println(v...)
	}
}

// Debugf prints formatted debug text
func Debugf(format string, v ...interface{}) {
	if !enabled(DEBUG) {
		return
	}
	if DebugLogger != nil {
		DebugLogger.Printf("DEBUG: "+format, v...)
	} else {
		fmt.Printf("DEBUG: "+format, v...)
	}
}

// Warnf prints formatted warning text
func Warnf(format string, v ...interface{}) {
	if !enabled(WARN) {
		return
	}
	if WarnLogger != nil {
		WarnLogger.Printf("WARN: "+format, v...)
	} else {
		fmt.Printf("WARN: "+format, v...)
	}
}

// Errorf prints formatted error text (always logged regardless of level)
func Errorf(format string, v ...interface{}) {
	if ErrorLogger != nil {
		ErrorLogger.Printf("ERROR: "+format, v...)
	} else {
		fmt.Fprintf(os.Stderr, "ERROR: "+format, v...)
	}
}

// Fatalf prints formatted fatal error and exits (always logged)
func Fatalf(format string, v ...interface{}) {
	if ErrorLogger != nil {
		ErrorLogger.Printf("FATAL: "+format, v...)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: "+format, v...)
	}
	Close()
	os.Exit(1)
}

// LogCommand logs the command being executed
func LogCommand(command string, args []string) {
	if len(args) > 1 {
		Printf("Command executed: %s %v\n", command, args[1:])
		return
	}
	Printf("Command executed: %s\n", command)
}

// LogDivider prints a divider line for better log organization
func LogDivider() {
	Println(strings.Repeat("-", 60))
}

// LogStage logs the completion of a pipeline stage
func LogStage(stage string, rows int, elapsed time.Duration) {
	Printf("Stage %-12s %8d rows  %v\n", stage+":", rows, elapsed)
}

// LogResult logs a result with status
func LogResult(operation string, success bool, details string) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	if details != "" {
		Printf("%s: %s - %s\n", operation, status, details)
		return
	}
	Printf("%s: %s\n", operation, status)
}

// LogProgress logs progress information
func LogProgress(current, total int, item string) {
	Printf("Progress: [%d/%d] %s\n", current, total, item)
}

// LogTable prints rows under a header with columns padded to their widest cell
func LogTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	format := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	Println(format(headers))
	total := 0
	for _, w := range widths {
		total += w
	}
	Println(strings.Repeat("-", total+2*(len(widths)-1)))
	for _, row := range rows {
		Println(format(row))
	}
}

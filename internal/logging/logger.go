// Package logging provides config-driven categorized file-based logging for
// sourcelens. Logs are written to .sourcelens/logs/ with a separate file per
// category. Logging is gated by debug_mode in config — when false, no logs
// are written and the hot path (scanning, parsing, graph building) pays only
// a boolean check.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot      Category = "boot"      // process init, singleton setup
	CategoryScan      Category = "scan"      // workspace scanner, fingerprinting, watch mode
	CategoryParse     Category = "parse"     // per-language parsers, parse cache
	CategoryCallGraph Category = "callgraph" // call graph build/resolution cascade
	CategoryAnalysis  Category = "analysis"  // reachability/taint/error-gap/impact/test-topology
	CategoryPatterns  Category = "patterns"  // pattern aggregation/outliers/confidence
	CategoryStore     Category = "store"     // store, batch writer, reader pool
	CategoryRetention Category = "retention" // retention sweeps
	CategoryReport    Category = "report"    // report renderers
	CategoryCLI       Category = "cli"       // CLI command execution
)

// StructuredLogEntry is the JSON log entry shape used when json_format is
// enabled, for tooling that tails log files.
type StructuredLogEntry struct {
	Timestamp int64                  `json:"ts"`
	Category  string                 `json:"cat"`
	Level     string                 `json:"lvl"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger wraps a standard logger with category-scoped file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

// loggingConfig mirrors config.LoggingConfig's on-disk shape. It is declared
// locally rather than imported from internal/config to keep logging free of
// a dependency on config (config may itself want to log during load).
type loggingConfig struct {
	DebugMode  bool            `json:"debug_mode" yaml:"debug_mode"`
	Categories map[string]bool `json:"categories" yaml:"categories"`
	Level      string          `json:"level" yaml:"level"`
	JSONFormat bool            `json:"json_format" yaml:"json_format"`
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex

	logsDir   string
	workspace string

	config   loggingConfig
	configMu sync.RWMutex
	logLevel = LevelInfo
)

// Log levels, ordered least to most severe.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Initialize sets up the logging directory and loads configuration. Call
// once at process startup with the workspace root.
func Initialize(ws string) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}

	workspace = ws
	logsDir = filepath.Join(workspace, ".sourcelens", "logs")

	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not load config: %v\n", err)
		config.DebugMode = false
	}

	if !config.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== sourcelens logging initialized ===")
	boot.Info("workspace: %s", workspace)
	boot.Info("debug mode: %v, level: %s", config.DebugMode, config.Level)
	return nil
}

// loadConfig reads the "logging" object of .sourcelens/config.json. A
// missing or unparsable config means production mode (logging off), never
// an initialization failure — configuration loading is the sole
// responsibility of internal/config, which logging does not import.
func loadConfig() error {
	configMu.Lock()
	defer configMu.Unlock()

	configPath := filepath.Join(workspace, ".sourcelens", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			config.DebugMode = false
			return nil
		}
		return err
	}

	var wrapper struct {
		Logging loggingConfig `json:"logging"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	config = wrapper.Logging

	switch config.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	return nil
}

// ReloadConfig re-reads configuration from disk, picking up debug_mode or
// category toggles without a process restart.
func ReloadConfig() error { return loadConfig() }

// IsDebugMode reports whether debug logging is enabled.
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

// IsCategoryEnabled reports whether a specific category is enabled. A
// category with no explicit override is enabled whenever debug_mode is on.
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (creating if necessary) the logger for the given category. A
// disabled category gets a no-op logger so callers never need to guard
// calls with IsCategoryEnabled themselves.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) logJSON(level, msg string) {
	entry := StructuredLogEntry{Timestamp: time.Now().UnixMilli(), Category: string(l.category), Level: level, Message: msg}
	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf("[%s] %s", level, msg)
		return
	}
	l.logger.Printf("%s", data)
}

// Debug logs at debug level.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.emit("debug", format, args...)
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.emit("info", format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.emit("warn", format, args...)
}

// Error logs at error level. Errors are always emitted by an active logger
// regardless of configured level.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.emit("error", format, args...)
}

func (l *Logger) emit(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON(level, msg)
		return
	}
	l.logger.Printf("[%s] %s", level, msg)
}

// CloseAll closes every open category log file. Call once at process
// shutdown, after the Batch Writer and Store have stopped.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Timer measures and logs the duration of an operation.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation in the given category.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the elapsed duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs the elapsed duration at info level.
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if the elapsed duration exceeds
// threshold, else logs at debug level. Used for operations with a known
// performance budget (e.g. a single-file parse, a batch flush).
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}

// Boot/BootDebug/BootWarn/BootError are convenience wrappers around
// Get(CategoryBoot), following the teacher's one-liner-per-category idiom.
func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootWarn(format string, args ...interface{})  { Get(CategoryBoot).Warn(format, args...) }
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

func Scan(format string, args ...interface{})      { Get(CategoryScan).Info(format, args...) }
func ScanDebug(format string, args ...interface{}) { Get(CategoryScan).Debug(format, args...) }
func ScanWarn(format string, args ...interface{})  { Get(CategoryScan).Warn(format, args...) }
func ScanError(format string, args ...interface{}) { Get(CategoryScan).Error(format, args...) }

func Parse(format string, args ...interface{})      { Get(CategoryParse).Info(format, args...) }
func ParseDebug(format string, args ...interface{}) { Get(CategoryParse).Debug(format, args...) }
func ParseWarn(format string, args ...interface{})  { Get(CategoryParse).Warn(format, args...) }
func ParseError(format string, args ...interface{}) { Get(CategoryParse).Error(format, args...) }

func CallGraph(format string, args ...interface{})      { Get(CategoryCallGraph).Info(format, args...) }
func CallGraphDebug(format string, args ...interface{}) { Get(CategoryCallGraph).Debug(format, args...) }
func CallGraphWarn(format string, args ...interface{})  { Get(CategoryCallGraph).Warn(format, args...) }
func CallGraphError(format string, args ...interface{}) { Get(CategoryCallGraph).Error(format, args...) }

func Analysis(format string, args ...interface{})      { Get(CategoryAnalysis).Info(format, args...) }
func AnalysisDebug(format string, args ...interface{}) { Get(CategoryAnalysis).Debug(format, args...) }
func AnalysisWarn(format string, args ...interface{})  { Get(CategoryAnalysis).Warn(format, args...) }
func AnalysisError(format string, args ...interface{}) { Get(CategoryAnalysis).Error(format, args...) }

func Patterns(format string, args ...interface{})      { Get(CategoryPatterns).Info(format, args...) }
func PatternsDebug(format string, args ...interface{}) { Get(CategoryPatterns).Debug(format, args...) }
func PatternsWarn(format string, args ...interface{})  { Get(CategoryPatterns).Warn(format, args...) }
func PatternsError(format string, args ...interface{}) { Get(CategoryPatterns).Error(format, args...) }

func Store(format string, args ...interface{})      { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }
func StoreWarn(format string, args ...interface{})  { Get(CategoryStore).Warn(format, args...) }
func StoreError(format string, args ...interface{}) { Get(CategoryStore).Error(format, args...) }

func Retention(format string, args ...interface{})      { Get(CategoryRetention).Info(format, args...) }
func RetentionDebug(format string, args ...interface{}) { Get(CategoryRetention).Debug(format, args...) }
func RetentionWarn(format string, args ...interface{})  { Get(CategoryRetention).Warn(format, args...) }
func RetentionError(format string, args ...interface{}) { Get(CategoryRetention).Error(format, args...) }

func Report(format string, args ...interface{})      { Get(CategoryReport).Info(format, args...) }
func ReportDebug(format string, args ...interface{}) { Get(CategoryReport).Debug(format, args...) }
func ReportWarn(format string, args ...interface{})  { Get(CategoryReport).Warn(format, args...) }
func ReportError(format string, args ...interface{}) { Get(CategoryReport).Error(format, args...) }

func CLI(format string, args ...interface{})      { Get(CategoryCLI).Info(format, args...) }
func CLIDebug(format string, args ...interface{}) { Get(CategoryCLI).Debug(format, args...) }
func CLIWarn(format string, args ...interface{})  { Get(CategoryCLI).Warn(format, args...) }
func CLIError(format string, args ...interface{}) { Get(CategoryCLI).Error(format, args...) }

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetLoggingState() {
	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	config = loggingConfig{}
	logLevel = LevelInfo
}

func TestAllCategoriesLog(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".sourcelens")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {
				"boot": true,
				"scan": true,
				"parse": true,
				"callgraph": true,
				"analysis": true,
				"patterns": true,
				"store": true,
				"retention": true,
				"report": true,
				"cli": true
			}
		}
	}`

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	resetLoggingState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}

	if !IsDebugMode() {
		t.Error("expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot, CategoryScan, CategoryParse, CategoryCallGraph,
		CategoryAnalysis, CategoryPatterns, CategoryStore, CategoryRetention,
		CategoryReport, CategoryCLI,
	}

	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("test info message for %s", cat)
		logger.Debug("test debug message for %s", cat)
		logger.Warn("test warn message for %s", cat)
		logger.Error("test error message for %s", cat)
	}

	Boot("convenience boot log")
	Scan("convenience scan log")
	Parse("convenience parse log")
	CallGraph("convenience callgraph log")
	Analysis("convenience analysis log")
	Patterns("convenience patterns log")
	Store("convenience store log")
	Retention("convenience retention log")
	Report("convenience report log")
	CLI("convenience cli log")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".sourcelens", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("no log file found for category: %s", cat)
		}
	}
}

func TestDebugModeDisabled(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_disabled")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".sourcelens")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": false,
			"categories": {"boot": true, "scan": true}
		}
	}`
	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	resetLoggingState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize logging: %v", err)
	}

	if IsDebugMode() {
		t.Error("expected debug mode to be disabled (production mode)")
	}

	categories := []Category{CategoryBoot, CategoryScan, CategoryParse}
	for _, cat := range categories {
		if IsCategoryEnabled(cat) {
			t.Errorf("category %s should be disabled when debug_mode=false", cat)
		}
	}

	Boot("this should not be logged")
	Scan("this should not be logged")

	logger := Get(CategoryBoot)
	logger.Info("this should not be logged")
	logger.Error("this should not be logged")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".sourcelens", "logs")
	_, err = os.Stat(logsPath)
	if err == nil {
		entries, _ := os.ReadDir(logsPath)
		if len(entries) > 0 {
			t.Errorf("expected no log files in production mode, found %d", len(entries))
		}
	} else if !os.IsNotExist(err) {
		t.Errorf("unexpected stat error: %v", err)
	}
}

func TestCategoryToggle(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_category")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".sourcelens")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {
				"boot": true,
				"scan": true,
				"callgraph": false,
				"analysis": false
			}
		}
	}`
	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	resetLoggingState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	if !IsCategoryEnabled(CategoryBoot) {
		t.Error("boot should be enabled")
	}
	if !IsCategoryEnabled(CategoryScan) {
		t.Error("scan should be enabled")
	}
	if IsCategoryEnabled(CategoryCallGraph) {
		t.Error("callgraph should be disabled")
	}
	if IsCategoryEnabled(CategoryAnalysis) {
		t.Error("analysis should be disabled")
	}
	if !IsCategoryEnabled(CategoryPatterns) {
		t.Error("patterns (not in config) should default to enabled")
	}

	Boot("this should be logged")
	Scan("this should be logged")
	CallGraph("this should not be logged")
	Analysis("this should not be logged")
	Patterns("this should be logged (default enabled)")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".sourcelens", "logs")
	entries, _ := os.ReadDir(logsPath)

	var hasBoot, hasScan, hasCallGraph, hasAnalysis bool
	for _, e := range entries {
		name := e.Name()
		if strings.Contains(name, "boot") {
			hasBoot = true
		}
		if strings.Contains(name, "scan") {
			hasScan = true
		}
		if strings.Contains(name, "callgraph") {
			hasCallGraph = true
		}
		if strings.Contains(name, "analysis") {
			hasAnalysis = true
		}
	}

	if !hasBoot {
		t.Error("expected boot log file")
	}
	if !hasScan {
		t.Error("expected scan log file")
	}
	if hasCallGraph {
		t.Error("should not have callgraph log file (disabled)")
	}
	if hasAnalysis {
		t.Error("should not have analysis log file (disabled)")
	}
}

func TestTimerLogging(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_timer")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".sourcelens")
	os.MkdirAll(configDir, 0755)
	configContent := `{"logging": {"level": "debug", "debug_mode": true}}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0644)

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	timer := StartTimer(CategoryCallGraph, "resolve_cascade")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	if elapsed <= 0 {
		t.Error("timer should have recorded non-zero duration")
	}

	CloseAll()
}

func TestStopWithThreshold(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_threshold")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".sourcelens")
	os.MkdirAll(configDir, 0755)
	configContent := `{"logging": {"level": "debug", "debug_mode": true}}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0644)

	resetLoggingState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}

	timer := StartTimer(CategoryStore, "flush_batch")
	elapsed := timer.StopWithThreshold(time.Hour)
	if elapsed <= 0 {
		t.Error("expected non-zero elapsed duration")
	}

	CloseAll()
}

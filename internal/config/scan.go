package config

// ScanConfig configures the workspace scanner (§4.4).
type ScanConfig struct {
	IgnorePatterns   []string `yaml:"ignore_patterns" json:"ignore_patterns,omitempty"`
	MaxFileSizeBytes int64    `yaml:"max_file_size_bytes" json:"max_file_size_bytes,omitempty"`
	Languages        []string `yaml:"languages" json:"languages,omitempty"`
	ParallelWorkers  int      `yaml:"parallel_workers" json:"parallel_workers,omitempty"`
	WatchDebounceMs  int      `yaml:"watch_debounce_ms" json:"watch_debounce_ms,omitempty"`
}

// DefaultScanConfig returns the scanner defaults.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		IgnorePatterns: []string{
			".git", "node_modules", "vendor", "dist", "build",
			".sourcelens", "target", "__pycache__", ".venv",
		},
		MaxFileSizeBytes: 5 * 1024 * 1024,
		Languages: []string{
			"go", "javascript", "typescript", "python", "rust",
			"java", "c", "cpp", "csharp", "ruby",
		},
		ParallelWorkers: 0, // 0 means GOMAXPROCS
		WatchDebounceMs: 250,
	}
}

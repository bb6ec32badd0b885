package config

// LoggingConfig configures the categorized logger (§10.1).
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`
	JSONFormat bool            `yaml:"json_format" json:"json_format,omitempty"`
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty"`
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"`
}

// DefaultLoggingConfig returns logging defaults: production mode (no file
// logging) unless explicitly enabled.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:     "info",
		DebugMode: false,
	}
}

// IsCategoryEnabled reports whether logging is enabled for a category.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

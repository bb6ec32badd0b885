package config

// RetentionConfig configures the time-based retention tiers (§4.10, §12.3).
type RetentionConfig struct {
	ShortDays  int  `yaml:"short_days" json:"short_days,omitempty"`
	MediumDays int  `yaml:"medium_days" json:"medium_days,omitempty"`
	LongDays   int  `yaml:"long_days" json:"long_days,omitempty"`
	Enabled    bool `yaml:"enabled" json:"enabled,omitempty"`
}

// DefaultRetentionConfig returns the spec's default retention windows.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		ShortDays:  30,
		MediumDays: 90,
		LongDays:   365,
		Enabled:    true,
	}
}

package config

// OutliersConfig configures outlier detection method auto-selection and
// ensemble consensus scoring (§4.8 outlier detection).
type OutliersConfig struct {
	RuleBasedMaxSamples  int     `yaml:"rule_based_max_samples" json:"rule_based_max_samples,omitempty"`
	GrubbsMaxSamples     int     `yaml:"grubbs_max_samples" json:"grubbs_max_samples,omitempty"`
	ESDMaxSamples        int     `yaml:"esd_max_samples" json:"esd_max_samples,omitempty"`
	NormalitySkewLimit   float64 `yaml:"normality_skew_limit" json:"normality_skew_limit,omitempty"`
	NormalityKurtLimit   float64 `yaml:"normality_kurtosis_limit" json:"normality_kurtosis_limit,omitempty"`
	ESDMaxOutliersCap    int     `yaml:"esd_max_outliers_cap" json:"esd_max_outliers_cap,omitempty"`
	EnsembleBoostFactor  float64 `yaml:"ensemble_boost_factor" json:"ensemble_boost_factor,omitempty"`
}

// DefaultOutliersConfig returns the spec's sample-size-dependent method
// selection boundaries: RuleBased (<10), Grubbs-if-normal-else-MAD (10-24),
// GeneralizedESD-if-normal-else-MAD (25-29), ZScore-if-normal-else-IQR
// (>=30); normality = |skewness|<=2 and |excess kurtosis|<=7; ESD
// max_outliers = min(10, ceil(sqrt(n))); ensemble boost =
// min(method_count/2, 1.5).
func DefaultOutliersConfig() OutliersConfig {
	return OutliersConfig{
		RuleBasedMaxSamples: 10,
		GrubbsMaxSamples:    25,
		ESDMaxSamples:       30,
		NormalitySkewLimit:  2.0,
		NormalityKurtLimit:  7.0,
		ESDMaxOutliersCap:   10,
		EnsembleBoostFactor: 1.5,
	}
}

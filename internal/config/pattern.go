package config

// PatternConfig configures pattern aggregation and similarity merging (§4.8).
type PatternConfig struct {
	AutoMergeThreshold float64 `yaml:"auto_merge_threshold" json:"auto_merge_threshold,omitempty"`
	ReviewThreshold    float64 `yaml:"review_threshold" json:"review_threshold,omitempty"`
	MinHashPermutations int    `yaml:"minhash_permutations" json:"minhash_permutations,omitempty"`
	LSHBands           int     `yaml:"lsh_bands" json:"lsh_bands,omitempty"`
	MinOccurrences     int     `yaml:"min_occurrences" json:"min_occurrences,omitempty"`
}

// DefaultPatternConfig returns the spec's default merge thresholds (§4.8:
// >=0.95 auto-merge, 0.85-0.95 flag for review, <0.85 keep separate) and a
// 128-permutation/32-band MinHash LSH profile.
func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		AutoMergeThreshold:  0.95,
		ReviewThreshold:     0.85,
		MinHashPermutations: 128,
		LSHBands:            32,
		MinOccurrences:      3,
	}
}

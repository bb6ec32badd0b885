package config

// StoreConfig configures the SQLite-backed Store (§4.1).
type StoreConfig struct {
	Path            string `yaml:"path" json:"path,omitempty"`
	BusyTimeoutMs   int    `yaml:"busy_timeout_ms" json:"busy_timeout_ms,omitempty"`
	MaxReaderConns  int    `yaml:"max_reader_conns" json:"max_reader_conns,omitempty"`
	BatchMaxRows    int    `yaml:"batch_max_rows" json:"batch_max_rows,omitempty"`
	BatchMaxWaitMs  int    `yaml:"batch_max_wait_ms" json:"batch_max_wait_ms,omitempty"`
	CommandQueueCap int    `yaml:"command_queue_cap" json:"command_queue_cap,omitempty"`
}

// DefaultStoreConfig returns the Store's default pragma/batching profile.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Path:            ".sourcelens/sourcelens.db",
		BusyTimeoutMs:   5000,
		MaxReaderConns:  4,
		BatchMaxRows:    500,
		BatchMaxWaitMs:  100,
		CommandQueueCap: 4096,
	}
}

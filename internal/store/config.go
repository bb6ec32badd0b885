package store

import (
	"time"

	"sourcelens/internal/config"
)

// OptionsFromConfig builds Store.Open options from the loaded StoreConfig,
// keeping the two defaults (here and config.DefaultStoreConfig) from
// drifting apart.
func OptionsFromConfig(cfg config.StoreConfig) []Option {
	return []Option{
		WithBusyTimeout(cfg.BusyTimeoutMs),
		WithMaxReaderConns(cfg.MaxReaderConns),
	}
}

// WriterConfigFromStore builds a WriterConfig from the loaded StoreConfig.
func WriterConfigFromStore(cfg config.StoreConfig, notifier Notifier) WriterConfig {
	return WriterConfig{
		QueueCap: cfg.CommandQueueCap,
		MaxRows:  cfg.BatchMaxRows,
		MaxWait:  time.Duration(cfg.BatchMaxWaitMs) * time.Millisecond,
		Notifier: notifier,
	}
}

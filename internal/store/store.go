// Package store is the relational persistence substrate (§4.1): a single
// SQLite file fronted by one writer connection (owned by the Batch Writer)
// and a bounded pool of read-only reader connections, with a monotonic
// schema migration ladder and tiered retention.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"sourcelens/internal/logging"
	"sourcelens/internal/types"
)

// Store owns the write connection and the reader pool for one SQLite
// database file. Cloud/remote backends are out of scope (§4.1): this is
// always a local file, so Backup copies it, while Export/Import return
// NotSupported.
type Store struct {
	path string

	writerMu sync.Mutex
	writer   *sql.DB // single connection, owned by the Batch Writer

	readers *sql.DB // pooled, read-only connections
}

// Option configures Open.
type Option func(*openConfig)

type openConfig struct {
	busyTimeoutMs  int
	maxReaderConns int
}

// WithBusyTimeout overrides the default SQLITE busy_timeout in milliseconds.
func WithBusyTimeout(ms int) Option {
	return func(c *openConfig) { c.busyTimeoutMs = ms }
}

// WithMaxReaderConns bounds the reader pool's open connection count.
func WithMaxReaderConns(n int) Option {
	return func(c *openConfig) { c.maxReaderConns = n }
}

// Open creates (or reopens) the database at path, applies the pragma
// profile (WAL, synchronous=NORMAL, foreign_keys=ON, a ~20MB page cache,
// mmap) to the writer connection, and runs the migration ladder to the
// current schema version. SQLite shared-cache mode is not enabled.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := openConfig{busyTimeoutMs: 5000, maxReaderConns: 4}
	for _, opt := range opts {
		opt(&cfg)
	}

	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, types.NewError(types.CodeStorage, "Open", fmt.Errorf("create dir: %w", err))
		}
	}

	writer, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, types.NewError(types.CodeStorage, "Open", err)
	}
	writer.SetMaxOpenConns(1)
	writer.SetMaxIdleConns(1)
	if err := applyPragmas(writer, cfg.busyTimeoutMs); err != nil {
		writer.Close()
		return nil, types.NewError(types.CodeStorage, "Open", err)
	}

	if err := migrate(writer); err != nil {
		writer.Close()
		return nil, types.NewError(types.CodeInit, "Open.migrate", err)
	}

	readerDSN := fmt.Sprintf("file:%s?mode=ro&_journal_mode=WAL", path)
	readers, err := sql.Open("sqlite3", readerDSN)
	if err != nil {
		writer.Close()
		return nil, types.NewError(types.CodeStorage, "Open", err)
	}
	readers.SetMaxOpenConns(cfg.maxReaderConns)

	logging.Store("opened store at %s (readers=%d)", path, cfg.maxReaderConns)
	return &Store{path: path, writer: writer, readers: readers}, nil
}

func applyPragmas(db *sql.DB, busyTimeoutMs int) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMs),
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA cache_size = -20000", // ~20MB page cache
		"PRAGMA mmap_size = 268435456",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Path returns the underlying database file path.
func (s *Store) Path() string { return s.path }

// WriterConn exposes the single writer connection to the Batch Writer.
// Only one package (store's own Writer) is expected to call this.
func (s *Store) WriterConn() *sql.DB { return s.writer }

// ReaderConn exposes the pooled read-only connections to the Reader Surface.
func (s *Store) ReaderConn() *sql.DB { return s.readers }

// Close closes both connections.
func (s *Store) Close() error {
	var firstErr error
	if err := s.writer.Close(); err != nil {
		firstErr = err
	}
	if err := s.readers.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Backup copies the database file to dst. Local-file backends support this
// directly; non-local backends must return NotSupported (§4.1, §8.1
// invariant 19) — this implementation is always local, so it succeeds.
func (s *Store) Backup(ctx context.Context, dst string) error {
	timer := logging.StartTimer(logging.CategoryStore, "Backup")
	defer timer.Stop()

	if _, err := s.writer.ExecContext(ctx, "VACUUM INTO ?", dst); err != nil {
		return types.NewError(types.CodeStorage, "Backup", err)
	}
	return nil
}

// Export is NotSupported: this implementation has no non-local backend to
// export from in an interchange format (§4.1, §6, §8.1 invariant 19).
func (s *Store) Export(ctx context.Context, format string) ([]byte, error) {
	return nil, types.NotSupported("Export", "local SQLite backend only supports Backup, not cross-format Export")
}

// Import is NotSupported for the same reason as Export.
func (s *Store) Import(ctx context.Context, data []byte, format string) error {
	return types.NotSupported("Import", "local SQLite backend only supports Backup, not cross-format Import")
}

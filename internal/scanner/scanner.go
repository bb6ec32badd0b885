// Package scanner walks a workspace, fingerprints files, and diffs the
// result against previously-recorded state to drive incremental reparsing
// (§4.4).
package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"sourcelens/internal/logging"
	"sourcelens/internal/types"
)

var defaultIgnoredDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "dist": true,
	"build": true, ".sourcelens": true, "target": true, "__pycache__": true,
	".venv": true, ".idea": true, ".vscode": false, ".github": false,
}

// PreviousState is the subset of Store read access the Scanner needs to
// compute a diff: the last-known FileRecord set for a workspace. Declared
// here (not imported from store) so scanner has no dependency on the
// concrete persistence backend.
type PreviousState interface {
	FileRecords(ctx context.Context) (map[string]types.FileRecord, error)
}

// Scanner walks a workspace directory tree.
type Scanner struct {
	maxFileSize     int64
	ignorePatterns  []string
	parallelWorkers int64
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxFileSize bounds the files the scanner will fingerprint/read.
func WithMaxFileSize(bytes int64) Option {
	return func(s *Scanner) { s.maxFileSize = bytes }
}

// WithIgnorePatterns adds additional directory-name ignore patterns on top
// of the built-in VCS/dependency-directory defaults.
func WithIgnorePatterns(patterns []string) Option {
	return func(s *Scanner) { s.ignorePatterns = patterns }
}

// WithParallelWorkers bounds the concurrent fingerprinting workers. Zero
// (or a negative value) means runtime.GOMAXPROCS(0).
func WithParallelWorkers(n int) Option {
	return func(s *Scanner) { s.parallelWorkers = int64(n) }
}

// New creates a Scanner with the given options.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		maxFileSize:     5 * 1024 * 1024,
		parallelWorkers: 16,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parallelWorkers <= 0 {
		s.parallelWorkers = int64(runtime.GOMAXPROCS(0))
	}
	return s
}

func (s *Scanner) isIgnoredDir(name string) bool {
	if ignored, known := defaultIgnoredDirs[name]; known {
		return ignored
	}
	for _, pattern := range s.ignorePatterns {
		if pattern == name {
			return true
		}
	}
	return strings.HasPrefix(name, ".") && name != "."
}

// Walk discovers every regular file under root, skipping ignored
// directories, and fingerprints each one in parallel bounded by
// parallelWorkers. Errors fingerprinting an individual file are logged and
// that file is skipped rather than failing the whole walk.
func (s *Scanner) Walk(ctx context.Context, root string) ([]types.FileRecord, error) {
	timer := logging.StartTimer(logging.CategoryScan, "walk")
	defer timer.Stop()

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if s.isIgnoredDir(info.Name()) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Size() > s.maxFileSize {
			logging.ScanWarn("skipping oversized file: %s (%d bytes)", path, info.Size())
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]types.FileRecord, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(s.parallelWorkers)

	var mu sync.Mutex
	var skipped int

	for i, path := range paths {
		i, path := i, path
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			info, err := os.Stat(path)
			if err != nil {
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			fp, err := ContentFingerprint(path)
			if err != nil {
				logging.ScanWarn("fingerprint failed for %s: %v", path, err)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			records[i] = types.FileRecord{
				Path:          path,
				Language:      DetectLanguage(path),
				Size:          info.Size(),
				ContentFp:     fp,
				MTimeSec:      info.ModTime().Unix(),
				MTimeNsec:     int64(info.ModTime().Nanosecond()),
				LastScannedAt: time.Now(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := records[:0]
	for _, r := range records {
		if r.Path != "" {
			out = append(out, r)
		}
	}

	logging.Scan("walked %s: %d files, %d skipped", root, len(out), skipped)
	return out, nil
}

// Diff partitions a fresh Walk result against previously-recorded state,
// matching by path and comparing ContentFp (not mtime — a touched-but-
// unchanged file must not trigger reparsing).
func Diff(previous map[string]types.FileRecord, current []types.FileRecord) types.ScanDiff {
	diff := types.ScanDiff{}
	seen := make(map[string]bool, len(current))

	for _, rec := range current {
		seen[rec.Path] = true
		prev, existed := previous[rec.Path]
		switch {
		case !existed:
			diff.Added = append(diff.Added, rec)
		case prev.ContentFp != rec.ContentFp:
			diff.Modified = append(diff.Modified, rec)
		default:
			diff.Unchanged = append(diff.Unchanged, rec)
		}
	}

	for path := range previous {
		if !seen[path] {
			diff.Removed = append(diff.Removed, path)
		}
	}

	return diff
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sourcelens/internal/types"
)

func TestRetentionRemovesExpiredShortTierRows(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	defer w.Shutdown()

	w.Enqueue(&Command{Kind: CmdUpsertFileMetadata, Files: []types.FileRecord{
		{Path: "a.go", Language: types.LangGo, LastScannedAt: time.Now()},
	}})
	w.Enqueue(&Command{Kind: CmdInsertDetections, Detections: []types.Detection{
		{File: "a.go", Line: 1, PatternID: "p1", Category: "auth", Confidence: 0.9},
	}})
	require.NoError(t, w.FlushSync())

	// Backdate the row past the short-tier window directly; the writer
	// always stamps created_at = now, so retention correctness needs an
	// artificially aged row to exercise the cutoff.
	old := time.Now().Add(-40 * 24 * time.Hour).UnixMilli()
	_, err := s.WriterConn().Exec(`UPDATE detections SET created_at = ?`, old)
	require.NoError(t, err)

	report, err := RunRetention(s.WriterConn(), types.DefaultRetentionWindows())
	require.NoError(t, err)
	require.EqualValues(t, 1, report.Removed["detections"])

	var n int
	require.NoError(t, s.ReaderConn().QueryRow(`SELECT COUNT(*) FROM detections`).Scan(&n))
	require.Equal(t, 0, n)
}

func TestRetentionKeepsRowsWithinWindow(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	defer w.Shutdown()

	// a.go must exist in file_metadata, or orphan cleanup removes the row.
	w.Enqueue(&Command{Kind: CmdUpsertFileMetadata, Files: []types.FileRecord{
		{Path: "a.go", Language: types.LangGo, LastScannedAt: time.Now()},
	}})
	w.Enqueue(&Command{Kind: CmdInsertDetections, Detections: []types.Detection{
		{File: "a.go", Line: 1, PatternID: "p1", Category: "auth", Confidence: 0.9},
	}})
	require.NoError(t, w.FlushSync())

	report, err := RunRetention(s.WriterConn(), types.DefaultRetentionWindows())
	require.NoError(t, err)
	require.EqualValues(t, 0, report.Removed["detections"])
}

func TestRetentionOrphanCleanupAnchoredOnFileMetadata(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	defer w.Shutdown()

	w.Enqueue(&Command{Kind: CmdInsertFunctions, Functions: []FunctionRow{
		{ID: 1, Fn: types.Function{File: "gone.go", Name: "f"}},
	}})
	require.NoError(t, w.FlushSync())

	report, err := RunRetention(s.WriterConn(), types.DefaultRetentionWindows())
	require.NoError(t, err)
	require.EqualValues(t, 1, report.Removed["functions"])

	var n int
	require.NoError(t, s.ReaderConn().QueryRow(`SELECT COUNT(*) FROM functions`).Scan(&n))
	require.Equal(t, 0, n)
}

func TestRetentionLeavesSelfBoundingTablesAlone(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	defer w.Shutdown()

	w.Enqueue(&Command{Kind: CmdInsertPatternConfidence, PatternConfidences: []types.PatternConfidence{
		{PatternID: "p1", Alpha: 2, Beta: 1, PosteriorMean: 0.66, Tier: types.TierEmerging, LastUpdated: time.Now().Add(-999 * 24 * time.Hour)},
	}})
	require.NoError(t, w.FlushSync())

	report, err := RunRetention(s.WriterConn(), types.DefaultRetentionWindows())
	require.NoError(t, err)
	_, touched := report.Removed["pattern_confidence"]
	require.False(t, touched)

	v, ok := NewReader(s.ReaderConn()).PatternConfidence(context.Background(), "p1")
	require.True(t, ok)
	require.InDelta(t, 0.66, v, 1e-9)
}

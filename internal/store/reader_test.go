package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sourcelens/internal/types"
)

func seedConfidence(t *testing.T, w *Writer, ids ...string) {
	t.Helper()
	var rows []types.PatternConfidence
	for _, id := range ids {
		rows = append(rows, types.PatternConfidence{
			PatternID: id, Alpha: 5, Beta: 2, PosteriorMean: 0.7,
			Tier: types.TierEstablished, Momentum: types.MomentumStable, LastUpdated: time.Now(),
		})
	}
	w.Enqueue(&Command{Kind: CmdInsertPatternConfidence, PatternConfidences: rows})
	require.NoError(t, w.FlushSync())
}

func TestQueryConfidenceByTierPaginatesByKeyset(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	defer w.Shutdown()
	seedConfidence(t, w, "p1", "p2", "p3", "p4", "p5")

	r := NewReader(s.ReaderConn())
	ctx := context.Background()

	page1, cursor1, err := r.QueryConfidenceByTier(ctx, types.TierEstablished, "", 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Equal(t, "p1", page1[0].PatternID)
	require.Equal(t, "p2", page1[1].PatternID)
	require.Equal(t, "p2", cursor1)

	page2, cursor2, err := r.QueryConfidenceByTier(ctx, types.TierEstablished, cursor1, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.Equal(t, "p3", page2[0].PatternID)
	require.Equal(t, "p4", page2[1].PatternID)

	page3, cursor3, err := r.QueryConfidenceByTier(ctx, types.TierEstablished, cursor2, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	require.Equal(t, "p5", page3[0].PatternID)
	require.Empty(t, cursor3)
}

func TestListViolationsExcludesSuppressedByDefault(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	defer w.Shutdown()

	w.Enqueue(&Command{Kind: CmdInsertViolations, Violations: []types.Violation{
		{ID: "v1", File: "a.go", Line: 1, Severity: "high", Suppressed: false},
		{ID: "v2", File: "a.go", Line: 2, Severity: "high", Suppressed: true},
	}})
	require.NoError(t, w.FlushSync())

	r := NewReader(s.ReaderConn())
	visible, err := r.ListViolations(context.Background(), ViolationFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, "v1", visible[0].ID)

	all, err := r.ListViolations(context.Background(), ViolationFilter{IncludeSuppressed: true})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestEvidenceAccessorsReturnUnconfiguredWhenAbsent(t *testing.T) {
	s := openTestStore(t)
	r := NewReader(s.ReaderConn())
	ctx := context.Background()

	_, ok := r.PatternConfidence(ctx, "missing")
	require.False(t, ok)

	_, ok = r.CouplingMetricFor(ctx, "missing")
	require.False(t, ok)

	_, ok = r.LatestScanTimestamp(ctx)
	require.False(t, ok)
}

func TestEvidenceTaintFlowRiskReflectsUnsanitizedMax(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	defer w.Shutdown()

	w.Enqueue(&Command{Kind: CmdInsertTaintFlows, TaintFlows: []types.TaintFlow{
		{SourceFile: "a.go", SinkFile: "a.go", Confidence: 0.3, Sanitized: true},
		{SourceFile: "a.go", SinkFile: "a.go", Confidence: 0.8, Sanitized: false},
	}})
	require.NoError(t, w.FlushSync())

	risk, ok := NewReader(s.ReaderConn()).TaintFlowRisk(context.Background(), "a.go")
	require.True(t, ok)
	require.InDelta(t, 0.8, risk, 1e-9)
}

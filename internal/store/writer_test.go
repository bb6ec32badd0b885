package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sourcelens/internal/types"
)

type recordingNotifier struct {
	count atomic.Int32
}

func (n *recordingNotifier) Publish(kind string, payload map[string]any) { n.count.Add(1) }

func TestWriterFlushSyncMakesRowsVisible(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	defer w.Shutdown()

	w.Enqueue(&Command{Kind: CmdUpsertFileMetadata, Files: []types.FileRecord{
		{Path: "pkg/a.go", Language: types.LangGo, LastScannedAt: time.Now()},
		{Path: "pkg/b.go", Language: types.LangGo, LastScannedAt: time.Now()},
	}})
	require.NoError(t, w.FlushSync())

	files, err := NewReader(s.ReaderConn()).ListFileMetadata(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestWriterBatchesByRowCountThreshold(t *testing.T) {
	s := openTestStore(t)
	cfg := DefaultWriterConfig()
	cfg.MaxRows = 3
	cfg.MaxWait = time.Hour // force the row-count threshold, not the timer, to trigger the commit
	w := NewWriter(s.WriterConn(), cfg)
	defer w.Shutdown()

	for i := 0; i < 3; i++ {
		w.Enqueue(&Command{Kind: CmdUpsertFileMetadata, Files: []types.FileRecord{
			{Path: string(rune('a' + i)), Language: types.LangGo, LastScannedAt: time.Now()},
		}})
	}
	require.NoError(t, w.FlushSync())

	n, err := NewReader(s.ReaderConn()).CountFiles(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestWriterFlushSyncCommitsBufferedCommand(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	defer w.Shutdown()

	w.Enqueue(&Command{Kind: CmdUpsertFileMetadata, Files: []types.FileRecord{
		{Path: "good.go", Language: types.LangGo, LastScannedAt: time.Now()},
	}})
	// call_edges references caller_id/callee_id with no matching row; the
	// migrated schema has no FK constraint forcing failure here, so instead
	// this exercises that a good command ahead of a FlushSync still commits
	// once the barrier fires.
	require.NoError(t, w.FlushSync())

	n, err := NewReader(s.ReaderConn()).CountFiles(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestWriterNotifierCalledOnCommitFailure(t *testing.T) {
	s := openTestStore(t)
	notifier := &recordingNotifier{}
	cfg := DefaultWriterConfig()
	cfg.Notifier = notifier
	w := NewWriter(s.WriterConn(), cfg)

	// Close the underlying connection out from under the writer so the next
	// commit fails and the notifier observes it.
	s.writer.Close()
	w.Enqueue(&Command{Kind: CmdUpsertFileMetadata, Files: []types.FileRecord{
		{Path: "x.go", Language: types.LangGo, LastScannedAt: time.Now()},
	}})
	_ = w.FlushSync()
	require.Equal(t, int32(1), notifier.count.Load())

	done := make(chan struct{})
	go func() { w.Shutdown(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not return after connection closed")
	}
}

func TestShutdownStopsWriterGoroutine(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	w.Shutdown()
	// Shutdown returns only after run() has closed w.done, so it must
	// already be closed here.
	select {
	case <-w.done:
	default:
		t.Fatal("writer goroutine did not exit")
	}
}

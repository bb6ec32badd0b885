package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sourcelens/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// sqlite3's driver keeps a small pool of idle background goroutines
		// alive between tests; only leaks from this package's own code matter.
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionResetter"),
	)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestOpenRunsMigrationsToCurrentVersion(t *testing.T) {
	s := openTestStore(t)
	v, err := schemaVersion(s.WriterConn())
	require.NoError(t, err)
	require.Equal(t, CurrentSchemaVersion, v)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	v, err := schemaVersion(s2.WriterConn())
	require.NoError(t, err)
	require.Equal(t, CurrentSchemaVersion, v)
}

func TestBackupCreatesReadableCopy(t *testing.T) {
	s := openTestStore(t)
	w := NewWriter(s.WriterConn(), DefaultWriterConfig())
	defer w.Shutdown()

	w.Enqueue(&Command{Kind: CmdUpsertFileMetadata, Files: []types.FileRecord{
		{Path: "a.go", Language: types.LangGo, Size: 10, LastScannedAt: time.Now()},
	}})
	require.NoError(t, w.FlushSync())

	dst := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, s.Backup(context.Background(), dst))

	backup, err := Open(dst)
	require.NoError(t, err)
	defer backup.Close()

	rec, err := NewReader(backup.ReaderConn()).GetFileMetadata(context.Background(), "a.go")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "a.go", rec.Path)
}

func TestExportImportAreNotSupported(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Export(context.Background(), "json")
	require.Error(t, err)
	require.True(t, types.IsNotSupported(err))

	err = s.Import(context.Background(), []byte("{}"), "json")
	require.Error(t, err)
	require.True(t, types.IsNotSupported(err))
}

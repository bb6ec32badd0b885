package store

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func TestMigrateCreatesAllVersionedTables(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "mig.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, migrate(db))

	tables := []string{
		"file_metadata", "parse_cache", "functions", "call_edges", "detections",
		"aggregated_patterns", "pattern_confidence", "outliers", "conventions",
		"boundaries", "reachability_cache", "taint_flows", "error_gaps",
		"impact_scores", "test_quality", "scan_history", "violations",
		"gate_results", "degradation_alerts", "coupling_metrics", "coupling_cycles",
		"wrappers", "crypto_findings", "dna_genes", "dna_mutations", "secrets",
		"constants", "env_variables", "owasp_findings", "decomposition_decisions",
		"contracts", "contract_mismatches", "data_access",
	}
	for _, tbl := range tables {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, tbl).Scan(&name)
		require.NoErrorf(t, err, "table %s should exist after migration", tbl)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "mig2.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, migrate(db))
	require.NoError(t, migrate(db)) // rerunning must not error or duplicate the version row

	v, err := schemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, CurrentSchemaVersion, v)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM schema_version`).Scan(&count))
	require.Equal(t, 1, count)
}

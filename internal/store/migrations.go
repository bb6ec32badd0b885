package store

import (
	"database/sql"
	"fmt"

	"sourcelens/internal/logging"
)

// CurrentSchemaVersion is the schema ladder's head version (§4.1: "≥7 at
// the time of this spec"). Each migration is idempotent on reapply: it
// checks the recorded version before executing DDL and bumps the version
// inside the same transaction.
const CurrentSchemaVersion = 7

type migrationFunc func(*sql.Tx) error

var migrations = []migrationFunc{
	migrateV1FileAndParseCache,
	migrateV2FunctionsAndCallEdges,
	migrateV3PatternsAndBoundaries,
	migrateV4GraphAnalyses,
	migrateV5EnforcementAndScanHistory,
	migrateV6Structural,
	migrateV7DataAccess,
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := schemaVersion(db)
	if err != nil {
		return err
	}

	for i := current; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := migrations[i](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration v%d: %w", i+1, err)
		}
		if _, err := tx.Exec(`DELETE FROM schema_version`); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		logging.StoreDebug("applied migration v%d", i+1)
	}
	return nil
}

func schemaVersion(db *sql.DB) (int, error) {
	row := db.QueryRow(`SELECT version FROM schema_version LIMIT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

func migrateV1FileAndParseCache(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS file_metadata (
			path TEXT PRIMARY KEY,
			language TEXT,
			size INTEGER,
			content_fp INTEGER,
			mtime_sec INTEGER,
			mtime_nsec INTEGER,
			last_scanned_at INTEGER,
			scan_duration_ns INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS parse_cache (
			content_fp INTEGER,
			language TEXT,
			facts_json TEXT,
			PRIMARY KEY (content_fp, language)
		)`,
	}
	return execAll(tx, stmts)
}

func migrateV2FunctionsAndCallEdges(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS functions (
			id INTEGER PRIMARY KEY,
			file TEXT,
			name TEXT,
			qualified_name TEXT,
			language TEXT,
			start_line INTEGER,
			end_line INTEGER,
			params_json TEXT,
			return_type TEXT,
			exported INTEGER,
			async INTEGER,
			decorators_json TEXT,
			body_hash INTEGER,
			signature_hash INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_functions_file ON functions(file)`,
		`CREATE TABLE IF NOT EXISTS call_edges (
			caller_id INTEGER,
			callee_id INTEGER,
			call_site INTEGER,
			strategy TEXT,
			confidence REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_call_edges_caller ON call_edges(caller_id)`,
		`CREATE INDEX IF NOT EXISTS idx_call_edges_callee ON call_edges(callee_id)`,
	}
	return execAll(tx, stmts)
}

func migrateV3PatternsAndBoundaries(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS detections (
			file TEXT, line INTEGER, column INTEGER, pattern_id TEXT, category TEXT,
			confidence REAL, method TEXT, cwe_ids TEXT, owasp TEXT, matched_text TEXT,
			created_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_detections_pattern ON detections(pattern_id)`,
		`CREATE TABLE IF NOT EXISTS aggregated_patterns (
			pattern_id TEXT PRIMARY KEY, parent_id TEXT, child_ids TEXT, locations TEXT,
			location_count INTEGER, outlier_count INTEGER, file_spread INTEGER,
			merged_from TEXT, aliases TEXT, confidence_mean REAL, confidence_stddev REAL,
			confidence_values TEXT, dirty INTEGER, location_hash INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS pattern_confidence (
			pattern_id TEXT PRIMARY KEY, alpha REAL, beta REAL, posterior_mean REAL,
			credible_low REAL, credible_high REAL, tier TEXT, momentum TEXT, last_updated INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS outliers (
			pattern_id TEXT, file TEXT, line INTEGER, idx INTEGER, deviation_score REAL,
			significance TEXT, method TEXT, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS conventions (
			pattern_id TEXT, category TEXT, scope TEXT, dominance_ratio REAL, status TEXT,
			discovered_at INTEGER, last_seen INTEGER, expires_at INTEGER,
			PRIMARY KEY (pattern_id, scope)
		)`,
		`CREATE TABLE IF NOT EXISTS boundaries (
			file TEXT, framework TEXT, model TEXT, tbl TEXT, field TEXT,
			sensitivity TEXT, confidence REAL
		)`,
	}
	return execAll(tx, stmts)
}

func migrateV4GraphAnalyses(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS reachability_cache (
			source INTEGER, direction TEXT, reachable TEXT, sensitivity TEXT,
			PRIMARY KEY (source, direction)
		)`,
		`CREATE TABLE IF NOT EXISTS taint_flows (
			source_file TEXT, source_line INTEGER, source_type TEXT,
			sink_file TEXT, sink_line INTEGER, sink_type TEXT,
			cwe_id INTEGER, sanitized INTEGER, path TEXT, confidence REAL, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS error_gaps (
			file TEXT, function_id INTEGER, kind TEXT, error_type TEXT,
			propagation_chain TEXT, framework TEXT, cwe_id INTEGER, severity TEXT, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS impact_scores (
			function_id INTEGER PRIMARY KEY, blast_radius INTEGER, risk_score REAL,
			is_dead_code INTEGER, dead_code_reason TEXT, exclusion_category TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS test_quality (
			function_id INTEGER PRIMARY KEY, coverage_breadth REAL, coverage_depth REAL,
			assertion_density REAL, mock_ratio REAL, isolation REAL, freshness REAL,
			stability REAL, overall REAL, smells TEXT
		)`,
	}
	return execAll(tx, stmts)
}

func migrateV5EnforcementAndScanHistory(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT, started_at INTEGER, completed_at INTEGER,
			root TEXT, added INTEGER, modified INTEGER, removed INTEGER, unchanged INTEGER,
			duration_ns INTEGER, status TEXT, error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS violations (
			id TEXT PRIMARY KEY, file TEXT, line INTEGER, column INTEGER, end_line INTEGER,
			end_column INTEGER, severity TEXT, pattern_id TEXT, rule_id TEXT, message TEXT,
			quick_fix_strategy TEXT, quick_fix_description TEXT, cwe_id INTEGER,
			owasp_category TEXT, suppressed INTEGER, is_new INTEGER, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS gate_results (
			gate_id TEXT, status TEXT, passed INTEGER, score REAL, summary TEXT,
			violation_count INTEGER, warning_count INTEGER, execution_time_ns INTEGER,
			details TEXT, error TEXT, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS degradation_alerts (
			alert_type TEXT, severity TEXT, message TEXT, current_value REAL,
			previous_value REAL, delta REAL, created_at INTEGER
		)`,
	}
	return execAll(tx, stmts)
}

func migrateV6Structural(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS coupling_metrics (
			module TEXT PRIMARY KEY, ce INTEGER, ca INTEGER, instability REAL,
			abstractness REAL, distance REAL, zone TEXT, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS coupling_cycles (
			id INTEGER PRIMARY KEY AUTOINCREMENT, members TEXT, break_suggestion TEXT, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS wrappers (
			name TEXT, file TEXT, line INTEGER, category TEXT, wrapped_primitives TEXT,
			framework TEXT, confidence REAL, multi_primitive INTEGER, exported INTEGER,
			usage_count INTEGER, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS crypto_findings (
			file TEXT, line INTEGER, category TEXT, description TEXT, code TEXT,
			confidence REAL, cwe_id INTEGER, owasp TEXT, remediation TEXT, language TEXT, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS dna_genes (
			gene_id TEXT PRIMARY KEY, name TEXT, description TEXT, dominant_allele TEXT,
			alleles TEXT, confidence REAL, consistency REAL, exemplars TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS dna_mutations (
			id TEXT PRIMARY KEY, file TEXT, line INTEGER, gene_id TEXT, allele TEXT, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS secrets (
			file TEXT, line INTEGER, category TEXT, confidence REAL, redacted TEXT, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS constants (
			file TEXT, line INTEGER, name TEXT, value TEXT, is_magic INTEGER, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS env_variables (
			file TEXT, line INTEGER, name TEXT, has_default INTEGER, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS owasp_findings (
			file TEXT, line INTEGER, category TEXT, cwe_id INTEGER, confidence REAL,
			remediation TEXT, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS decomposition_decisions (
			file TEXT, symbol TEXT, reason TEXT, suggested_split TEXT, confidence REAL, created_at INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS contracts (
			file TEXT, method TEXT, path TEXT, request_shape TEXT, response_shape TEXT,
			framework TEXT, created_at INTEGER,
			PRIMARY KEY (file, method, path)
		)`,
		`CREATE TABLE IF NOT EXISTS contract_mismatches (
			backend_file TEXT, frontend_file TEXT, path TEXT, kind TEXT, description TEXT, created_at INTEGER
		)`,
	}
	return execAll(tx, stmts)
}

func migrateV7DataAccess(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS data_access (
			function_id INTEGER, tbl TEXT, operation TEXT, framework TEXT, line INTEGER, confidence REAL
		)`,
	}
	return execAll(tx, stmts)
}

func execAll(tx *sql.Tx, stmts []string) error {
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
	}
	return nil
}

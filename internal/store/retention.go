package store

import (
	"database/sql"
	"time"

	"sourcelens/internal/logging"
	"sourcelens/internal/types"
)

// RetentionReport summarizes one retention pass, per-table row counts
// removed.
type RetentionReport struct {
	Removed map[string]int64
	RanAt   time.Time
}

// timeTieredTables lists every table governed by a time-window tier along
// with the column a row's age is measured from (§4.10/§12.3). Reference and
// self-bounding tables are excluded deliberately: Reference rows are never
// time-expired (they are the orphan-cleanup anchor), and self-bounding
// tables are kept bounded by their own unique keys instead of age.
var timeTieredTables = map[types.RetentionTier][]struct {
	table  string
	column string
}{
	types.TierShort: {
		{"detections", "created_at"},
		{"outliers", "created_at"},
		{"taint_flows", "created_at"},
		{"error_gaps", "created_at"},
		{"secrets", "created_at"},
		{"constants", "created_at"},
		{"env_variables", "created_at"},
		{"owasp_findings", "created_at"},
		{"wrappers", "created_at"},
		{"crypto_findings", "created_at"},
		{"degradation_alerts", "created_at"},
	},
	types.TierMedium: {
		{"coupling_metrics", "created_at"},
		{"coupling_cycles", "created_at"},
		{"decomposition_decisions", "created_at"},
		{"dna_mutations", "created_at"},
		{"contract_mismatches", "created_at"},
		{"gate_results", "created_at"},
	},
	types.TierLong: {
		{"scan_history", "started_at"},
		{"violations", "created_at"},
		{"contracts", "created_at"},
	},
}

// RunRetention executes the tiered retention pass atomically in a single
// transaction (§4.10, §8.1 invariant 15): rows older than their tier's
// window are deleted, then orphan cleanup removes rows of the file-scoped
// tables (functions among them) whose file no longer exists in
// file_metadata (the Reference tier anchor), and call_edges rows whose
// caller or callee function is gone. Self-bounding tables
// (aggregated_patterns, pattern_confidence, conventions,
// reachability_cache, impact_scores, test_quality, parse_cache, dna_genes)
// are left alone — they are kept bounded by their own unique keys, not by
// age — and data_access is neither time-expired nor orphan-cleaned.
func RunRetention(db *sql.DB, windows types.RetentionWindows) (RetentionReport, error) {
	timer := logging.StartTimer(logging.CategoryRetention, "RunRetention")
	defer timer.Stop()

	report := RetentionReport{Removed: make(map[string]int64)}

	tx, err := db.Begin()
	if err != nil {
		return report, err
	}
	defer tx.Rollback()

	now := time.Now()
	cutoffs := map[types.RetentionTier]int64{
		types.TierShort:  now.Add(-windows.Short()).UnixMilli(),
		types.TierMedium: now.Add(-windows.Medium()).UnixMilli(),
		types.TierLong:   now.Add(-windows.Long()).UnixMilli(),
	}

	for tier, tables := range timeTieredTables {
		cutoff := cutoffs[tier]
		for _, t := range tables {
			res, err := tx.Exec(`DELETE FROM `+t.table+` WHERE `+t.column+` < ?`, cutoff)
			if err != nil {
				return report, err
			}
			n, _ := res.RowsAffected()
			report.Removed[t.table] += n
		}
	}

	orphanTables := []string{
		"functions", "detections", "outliers", "error_gaps", "violations",
		"boundaries", "wrappers", "crypto_findings", "secrets", "constants", "env_variables",
		"owasp_findings", "decomposition_decisions", "contracts", "dna_mutations",
	}
	for _, t := range orphanTables {
		res, err := tx.Exec(`DELETE FROM ` + t + ` WHERE file NOT IN (SELECT path FROM file_metadata)`)
		if err != nil {
			return report, err
		}
		n, _ := res.RowsAffected()
		report.Removed[t] += n
	}

	// call_edges has no file column of its own; it is orphaned through its
	// endpoints' functions rows instead.
	res, err := tx.Exec(`DELETE FROM call_edges
		WHERE caller_id NOT IN (SELECT id FROM functions) OR callee_id NOT IN (SELECT id FROM functions)`)
	if err != nil {
		return report, err
	}
	n, _ := res.RowsAffected()
	report.Removed["call_edges"] += n

	if err := tx.Commit(); err != nil {
		return report, err
	}
	report.RanAt = now
	logging.Retention("retention pass complete, %d tables touched", len(report.Removed))
	return report, nil
}

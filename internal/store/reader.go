package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"sourcelens/internal/types"
)

// Reader is the Store's read-only surface (§4.9), backed by the pooled
// reader connections. Every method is safe for concurrent use; none ever
// touches the writer connection, so reads never block on or are blocked by
// the Batch Writer's transactions beyond SQLite's own WAL snapshot rules.
type Reader struct {
	db *sql.DB
}

// NewReader wraps a Store's reader pool. Call Store.ReaderConn() to obtain db.
func NewReader(db *sql.DB) *Reader { return &Reader{db: db} }

// --- Files group -----------------------------------------------------------

func (r *Reader) GetFileMetadata(ctx context.Context, path string) (*types.FileRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT path, language, size, content_fp, mtime_sec, mtime_nsec,
		last_scanned_at, scan_duration_ns FROM file_metadata WHERE path = ?`, path)
	var f types.FileRecord
	var lang string
	var scannedAt, durNs int64
	if err := row.Scan(&f.Path, &lang, &f.Size, &f.ContentFp, &f.MTimeSec, &f.MTimeNsec, &scannedAt, &durNs); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, types.NewError(types.CodeStorage, "GetFileMetadata", err)
	}
	f.Language = types.Language(lang)
	f.LastScannedAt = time.UnixMilli(scannedAt)
	f.ScanDuration = time.Duration(durNs)
	return &f, nil
}

func (r *Reader) ListFileMetadata(ctx context.Context) ([]types.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT path, language, size, content_fp, mtime_sec, mtime_nsec,
		last_scanned_at, scan_duration_ns FROM file_metadata ORDER BY path`)
	if err != nil {
		return nil, types.NewError(types.CodeStorage, "ListFileMetadata", err)
	}
	defer rows.Close()
	var out []types.FileRecord
	for rows.Next() {
		var f types.FileRecord
		var lang string
		var scannedAt, durNs int64
		if err := rows.Scan(&f.Path, &lang, &f.Size, &f.ContentFp, &f.MTimeSec, &f.MTimeNsec, &scannedAt, &durNs); err != nil {
			return nil, err
		}
		f.Language = types.Language(lang)
		f.LastScannedAt = time.UnixMilli(scannedAt)
		f.ScanDuration = time.Duration(durNs)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Reader) CountFiles(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_metadata`).Scan(&n)
	return n, err
}

// --- Analysis group ----------------------------------------------------------

func (r *Reader) GetReachability(ctx context.Context, source types.FunctionID, direction string) (*types.ReachabilityEntry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT source, direction, reachable, sensitivity
		FROM reachability_cache WHERE source = ? AND direction = ?`, source, direction)
	var e types.ReachabilityEntry
	var reachableJSON, sensitivity string
	if err := row.Scan(&e.Source, &e.Direction, &reachableJSON, &sensitivity); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, types.NewError(types.CodeStorage, "GetReachability", err)
	}
	e.Sensitivity = types.SensitivityClass(sensitivity)
	_ = json.Unmarshal([]byte(reachableJSON), &e.Reachable)
	return &e, nil
}

func (r *Reader) ListTaintFlows(ctx context.Context, file string) ([]types.TaintFlow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT source_file, source_line, source_type, sink_file, sink_line,
		sink_type, cwe_id, sanitized, path, confidence FROM taint_flows
		WHERE source_file = ? OR sink_file = ? ORDER BY confidence DESC`, file, file)
	if err != nil {
		return nil, types.NewError(types.CodeStorage, "ListTaintFlows", err)
	}
	defer rows.Close()
	var out []types.TaintFlow
	for rows.Next() {
		var t types.TaintFlow
		var pathJSON string
		var sanitized int
		if err := rows.Scan(&t.SourceFile, &t.SourceLine, &t.SourceType, &t.SinkFile, &t.SinkLine,
			&t.SinkType, &t.CWEID, &sanitized, &pathJSON, &t.Confidence); err != nil {
			return nil, err
		}
		t.Sanitized = sanitized != 0
		_ = json.Unmarshal([]byte(pathJSON), &t.Path)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Reader) ListErrorGaps(ctx context.Context, file string) ([]types.ErrorGap, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT file, function_id, kind, error_type, propagation_chain,
		framework, cwe_id, severity FROM error_gaps WHERE file = ?`, file)
	if err != nil {
		return nil, types.NewError(types.CodeStorage, "ListErrorGaps", err)
	}
	defer rows.Close()
	var out []types.ErrorGap
	for rows.Next() {
		var g types.ErrorGap
		var kind, chainJSON string
		if err := rows.Scan(&g.File, &g.FunctionID, &kind, &g.ErrorType, &chainJSON, &g.Framework,
			&g.CWEID, &g.Severity); err != nil {
			return nil, err
		}
		g.Kind = types.ErrorGapKind(kind)
		_ = json.Unmarshal([]byte(chainJSON), &g.PropagationChain)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Reader) GetImpactScore(ctx context.Context, fn types.FunctionID) (*types.ImpactScore, error) {
	row := r.db.QueryRowContext(ctx, `SELECT function_id, blast_radius, risk_score, is_dead_code,
		dead_code_reason, exclusion_category FROM impact_scores WHERE function_id = ?`, fn)
	var s types.ImpactScore
	var isDead int
	if err := row.Scan(&s.FunctionID, &s.BlastRadius, &s.RiskScore, &isDead, &s.DeadCodeReason, &s.ExclusionCategory); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, types.NewError(types.CodeStorage, "GetImpactScore", err)
	}
	s.IsDeadCode = isDead != 0
	return &s, nil
}

func (r *Reader) GetTestQuality(ctx context.Context, fn types.FunctionID) (*types.TestQuality, error) {
	row := r.db.QueryRowContext(ctx, `SELECT function_id, coverage_breadth, coverage_depth, assertion_density,
		mock_ratio, isolation, freshness, stability, overall, smells FROM test_quality WHERE function_id = ?`, fn)
	var q types.TestQuality
	var smellsJSON string
	if err := row.Scan(&q.FunctionID, &q.CoverageBreadth, &q.CoverageDepth, &q.AssertionDensity, &q.MockRatio,
		&q.Isolation, &q.Freshness, &q.Stability, &q.Overall, &smellsJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, types.NewError(types.CodeStorage, "GetTestQuality", err)
	}
	_ = json.Unmarshal([]byte(smellsJSON), &q.Smells)
	return &q, nil
}

// --- Structural group --------------------------------------------------------

func (r *Reader) ListCouplingMetrics(ctx context.Context) ([]types.CouplingMetric, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT module, ce, ca, instability, abstractness, distance, zone
		FROM coupling_metrics ORDER BY instability DESC`)
	if err != nil {
		return nil, types.NewError(types.CodeStorage, "ListCouplingMetrics", err)
	}
	defer rows.Close()
	var out []types.CouplingMetric
	for rows.Next() {
		var m types.CouplingMetric
		if err := rows.Scan(&m.Module, &m.Ce, &m.Ca, &m.Instability, &m.Abstractness, &m.Distance, &m.Zone); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Reader) ListCouplingCycles(ctx context.Context) ([]types.CouplingCycle, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT members, break_suggestion FROM coupling_cycles`)
	if err != nil {
		return nil, types.NewError(types.CodeStorage, "ListCouplingCycles", err)
	}
	defer rows.Close()
	var out []types.CouplingCycle
	for rows.Next() {
		var c types.CouplingCycle
		var membersJSON string
		if err := rows.Scan(&membersJSON, &c.BreakSuggestion); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(membersJSON), &c.Members)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Reader) ListWrappers(ctx context.Context, file string) ([]types.Wrapper, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, file, line, category, wrapped_primitives, framework,
		confidence, multi_primitive, exported, usage_count FROM wrappers WHERE file = ?`, file)
	if err != nil {
		return nil, types.NewError(types.CodeStorage, "ListWrappers", err)
	}
	defer rows.Close()
	var out []types.Wrapper
	for rows.Next() {
		var w types.Wrapper
		var primJSON string
		var multi, exported int
		if err := rows.Scan(&w.Name, &w.File, &w.Line, &w.Category, &primJSON, &w.Framework,
			&w.Confidence, &multi, &exported, &w.UsageCount); err != nil {
			return nil, err
		}
		w.MultiPrimitive = multi != 0
		w.Exported = exported != 0
		_ = json.Unmarshal([]byte(primJSON), &w.WrappedPrimitives)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *Reader) ListBoundaries(ctx context.Context, file string) ([]types.Boundary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT file, framework, model, tbl, field, sensitivity, confidence
		FROM boundaries WHERE file = ?`, file)
	if err != nil {
		return nil, types.NewError(types.CodeStorage, "ListBoundaries", err)
	}
	defer rows.Close()
	var out []types.Boundary
	for rows.Next() {
		var b types.Boundary
		if err := rows.Scan(&b.File, &b.Framework, &b.Model, &b.Table, &b.Field, &b.Sensitivity, &b.Confidence); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// --- Enforcement group --------------------------------------------------------

// ViolationFilter narrows ListViolations. An empty filter returns every
// non-suppressed violation (suppressed violations never surface to report
// renderers, per the Reader Surface contract).
type ViolationFilter struct {
	File          string
	Severity      string
	IncludeSuppressed bool
}

func (r *Reader) ListViolations(ctx context.Context, f ViolationFilter) ([]types.Violation, error) {
	query := `SELECT id, file, line, column, end_line, end_column, severity, pattern_id, rule_id, message,
		quick_fix_strategy, quick_fix_description, cwe_id, owasp_category, suppressed, is_new
		FROM violations WHERE 1=1`
	var args []any
	if !f.IncludeSuppressed {
		query += ` AND suppressed = 0`
	}
	if f.File != "" {
		query += ` AND file = ?`
		args = append(args, f.File)
	}
	if f.Severity != "" {
		query += ` AND severity = ?`
		args = append(args, f.Severity)
	}
	query += ` ORDER BY file, line`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.NewError(types.CodeStorage, "ListViolations", err)
	}
	defer rows.Close()
	var out []types.Violation
	for rows.Next() {
		var v types.Violation
		var suppressed, isNew int
		if err := rows.Scan(&v.ID, &v.File, &v.Line, &v.Column, &v.EndLine, &v.EndColumn, &v.Severity,
			&v.PatternID, &v.RuleID, &v.Message, &v.QuickFixStrategy, &v.QuickFixDescription, &v.CWEID,
			&v.OWASPCategory, &suppressed, &isNew); err != nil {
			return nil, err
		}
		v.Suppressed = suppressed != 0
		v.IsNew = isNew != 0
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Reader) LatestGateResult(ctx context.Context, gateID string) (*types.GateResult, error) {
	row := r.db.QueryRowContext(ctx, `SELECT gate_id, status, passed, score, summary, violation_count,
		warning_count, execution_time_ns, details, error FROM gate_results
		WHERE gate_id = ? ORDER BY created_at DESC LIMIT 1`, gateID)
	var g types.GateResult
	var passed int
	var execNs int64
	if err := row.Scan(&g.GateID, &g.Status, &passed, &g.Score, &g.Summary, &g.ViolationCount,
		&g.WarningCount, &execNs, &g.Details, &g.Error); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, types.NewError(types.CodeStorage, "LatestGateResult", err)
	}
	g.Passed = passed != 0
	g.ExecutionTime = time.Duration(execNs)
	return &g, nil
}

func (r *Reader) ListDegradationAlerts(ctx context.Context, limit int) ([]types.DegradationAlert, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `SELECT alert_type, severity, message, current_value, previous_value, delta
		FROM degradation_alerts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, types.NewError(types.CodeStorage, "ListDegradationAlerts", err)
	}
	defer rows.Close()
	var out []types.DegradationAlert
	for rows.Next() {
		var a types.DegradationAlert
		if err := rows.Scan(&a.AlertType, &a.Severity, &a.Message, &a.CurrentValue, &a.PreviousValue, &a.Delta); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// QueryConfidenceByTier is the Reader Surface's keyset-paginated query over
// pattern_confidence (§6). Callers pass the previous response's NextCursor
// back as after; an empty after starts from the beginning. An empty
// returned cursor means there is no further page.
func (r *Reader) QueryConfidenceByTier(ctx context.Context, tier types.ConfidenceTier, after string, limit int) ([]types.PatternConfidence, string, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	rows, err := r.db.QueryContext(ctx, `SELECT pattern_id, alpha, beta, posterior_mean, credible_low,
		credible_high, tier, momentum, last_updated FROM pattern_confidence
		WHERE tier = ? AND pattern_id > ? ORDER BY pattern_id LIMIT ?`, string(tier), after, limit+1)
	if err != nil {
		return nil, "", types.NewError(types.CodeStorage, "QueryConfidenceByTier", err)
	}
	defer rows.Close()
	var out []types.PatternConfidence
	for rows.Next() {
		var p types.PatternConfidence
		var tierStr, momentum string
		var lastUpdated int64
		if err := rows.Scan(&p.PatternID, &p.Alpha, &p.Beta, &p.PosteriorMean, &p.CredibleLow,
			&p.CredibleHigh, &tierStr, &momentum, &lastUpdated); err != nil {
			return nil, "", err
		}
		p.Tier = types.ConfidenceTier(tierStr)
		p.Momentum = types.Momentum(momentum)
		p.LastUpdated = time.UnixMilli(lastUpdated)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	next := ""
	if len(out) > limit {
		next = out[limit-1].PatternID
		out = out[:limit]
	}
	return out, next, nil
}

// --- Evidence surface ---------------------------------------------------------

// Evidence is the 14-accessor read-only contract reports and the pattern
// engine consult instead of touching store's internals directly (§12.7).
// *Reader is its only implementation in this module.
type Evidence interface {
	PatternConfidence(ctx context.Context, patternID string) (float64, bool)
	OccurrenceRate(ctx context.Context, patternID string) (float64, bool)
	FalsePositiveRate(ctx context.Context, patternID string) (float64, bool)
	ConstraintVerified(ctx context.Context, file, method, path string) (bool, bool)
	CouplingMetricFor(ctx context.Context, module string) (types.CouplingMetric, bool)
	DNAHealth(ctx context.Context, geneID string) (float64, bool)
	TestCoverage(ctx context.Context, fn types.FunctionID) (float64, bool)
	ErrorHandlingGapCount(ctx context.Context, file string) (int, bool)
	DecisionEvidence(ctx context.Context, file, symbol string) (string, bool)
	BoundaryDataFor(ctx context.Context, file string) ([]types.Boundary, bool)
	TaintFlowRisk(ctx context.Context, file string) (float64, bool)
	CallGraphCoverage(ctx context.Context, fn types.FunctionID) (float64, bool)
	MatchingPatternCount(ctx context.Context, category string) (int, bool)
	LatestScanTimestamp(ctx context.Context) (time.Time, bool)
}

var _ Evidence = (*Reader)(nil)

func (r *Reader) PatternConfidence(ctx context.Context, patternID string) (float64, bool) {
	var v float64
	err := r.db.QueryRowContext(ctx, `SELECT posterior_mean FROM pattern_confidence WHERE pattern_id = ?`, patternID).Scan(&v)
	return v, err == nil
}

func (r *Reader) OccurrenceRate(ctx context.Context, patternID string) (float64, bool) {
	var locations int
	var fileSpread int
	err := r.db.QueryRowContext(ctx, `SELECT location_count, file_spread FROM aggregated_patterns WHERE pattern_id = ?`,
		patternID).Scan(&locations, &fileSpread)
	if err != nil || fileSpread == 0 {
		return 0, false
	}
	return float64(locations) / float64(fileSpread), true
}

func (r *Reader) FalsePositiveRate(ctx context.Context, patternID string) (float64, bool) {
	var outliers, locations int
	row := r.db.QueryRowContext(ctx, `SELECT outlier_count, location_count FROM aggregated_patterns WHERE pattern_id = ?`, patternID)
	if err := row.Scan(&outliers, &locations); err != nil || locations == 0 {
		return 0, false
	}
	return float64(outliers) / float64(locations), true
}

// ConstraintVerified reports whether an API contract at (file, method, path)
// has no recorded mismatch — the closest available proxy for contract
// verification given the schema's contracts/contract_mismatches tables.
func (r *Reader) ConstraintVerified(ctx context.Context, file, method, path string) (bool, bool) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contracts WHERE file = ? AND method = ? AND path = ?`,
		file, method, path).Scan(&exists)
	if err != nil || exists == 0 {
		return false, false
	}
	var mismatches int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contract_mismatches WHERE path = ?`, path).Scan(&mismatches); err != nil {
		return false, false
	}
	return mismatches == 0, true
}

func (r *Reader) CouplingMetricFor(ctx context.Context, module string) (types.CouplingMetric, bool) {
	var m types.CouplingMetric
	row := r.db.QueryRowContext(ctx, `SELECT module, ce, ca, instability, abstractness, distance, zone
		FROM coupling_metrics WHERE module = ?`, module)
	if err := row.Scan(&m.Module, &m.Ce, &m.Ca, &m.Instability, &m.Abstractness, &m.Distance, &m.Zone); err != nil {
		return types.CouplingMetric{}, false
	}
	return m, true
}

func (r *Reader) DNAHealth(ctx context.Context, geneID string) (float64, bool) {
	var confidence, consistency float64
	err := r.db.QueryRowContext(ctx, `SELECT confidence, consistency FROM dna_genes WHERE gene_id = ?`, geneID).
		Scan(&confidence, &consistency)
	if err != nil {
		return 0, false
	}
	return (confidence + consistency) / 2, true
}

func (r *Reader) TestCoverage(ctx context.Context, fn types.FunctionID) (float64, bool) {
	var v float64
	err := r.db.QueryRowContext(ctx, `SELECT coverage_breadth FROM test_quality WHERE function_id = ?`, fn).Scan(&v)
	return v, err == nil
}

func (r *Reader) ErrorHandlingGapCount(ctx context.Context, file string) (int, bool) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM error_gaps WHERE file = ?`, file).Scan(&n)
	return n, err == nil
}

// DecisionEvidence returns the recorded decomposition reason for (file,
// symbol), the architectural decision record analogue this schema carries.
func (r *Reader) DecisionEvidence(ctx context.Context, file, symbol string) (string, bool) {
	var reason string
	err := r.db.QueryRowContext(ctx, `SELECT reason FROM decomposition_decisions WHERE file = ? AND symbol = ?`,
		file, symbol).Scan(&reason)
	return reason, err == nil
}

func (r *Reader) BoundaryDataFor(ctx context.Context, file string) ([]types.Boundary, bool) {
	bs, err := r.ListBoundaries(ctx, file)
	return bs, err == nil && len(bs) > 0
}

func (r *Reader) TaintFlowRisk(ctx context.Context, file string) (float64, bool) {
	var max sql.NullFloat64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(confidence) FROM taint_flows
		WHERE (source_file = ? OR sink_file = ?) AND sanitized = 0`, file, file).Scan(&max)
	if err != nil || !max.Valid {
		return 0, false
	}
	return max.Float64, true
}

func (r *Reader) CallGraphCoverage(ctx context.Context, fn types.FunctionID) (float64, bool) {
	var callers, callees int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM call_edges WHERE callee_id = ?`, fn).Scan(&callers); err != nil {
		return 0, false
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM call_edges WHERE caller_id = ?`, fn).Scan(&callees); err != nil {
		return 0, false
	}
	if callers+callees == 0 {
		return 0, true
	}
	return 1, true
}

func (r *Reader) MatchingPatternCount(ctx context.Context, category string) (int, bool) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT pattern_id) FROM detections WHERE category = ?`, category).Scan(&n)
	return n, err == nil
}

func (r *Reader) LatestScanTimestamp(ctx context.Context) (time.Time, bool) {
	var ms sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(completed_at) FROM scan_history WHERE status = ?`, string(types.ScanCompleted)).Scan(&ms)
	if err != nil || !ms.Valid {
		return time.Time{}, false
	}
	return time.UnixMilli(ms.Int64), true
}

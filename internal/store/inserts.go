package store

import (
	"database/sql"

	"sourcelens/internal/types"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func upsertFileMetadata(tx *sql.Tx, files []types.FileRecord) error {
	stmt, err := tx.Prepare(`INSERT INTO file_metadata
		(path, language, size, content_fp, mtime_sec, mtime_nsec, last_scanned_at, scan_duration_ns)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(path) DO UPDATE SET
			language=excluded.language, size=excluded.size, content_fp=excluded.content_fp,
			mtime_sec=excluded.mtime_sec, mtime_nsec=excluded.mtime_nsec,
			last_scanned_at=excluded.last_scanned_at, scan_duration_ns=excluded.scan_duration_ns`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, f := range files {
		if _, err := stmt.Exec(f.Path, string(f.Language), f.Size, f.ContentFp, f.MTimeSec, f.MTimeNsec,
			f.LastScannedAt.UnixMilli(), f.ScanDuration.Nanoseconds()); err != nil {
			return err
		}
	}
	return nil
}

// deleteFileMetadata removes the named paths and, by path rather than FK
// triggers (§3.2), their functions and detections rows. Rows of the other
// file-scoped tables are not deleted here.
func deleteFileMetadata(tx *sql.Tx, paths []string) error {
	del, err := tx.Prepare(`DELETE FROM file_metadata WHERE path = ?`)
	if err != nil {
		return err
	}
	defer del.Close()
	delFn, err := tx.Prepare(`DELETE FROM functions WHERE file = ?`)
	if err != nil {
		return err
	}
	defer delFn.Close()
	delDet, err := tx.Prepare(`DELETE FROM detections WHERE file = ?`)
	if err != nil {
		return err
	}
	defer delDet.Close()
	for _, p := range paths {
		if _, err := del.Exec(p); err != nil {
			return err
		}
		if _, err := delFn.Exec(p); err != nil {
			return err
		}
		if _, err := delDet.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func insertParseCache(tx *sql.Tx, rows []ParseCacheRow) error {
	stmt, err := tx.Prepare(`INSERT INTO parse_cache (content_fp, language, facts_json)
		VALUES (?,?,?)
		ON CONFLICT(content_fp, language) DO UPDATE SET facts_json=excluded.facts_json`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.ContentFp, string(r.Language), jsonOrEmpty(r.Facts)); err != nil {
			return err
		}
	}
	return nil
}

func insertFunctions(tx *sql.Tx, rows []FunctionRow) error {
	stmt, err := tx.Prepare(`INSERT INTO functions
		(id, file, name, qualified_name, language, start_line, end_line, params_json,
		 return_type, exported, async, decorators_json, body_hash, signature_hash)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			file=excluded.file, name=excluded.name, qualified_name=excluded.qualified_name,
			language=excluded.language, start_line=excluded.start_line, end_line=excluded.end_line,
			params_json=excluded.params_json, return_type=excluded.return_type,
			exported=excluded.exported, async=excluded.async, decorators_json=excluded.decorators_json,
			body_hash=excluded.body_hash, signature_hash=excluded.signature_hash`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		fn := r.Fn
		if _, err := stmt.Exec(r.ID, fn.File, fn.Name, fn.QualifiedName, string(fn.Language),
			fn.StartLine, fn.EndLine, jsonOrEmpty(fn.Params), fn.ReturnType,
			boolToInt(fn.Exported), boolToInt(fn.Async), jsonOrEmpty(fn.Decorators),
			fn.BodyHash, fn.SignatureHash); err != nil {
			return err
		}
	}
	return nil
}

func insertCallEdges(tx *sql.Tx, edges []types.CallEdge) error {
	stmt, err := tx.Prepare(`INSERT INTO call_edges (caller_id, callee_id, call_site, strategy, confidence)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range edges {
		if _, err := stmt.Exec(e.Caller, e.Callee, e.CallSite, string(e.Strategy), e.Confidence); err != nil {
			return err
		}
	}
	return nil
}

func insertDetections(tx *sql.Tx, dets []types.Detection, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO detections
		(file, line, column, pattern_id, category, confidence, method, cwe_ids, owasp, matched_text, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, d := range dets {
		if _, err := stmt.Exec(d.File, d.Line, d.Column, d.PatternID, d.Category, d.Confidence,
			d.Method, jsonOrEmpty(d.CWEIDs), d.OWASP, d.MatchedText, now); err != nil {
			return err
		}
	}
	return nil
}

func insertBoundaries(tx *sql.Tx, bs []types.Boundary) error {
	stmt, err := tx.Prepare(`INSERT INTO boundaries (file, framework, model, tbl, field, sensitivity, confidence)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, b := range bs {
		if _, err := stmt.Exec(b.File, b.Framework, b.Model, b.Table, b.Field, b.Sensitivity, b.Confidence); err != nil {
			return err
		}
	}
	return nil
}

func insertPatternConfidence(tx *sql.Tx, rows []types.PatternConfidence) error {
	stmt, err := tx.Prepare(`INSERT INTO pattern_confidence
		(pattern_id, alpha, beta, posterior_mean, credible_low, credible_high, tier, momentum, last_updated)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(pattern_id) DO UPDATE SET
			alpha=excluded.alpha, beta=excluded.beta, posterior_mean=excluded.posterior_mean,
			credible_low=excluded.credible_low, credible_high=excluded.credible_high,
			tier=excluded.tier, momentum=excluded.momentum, last_updated=excluded.last_updated`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.PatternID, r.Alpha, r.Beta, r.PosteriorMean, r.CredibleLow, r.CredibleHigh,
			string(r.Tier), string(r.Momentum), r.LastUpdated.UnixMilli()); err != nil {
			return err
		}
	}
	return nil
}

func insertOutliers(tx *sql.Tx, rows []types.Outlier, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO outliers
		(pattern_id, file, line, idx, deviation_score, significance, method, created_at)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.PatternID, r.File, r.Line, r.Index, r.DeviationScore,
			string(r.Significance), string(r.Method), now); err != nil {
			return err
		}
	}
	return nil
}

func insertConventions(tx *sql.Tx, rows []types.Convention) error {
	stmt, err := tx.Prepare(`INSERT INTO conventions
		(pattern_id, category, scope, dominance_ratio, status, discovered_at, last_seen, expires_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(pattern_id, scope) DO UPDATE SET
			category=excluded.category, dominance_ratio=excluded.dominance_ratio,
			status=excluded.status, last_seen=excluded.last_seen, expires_at=excluded.expires_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		var expires any
		if r.ExpiresAt != nil {
			expires = r.ExpiresAt.UnixMilli()
		}
		if _, err := stmt.Exec(r.PatternID, r.Category, r.Scope, r.DominanceRatio, string(r.Status),
			r.DiscoveredAt.UnixMilli(), r.LastSeen.UnixMilli(), expires); err != nil {
			return err
		}
	}
	return nil
}

func insertScanHistory(tx *sql.Tx, h *types.ScanHistory) error {
	if h == nil {
		return nil
	}
	_, err := tx.Exec(`INSERT INTO scan_history
		(started_at, completed_at, root, added, modified, removed, unchanged, duration_ns, status, error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		h.StartedAt.UnixMilli(), h.CompletedAt.UnixMilli(), h.Root, h.Added, h.Modified,
		h.Removed, h.Unchanged, h.Duration.Nanoseconds(), string(h.Status), h.Error)
	return err
}

func insertDataAccess(tx *sql.Tx, rows []types.DataAccess) error {
	stmt, err := tx.Prepare(`INSERT INTO data_access (function_id, tbl, operation, framework, line, confidence)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.FunctionID, r.Table, r.Operation, r.Framework, r.Line, r.Confidence); err != nil {
			return err
		}
	}
	return nil
}

func insertReachabilityCache(tx *sql.Tx, rows []types.ReachabilityEntry) error {
	stmt, err := tx.Prepare(`INSERT INTO reachability_cache (source, direction, reachable, sensitivity)
		VALUES (?,?,?,?)
		ON CONFLICT(source, direction) DO UPDATE SET reachable=excluded.reachable, sensitivity=excluded.sensitivity`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.Source, r.Direction, jsonOrEmpty(r.Reachable), string(r.Sensitivity)); err != nil {
			return err
		}
	}
	return nil
}

func insertTaintFlows(tx *sql.Tx, rows []types.TaintFlow, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO taint_flows
		(source_file, source_line, source_type, sink_file, sink_line, sink_type, cwe_id, sanitized, path, confidence, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.SourceFile, r.SourceLine, r.SourceType, r.SinkFile, r.SinkLine, r.SinkType,
			r.CWEID, boolToInt(r.Sanitized), jsonOrEmpty(r.Path), r.Confidence, now); err != nil {
			return err
		}
	}
	return nil
}

func insertErrorGaps(tx *sql.Tx, rows []types.ErrorGap, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO error_gaps
		(file, function_id, kind, error_type, propagation_chain, framework, cwe_id, severity, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.File, r.FunctionID, string(r.Kind), r.ErrorType, jsonOrEmpty(r.PropagationChain),
			r.Framework, r.CWEID, r.Severity, now); err != nil {
			return err
		}
	}
	return nil
}

func insertImpactScores(tx *sql.Tx, rows []types.ImpactScore) error {
	stmt, err := tx.Prepare(`INSERT INTO impact_scores
		(function_id, blast_radius, risk_score, is_dead_code, dead_code_reason, exclusion_category)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(function_id) DO UPDATE SET
			blast_radius=excluded.blast_radius, risk_score=excluded.risk_score,
			is_dead_code=excluded.is_dead_code, dead_code_reason=excluded.dead_code_reason,
			exclusion_category=excluded.exclusion_category`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.FunctionID, r.BlastRadius, r.RiskScore, boolToInt(r.IsDeadCode),
			r.DeadCodeReason, r.ExclusionCategory); err != nil {
			return err
		}
	}
	return nil
}

func insertTestQuality(tx *sql.Tx, rows []types.TestQuality) error {
	stmt, err := tx.Prepare(`INSERT INTO test_quality
		(function_id, coverage_breadth, coverage_depth, assertion_density, mock_ratio,
		 isolation, freshness, stability, overall, smells)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(function_id) DO UPDATE SET
			coverage_breadth=excluded.coverage_breadth, coverage_depth=excluded.coverage_depth,
			assertion_density=excluded.assertion_density, mock_ratio=excluded.mock_ratio,
			isolation=excluded.isolation, freshness=excluded.freshness, stability=excluded.stability,
			overall=excluded.overall, smells=excluded.smells`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.FunctionID, r.CoverageBreadth, r.CoverageDepth, r.AssertionDensity,
			r.MockRatio, r.Isolation, r.Freshness, r.Stability, r.Overall, jsonOrEmpty(r.Smells)); err != nil {
			return err
		}
	}
	return nil
}

func insertCouplingMetrics(tx *sql.Tx, rows []types.CouplingMetric, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO coupling_metrics
		(module, ce, ca, instability, abstractness, distance, zone, created_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(module) DO UPDATE SET
			ce=excluded.ce, ca=excluded.ca, instability=excluded.instability,
			abstractness=excluded.abstractness, distance=excluded.distance, zone=excluded.zone,
			created_at=excluded.created_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.Module, r.Ce, r.Ca, r.Instability, r.Abstractness, r.Distance, r.Zone, now); err != nil {
			return err
		}
	}
	return nil
}

func insertCouplingCycles(tx *sql.Tx, rows []types.CouplingCycle, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO coupling_cycles (members, break_suggestion, created_at) VALUES (?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(jsonOrEmpty(r.Members), r.BreakSuggestion, now); err != nil {
			return err
		}
	}
	return nil
}

func insertViolations(tx *sql.Tx, rows []types.Violation, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO violations
		(id, file, line, column, end_line, end_column, severity, pattern_id, rule_id, message,
		 quick_fix_strategy, quick_fix_description, cwe_id, owasp_category, suppressed, is_new, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			suppressed=excluded.suppressed, is_new=excluded.is_new, message=excluded.message`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.ID, r.File, r.Line, r.Column, r.EndLine, r.EndColumn, r.Severity,
			r.PatternID, r.RuleID, r.Message, r.QuickFixStrategy, r.QuickFixDescription, r.CWEID,
			r.OWASPCategory, boolToInt(r.Suppressed), boolToInt(r.IsNew), now); err != nil {
			return err
		}
	}
	return nil
}

func insertGateResults(tx *sql.Tx, rows []types.GateResult, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO gate_results
		(gate_id, status, passed, score, summary, violation_count, warning_count, execution_time_ns, details, error, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.GateID, r.Status, boolToInt(r.Passed), r.Score, r.Summary,
			r.ViolationCount, r.WarningCount, r.ExecutionTime.Nanoseconds(), r.Details, r.Error, now); err != nil {
			return err
		}
	}
	return nil
}

func insertDegradationAlerts(tx *sql.Tx, rows []types.DegradationAlert, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO degradation_alerts
		(alert_type, severity, message, current_value, previous_value, delta, created_at)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.AlertType, r.Severity, r.Message, r.CurrentValue, r.PreviousValue, r.Delta, now); err != nil {
			return err
		}
	}
	return nil
}

func insertWrappers(tx *sql.Tx, rows []types.Wrapper, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO wrappers
		(name, file, line, category, wrapped_primitives, framework, confidence, multi_primitive, exported, usage_count, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.Name, r.File, r.Line, r.Category, jsonOrEmpty(r.WrappedPrimitives),
			r.Framework, r.Confidence, boolToInt(r.MultiPrimitive), boolToInt(r.Exported), r.UsageCount, now); err != nil {
			return err
		}
	}
	return nil
}

func insertCryptoFindings(tx *sql.Tx, rows []types.CryptoFinding, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO crypto_findings
		(file, line, category, description, code, confidence, cwe_id, owasp, remediation, language, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.File, r.Line, r.Category, r.Description, r.Code, r.Confidence,
			r.CWEID, r.OWASP, r.Remediation, string(r.Language), now); err != nil {
			return err
		}
	}
	return nil
}

func insertDnaGenes(tx *sql.Tx, rows []types.DnaGene) error {
	stmt, err := tx.Prepare(`INSERT INTO dna_genes
		(gene_id, name, description, dominant_allele, alleles, confidence, consistency, exemplars)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(gene_id) DO UPDATE SET
			dominant_allele=excluded.dominant_allele, alleles=excluded.alleles,
			confidence=excluded.confidence, consistency=excluded.consistency, exemplars=excluded.exemplars`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.GeneID, r.Name, r.Description, r.DominantAllele, jsonOrEmpty(r.Alleles),
			r.Confidence, r.Consistency, jsonOrEmpty(r.Exemplars)); err != nil {
			return err
		}
	}
	return nil
}

func insertDnaMutations(tx *sql.Tx, rows []types.DnaMutation, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO dna_mutations (id, file, line, gene_id, allele, created_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET allele=excluded.allele`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.ID, r.File, r.Line, r.GeneID, r.Allele, now); err != nil {
			return err
		}
	}
	return nil
}

func insertSecrets(tx *sql.Tx, rows []types.Secret, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO secrets (file, line, category, confidence, redacted, created_at)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.File, r.Line, r.Category, r.Confidence, r.Redacted, now); err != nil {
			return err
		}
	}
	return nil
}

func insertConstants(tx *sql.Tx, rows []types.Constant, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO constants (file, line, name, value, is_magic, created_at)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.File, r.Line, r.Name, r.Value, boolToInt(r.IsMagic), now); err != nil {
			return err
		}
	}
	return nil
}

func insertEnvVariables(tx *sql.Tx, rows []types.EnvVariable, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO env_variables (file, line, name, has_default, created_at)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.File, r.Line, r.Name, boolToInt(r.HasDefault), now); err != nil {
			return err
		}
	}
	return nil
}

func insertOwaspFindings(tx *sql.Tx, rows []types.OwaspFinding, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO owasp_findings (file, line, category, cwe_id, confidence, remediation, created_at)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.File, r.Line, r.Category, r.CWEID, r.Confidence, r.Remediation, now); err != nil {
			return err
		}
	}
	return nil
}

func insertDecompositionDecisions(tx *sql.Tx, rows []types.DecompositionDecision, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO decomposition_decisions (file, symbol, reason, suggested_split, confidence, created_at)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.File, r.Symbol, r.Reason, jsonOrEmpty(r.SuggestedSplit), r.Confidence, now); err != nil {
			return err
		}
	}
	return nil
}

func insertContracts(tx *sql.Tx, rows []types.Contract, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO contracts (file, method, path, request_shape, response_shape, framework, created_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(file, method, path) DO UPDATE SET
			request_shape=excluded.request_shape, response_shape=excluded.response_shape,
			framework=excluded.framework, created_at=excluded.created_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.File, r.Method, r.Path, r.RequestShape, r.ResponseShape, r.Framework, now); err != nil {
			return err
		}
	}
	return nil
}

func insertContractMismatches(tx *sql.Tx, rows []types.ContractMismatch, now int64) error {
	stmt, err := tx.Prepare(`INSERT INTO contract_mismatches (backend_file, frontend_file, path, kind, description, created_at)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.BackendFile, r.FrontendFile, r.Path, r.Kind, r.Description, now); err != nil {
			return err
		}
	}
	return nil
}

package store

import "sourcelens/internal/types"

// CommandKind is the closed enum of write operations the Batch Writer
// accepts (§4.2/§12.2). Every row type the Store persists has exactly one
// corresponding kind.
type CommandKind string

const (
	CmdUpsertFileMetadata           CommandKind = "upsert_file_metadata"
	CmdDeleteFileMetadata           CommandKind = "delete_file_metadata"
	CmdInsertParseCache             CommandKind = "insert_parse_cache"
	CmdInsertFunctions              CommandKind = "insert_functions"
	CmdInsertCallEdges              CommandKind = "insert_call_edges"
	CmdInsertDetections             CommandKind = "insert_detections"
	CmdInsertBoundaries             CommandKind = "insert_boundaries"
	CmdInsertPatternConfidence      CommandKind = "insert_pattern_confidence"
	CmdInsertOutliers               CommandKind = "insert_outliers"
	CmdInsertConventions            CommandKind = "insert_conventions"
	CmdInsertScanHistory            CommandKind = "insert_scan_history"
	CmdInsertDataAccess             CommandKind = "insert_data_access"
	CmdInsertReachabilityCache      CommandKind = "insert_reachability_cache"
	CmdInsertTaintFlows             CommandKind = "insert_taint_flows"
	CmdInsertErrorGaps              CommandKind = "insert_error_gaps"
	CmdInsertImpactScores           CommandKind = "insert_impact_scores"
	CmdInsertTestQuality            CommandKind = "insert_test_quality"
	CmdInsertCouplingMetrics        CommandKind = "insert_coupling_metrics"
	CmdInsertCouplingCycles         CommandKind = "insert_coupling_cycles"
	CmdInsertViolations             CommandKind = "insert_violations"
	CmdInsertGateResults            CommandKind = "insert_gate_results"
	CmdInsertDegradationAlerts      CommandKind = "insert_degradation_alerts"
	CmdInsertWrappers               CommandKind = "insert_wrappers"
	CmdInsertCryptoFindings         CommandKind = "insert_crypto_findings"
	CmdInsertDnaGenes               CommandKind = "insert_dna_genes"
	CmdInsertDnaMutations           CommandKind = "insert_dna_mutations"
	CmdInsertSecrets                CommandKind = "insert_secrets"
	CmdInsertConstants              CommandKind = "insert_constants"
	CmdInsertEnvVariables           CommandKind = "insert_env_variables"
	CmdInsertOwaspFindings          CommandKind = "insert_owasp_findings"
	CmdInsertDecompositionDecisions CommandKind = "insert_decomposition_decisions"
	CmdInsertContracts              CommandKind = "insert_contracts"
	CmdInsertContractMismatches     CommandKind = "insert_contract_mismatches"
	CmdFlush                        CommandKind = "flush"
	CmdFlushSync                    CommandKind = "flush_sync"
	CmdShutdown                     CommandKind = "shutdown"
)

// FunctionRow pairs a Function with the stable id its call edges reference
// (the call graph's arena FunctionID, persisted verbatim so edges survive
// a restart without remapping).
type FunctionRow struct {
	ID types.FunctionID
	Fn types.Function
}

// ParseCacheRow is one persisted parse result, keyed by (ContentFp, Language).
type ParseCacheRow struct {
	ContentFp uint64
	Language  types.Language
	Facts     *types.ParseFacts
}

// Command is a single typed write operation. Exactly one payload field is
// populated, matching Kind; the rest are zero. Done, when non-nil,
// receives the containing group's commit error (nil on success) once the
// transaction has finished (FlushSync's completion signal, §4.2).
type Command struct {
	Kind CommandKind

	Files                   []types.FileRecord
	Paths                   []string
	ParseCacheRows          []ParseCacheRow
	Functions               []FunctionRow
	CallEdges               []types.CallEdge
	Detections              []types.Detection
	Boundaries              []types.Boundary
	PatternConfidences      []types.PatternConfidence
	Outliers                []types.Outlier
	Conventions             []types.Convention
	ScanHistory             *types.ScanHistory
	DataAccess              []types.DataAccess
	Reachability            []types.ReachabilityEntry
	TaintFlows              []types.TaintFlow
	ErrorGaps               []types.ErrorGap
	ImpactScores            []types.ImpactScore
	TestQuality             []types.TestQuality
	CouplingMetrics         []types.CouplingMetric
	CouplingCycles          []types.CouplingCycle
	Violations              []types.Violation
	GateResults             []types.GateResult
	DegradationAlerts       []types.DegradationAlert
	Wrappers                []types.Wrapper
	CryptoFindings          []types.CryptoFinding
	DnaGenes                []types.DnaGene
	DnaMutations            []types.DnaMutation
	Secrets                 []types.Secret
	Constants               []types.Constant
	EnvVariables            []types.EnvVariable
	OwaspFindings           []types.OwaspFinding
	DecompositionDecisions  []types.DecompositionDecision
	Contracts               []types.Contract
	ContractMismatches      []types.ContractMismatch

	Done chan error
}

package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"sourcelens/internal/logging"
)

// Notifier is the minimal event-bus contract the Writer needs: publish a
// lifecycle event by kind with a free-form payload. Declared locally (not
// imported from internal/eventbus) so store has no dependency on it;
// eventbus.Bus satisfies this interface structurally.
type Notifier interface {
	Publish(kind string, payload map[string]any)
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, map[string]any) {}

// WriterConfig bounds the Writer's buffering behavior (§4.2).
type WriterConfig struct {
	QueueCap    int
	MaxRows     int
	MaxWait     time.Duration
	Notifier    Notifier
}

// DefaultWriterConfig mirrors config.DefaultStoreConfig's batching fields.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{QueueCap: 4096, MaxRows: 500, MaxWait: 100 * time.Millisecond, Notifier: noopNotifier{}}
}

// Writer is the single-writer thread serializing all mutations into large
// transactions (§4.2). Producers call Enqueue; a dedicated goroutine reads
// from the bounded queue and buffers commands until a count threshold, a
// time threshold, a Flush/FlushSync, or Shutdown triggers a commit.
type Writer struct {
	db     *sql.DB
	cfg    WriterConfig
	queue  chan *Command
	done   chan struct{}
}

// NewWriter starts the Writer's background goroutine against db (the
// Store's single writer connection).
func NewWriter(db *sql.DB, cfg WriterConfig) *Writer {
	if cfg.Notifier == nil {
		cfg.Notifier = noopNotifier{}
	}
	if cfg.QueueCap <= 0 {
		cfg.QueueCap = 4096
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 500
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 100 * time.Millisecond
	}
	w := &Writer{db: db, cfg: cfg, queue: make(chan *Command, cfg.QueueCap), done: make(chan struct{})}
	go w.run()
	return w
}

// Enqueue submits a command, blocking (backpressure, §4.2) if the queue is
// full.
func (w *Writer) Enqueue(cmd *Command) {
	w.queue <- cmd
}

// Flush requests a commit of whatever is currently buffered, without
// waiting for it to complete.
func (w *Writer) Flush() {
	w.Enqueue(&Command{Kind: CmdFlush})
}

// FlushSync requests a commit and blocks until it completes, returning any
// commit error. Callers use this as the synchronization point before a
// read that depends on a just-emitted write (§4.2, §8.1 invariant 20).
func (w *Writer) FlushSync() error {
	done := make(chan error, 1)
	w.Enqueue(&Command{Kind: CmdFlushSync, Done: done})
	return <-done
}

// Shutdown drains the queue and stops the writer goroutine.
func (w *Writer) Shutdown() {
	done := make(chan error, 1)
	w.Enqueue(&Command{Kind: CmdShutdown, Done: done})
	<-done
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)

	var buf []*Command
	rowCount := 0
	timer := time.NewTimer(w.cfg.MaxWait)
	defer timer.Stop()

	commitAndReply := func(completion []chan error) {
		err := w.commitGroup(buf)
		if err != nil {
			logging.StoreError("batch commit failed: %v", err)
			w.cfg.Notifier.Publish("write_error", map[string]any{"error": err.Error()})
		}
		for _, ch := range completion {
			ch <- err
		}
		buf = nil
		rowCount = 0
	}

	for {
		select {
		case cmd := <-w.queue:
			switch cmd.Kind {
			case CmdFlush:
				commitAndReply(nil)
			case CmdFlushSync:
				commitAndReply([]chan error{cmd.Done})
			case CmdShutdown:
				commitAndReply([]chan error{cmd.Done})
				return
			default:
				buf = append(buf, cmd)
				rowCount += commandRowCount(cmd)
				if rowCount >= w.cfg.MaxRows {
					commitAndReply(nil)
				}
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.cfg.MaxWait)
		case <-timer.C:
			if len(buf) > 0 {
				commitAndReply(nil)
			}
			timer.Reset(w.cfg.MaxWait)
		}
	}
}

// commitGroup runs every buffered command inside one transaction. A
// transaction failure aborts the whole group: none of its rows become
// visible (§4.2 failure semantics).
func (w *Writer) commitGroup(cmds []*Command) error {
	if len(cmds) == 0 {
		return nil
	}
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	for _, cmd := range cmds {
		if err := applyCommand(tx, cmd); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func commandRowCount(cmd *Command) int {
	n := len(cmd.Files) + len(cmd.Paths) + len(cmd.ParseCacheRows) + len(cmd.Functions) +
		len(cmd.CallEdges) + len(cmd.Detections) + len(cmd.Boundaries) + len(cmd.PatternConfidences) +
		len(cmd.Outliers) + len(cmd.Conventions) + len(cmd.DataAccess) + len(cmd.Reachability) +
		len(cmd.TaintFlows) + len(cmd.ErrorGaps) + len(cmd.ImpactScores) + len(cmd.TestQuality) +
		len(cmd.CouplingMetrics) + len(cmd.CouplingCycles) + len(cmd.Violations) + len(cmd.GateResults) +
		len(cmd.DegradationAlerts) + len(cmd.Wrappers) + len(cmd.CryptoFindings) + len(cmd.DnaGenes) +
		len(cmd.DnaMutations) + len(cmd.Secrets) + len(cmd.Constants) + len(cmd.EnvVariables) +
		len(cmd.OwaspFindings) + len(cmd.DecompositionDecisions) + len(cmd.Contracts) + len(cmd.ContractMismatches)
	if cmd.ScanHistory != nil {
		n++
	}
	if n == 0 {
		n = 1 // Flush/FlushSync/Shutdown still count as one unit of work
	}
	return n
}

func applyCommand(tx *sql.Tx, cmd *Command) error {
	now := time.Now().UnixMilli()
	switch cmd.Kind {
	case CmdUpsertFileMetadata:
		return upsertFileMetadata(tx, cmd.Files)
	case CmdDeleteFileMetadata:
		return deleteFileMetadata(tx, cmd.Paths)
	case CmdInsertParseCache:
		return insertParseCache(tx, cmd.ParseCacheRows)
	case CmdInsertFunctions:
		return insertFunctions(tx, cmd.Functions)
	case CmdInsertCallEdges:
		return insertCallEdges(tx, cmd.CallEdges)
	case CmdInsertDetections:
		return insertDetections(tx, cmd.Detections, now)
	case CmdInsertBoundaries:
		return insertBoundaries(tx, cmd.Boundaries)
	case CmdInsertPatternConfidence:
		return insertPatternConfidence(tx, cmd.PatternConfidences)
	case CmdInsertOutliers:
		return insertOutliers(tx, cmd.Outliers, now)
	case CmdInsertConventions:
		return insertConventions(tx, cmd.Conventions)
	case CmdInsertScanHistory:
		return insertScanHistory(tx, cmd.ScanHistory)
	case CmdInsertDataAccess:
		return insertDataAccess(tx, cmd.DataAccess)
	case CmdInsertReachabilityCache:
		return insertReachabilityCache(tx, cmd.Reachability)
	case CmdInsertTaintFlows:
		return insertTaintFlows(tx, cmd.TaintFlows, now)
	case CmdInsertErrorGaps:
		return insertErrorGaps(tx, cmd.ErrorGaps, now)
	case CmdInsertImpactScores:
		return insertImpactScores(tx, cmd.ImpactScores)
	case CmdInsertTestQuality:
		return insertTestQuality(tx, cmd.TestQuality)
	case CmdInsertCouplingMetrics:
		return insertCouplingMetrics(tx, cmd.CouplingMetrics, now)
	case CmdInsertCouplingCycles:
		return insertCouplingCycles(tx, cmd.CouplingCycles, now)
	case CmdInsertViolations:
		return insertViolations(tx, cmd.Violations, now)
	case CmdInsertGateResults:
		return insertGateResults(tx, cmd.GateResults, now)
	case CmdInsertDegradationAlerts:
		return insertDegradationAlerts(tx, cmd.DegradationAlerts, now)
	case CmdInsertWrappers:
		return insertWrappers(tx, cmd.Wrappers, now)
	case CmdInsertCryptoFindings:
		return insertCryptoFindings(tx, cmd.CryptoFindings, now)
	case CmdInsertDnaGenes:
		return insertDnaGenes(tx, cmd.DnaGenes)
	case CmdInsertDnaMutations:
		return insertDnaMutations(tx, cmd.DnaMutations, now)
	case CmdInsertSecrets:
		return insertSecrets(tx, cmd.Secrets, now)
	case CmdInsertConstants:
		return insertConstants(tx, cmd.Constants, now)
	case CmdInsertEnvVariables:
		return insertEnvVariables(tx, cmd.EnvVariables, now)
	case CmdInsertOwaspFindings:
		return insertOwaspFindings(tx, cmd.OwaspFindings, now)
	case CmdInsertDecompositionDecisions:
		return insertDecompositionDecisions(tx, cmd.DecompositionDecisions, now)
	case CmdInsertContracts:
		return insertContracts(tx, cmd.Contracts, now)
	case CmdInsertContractMismatches:
		return insertContractMismatches(tx, cmd.ContractMismatches, now)
	}
	return nil
}

func jsonOrEmpty(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

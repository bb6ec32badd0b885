package callgraph

import (
	"strings"

	"sourcelens/internal/types"
)

// diFrameworkHints lists call-site callee names that typically resolve
// through dependency-injection containers rather than direct reference
// (constructor-injected services, Spring/NestJS/Angular-style providers).
var diFrameworkHints = []string{
	"Inject", "Injectable", "Autowired", "Resolve", "GetService", "Provide",
}

// Resolver applies the six-strategy resolution cascade in strictly
// decreasing confidence order, first match wins (§4.6): SameFile (0.95),
// MethodCall (0.90), DiInjection (0.80), ImportBased (0.75),
// ExportBased (0.60), Fuzzy (0.40).
type Resolver struct {
	graph   *Graph
	imports map[string][]string // file -> imported paths, for ImportBased
	exports map[string]bool     // exported symbol names; exportBased reads Function.Exported instead
}

// NewResolver creates a Resolver over graph, with per-file import lists and
// a set of exported symbol names gathered from ParseFacts during ingestion.
func NewResolver(graph *Graph, imports map[string][]string, exports map[string]bool) *Resolver {
	return &Resolver{graph: graph, imports: imports, exports: exports}
}

// Resolve attempts to resolve one CallSite originating in callerFile from
// callerID, returning the edge to insert or false if no strategy matched.
func (r *Resolver) Resolve(callerID types.FunctionID, callerFile string, call types.CallSite) (types.CallEdge, bool) {
	for _, strategy := range types.ResolutionCascade {
		if calleeID, ok := r.tryStrategy(strategy, callerFile, call); ok {
			return types.CallEdge{
				Caller:     callerID,
				Callee:     calleeID,
				CallSite:   call.Line,
				Strategy:   strategy,
				Confidence: strategy.DefaultConfidence(),
			}, true
		}
	}
	return types.CallEdge{}, false
}

func (r *Resolver) tryStrategy(strategy types.ResolutionStrategy, callerFile string, call types.CallSite) (types.FunctionID, bool) {
	switch strategy {
	case types.StrategySameFile:
		return r.sameFile(callerFile, call)
	case types.StrategyMethodCall:
		return r.methodCall(call)
	case types.StrategyDiInjection:
		return r.diInjection(call)
	case types.StrategyImportBased:
		return r.importBased(callerFile, call)
	case types.StrategyExportBased:
		return r.exportBased(call)
	case types.StrategyFuzzy:
		return r.fuzzy(call)
	}
	return 0, false
}

// sameFile matches a callee declared in the same file as the call site.
func (r *Resolver) sameFile(callerFile string, call types.CallSite) (types.FunctionID, bool) {
	for _, id := range r.graph.CandidatesByFile(callerFile) {
		fn, ok := r.graph.Function(id)
		if ok && fn.Name == call.Callee {
			return id, true
		}
	}
	return 0, false
}

// methodCall matches receiver.Method() call sites against a function whose
// QualifiedName is "<receiver-type>.<method>" — an exact receiver name
// match is required since type inference is out of scope (§4.6 Non-goals).
func (r *Resolver) methodCall(call types.CallSite) (types.FunctionID, bool) {
	if call.Receiver == "" {
		return 0, false
	}
	for _, id := range r.graph.CandidatesByName(call.Receiver + "." + call.Callee) {
		return id, true
	}
	return 0, false
}

// diInjection matches calls whose receiver or callee name carries a
// recognized DI framework hint, resolving to any function with a matching name — lower
// confidence than MethodCall since the receiver is injected, not literal.
func (r *Resolver) diInjection(call types.CallSite) (types.FunctionID, bool) {
	hinted := false
	for _, hint := range diFrameworkHints {
		if strings.Contains(call.Receiver, hint) || strings.Contains(call.Callee, hint) {
			hinted = true
			break
		}
	}
	if !hinted {
		return 0, false
	}
	candidates := r.graph.CandidatesByName(call.Callee)
	if len(candidates) > 0 {
		return candidates[0], true
	}
	return 0, false
}

// importBased matches a callee to a function declared in one of the
// caller file's imported paths.
func (r *Resolver) importBased(callerFile string, call types.CallSite) (types.FunctionID, bool) {
	imported := r.imports[callerFile]
	if len(imported) == 0 {
		return 0, false
	}
	for _, id := range r.graph.CandidatesByName(call.Callee) {
		fn, ok := r.graph.Function(id)
		if !ok {
			continue
		}
		for _, imp := range imported {
			if strings.Contains(fn.File, imp) || strings.HasSuffix(imp, fn.File) {
				return id, true
			}
		}
	}
	return 0, false
}

// exportBased matches a callee against any exported function of that name,
// anywhere in the workspace — the weakest grounded strategy before Fuzzy.
func (r *Resolver) exportBased(call types.CallSite) (types.FunctionID, bool) {
	for _, id := range r.graph.CandidatesByName(call.Callee) {
		fn, ok := r.graph.Function(id)
		if ok && fn.Exported {
			return id, true
		}
	}
	return 0, false
}

// fuzzy matches any function sharing the callee name regardless of
// exported status or location — last resort, lowest confidence.
func (r *Resolver) fuzzy(call types.CallSite) (types.FunctionID, bool) {
	candidates := r.graph.CandidatesByName(call.Callee)
	if len(candidates) > 0 {
		return candidates[0], true
	}
	return 0, false
}

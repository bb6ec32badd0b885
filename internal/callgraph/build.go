package callgraph

import "sourcelens/internal/types"

// FileFacts pairs one file's path with the ParseFacts extracted from it,
// the unit the Builder ingests per scanned file.
type FileFacts struct {
	Path  string
	Facts *types.ParseFacts
}

// Builder incrementally assembles a Graph from per-file ParseFacts,
// tracking the import lists the Resolver's ImportBased strategy reads and
// the exported-symbol set it is constructed with (its ExportBased strategy
// checks each candidate's Exported flag rather than that set).
type Builder struct {
	graph   *Graph
	imports map[string][]string
	exports map[string]bool

	// pending holds (file, CallSite, callerID) tuples deferred until all
	// files in a batch are ingested, so forward references (a file whose
	// functions are declared after its callers in scan order) still
	// resolve (§4.6: resolution runs after the whole workspace is known).
	pending []pendingCall
}

type pendingCall struct {
	callerID types.FunctionID
	file     string
	site     types.CallSite
}

// NewBuilder creates a Builder over a fresh Graph.
func NewBuilder() *Builder {
	return &Builder{
		graph:   New(),
		imports: make(map[string][]string),
		exports: make(map[string]bool),
	}
}

// Graph returns the Graph under construction.
func (b *Builder) Graph() *Graph {
	return b.graph
}

// AddFile ingests one file's ParseFacts: registers its functions, records
// its import paths and exported symbols, and queues its call sites for
// resolution.
func (b *Builder) AddFile(ff FileFacts) {
	facts := ff.Facts
	if facts == nil {
		return
	}

	var imports []string
	for _, imp := range facts.Imports {
		imports = append(imports, imp.Path)
	}
	if len(imports) > 0 {
		b.imports[ff.Path] = imports
	}

	fnByLine := make(map[int]types.FunctionID)
	for _, fn := range facts.Functions {
		id := b.graph.AddFunction(fn)
		fnByLine[fn.StartLine] = id
		if fn.Exported {
			b.exports[fn.Name] = true
			if fn.QualifiedName != "" {
				b.exports[fn.QualifiedName] = true
			}
		}
	}

	for _, call := range facts.CallSites {
		callerID := b.callerFor(facts, fnByLine, call.Line)
		b.pending = append(b.pending, pendingCall{callerID: callerID, file: ff.Path, site: call})
	}
}

// callerFor finds the FunctionID whose [StartLine, EndLine] contains line,
// the enclosing function for a call site.
func (b *Builder) callerFor(facts *types.ParseFacts, fnByLine map[int]types.FunctionID, line int) types.FunctionID {
	var best types.FunctionID
	bestSpan := -1
	found := false
	for _, fn := range facts.Functions {
		if line < fn.StartLine || line > fn.EndLine {
			continue
		}
		span := fn.EndLine - fn.StartLine
		if !found || span < bestSpan {
			best = fnByLine[fn.StartLine]
			bestSpan = span
			found = true
		}
	}
	return best
}

// Resolve runs the six-strategy cascade over every queued call site and
// inserts the resulting edges into the graph, returning the count of call
// sites that could not be resolved by any strategy.
func (b *Builder) Resolve() int {
	resolver := NewResolver(b.graph, b.imports, b.exports)
	unresolved := 0
	for _, pc := range b.pending {
		edge, ok := resolver.Resolve(pc.callerID, pc.file, pc.site)
		if !ok {
			unresolved++
			continue
		}
		b.graph.AddEdge(edge)
	}
	b.pending = nil
	return unresolved
}

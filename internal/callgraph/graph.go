// Package callgraph builds and queries the arena-indexed function call
// graph (§4.6): nodes are addressed by a FunctionID (arena index) rather
// than pointer. A FunctionID stays valid while functions are only added;
// RemoveFile compacts the arena and renumbers the surviving nodes, so ids
// held across a RemoveFile call must be re-resolved by name or file.
package callgraph

import (
	"sync"

	"sourcelens/internal/types"
)

// node is the arena entry for one Function.
type node struct {
	fn       types.Function
	outEdges []int // indices into Graph.edges
	inEdges  []int
}

// Graph is a directed, possibly-cyclic call graph over Function nodes,
// addressed by FunctionID (arena index) rather than pointer.
type Graph struct {
	mu    sync.RWMutex
	nodes []node
	edges []types.CallEdge

	byQualified map[string][]types.FunctionID // qualified/plain name -> candidate nodes
	byFile      map[string][]types.FunctionID
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		byQualified: make(map[string][]types.FunctionID),
		byFile:      make(map[string][]types.FunctionID),
	}
}

// AddFunction inserts a Function and returns its stable FunctionID.
func (g *Graph) AddFunction(fn types.Function) types.FunctionID {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := types.FunctionID(len(g.nodes))
	g.nodes = append(g.nodes, node{fn: fn})

	g.byFile[fn.File] = append(g.byFile[fn.File], id)
	g.byQualified[fn.Name] = append(g.byQualified[fn.Name], id)
	if fn.QualifiedName != "" {
		g.byQualified[fn.QualifiedName] = append(g.byQualified[fn.QualifiedName], id)
	}
	return id
}

// Function returns the Function for id.
func (g *Graph) Function(id types.FunctionID) (types.Function, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if int(id) >= len(g.nodes) {
		return types.Function{}, false
	}
	return g.nodes[id].fn, true
}

// CandidatesByName returns every FunctionID registered under name (exact
// match on either Function.Name or Function.QualifiedName).
func (g *Graph) CandidatesByName(name string) []types.FunctionID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]types.FunctionID(nil), g.byQualified[name]...)
}

// CandidatesByFile returns every FunctionID declared in file.
func (g *Graph) CandidatesByFile(file string) []types.FunctionID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]types.FunctionID(nil), g.byFile[file]...)
}

// AddEdge inserts a resolved CallEdge and updates both endpoints' adjacency
// lists. No dangling reference is created: callers must have already
// inserted both caller and callee via AddFunction (§8.1 invariant 7).
func (g *Graph) AddEdge(edge types.CallEdge) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := len(g.edges)
	g.edges = append(g.edges, edge)
	g.nodes[edge.Caller].outEdges = append(g.nodes[edge.Caller].outEdges, idx)
	g.nodes[edge.Callee].inEdges = append(g.nodes[edge.Callee].inEdges, idx)
}

// OutEdges returns the call edges leaving id.
func (g *Graph) OutEdges(id types.FunctionID) []types.CallEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if int(id) >= len(g.nodes) {
		return nil
	}
	out := make([]types.CallEdge, 0, len(g.nodes[id].outEdges))
	for _, idx := range g.nodes[id].outEdges {
		out = append(out, g.edges[idx])
	}
	return out
}

// InEdges returns the call edges arriving at id.
func (g *Graph) InEdges(id types.FunctionID) []types.CallEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if int(id) >= len(g.nodes) {
		return nil
	}
	in := make([]types.CallEdge, 0, len(g.nodes[id].inEdges))
	for _, idx := range g.nodes[id].inEdges {
		in = append(in, g.edges[idx])
	}
	return in
}

// NodeCount returns the number of functions in the graph.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of call edges in the graph.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// RemoveFile evicts every function declared in file along with edges
// touching them, used by incremental rebuild (§4.6, §8.1 invariant 7:
// removing a file's functions never leaves a dangling edge). This rebuilds
// the arena compactly rather than leaving tombstoned slots, so FunctionIDs
// held by callers across a RemoveFile call must be treated as invalidated —
// callers re-resolve by name/file after an incremental update.
func (g *Graph) RemoveFile(file string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := make(map[types.FunctionID]bool)
	for _, id := range g.byFile[file] {
		removed[id] = true
	}
	if len(removed) == 0 {
		return
	}

	var keptNodes []node
	remap := make(map[types.FunctionID]types.FunctionID, len(g.nodes))
	for oldID := range g.nodes {
		id := types.FunctionID(oldID)
		if removed[id] {
			continue
		}
		remap[id] = types.FunctionID(len(keptNodes))
		keptNodes = append(keptNodes, node{fn: g.nodes[id].fn})
	}

	var keptEdges []types.CallEdge
	for _, e := range g.edges {
		if removed[e.Caller] || removed[e.Callee] {
			continue
		}
		keptEdges = append(keptEdges, types.CallEdge{
			Caller:     remap[e.Caller],
			Callee:     remap[e.Callee],
			CallSite:   e.CallSite,
			Strategy:   e.Strategy,
			Confidence: e.Confidence,
		})
	}

	g.nodes = keptNodes
	g.edges = nil
	g.byQualified = make(map[string][]types.FunctionID)
	g.byFile = make(map[string][]types.FunctionID)
	for id := range g.nodes {
		fid := types.FunctionID(id)
		fn := g.nodes[id].fn
		g.byFile[fn.File] = append(g.byFile[fn.File], fid)
		g.byQualified[fn.Name] = append(g.byQualified[fn.Name], fid)
		if fn.QualifiedName != "" {
			g.byQualified[fn.QualifiedName] = append(g.byQualified[fn.QualifiedName], fid)
		}
	}
	for _, e := range keptEdges {
		g.AddEdgeLocked(e)
	}
}

// AddEdgeLocked is AddEdge without acquiring the lock, used internally by
// RemoveFile's rebuild pass which already holds it.
func (g *Graph) AddEdgeLocked(edge types.CallEdge) {
	idx := len(g.edges)
	g.edges = append(g.edges, edge)
	g.nodes[edge.Caller].outEdges = append(g.nodes[edge.Caller].outEdges, idx)
	g.nodes[edge.Callee].inEdges = append(g.nodes[edge.Callee].inEdges, idx)
}

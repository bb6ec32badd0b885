package callgraph

import "sourcelens/internal/types"

// Direction selects traversal orientation for reachability queries.
type Direction int

const (
	// Forward follows outgoing edges (who does id call, transitively).
	Forward Direction = iota
	// Inverse follows incoming edges (who calls id, transitively) — used
	// for blast-radius / impact analysis.
	Inverse
)

// Reachable performs a cycle-safe BFS from start up to maxDepth hops
// (maxDepth <= 0 means unbounded), returning every FunctionID reached
// excluding start itself. The visited set prevents revisiting nodes on
// cyclic graphs (mutual recursion, recursive call chains).
func (g *Graph) Reachable(start types.FunctionID, dir Direction, maxDepth int) []types.FunctionID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[types.FunctionID]bool{start: true}
	frontier := []types.FunctionID{start}
	var result []types.FunctionID

	depth := 0
	for len(frontier) > 0 {
		if maxDepth > 0 && depth >= maxDepth {
			break
		}
		var next []types.FunctionID
		for _, id := range frontier {
			for _, neighbor := range g.neighborsLocked(id, dir) {
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				result = append(result, neighbor)
				next = append(next, neighbor)
			}
		}
		frontier = next
		depth++
	}
	return result
}

func (g *Graph) neighborsLocked(id types.FunctionID, dir Direction) []types.FunctionID {
	if int(id) >= len(g.nodes) {
		return nil
	}
	var idxs []int
	if dir == Forward {
		idxs = g.nodes[id].outEdges
	} else {
		idxs = g.nodes[id].inEdges
	}
	out := make([]types.FunctionID, 0, len(idxs))
	for _, idx := range idxs {
		e := g.edges[idx]
		if dir == Forward {
			out = append(out, e.Callee)
		} else {
			out = append(out, e.Caller)
		}
	}
	return out
}

// CrossesBoundary reports whether traversing from a to b crosses a service
// boundary, determined by the caller-supplied classifier over file paths
// (§4.8 reachability: cross-service boundary counting). The classifier
// returns a boundary identifier per file; an empty identifier means no
// boundary membership.
func CrossesBoundary(aFile, bFile string, classify func(file string) string) bool {
	ab := classify(aFile)
	bb := classify(bFile)
	return ab != "" && bb != "" && ab != bb
}

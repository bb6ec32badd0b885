package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcelens/internal/types"
)

func fn(file, name, qualified string) types.Function {
	return types.Function{File: file, Name: name, QualifiedName: qualified, Language: types.LangGo, Exported: true}
}

func TestAddFunctionAndLookup(t *testing.T) {
	g := New()
	id := g.AddFunction(fn("a.go", "Foo", ""))

	got, ok := g.Function(id)
	require.True(t, ok)
	assert.Equal(t, "Foo", got.Name)

	assert.Len(t, g.CandidatesByFile("a.go"), 1)
	assert.Len(t, g.CandidatesByName("Foo"), 1)
}

func TestAddEdgeUpdatesAdjacency(t *testing.T) {
	g := New()
	caller := g.AddFunction(fn("a.go", "Main", ""))
	callee := g.AddFunction(fn("a.go", "Helper", ""))

	g.AddEdge(types.CallEdge{Caller: caller, Callee: callee, Strategy: types.StrategySameFile, Confidence: 0.95})

	assert.Len(t, g.OutEdges(caller), 1)
	assert.Len(t, g.InEdges(callee), 1)
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 2, g.NodeCount())
}

func TestRemoveFileNoDanglingEdges(t *testing.T) {
	g := New()
	a := g.AddFunction(fn("a.go", "A", ""))
	b := g.AddFunction(fn("b.go", "B", ""))
	g.AddEdge(types.CallEdge{Caller: a, Callee: b, Strategy: types.StrategySameFile, Confidence: 0.95})

	g.RemoveFile("a.go")

	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())
	remaining := g.CandidatesByFile("b.go")
	require.Len(t, remaining, 1)
	assert.Empty(t, g.InEdges(remaining[0]))
}

func TestRemoveFileRemapsSurvivingEdges(t *testing.T) {
	g := New()
	a := g.AddFunction(fn("a.go", "A", ""))
	b := g.AddFunction(fn("b.go", "B", ""))
	c := g.AddFunction(fn("c.go", "C", ""))
	g.AddEdge(types.CallEdge{Caller: b, Callee: c, Strategy: types.StrategySameFile, Confidence: 0.95})
	_ = a

	g.RemoveFile("a.go")

	require.Equal(t, 2, g.NodeCount())
	bIDs := g.CandidatesByFile("b.go")
	cIDs := g.CandidatesByFile("c.go")
	require.Len(t, bIDs, 1)
	require.Len(t, cIDs, 1)
	out := g.OutEdges(bIDs[0])
	require.Len(t, out, 1)
	assert.Equal(t, cIDs[0], out[0].Callee)
}

func TestReachableForwardAndInverse(t *testing.T) {
	g := New()
	a := g.AddFunction(fn("a.go", "A", ""))
	b := g.AddFunction(fn("b.go", "B", ""))
	c := g.AddFunction(fn("c.go", "C", ""))
	g.AddEdge(types.CallEdge{Caller: a, Callee: b})
	g.AddEdge(types.CallEdge{Caller: b, Callee: c})

	fwd := g.Reachable(a, Forward, 0)
	assert.ElementsMatch(t, []types.FunctionID{b, c}, fwd)

	inv := g.Reachable(c, Inverse, 0)
	assert.ElementsMatch(t, []types.FunctionID{a, b}, inv)
}

func TestReachableHandlesCycles(t *testing.T) {
	g := New()
	a := g.AddFunction(fn("a.go", "A", ""))
	b := g.AddFunction(fn("b.go", "B", ""))
	g.AddEdge(types.CallEdge{Caller: a, Callee: b})
	g.AddEdge(types.CallEdge{Caller: b, Callee: a})

	fwd := g.Reachable(a, Forward, 0)
	assert.ElementsMatch(t, []types.FunctionID{b}, fwd)
}

func TestReachableRespectsMaxDepth(t *testing.T) {
	g := New()
	a := g.AddFunction(fn("a.go", "A", ""))
	b := g.AddFunction(fn("b.go", "B", ""))
	c := g.AddFunction(fn("c.go", "C", ""))
	g.AddEdge(types.CallEdge{Caller: a, Callee: b})
	g.AddEdge(types.CallEdge{Caller: b, Callee: c})

	one := g.Reachable(a, Forward, 1)
	assert.ElementsMatch(t, []types.FunctionID{b}, one)
}

func TestResolverSameFilePreferredOverFuzzy(t *testing.T) {
	g := New()
	caller := g.AddFunction(fn("a.go", "Main", ""))
	local := g.AddFunction(fn("a.go", "Helper", ""))
	elsewhere := g.AddFunction(fn("z.go", "Helper", ""))
	_ = elsewhere

	r := NewResolver(g, nil, nil)
	edge, ok := r.Resolve(caller, "a.go", types.CallSite{Callee: "Helper", Line: 10})
	require.True(t, ok)
	assert.Equal(t, local, edge.Callee)
	assert.Equal(t, types.StrategySameFile, edge.Strategy)
}

func TestResolverMethodCall(t *testing.T) {
	g := New()
	caller := g.AddFunction(fn("a.go", "Main", ""))
	method := g.AddFunction(fn("b.go", "Describe", "Widget.Describe"))

	r := NewResolver(g, nil, nil)
	edge, ok := r.Resolve(caller, "a.go", types.CallSite{Receiver: "Widget", Callee: "Describe", Line: 5})
	require.True(t, ok)
	assert.Equal(t, method, edge.Callee)
	assert.Equal(t, types.StrategyMethodCall, edge.Strategy)
}

func TestResolverImportBased(t *testing.T) {
	g := New()
	caller := g.AddFunction(fn("a.go", "Main", ""))
	target := g.AddFunction(fn("pkg/util.go", "Format", ""))

	imports := map[string][]string{"a.go": {"pkg"}}
	r := NewResolver(g, imports, nil)
	edge, ok := r.Resolve(caller, "a.go", types.CallSite{Callee: "Format", Line: 3})
	require.True(t, ok)
	assert.Equal(t, target, edge.Callee)
	assert.Equal(t, types.StrategyImportBased, edge.Strategy)
}

func TestResolverNoMatchReturnsFalse(t *testing.T) {
	g := New()
	caller := g.AddFunction(fn("a.go", "Main", ""))

	r := NewResolver(g, nil, nil)
	_, ok := r.Resolve(caller, "a.go", types.CallSite{Callee: "Nonexistent", Line: 1})
	assert.False(t, ok)
}

func TestResolverFuzzyFallback(t *testing.T) {
	g := New()
	caller := g.AddFunction(fn("a.go", "Main", ""))
	unexported := types.Function{File: "z.go", Name: "helper", Language: types.LangGo, Exported: false}
	target := g.AddFunction(unexported)

	r := NewResolver(g, nil, nil)
	edge, ok := r.Resolve(caller, "a.go", types.CallSite{Callee: "helper", Line: 1})
	require.True(t, ok)
	assert.Equal(t, target, edge.Callee)
	assert.Equal(t, types.StrategyFuzzy, edge.Strategy)
}

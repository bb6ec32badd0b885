package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcelens/internal/types"
)

func TestBuilderResolvesSameFileCall(t *testing.T) {
	b := NewBuilder()
	b.AddFile(FileFacts{
		Path: "a.go",
		Facts: &types.ParseFacts{
			Functions: []types.Function{
				{File: "a.go", Name: "Main", StartLine: 1, EndLine: 5},
				{File: "a.go", Name: "Helper", StartLine: 10, EndLine: 15},
			},
			CallSites: []types.CallSite{
				{Callee: "Helper", Line: 3},
			},
		},
	})

	unresolved := b.Resolve()
	assert.Equal(t, 0, unresolved)
	assert.Equal(t, 1, b.Graph().EdgeCount())
}

func TestBuilderLeavesUnknownCalleeUnresolved(t *testing.T) {
	b := NewBuilder()
	b.AddFile(FileFacts{
		Path: "a.go",
		Facts: &types.ParseFacts{
			Functions: []types.Function{
				{File: "a.go", Name: "Main", StartLine: 1, EndLine: 5},
			},
			CallSites: []types.CallSite{
				{Callee: "Ghost", Line: 2},
			},
		},
	})

	unresolved := b.Resolve()
	assert.Equal(t, 1, unresolved)
	assert.Equal(t, 0, b.Graph().EdgeCount())
}

func TestBuilderCrossFileImportResolution(t *testing.T) {
	b := NewBuilder()
	b.AddFile(FileFacts{
		Path: "pkg/util.go",
		Facts: &types.ParseFacts{
			Functions: []types.Function{
				{File: "pkg/util.go", Name: "Format", Exported: true, StartLine: 1, EndLine: 3},
			},
		},
	})
	b.AddFile(FileFacts{
		Path: "main.go",
		Facts: &types.ParseFacts{
			Functions: []types.Function{
				{File: "main.go", Name: "Main", StartLine: 1, EndLine: 10},
			},
			Imports: []types.ImportDecl{{Path: "pkg"}},
			CallSites: []types.CallSite{
				{Callee: "Format", Line: 4},
			},
		},
	})

	unresolved := b.Resolve()
	require.Equal(t, 0, unresolved)
	assert.Equal(t, 1, b.Graph().EdgeCount())
}

package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sourcelens/internal/types"
)

const goSample = `package sample

import "fmt"

func Add(a int, b int) int {
	return a + b
}

type Widget struct {
	Name string
}

func (w *Widget) Describe() string {
	fmt.Println(w.Name)
	return w.Name
}
`

func TestParseGoExtractsFunctionsAndClasses(t *testing.T) {
	p := NewTreeSitterParser()
	facts, err := p.Parse(context.Background(), types.LangGo, 42, []byte(goSample))
	require.NoError(t, err)

	assert.False(t, facts.HasErrors)
	assert.GreaterOrEqual(t, len(facts.Functions), 2)

	var foundAdd, foundDescribe bool
	for _, fn := range facts.Functions {
		if fn.Name == "Add" {
			foundAdd = true
			assert.True(t, fn.Exported)
			assert.Len(t, fn.Params, 2)
		}
		if fn.Name == "Describe" {
			foundDescribe = true
			assert.Equal(t, "Widget.Describe", fn.QualifiedName)
		}
	}
	assert.True(t, foundAdd)
	assert.True(t, foundDescribe)
	assert.NotEmpty(t, facts.Classes)
	assert.NotEmpty(t, facts.Imports)
}

func TestParseDeterministic(t *testing.T) {
	p := NewTreeSitterParser()
	f1, err := p.Parse(context.Background(), types.LangGo, 1, []byte(goSample))
	require.NoError(t, err)
	f2, err := p.Parse(context.Background(), types.LangGo, 1, []byte(goSample))
	require.NoError(t, err)

	require.Equal(t, len(f1.Functions), len(f2.Functions))
	for i := range f1.Functions {
		assert.Equal(t, f1.Functions[i].SignatureHash, f2.Functions[i].SignatureHash)
		assert.Equal(t, f1.Functions[i].BodyHash, f2.Functions[i].BodyHash)
	}
}

func TestParseUnsupportedLanguage(t *testing.T) {
	p := NewTreeSitterParser()
	_, err := p.Parse(context.Background(), types.LangUnknown, 1, []byte("x"))
	require.Error(t, err)
	assert.True(t, types.IsNotSupported(err))
}

func TestParseSyntaxErrorReported(t *testing.T) {
	p := NewTreeSitterParser()
	facts, err := p.Parse(context.Background(), types.LangGo, 2, []byte("package x\nfunc ("))
	require.NoError(t, err)
	assert.True(t, facts.HasErrors)
}

func TestRegistryCachesResults(t *testing.T) {
	r := NewRegistry(10)
	ctx := context.Background()

	facts1, err := r.Parse(ctx, types.LangGo, 99, []byte(goSample))
	require.NoError(t, err)
	assert.Equal(t, 1, r.cache.Len())

	facts2, err := r.Parse(ctx, types.LangGo, 99, []byte(goSample))
	require.NoError(t, err)
	assert.Same(t, facts1, facts2)
}

func TestRegistryEvictsAtCapacity(t *testing.T) {
	r := NewRegistry(1)
	ctx := context.Background()

	_, err := r.Parse(ctx, types.LangGo, 1, []byte(goSample))
	require.NoError(t, err)
	_, err = r.Parse(ctx, types.LangGo, 2, []byte(goSample+"\n// pad"))
	require.NoError(t, err)

	assert.Equal(t, 1, r.cache.Len())
}

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blueforge/internal/descriptor"
)

func TestFilterDropsCollisions(t *testing.T) {
	m := &Manifest{
		Functions: []FunctionSignature{
			{Name: "Fire"},
			{Name: "TakeDamage"},
			{Name: "Reload"},
		},
		Variables: []VariableDeclaration{
			{Name: "Ammo", Kind: descriptor.KindInt},
			{Name: "Health", Kind: descriptor.KindFloat},
		},
		Components: []ComponentDeclaration{
			{Name: "Mesh", ClassName: "StaticMeshComponent"},
		},
	}

	own := NewSymbolSet("Fire", "Health")
	inherited := NewSymbolSet("TakeDamage")

	out := Filter(m, own, inherited)

	require.Len(t, out.Functions, 1)
	assert.Equal(t, "Reload", out.Functions[0].Name)
	require.Len(t, out.Variables, 1)
	assert.Equal(t, "Ammo", out.Variables[0].Name)

	// Components are never filtered against inherited symbols.
	assert.Len(t, out.Components, 1)

	// Inputs stay untouched.
	assert.Len(t, m.Functions, 3)
	assert.Len(t, m.Variables, 2)
}

func TestFilterIsCaseSensitive(t *testing.T) {
	m := &Manifest{Functions: []FunctionSignature{{Name: "fire"}}}
	out := Filter(m, NewSymbolSet("Fire"), NewSymbolSet())
	assert.Len(t, out.Functions, 1)
}

func TestSymbolSetMerge(t *testing.T) {
	s := NewSymbolSet("A")
	s.Merge(NewSymbolSet("B", "C"))
	assert.True(t, s.Has("A"))
	assert.True(t, s.Has("B"))
	assert.True(t, s.Has("C"))
	assert.False(t, s.Has("D"))
}

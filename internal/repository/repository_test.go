package repository_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tobix/bfprove/internal/ast"
	"github.com/tobix/bfprove/internal/repository"
)

type fakeArtifact struct {
	value int32
	calls int
}

func (f *fakeArtifact) Call(arg int32) int32 {
	f.calls++
	return f.value
}

func TestDeleteMakesCallsResolveToZero(t *testing.T) {
	// Deleting a function makes subsequent calls via Call (the
	// trampoline's resolution path) yield 0.
	repo := repository.New()
	repo.Replace("f", &fakeArtifact{value: 42})
	require.Equal(t, int32(42), repo.Call("f", 0))

	repo.Delete("f")
	require.Equal(t, int32(0), repo.Call("f", 0))
}

func TestReplacePreservesSupersededArtifactInGraveyard(t *testing.T) {
	// Redefinition doesn't destroy the old artifact; it moves to the
	// graveyard, and the repository can report how many live there so
	// an in-flight caller holding the old one stays valid.
	repo := repository.New()
	old := &fakeArtifact{value: 1}
	repo.Replace("f", old)
	require.Equal(t, 0, repo.GraveyardSize())

	repo.Replace("f", &fakeArtifact{value: 2})
	require.Equal(t, 1, repo.GraveyardSize())
	require.Equal(t, int32(2), repo.Call("f", 0), "new calls see the new body")
	require.Equal(t, int32(1), old.Call(0), "the old artifact is still callable directly")
}

func TestInsertPlaceholderMovesPreviousToGraveyard(t *testing.T) {
	repo := repository.New()
	repo.Replace("f", &fakeArtifact{value: 7})
	def := ast.FunctionDef{Name: "f", Body: ast.Number{Value: 1}}
	repo.InsertPlaceholder(def, &fakeArtifact{value: 0})
	require.Equal(t, 1, repo.GraveyardSize())

	pending, ok := repo.TakePending("f")
	require.True(t, ok)
	require.Equal(t, "f", pending.Name)

	_, ok = repo.TakePending("f")
	require.False(t, ok, "TakePending is consumed exactly once")
}

func TestUnknownNameResolvesToZero(t *testing.T) {
	repo := repository.New()
	require.Equal(t, int32(0), repo.Call("never-defined", 5))
}

func TestListReflectsInstalledNames(t *testing.T) {
	repo := repository.New()
	repo.Replace("a", &fakeArtifact{value: 1})
	repo.Replace("b", &fakeArtifact{value: 2})
	require.ElementsMatch(t, []string{"a", "b"}, repo.List())

	repo.Delete("a")
	require.ElementsMatch(t, []string{"b"}, repo.List())
}

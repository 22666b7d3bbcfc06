package intern_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashcpp/corefront/internal/intern"
)

func TestInternStableAndDeduped(t *testing.T) {
	in := intern.New()
	h1 := in.Intern("Foo")
	h2 := in.Intern("Bar")
	h3 := in.Intern("Foo")

	require.Equal(t, h1, h3)
	require.NotEqual(t, h1, h2)

	s, ok := in.Lookup(h1)
	require.True(t, ok)
	require.Equal(t, "Foo", s)
}

func TestLookupInvalidHandle(t *testing.T) {
	in := intern.New()
	_, ok := in.Lookup(intern.Handle(42))
	require.False(t, ok)
}

func TestFindWithoutInterning(t *testing.T) {
	in := intern.New()
	_, ok := in.Find("nope")
	require.False(t, ok)

	h := in.Intern("nope")
	found, ok := in.Find("nope")
	require.True(t, ok)
	require.Equal(t, h, found)
}

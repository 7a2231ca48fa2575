package sym

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertMangling(t *testing.T) {
	tbl := New()

	m := tbl.Insert("x")
	require.Equal(t, "x", m)

	m = tbl.Insert("_private")
	require.Equal(t, "__private", m, "leading underscore doubles")

	m = tbl.Insert("n1")
	require.Equal(t, "n1_", m, "trailing digit gets a guard underscore")

	m = tbl.Insert("y_")
	require.Equal(t, "y__", m)
}

func TestInsertShadowing(t *testing.T) {
	tbl := New()

	outer := tbl.Insert("x")

	tbl.EnterScope()
	inner := tbl.Insert("x")
	tbl.ExitScope()

	require.NotEqual(t, outer, inner)

	got, err := tbl.Lookup("x")
	require.NoError(t, err)
	require.Equal(t, outer, got, "exiting the inner scope restores the outer binding")
}

func TestLookupUnbound(t *testing.T) {
	tbl := New()

	_, err := tbl.Lookup("nope")
	require.Error(t, err)
}

func TestArrayInfo(t *testing.T) {
	tbl := New()

	m := tbl.Insert("a")
	tbl.SetArray(m, ArrayInfo{Dims: []int{2, 3}})

	info, ok := tbl.Array(m)
	require.True(t, ok)
	require.Equal(t, []int{2, 3}, info.Dims)
}

func TestGlobalScope(t *testing.T) {
	tbl := New()

	g := tbl.Insert("g")
	require.True(t, tbl.IsGlobal(g))

	tbl.EnterScope()
	l := tbl.Insert("l")
	require.False(t, tbl.IsGlobal(l))
	tbl.ExitScope()
}

func TestNewTempAndLabel(t *testing.T) {
	tbl := New()

	require.Equal(t, "_t0", tbl.NewTemp())
	require.Equal(t, "_t1", tbl.NewTemp())
	require.Equal(t, "_l0", tbl.NewLabel())
}

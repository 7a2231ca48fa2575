package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerefSentinel(t *testing.T) {
	ptr, ok := DerefSentinel("*p")
	require.True(t, ok)
	require.Equal(t, "p", ptr)

	_, ok = DerefSentinel("p")
	require.False(t, ok)
}

func TestFunctionBounds(t *testing.T) {
	list := List{
		FuncDef{Name: "a"},
		LoadImm{Dst: "x", Imm: 1},
		FuncDef{Name: "b"},
		Return{},
	}

	bounds := FunctionBounds(list)
	require.Equal(t, [][2]int{{0, 2}, {2, 4}}, bounds)
}

func TestLabelMapAndSuccessors(t *testing.T) {
	list := List{
		Label{Name: "l0"},
		CondGoto{A: "a", B: "b", Op: Lt, Label: "l1"},
		Goto{Label: "l0"},
		Label{Name: "l1"},
		Return{},
	}

	labels := LabelMap(list)
	require.Equal(t, 3, labels["l1"])

	succ, err := Successors(list, 1, labels)
	require.NoError(t, err)
	require.ElementsMatch(t, []int{2, 3}, succ)

	succ, err = Successors(list, 4, labels)
	require.NoError(t, err)
	require.Nil(t, succ)
}

func TestSuccessorsUndefinedLabel(t *testing.T) {
	list := List{Goto{Label: "missing"}}

	_, err := Successors(list, 0, map[string]int{})
	require.Error(t, err)
}

func TestUseDef(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, Use(Binop{Dst: "d", A: "a", B: "b", Op: Add}))
	require.Equal(t, "d", Def(Binop{Dst: "d", A: "a", B: "b", Op: Add}))
	require.Nil(t, Use(Call{Name: "f"}))
	require.Equal(t, "", Def(Call{Name: "f"}))
	require.Equal(t, "r", Def(CallWithRet{Dst: "r", Name: "f"}))
}

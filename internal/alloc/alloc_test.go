package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/internal/asm"
	"github.com/minic-lang/minic/internal/live"
)

func TestAllocateNoContention(t *testing.T) {
	intervals := map[string]live.Interval{
		"a": {Start: 0, End: 2},
		"b": {Start: 1, End: 3},
	}

	res := Allocate(intervals, nil)

	require.Empty(t, res.Spilled)
	require.Len(t, res.Reg, 2)

	ra, ok := res.Reg["a"]
	require.True(t, ok)

	rb, ok := res.Reg["b"]
	require.True(t, ok)

	require.NotEqual(t, ra, rb)
}

func TestAllocatePreassigned(t *testing.T) {
	intervals := map[string]live.Interval{
		"x": {Start: 0, End: 1},
	}

	res := Allocate(intervals, map[string]int{"x": asm.ArgRegs[0]})

	require.Equal(t, asm.ArgRegs[0], res.Reg["x"])
}

// TestAllocateSpillsUnderPressure constructs more simultaneously-live
// identifiers than there are callee-saved registers (spec.md §8 scenario
// 3, "spill under pressure") and checks that the overflow spills rather
// than aliasing a register.
func TestAllocateSpillsUnderPressure(t *testing.T) {
	intervals := map[string]live.Interval{}

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n"}
	for _, n := range names {
		intervals[n] = live.Interval{Start: 0, End: len(names)}
	}

	res := Allocate(intervals, nil)

	require.Len(t, res.Reg, len(asm.CalleeSaved))
	require.Len(t, res.Spilled, len(names)-len(asm.CalleeSaved))

	for name := range res.Reg {
		_, alsoSpilled := res.Spilled[name]
		require.False(t, alsoSpilled, "an identifier is never both resident and spilled")
	}
}

func TestExpireFreesRegisterForLaterInterval(t *testing.T) {
	intervals := map[string]live.Interval{
		"early": {Start: 0, End: 1},
		"late":  {Start: 2, End: 3},
	}

	res := Allocate(intervals, nil)

	require.Equal(t, res.Reg["early"], res.Reg["late"], "late starts after early ends, so it reuses the freed register")
}

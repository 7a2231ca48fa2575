package live

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/internal/ir"
)

// straightLine is `a <- 1; b <- 2; c <- a+b; return c`: a and b are each
// live from their own definition up to the Binop that consumes them, and
// dead afterward.
func straightLine() ir.List {
	return ir.List{
		ir.FuncDef{Name: "f"},
		ir.LoadImm{Dst: "a", Imm: 1},
		ir.LoadImm{Dst: "b", Imm: 2},
		ir.Binop{Dst: "c", A: "a", B: "b", Op: ir.Add},
		ir.ReturnWithVal{Name: "c"},
	}
}

func TestAnalyzeStraightLine(t *testing.T) {
	res, err := Analyze(straightLine())
	require.NoError(t, err)

	require.True(t, res.Out[1].has("a"), "a must be live out of its own definition")
	require.True(t, res.Out[2].has("b"), "b must be live out of its own definition")
	require.False(t, res.Out[3].has("a"), "a is dead after the Binop consumes it")

	ivs := res.Intervals()
	require.Equal(t, Interval{Start: 1, End: 3}, ivs["a"])
	require.Equal(t, Interval{Start: 2, End: 3}, ivs["b"])
	require.Equal(t, Interval{Start: 3, End: 4}, ivs["c"])
}

func TestAnalyzeLoopBack(t *testing.T) {
	// while (i < n) { i = i + 1; } return i;
	fn := ir.List{
		ir.FuncDef{Name: "f"},
		ir.Param{Name: "n"},
		ir.LoadImm{Dst: "i", Imm: 0},
		ir.Label{Name: "cond"},
		ir.CondGoto{A: "i", B: "n", Op: ir.Lt, Label: "body"},
		ir.Goto{Label: "end"},
		ir.Label{Name: "body"},
		ir.BinopImm{Dst: "i", A: "i", Imm: 1, Op: ir.Add},
		ir.Goto{Label: "cond"},
		ir.Label{Name: "end"},
		ir.ReturnWithVal{Name: "i"},
	}

	res, err := Analyze(fn)
	require.NoError(t, err)

	// n is live across the whole loop: it's read by every CondGoto.
	require.True(t, res.Out[2].has("n"))
	require.True(t, res.Out[7].has("n"))
}

func TestUndefinedLabelErrors(t *testing.T) {
	fn := ir.List{
		ir.FuncDef{Name: "f"},
		ir.Goto{Label: "nowhere"},
	}

	_, err := Analyze(fn)
	require.Error(t, err)
}

package back

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/internal/alloc"
	"github.com/minic-lang/minic/internal/asm"
	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/internal/live"
)

// identityProgram is spec.md §8 scenario 1: `int id(int x) { return x; }`.
func identityProgram() ir.List {
	return ir.List{
		ir.FuncDef{Name: "id"},
		ir.Param{Name: "x"},
		ir.ReturnWithVal{Name: "x"},
	}
}

func TestCompileIdentityFunction(t *testing.T) {
	obj, err := Compile(context.Background(), identityProgram())
	require.NoError(t, err)

	text := string(obj)

	require.Contains(t, text, "id:")
	require.Contains(t, text, "ret")
	require.NotContains(t, text, "ra", "a leaf function makes no call and so never spills ra")
}

// TestCompileSpillsUnderPressure mirrors spec.md §8 scenario 3: fourteen
// locals all live at once compete for the 12 callee-saved registers, so
// the allocator must spill at least one of them, and the whole function
// still compiles.
func TestCompileSpillsUnderPressure(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n"}

	fn := ir.List{ir.FuncDef{Name: "sum14"}}
	for idx, n := range names {
		fn = append(fn, ir.LoadImm{Dst: n, Imm: idx})
	}

	acc := names[0]
	for _, n := range names[1:] {
		dst := "_acc_" + n
		fn = append(fn, ir.Binop{Dst: dst, A: acc, B: n, Op: ir.Add})
		acc = dst
	}
	fn = append(fn, ir.ReturnWithVal{Name: acc})

	liveness, err := live.Analyze(fn)
	require.NoError(t, err)

	result := alloc.Allocate(liveness.Intervals(), nil)
	require.NotEmpty(t, result.Spilled,
		"14 long-lived values over 12 callee-saved registers must spill at least one")

	obj, err := Compile(context.Background(), fn)
	require.NoError(t, err)

	text := string(obj)
	require.Contains(t, text, "sum14:")
	require.True(t, strings.Contains(text, "sw") && strings.Contains(text, "lw"),
		"the callee-saved registers the allocation uses are saved and restored")
}

func TestCompileNinthArgument(t *testing.T) {
	args := make([]string, 10)
	for i := range args {
		args[i] = string(rune('a' + i))
	}

	callee := ir.List{ir.FuncDef{Name: "g"}}
	for _, a := range args {
		callee = append(callee, ir.Param{Name: a})
	}
	callee = append(callee, ir.ReturnWithVal{Name: args[0]})

	caller := ir.List{ir.FuncDef{Name: "f"}}
	for _, a := range args {
		caller = append(caller, ir.LoadImm{Dst: a, Imm: 1})
	}
	for _, a := range args {
		caller = append(caller, ir.Arg{Name: a})
	}
	caller = append(caller, ir.Call{Name: "g"})
	caller = append(caller, ir.Return{})

	obj, err := Compile(context.Background(), append(caller, callee...))
	require.NoError(t, err)

	text := string(obj)
	require.Contains(t, text, "0(sp)")
	require.Contains(t, text, "4(sp)")
}

// TestCompileSavesRAOnlyWhenCalling mirrors ir.cpp's foundCall-conditional
// ra save: a function that calls another must save and restore ra, since
// the call clobbers it.
func TestCompileSavesRAOnlyWhenCalling(t *testing.T) {
	fn := ir.List{
		ir.FuncDef{Name: "f"},
		ir.Param{Name: "a"},
		ir.Arg{Name: "a"},
		ir.Call{Name: "g"},
		ir.Return{},
	}

	obj, err := Compile(context.Background(), fn)
	require.NoError(t, err)

	text := string(obj)
	require.Contains(t, text, "sw ra")
	require.Contains(t, text, "lw ra")
}

// TestCompileCrossCallPreservesValue mirrors spec.md §8 scenario 6:
// `int f(int a){ int x=a+1; int z=x+2; y=g(a); return x+y+z; }`. x and z
// are both defined before the call and read after it; since S registers
// are callee-saved by convention, the call site must not save or restore
// either one around the call, and the frame must not waste a slot on
// them.
func TestCompileCrossCallPreservesValue(t *testing.T) {
	fn := ir.List{
		ir.FuncDef{Name: "f"},
		ir.Param{Name: "a"},
		ir.BinopImm{Dst: "x", A: "a", Imm: 1, Op: ir.Add},
		ir.BinopImm{Dst: "z", A: "x", Imm: 2, Op: ir.Add},
		ir.Arg{Name: "a"},
		ir.CallWithRet{Dst: "y", Name: "g"},
		ir.Binop{Dst: "_t0", A: "x", B: "y", Op: ir.Add},
		ir.Binop{Dst: "_t1", A: "_t0", B: "z", Op: ir.Add},
		ir.ReturnWithVal{Name: "_t1"},
	}

	liveness, err := live.Analyze(fn)
	require.NoError(t, err)

	intervals := liveness.Intervals()
	result := alloc.Allocate(intervals, map[string]int{"a": asm.ArgRegs[0]})
	frame, err := BuildFrame(fn, result)
	require.NoError(t, err)

	require.False(t, result.Spilled["x"], "x fits in a register with only a handful of live identifiers")
	require.False(t, result.Spilled["z"], "z fits in a register with only a handful of live identifiers")

	_, hasSlot := frame.IdentOffset["x"]
	require.False(t, hasSlot, "a register-resident identifier crossing a call must not get a frame slot")
	_, hasSlot = frame.IdentOffset["z"]
	require.False(t, hasSlot, "a register-resident identifier crossing a call must not get a frame slot")

	obj, err := Compile(context.Background(), fn)
	require.NoError(t, err)

	text := string(obj)
	lines := strings.Split(text, "\n")

	for idx, line := range lines {
		if !strings.Contains(line, "call g") {
			continue
		}

		if idx > 0 {
			require.NotContains(t, lines[idx-1], "sw",
				"no S-register resident is saved immediately before the call")
		}
		if idx+1 < len(lines) {
			require.NotContains(t, lines[idx+1], "lw",
				"no S-register resident is reloaded immediately after the call")
		}
	}
}

func TestCompileRejectsOversizedPrologue(t *testing.T) {
	fn := ir.List{ir.FuncDef{Name: "huge"}}

	fn = append(fn, ir.VarDec{Name: "big", Size: 4096})
	fn = append(fn, ir.Return{})

	_, err := Compile(context.Background(), fn)
	require.Error(t, err)
}

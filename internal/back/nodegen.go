package back

import (
	"tlog.app/go/errors"

	"github.com/minic-lang/minic/internal/asm"
	"github.com/minic-lang/minic/internal/ir"
)

// generateNode emits the instructions for one IR node (spec.md §4.4),
// appending to fs.buf. i is the node's index within the function's
// sublist; generateNode does not read it (compileFunc puts the index
// into its own error messages).
func generateNode(fs *funcState, i int, n ir.Node) error {
	switch n := n.(type) {
	case ir.FuncDef, ir.Param, ir.VarDec, ir.GlobalVar, ir.Word:
		return nil

	case ir.LoadImm:
		reg, err := fs.allocateReg(n.Dst, false)
		if err != nil {
			return err
		}
		fs.emit(asm.Li(reg, n.Imm))
		fs.free(reg, true)
		return nil

	case ir.Assign:
		src, err := fs.allocateReg(n.Src, true)
		if err != nil {
			return err
		}
		dst, err := fs.allocateReg(n.Dst, false)
		if err != nil {
			return err
		}
		if dst != src {
			fs.emit(asm.Mv(dst, src))
		}
		fs.free(src, false)
		fs.free(dst, true)
		return nil

	case ir.Binop:
		a, err := fs.allocateReg(n.A, true)
		if err != nil {
			return err
		}
		b, err := fs.allocateReg(n.B, true)
		if err != nil {
			return err
		}
		d, err := fs.allocateReg(n.Dst, false)
		if err != nil {
			return err
		}
		fs.emit(asm.Rr(rrMnemonic(n.Op), d, a, b))
		fs.free(a, false)
		fs.free(b, false)
		fs.free(d, true)
		return nil

	case ir.BinopImm:
		a, err := fs.allocateReg(n.A, true)
		if err != nil {
			return err
		}
		d, err := fs.allocateReg(n.Dst, false)
		if err != nil {
			return err
		}
		if n.Imm == 0 && n.Op == ir.Add {
			if d != a {
				fs.emit(asm.Mv(d, a))
			}
		} else {
			fs.emit(asm.Ri(riMnemonic(n.Op), d, a, n.Imm))
		}
		fs.free(a, false)
		fs.free(d, true)
		return nil

	case ir.Unop:
		a, err := fs.allocateReg(n.A, true)
		if err != nil {
			return err
		}
		d, err := fs.allocateReg(n.Dst, false)
		if err != nil {
			return err
		}
		fs.emit(asm.Rr("sub", d, asm.Zero, a))
		fs.free(a, false)
		fs.free(d, true)
		return nil

	case ir.Load:
		p, err := fs.allocateReg(n.Ptr, true)
		if err != nil {
			return err
		}
		d, err := fs.allocateReg(n.Dst, false)
		if err != nil {
			return err
		}
		fs.emit(asm.Lw(d, p, 0))
		fs.free(p, false)
		fs.free(d, true)
		return nil

	case ir.Store:
		src, err := fs.allocateReg(n.Src, true)
		if err != nil {
			return err
		}
		p, err := fs.allocateReg(n.Ptr, true)
		if err != nil {
			return err
		}
		fs.emit(asm.Sw(src, p, 0))
		fs.free(src, false)
		fs.free(p, false)
		return nil

	case ir.Label:
		fs.clearTemps()
		fs.emit(asm.Lbl(n.Name))
		return nil

	case ir.Goto:
		fs.clearTemps()
		fs.emit(asm.J(n.Label))
		return nil

	case ir.CondGoto:
		fs.clearTemps()
		a, err := fs.allocateReg(n.A, true)
		if err != nil {
			return err
		}
		b, err := fs.allocateReg(n.B, true)
		if err != nil {
			return err
		}
		fs.emit(asm.Branch(branchMnemonic(n.Op), a, b, n.Label))
		fs.free(a, false)
		fs.free(b, false)
		return nil

	case ir.Arg:
		return generateArg(fs, n)

	case ir.Call:
		return generateCall(fs, "", n.Name)

	case ir.CallWithRet:
		return generateCall(fs, n.Dst, n.Name)

	case ir.Return:
		emitEpilogue(fs)
		return nil

	case ir.ReturnWithVal:
		reg, err := fs.allocateReg(n.Name, true)
		if err != nil {
			return err
		}
		if reg != asm.ArgRegs[0] {
			fs.emit(asm.Mv(asm.ArgRegs[0], reg))
		}
		fs.free(reg, false)
		emitEpilogue(fs)
		return nil

	case ir.LoadGlobal:
		d, err := fs.allocateReg(n.Dst, false)
		if err != nil {
			return err
		}
		fs.emit(asm.La(d, n.Global))
		fs.free(d, true)
		return nil

	default:
		return errors.New("back: no generator for IR node %T", n)
	}
}

// generateArg is the per-Arg-node half of spec.md §4.5: move the
// argument's value into a0..a7, or store it into this function's
// outgoing-arg scratch area for argument 9 and beyond.
func generateArg(fs *funcState, n ir.Arg) error {
	reg, err := fs.allocateReg(n.Name, true)
	if err != nil {
		return err
	}

	if fs.argIndex <= 8 {
		target := asm.ArgRegs[fs.argIndex-1]
		if reg != target {
			fs.emit(asm.Mv(target, reg))
		}
	} else {
		off := (fs.argIndex - 9) * 4
		fs.emit(asm.Sw(reg, asm.SP, off))
	}

	fs.free(reg, false)
	fs.argIndex++

	return nil
}

// generateCall is the call-site half of spec.md §4.5: flush temp-register
// tenancy, call, and (for CallWithRet) move the result into its
// destination. retDst is "" for a plain Call.
//
// A call never needs to save or restore an S-register resident: S is the
// callee-saved set, preserved by whatever function is called, not by its
// caller (any function that clobbers one of its own S registers already
// saves and restores it in its own prologue/epilogue).
func generateCall(fs *funcState, retDst, name string) error {
	fs.clearTemps()
	fs.emit(asm.CallInstr(name))

	if retDst != "" {
		d, err := fs.allocateReg(retDst, false)
		if err != nil {
			return err
		}
		if d != asm.ArgRegs[0] {
			fs.emit(asm.Mv(d, asm.ArgRegs[0]))
		}
		fs.free(d, true)
	}

	fs.argIndex = 1

	return nil
}

// emitPrologue is the frame setup described in spec.md §4.4 "Prologue
// emission": reserve the frame, save ra (only if this function makes a
// call of its own) and every callee-saved register the allocator used,
// then bind parameters 1..8 live in a0..a7 (no instructions needed for
// that last part — allocateReg treats them as already materialized).
func emitPrologue(fs *funcState, frame *Frame) {
	if frame.TotalSize > 0 {
		fs.emit(asm.Ri("addi", asm.SP, asm.SP, -frame.TotalSize))
	}

	if frame.SavesRA {
		fs.emit(asm.Sw(asm.RA, asm.SP, frame.RAOffset))
	}

	for _, reg := range frame.SavedRegs {
		fs.emit(asm.Sw(reg, asm.SP, frame.SavedRegOffset[reg]))
	}
}

// emitEpilogue restores every register the prologue saved and returns,
// invoked once per Return/ReturnWithVal node (a function may have
// several).
func emitEpilogue(fs *funcState) {
	frame := fs.frame

	for _, reg := range frame.SavedRegs {
		fs.emit(asm.Lw(reg, asm.SP, frame.SavedRegOffset[reg]))
	}

	if frame.SavesRA {
		fs.emit(asm.Lw(asm.RA, asm.SP, frame.RAOffset))
	}

	if frame.TotalSize > 0 {
		fs.emit(asm.Ri("addi", asm.SP, asm.SP, frame.TotalSize))
	}

	fs.emit(asm.Ret())
}

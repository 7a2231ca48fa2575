package lower

import (
	"tlog.app/go/errors"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/internal/sym"
)

// resolveDeref materializes a dereference sentinel (spec.md §3.2) into a
// fresh temporary via an explicit Load, the way every rhs-operand use
// site is required to. A plain (non-sentinel) name passes through
// unchanged.
func (l *Lowerer) resolveDeref(name string) string {
	ptr, ok := ir.DerefSentinel(name)
	if !ok {
		return name
	}

	t := l.table.NewTemp()
	l.emit(ir.Load{Dst: t, Ptr: ptr})

	return t
}

// lowerExpr lowers e, writing its value into dst if dst is non-empty or
// else into a fresh temporary, and returns the name holding the result.
// An LVal ignores dst and always yields a name of its own. The result may
// be a dereference sentinel (for a fully-subscripted
// array LVal) or a plain pointer (for a partially-subscripted one);
// callers that need a materialized value must call resolveDeref.
func (l *Lowerer) lowerExpr(dst string, e ast.Expr) (string, error) {
	switch e := e.(type) {
	case *ast.IntConst:
		if dst == "" {
			dst = l.table.NewTemp()
		}

		l.emit(ir.LoadImm{Dst: dst, Imm: e.Val})

		return dst, nil

	case *ast.Ident:
		mangled, err := l.table.Lookup(e.Name)
		if err != nil {
			return "", err
		}

		if dst == "" {
			dst = l.table.NewTemp()
		}

		if l.table.IsGlobal(mangled) {
			ptr := l.table.NewTemp()
			l.emit(ir.LoadGlobal{Dst: ptr, Global: mangled})
			l.emit(ir.Load{Dst: dst, Ptr: ptr})

			return dst, nil
		}

		l.emit(ir.Assign{Dst: dst, Src: mangled})

		return dst, nil

	case *ast.LVal:
		return l.lowerLVal(e)

	case *ast.Call:
		return l.lowerCall(dst, e)

	case *ast.Unary:
		return l.lowerUnary(dst, e)

	case *ast.Binary:
		if e.Op.IsRelational() || e.Op.IsLogical() {
			return l.materializeBool(dst, e)
		}

		return l.lowerArith(dst, e)

	default:
		return "", errors.New("unsupported expression %T", e)
	}
}

func (l *Lowerer) lowerUnary(dst string, e *ast.Unary) (string, error) {
	switch e.Op {
	case ast.UnaryPlus:
		return l.lowerExpr(dst, e.X)

	case ast.UnaryMinus:
		a, err := l.lowerExpr("", e.X)
		if err != nil {
			return "", err
		}

		a = l.resolveDeref(a)

		if dst == "" {
			dst = l.table.NewTemp()
		}

		l.emit(ir.Unop{Dst: dst, A: a, Op: ir.Neg})

		return dst, nil

	case ast.UnaryNot:
		return l.materializeBool(dst, e)

	default:
		return "", errors.New("unsupported unary operator %q", e.Op)
	}
}

func irBinOp(op ast.BinaryOp) ir.BinOp {
	return ir.BinOp(op)
}

func irRelOp(op ast.BinaryOp) ir.RelOp {
	return ir.RelOp(op)
}

// lowerArith lowers an arithmetic (non-relational, non-logical) Binary.
// A literal-int right operand is folded into the IR's BinopImm form
// instead of being loaded into its own temporary first; the emitter's
// "BinopImm with n=0 degrades to Assign" peephole (spec.md §4.4) handles
// the remaining `x + 0` case.
func (l *Lowerer) lowerArith(dst string, e *ast.Binary) (string, error) {
	if ic, ok := e.Right.(*ast.IntConst); ok {
		a, err := l.lowerExpr("", e.Left)
		if err != nil {
			return "", err
		}

		a = l.resolveDeref(a)

		if dst == "" {
			dst = l.table.NewTemp()
		}

		l.emit(ir.BinopImm{Dst: dst, A: a, Imm: ic.Val, Op: irBinOp(e.Op)})

		return dst, nil
	}

	a, err := l.lowerExpr("", e.Left)
	if err != nil {
		return "", err
	}

	a = l.resolveDeref(a)

	b, err := l.lowerExpr("", e.Right)
	if err != nil {
		return "", err
	}

	b = l.resolveDeref(b)

	if dst == "" {
		dst = l.table.NewTemp()
	}

	l.emit(ir.Binop{Dst: dst, A: a, B: b, Op: irBinOp(e.Op)})

	return dst, nil
}

// materializeBool lowers a relational/logical/not expression into a 0/1
// value via the standard diamond: lower it as a condition, then load the
// constant on each side of the join.
func (l *Lowerer) materializeBool(dst string, e ast.Expr) (string, error) {
	if dst == "" {
		dst = l.table.NewTemp()
	}

	trueL := l.table.NewLabel()
	falseL := l.table.NewLabel()
	endL := l.table.NewLabel()

	if err := l.lowerCond(e, trueL, falseL); err != nil {
		return "", err
	}

	l.emit(ir.Label{Name: trueL})
	l.emit(ir.LoadImm{Dst: dst, Imm: 1})
	l.emit(ir.Goto{Label: endL})
	l.emit(ir.Label{Name: falseL})
	l.emit(ir.LoadImm{Dst: dst, Imm: 0})
	l.emit(ir.Label{Name: endL})

	return dst, nil
}

func (l *Lowerer) lowerCall(dst string, call *ast.Call) (string, error) {
	callee, err := l.table.Lookup(call.Name)
	if err != nil {
		return "", err
	}

	argPlaces := make([]string, len(call.Args))

	for i, a := range call.Args {
		p, err := l.lowerExpr("", a)
		if err != nil {
			return "", err
		}

		argPlaces[i] = l.resolveDeref(p)
	}

	for _, p := range argPlaces {
		l.emit(ir.Arg{Name: p})
	}

	if dst == "" {
		dst = l.table.NewTemp()
	}

	l.emit(ir.CallWithRet{Dst: dst, Name: callee})

	return dst, nil
}

// lowerCallDiscard lowers a call whose return value is unused (an
// ExprStmt), emitting a plain Call rather than CallWithRet.
func (l *Lowerer) lowerCallDiscard(call *ast.Call) error {
	callee, err := l.table.Lookup(call.Name)
	if err != nil {
		return err
	}

	argPlaces := make([]string, len(call.Args))

	for i, a := range call.Args {
		p, err := l.lowerExpr("", a)
		if err != nil {
			return err
		}

		argPlaces[i] = l.resolveDeref(p)
	}

	for _, p := range argPlaces {
		l.emit(ir.Arg{Name: p})
	}

	l.emit(ir.Call{Name: callee})

	return nil
}

func (l *Lowerer) lowerLVal(lv *ast.LVal) (string, error) {
	mangled, err := l.table.Lookup(lv.Name)
	if err != nil {
		return "", err
	}

	info, isArray := l.table.Array(mangled)
	if !isArray {
		dst := l.table.NewTemp()

		if l.table.IsGlobal(mangled) {
			ptr := l.table.NewTemp()
			l.emit(ir.LoadGlobal{Dst: ptr, Global: mangled})
			l.emit(ir.Load{Dst: dst, Ptr: ptr})

			return dst, nil
		}

		l.emit(ir.Assign{Dst: dst, Src: mangled})

		return dst, nil
	}

	if len(lv.Subs) == 0 {
		return mangled, nil
	}

	ptr, full, err := l.lvalAddr(lv, mangled, info)
	if err != nil {
		return "", err
	}

	if !full {
		return ptr, nil
	}

	return "*" + ptr, nil
}

// lvalAddr computes the flat byte address of lv, an access into the
// array named mangled with shape info (spec.md §4.1 "LVal" and §8's
// flattened-offset invariant). It returns the address and whether all of
// info.Dims were subscripted (full); a partial subscript yields a
// pointer to a narrower sub-array instead of a scalar's address.
func (l *Lowerer) lvalAddr(lv *ast.LVal, mangled string, info sym.ArrayInfo) (ptr string, full bool, err error) {
	dims := info.Dims
	n := len(dims)
	k := len(lv.Subs)

	block := 4
	for _, d := range dims[k:] {
		block *= d
	}

	offset := ""

	for j := k; j >= 1; j-- {
		sub := lv.Subs[j-1]

		place, err := l.lowerExpr("", sub)
		if err != nil {
			return "", false, err
		}

		place = l.resolveDeref(place)

		term := l.table.NewTemp()
		l.emit(ir.BinopImm{Dst: term, A: place, Imm: block, Op: ir.Mul})

		if offset == "" {
			offset = term
		} else {
			next := l.table.NewTemp()
			l.emit(ir.Binop{Dst: next, A: offset, B: term, Op: ir.Add})
			offset = next
		}

		if j > 1 {
			block *= dims[j-1]
		}
	}

	base := mangled
	if l.table.IsGlobal(mangled) {
		base = l.table.NewTemp()
		l.emit(ir.LoadGlobal{Dst: base, Global: mangled})
	}

	ptr = l.table.NewTemp()
	l.emit(ir.Binop{Dst: ptr, A: base, B: offset, Op: ir.Add})

	return ptr, k == n, nil
}

package lower

import (
	"tlog.app/go/errors"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/internal/sym"
)

func arrayInfo(dims []int) sym.ArrayInfo {
	return sym.ArrayInfo{Dims: dims}
}

// lowerGlobalVarDecl emits the data-segment contribution of one top-level
// VarDecl: a GlobalVar label per def, followed by one Word per element
// (spec.md §6 point 2). Names were already inserted by declareTopLevel.
func (l *Lowerer) lowerGlobalVarDecl(decl *ast.VarDecl) error {
	for _, def := range decl.Defs {
		mangled, err := l.table.Lookup(def.Name)
		if err != nil {
			return err
		}

		l.emit(ir.GlobalVar{Name: mangled})

		if def.Array == nil {
			v := 0
			if def.Init != nil {
				e, ok := def.Init.(ast.Expr)
				if !ok {
					return errors.New("scalar global %q: non-scalar initializer", def.Name)
				}

				v, err = evalConst(e)
				if err != nil {
					return errors.Wrap(err, "global %q", def.Name)
				}
			}

			l.emit(ir.Word{Imm: v})

			continue
		}

		dims := def.Array.Dims

		var flat []ast.Expr
		if def.Init != nil {
			flat = flattenInit(dims, def.Init)
		} else {
			flat = make([]ast.Expr, product(dims))
		}

		for _, e := range flat {
			v := 0
			if e != nil {
				v, err = evalConst(e)
				if err != nil {
					return errors.Wrap(err, "global %q", def.Name)
				}
			}

			l.emit(ir.Word{Imm: v})
		}
	}

	return nil
}

// lowerLocalVarDecl lowers a local VarDecl statement (spec.md §4.1):
// scalars get an optional Assign from their initializer; arrays get a
// VarDec frame reservation plus a Store per initialized element, with
// trailing unfilled elements zeroed.
func (l *Lowerer) lowerLocalVarDecl(decl *ast.VarDecl) error {
	for _, def := range decl.Defs {
		mangled := l.table.Insert(def.Name)

		if def.Array == nil {
			if def.Init == nil {
				continue
			}

			e, ok := def.Init.(ast.Expr)
			if !ok {
				return errors.New("scalar local %q: non-scalar initializer", def.Name)
			}

			place, err := l.lowerExpr("", e)
			if err != nil {
				return err
			}

			place = l.resolveDeref(place)

			l.emit(ir.Assign{Dst: mangled, Src: place})

			continue
		}

		dims := def.Array.Dims

		l.table.SetArray(mangled, arrayInfo(dims))

		size := 4 * product(dims)
		l.emit(ir.VarDec{Name: mangled, Size: size})

		if def.Init == nil {
			continue
		}

		flat := flattenInit(dims, def.Init)

		for i, e := range flat {
			var src string

			if e == nil {
				src = l.table.NewTemp()
				l.emit(ir.LoadImm{Dst: src, Imm: 0})
			} else {
				place, err := l.lowerExpr("", e)
				if err != nil {
					return err
				}

				src = l.resolveDeref(place)
			}

			offset := i * 4

			ptr := mangled
			if offset != 0 {
				ptr = l.table.NewTemp()
				l.emit(ir.BinopImm{Dst: ptr, A: mangled, Imm: offset, Op: ir.Add})
			}

			l.emit(ir.Store{Ptr: ptr, Src: src})
		}
	}

	return nil
}

func product(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}

	return p
}

// flattenInit implements the recursive-alignment-fill rule (spec.md
// §4.1 "Aggregate initializers"): init's elements are scanned
// left-to-right; a scalar element consumes the next flat slot, and a
// nested list recurses into the narrowest dimension range consistent
// with its starting position. Unfilled slots are represented as a nil
// ast.Expr, to be zeroed by the caller.
func flattenInit(dims []int, init ast.Node) []ast.Expr {
	total := product(dims)
	out := make([]ast.Expr, total)

	list, ok := init.(*ast.InitValList)
	if !ok {
		if e, ok := init.(ast.Expr); ok && total > 0 {
			out[0] = e
		}

		return out
	}

	idx := 0

	for _, el := range list.Elems {
		if idx >= total {
			break
		}

		if sub, ok := el.(*ast.InitValList); ok {
			subDims, blockSize := narrowerDims(dims, idx)
			subFlat := flattenInit(subDims, sub)

			copy(out[idx:idx+blockSize], subFlat)

			idx += blockSize

			continue
		}

		if e, ok := el.(ast.Expr); ok {
			out[idx] = e
		}

		idx++
	}

	return out
}

// narrowerDims picks the dimension range a nested initializer list
// opening at flat position idx (within an array shaped dims) describes:
// scan from the innermost dimension outward while idx stays a multiple
// of the growing block size, per spec.md §4.1 step 3.
func narrowerDims(dims []int, idx int) (sub []int, blockSize int) {
	n := len(dims)
	if n < 2 {
		return dims, product(dims)
	}

	blockSizes := make([]int, n)

	prod := 1
	for j := n - 1; j >= 0; j-- {
		prod *= dims[j]
		blockSizes[j] = prod
	}

	best := n - 1

	for j := n - 2; j >= 1; j-- {
		if idx%blockSizes[j] == 0 {
			best = j
		} else {
			break
		}
	}

	return dims[best:], blockSizes[best]
}

// evalConst evaluates a constant integer expression, as required for
// global-variable initializers (§6 point 2 emits one .word literal per
// element; there is no runtime code in the data segment).
func evalConst(e ast.Expr) (int, error) {
	switch e := e.(type) {
	case *ast.IntConst:
		return e.Val, nil

	case *ast.Unary:
		v, err := evalConst(e.X)
		if err != nil {
			return 0, err
		}

		switch e.Op {
		case ast.UnaryPlus:
			return v, nil
		case ast.UnaryMinus:
			return -v, nil
		case ast.UnaryNot:
			if v == 0 {
				return 1, nil
			}

			return 0, nil
		}

	case *ast.Binary:
		l, err := evalConst(e.Left)
		if err != nil {
			return 0, err
		}

		r, err := evalConst(e.Right)
		if err != nil {
			return 0, err
		}

		switch e.Op {
		case ast.Add:
			return l + r, nil
		case ast.Sub:
			return l - r, nil
		case ast.Mul:
			return l * r, nil
		case ast.Div:
			return l / r, nil
		case ast.Mod:
			return l % r, nil
		}
	}

	return 0, errors.New("non-constant global initializer %T", e)
}

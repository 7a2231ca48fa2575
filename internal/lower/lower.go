// Package lower implements the AST-to-IR lowering stage (spec.md §4.1):
// short-circuit condition lowering, array addressing, and aggregate
// initializers. It owns a sym.Table (for name mangling) and a growing
// ir.List; it does not allocate registers or reason about physical
// constraints.
package lower

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/internal/sym"
)

// Lowerer holds the state threaded through one compilation unit's
// lowering: the symbol table and the IR list under construction.
type Lowerer struct {
	table *sym.Table
	list  ir.List
}

// New returns a Lowerer with a fresh, empty SymbolTable.
func New() *Lowerer {
	return &Lowerer{table: sym.New()}
}

func (l *Lowerer) emit(n ir.Node) {
	l.list = append(l.list, n)
}

// Lower translates a whole compilation unit into its IR list (spec.md
// §3.2). Globals are emitted before any function body, regardless of
// their source order relative to functions, so the emitter's "globals
// first pass, functions second pass" (§2) sees them already grouped.
func Lower(ctx context.Context, cu *ast.CompUnit) (ir.List, error) {
	l := New()

	if err := l.declareTopLevel(cu); err != nil {
		return nil, errors.Wrap(err, "declare top level")
	}

	for _, item := range cu.Items {
		vd, ok := item.(*ast.VarDecl)
		if !ok {
			continue
		}

		if err := l.lowerGlobalVarDecl(vd); err != nil {
			return nil, errors.Wrap(err, "global %v", vd)
		}
	}

	for _, item := range cu.Items {
		fd, ok := item.(*ast.FuncDef)
		if !ok {
			continue
		}

		tlog.SpanFromContext(ctx).Printw("lower func", "name", fd.Name)

		if err := l.lowerFuncDef(fd); err != nil {
			return nil, errors.Wrap(err, "func %v", fd.Name)
		}
	}

	return l.list, nil
}

// declareTopLevel inserts every global variable and function name into the
// outermost scope before any body is lowered, so forward calls (a function
// calling one defined later in the file) resolve correctly.
func (l *Lowerer) declareTopLevel(cu *ast.CompUnit) error {
	for _, item := range cu.Items {
		switch item := item.(type) {
		case *ast.VarDecl:
			for _, def := range item.Defs {
				mangled := l.table.Insert(def.Name)
				if def.Array != nil {
					l.table.SetArray(mangled, sym.ArrayInfo{Dims: def.Array.Dims})
				}
			}
		case *ast.FuncDef:
			l.table.Insert(item.Name)
		default:
			return errors.New("unsupported top-level item %T", item)
		}
	}

	return nil
}

func (l *Lowerer) lowerFuncDef(fd *ast.FuncDef) error {
	mangled, err := l.table.Lookup(fd.Name)
	if err != nil {
		return err
	}

	l.emit(ir.FuncDef{Name: mangled})

	l.table.EnterScope()
	defer l.table.ExitScope()

	for _, p := range fd.Params {
		pm := l.table.Insert(p.Name)
		if p.Array != nil {
			l.table.SetArray(pm, sym.ArrayInfo{Dims: p.Array.Dims, UnsizedFirst: true})
		}

		l.emit(ir.Param{Name: pm})
	}

	for _, s := range fd.Body.Stmts {
		if err := l.lowerStmt(s); err != nil {
			return err
		}
	}

	if !endsInReturn(fd.Body) {
		if fd.RetType == ast.Int {
			zero := l.table.NewTemp()
			l.emit(ir.LoadImm{Dst: zero, Imm: 0})
			l.emit(ir.ReturnWithVal{Name: zero})
		} else {
			l.emit(ir.Return{})
		}
	}

	return nil
}

func endsInReturn(b *ast.Block) bool {
	if len(b.Stmts) == 0 {
		return false
	}

	_, ok := b.Stmts[len(b.Stmts)-1].(*ast.Return)
	return ok
}

func (l *Lowerer) lowerStmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.Block:
		l.table.EnterScope()
		defer l.table.ExitScope()

		for _, sub := range s.Stmts {
			if err := l.lowerStmt(sub); err != nil {
				return err
			}
		}

		return nil

	case *ast.LocalDecl:
		return l.lowerLocalVarDecl(s.Decl)

	case *ast.Assign:
		return l.lowerAssign(s)

	case *ast.If:
		return l.lowerIf(s)

	case *ast.While:
		return l.lowerWhile(s)

	case *ast.Return:
		return l.lowerReturn(s)

	case *ast.ExprStmt:
		return l.lowerExprStmt(s)

	case *ast.Empty:
		return nil

	default:
		return errors.New("unsupported statement %T", s)
	}
}

func (l *Lowerer) lowerIf(s *ast.If) error {
	thenL := l.table.NewLabel()
	elseL := l.table.NewLabel()

	hasElse := s.Else != nil

	var endL string
	if hasElse {
		endL = l.table.NewLabel()
	}

	if err := l.lowerCond(s.Cond, thenL, elseL); err != nil {
		return err
	}

	l.emit(ir.Label{Name: thenL})

	if err := l.lowerStmt(s.Then); err != nil {
		return err
	}

	if hasElse {
		l.emit(ir.Goto{Label: endL})
		l.emit(ir.Label{Name: elseL})

		if err := l.lowerStmt(s.Else); err != nil {
			return err
		}

		l.emit(ir.Label{Name: endL})
	} else {
		l.emit(ir.Label{Name: elseL})
	}

	return nil
}

func (l *Lowerer) lowerWhile(s *ast.While) error {
	condL := l.table.NewLabel()
	bodyL := l.table.NewLabel()
	endL := l.table.NewLabel()

	l.emit(ir.Label{Name: condL})

	if err := l.lowerCond(s.Cond, bodyL, endL); err != nil {
		return err
	}

	l.emit(ir.Label{Name: bodyL})

	if err := l.lowerStmt(s.Body); err != nil {
		return err
	}

	l.emit(ir.Goto{Label: condL})
	l.emit(ir.Label{Name: endL})

	return nil
}

func (l *Lowerer) lowerReturn(s *ast.Return) error {
	if s.Expr == nil {
		l.emit(ir.Return{})
		return nil
	}

	place, err := l.lowerExpr("", s.Expr)
	if err != nil {
		return err
	}

	place = l.resolveDeref(place)

	l.emit(ir.ReturnWithVal{Name: place})

	return nil
}

func (l *Lowerer) lowerExprStmt(s *ast.ExprStmt) error {
	if call, ok := s.Expr.(*ast.Call); ok {
		return l.lowerCallDiscard(call)
	}

	_, err := l.lowerExpr("", s.Expr)

	return err
}

func (l *Lowerer) lowerAssign(s *ast.Assign) error {
	rhs, err := l.lowerExpr("", s.Rhs)
	if err != nil {
		return err
	}

	rhs = l.resolveDeref(rhs)

	lv := s.LVal

	mangled, err := l.table.Lookup(lv.Name)
	if err != nil {
		return err
	}

	info, isArray := l.table.Array(mangled)
	if !isArray || len(lv.Subs) == 0 {
		if l.table.IsGlobal(mangled) {
			ptr := l.table.NewTemp()
			l.emit(ir.LoadGlobal{Dst: ptr, Global: mangled})
			l.emit(ir.Store{Ptr: ptr, Src: rhs})

			return nil
		}

		l.emit(ir.Assign{Dst: mangled, Src: rhs})
		return nil
	}

	ptr, full, err := l.lvalAddr(lv, mangled, info)
	if err != nil {
		return err
	}

	if !full {
		return errors.New("assignment to partially-subscripted array %q", lv.Name)
	}

	l.emit(ir.Store{Ptr: ptr, Src: rhs})

	return nil
}

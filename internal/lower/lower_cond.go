package lower

import (
	"tlog.app/go/errors"

	"github.com/minic-lang/minic/internal/ast"
	"github.com/minic-lang/minic/internal/ir"
)

// lowerCond lowers e in condition position (spec.md §4.1 "Conditions"):
// control reaches trueLabel iff e holds, falseLabel otherwise. No Binop
// ever materializes the boolean value of a relational or logical
// expression lowered this way (spec.md §8's short-circuit invariant).
func (l *Lowerer) lowerCond(e ast.Expr, trueLabel, falseLabel string) error {
	switch e := e.(type) {
	case *ast.Binary:
		switch {
		case e.Op.IsRelational():
			left, err := l.lowerExpr("", e.Left)
			if err != nil {
				return err
			}

			left = l.resolveDeref(left)

			right, err := l.lowerExpr("", e.Right)
			if err != nil {
				return err
			}

			right = l.resolveDeref(right)

			l.emit(ir.CondGoto{A: left, B: right, Op: irRelOp(e.Op), Label: trueLabel})
			l.emit(ir.Goto{Label: falseLabel})

			return nil

		case e.Op == ast.LAnd:
			leftLabel := l.table.NewLabel()

			if err := l.lowerCond(e.Left, leftLabel, falseLabel); err != nil {
				return err
			}

			l.emit(ir.Label{Name: leftLabel})

			return l.lowerCond(e.Right, trueLabel, falseLabel)

		case e.Op == ast.LOr:
			leftLabel := l.table.NewLabel()

			if err := l.lowerCond(e.Left, trueLabel, leftLabel); err != nil {
				return err
			}

			l.emit(ir.Label{Name: leftLabel})

			return l.lowerCond(e.Right, trueLabel, falseLabel)
		}

	case *ast.Unary:
		if e.Op == ast.UnaryNot {
			return l.lowerCond(e.X, falseLabel, trueLabel)
		}
	}

	place, err := l.lowerExpr("", e)
	if err != nil {
		return errors.Wrap(err, "condition")
	}

	place = l.resolveDeref(place)

	zero := l.table.NewTemp()
	l.emit(ir.LoadImm{Dst: zero, Imm: 0})
	l.emit(ir.CondGoto{A: place, B: zero, Op: ir.Neq, Label: trueLabel})
	l.emit(ir.Goto{Label: falseLabel})

	return nil
}

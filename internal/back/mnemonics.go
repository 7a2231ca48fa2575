package back

import "github.com/minic-lang/minic/internal/ir"

func rrMnemonic(op ir.BinOp) string {
	switch op {
	case ir.Add:
		return "add"
	case ir.Sub:
		return "sub"
	case ir.Mul:
		return "mul"
	case ir.Div:
		return "div"
	case ir.Rem:
		return "rem"
	default:
		return "add"
	}
}

func riMnemonic(op ir.BinOp) string {
	switch op {
	case ir.Add:
		return "addi"
	case ir.Sub:
		return "subi"
	case ir.Mul:
		return "muli"
	case ir.Div:
		return "divi"
	case ir.Rem:
		return "remi"
	default:
		return "addi"
	}
}

func branchMnemonic(op ir.RelOp) string {
	switch op {
	case ir.Lt:
		return "blt"
	case ir.Le:
		return "ble"
	case ir.Gt:
		return "bgt"
	case ir.Ge:
		return "bge"
	case ir.Eq:
		return "beq"
	case ir.Neq:
		return "bne"
	default:
		return "beq"
	}
}

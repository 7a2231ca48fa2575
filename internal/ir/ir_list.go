package ir

import "tlog.app/go/errors"

// List is a whole program's (or one function's) IR, in emission order.
// It replaces the original's singly-linked IRNode chain with a plain
// slice (Design Notes §9): producers append at the tail, consumers scan
// sequentially, and label references are slice indices instead of
// pointers.
type List []Node

// FunctionBounds splits a whole-program List into the half-open index
// ranges [start,end) of each function's sublist, one per FuncDef node
// (spec.md §3.2 invariant: "Each FuncDef begins a sublist terminated by
// the next FuncDef or end-of-stream"). Nodes before the first FuncDef
// (globals) are not included in any range.
func FunctionBounds(list List) [][2]int {
	var bounds [][2]int

	start := -1
	for i, n := range list {
		if _, ok := n.(FuncDef); !ok {
			continue
		}

		if start >= 0 {
			bounds = append(bounds, [2]int{start, i})
		}

		start = i
	}

	if start >= 0 {
		bounds = append(bounds, [2]int{start, len(list)})
	}

	return bounds
}

// LabelMap resolves every Label node's name to its index within list
// (spec.md §3.4, "label_map"). Indices are relative to list, so callers
// working on a function sublist must pass that sublist, not the whole
// program.
func LabelMap(list List) map[string]int {
	m := make(map[string]int, len(list))

	for i, n := range list {
		if l, ok := n.(Label); ok {
			m[l.Name] = i
		}
	}

	return m
}

// Successors returns the indices, within list, that control can flow to
// immediately after executing list[i] (spec.md §4.2).
func Successors(list List, i int, labels map[string]int) ([]int, error) {
	switch n := list[i].(type) {
	case Goto:
		t, ok := labels[n.Label]
		if !ok {
			return nil, errors.New("goto: undefined label %q", n.Label)
		}

		return []int{t}, nil

	case CondGoto:
		t, ok := labels[n.Label]
		if !ok {
			return nil, errors.New("condgoto: undefined label %q", n.Label)
		}

		var succ []int
		if i+1 < len(list) {
			succ = append(succ, i+1)
		}

		return append(succ, t), nil

	case Return, ReturnWithVal:
		return nil, nil

	default:
		if i+1 < len(list) {
			return []int{i + 1}, nil
		}

		return nil, nil
	}
}

// Use returns the identifiers n reads, in no particular order. Names that
// name physical argument/return registers are included the same as any
// other identifier; the allocator treats the pre-bound formals specially,
// not the liveness analyzer.
func Use(n Node) []string {
	switch n := n.(type) {
	case Assign:
		return []string{n.Src}
	case Binop:
		return []string{n.A, n.B}
	case BinopImm:
		return []string{n.A}
	case Unop:
		return []string{n.A}
	case Load:
		return []string{n.Ptr}
	case Store:
		return []string{n.Ptr, n.Src}
	case CondGoto:
		return []string{n.A, n.B}
	case CallWithRet:
		return nil
	case Arg:
		return []string{n.Name}
	case ReturnWithVal:
		return []string{n.Name}
	default:
		return nil
	}
}

// Def returns the identifier n writes, or "" if n defines nothing.
func Def(n Node) string {
	switch n := n.(type) {
	case LoadImm:
		return n.Dst
	case Assign:
		return n.Dst
	case Binop:
		return n.Dst
	case BinopImm:
		return n.Dst
	case Unop:
		return n.Dst
	case Load:
		return n.Dst
	case CallWithRet:
		return n.Dst
	case Param:
		return n.Name
	case VarDec:
		return n.Name
	case LoadGlobal:
		return n.Dst
	default:
		return ""
	}
}

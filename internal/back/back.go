// Package back is the emitter of spec.md §4.4/§4.5: given one program's
// lowered IR, it runs liveness and register allocation per function and
// walks each function's node list once more, translating every IR node
// into the assembly text described in §6.
package back

import (
	"context"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/minic-lang/minic/internal/alloc"
	"github.com/minic-lang/minic/internal/asm"
	"github.com/minic-lang/minic/internal/ir"
	"github.com/minic-lang/minic/internal/live"
)

// Compile translates a whole program's IR into assembly text (spec.md
// §6): the data segment (runtime preamble plus every global), then the
// text segment (runtime preamble plus one function body per FuncDef, in
// source order).
func Compile(ctx context.Context, program ir.List) ([]byte, error) {
	bounds := ir.FunctionBounds(program)

	globalsEnd := len(program)
	if len(bounds) > 0 {
		globalsEnd = bounds[0][0]
	}

	var buf strings.Builder

	buf.WriteString(asm.Data)
	emitGlobals(&buf, program[:globalsEnd])

	buf.WriteString(asm.Text)

	for _, b := range bounds {
		fn := program[b[0]:b[1]]

		body, err := compileFunc(ctx, fn)
		if err != nil {
			def, _ := fn[0].(ir.FuncDef)
			return nil, errors.Wrap(err, "compile function %q", def.Name)
		}

		buf.WriteString(body)
	}

	return []byte(buf.String()), nil
}

// emitGlobals emits one label and a run of .word directives per
// GlobalVar/Word pair (spec.md §3.2, §6 point 2).
func emitGlobals(buf *strings.Builder, prefix ir.List) {
	for _, n := range prefix {
		switch n := n.(type) {
		case ir.GlobalVar:
			buf.WriteString(asm.Lbl(n.Name))
		case ir.Word:
			buf.WriteString(asm.WordLine(n.Imm))
		}
	}
}

// compileFunc runs liveness, allocation and emission for one function's
// IR sublist and returns its assembly text, function label included.
func compileFunc(ctx context.Context, fn ir.List) (string, error) {
	def, ok := fn[0].(ir.FuncDef)
	if !ok {
		return "", errors.New("function sublist does not start with FuncDef")
	}

	tr := tlog.SpanFromContext(ctx)
	tr.Printw("compile func", "name", def.Name, "nodes", len(fn))

	liveness, err := live.Analyze(fn)
	if err != nil {
		return "", errors.Wrap(err, "liveness analysis")
	}

	intervals := liveness.Intervals()

	preassigned := map[string]int{}
	paramIdx := 0

	for i := 1; i < len(fn); i++ {
		p, ok := fn[i].(ir.Param)
		if !ok {
			break
		}

		if paramIdx < len(asm.ArgRegs) {
			preassigned[p.Name] = asm.ArgRegs[paramIdx]
		}

		paramIdx++
	}

	result := alloc.Allocate(intervals, preassigned)

	frame, err := BuildFrame(fn, result)
	if err != nil {
		return "", err
	}

	tr.Printw("frame built", "name", def.Name, "size", frame.TotalSize,
		"spilled", len(result.Spilled), "saved_regs", frame.SavedRegs)

	fs := newFuncState(result, frame)

	fs.emit(asm.Lbl(def.Name))
	emitPrologue(fs, frame)

	for i, n := range fn {
		fs.resetStep()

		if err := generateNode(fs, i, n); err != nil {
			return "", errors.Wrap(err, "node %d", i)
		}
	}

	return fs.buf.String(), nil
}

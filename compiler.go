// Package minic is the top-level driver tying the front end, lowerer,
// liveness analyzer, register allocator and emitter into one pipeline:
// MiniC source text in, RISC-V-like assembly text out. It mirrors the
// teacher's own compiler.go (CompileFile/Compile split, context-threaded
// logging, error wrapping at each stage).
package minic

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/minic-lang/minic/internal/back"
	"github.com/minic-lang/minic/internal/front"
	"github.com/minic-lang/minic/internal/lower"
)

// CompileFile reads name from disk and compiles it.
func CompileFile(ctx context.Context, name string) ([]byte, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "name", name, "size", len(text))

	return Compile(ctx, text)
}

// Compile runs the full pipeline over MiniC source text: parse, lower,
// emit. Liveness analysis and register allocation happen per function
// inside back.Compile, the way spec.md §2 describes the pipeline.
func Compile(ctx context.Context, text []byte) ([]byte, error) {
	var p front.Parser

	cu, err := p.ParseFile(text)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	program, err := lower.Lower(ctx, cu)
	if err != nil {
		return nil, errors.Wrap(err, "lower")
	}

	tlog.SpanFromContext(ctx).Printw("lowered", "nodes", len(program))

	obj, err := back.Compile(ctx, program)
	if err != nil {
		return nil, errors.Wrap(err, "emit")
	}

	return obj, nil
}

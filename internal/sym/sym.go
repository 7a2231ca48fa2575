// Package sym implements the lowerer-side SymbolTable (spec.md §3.3):
// source name -> mangled name, scope-stacked, plus the array-info and
// global-name side tables the lowerer needs to emit addressing code.
//
// The original C++ table interleaves a "$" sentinel into a single
// per-name list to mark scope boundaries (translate.cpp). Per the
// Design Notes (§9, "Scope-stacked maps"), this is replaced with an
// explicit vector of frames: each frame holds the names it declared,
// and exiting a scope pops exactly those names' innermost binding.
package sym

import (
	"strconv"

	"tlog.app/go/errors"
)

type (
	// ArrayInfo records the declared dimensions of an array-typed
	// identifier. UnsizedFirst mirrors ast.ArrayDef: true for an
	// array-parameter's leading dimension, which carries no usable size.
	ArrayInfo struct {
		Dims         []int
		UnsizedFirst bool
	}

	frame struct {
		// declared is the set of source names bound in this scope, in
		// declaration order, so exitScope pops them in a stable order.
		declared []string
	}

	// Table is the core's scope-stacked symbol table. The zero value is
	// not usable; call New.
	Table struct {
		bindings map[string][]string // source name -> stack of mangled names, innermost last
		arrays   map[string]ArrayInfo
		globals  map[string]struct{}

		frames []frame

		tempSeq  int
		labelSeq int
	}
)

// New returns an empty Table with its outermost (file) scope open.
func New() *Table {
	t := &Table{
		bindings: map[string][]string{},
		arrays:   map[string]ArrayInfo{},
		globals:  map[string]struct{}{},
	}
	t.EnterScope()

	return t
}

// EnterScope pushes a new lexical scope.
func (t *Table) EnterScope() {
	t.frames = append(t.frames, frame{})
}

// ExitScope pops the innermost lexical scope, dropping every binding (and
// any array-info) it introduced.
func (t *Table) ExitScope() {
	if len(t.frames) == 0 {
		panic(errors.New("exit scope: no scope open"))
	}

	f := t.frames[len(t.frames)-1]
	t.frames = t.frames[:len(t.frames)-1]

	for _, name := range f.declared {
		stack := t.bindings[name]
		mangled := stack[len(stack)-1]
		delete(t.arrays, mangled)

		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			delete(t.bindings, name)
		} else {
			t.bindings[name] = stack
		}
	}
}

// isGlobalScope reports whether the current scope is the outermost one.
func (t *Table) isGlobalScope() bool {
	return len(t.frames) == 1
}

// Insert declares name in the current scope and returns its mangled form.
// Mangling (spec.md §4.1, "Naming" + the original's insert()): a leading
// underscore is doubled, and a name ending in '_' or a digit gets a
// trailing '_' appended, so a generated suffix can never collide with a
// hand-written one. A name shadowing an outer binding gets a numeric
// suffix counting how many times it has been declared before in any
// enclosing scope.
func (t *Table) Insert(name string) string {
	mangled := name

	if len(mangled) > 0 && mangled[0] == '_' {
		mangled = "_" + mangled
	}

	if n := len(mangled); n > 0 {
		last := mangled[n-1]
		if last == '_' || (last >= '0' && last <= '9') {
			mangled += "_"
		}
	}

	prior := t.bindings[name]
	if len(prior) > 0 {
		mangled += strconv.Itoa(len(prior))
	}

	t.bindings[name] = append(prior, mangled)

	cur := &t.frames[len(t.frames)-1]
	cur.declared = append(cur.declared, name)

	if t.isGlobalScope() {
		t.globals[mangled] = struct{}{}
	}

	return mangled
}

// Lookup returns the innermost mangled name bound to name, or an error if
// name is unbound. Core trusts well-typed input (spec.md §7.1); an unbound
// lookup here means an upstream invariant was violated.
func (t *Table) Lookup(name string) (string, error) {
	stack, ok := t.bindings[name]
	if !ok || len(stack) == 0 {
		return "", errors.New("symbol %q not found", name)
	}

	return stack[len(stack)-1], nil
}

// SetArray records dims as the declared shape of mangled, which must have
// just been returned by Insert.
func (t *Table) SetArray(mangled string, info ArrayInfo) {
	t.arrays[mangled] = info
}

// Array returns the declared shape of mangled, if it names an array.
func (t *Table) Array(mangled string) (ArrayInfo, bool) {
	info, ok := t.arrays[mangled]
	return info, ok
}

// IsGlobal reports whether mangled was declared at file scope.
func (t *Table) IsGlobal(mangled string) bool {
	_, ok := t.globals[mangled]
	return ok
}

// NewTemp returns a fresh compiler-generated temporary name, never
// colliding with a mangled user name (spec.md §4.1).
func (t *Table) NewTemp() string {
	t.tempSeq++
	return "_t" + strconv.Itoa(t.tempSeq-1)
}

// NewLabel returns a fresh compiler-generated label name.
func (t *Table) NewLabel() string {
	t.labelSeq++
	return "_l" + strconv.Itoa(t.labelSeq-1)
}

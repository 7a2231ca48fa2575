// Package live implements the per-function liveness analysis of spec.md
// §4.2: a standard backward fixed-point over use/def sets, iterated in
// reverse IR order until no (in,out) pair changes.
package live

import (
	"tlog.app/go/tlog"

	"github.com/minic-lang/minic/internal/ir"
)

// Set is an identifier set, keyed by identifier name.
type Set map[string]struct{}

func (s Set) has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s Set) equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}

	for k := range s {
		if !o.has(k) {
			return false
		}
	}

	return true
}

func (s Set) clone() Set {
	c := make(Set, len(s))
	for k := range s {
		c[k] = struct{}{}
	}

	return c
}

// Result is one function's liveness result, indexed by position within
// the function's IR sublist (the same indices the caller passed in).
type Result struct {
	In  []Set
	Out []Set
}

// Analyze computes live-in/live-out sets for fn, a single function's IR
// sublist (as produced by ir.FunctionBounds). Labels are resolved within
// fn, so fn must already be sliced to one function.
func Analyze(fn ir.List) (*Result, error) {
	n := len(fn)

	res := &Result{
		In:  make([]Set, n),
		Out: make([]Set, n),
	}

	for i := range fn {
		res.In[i] = Set{}
		res.Out[i] = Set{}
	}

	labels := ir.LabelMap(fn)

	use := make([][]string, n)
	def := make([]string, n)

	for i, node := range fn {
		use[i] = ir.Use(node)
		def[i] = ir.Def(node)
	}

	passes := 0

	for changed := true; changed; {
		changed = false
		passes++

		for i := n - 1; i >= 0; i-- {
			succs, err := ir.Successors(fn, i, labels)
			if err != nil {
				return nil, err
			}

			newOut := Set{}
			for _, s := range succs {
				for k := range res.In[s] {
					newOut[k] = struct{}{}
				}
			}

			if !newOut.equal(res.Out[i]) {
				res.Out[i] = newOut
				changed = true
			}

			newIn := Set{}
			for _, u := range use[i] {
				newIn[u] = struct{}{}
			}

			for k := range res.Out[i] {
				if k != def[i] {
					newIn[k] = struct{}{}
				}
			}

			if !newIn.equal(res.In[i]) {
				res.In[i] = newIn
				changed = true
			}
		}
	}

	tlog.V("live_passes").Printw("liveness fixed point", "nodes", n, "passes", passes)

	return res, nil
}

// Interval is a half-open live range [Start, End) over IR-node indices
// (spec.md GLOSSARY "Live interval"): Start is included, End is one past
// the last index.
type Interval struct {
	Start, End int
}

// Intervals derives, from a liveness Result, the live interval of every
// identifier that appears in any Out set (spec.md §4.3 "Derive
// intervals"): start is the first index at which the identifier is
// live-out, end is one past the last such index.
func (r *Result) Intervals() map[string]Interval {
	ivs := map[string]Interval{}

	for i, out := range r.Out {
		for name := range out {
			iv, ok := ivs[name]
			if !ok {
				ivs[name] = Interval{Start: i, End: i + 1}
				continue
			}

			if i < iv.Start {
				iv.Start = i
			}

			if i+1 > iv.End {
				iv.End = i + 1
			}

			ivs[name] = iv
		}
	}

	return ivs
}

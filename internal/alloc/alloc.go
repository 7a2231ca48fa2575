// Package alloc implements the linear-scan register allocator of
// spec.md §4.3: it walks per-identifier live intervals in start order,
// drawing from the callee-saved register set, and spills the
// longest-ending active interval on contention.
package alloc

import (
	"sort"

	"nikand.dev/go/heap"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/minic-lang/minic/internal/asm"
	"github.com/minic-lang/minic/internal/live"
)

// Result is the allocator's output: every identifier with a live
// interval ends up in exactly one of Reg (register-resident) or Spilled
// (needs a frame slot), never both (spec.md §8).
type Result struct {
	Reg     map[string]int
	Spilled map[string]bool
}

type liveIdent struct {
	name       string
	start, end int
	reg        int
}

// activeLess orders the active set by end descending, so the interval
// with the largest end (the spill victim candidate) is the heap root
// (spec.md §4.3 "Ordering"). Ties break on name for determinism (Design
// Notes §9: allocation must not depend on map iteration order).
func activeLess(d []liveIdent, i, j int) bool {
	if d[i].end != d[j].end {
		return d[i].end > d[j].end
	}

	return d[i].name < d[j].name
}

// Allocate runs linear-scan over intervals. preassigned holds identifiers
// already bound to a physical register before allocation begins — the
// formal parameters bound to a0..a7 (spec.md §4.3) — and is copied
// through to the result unchanged; those identifiers are skipped by the
// main loop and never drawn from the free pool.
func Allocate(intervals map[string]live.Interval, preassigned map[string]int) *Result {
	res := &Result{
		Reg:     make(map[string]int, len(intervals)),
		Spilled: make(map[string]bool),
	}

	for name, reg := range preassigned {
		res.Reg[name] = reg
	}

	order := make([]string, 0, len(intervals))

	for name := range intervals {
		if _, ok := preassigned[name]; ok {
			continue
		}

		order = append(order, name)
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := intervals[order[i]], intervals[order[j]]
		if a.Start != b.Start {
			return a.Start < b.Start
		}

		return order[i] < order[j]
	})

	free := append([]int(nil), asm.CalleeSaved...)
	sort.Ints(free)

	act := &heap.Heap[liveIdent]{Less: activeLess}

	for _, name := range order {
		iv := intervals[name]

		free = expire(act, iv.Start, free)

		if len(free) == 0 {
			if act.Len() == 0 {
				// No free register and nothing active to evict: every
				// callee-saved register is simultaneously defined as
				// pre-assigned (shouldn't happen with 12 registers and
				// 8 argument slots, but spill rather than misbehave).
				res.Spilled[name] = true
				continue
			}

			victim := act.Data[0]

			if victim.end > iv.End {
				act.Pop()

				res.Reg[name] = victim.reg
				delete(res.Reg, victim.name)
				res.Spilled[victim.name] = true

				tlog.V("alloc_spill").Printw("spill victim", "victim", victim.name,
					"for", name, "reg", victim.reg, "from", loc.Caller(1))

				act.Push(liveIdent{name: name, start: iv.Start, end: iv.End, reg: victim.reg})
			} else {
				res.Spilled[name] = true

				tlog.V("alloc_spill").Printw("spill self", "name", name, "from", loc.Caller(1))
			}

			continue
		}

		reg := free[0]
		free = free[1:]

		res.Reg[name] = reg
		act.Push(liveIdent{name: name, start: iv.Start, end: iv.End, reg: reg})
	}

	return res
}

// expire evicts every active interval whose end precedes start, returning
// its register to the free pool, and returns the updated free pool. The
// heap's root only gives efficient access to the longest-ending active
// interval, so expiry scans the backing slice directly and rebuilds the
// heap from what remains.
func expire(act *heap.Heap[liveIdent], start int, free []int) []int {
	var keep []liveIdent

	for _, x := range act.Data {
		if x.end < start {
			free = append(free, x.reg)
		} else {
			keep = append(keep, x)
		}
	}

	if len(keep) == len(act.Data) {
		return free
	}

	sort.Ints(free)

	act.Data = act.Data[:0]
	for _, x := range keep {
		act.Push(x)
	}

	return free
}

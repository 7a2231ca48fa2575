package back

import (
	"sort"

	"tlog.app/go/errors"

	"github.com/minic-lang/minic/internal/alloc"
	"github.com/minic-lang/minic/internal/asm"
	"github.com/minic-lang/minic/internal/ir"
)

// maxPrologueBytes caps the frame size a function may request (spec.md
// §6): a function whose locals, spills, saved registers and outgoing-arg
// scratch would need more than this is rejected rather than silently
// mis-emitted.
const maxPrologueBytes = 2048

// Frame is one function's stack layout, built in two passes (frame.go)
// and then consulted read-only by the node generator (nodegen.go). It
// replaces the original's single ident_stack_offset table — keyed by a
// raw int whose sign distinguished "below this frame" from "above it,
// in the caller's reserved area" — with an explicit table of already
// finalized, non-negative offsets (Design Notes §9).
type Frame struct {
	// ArgAreaBytes is the scratch region, at offset 0 from sp, this
	// function reserves for outgoing call arguments beyond the first 8
	// (spec.md §4.4 "Arg"), sized to the widest call it makes.
	ArgAreaBytes int

	// TotalSize is the full frame size, the operand of the prologue's
	// `addi sp,sp,-TotalSize` / epilogue's `addi sp,sp,+TotalSize`.
	TotalSize int

	// IdentOffset gives the sp-relative byte offset, valid immediately
	// after the prologue, of every identifier that owns a frame slot:
	// array bases, spilled scalars, and inbound parameters 9+. An array
	// base or a parameter 9+ keeps its slot even when it is also
	// register-resident (the register is first filled from the slot);
	// any other register-resident identifier never appears here: per
	// spec.md §4.5
	// (and ir.cpp's Call/CallWithRet::generate, which only flushes temps
	// around a call, never an S-register resident), the S set is
	// callee-saved by convention — any function that clobbers one of its
	// own S registers saves and restores it in its own prologue/epilogue,
	// so a caller never needs to protect its S-resident values across a
	// call it makes.
	IdentOffset map[string]int

	// ArraySet marks identifiers whose IdentOffset names the start of
	// an array's data, not a scalar's storage: materializing one of
	// these computes an address (`addi`), never a load (`lw`).
	ArraySet map[string]bool

	// SavesRA reports whether this function makes any call at all
	// (ir.cpp's `foundCall`); a leaf function never spills ra and so
	// reserves no slot and emits no save/restore of it.
	SavesRA  bool
	RAOffset int

	// SavedRegs is the sorted list of callee-saved physical registers
	// this function's allocation actually uses, each with a slot in
	// SavedRegOffset, saved in the prologue and restored in every
	// epilogue.
	SavedRegs      []int
	SavedRegOffset map[int]int
}

// BuildFrame computes fn's stack layout from its allocator result. fn is
// a single function's IR sublist, index-aligned with result.
func BuildFrame(fn ir.List, result *alloc.Result) (*Frame, error) {
	argAreaBytes := 0
	argCount := 0
	hasCall := false

	for _, n := range fn {
		switch n.(type) {
		case ir.Arg:
			argCount++
		case ir.Call, ir.CallWithRet:
			hasCall = true
			if need := (argCount - 8) * 4; need > argAreaBytes {
				argAreaBytes = need
			}
			argCount = 0
		}
	}

	identOffset := map[string]int{}
	arraySet := map[string]bool{}
	localOffset := 0

	for _, n := range fn {
		if v, ok := n.(ir.VarDec); ok {
			identOffset[v.Name] = localOffset
			localOffset += v.Size
			arraySet[v.Name] = true
		}
	}

	for name := range result.Spilled {
		if _, ok := identOffset[name]; ok {
			continue
		}

		identOffset[name] = localOffset
		localOffset += asm.SizeOfInt
	}

	localsSize := localOffset

	usedSet := map[int]bool{}
	for _, reg := range result.Reg {
		if isCalleeSaved(reg) {
			usedSet[reg] = true
		}
	}

	savedRegs := make([]int, 0, len(usedSet))
	for reg := range usedSet {
		savedRegs = append(savedRegs, reg)
	}
	sort.Ints(savedRegs)

	base := argAreaBytes + localsSize

	raOffset := 0
	savedRegsStart := base

	if hasCall {
		raOffset = base
		savedRegsStart = base + asm.SizeOfInt
	}

	savedRegOffset := map[int]int{}
	for i, reg := range savedRegs {
		savedRegOffset[reg] = savedRegsStart + 4*i
	}

	totalSize := savedRegsStart + 4*len(savedRegs)

	if totalSize > maxPrologueBytes {
		return nil, errors.New("not implemented: prologue of %d bytes exceeds the %d-byte limit", totalSize, maxPrologueBytes)
	}

	for name, off := range identOffset {
		identOffset[name] = off + argAreaBytes
	}

	if len(fn) > 0 {
		if _, ok := fn[0].(ir.FuncDef); ok {
			idx := 1
			paramIdx := 0

			for idx < len(fn) {
				p, ok := fn[idx].(ir.Param)
				if !ok {
					break
				}

				if paramIdx >= 8 {
					identOffset[p.Name] = totalSize + (paramIdx-8)*4
				}

				paramIdx++
				idx++
			}
		}
	}

	return &Frame{
		ArgAreaBytes:   argAreaBytes,
		TotalSize:      totalSize,
		IdentOffset:    identOffset,
		ArraySet:       arraySet,
		SavesRA:        hasCall,
		RAOffset:       raOffset,
		SavedRegs:      savedRegs,
		SavedRegOffset: savedRegOffset,
	}, nil
}

func isCalleeSaved(reg int) bool {
	for _, r := range asm.CalleeSaved {
		if r == reg {
			return true
		}
	}

	return false
}

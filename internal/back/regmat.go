package back

import (
	"strings"

	"tlog.app/go/errors"

	"github.com/minic-lang/minic/internal/alloc"
	"github.com/minic-lang/minic/internal/asm"
)

// funcState carries the per-function, per-IR-step register bookkeeping
// the original implementation keeps in a flat reg_state[32] array
// (spec.md §4.4 "allocate_reg"): which temp register holds which
// identifier, whether it needs writing back before reuse, and whether
// each identifier's persistent register has been materialized yet.
type funcState struct {
	result *alloc.Result
	frame  *Frame

	tempTenant [tempRegCount]string
	tempDirty  [tempRegCount]bool
	inUse      [tempRegCount]bool

	// loaded tracks, for every register-resident identifier (S-set or
	// a0..a7), whether it has been materialized at least once. A
	// register-resident identifier is never evicted mid-interval, so
	// once true it never needs reloading again.
	loaded map[string]bool

	argIndex int

	buf strings.Builder
}

// tempRegCount mirrors len(asm.TempRegs); it must be a compile-time
// constant to size funcState's fixed arrays.
const tempRegCount = 7

func newFuncState(result *alloc.Result, frame *Frame) *funcState {
	fs := &funcState{
		result:   result,
		frame:    frame,
		loaded:   map[string]bool{},
		argIndex: 1,
	}

	for name := range result.Reg {
		if _, isParamReg := paramArgReg(name, result); isParamReg {
			fs.loaded[name] = true
		}
	}

	return fs
}

// paramArgReg reports whether name is bound to one of a0..a7 by
// preassignment rather than by the allocator's general scan; such an
// identifier already holds its value on function entry.
func paramArgReg(name string, result *alloc.Result) (int, bool) {
	reg, ok := result.Reg[name]
	if !ok {
		return 0, false
	}

	for _, a := range asm.ArgRegs {
		if a == reg {
			return reg, true
		}
	}

	return 0, false
}

func (fs *funcState) emit(s string) {
	fs.buf.WriteString(s)
}

// resetStep clears the "touched this step" bits without disturbing
// tenancy; called once per IR node before that node's operands are
// materialized, so a register already holding the right identifier this
// step is never mistaken for a fresh eviction candidate.
func (fs *funcState) resetStep() {
	for i := range fs.inUse {
		fs.inUse[i] = false
	}
}

// allocateReg is allocate_reg (spec.md §4.4): returns a physical
// register holding id, loading it first if needLoad is set and it is
// not already known-valid.
func (fs *funcState) allocateReg(id string, needLoad bool) (int, error) {
	if reg, ok := fs.result.Reg[id]; ok {
		if needLoad && !fs.loaded[id] {
			if off, ok := fs.frame.IdentOffset[id]; ok {
				if fs.frame.ArraySet[id] {
					fs.emit(asm.Ri("addi", reg, asm.SP, off))
				} else {
					fs.emit(asm.Lw(reg, asm.SP, off))
				}
			}

			fs.loaded[id] = true
		}

		fs.markInUse(reg)

		return reg, nil
	}

	off, ok := fs.frame.IdentOffset[id]
	if !ok {
		return 0, errors.New("identifier %q has no register or frame slot", id)
	}

	for i, tenant := range fs.tempTenant {
		if tenant == id {
			fs.inUse[i] = true
			return asm.TempRegs[i], nil
		}
	}

	slot := -1

	for i, tenant := range fs.tempTenant {
		if tenant == "" {
			slot = i
			break
		}
	}

	if slot < 0 {
		for i := range fs.tempTenant {
			if !fs.inUse[i] {
				slot = i
				break
			}
		}
	}

	if slot < 0 {
		return 0, errors.New("no available register: every temp is live within the same step")
	}

	if fs.tempTenant[slot] != "" && fs.tempDirty[slot] && !fs.frame.ArraySet[fs.tempTenant[slot]] {
		if prevOff, ok := fs.frame.IdentOffset[fs.tempTenant[slot]]; ok {
			fs.emit(asm.Sw(asm.TempRegs[slot], asm.SP, prevOff))
		}
	}

	reg := asm.TempRegs[slot]
	fs.tempTenant[slot] = id
	fs.tempDirty[slot] = false
	fs.inUse[slot] = true

	if needLoad {
		if fs.frame.ArraySet[id] {
			fs.emit(asm.Ri("addi", reg, asm.SP, off))
		} else {
			fs.emit(asm.Lw(reg, asm.SP, off))
		}
	}

	return reg, nil
}

// free marks reg not-in-use for the remainder of this step and, for a
// temp-pool register, records whether its value needs writing back
// before the slot is reused or cleared.
func (fs *funcState) free(reg int, dirty bool) {
	for i, t := range asm.TempRegs {
		if t != reg {
			continue
		}

		fs.inUse[i] = false

		if dirty {
			fs.tempDirty[i] = true
		}

		return
	}
}

// clearTemps is Clear (spec.md §4.4): invoked before every Label, Goto,
// CondGoto and Call/CallWithRet so temp-register tenancy never straddles
// a basic-block boundary. A dirty tenant is written back first; an
// array-base tenant never needs writing back, since its register holds
// a recomputable address, not a stored value.
func (fs *funcState) clearTemps() {
	for i, tenant := range fs.tempTenant {
		if tenant == "" {
			continue
		}

		if fs.tempDirty[i] && !fs.frame.ArraySet[tenant] {
			if off, ok := fs.frame.IdentOffset[tenant]; ok {
				fs.emit(asm.Sw(asm.TempRegs[i], asm.SP, off))
			}
		}

		fs.tempTenant[i] = ""
		fs.tempDirty[i] = false
		fs.inUse[i] = false
	}
}

func (fs *funcState) markInUse(reg int) {
	for i, t := range asm.TempRegs {
		if t == reg {
			fs.inUse[i] = true
			return
		}
	}
}

// Package asm names the 32-register physical file the emitter targets
// (spec.md §3.5) and formats the instruction mnemonics it emits.
package asm

// Names is REGISTER_NAMES from the original implementation's common.h,
// indexed by physical register number.
var Names = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2", "s0", "s1", "a0",
	"a1", "a2", "a3", "a4", "a5", "a6", "a7", "s2", "s3", "s4", "s5",
	"s6", "s7", "s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

const (
	Zero = 0
	RA   = 1
	SP   = 2
	FP   = 8 // x8 / s0; no frame pointer is kept: frames are addressed from sp and s0 is allocated like any other callee-saved register
)

// ArgRegs is a0..a7, in order: the 8 argument/return-value registers.
var ArgRegs = [8]int{10, 11, 12, 13, 14, 15, 16, 17}

// CalleeSaved is S, the register set the allocator draws from: preserved
// across calls by whichever function uses them (spec.md §3.5).
var CalleeSaved = []int{8, 9, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27}

// TempRegs is T, the caller-saved scratch set reserved for short-lived
// materializations within a single IR step (spec.md §3.5).
var TempRegs = []int{5, 6, 7, 28, 29, 30, 31}

// SizeOfInt is the word size every scalar identifier and array element
// occupies, SIZE_OF_INT in the original implementation's common.h.
const SizeOfInt = 4

// Name returns the textual register name for physical register index r.
func Name(r int) string {
	return Names[r]
}

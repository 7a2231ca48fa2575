package asm

import "fmt"

// The formatting helpers below produce one line of assembly text each,
// following spec.md §6: instructions indented 4 spaces, labels flush at
// column 0, directives flush-left.

func Lbl(name string) string {
	return fmt.Sprintf("%s:\n", name)
}

func Li(dst int, imm int) string {
	return fmt.Sprintf("    li %s, %d\n", Name(dst), imm)
}

func Mv(dst, src int) string {
	return fmt.Sprintf("    mv %s, %s\n", Name(dst), Name(src))
}

// Rr emits a register-register opcode: `mnemonic dst, a, b`.
func Rr(mnemonic string, dst, a, b int) string {
	return fmt.Sprintf("    %s %s, %s, %s\n", mnemonic, Name(dst), Name(a), Name(b))
}

// Ri emits a register-immediate opcode: `mnemonic dst, a, imm`.
func Ri(mnemonic string, dst, a int, imm int) string {
	return fmt.Sprintf("    %s %s, %s, %d\n", mnemonic, Name(dst), Name(a), imm)
}

func Sw(src, base int, offset int) string {
	return fmt.Sprintf("    sw %s, %d(%s)\n", Name(src), offset, Name(base))
}

func Lw(dst, base int, offset int) string {
	return fmt.Sprintf("    lw %s, %d(%s)\n", Name(dst), offset, Name(base))
}

func La(dst int, label string) string {
	return fmt.Sprintf("    la %s, %s\n", Name(dst), label)
}

func J(label string) string {
	return fmt.Sprintf("    j %s\n", label)
}

func CallInstr(name string) string {
	return fmt.Sprintf("    call %s\n", name)
}

func Ret() string {
	return "    ret\n"
}

// Branch emits a conditional branch: `mnemonic a, b, label`.
func Branch(mnemonic string, a, b int, label string) string {
	return fmt.Sprintf("    %s %s, %s, %s\n", mnemonic, Name(a), Name(b), label)
}

func WordLine(v int) string {
	return fmt.Sprintf(".word %d\n", v)
}

package asm

// Data is the verbatim data-segment prologue (spec.md §6 point 1): the
// runtime stack region and its top-of-stack word, taken unchanged from
// the original implementation's common.h DATA constant.
const Data = `.data
    .align 4
_stack_start:
.space 1145140
_stack_top:
.word 0
`

// Text is the verbatim text-segment prologue (spec.md §6 point 3): the
// program entry point and the read/write runtime calls, taken unchanged
// from the original implementation's common.h TEXT constant. Entry jumps
// to main and wraps its return value via ecall 17; read/write use ecall
// 6 and 1 respectively.
const Text = `.text
_minilib_start:
    la sp,_stack_top
    call main
    mv a1,a0
    li a0,17
    ecall
read:
    li a0,6
    ecall
    ret
write:
    mv a1,a0
    li a0,1
    ecall
    ret
`

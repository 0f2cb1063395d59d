package cpu

import (
	"errors"
	"fmt"
)

// ErrStackOverflow is returned by CALL when all 16 stack slots are in
// use. ErrStackUnderflow is returned by RET when the stack is empty.
// Both leave the machine in an untrustworthy state and end the
// session.
var (
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrStackUnderflow = errors.New("call stack underflow")
)

// An OpcodeError is returned when fetch yields an instruction word
// that matches no defined opcode. There is no no-op fallback; a bad
// opcode means the program counter has run into data or garbage.
type OpcodeError struct {
	Opcode uint16
	Addr   uint16
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %#04x at %#03x", e.Opcode, e.Addr)
}

// A ROMSizeError is returned when a program cannot fit the memory
// region above 0x200, or is empty.
type ROMSizeError struct {
	Size int
}

func (e *ROMSizeError) Error() string {
	if e.Size == 0 {
		return "rom is empty"
	}
	return fmt.Sprintf("rom size %d exceeds %d bytes of program memory", e.Size, maxROMSize)
}

// A MemoryError is returned when an instruction would read or write
// past the top of the 4K address space through the index register.
type MemoryError struct {
	Addr uint32
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory access at %#x out of range", e.Addr)
}

package cpu

import (
	"errors"
	"fmt"
)

var (
	// ErrAddressOutOfRange is returned when a memory access falls outside [0, 4095].
	ErrAddressOutOfRange = errors.New("address out of range")
	// ErrUnrecognizedOpcode is returned when an instruction can't be decoded.
	ErrUnrecognizedOpcode = errors.New("unrecognized opcode")
	// ErrStackOverflow is returned by a CALL when all 24 stack entries are in use.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by a RET when the stack is empty.
	ErrStackUnderflow = errors.New("stack underflow")
)

// An AddressError records the address of a failed memory access.
type AddressError struct {
	Addr int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address %#04x: %s", e.Addr, ErrAddressOutOfRange)
}

func (e *AddressError) Unwrap() error {
	return ErrAddressOutOfRange
}

// An OpcodeError records an instruction the interpreter could not decode,
// along with the address it was fetched from.
type OpcodeError struct {
	Opcode uint16
	PC     uint16
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("%s %04x at %03x", ErrUnrecognizedOpcode, e.Opcode, e.PC)
}

func (e *OpcodeError) Unwrap() error {
	return ErrUnrecognizedOpcode
}

package cpu

import "fmt"

// RegisterCount is the number of general purpose data registers, V0 through VF.
const RegisterCount = 16

// flagRegister is VF. Arithmetic, shift and draw instructions use it for
// their carry, borrow and collision results, so programs shouldn't keep data there.
const flagRegister = 0xF

// Registers holds the sixteen 8-bit data registers.
type Registers struct {
	v [RegisterCount]byte
}

// Get returns the value of register Vi.
//
// The instruction decoder only ever hands out 4-bit register numbers, so an
// index outside 0-15 can only come from a bug in the caller; Get panics on one.
func (r *Registers) Get(i int) byte {
	checkRegister(i)
	return r.v[i]
}

// Set stores value in register Vi. It panics if i is outside 0-15.
func (r *Registers) Set(i int, value byte) {
	checkRegister(i)
	r.v[i] = value
}

// Values returns a copy of all sixteen registers.
func (r *Registers) Values() [RegisterCount]byte {
	return r.v
}

// Clear zeroes every register.
func (r *Registers) Clear() {
	r.v = [RegisterCount]byte{}
}

func checkRegister(i int) {
	if i < 0 || i >= RegisterCount {
		panic(fmt.Sprintf("register index out of range: %d", i))
	}
}

package cpu

// An Opcode is one 16-bit Chip-8 instruction, read big-endian from two bytes of memory.
//
// key:
// ------
// nnn - low 12 bits of opcode
// n - low 4 bits of opcode
// x - low 4 bits of opcode's high byte
// y - high 4 bits of opcode's low byte
// kk - opcode's low byte
type Opcode uint16

// Nibble returns the i-th nibble of the opcode, counting from 1 at the most significant end.
// It panics if i is not between 1 and 4.
func (op Opcode) Nibble(i int) byte {
	if i < 1 || i > 4 {
		panic("nibble index must be between 1 and 4")
	}
	shift := uint(4 - i) * 4
	return byte(op>>shift) & 0x0f
}

// High returns the opcode's high byte.
func (op Opcode) High() byte {
	return byte(op >> 8)
}

// Low returns the opcode's low byte.
func (op Opcode) Low() byte {
	return byte(op)
}

// Family returns the top nibble, which selects the instruction handler.
func (op Opcode) Family() byte {
	return op.Nibble(1)
}

// X returns the register number in the second nibble.
func (op Opcode) X() int {
	return int(op.Nibble(2))
}

// Y returns the register number in the third nibble.
func (op Opcode) Y() int {
	return int(op.Nibble(3))
}

// N returns the lowest nibble.
func (op Opcode) N() byte {
	return op.Nibble(4)
}

// KK returns the low byte.
func (op Opcode) KK() byte {
	return op.Low()
}

// NNN returns the low 12 bits, an address.
func (op Opcode) NNN() uint16 {
	return uint16(op) & 0x0fff
}

func makeOpcode(high, low byte) Opcode {
	// combine bytes as one uint16,
	// keeping the big-endian representation
	return Opcode(uint16(high)<<8 | uint16(low))
}

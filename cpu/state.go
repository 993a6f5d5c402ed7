package cpu

import (
	"fmt"
	"strings"
)

// State is a read-only snapshot of the Chip-8 CPU, RAM and screen.
type State struct {
	PC            uint16
	I             uint16
	Opcode        Opcode
	V             [RegisterCount]byte
	DT            byte
	ST            byte
	Stack         []uint16
	Keys          [KeyCount]bool
	WaitingForKey bool
	Memory        [MemorySize]byte
	Screen        Frame
}

// Snapshot returns a static copy of the Chip8 at the moment the method is called.
func (c *Chip8) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		PC:            c.pc,
		I:             c.i,
		Opcode:        c.opcode,
		V:             c.registers.Values(),
		DT:            c.dt,
		ST:            c.st,
		Stack:         c.stack.Entries(),
		Keys:          c.keys,
		WaitingForKey: c.waitingForKey,
		Memory:        c.memory.cells,
		Screen:        c.display.Frame(),
	}
}

// String formats the registers, stack and screen for a human to squint at.
func (s State) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "PC=%03x I=%03x OP=%04x DT=%02x ST=%02x", s.PC, s.I, uint16(s.Opcode), s.DT, s.ST)
	if s.WaitingForKey {
		sb.WriteString(" (waiting for key)")
	}
	sb.WriteByte('\n')

	for r, v := range s.V {
		fmt.Fprintf(&sb, "V%X=%02x", r, v)
		if r%8 == 7 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}

	sb.WriteString("stack:")
	for _, addr := range s.Stack {
		fmt.Fprintf(&sb, " %03x", addr)
	}
	sb.WriteByte('\n')

	sb.WriteString("keys:")
	for k, down := range s.Keys {
		if down {
			fmt.Fprintf(&sb, " %X", k)
		}
	}
	sb.WriteByte('\n')

	sb.WriteString(s.Screen.String())
	return sb.String()
}

package main

import (
	"log"
)

// control is a host key that drives the machine instead of the Chip-8 keypad.
type control int

const (
	powerOff control = iota
	pause
	resume
	step
	dumpState
)

// machine is the part of emulator.Machine that the frontends drive.
type machine interface {
	KeyDown(k int)
	KeyUp(k int)
	Pause()
	Resume()
	Step()
	TurnOff()
	DumpState() string
}

func (c control) apply(m machine, logger *log.Logger) {
	switch c {
	case powerOff:
		m.TurnOff()
	case pause:
		m.Pause()
	case resume:
		m.Resume()
	case step:
		// only step forward a paused CPU to avoid a double-step
		m.Step()
	case dumpState:
		logger.Printf("state dump:\n%s", m.DumpState())
	}
}

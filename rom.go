package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mpingram/chip8vm/cpu"
)

// maxProgramSize is the room between the program start and the end of memory.
const maxProgramSize = cpu.MemorySize - cpu.ProgramStart

// ErrProgramTooLarge is returned for roms that do not fit into memory.
var ErrProgramTooLarge = errors.New("program does not fit into memory")

func readROM(path string) ([]byte, error) {
	program, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}
	if len(program) == 0 {
		return nil, fmt.Errorf("rom '%s' is empty", path)
	}
	if len(program) > maxProgramSize {
		return nil, fmt.Errorf("rom '%s' has %d bytes, limit is %d: %w",
			path, len(program), maxProgramSize, ErrProgramTooLarge)
	}
	return program, nil
}

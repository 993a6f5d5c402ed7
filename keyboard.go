package main

import (
	"log"

	"github.com/go-gl/glfw/v3.2/glfw"
)

// glfwKeypad maps the left side of a QWERTY keyboard onto the hex keypad:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var glfwKeypad = map[glfw.Key]int{
	glfw.Key1: 0x1, glfw.Key2: 0x2, glfw.Key3: 0x3, glfw.Key4: 0xC,
	glfw.KeyQ: 0x4, glfw.KeyW: 0x5, glfw.KeyE: 0x6, glfw.KeyR: 0xD,
	glfw.KeyA: 0x7, glfw.KeyS: 0x8, glfw.KeyD: 0x9, glfw.KeyF: 0xE,
	glfw.KeyZ: 0xA, glfw.KeyX: 0x0, glfw.KeyC: 0xB, glfw.KeyV: 0xF,
}

var glfwControls = map[glfw.Key]control{
	glfw.KeyEscape:       powerOff,
	glfw.KeyP:            pause,
	glfw.KeyLeftBracket:  resume,
	glfw.KeyRightBracket: step,
	glfw.KeyO:            dumpState,
}

// handleKey forwards a glfw key event to the machine. It reports whether the
// window should close.
func handleKey(m machine, logger *log.Logger, key glfw.Key, action glfw.Action) bool {
	if k, ok := glfwKeypad[key]; ok {
		switch action {
		case glfw.Press:
			m.KeyDown(k)
		case glfw.Release:
			m.KeyUp(k)
		}
		return false
	}

	if action != glfw.Press {
		return false
	}
	ctl, ok := glfwControls[key]
	if !ok {
		return false
	}
	ctl.apply(m, logger)
	return ctl == powerOff
}

func newKeyCallback(m machine, logger *log.Logger) glfw.KeyCallback {
	return func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if handleKey(m, logger, key, action) {
			w.SetShouldClose(true)
		}
	}
}

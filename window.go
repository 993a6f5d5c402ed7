package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/mpingram/chip8vm/cpu"
	"github.com/mpingram/chip8vm/emulator"
)

// refreshRate is how often the window pumps events and redraws.
const refreshRate = time.Second / 60

// bell rings the terminal bell while a window is open.
type bell struct {
	mu sync.Mutex
	w  io.Writer
}

func (b *bell) StartSound() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.w, "\a")
}

func (b *bell) StopSound() {}

// runWindow runs program in a glfw window. It has to be called from the main
// thread, the machine itself runs on a separate goroutine.
func runWindow(ctx context.Context, chip *cpu.Chip8, program []byte, opts options, logger *log.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initializing glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cpu.ScreenWidth*opts.scale, cpu.ScreenHeight*opts.scale, "Chip-8", nil, nil)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()

	renderer, err := NewOpenGLRenderer()
	if err != nil {
		return err
	}
	defer renderer.Delete()

	frames := newLatestFrame()
	m := emulator.New(chip, frames, &bell{w: os.Stderr}, machineOptions(opts, logger)...)
	window.SetKeyCallback(newKeyCallback(m, logger))

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx, program)
	}()

	refresh := time.NewTicker(refreshRate)
	defer refresh.Stop()

	for !window.ShouldClose() {
		glfw.PollEvents()

		select {
		case err := <-done:
			return err
		case frame := <-frames:
			width, height := window.GetFramebufferSize()
			renderer.Draw(frame, width, height)
			window.SwapBuffers()
		case <-refresh.C:
		}
	}

	m.TurnOff()
	return <-done
}

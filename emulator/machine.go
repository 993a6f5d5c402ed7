// Package emulator runs a Chip-8 CPU in real time: it clocks instructions at a fixed
// speed, counts the timers down at 60Hz, and hands frames and sounds to whatever
// screen and speaker the host provides.
package emulator

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mpingram/chip8vm/cpu"
)

const (
	// DefaultSpeed is the number of instructions executed per second.
	DefaultSpeed = 500
	// TimerRate is how often the delay and sound timers count down.
	TimerRate = time.Second / 60
)

// Display receives the screen every time an instruction changes it.
// Render is called from the goroutine running Machine.Run.
type Display interface {
	Render(frame cpu.Frame)
}

// The Speaker interface represents the Chip8 speaker, which acts as a simple
// buzzer -- the Chip8 doesn't specify the frequency of the sound, only its
// duration. So it could totally be a fart noise if you want.
type Speaker interface {
	StartSound()
	StopSound()
}

// Machine connects a cpu.Chip8 to a display and a speaker and runs it.
type Machine struct {
	chip    *cpu.Chip8
	display Display
	speaker Speaker
	logger  *log.Logger

	speed int

	paused   atomic.Bool
	sounding atomic.Bool
	step     chan struct{}
	off      chan struct{}
	offOnce  sync.Once
}

// An Option configures a Machine.
type Option func(*Machine)

// WithSpeed sets how many instructions run per second.
func WithSpeed(instructionsPerSecond int) Option {
	return func(m *Machine) {
		if instructionsPerSecond > 0 {
			m.speed = instructionsPerSecond
		}
	}
}

// WithLogger sends lifecycle messages to logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// StartPaused makes Run load the program and then wait for Resume or Step.
func StartPaused() Option {
	return func(m *Machine) {
		m.paused.Store(true)
	}
}

// New returns a Machine driving chip. display and speaker may be nil.
func New(chip *cpu.Chip8, display Display, speaker Speaker, opts ...Option) *Machine {
	if chip == nil {
		panic("emulator: nil chip")
	}
	m := &Machine{
		chip:    chip,
		display: display,
		speaker: speaker,
		logger:  log.New(io.Discard, "", 0),
		speed:   DefaultSpeed,
		step:    make(chan struct{}, 1),
		off:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Chip returns the CPU the machine drives.
func (m *Machine) Chip() *cpu.Chip8 {
	return m.chip
}

// Run resets the CPU, loads program and executes it until TurnOff is called,
// ctx is cancelled, or the CPU hits a fatal error.
//
// TurnOff makes Run return nil, cancellation returns ctx.Err(), and a CPU error is
// returned wrapped with the state the CPU stopped in.
func (m *Machine) Run(ctx context.Context, program []byte) error {
	m.chip.Reset()
	if err := m.chip.Load(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	m.logger.Printf("loaded %d byte program, running at %d instructions/s", len(program), m.speed)

	// render the blank screen first
	m.render()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		m.silence()
	}()

	wg.Add(2)
	go func() {
		defer wg.Done()
		m.runTimers(ctx)
	}()
	go func() {
		defer wg.Done()
		m.runSpeaker(ctx)
	}()

	clock := time.NewTicker(time.Second / time.Duration(m.speed))
	defer clock.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-m.off:
			m.logger.Printf("powered off")
			return nil

		case <-m.step:
			if err := m.cycle(); err != nil {
				return err
			}

		case <-clock.C:
			if m.IsPaused() {
				continue
			}
			if err := m.cycle(); err != nil {
				return err
			}
		}
	}
}

// cycle executes one instruction and redraws if it touched the screen.
func (m *Machine) cycle() error {
	if err := m.chip.Tick(); err != nil {
		return fmt.Errorf("cpu halted at PC=%03x: %w", m.chip.PC(), err)
	}
	if m.chip.DrawRequired() {
		m.render()
	}
	return nil
}

func (m *Machine) render() {
	if m.display != nil {
		m.display.Render(m.chip.Frame())
	}
}

// runTimers advances the CPU timers at 60Hz no matter how fast instructions run.
// The timers keep counting while the machine is paused, as they would on a
// real interpreter whose program is stuck in a loop.
func (m *Machine) runTimers(ctx context.Context) {
	ticker := time.NewTicker(TimerRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.chip.AdvanceTimers()
		}
	}
}

func (m *Machine) runSpeaker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-m.chip.Sound():
			m.handleSound(ev)
		}
	}
}

func (m *Machine) handleSound(ev cpu.SoundEvent) {
	switch ev {
	case cpu.SoundStart:
		m.sounding.Store(true)
		if m.speaker != nil {
			m.speaker.StartSound()
		}
	case cpu.SoundStop:
		m.sounding.Store(false)
		if m.speaker != nil {
			m.speaker.StopSound()
		}
	}
}

// silence stops a buzzer that is still going when Run returns.
func (m *Machine) silence() {
	if m.sounding.Swap(false) && m.speaker != nil {
		m.speaker.StopSound()
	}
}

// KeyDown presses key k on the keypad.
func (m *Machine) KeyDown(k int) {
	m.chip.KeyDown(k)
}

// KeyUp releases key k on the keypad.
func (m *Machine) KeyUp(k int) {
	m.chip.KeyUp(k)
}

// Pause stops executing instructions after the current one. The timers keep running.
func (m *Machine) Pause() {
	m.paused.Store(true)
}

// Resume puts the machine back into a running state after Pause.
// If the machine is running, Resume has no effect.
func (m *Machine) Resume() {
	m.paused.Store(false)
}

// IsPaused reports whether the machine is paused.
func (m *Machine) IsPaused() bool {
	return m.paused.Load()
}

// Step executes the next instruction in its entirety while the machine is paused.
// A running machine ignores Step, which avoids a double step.
func (m *Machine) Step() {
	if !m.IsPaused() {
		return
	}
	select {
	case m.step <- struct{}{}:
	default:
	}
}

// TurnOff makes Run return after the current instruction.
func (m *Machine) TurnOff() {
	m.offOnce.Do(func() {
		close(m.off)
	})
}

// DumpState returns a printable snapshot of registers, stack and screen.
func (m *Machine) DumpState() string {
	return m.chip.Snapshot().String()
}

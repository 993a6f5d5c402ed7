package cpu

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"sync"
)

const (
	// ProgramStart is where programs are loaded and where execution begins.
	ProgramStart = 0x200
	// InstructionSize is the width of one instruction in bytes.
	InstructionSize = 2
	// KeyCount is the number of keys on the hexadecimal keypad, 0x0 through 0xF.
	KeyCount = 16
)

// A SoundEvent tells whoever is listening to the speaker to start or stop the buzzer.
type SoundEvent int

// Sound events emitted on the Chip8.Sound channel.
const (
	SoundStart SoundEvent = iota + 1
	SoundStop
)

func (e SoundEvent) String() string {
	switch e {
	case SoundStart:
		return "start"
	case SoundStop:
		return "stop"
	default:
		return fmt.Sprintf("SoundEvent(%d)", int(e))
	}
}

// Chip8 represents an emulated Chip-8 CPU. Not that the Chip-8 was ever a real physical
// computer with a CPU, but writing this emulator has taught me that sometimes it's fun to pretend.
//
// The Chip8 doesn't run itself. Whoever owns it loads a program, then calls Tick once per
// instruction at whatever speed they like, and separately calls AdvanceTimers sixty times a
// second. Keys are fed in with KeyDown and KeyUp. After a Tick that reports DrawRequired,
// the screen can be read through Display().
//
// All exported methods are safe to call from different goroutines, so the timer clock,
// the instruction clock and the keyboard can each live on their own.
type Chip8 struct {
	mu sync.Mutex

	// program counter
	pc uint16
	// address register
	i uint16
	// delay and sound timers.
	// Both delay and sound timers are registers that are decremented at 60hz once set.
	dt byte
	st byte

	// the most recently fetched instruction
	opcode Opcode

	registers Registers
	stack     Stack
	memory    *Memory
	display   *Display
	rng       RandomSource

	// keys stores the state of the keypad. Each index corresponds to one key,
	// ie index 0 = '0', index 15 = 'F'. True means the key is held down.
	keys [KeyCount]bool

	// waitingForKey is set by Fx0A and suspends execution until the next key event.
	// keyRegister is the x of that Fx0A, which receives the key when captureKey is set.
	waitingForKey bool
	keyRegister   int
	captureKey    bool

	drawRequired bool

	sound chan SoundEvent

	// Log holds the instruction trace when tracing is enabled.
	Log    bytes.Buffer
	logger *log.Logger
	trace  bool
}

// An Option configures a Chip8 created with NewChip8.
type Option func(*Chip8)

// WithRandom makes the RND instruction draw its bytes from rng.
func WithRandom(rng RandomSource) Option {
	return func(c *Chip8) {
		c.rng = rng
	}
}

// WithTrace records a disassembly of every executed instruction in Chip8.Log.
func WithTrace() Option {
	return func(c *Chip8) {
		c.trace = true
	}
}

// WithKeyCapture makes the key event that ends an Fx0A wait store its key in Vx.
// Without it Fx0A only pauses execution and Vx keeps its value.
func WithKeyCapture() Option {
	return func(c *Chip8) {
		c.captureKey = true
	}
}

// WithSoundBuffer sets how many sound events can queue up unread before the
// oldest ones are dropped. The default is 8.
func WithSoundBuffer(n int) Option {
	return func(c *Chip8) {
		if n > 0 {
			c.sound = make(chan SoundEvent, n)
		}
	}
}

// NewChip8 returns an initialized Chip8 with the font loaded and the program
// counter at ProgramStart, ready for Load.
func NewChip8(opts ...Option) *Chip8 {
	c := &Chip8{
		memory:  NewMemory(),
		display: NewDisplay(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = NewRandom(0)
	}
	if c.sound == nil {
		c.sound = make(chan SoundEvent, 8)
	}
	c.reset()
	return c
}

// Reset clears memory, registers, stack, timers, keypad and screen, puts the
// program counter back at ProgramStart and reloads the font sprites.
// A loaded program is gone after Reset.
func (c *Chip8) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Chip8) reset() {
	if c.st > 0 {
		c.emit(SoundStop)
	}

	c.pc = ProgramStart
	c.i = 0
	c.dt = 0
	c.st = 0
	c.opcode = 0

	c.registers.Clear()
	c.stack.Clear()
	c.memory.Clear()
	c.display.Clear()
	c.keys = [KeyCount]bool{}
	c.waitingForKey = false
	c.keyRegister = 0
	c.drawRequired = false

	c.Log.Reset()
	var out io.Writer = io.Discard
	if c.trace {
		out = &c.Log
	}
	c.logger = log.New(out, "chip8:", log.Ltime|log.Lmicroseconds)

	// 80 bytes at address 0 always fit.
	_ = loadFontSprites(c.memory)
}

// Load copies a program into memory starting at ProgramStart.
// A program too big for memory fails on the first byte that doesn't fit.
func (c *Chip8) Load(program []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, b := range program {
		if err := c.memory.Write(ProgramStart+i, b); err != nil {
			return fmt.Errorf("loading program byte %d: %w", i, err)
		}
	}
	return nil
}

// Tick fetches, decodes and executes one instruction.
//
// If the Chip8 is waiting for a keypress, Tick does nothing. Errors are fatal:
// a bad memory access, an undecodable instruction, or a stack that over- or underflowed
// means the program can't sensibly continue.
func (c *Chip8) Tick() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.drawRequired = false
	if c.waitingForKey {
		return nil
	}

	pc := c.pc
	opcode, err := c.readOpcode(pc)
	if err != nil {
		return fmt.Errorf("fetching opcode at %03x: %w", pc, err)
	}
	c.opcode = opcode
	c.pc += InstructionSize

	if err := dispatch[opcode.Family()](c, opcode); err != nil {
		if _, ok := err.(*OpcodeError); ok {
			return err
		}
		return fmt.Errorf("executing %04x at %03x: %w", uint16(opcode), pc, err)
	}
	return nil
}

func (c *Chip8) readOpcode(addr uint16) (Opcode, error) {
	// the opcode we want to read is the next two bytes,
	// stored big-endian.
	high, err := c.memory.Read(int(addr))
	if err != nil {
		return 0, err
	}
	low, err := c.memory.Read(int(addr) + 1)
	if err != nil {
		return 0, err
	}
	return makeOpcode(high, low), nil
}

// AdvanceTimers counts the delay and sound timers down by one, stopping at zero.
// Call it sixty times a second, independently of Tick.
// When the sound timer runs out a SoundStop event is sent.
func (c *Chip8) AdvanceTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dt > 0 {
		c.dt--
	}
	if c.st > 0 {
		c.st--
		if c.st == 0 {
			c.emit(SoundStop)
		}
	}
}

// KeyDown marks key k as held. Any key event also ends a pending Fx0A wait.
// Keys outside 0-15 are ignored.
func (c *Chip8) KeyDown(k int) {
	c.setKey(k, true)
}

// KeyUp marks key k as released. Like KeyDown, it ends a pending Fx0A wait,
// so releasing a key counts as an answer too.
func (c *Chip8) KeyUp(k int) {
	c.setKey(k, false)
}

func (c *Chip8) setKey(k int, down bool) {
	if k < 0 || k >= KeyCount {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keys[k] = down
	if c.waitingForKey {
		if c.captureKey {
			c.registers.Set(c.keyRegister, byte(k))
		}
		c.waitingForKey = false
	}
}

// Sound returns the channel that SoundStart and SoundStop events are sent on.
// Nothing blocks if nobody reads it; when the buffer fills the oldest event is dropped.
func (c *Chip8) Sound() <-chan SoundEvent {
	return c.sound
}

// emit must be called with c.mu held.
func (c *Chip8) emit(ev SoundEvent) {
	for {
		select {
		case c.sound <- ev:
			return
		default:
		}
		select {
		case <-c.sound:
		default:
		}
	}
}

// PC returns the program counter.
func (c *Chip8) PC() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pc
}

// I returns the address register.
func (c *Chip8) I() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.i
}

// DelayTimer returns the current delay timer value.
func (c *Chip8) DelayTimer() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dt
}

// SoundTimer returns the current sound timer value.
func (c *Chip8) SoundTimer() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st
}

// DrawRequired reports whether the last Tick changed the screen.
func (c *Chip8) DrawRequired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawRequired
}

// WaitingForKey reports whether execution is suspended on an Fx0A.
func (c *Chip8) WaitingForKey() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waitingForKey
}

// Opcode returns the most recently fetched instruction.
func (c *Chip8) Opcode() Opcode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opcode
}

// Frame returns a copy of the screen.
func (c *Chip8) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display.Frame()
}

// Display gives direct access to the screen, Registers to the data registers,
// Memory to RAM and Stack to the call stack.
// None of them are guarded, so only touch them while nothing is calling Tick.
func (c *Chip8) Display() *Display {
	return c.display
}

// Registers gives direct access to V0-VF. See Display.
func (c *Chip8) Registers() *Registers {
	return &c.registers
}

// Memory gives direct access to RAM. See Display.
func (c *Chip8) Memory() *Memory {
	return c.memory
}

// Stack gives direct access to the call stack. See Display.
func (c *Chip8) Stack() *Stack {
	return &c.stack
}

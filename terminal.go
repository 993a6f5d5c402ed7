package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mpingram/chip8vm/cpu"
	"github.com/mpingram/chip8vm/emulator"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// keyHoldTime is how long a terminal key counts as pressed. Terminals only
// report key presses, so the release is synthesized after this interval.
const keyHoldTime = 150 * time.Millisecond

const (
	escape     = 0x1b
	clearAll   = "\x1b[2J"
	cursorHome = "\x1b[H"
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
)

// terminalKeypad is the same layout as the window keypad.
var terminalKeypad = map[byte]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

var terminalControls = map[byte]control{
	'p': pause,
	'[': resume,
	']': step,
	'o': dumpState,
}

// Terminal draws the screen with half block characters, two pixel rows per
// text line, and rings the bell for sound.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
	// left padding in columns, used to center the screen
	indent int

	fd          uintptr
	origTermios unix.Termios
}

// NewTerminal returns a Terminal writing to out.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// enableRawMode turns off line buffering and echo on the terminal behind fd.
func (t *Terminal) enableRawMode(fd uintptr) error {
	if err := termios.Tcgetattr(fd, &t.origTermios); err != nil {
		return fmt.Errorf("reading terminal attributes: %w", err)
	}
	raw := t.origTermios
	raw.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &raw); err != nil {
		return fmt.Errorf("enabling raw mode: %w", err)
	}
	t.fd = fd

	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := io.WriteString(t.out, clearAll+hideCursor)
	return err
}

func (t *Terminal) disableRawMode() error {
	t.mu.Lock()
	_, _ = io.WriteString(t.out, showCursor+"\n")
	t.mu.Unlock()

	if err := termios.Tcsetattr(t.fd, termios.TCSANOW, &t.origTermios); err != nil {
		return fmt.Errorf("restoring terminal: %w", err)
	}
	return nil
}

// center indents the screen for a terminal that is columns wide.
func (t *Terminal) center(columns int) {
	indent := (columns - cpu.ScreenWidth - 2) / 2
	if indent < 0 {
		indent = 0
	}
	t.mu.Lock()
	t.indent = indent
	t.mu.Unlock()
}

// Render implements emulator.Display.
func (t *Terminal) Render(frame cpu.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.out, cursorHome+halfBlocks(frame, t.indent))
}

// StartSound implements emulator.Speaker.
func (t *Terminal) StartSound() {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.out, "\a")
}

// StopSound implements emulator.Speaker. The bell stops by itself.
func (t *Terminal) StopSound() {}

// halfBlocks renders frame inside a box, packing two pixel rows into one line.
func halfBlocks(frame cpu.Frame, indent int) string {
	var sb strings.Builder
	pad := strings.Repeat(" ", indent)

	border := pad + "+" + strings.Repeat("-", cpu.ScreenWidth) + "+\n"
	sb.WriteString(border)
	for y := 0; y < cpu.ScreenHeight; y += 2 {
		sb.WriteString(pad)
		sb.WriteByte('|')
		for x := 0; x < cpu.ScreenWidth; x++ {
			top, bottom := frame[y][x], frame[y+1][x]
			switch {
			case top && bottom:
				sb.WriteString("█")
			case top:
				sb.WriteString("▀")
			case bottom:
				sb.WriteString("▄")
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return sb.String()
}

// keyHolder presses keypad keys and releases them after a hold interval.
// A repeated press extends the hold.
type keyHolder struct {
	mu     sync.Mutex
	m      machine
	hold   time.Duration
	down   [cpu.KeyCount]bool
	gen    [cpu.KeyCount]int
	timers [cpu.KeyCount]*time.Timer
}

func newKeyHolder(m machine, hold time.Duration) *keyHolder {
	return &keyHolder{m: m, hold: hold}
}

func (h *keyHolder) press(k int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.gen[k]++
	gen := h.gen[k]
	if !h.down[k] {
		h.down[k] = true
		h.m.KeyDown(k)
	}
	if h.timers[k] != nil {
		h.timers[k].Stop()
	}
	h.timers[k] = time.AfterFunc(h.hold, func() {
		h.release(k, gen)
	})
}

// release lets go of k unless it was pressed again since gen.
func (h *keyHolder) release(k, gen int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.gen[k] != gen || !h.down[k] {
		return
	}
	h.down[k] = false
	h.m.KeyUp(k)
}

// handleInput processes one read from the terminal. It reports whether the
// user asked to quit.
func handleInput(buf []byte, keys *keyHolder, m machine, logger *log.Logger) bool {
	if len(buf) == 0 {
		return false
	}
	if buf[0] == escape {
		// a lone escape is the escape key, anything longer is a sequence
		// like an arrow key
		if len(buf) == 1 {
			powerOff.apply(m, logger)
			return true
		}
		return false
	}

	for _, b := range buf {
		b = toLower(b)
		if k, ok := terminalKeypad[b]; ok {
			keys.press(k)
			continue
		}
		if ctl, ok := terminalControls[b]; ok {
			ctl.apply(m, logger)
		}
	}
	return false
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

// readKeys reads stdin until the user quits or ctx is done.
func readKeys(ctx context.Context, in io.Reader, m machine, logger *log.Logger) {
	keys := newKeyHolder(m, keyHoldTime)
	buf := make([]byte, 16)
	for ctx.Err() == nil {
		n, err := in.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Printf("reading keyboard: %v", err)
			}
			return
		}
		if handleInput(buf[:n], keys, m, logger) {
			return
		}
	}
}

// runTerminal runs program in the terminal attached to stdin and stdout.
func runTerminal(ctx context.Context, chip *cpu.Chip8, program []byte, opts options, logger *log.Logger) error {
	stdin := int(os.Stdin.Fd())
	if !term.IsTerminal(stdin) {
		return errors.New("terminal frontend needs an interactive terminal")
	}

	t := NewTerminal(os.Stdout)
	if columns, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		t.center(columns)
	}
	if err := t.enableRawMode(os.Stdin.Fd()); err != nil {
		return err
	}
	defer func() {
		if err := t.disableRawMode(); err != nil {
			logger.Printf("%v", err)
		}
	}()

	m := emulator.New(chip, t, t, machineOptions(opts, logger)...)
	// the reader stays blocked on stdin until the process exits
	go readKeys(ctx, os.Stdin, m, logger)

	return m.Run(ctx, program)
}

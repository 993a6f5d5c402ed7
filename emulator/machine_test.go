package emulator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mpingram/chip8vm/cpu"
	"github.com/retroenv/retrogolib/assert"
)

const waitTimeout = 2 * time.Second

type fakeDisplay struct {
	mu     sync.Mutex
	frames []cpu.Frame
}

func (d *fakeDisplay) Render(frame cpu.Frame) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, frame)
}

func (d *fakeDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.frames)
}

func (d *fakeDisplay) last() cpu.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames[len(d.frames)-1]
}

type fakeSpeaker struct {
	events chan string
}

func newFakeSpeaker() *fakeSpeaker {
	return &fakeSpeaker{events: make(chan string, 16)}
}

func (s *fakeSpeaker) StartSound() { s.events <- "start" }
func (s *fakeSpeaker) StopSound()  { s.events <- "stop" }

// eventually polls cond until it holds or the timeout passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func runMachine(m *Machine, program []byte) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- m.Run(context.Background(), program)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestRunDrawsAndTurnsOff(t *testing.T) {
	display := &fakeDisplay{}
	m := New(cpu.NewChip8(), display, nil, WithSpeed(5000))

	done := runMachine(m, []byte{
		0x60, 0x00, // V0 = 0
		0xF0, 0x29, // I = glyph 0
		0xD0, 0x05, // draw it at 0,0
		0x12, 0x06, // loop forever
	})

	// one blank frame up front, one for the draw
	eventually(t, func() bool { return display.count() >= 2 }, "sprite to be rendered")
	frame := display.last()
	assert.True(t, frame[0][0])
	assert.True(t, frame[0][3])
	assert.False(t, frame[1][1])

	m.TurnOff()
	assert.NoError(t, waitDone(t, done))
}

func TestRunReturnsCPUError(t *testing.T) {
	m := New(cpu.NewChip8(), nil, nil, WithSpeed(5000))

	done := runMachine(m, []byte{0x00, 0xEE}) // RET with nothing to return to
	err := waitDone(t, done)
	assert.True(t, errors.Is(err, cpu.ErrStackUnderflow))
}

func TestRunRejectsOversizedProgram(t *testing.T) {
	m := New(cpu.NewChip8(), nil, nil)

	err := m.Run(context.Background(), make([]byte, cpu.MemorySize))
	assert.True(t, errors.Is(err, cpu.ErrAddressOutOfRange))
}

func TestRunStopsOnCancel(t *testing.T) {
	m := New(cpu.NewChip8(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx, []byte{0x12, 0x00})
	}()
	cancel()

	err := waitDone(t, done)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPauseAndStep(t *testing.T) {
	m := New(cpu.NewChip8(), nil, nil, WithSpeed(5000), StartPaused())
	done := runMachine(m, []byte{
		0x70, 0x01, // V0 += 1
		0x12, 0x00, // loop
	})

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, uint16(cpu.ProgramStart), m.Chip().PC())

	m.Step()
	eventually(t, func() bool { return m.Chip().PC() == cpu.ProgramStart+2 }, "one step")

	m.Step()
	eventually(t, func() bool { return m.Chip().PC() == cpu.ProgramStart }, "second step")
	assert.Equal(t, byte(1), m.Chip().Snapshot().V[0])

	m.Resume()
	assert.False(t, m.IsPaused())
	eventually(t, func() bool { return m.Chip().Snapshot().V[0] > 10 }, "running again")

	m.Pause()
	assert.True(t, m.IsPaused())

	m.TurnOff()
	assert.NoError(t, waitDone(t, done))
}

func TestSpeakerFollowsSoundTimer(t *testing.T) {
	speaker := newFakeSpeaker()
	m := New(cpu.NewChip8(), nil, speaker, WithSpeed(5000))

	done := runMachine(m, []byte{
		0x60, 0x02, // V0 = 2
		0xF0, 0x18, // ST = V0
		0x12, 0x04, // loop
	})

	for _, want := range []string{"start", "stop"} {
		select {
		case got := <-speaker.events:
			assert.Equal(t, want, got)
		case <-time.After(waitTimeout):
			t.Fatalf("speaker never got %s", want)
		}
	}

	m.TurnOff()
	assert.NoError(t, waitDone(t, done))
}

func TestSpeakerSilencedOnExit(t *testing.T) {
	speaker := newFakeSpeaker()
	m := New(cpu.NewChip8(), nil, speaker, WithSpeed(5000))

	done := runMachine(m, []byte{
		0x60, 0xFF, // V0 = 255
		0xF0, 0x18, // ST = V0, about four seconds of noise
		0x12, 0x04, // loop
	})
	select {
	case got := <-speaker.events:
		assert.Equal(t, "start", got)
	case <-time.After(waitTimeout):
		t.Fatal("speaker never started")
	}

	m.TurnOff()
	assert.NoError(t, waitDone(t, done))
	assert.Equal(t, "stop", <-speaker.events)
}

func TestKeysReachTheCPU(t *testing.T) {
	m := New(cpu.NewChip8(cpu.WithKeyCapture()), nil, nil, WithSpeed(5000))
	done := runMachine(m, []byte{
		0xF3, 0x0A, // V3 = K
		0x12, 0x02, // loop
	})

	eventually(t, m.Chip().WaitingForKey, "Fx0A to block")
	m.KeyDown(0x7)
	m.KeyUp(0x7)
	eventually(t, func() bool { return m.Chip().Snapshot().V[3] == 0x7 }, "key to land in V3")

	m.TurnOff()
	assert.NoError(t, waitDone(t, done))
}

func TestDumpState(t *testing.T) {
	m := New(cpu.NewChip8(), nil, nil)
	assert.True(t, len(m.DumpState()) > 0)
}

// Package main implements a Chip-8 interpreter that runs in a window or in a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/mpingram/chip8vm/cpu"
	"github.com/mpingram/chip8vm/emulator"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "0.2.0"
	commit  = ""
	date    = ""
)

const (
	frontendWindow   = "gl"
	frontendTerminal = "term"
)

type options struct {
	rom      string
	frontend string

	speed int
	scale int
	seed  int64

	paused     bool
	captureKey bool
	trace      bool
	quiet      bool
	version    bool
}

// UsageError is returned for command lines that can not be run.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string {
	return e.msg
}

func init() {
	// openGL requires this to render properly
	runtime.LockOSThread()
}

func main() {
	logger := log.New(os.Stderr, "chip8:", log.Ltime)

	opts, err := parseArguments(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			printBanner(os.Stderr, opts)
			fmt.Fprintf(os.Stderr, "%s\n\n", usageErr)
			printUsage(os.Stderr)
		}
		os.Exit(2)
	}

	if opts.version {
		fmt.Println(buildinfo.Version(version, commit, date))
		return
	}
	printBanner(os.Stdout, opts)

	if err := run(opts, logger); err != nil {
		logger.Printf("%v", err)
		os.Exit(1)
	}
}

func newFlagSet(opts *options, output io.Writer) *flag.FlagSet {
	flags := flag.NewFlagSet("chip8", flag.ContinueOnError)
	flags.SetOutput(output)

	flags.StringVar(&opts.frontend, "frontend", frontendWindow, "where to run: 'gl' opens a window, 'term' draws in the terminal")
	flags.IntVar(&opts.speed, "speed", emulator.DefaultSpeed, "instructions executed per second")
	flags.IntVar(&opts.scale, "scale", 10, "window pixels per Chip-8 pixel")
	flags.Int64Var(&opts.seed, "seed", 0, "seed for the random number generator, 0 picks one from the clock")
	flags.BoolVar(&opts.paused, "paused", false, "start paused, step with ']' and resume with '['")
	flags.BoolVar(&opts.captureKey, "capturekey", false, "store the key that ends a wait-for-key instruction in its register")
	flags.BoolVar(&opts.trace, "trace", false, "print a trace of every executed instruction on exit")
	flags.BoolVar(&opts.quiet, "q", false, "do not print the banner")
	flags.BoolVar(&opts.version, "version", false, "print the version and exit")
	return flags
}

func parseArguments(args []string, output io.Writer) (options, error) {
	opts := options{}
	flags := newFlagSet(&opts, output)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, err
		}
		return opts, &UsageError{msg: err.Error()}
	}
	if opts.version {
		return opts, nil
	}

	switch {
	case flags.NArg() == 0:
		return opts, &UsageError{msg: "no rom file given"}
	case flags.NArg() > 1:
		return opts, &UsageError{msg: "only one rom file can be run at a time"}
	case opts.frontend != frontendWindow && opts.frontend != frontendTerminal:
		return opts, &UsageError{msg: fmt.Sprintf("unsupported frontend '%s'", opts.frontend)}
	case opts.speed <= 0:
		return opts, &UsageError{msg: "speed has to be positive"}
	case opts.scale <= 0:
		return opts, &UsageError{msg: "scale has to be positive"}
	}

	opts.rom = flags.Arg(0)
	return opts, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: chip8 [options] <rom file>\n\n")
	newFlagSet(&options{}, w).PrintDefaults()
}

func printBanner(w io.Writer, opts options) {
	if opts.quiet || opts.version {
		return
	}
	fmt.Fprintln(w, "[-------------------------------]")
	fmt.Fprintln(w, "[ chip8 - Chip-8 interpreter    ]")
	fmt.Fprintf(w, "[-------------------------------]\n\n")
	fmt.Fprintf(w, "version: %s\n\n", buildinfo.Version(version, commit, date))
}

func run(opts options, logger *log.Logger) error {
	program, err := readROM(opts.rom)
	if err != nil {
		return err
	}
	logger.Printf("loaded '%s' (%d bytes)", opts.rom, len(program))

	chipOptions := []cpu.Option{cpu.WithRandom(cpu.NewRandom(opts.seed))}
	if opts.captureKey {
		chipOptions = append(chipOptions, cpu.WithKeyCapture())
	}
	if opts.trace {
		chipOptions = append(chipOptions, cpu.WithTrace())
	}
	chip := cpu.NewChip8(chipOptions...)
	if opts.trace {
		defer chip.Log.WriteTo(os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch opts.frontend {
	case frontendTerminal:
		err = runTerminal(ctx, chip, program, opts, logger)
	default:
		err = runWindow(ctx, chip, program, opts, logger)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func machineOptions(opts options, logger *log.Logger) []emulator.Option {
	machineOpts := []emulator.Option{
		emulator.WithSpeed(opts.speed),
		emulator.WithLogger(logger),
	}
	if opts.paused {
		machineOpts = append(machineOpts, emulator.StartPaused())
	}
	return machineOpts
}

package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/IronCretin/bytepole2/vm"
	"go.uber.org/zap"
)

const defaultPrompt = ">>> "

type ReplOpts struct {
	Input  io.Reader
	Output io.Writer
	Prompt string
	// MaxSteps bounds each program's run. Zero means run to halt no
	// matter how long that takes.
	MaxSteps int
	Logger   *zap.Logger
}

// Repl reads one program per line and runs each on a fresh machine. The
// machine's console shares the repl's buffered reader, so a program's 'i'
// and ':' opcodes consume the bytes right after its own line.
type Repl struct {
	ReplOpts

	in     *bufio.Reader
	logger *zap.Logger
}

func NewRepl(opts ReplOpts) (*Repl, error) {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Prompt == "" {
		opts.Prompt = defaultPrompt
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}

	r := &Repl{
		ReplOpts: opts,
		in:       bufio.NewReader(opts.Input),
		logger:   opts.Logger.Named("repl"),
	}
	return r, nil
}

// Run loops until the input ends. End of stream is a clean exit; any step
// error from a program aborts the loop and propagates, there is no per-line
// recovery.
func (r *Repl) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := io.WriteString(r.Output, r.Prompt); err != nil {
			return fmt.Errorf("repl prompt: %w", err)
		}

		line, err := r.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("repl read: %w", err)
		}
		atEOF := errors.Is(err, io.EOF)

		program := strings.TrimRight(line, "\r\n")
		if program != "" {
			if err := r.runLine(program); err != nil {
				return err
			}
		}
		if atEOF {
			return nil
		}
	}
}

func (r *Repl) runLine(program string) error {
	r.logger.Debug("loading program",
		zap.Int("len", len(program)))

	m := vm.NewMachine([]byte(program),
		vm.ConsoleOpt(vm.NewStreamConsole(r.in, r.Output)),
		vm.MaxStepsOpt(r.MaxSteps),
		vm.LoggerOpt(r.logger),
	)

	halted, err := m.Run()
	if err != nil {
		return fmt.Errorf("repl: %w", err)
	}

	r.logger.Debug("program finished",
		zap.Int("steps", m.Steps()),
		zap.Bool("halted", halted))
	return nil
}

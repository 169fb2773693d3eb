package bf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/containerd/log"
)

// Interpreter executes a compiled program against a tape of byte cells that
// starts with a single zero cell and grows to the right on demand.
type Interpreter struct {
	Program     *Program
	program_ptr int
	mem         []uint8
	mem_ptr     int
	// positions just before the LoopStart of each loop currently entered
	loops     []int
	input     []byte
	input_ptr int
	// Stdin is read one byte at a time once the pre-seeded input runs out.
	Stdin io.Reader
	// Stdout, when set, receives every character as it is produced.
	Stdout io.Writer
	out    strings.Builder
}

type Option func(*Interpreter)

// WithInput pre-seeds the input buffer. Each character is consumed by one
// Input instruction as its character code truncated to a byte.
func WithInput(input string) Option {
	return func(i *Interpreter) {
		i.input = i.input[:0]
		for _, r := range input {
			i.input = append(i.input, byte(r))
		}
	}
}

// WithStdin sets the reader used after the pre-seeded input is exhausted.
// A nil reader behaves like one that is always at end of stream.
func WithStdin(r io.Reader) Option {
	return func(i *Interpreter) {
		i.Stdin = r
	}
}

// WithOutput streams output characters to w in addition to accumulating them.
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		i.Stdout = w
	}
}

func NewInterpreter(program *Program, opts ...Option) *Interpreter {
	i := &Interpreter{
		Program: program,
		mem:     []uint8{0},
		Stdin:   os.Stdin,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Reset rewinds the program and clears the tape, the loop stack, the input
// cursor and the accumulated output.
func (i *Interpreter) Reset() {
	i.program_ptr = 0
	i.mem = i.mem[:1]
	i.mem[0] = 0
	i.mem_ptr = 0
	i.loops = i.loops[:0]
	i.input_ptr = 0
	i.out.Reset()
}

func (i *Interpreter) MemoryLength() int {
	return len(i.mem)
}

// At returns the value of cell j. Cells past the end of the tape read as 0.
func (i *Interpreter) At(j int) uint8 {
	if j < 0 || j >= len(i.mem) {
		return 0
	}
	return i.mem[j]
}

func (i *Interpreter) Pointer() int {
	return i.mem_ptr
}

func (i *Interpreter) PC() int {
	return i.program_ptr
}

// Depth is the number of loops currently entered.
func (i *Interpreter) Depth() int {
	return len(i.loops)
}

func (i *Interpreter) Done() bool {
	return i.program_ptr >= i.Program.Len()
}

// Output returns everything written by Output instructions so far.
func (i *Interpreter) Output() string {
	return i.out.String()
}

func (i *Interpreter) unbalanced() error {
	return &UnbalancedLoopError{
		Pos:     i.Program.Pos[i.program_ptr],
		Bracket: i.Program.Commands[i.program_ptr],
	}
}

func (i *Interpreter) read(ctx context.Context) uint8 {
	if i.input_ptr < len(i.input) {
		v := i.input[i.input_ptr]
		i.input_ptr++
		return v
	}
	if i.Stdin == nil {
		return 0
	}
	var buff [1]byte
	if _, err := io.ReadFull(i.Stdin, buff[:]); err != nil {
		log.G(ctx).WithError(err).Debug("input exhausted, reading 0")
		return 0
	}
	return buff[0]
}

// Step executes the instruction under the program counter. It does nothing
// once the program is done.
func (i *Interpreter) Step() error {
	return i.step(context.Background())
}

func (i *Interpreter) step(ctx context.Context) error {
	if i.Done() {
		return nil
	}
	switch i.Program.Commands[i.program_ptr] {
	case Increment:
		i.mem[i.mem_ptr]++
	case Decrement:
		i.mem[i.mem_ptr]--
	case Right:
		i.mem_ptr++
		if i.mem_ptr == len(i.mem) {
			i.mem = append(i.mem, 0)
		}
	case Left:
		if i.mem_ptr > 0 {
			i.mem_ptr--
		}
	case Output:
		c := string(rune(i.mem[i.mem_ptr]))
		i.out.WriteString(c)
		if i.Stdout != nil {
			if _, err := io.WriteString(i.Stdout, c); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
	case Input:
		i.mem[i.mem_ptr] = i.read(ctx)
	case LoopStart:
		if i.mem[i.mem_ptr] == 0 {
			end := i.Program.Match[i.program_ptr]
			if end < 0 {
				return i.unbalanced()
			}
			i.program_ptr = end
		} else {
			i.loops = append(i.loops, i.program_ptr-1)
		}
	case LoopEnd:
		if len(i.loops) == 0 {
			return i.unbalanced()
		}
		entry := i.loops[len(i.loops)-1]
		i.loops = i.loops[:len(i.loops)-1]
		if i.mem[i.mem_ptr] != 0 {
			i.program_ptr = entry
		}
	default:
		panic(fmt.Sprintf("unknown command %q", rune(i.Program.Commands[i.program_ptr])))
	}
	i.program_ptr++
	return nil
}

// RunContext runs the program until it finishes, fails or ctx is cancelled,
// and returns the output accumulated so far.
func (i *Interpreter) RunContext(ctx context.Context) (string, error) {
	logger := log.G(ctx).WithField("commands", i.Program.Len())
	logger.Debug("run start")
	trace := logger.Logger.IsLevelEnabled(log.TraceLevel)
	for !i.Done() {
		select {
		case <-ctx.Done():
			logger.WithField("pc", i.program_ptr).Debug("run cancelled")
			return i.out.String(), ctx.Err()
		default:
		}
		if trace {
			logger.WithFields(log.Fields{
				"pc":  i.program_ptr,
				"cmd": i.Program.Commands[i.program_ptr].String(),
				"ptr": i.mem_ptr,
				"val": i.mem[i.mem_ptr],
			}).Trace("step")
		}
		if err := i.step(ctx); err != nil {
			logger.WithError(err).Debug("run failed")
			return i.out.String(), err
		}
	}
	logger.WithField("memory", len(i.mem)).Debug("run done")
	return i.out.String(), nil
}

func (i *Interpreter) Run() (string, error) {
	return i.RunContext(context.Background())
}

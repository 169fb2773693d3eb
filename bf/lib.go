package bf

import (
	"context"
	"fmt"
	"io"
	"os"
)

// overridden in tests
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// RunContext compiles and runs source, reading live input from stdin and
// streaming output to stdout. Either may be nil.
func RunContext(ctx context.Context, source string, stdin io.Reader, stdout io.Writer, opts ...Option) (string, error) {
	opts = append([]Option{WithStdin(stdin), WithOutput(stdout)}, opts...)
	interpreter := NewInterpreter(Compile(source), opts...)
	return interpreter.RunContext(ctx)
}

// Run runs source with a pre-seeded input, streaming output to the process
// stdout, and returns the output. An unbalanced loop terminates the process
// with exit status 1.
func Run(source string, input string) string {
	out, err := RunContext(context.Background(), source, os.Stdin, os.Stdout, WithInput(input))
	if err != nil {
		Fatal(err)
	}
	return out
}

// Fatal reports err on stderr and exits with status 1.
func Fatal(err error) {
	fmt.Fprintf(stderr, "Error: %v\n", err)
	exit(1)
}

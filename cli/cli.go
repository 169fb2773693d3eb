// Package cli implements the brainfuck command line, shared by the
// standalone interpreter binary and the shim binary's "brainfuck" mode.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/MarcinKonowalczyk/bfvm/bf"
	"github.com/containerd/log"
)

// comptime override for debug flag
// set with `-ldflags="-X 'github.com/MarcinKonowalczyk/bfvm/cli.debug=true'"`
var debug string

type Options struct {
	// Source is the program text given inline with -e.
	Source string
	// File is a path to read the program text from.
	File     string
	Input    string
	Debug    bool
	LogLevel string
}

func ParseFlags(name string, args []string, output io.Writer) (*Options, error) {
	opts := &Options{}
	my_flagset := flag.NewFlagSet(name, flag.ContinueOnError)
	my_flagset.SetOutput(output)
	my_flagset.StringVar(&opts.Source, "e", "", "brainfuck program text")
	my_flagset.StringVar(&opts.File, "file", "", "brainfuck source file")
	my_flagset.StringVar(&opts.Input, "input", "", "input consumed before reading stdin")
	my_flagset.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	my_flagset.StringVar(&opts.LogLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	if err := my_flagset.Parse(args); err != nil {
		return nil, err
	}
	if my_flagset.NArg() > 0 {
		return nil, fmt.Errorf("invalid argument: unexpected arguments %v", my_flagset.Args())
	}
	if (opts.Source == "") == (opts.File == "") {
		return nil, fmt.Errorf("invalid argument: exactly one of -e or -file is required")
	}
	if opts.Debug || debug != "" {
		opts.LogLevel = "debug"
	}
	return opts, nil
}

// Program returns the program text, reading it from File if needed.
func (o *Options) Program() (string, error) {
	if o.File == "" {
		return o.Source, nil
	}
	source, err := os.ReadFile(o.File)
	if err != nil {
		return "", fmt.Errorf("reading source: %w", err)
	}
	return string(source), nil
}

func configureLogging(level string, output io.Writer) error {
	if err := log.SetLevel(level); err != nil {
		return fmt.Errorf("invalid argument: %w", err)
	}
	log.L.Logger.SetOutput(output)
	return nil
}

// Run runs the command line and returns the process exit status. Program
// output goes to stdout, diagnostics and logs to stderr.
func Run(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	opts, err := ParseFlags(name, args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if err := configureLogging(opts.LogLevel, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	source, err := opts.Program()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx = log.WithLogger(ctx, log.G(ctx).WithField("program", name))
	_, err = bf.RunContext(ctx, source, stdin, stdout, bf.WithInput(opts.Input))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

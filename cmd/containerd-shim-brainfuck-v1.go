package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MarcinKonowalczyk/bfvm/cli"
	bf_shim "github.com/MarcinKonowalczyk/bfvm/shim"

	"github.com/containerd/containerd/v2/pkg/shim"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// The shim re-executes itself with a "brainfuck" argument to run the
	// container's entrypoint.
	brainfuck, args := isBrainfuckArg(os.Args[1:])
	if !brainfuck {
		shim.Run(ctx, bf_shim.NewManager(bf_shim.RuntimeName))
		cancel()
		return
	}

	code := cli.Run(ctx, "brainfuck", args, os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func isBrainfuckArg(args []string) (bool, []string) {
	for i, arg := range args {
		if arg == "brainfuck" {
			rest := make([]string, 0, len(args)-1)
			rest = append(rest, args[:i]...)
			return true, append(rest, args[i+1:]...)
		}
	}
	return false, args
}

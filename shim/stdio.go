package shim

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"github.com/containerd/fifo"
	"github.com/containerd/log"
	"golang.org/x/sync/errgroup"
)

// stdio connects the init process to the fifos containerd created for the
// task. Output pumps are tracked so that all output is flushed before the
// exit of the process is published.
type stdio struct {
	outputs errgroup.Group
}

func openFifo(ctx context.Context, path string, flag int) (io.ReadWriteCloser, error) {
	ok, err := fifo.IsFifo(path)
	if err != nil {
		return nil, fmt.Errorf("checking whether file %s is a fifo: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("file %s is not a fifo", path)
	}
	f, err := fifo.OpenFifo(ctx, path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("opening fifo %s: %w", path, err)
	}
	return f, nil
}

func (s *stdio) pumpOutput(ctx context.Context, src io.ReadCloser, path string) error {
	dst, err := openFifo(ctx, path, syscall.O_WRONLY)
	if err != nil {
		return err
	}
	s.outputs.Go(func() error {
		defer dst.Close()
		if _, err := io.Copy(dst, src); err != nil {
			log.G(ctx).WithError(err).Errorf("failed to copy output to fifo %s", path)
			return err
		}
		return nil
	})
	return nil
}

// connect wires the fifos to cmd. It must be called before cmd is started.
// An empty stderr path shares the stdout fifo.
func (s *stdio) connect(ctx context.Context, cmd *exec.Cmd, stdin, stdout, stderr string) error {
	if stdout != "" {
		pipe, err := cmd.StdoutPipe()
		if err != nil {
			return fmt.Errorf("getting stdout pipe: %w", err)
		}
		if err := s.pumpOutput(ctx, pipe, stdout); err != nil {
			return err
		}
	}

	if stderr == "" {
		stderr = stdout
	}
	if stderr != "" {
		pipe, err := cmd.StderrPipe()
		if err != nil {
			return fmt.Errorf("getting stderr pipe: %w", err)
		}
		if err := s.pumpOutput(ctx, pipe, stderr); err != nil {
			return err
		}
	}

	if stdin != "" {
		src, err := openFifo(ctx, stdin, syscall.O_RDONLY)
		if err != nil {
			return err
		}
		pipe, err := cmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("getting stdin pipe: %w", err)
		}
		// stdin stays open until containerd closes the fifo, so it is not
		// waited for
		go func() {
			defer pipe.Close()
			defer src.Close()
			if _, err := io.Copy(pipe, src); err != nil {
				log.G(ctx).WithError(err).Debugf("stopped copying fifo %s to stdin", stdin)
			}
		}()
	}
	return nil
}

// wait blocks until the output pumps reach end of stream.
func (s *stdio) wait() error {
	return s.outputs.Wait()
}

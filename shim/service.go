package shim

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	taskAPI "github.com/containerd/containerd/api/runtime/task/v2"
	tasktypes "github.com/containerd/containerd/api/types/task"
	"github.com/containerd/containerd/protobuf"
	ptypes "github.com/containerd/containerd/v2/pkg/protobuf/types"
	"github.com/containerd/containerd/v2/pkg/shim"
	"github.com/containerd/containerd/v2/pkg/shutdown"
	"github.com/containerd/containerd/v2/plugins"
	"github.com/containerd/errdefs"
	"github.com/containerd/log"
	"github.com/containerd/plugin"
	"github.com/containerd/plugin/registry"
	"github.com/containerd/ttrpc"
	"golang.org/x/sys/unix"
	"google.golang.org/protobuf/types/known/anypb"
)

func init() {
	registry.Register(&plugin.Registration{
		Type: plugins.TTRPCPlugin,
		ID:   "task",
		Requires: []plugin.Type{
			plugins.InternalPlugin,
		},
		InitFn: func(ic *plugin.InitContext) (interface{}, error) {
			ss, err := ic.GetByID(plugins.InternalPlugin, "shutdown")
			if err != nil {
				return nil, err
			}
			return newTaskService(ic.Context, ss.(shutdown.Service))
		},
	})
}

// The init process is started through this script so that it stops itself
// before exec'ing the interpreter. Start resumes it.
const start_stopped_script = `
#!/bin/sh
kill -STOP $$
exec "$@"
`

const command_wait_delay = 100 * time.Millisecond

type bfTaskService struct {
	mu       sync.RWMutex
	procs    map[string]*proc
	shutdown shutdown.Service
}

func newTaskService(ctx context.Context, sd shutdown.Service) (taskAPI.TaskService, error) {
	return &bfTaskService{
		procs:    make(map[string]*proc, 1),
		shutdown: sd,
	}, nil
}

var _ = shim.TTRPCService(&bfTaskService{})

// RegisterTTRPC allows TTRPC services to be registered with the underlying server
func (s *bfTaskService) RegisterTTRPC(server *ttrpc.Server) error {
	taskAPI.RegisterTaskService(server, s)
	return nil
}

func (s *bfTaskService) get(id string) (*proc, error) {
	p, ok := s.procs[id]
	if !ok {
		return nil, fmt.Errorf("task %s not created: %w", id, errdefs.ErrNotFound)
	}
	return p, nil
}

func (s *bfTaskService) doneContext(id string) (context.Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return p.done, nil
}

// finalize waits for the init process and its output, records the exit
// status and shuts the shim down once every task has exited.
func (s *bfTaskService) finalize(ctx context.Context, id string, cmd *exec.Cmd, pipes *stdio, markDone func()) {
	pid := cmd.Process.Pid
	if err := pipes.wait(); err != nil {
		log.G(ctx).WithError(err).Warnf("output of init process %d was not fully copied", pid)
	}
	if err := cmd.Wait(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			log.G(ctx).WithError(err).Errorf("failed to wait for init process %d", pid)
		}
	}

	exitStatus := 255
	if cmd.ProcessState != nil {
		switch status := cmd.ProcessState.Sys().(syscall.WaitStatus); {
		case cmd.ProcessState.Exited():
			exitStatus = cmd.ProcessState.ExitCode()
		case status.Signaled():
			exitStatus = exitCodeSignal + int(status.Signal())
		}
	} else {
		log.G(ctx).Warn("init process wait returned without setting process state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.procs[id]
	if !ok {
		log.G(ctx).Errorf("failed to write final status of init process %d: task was removed", pid)
		markDone()
		return
	}
	p.exitStatus = exitStatus
	p.exitTime = time.Now()
	markDone()
	log.G(ctx).Debugf("init process exited: %s", p)

	for _, other := range s.procs {
		if !other.exited() {
			return
		}
	}
	log.G(ctx).Debug("all procs exited. shutting down the shim")
	s.shutdown.Shutdown()
}

// Create a new container
func (s *bfTaskService) Create(ctx context.Context, r *taskAPI.CreateTaskRequest) (_ *taskAPI.CreateTaskResponse, retErr error) {
	log.G(ctx).WithField("id", r.ID).Debug("create (service)")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.procs[r.ID]; ok {
		return nil, errdefs.ErrAlreadyExists
	}

	config, err := ReadConfig(r.Bundle)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	script := filepath.Join(r.Bundle, "start-stopped.sh")
	if err := os.WriteFile(script, []byte(start_stopped_script), 0755); err != nil {
		return nil, fmt.Errorf("writing start-stopped.sh: %w", err)
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("getting executable of current process: %w", err)
	}

	// The request context ends with the call, the init process must not.
	cmd := exec.Command("/bin/sh", append([]string{script, self}, config.Args()...)...)
	cmd.Dir = config.Root
	cmd.WaitDelay = command_wait_delay

	pipes := &stdio{}
	if err := pipes.connect(ctx, cmd, r.Stdin, r.Stdout, r.Stderr); err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("running init command: %w", err)
	}
	pid := cmd.Process.Pid

	pidFile := filepath.Join(r.Bundle, initPidFile)
	if err := writePidFile(pidFile, pid); err != nil {
		log.G(ctx).WithError(err).Warn("containerd will not be able to stop the init process")
	}

	done, markDone := context.WithCancel(context.Background())
	s.procs[r.ID] = &proc{
		pid:        pid,
		done:       done,
		entrypoint: config.Entrypoint,
		stdout:     r.Stdout,
		stdin:      r.Stdin,
	}
	go s.finalize(log.WithLogger(context.Background(), log.G(ctx)), r.ID, cmd, pipes, markDone)

	return &taskAPI.CreateTaskResponse{
		Pid: uint32(pid),
	}, nil
}

// Start the primary user process inside the container
func (s *bfTaskService) Start(ctx context.Context, r *taskAPI.StartRequest) (*taskAPI.StartResponse, error) {
	log.G(ctx).WithField("id", r.ID).Debug("start (service)")

	s.mu.RLock()
	defer s.mu.RUnlock()
	p, err := s.get(r.ID)
	if err != nil {
		return nil, err
	}

	if err := unix.Kill(p.pid, unix.SIGCONT); err != nil {
		return nil, fmt.Errorf("resuming init process %d: %w", p.pid, err)
	}

	return &taskAPI.StartResponse{
		Pid: uint32(p.pid),
	}, nil
}

// Delete a process or container
func (s *bfTaskService) Delete(ctx context.Context, r *taskAPI.DeleteRequest) (*taskAPI.DeleteResponse, error) {
	log.G(ctx).WithField("id", r.ID).Debug("delete (service)")

	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.get(r.ID)
	if err != nil {
		return nil, err
	}
	if !p.exited() {
		return nil, errdefs.ErrFailedPrecondition.WithMessage(fmt.Sprintf("init process %d is not done yet", p.pid))
	}
	delete(s.procs, r.ID)

	return &taskAPI.DeleteResponse{
		Pid:        uint32(p.pid),
		ExitStatus: uint32(p.exitStatus),
		ExitedAt:   protobuf.ToTimestamp(p.exitTime),
	}, nil
}

// Exec an additional process inside the container
func (s *bfTaskService) Exec(ctx context.Context, r *taskAPI.ExecProcessRequest) (*ptypes.Empty, error) {
	return nil, errdefs.ErrNotImplemented.WithMessage("Exec (task)")
}

// ResizePty of a process
func (s *bfTaskService) ResizePty(ctx context.Context, r *taskAPI.ResizePtyRequest) (*ptypes.Empty, error) {
	return &ptypes.Empty{}, nil
}

// State returns runtime state of a process
func (s *bfTaskService) State(ctx context.Context, r *taskAPI.StateRequest) (*taskAPI.StateResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, err := s.get(r.ID)
	if err != nil {
		return nil, err
	}

	status := tasktypes.Status_RUNNING
	if p.exited() {
		status = tasktypes.Status_STOPPED
	}

	return &taskAPI.StateResponse{
		ID:         r.ID,
		Pid:        uint32(p.pid),
		Status:     status,
		Stdout:     p.stdout,
		Stdin:      p.stdin,
		ExitStatus: uint32(p.exitStatus),
		ExitedAt:   protobuf.ToTimestamp(p.exitTime),
	}, nil
}

// Pause the container
func (s *bfTaskService) Pause(ctx context.Context, r *taskAPI.PauseRequest) (*ptypes.Empty, error) {
	return nil, errdefs.ErrNotImplemented.WithMessage("Pause (task)")
}

// Resume the container
func (s *bfTaskService) Resume(ctx context.Context, r *taskAPI.ResumeRequest) (*ptypes.Empty, error) {
	return nil, errdefs.ErrNotImplemented.WithMessage("Resume (task)")
}

// Kill sends the requested signal (SIGKILL if none) to the init process and
// waits for it to exit.
func (s *bfTaskService) Kill(ctx context.Context, r *taskAPI.KillRequest) (*ptypes.Empty, error) {
	log.G(ctx).WithField("id", r.ID).Debugf("kill (service) sig:%d", r.Signal)

	sig := unix.SIGKILL
	if r.Signal != 0 {
		sig = unix.Signal(r.Signal)
	}

	done, err := func() (context.Context, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		p, err := s.get(r.ID)
		if err != nil {
			return nil, err
		}
		if p.exited() {
			log.G(ctx).Warnf("task already exited: %s", r.ID)
			return p.done, nil
		}
		if p.pid > 0 && alive(p.pid) {
			if err := unix.Kill(p.pid, sig); err != nil {
				return nil, fmt.Errorf("sending %s to init process: %w", sig, err)
			}
			// a stopped process only handles the signal once continued
			if sig != unix.SIGKILL {
				_ = unix.Kill(p.pid, unix.SIGCONT)
			}
		}
		return p.done, nil
	}()
	if err != nil {
		log.G(ctx).WithError(err).Errorf("failed to kill init process %s", r.ID)
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done.Done():
	}
	return &ptypes.Empty{}, nil
}

// Pids returns all pids inside the container
func (s *bfTaskService) Pids(ctx context.Context, r *taskAPI.PidsRequest) (*taskAPI.PidsResponse, error) {
	return nil, errdefs.ErrNotImplemented.WithMessage("Pids (task)")
}

// CloseIO of a process
func (s *bfTaskService) CloseIO(ctx context.Context, r *taskAPI.CloseIORequest) (*ptypes.Empty, error) {
	return nil, errdefs.ErrNotImplemented.WithMessage("CloseIO (task)")
}

// Checkpoint the container
func (s *bfTaskService) Checkpoint(ctx context.Context, r *taskAPI.CheckpointTaskRequest) (*ptypes.Empty, error) {
	return nil, errdefs.ErrNotImplemented.WithMessage("Checkpoint (task)")
}

// Connect returns shim information of the underlying service
func (s *bfTaskService) Connect(ctx context.Context, r *taskAPI.ConnectRequest) (*taskAPI.ConnectResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, err := s.get(r.ID)
	if err != nil {
		return nil, err
	}
	return &taskAPI.ConnectResponse{
		ShimPid: uint32(os.Getpid()),
		TaskPid: uint32(p.pid),
		Version: version,
	}, nil
}

// Shutdown is called after the underlying resources of the shim are cleaned up and the service can be stopped
func (s *bfTaskService) Shutdown(ctx context.Context, r *taskAPI.ShutdownRequest) (*ptypes.Empty, error) {
	log.G(ctx).Debug("shutdown (service)")
	s.shutdown.Shutdown()
	return &ptypes.Empty{}, nil
}

// Stats returns container level system stats for a container and its processes
func (s *bfTaskService) Stats(ctx context.Context, r *taskAPI.StatsRequest) (*taskAPI.StatsResponse, error) {
	return &taskAPI.StatsResponse{
		Stats: &anypb.Any{},
	}, nil
}

// Update the live container
func (s *bfTaskService) Update(ctx context.Context, r *taskAPI.UpdateTaskRequest) (*ptypes.Empty, error) {
	return nil, errdefs.ErrAborted.WithMessage("Update (task)")
}

// Wait for a process to exit
func (s *bfTaskService) Wait(ctx context.Context, r *taskAPI.WaitRequest) (*taskAPI.WaitResponse, error) {
	done, err := s.doneContext(r.ID)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done.Done():
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	p, err := s.get(r.ID)
	if err != nil {
		return nil, err
	}
	return &taskAPI.WaitResponse{
		ExitStatus: uint32(p.exitStatus),
		ExitedAt:   protobuf.ToTimestamp(p.exitTime),
	}, nil
}

package shim

import (
	"context"
	"fmt"
	"time"
)

// proc is the init process of a task: the shim binary running as a
// brainfuck interpreter.
type proc struct {
	pid int

	// cancelled once the process has exited and its status is recorded
	done       context.Context
	exitTime   time.Time
	exitStatus int

	entrypoint string
	stdout     string
	stdin      string
}

func (p *proc) exited() bool {
	return p.done.Err() != nil
}

func (p *proc) String() string {
	if p.exited() {
		return fmt.Sprintf("%s pid:%d, exitTime:%s, exitStatus:%d", p.entrypoint, p.pid, p.exitTime.Format(time.RFC3339), p.exitStatus)
	}
	return fmt.Sprintf("%s pid:%d running", p.entrypoint, p.pid)
}

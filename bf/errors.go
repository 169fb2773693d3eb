package bf

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// UnbalancedLoopError is returned when execution reaches a loop bracket
// without a partner: a LoopStart whose body has to be skipped but never
// closes, or a LoopEnd with no open loop.
type UnbalancedLoopError struct {
	// Pos is the 1-based character index of the bracket in the source.
	Pos     int
	Bracket Command
}

func (e *UnbalancedLoopError) Error() string {
	return fmt.Sprintf("char %d, loops `[]` must come in groups of 2 (unmatched `%s`)", e.Pos, e.Bracket)
}

func (e *UnbalancedLoopError) Unwrap() error {
	return errdefs.ErrInvalidArgument
}

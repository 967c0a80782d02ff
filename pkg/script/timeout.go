package script

import (
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout is the limit for a single evaluation when Options leaves
// it unset.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation exceeds the engine timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned when a newer evaluation started first.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult passes evaluation output through the result channel.
type evalResult struct {
	result *Result
	errors []EvalError
	err    error
}

// wait returns the result from ch, or ErrTimeout once the engine timeout
// elapses. A result whose generation is no longer current is discarded.
//
// On timeout the goroutine may still be running. zygomys cannot be
// interrupted between instructions, so Evaluate cancels the session and
// the script stops at its next builtin call; a loop that calls no builtin
// runs until it ends on its own. The generation check discards any result
// it eventually produces.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*Result, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()

		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.result, res.errors, res.err

	case <-timer.C:
		return nil, nil, errors.Wrapf(ErrTimeout, "after %s", e.timeout)
	}
}

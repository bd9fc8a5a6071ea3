package wake

import (
	"errors"
	"fmt"

	"github.com/bnema/displaywake/internal/display"
)

// Outcome is the result of waking one target
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeDeviceCreateFailed
	OutcomeStateAcquireFailed
	OutcomeConnectFailed
	OutcomeModeQueryFailed
	OutcomeNoModesFound
	OutcomeApplyPropertiesFailed
	OutcomeStateApplyFailed
	// OutcomeUnexpected covers a panic raised while waking a target
	OutcomeUnexpected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDeviceCreateFailed:
		return "device create failed"
	case OutcomeStateAcquireFailed:
		return "state acquire failed"
	case OutcomeConnectFailed:
		return "connect failed"
	case OutcomeModeQueryFailed:
		return "mode query failed"
	case OutcomeNoModesFound:
		return "no modes found"
	case OutcomeApplyPropertiesFailed:
		return "apply properties failed"
	case OutcomeStateApplyFailed:
		return "state apply failed"
	case OutcomeUnexpected:
		return "unexpected failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ErrNoModes is the cause recorded for OutcomeNoModesFound
var ErrNoModes = errors.New("display reported no modes")

// StageError is the error of a failed stage
type StageError struct {
	Outcome Outcome
	Target  display.Target
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Target.Name, e.Outcome, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result is what happened to one target
type Result struct {
	Target  display.Target
	Outcome Outcome
	// Mode is the selected mode, set once selection ran
	Mode display.ModeInfo
	Err  error

	release []func() error
}

// OK reports whether the target was woken
func (r *Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Release frees the state and device a successful wake keeps open.
// Safe to call more than once.
func (r *Result) Release() error {
	var errs []error
	for i := len(r.release) - 1; i >= 0; i-- {
		if err := r.release[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.release = nil
	return errors.Join(errs...)
}

// Report collects the results of one pass over the targets
type Report struct {
	Results []*Result
	// Skipped counts targets whose usage kind did not match
	Skipped int
}

// Succeeded returns the number of woken targets
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of targets that could not be woken
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded()
}

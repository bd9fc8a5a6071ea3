package wake

import (
	"context"

	"github.com/bnema/displaywake/internal/display"
	"github.com/bnema/displaywake/internal/modeselect"
)

// Inspection is what waking a target would do, gathered without committing
type Inspection struct {
	Target   display.Target
	Modes    []display.ModeInfo
	Selected *display.ModeInfo
	Err      error
}

// Inspect connects target and lists its candidate modes and the one that
// would be selected. Nothing is applied and everything is released before
// returning.
func (o *Orchestrator) Inspect(ctx context.Context, target display.Target, preferredOnly bool) Inspection {
	ins := Inspection{Target: target}

	dev, err := boundedRelease(ctx, o.opts.CallTimeout, func(ctx context.Context) (display.Device, error) {
		return o.platform.CreateDevice(ctx, target.Adapter)
	}, closeDevice)
	if err != nil {
		ins.Err = &StageError{Outcome: OutcomeDeviceCreateFailed, Target: target, Err: err}
		return ins
	}
	defer dev.Close()

	state, err := boundedRelease(ctx, o.opts.CallTimeout, func(ctx context.Context) (display.State, error) {
		return dev.AcquireState(ctx, target)
	}, releaseState)
	if err != nil {
		ins.Err = &StageError{Outcome: OutcomeStateAcquireFailed, Target: target, Err: err}
		return ins
	}
	defer state.Release()

	path, err := bounded(ctx, o.opts.CallTimeout, func(ctx context.Context) (display.Path, error) {
		return state.ConnectTarget(ctx, target)
	})
	if err != nil {
		ins.Err = &StageError{Outcome: OutcomeConnectFailed, Target: target, Err: err}
		return ins
	}

	query := display.QueryNone
	if preferredOnly {
		query = display.QueryOnlyPreferredResolution
	}
	modes, err := bounded(ctx, o.opts.CallTimeout, func(ctx context.Context) ([]display.ModeInfo, error) {
		return path.FindModes(ctx, query)
	})
	if err != nil {
		ins.Err = &StageError{Outcome: OutcomeModeQueryFailed, Target: target, Err: err}
		return ins
	}
	ins.Modes = modes

	mode, err := modeselect.SelectBestMode(modes)
	if err != nil {
		ins.Err = &StageError{Outcome: OutcomeNoModesFound, Target: target, Err: ErrNoModes}
		return ins
	}
	ins.Selected = &mode
	return ins
}

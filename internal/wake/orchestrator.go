// Package wake drives special-purpose displays into an active mode: the
// orchestrator runs the connect, query, select and apply sequence for one
// target, the runner walks every matching target and then holds the woken
// sessions open.
package wake

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/displaywake/internal/display"
	"github.com/bnema/displaywake/internal/logger"
	"github.com/bnema/displaywake/internal/modeselect"
	"github.com/charmbracelet/log"
)

// Options tunes the orchestrator
type Options struct {
	// CallTimeout bounds each platform call; zero disables the bound
	CallTimeout time.Duration
}

// Orchestrator wakes one target at a time on a platform
type Orchestrator struct {
	platform display.Platform
	opts     Options
	log      *log.Logger
}

// NewOrchestrator creates an orchestrator for platform
func NewOrchestrator(platform display.Platform, opts Options) *Orchestrator {
	return &Orchestrator{
		platform: platform,
		opts:     opts,
		log:      logger.With("component", "wake"),
	}
}

// WakeTarget connects target, selects its least demanding mode and commits it.
// Every failure is returned in the Result and logged once; nothing is retried.
// On success the state and device stay open until Result.Release.
func (o *Orchestrator) WakeTarget(ctx context.Context, target display.Target, preferredOnly bool) *Result {
	l := o.log.With("target", target.Name, "backend", o.platform.Name())
	res := &Result{Target: target}

	dev, err := boundedRelease(ctx, o.opts.CallTimeout, func(ctx context.Context) (display.Device, error) {
		return o.platform.CreateDevice(ctx, target.Adapter)
	}, closeDevice)
	if err != nil {
		return o.fail(l, res, OutcomeDeviceCreateFailed, "Failed to create display device", err)
	}
	res.release = append(res.release, dev.Close)

	state, err := boundedRelease(ctx, o.opts.CallTimeout, func(ctx context.Context) (display.State, error) {
		return dev.AcquireState(ctx, target)
	}, releaseState)
	if err != nil {
		return o.fail(l, res, OutcomeStateAcquireFailed, "Failed to create empty state", err)
	}
	res.release = append(res.release, state.Release)

	path, err := bounded(ctx, o.opts.CallTimeout, func(ctx context.Context) (display.Path, error) {
		return state.ConnectTarget(ctx, target)
	})
	if err != nil {
		return o.fail(l, res, OutcomeConnectFailed, "Failed to connect display target", err)
	}

	query := display.QueryNone
	if preferredOnly {
		query = display.QueryOnlyPreferredResolution
	}
	modes, err := bounded(ctx, o.opts.CallTimeout, func(ctx context.Context) ([]display.ModeInfo, error) {
		return path.FindModes(ctx, query)
	})
	if err != nil {
		return o.fail(l, res, OutcomeModeQueryFailed, "Failed to query display modes", err)
	}
	if len(modes) == 0 {
		return o.fail(l, res, OutcomeNoModesFound, "Failed to find any modes for display", fmt.Errorf("%w (query %s)", ErrNoModes, query))
	}

	mode, err := modeselect.SelectBestMode(modes)
	if err != nil {
		return o.fail(l, res, OutcomeNoModesFound, "Failed to select a display mode", err)
	}
	res.Mode = mode
	l.Debug("Selected mode", "mode", mode, "rate", mode.RefreshRate, "candidates", len(modes))

	if _, err := bounded(ctx, o.opts.CallTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, path.ApplyPropertiesFromMode(ctx, mode)
	}); err != nil {
		return o.fail(l, res, OutcomeApplyPropertiesFailed, "Failed to apply properties from display mode", err)
	}

	if _, err := bounded(ctx, o.opts.CallTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, state.TryApply(ctx)
	}); err != nil {
		return o.fail(l, res, OutcomeStateApplyFailed, "Failed to apply display state", err)
	}

	res.Outcome = OutcomeSuccess
	l.Info("Display woken", "mode", mode)
	return res
}

func (o *Orchestrator) fail(l *log.Logger, res *Result, outcome Outcome, msg string, err error) *Result {
	res.Outcome = outcome
	res.Err = &StageError{Outcome: outcome, Target: res.Target, Err: err}
	l.Error(msg, "err", err)

	if relErr := res.Release(); relErr != nil {
		l.Warn("Failed to release display state", "err", relErr)
	}
	return res
}

// bounded runs fn under timeout. A call that ignores its context is abandoned
// once the deadline passes and its late result is dropped. A panic in fn is
// raised again on the calling goroutine.
func bounded[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	return boundedRelease(ctx, timeout, fn, nil)
}

// boundedRelease is bounded for calls that hand out a resource. When the call
// is abandoned, a value it still delivers successfully is passed to release.
func boundedRelease[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error), release func(T) error) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
		panic interface{}
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{panic: p}
			}
		}()
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.panic != nil {
			panic(r.panic)
		}
		return r.value, r.err
	case <-ctx.Done():
		if release != nil {
			go func() {
				r := <-done
				if r.panic != nil || r.err != nil {
					return
				}
				if err := release(r.value); err != nil {
					logger.Warn("Failed to release abandoned display resource", "err", err)
				}
			}()
		}
		var zero T
		return zero, fmt.Errorf("platform call abandoned after %s: %w", timeout, ctx.Err())
	}
}

func closeDevice(dev display.Device) error {
	if dev == nil {
		return nil
	}
	return dev.Close()
}

func releaseState(state display.State) error {
	if state == nil {
		return nil
	}
	return state.Release()
}

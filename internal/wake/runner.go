package wake

import (
	"context"
	"fmt"

	"github.com/bnema/displaywake/internal/display"
	"github.com/bnema/displaywake/internal/logger"
	"github.com/charmbracelet/log"
)

// Waker wakes a single target
type Waker interface {
	WakeTarget(ctx context.Context, target display.Target, preferredOnly bool) *Result
}

// RunOptions controls a Runner
type RunOptions struct {
	// Filter selects the targets to wake
	Filter        display.UsageKind
	PreferredOnly bool
	// ExitAfterWake skips the hold phase
	ExitAfterWake bool
}

// DefaultRunOptions wakes special-purpose targets at their preferred resolution
var DefaultRunOptions = RunOptions{
	Filter:        display.UsageSpecialPurpose,
	PreferredOnly: true,
}

// Runner walks the platform's targets and keeps the woken ones alive
type Runner struct {
	platform display.Platform
	waker    Waker
	opts     RunOptions
	held     []*Result
	log      *log.Logger
}

// NewRunner creates a runner
func NewRunner(platform display.Platform, waker Waker, opts RunOptions) *Runner {
	return &Runner{
		platform: platform,
		waker:    waker,
		opts:     opts,
		log:      logger.With("component", "runner"),
	}
}

// Run wakes every matching target, then blocks until ctx is done.
// Per-target failures never stop the run.
func (r *Runner) Run(ctx context.Context) error {
	report, err := r.WakeAll(ctx)
	if err != nil {
		r.log.Error("Target enumeration failed", "err", err)
	} else if len(report.Results) == 0 {
		r.log.Warn("No display targets matched", "usage", r.opts.Filter, "skipped", report.Skipped)
	}

	if r.opts.ExitAfterWake {
		r.ReleaseAll()
		return nil
	}
	return r.Hold(ctx)
}

// WakeAll wakes every target whose usage kind matches the filter, in
// enumeration order. The error is only set when enumeration itself fails.
func (r *Runner) WakeAll(ctx context.Context) (*Report, error) {
	report := &Report{}

	targets, err := r.platform.CurrentTargets(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to enumerate display targets: %w", err)
	}
	r.log.Debugf("Found %d display target(s)", len(targets))

	for _, target := range targets {
		if target.UsageKind != r.opts.Filter {
			r.log.Debug("Skipping target", "target", target.Name, "usage", target.UsageKind)
			report.Skipped++
			continue
		}

		res := r.wakeOne(ctx, target)
		report.Results = append(report.Results, res)
		if res.OK() {
			r.held = append(r.held, res)
			continue
		}
		r.log.Warn("Failed to wake display", "target", target.Name, "outcome", res.Outcome)
	}

	r.log.Info("Wake pass finished", "woken", report.Succeeded(), "failed", report.Failed(), "skipped", report.Skipped)
	return report, nil
}

func (r *Runner) wakeOne(ctx context.Context, target display.Target) (res *Result) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			r.log.Error("Failed to wake display", "target", target.Name, "err", err)
			res = &Result{
				Target:  target,
				Outcome: OutcomeUnexpected,
				Err:     &StageError{Outcome: OutcomeUnexpected, Target: target, Err: err},
			}
		}
	}()

	res = r.waker.WakeTarget(ctx, target, r.opts.PreferredOnly)
	if res == nil {
		err := fmt.Errorf("no result")
		res = &Result{
			Target:  target,
			Outcome: OutcomeUnexpected,
			Err:     &StageError{Outcome: OutcomeUnexpected, Target: target, Err: err},
		}
	}
	return res
}

// Held returns the results whose sessions are still open
func (r *Runner) Held() []*Result {
	return r.held
}

// Hold blocks until ctx is done and then releases every woken session.
// The process stays alive as long as Hold does.
func (r *Runner) Hold(ctx context.Context) error {
	r.log.Info("Holding display sessions open", "sessions", len(r.held))
	<-ctx.Done()
	r.log.Info("Hold ended, releasing display sessions", "reason", context.Cause(ctx))
	r.ReleaseAll()
	return nil
}

// ReleaseAll releases held sessions in reverse order of acquisition
func (r *Runner) ReleaseAll() {
	for i := len(r.held) - 1; i >= 0; i-- {
		res := r.held[i]
		if err := res.Release(); err != nil {
			r.log.Warn("Failed to release display session", "target", res.Target.Name, "err", err)
		}
	}
	r.held = nil
}

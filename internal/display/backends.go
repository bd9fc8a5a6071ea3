package display

import (
	"fmt"

	"github.com/bnema/displaywake/internal/logger"
)

// Backend names understood by New
const (
	BackendAuto     = "auto"
	BackendX11      = "x11"
	BackendWlrRandr = "wlr-randr"
)

// Options selects and configures a display backend
type Options struct {
	// Backend is one of BackendAuto, BackendX11 or BackendWlrRandr
	Backend string
	// X11Display is the X display name, empty means $DISPLAY
	X11Display string
	// SpecialOutputs are glob patterns of output names to treat as special-purpose
	SpecialOutputs []string
}

type backendFactory struct {
	name   string
	create func(opts Options) (Platform, error)
}

var backendFactories = []backendFactory{
	{name: BackendX11, create: func(opts Options) (Platform, error) { return newX11Backend(opts.X11Display) }},
	{name: BackendWlrRandr, create: func(opts Options) (Platform, error) { return newWlrRandrBackend() }},
}

// New opens the first backend that works, or the one named by opts.Backend
func New(opts Options) (Platform, error) {
	return openBackend(opts, backendFactories)
}

func openBackend(opts Options, factories []backendFactory) (Platform, error) {
	logger.Debug("display.New: starting backend selection")

	var errs []error
	for i, f := range factories {
		if opts.Backend != "" && opts.Backend != BackendAuto && opts.Backend != f.name {
			continue
		}

		logger.Debugf("display.New: trying backend %d: %s", i, f.name)
		platform, err := f.create(opts)
		if err != nil {
			logger.Debugf("display.New: backend %s failed: %v", f.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))
			continue
		}

		logger.Debugf("display.New: using backend %s", f.name)
		if len(opts.SpecialOutputs) > 0 {
			platform = Classify(platform, opts.SpecialOutputs)
		}
		return platform, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: unknown backend %q", ErrNoBackend, opts.Backend)
	}
	return nil, fmt.Errorf("%w: %v", ErrNoBackend, errs)
}

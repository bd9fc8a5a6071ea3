package display

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/bnema/displaywake/internal/logger"
	"github.com/bnema/displaywake/internal/rational"
)

// wlrRandrAdapter is the adapter name of every wlr-randr target, the
// compositor being the only device behind it
const wlrRandrAdapter = "wayland"

// commandRunner runs wlr-randr with args and returns its combined output
type commandRunner func(ctx context.Context, args ...string) ([]byte, error)

// wlrRandrBackend uses the wlr-randr command to list and configure outputs
type wlrRandrBackend struct {
	run commandRunner

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newWlrRandrBackend() (Platform, error) {
	if _, err := exec.LookPath("wlr-randr"); err != nil {
		return nil, fmt.Errorf("wlr-randr not found. Please install wlr-randr: https://gitlab.freedesktop.org/emersion/wlr-randr")
	}
	if os.Getenv("WAYLAND_DISPLAY") == "" && os.Getenv("SUDO_USER") == "" {
		return nil, fmt.Errorf("WAYLAND_DISPLAY is not set")
	}
	return newWlrRandrBackendWithRunner(execWlrRandr), nil
}

func newWlrRandrBackendWithRunner(run commandRunner) *wlrRandrBackend {
	return &wlrRandrBackend{run: run, locks: make(map[string]*sync.Mutex)}
}

func execWlrRandr(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "wlr-randr", args...)
	if env := sudoWaylandEnv(); env != nil {
		cmd.Env = env
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			logger.Errorf("wlr-randr %s error: %s", strings.Join(args, " "), string(output))
		}
		return nil, fmt.Errorf("failed to run wlr-randr: %w", err)
	}
	return output, nil
}

// wlrOutput is one entry of `wlr-randr --json`
type wlrOutput struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	Enabled     bool      `json:"enabled"`
	Modes       []wlrMode `json:"modes"`
}

type wlrMode struct {
	Width     uint32  `json:"width"`
	Height    uint32  `json:"height"`
	Refresh   float64 `json:"refresh"`
	Preferred bool    `json:"preferred"`
	Current   bool    `json:"current"`
}

func (w *wlrRandrBackend) Name() string {
	return "wlr-randr"
}

func (w *wlrRandrBackend) outputs(ctx context.Context) ([]wlrOutput, error) {
	output, err := w.run(ctx, "--json")
	if err != nil {
		return nil, err
	}
	logger.Debugf("wlr-randr --json output: %s", string(output))
	return parseWlrOutputs(output)
}

func parseWlrOutputs(data []byte) ([]wlrOutput, error) {
	var outputs []wlrOutput
	if err := json.Unmarshal(data, &outputs); err != nil {
		return nil, fmt.Errorf("failed to parse wlr-randr output: %w", err)
	}
	return outputs, nil
}

func (w *wlrRandrBackend) CurrentTargets(ctx context.Context) ([]Target, error) {
	outputs, err := w.outputs(ctx)
	if err != nil {
		return nil, err
	}

	targets := make([]Target, 0, len(outputs))
	for _, o := range outputs {
		targets = append(targets, Target{
			ID:        o.Name,
			Name:      o.Name,
			Adapter:   wlrRandrAdapter,
			UsageKind: UsageStandard,
			Connected: true,
		})
	}
	return targets, nil
}

func (w *wlrRandrBackend) CreateDevice(ctx context.Context, adapter string) (Device, error) {
	if adapter != wlrRandrAdapter {
		return nil, fmt.Errorf("adapter %q is not served by wlr-randr", adapter)
	}
	return &wlrDevice{w: w}, nil
}

func (w *wlrRandrBackend) Close() error {
	return nil
}

func (w *wlrRandrBackend) lockFor(name string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.locks[name]
	if !ok {
		l = &sync.Mutex{}
		w.locks[name] = l
	}
	return l
}

type wlrDevice struct {
	w *wlrRandrBackend
}

func (d *wlrDevice) AcquireState(ctx context.Context, target Target) (State, error) {
	lock := d.w.lockFor(target.ID)
	if !lock.TryLock() {
		return nil, ErrStateBusy
	}
	return &wlrState{w: d.w, lock: lock}, nil
}

func (d *wlrDevice) Close() error {
	return nil
}

// wlrState collects the arguments of one wlr-randr invocation. mu guards
// the staged arguments and is not held while wlr-randr runs.
type wlrState struct {
	w    *wlrRandrBackend
	lock *sync.Mutex

	mu       sync.Mutex
	output   string
	mode     string
	released bool
}

func (s *wlrState) ConnectTarget(ctx context.Context, target Target) (Path, error) {
	outputs, err := s.w.outputs(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range outputs {
		if o.Name != target.ID {
			continue
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.released {
			return nil, ErrStateReleased
		}
		s.output = o.Name
		return &wlrPath{s: s, modes: wlrModes(o)}, nil
	}
	return nil, fmt.Errorf("output %s: %w", target.ID, ErrTargetNotFound)
}

func (s *wlrState) TryApply(ctx context.Context) error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return ErrStateReleased
	}
	if s.output == "" || s.mode == "" {
		s.mu.Unlock()
		return fmt.Errorf("nothing staged to apply")
	}
	args := s.applyArgs()
	s.mu.Unlock()

	_, err := s.w.run(ctx, args...)
	return err
}

func (s *wlrState) applyArgs() []string {
	return []string{"--output", s.output, "--on", "--mode", s.mode}
}

// Release is idempotent. The backend lock is handed back exactly once.
func (s *wlrState) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true
	s.lock.Unlock()
	return nil
}

type wlrPath struct {
	s     *wlrState
	modes []ModeInfo
}

func (p *wlrPath) FindModes(ctx context.Context, opts QueryOptions) ([]ModeInfo, error) {
	modes := append([]ModeInfo(nil), p.modes...)
	if opts == QueryOnlyPreferredResolution {
		modes = filterPreferredResolution(modes)
	}
	return modes, nil
}

func (p *wlrPath) ApplyPropertiesFromMode(ctx context.Context, mode ModeInfo) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if p.s.released {
		return ErrStateReleased
	}
	for _, m := range p.modes {
		if m.ID == mode.ID {
			p.s.mode = wlrModeArg(m)
			return nil
		}
	}
	return fmt.Errorf("mode %s is not supported by output %s", mode, p.s.output)
}

func wlrModes(o wlrOutput) []ModeInfo {
	modes := make([]ModeInfo, 0, len(o.Modes))
	for i, m := range o.Modes {
		modes = append(modes, ModeInfo{
			ID:          uint32(i),
			Name:        fmt.Sprintf("%dx%d", m.Width, m.Height),
			Resolution:  Resolution{Width: m.Width, Height: m.Height},
			RefreshRate: hzToRational(m.Refresh),
			Preferred:   m.Preferred,
		})
	}
	return modes
}

// hzToRational converts a refresh rate in Hz to an exact number of mHz
func hzToRational(hz float64) rational.Rational {
	return rational.New(int64(math.Round(hz*1000)), 1000)
}

func wlrModeArg(m ModeInfo) string {
	return fmt.Sprintf("%dx%d@%.3fHz", m.Resolution.Width, m.Resolution.Height, m.RefreshRate.Hz())
}

// sudoWaylandEnv returns the environment wlr-randr needs to reach the
// invoking user's compositor when running under sudo, or nil otherwise
func sudoWaylandEnv() []string {
	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser == "" || os.Geteuid() != 0 {
		return nil
	}
	logger.Debugf("Running wlr-randr with sudo, SUDO_USER=%s", sudoUser)

	sudoUID := os.Getenv("SUDO_UID")
	if sudoUID == "" {
		if out, err := exec.Command("id", "-u", sudoUser).Output(); err == nil {
			sudoUID = strings.TrimSpace(string(out))
		}
	}

	runtimeDir := fmt.Sprintf("/run/user/%s", sudoUID)
	env := append(os.Environ(), fmt.Sprintf("XDG_RUNTIME_DIR=%s", runtimeDir))
	logger.Debugf("Setting XDG_RUNTIME_DIR=%s", runtimeDir)

	waylandDisplay := findWaylandSocket(runtimeDir)
	if waylandDisplay == "" {
		waylandDisplay = os.Getenv("WAYLAND_DISPLAY")
	}
	if waylandDisplay == "" {
		logger.Warn("Could not detect WAYLAND_DISPLAY for sudo session")
		return env
	}
	logger.Debugf("Using WAYLAND_DISPLAY=%s", waylandDisplay)
	return append(env, fmt.Sprintf("WAYLAND_DISPLAY=%s", waylandDisplay))
}

// findWaylandSocket returns the first wayland-* socket in dir
func findWaylandSocket(dir string) string {
	files, err := os.ReadDir(dir)
	if err != nil {
		logger.Warnf("Could not read socket directory %s: %v", dir, err)
		return ""
	}
	for _, file := range files {
		if strings.HasPrefix(file.Name(), "wayland-") && !strings.HasSuffix(file.Name(), ".lock") {
			return file.Name()
		}
	}
	return ""
}

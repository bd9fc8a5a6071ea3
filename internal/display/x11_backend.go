package display

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/bnema/displaywake/internal/logger"
	"github.com/bnema/displaywake/internal/rational"
)

// Output property set by the kernel on head-mounted and other non-desktop sinks
const nonDesktopProperty = "non-desktop"

// x11Backend drives outputs through the X11 RandR extension
type x11Backend struct {
	xu         *xgbutil.XUtil
	conn       *xgb.Conn
	root       xproto.Window
	display    string
	nonDesktop xproto.Atom

	mu   sync.Mutex
	held map[randr.Output]bool
}

func newX11Backend(displayName string) (Platform, error) {
	xu, err := xgbutil.NewConnDisplay(displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server %q: %w", displayName, err)
	}
	conn := xu.Conn()

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	// GetScreenResourcesCurrent needs RandR 1.3
	version, err := randr.QueryVersion(conn, 1, 3).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("randr version query failed: %w", err)
	}
	if version.MajorVersion < 1 || (version.MajorVersion == 1 && version.MinorVersion < 3) {
		conn.Close()
		return nil, fmt.Errorf("randr %d.%d is too old, need 1.3", version.MajorVersion, version.MinorVersion)
	}

	b := &x11Backend{
		xu:      xu,
		conn:    conn,
		root:    xu.RootWin(),
		display: displayName,
		held:    make(map[randr.Output]bool),
	}

	// Servers without non-desktop outputs never interned the atom
	atom, err := xprop.Atom(xu, nonDesktopProperty, true)
	if err != nil {
		logger.Debugf("x11: %s atom lookup failed: %v", nonDesktopProperty, err)
	}
	b.nonDesktop = atom

	logger.Debugf("x11: connected to %q, randr %d.%d", displayName, version.MajorVersion, version.MinorVersion)
	return b, nil
}

func (b *x11Backend) Name() string {
	return "x11"
}

func (b *x11Backend) CurrentTargets(ctx context.Context) ([]Target, error) {
	resources, err := randr.GetScreenResourcesCurrent(b.conn, b.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var targets []Target
	for _, output := range resources.Outputs {
		info, err := randr.GetOutputInfo(b.conn, output, resources.ConfigTimestamp).Reply()
		if err != nil {
			logger.Debugf("x11: output %d info failed: %v", output, err)
			continue
		}
		if info.Connection != randr.ConnectionConnected {
			continue
		}

		targets = append(targets, Target{
			ID:        strconv.FormatUint(uint64(output), 10),
			Name:      string(info.Name),
			Adapter:   b.display,
			UsageKind: b.usageKind(output),
			Connected: true,
		})
	}
	return targets, nil
}

func (b *x11Backend) usageKind(output randr.Output) UsageKind {
	if b.nonDesktop == 0 {
		return UsageStandard
	}
	reply, err := randr.GetOutputProperty(b.conn, output, b.nonDesktop, xproto.AtomAny, 0, 1, false, false).Reply()
	if err != nil || reply.Format != 32 || len(reply.Data) < 4 {
		return UsageStandard
	}
	if xgb.Get32(reply.Data) != 0 {
		return UsageSpecialPurpose
	}
	return UsageStandard
}

func (b *x11Backend) CreateDevice(ctx context.Context, adapter string) (Device, error) {
	if adapter != b.display {
		return nil, fmt.Errorf("adapter %q is not served by this connection (%q)", adapter, b.display)
	}
	return &x11Device{b: b}, nil
}

func (b *x11Backend) Close() error {
	b.conn.Close()
	return nil
}

// x11Device shares the backend connection, closing it is a no-op
type x11Device struct {
	b *x11Backend
}

func (d *x11Device) AcquireState(ctx context.Context, target Target) (State, error) {
	id, err := strconv.ParseUint(target.ID, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("bad x11 output id %q: %w", target.ID, err)
	}
	output := randr.Output(id)

	d.b.mu.Lock()
	if d.b.held[output] {
		d.b.mu.Unlock()
		return nil, ErrStateBusy
	}
	d.b.held[output] = true
	d.b.mu.Unlock()

	s := &x11State{b: d.b, output: output}
	if err := xproto.GrabServerChecked(d.b.conn).Check(); err != nil {
		s.unhold()
		return nil, fmt.Errorf("failed to grab server: %w", err)
	}
	s.grabbed = true

	if err := s.snapshot(); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

func (d *x11Device) Close() error {
	return nil
}

type x11CrtcConfig struct {
	x, y         int16
	mode         randr.Mode
	screenWidth  uint16
	screenHeight uint16
	growScreen   bool
}

// x11State holds a server grab while the target is negotiated.
// resources and info are fixed once AcquireState returns. The other fields
// are guarded by mu, which is never held across a server round trip.
type x11State struct {
	b      *x11Backend
	output randr.Output

	resources *randr.GetScreenResourcesCurrentReply
	info      *randr.GetOutputInfoReply

	mu       sync.Mutex
	grabbed  bool
	released bool
	crtc     randr.Crtc
	pending  *x11CrtcConfig
}

func (s *x11State) snapshot() error {
	resources, err := randr.GetScreenResourcesCurrent(s.b.conn, s.b.root).Reply()
	if err != nil {
		return fmt.Errorf("failed to get screen resources: %w", err)
	}
	info, err := randr.GetOutputInfo(s.b.conn, s.output, resources.ConfigTimestamp).Reply()
	if err != nil {
		return fmt.Errorf("failed to get output info: %w", err)
	}
	if info.Connection != randr.ConnectionConnected {
		return fmt.Errorf("output %s: %w", string(info.Name), ErrTargetNotFound)
	}
	s.resources = resources
	s.info = info
	return nil
}

func (s *x11State) ConnectTarget(ctx context.Context, target Target) (Path, error) {
	if target.ID != strconv.FormatUint(uint64(s.output), 10) {
		return nil, fmt.Errorf("target %s is not held by this state", target.Name)
	}

	if s.isReleased() {
		return nil, ErrStateReleased
	}

	crtc := s.info.Crtc
	if crtc == 0 {
		crtc = s.findFreeCrtc()
	}
	if crtc == 0 {
		return nil, fmt.Errorf("output %s: %w", string(s.info.Name), ErrNoFreeCrtc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, ErrStateReleased
	}
	s.crtc = crtc
	return &x11Path{s: s}, nil
}

// findFreeCrtc returns a CRTC without outputs that can drive the output
func (s *x11State) findFreeCrtc() randr.Crtc {
	for _, crtc := range s.info.Crtcs {
		info, err := randr.GetCrtcInfo(s.b.conn, crtc, s.resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if len(info.Outputs) == 0 && outputSliceContains(info.Possible, s.output) {
			return crtc
		}
	}
	return 0
}

func (s *x11State) TryApply(ctx context.Context) error {
	defer s.ungrab()

	s.mu.Lock()
	cfg, crtc, released := s.pending, s.crtc, s.released
	s.mu.Unlock()
	if released {
		return ErrStateReleased
	}
	if cfg == nil {
		return fmt.Errorf("no mode staged for output %s", string(s.info.Name))
	}

	if cfg.growScreen {
		mmWidth := uint32(float64(cfg.screenWidth) / 3.792)
		mmHeight := uint32(float64(cfg.screenHeight) / 3.792)
		err := randr.SetScreenSizeChecked(s.b.conn, s.b.root, cfg.screenWidth, cfg.screenHeight, mmWidth, mmHeight).Check()
		if err != nil {
			return fmt.Errorf("failed to set screen size %dx%d: %w", cfg.screenWidth, cfg.screenHeight, err)
		}
		logger.Debugf("x11: screen size set to %dx%d", cfg.screenWidth, cfg.screenHeight)
	}

	reply, err := randr.SetCrtcConfig(s.b.conn, crtc, xproto.TimeCurrentTime, s.resources.ConfigTimestamp,
		cfg.x, cfg.y, cfg.mode, randr.RotationRotate0, []randr.Output{s.output}).Reply()
	if err != nil {
		return fmt.Errorf("failed to configure crtc %d: %w", crtc, err)
	}
	if reply.Status != randr.SetConfigSuccess {
		return fmt.Errorf("failed to configure crtc %d: %s", crtc, randrStatusString(reply.Status))
	}
	return nil
}

// Release is safe to call more than once and concurrently with a call that
// was abandoned on timeout
func (s *x11State) Release() error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	s.mu.Unlock()

	err := s.ungrab()
	s.unhold()
	return err
}

func (s *x11State) isReleased() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func (s *x11State) ungrab() error {
	s.mu.Lock()
	grabbed := s.grabbed
	s.grabbed = false
	s.mu.Unlock()
	if !grabbed {
		return nil
	}
	if err := xproto.UngrabServerChecked(s.b.conn).Check(); err != nil {
		return fmt.Errorf("failed to ungrab server: %w", err)
	}
	return nil
}

func (s *x11State) unhold() {
	s.b.mu.Lock()
	delete(s.b.held, s.output)
	s.b.mu.Unlock()
}

type x11Path struct {
	s *x11State
}

func (p *x11Path) FindModes(ctx context.Context, opts QueryOptions) ([]ModeInfo, error) {
	if p.s.isReleased() {
		return nil, ErrStateReleased
	}
	modes := outputModes(p.s.resources, p.s.info)
	if opts == QueryOnlyPreferredResolution {
		modes = filterPreferredResolution(modes)
	}
	return modes, nil
}

func (p *x11Path) ApplyPropertiesFromMode(ctx context.Context, mode ModeInfo) error {
	s := p.s
	s.mu.Lock()
	crtc, released := s.crtc, s.released
	s.mu.Unlock()
	if released {
		return ErrStateReleased
	}

	if !modeSliceContains(s.info.Modes, randr.Mode(mode.ID)) {
		return fmt.Errorf("mode %s (%d) is not supported by output %s", mode, mode.ID, string(s.info.Name))
	}
	if mode.Resolution.Width > math.MaxUint16 || mode.Resolution.Height > math.MaxUint16 {
		return fmt.Errorf("mode %s exceeds the X11 coordinate range", mode)
	}

	geom, err := xwindow.RawGeometry(s.b.xu, xproto.Drawable(s.b.root))
	if err != nil {
		return fmt.Errorf("failed to get screen geometry: %w", err)
	}
	screenWidth, screenHeight := geom.Width(), geom.Height()

	cfg := &x11CrtcConfig{mode: randr.Mode(mode.ID)}
	current, err := randr.GetCrtcInfo(s.b.conn, crtc, s.resources.ConfigTimestamp).Reply()
	if err == nil && current.Mode != 0 {
		cfg.x, cfg.y = current.X, current.Y
	} else {
		cfg.x = int16(s.screenExtent(crtc))
	}

	width := int(cfg.x) + int(mode.Resolution.Width)
	height := int(cfg.y) + int(mode.Resolution.Height)
	cfg.screenWidth, cfg.screenHeight = uint16(screenWidth), uint16(screenHeight)
	if width > screenWidth || height > screenHeight {
		sizeRange, err := randr.GetScreenSizeRange(s.b.conn, s.b.root).Reply()
		if err != nil {
			return fmt.Errorf("failed to get screen size range: %w", err)
		}
		if width > int(sizeRange.MaxWidth) || height > int(sizeRange.MaxHeight) {
			return fmt.Errorf("mode %s at %d,%d needs a %dx%d screen, maximum is %dx%d",
				mode, cfg.x, cfg.y, width, height, sizeRange.MaxWidth, sizeRange.MaxHeight)
		}
		cfg.screenWidth = uint16(max(width, screenWidth))
		cfg.screenHeight = uint16(max(height, screenHeight))
		cfg.growScreen = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrStateReleased
	}
	s.pending = cfg
	return nil
}

// screenExtent returns the right edge of every active CRTC but own
func (s *x11State) screenExtent(own randr.Crtc) int {
	extent := 0
	for _, crtc := range s.resources.Crtcs {
		if crtc == own {
			continue
		}
		info, err := randr.GetCrtcInfo(s.b.conn, crtc, s.resources.ConfigTimestamp).Reply()
		if err != nil || info.Mode == 0 {
			continue
		}
		extent = max(extent, int(info.X)+int(info.Width))
	}
	if extent > math.MaxInt16 {
		extent = math.MaxInt16
	}
	return extent
}

// outputModes resolves the output's mode list through the resource mode
// table. The first NumPreferred modes are the output's preferred ones.
func outputModes(resources *randr.GetScreenResourcesCurrentReply, info *randr.GetOutputInfoReply) []ModeInfo {
	table := make(map[uint32]randr.ModeInfo, len(resources.Modes))
	names := make(map[uint32]string, len(resources.Modes))
	offset := 0
	for _, m := range resources.Modes {
		table[m.Id] = m
		end := offset + int(m.NameLen)
		if end <= len(resources.Names) {
			names[m.Id] = string(resources.Names[offset:end])
		}
		offset = end
	}

	modes := make([]ModeInfo, 0, len(info.Modes))
	for i, id := range info.Modes {
		m, ok := table[uint32(id)]
		if !ok {
			continue
		}
		modes = append(modes, ModeInfo{
			ID:          m.Id,
			Name:        names[m.Id],
			Resolution:  Resolution{Width: uint32(m.Width), Height: uint32(m.Height)},
			RefreshRate: modeRefreshRate(m),
			Preferred:   i < int(info.NumPreferred),
		})
	}
	return modes
}

// modeRefreshRate returns DotClock / (Htotal * Vtotal), exact.
// Double scan sends every line twice, interlace sends half the lines per field.
func modeRefreshRate(m randr.ModeInfo) rational.Rational {
	num := int64(m.DotClock)
	den := int64(m.Htotal) * int64(m.Vtotal)
	if m.ModeFlags&randr.ModeFlagDoubleScan != 0 {
		den *= 2
	}
	if m.ModeFlags&randr.ModeFlagInterlace != 0 {
		num *= 2
	}
	return rational.New(num, den)
}

func randrStatusString(status byte) string {
	switch status {
	case randr.SetConfigSuccess:
		return "success"
	case randr.SetConfigInvalidConfigTime:
		return "invalid config time"
	case randr.SetConfigInvalidTime:
		return "invalid time"
	case randr.SetConfigFailed:
		return "failed"
	default:
		return fmt.Sprintf("status %d", status)
	}
}

func outputSliceContains(outputs []randr.Output, output randr.Output) bool {
	for _, o := range outputs {
		if o == output {
			return true
		}
	}
	return false
}

func modeSliceContains(modes []randr.Mode, mode randr.Mode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}

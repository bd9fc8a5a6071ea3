package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/displaywake/internal/display"
	mock_display "github.com/bnema/displaywake/internal/display/mocks"
	"github.com/bnema/displaywake/internal/logger"
	"github.com/bnema/displaywake/internal/rational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func executeCommand(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// usePlatform makes the commands open p and records the options they asked for
func usePlatform(t *testing.T, p display.Platform) *display.Options {
	t.Helper()
	var got display.Options
	orig := openPlatform
	openPlatform = func(opts display.Options) (display.Platform, error) {
		got = opts
		return p, nil
	}
	t.Cleanup(func() { openPlatform = orig })
	return &got
}

var (
	hmd = display.Target{ID: "77", Name: "DP-3", Adapter: ":0", UsageKind: display.UsageSpecialPurpose, Connected: true}
	lcd = display.Target{ID: "66", Name: "eDP-1", Adapter: ":0", UsageKind: display.UsageStandard, Connected: true}

	hmdModes = []display.ModeInfo{
		{ID: 1, Resolution: display.Resolution{Width: 2880, Height: 1600}, RefreshRate: rational.New(90, 1), Preferred: true},
		{ID: 2, Resolution: display.Resolution{Width: 2880, Height: 1600}, RefreshRate: rational.New(80, 1), Preferred: true},
	}
)

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand("version")
	require.NoError(t, err)
	assert.Contains(t, out, "displaywake "+Version)
	assert.Contains(t, out, "commit:")
}

func TestRejectsUnknownBackend(t *testing.T) {
	_, err := executeCommand("--backend", "drm", "--exit-after-wake")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown backend "drm"`)
}

func TestWakeExitAfterWake(t *testing.T) {
	ctrl := gomock.NewController(t)
	platform := mock_display.NewMockPlatform(ctrl)
	device := mock_display.NewMockDevice(ctrl)
	state := mock_display.NewMockState(ctrl)
	path := mock_display.NewMockPath(ctrl)

	platform.EXPECT().Name().Return("mock").AnyTimes()
	platform.EXPECT().CurrentTargets(gomock.Any()).Return([]display.Target{lcd, hmd}, nil)
	gomock.InOrder(
		platform.EXPECT().CreateDevice(gomock.Any(), ":0").Return(device, nil),
		device.EXPECT().AcquireState(gomock.Any(), hmd).Return(state, nil),
		state.EXPECT().ConnectTarget(gomock.Any(), hmd).Return(path, nil),
		path.EXPECT().FindModes(gomock.Any(), display.QueryOnlyPreferredResolution).Return(hmdModes, nil),
		path.EXPECT().ApplyPropertiesFromMode(gomock.Any(), hmdModes[1]).Return(nil),
		state.EXPECT().TryApply(gomock.Any()).Return(nil),
		state.EXPECT().Release().Return(nil),
		device.EXPECT().Close().Return(nil),
		platform.EXPECT().Close().Return(nil),
	)

	opts := usePlatform(t, platform)
	_, err := executeCommand("--exit-after-wake", "--backend", "x11", "--display", ":1", "--special", "DP-*", "--special", "HDMI-A-2")
	require.NoError(t, err)

	assert.Equal(t, display.Options{Backend: "x11", X11Display: ":1", SpecialOutputs: []string{"DP-*", "HDMI-A-2"}}, *opts)
}

func TestWakeAllModesFlag(t *testing.T) {
	ctrl := gomock.NewController(t)
	platform := mock_display.NewMockPlatform(ctrl)
	device := mock_display.NewMockDevice(ctrl)
	state := mock_display.NewMockState(ctrl)
	path := mock_display.NewMockPath(ctrl)

	platform.EXPECT().Name().Return("mock").AnyTimes()
	platform.EXPECT().CurrentTargets(gomock.Any()).Return([]display.Target{hmd}, nil)
	platform.EXPECT().CreateDevice(gomock.Any(), ":0").Return(device, nil)
	device.EXPECT().AcquireState(gomock.Any(), hmd).Return(state, nil)
	state.EXPECT().ConnectTarget(gomock.Any(), hmd).Return(path, nil)
	path.EXPECT().FindModes(gomock.Any(), display.QueryNone).Return(nil, errors.New("query failed"))
	state.EXPECT().Release().Return(nil)
	device.EXPECT().Close().Return(nil)
	platform.EXPECT().Close().Return(nil)

	usePlatform(t, platform)
	_, err := executeCommand("--exit-after-wake", "--min")
	require.NoError(t, err, "per-target failures do not fail the run")
}

func TestBackendOpenFailure(t *testing.T) {
	orig := openPlatform
	openPlatform = func(display.Options) (display.Platform, error) { return nil, display.ErrNoBackend }
	t.Cleanup(func() { openPlatform = orig })

	_, err := executeCommand("--exit-after-wake")
	assert.ErrorIs(t, err, display.ErrNoBackend)
}

func TestTargetsJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	platform := mock_display.NewMockPlatform(ctrl)
	device := mock_display.NewMockDevice(ctrl)
	state := mock_display.NewMockState(ctrl)
	path := mock_display.NewMockPath(ctrl)

	platform.EXPECT().Name().Return("mock").AnyTimes()
	platform.EXPECT().CurrentTargets(gomock.Any()).Return([]display.Target{lcd, hmd}, nil)
	platform.EXPECT().CreateDevice(gomock.Any(), ":0").Return(device, nil)
	device.EXPECT().AcquireState(gomock.Any(), hmd).Return(state, nil)
	state.EXPECT().ConnectTarget(gomock.Any(), hmd).Return(path, nil)
	path.EXPECT().FindModes(gomock.Any(), display.QueryOnlyPreferredResolution).Return(hmdModes, nil)
	state.EXPECT().Release().Return(nil)
	device.EXPECT().Close().Return(nil)
	platform.EXPECT().Close().Return(nil)
	usePlatform(t, platform)

	out, err := executeCommand("targets", "--json")
	require.NoError(t, err)

	var info TargetsInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "mock", info.Backend)
	require.Len(t, info.Targets, 2)

	assert.Equal(t, "eDP-1", info.Targets[0].Name)
	assert.Equal(t, "standard", info.Targets[0].Usage)
	assert.Empty(t, info.Targets[0].Modes)

	assert.Equal(t, "special-purpose", info.Targets[1].Usage)
	assert.Len(t, info.Targets[1].Modes, 2)
	require.NotNil(t, info.Targets[1].Selected)
	assert.Equal(t, uint32(2), info.Targets[1].Selected.ID)
	assert.Equal(t, "80/1", info.Targets[1].Selected.Refresh)
}

func TestTargetsJSONReportsBackendError(t *testing.T) {
	orig := openPlatform
	openPlatform = func(display.Options) (display.Platform, error) { return nil, display.ErrNoBackend }
	t.Cleanup(func() { openPlatform = orig })

	out, err := executeCommand("targets", "--json")
	require.NoError(t, err)

	var info TargetsInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info.Error, display.ErrNoBackend.Error())
	assert.Empty(t, info.Targets)
}

func TestTargetsTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	platform := mock_display.NewMockPlatform(ctrl)
	platform.EXPECT().Name().Return("mock").AnyTimes()
	platform.EXPECT().CurrentTargets(gomock.Any()).Return([]display.Target{lcd}, nil)
	platform.EXPECT().Close().Return(nil)
	usePlatform(t, platform)

	out, err := executeCommand("targets")
	require.NoError(t, err)
	assert.Contains(t, out, "DISPLAY TARGETS (mock)")
	assert.Contains(t, out, "eDP-1")
	assert.Contains(t, out, "standard")
}

func TestNoConsoleWritesLogFile(t *testing.T) {
	t.Cleanup(func() { logger.SetOutput(io.Discard) })

	ctrl := gomock.NewController(t)
	platform := mock_display.NewMockPlatform(ctrl)
	platform.EXPECT().Name().Return("mock").AnyTimes()
	platform.EXPECT().CurrentTargets(gomock.Any()).Return(nil, nil)
	platform.EXPECT().Close().Return(nil)
	usePlatform(t, platform)

	logFile := filepath.Join(t.TempDir(), "logs", "displaywake.log")
	_, err := executeCommand("--exit-after-wake", "--no-console", "--log-file", logFile)
	require.NoError(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Display backend ready")
}

// closeTracker is a log sink that counts writes made after Close
type closeTracker struct {
	bytes.Buffer
	closed     bool
	lateWrites int
}

func (c *closeTracker) Write(p []byte) (int, error) {
	if c.closed {
		c.lateWrites++
		return 0, os.ErrClosed
	}
	return c.Buffer.Write(p)
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestCloseLogDetachesLogger(t *testing.T) {
	t.Cleanup(func() { logger.SetOutput(io.Discard) })

	sink := &closeTracker{}
	logger.SetOutput(sink)
	a := &app{logCloser: sink}

	logger.Info("before close")
	a.closeLog()
	logger.Info("after close")
	a.closeLog()

	assert.True(t, sink.closed)
	assert.Zero(t, sink.lateWrites)
	assert.Contains(t, sink.String(), "before close")
	assert.NotContains(t, sink.String(), "after close")
	assert.Nil(t, a.logCloser)
}

// Package display models the platform side of waking a display: targets,
// their candidate modes, and the staged device/state/path operations a
// backend exposes to switch a target into a mode.
package display

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/displaywake/internal/rational"
)

//go:generate mockgen -source=display.go -destination=mocks/mock_display.go

var (
	// ErrNoBackend is returned when no display backend could be opened
	ErrNoBackend = errors.New("no display backend available")
	// ErrTargetNotFound is returned when a target vanished between enumeration and use
	ErrTargetNotFound = errors.New("display target not found")
	// ErrNoFreeCrtc is returned when no controller can drive a target
	ErrNoFreeCrtc = errors.New("no free controller for display target")
	// ErrStateBusy is returned when another caller holds the target
	ErrStateBusy = errors.New("display target is held by another state")
	// ErrStateReleased is returned when a state is used after Release
	ErrStateReleased = errors.New("display state already released")
)

// UsageKind classifies what a display output is meant for
type UsageKind int

const (
	UsageUnknown UsageKind = iota
	UsageStandard
	UsageSpecialPurpose
)

func (k UsageKind) String() string {
	switch k {
	case UsageStandard:
		return "standard"
	case UsageSpecialPurpose:
		return "special-purpose"
	default:
		return "unknown"
	}
}

// QueryOptions filters the modes returned by Path.FindModes
type QueryOptions int

const (
	// QueryNone returns every mode the target supports
	QueryNone QueryOptions = iota
	// QueryOnlyPreferredResolution returns only modes at the target's preferred resolution(s)
	QueryOnlyPreferredResolution
)

func (o QueryOptions) String() string {
	if o == QueryOnlyPreferredResolution {
		return "preferred-resolution"
	}
	return "all"
}

// Resolution is a frame size in pixels
type Resolution struct {
	Width  uint32
	Height uint32
}

// PixelCount returns Width*Height without overflowing
func (r Resolution) PixelCount() uint64 {
	return uint64(r.Width) * uint64(r.Height)
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ModeInfo is one candidate video mode of a target
type ModeInfo struct {
	// ID is backend specific (RandR mode XID, index in a mode list)
	ID          uint32
	Name        string
	Resolution  Resolution
	RefreshRate rational.Rational
	Preferred   bool
}

func (m ModeInfo) String() string {
	return fmt.Sprintf("%s@%.3fHz", m.Resolution, m.RefreshRate.Hz())
}

// Target is one physical or logical display output
type Target struct {
	ID        string
	Name      string
	Adapter   string
	UsageKind UsageKind
	Connected bool
}

func (t Target) String() string {
	return fmt.Sprintf("<Target id=%s name=%s usage=%s>", t.ID, t.Name, t.UsageKind)
}

// Platform enumerates targets and opens devices on their adapters
type Platform interface {
	Name() string
	CurrentTargets(ctx context.Context) ([]Target, error)
	CreateDevice(ctx context.Context, adapter string) (Device, error)
	Close() error
}

// Device is an open context on one adapter
type Device interface {
	// AcquireState takes exclusive ownership of target and returns an empty state for it
	AcquireState(ctx context.Context, target Target) (State, error)
	Close() error
}

// State is a pending configuration owned exclusively by its holder
type State interface {
	ConnectTarget(ctx context.Context, target Target) (Path, error)
	// TryApply commits the staged configuration to hardware
	TryApply(ctx context.Context) error
	// Release gives up ownership of the target
	Release() error
}

// Path is a connected target inside a state
type Path interface {
	FindModes(ctx context.Context, opts QueryOptions) ([]ModeInfo, error)
	ApplyPropertiesFromMode(ctx context.Context, mode ModeInfo) error
}

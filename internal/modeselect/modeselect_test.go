package modeselect

import (
	"testing"

	"github.com/bnema/displaywake/internal/display"
	"github.com/bnema/displaywake/internal/rational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mode(id uint32, w, h uint32, num, den int64) display.ModeInfo {
	return display.ModeInfo{
		ID:          id,
		Resolution:  display.Resolution{Width: w, Height: h},
		RefreshRate: rational.New(num, den),
	}
}

func TestSelectBestMode(t *testing.T) {
	tests := []struct {
		name       string
		candidates []display.ModeInfo
		expectedID uint32
	}{
		{
			name:       "single candidate",
			candidates: []display.ModeInfo{mode(1, 1920, 1080, 60, 1)},
			expectedID: 1,
		},
		{
			name: "smallest resolution wins over refresh",
			candidates: []display.ModeInfo{
				mode(1, 1920, 1080, 30, 1),
				mode(2, 1280, 720, 144, 1),
			},
			expectedID: 2,
		},
		{
			name: "lower refresh wins on equal pixel count",
			candidates: []display.ModeInfo{
				mode(1, 1280, 720, 60, 1),
				mode(2, 1280, 720, 30, 1),
			},
			expectedID: 2,
		},
		{
			name: "different shapes with equal pixel count are all retained",
			candidates: []display.ModeInfo{
				mode(1, 1600, 900, 60, 1),
				mode(2, 1200, 1200, 50, 1),
				mode(3, 1920, 1080, 24, 1),
			},
			expectedID: 2,
		},
		{
			name: "fractional rate below its integer neighbour",
			candidates: []display.ModeInfo{
				mode(1, 1920, 1080, 60, 1),
				mode(2, 1920, 1080, 60000, 1001),
			},
			expectedID: 2,
		},
		{
			name: "unreduced equal rates keep input order",
			candidates: []display.ModeInfo{
				mode(1, 800, 600, 120, 2),
				mode(2, 800, 600, 60, 1),
			},
			expectedID: 1,
		},
		{
			name: "zero denominator sorts last",
			candidates: []display.ModeInfo{
				mode(1, 800, 600, 60, 0),
				mode(2, 800, 600, 75, 1),
			},
			expectedID: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectBestMode(tt.candidates)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, got.ID)
		})
	}
}

func TestSelectBestModeHappyPath(t *testing.T) {
	candidates := []display.ModeInfo{
		mode(1, 1920, 1080, 60, 1),
		mode(2, 1280, 720, 30, 1),
		mode(3, 1280, 720, 60, 1),
	}

	got, err := SelectBestMode(candidates)
	require.NoError(t, err)
	assert.Equal(t, display.Resolution{Width: 1280, Height: 720}, got.Resolution)
	assert.True(t, rational.Equal(rational.New(30, 1), got.RefreshRate))
}

func TestSelectBestModeIsMinimal(t *testing.T) {
	candidates := []display.ModeInfo{
		mode(1, 3840, 2160, 30, 1),
		mode(2, 2560, 1440, 144, 1),
		mode(3, 1024, 768, 75, 1),
		mode(4, 1366, 768, 60, 1),
		mode(5, 1024, 768, 60, 1),
		mode(6, 640, 480, 60, 1),
		mode(7, 720, 400, 70, 1),
	}

	got, err := SelectBestMode(candidates)
	require.NoError(t, err)
	for _, c := range candidates {
		assert.LessOrEqual(t, got.Resolution.PixelCount(), c.Resolution.PixelCount())
	}
	assert.Equal(t, uint32(7), got.ID)
}

func TestSelectBestModeIsStable(t *testing.T) {
	candidates := []display.ModeInfo{
		mode(10, 1280, 720, 60, 1),
		mode(11, 1280, 720, 120, 2),
		mode(12, 1280, 720, 180, 3),
	}

	got, err := SelectBestMode(candidates)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), got.ID)
}

func TestSelectBestModeDoesNotReorderInput(t *testing.T) {
	candidates := []display.ModeInfo{
		mode(1, 1280, 720, 60, 1),
		mode(2, 1280, 720, 30, 1),
	}

	_, err := SelectBestMode(candidates)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), candidates[0].ID)
	assert.Equal(t, uint32(2), candidates[1].ID)
}

func TestSelectBestModeEmpty(t *testing.T) {
	_, err := SelectBestMode(nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

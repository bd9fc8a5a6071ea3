// Package modeselect picks the least demanding video mode of a display:
// the smallest frame, then the slowest refresh rate at that frame size.
package modeselect

import (
	"errors"
	"sort"

	"github.com/bnema/displaywake/internal/display"
	"github.com/bnema/displaywake/internal/rational"
)

// ErrNoCandidates is returned for an empty candidate set
var ErrNoCandidates = errors.New("no candidate modes")

// SelectBestMode returns the candidate with the lowest pixel count and, among
// candidates sharing that pixel count, the lowest refresh rate. Candidates with
// equal reduced rates keep their input order, so the earliest one wins.
// The candidates slice is not modified.
func SelectBestMode(candidates []display.ModeInfo) (display.ModeInfo, error) {
	if len(candidates) == 0 {
		return display.ModeInfo{}, ErrNoCandidates
	}

	minPixels := candidates[0].Resolution.PixelCount()
	for _, mode := range candidates[1:] {
		if pixels := mode.Resolution.PixelCount(); pixels < minPixels {
			minPixels = pixels
		}
	}

	smallest := make([]display.ModeInfo, 0, len(candidates))
	for _, mode := range candidates {
		if mode.Resolution.PixelCount() == minPixels {
			smallest = append(smallest, mode)
		}
	}

	sort.SliceStable(smallest, func(i, j int) bool {
		return rational.LessThan(smallest[i].RefreshRate, smallest[j].RefreshRate)
	})

	return smallest[0], nil
}

package display

import (
	"context"
	"path"
)

// Classify wraps a platform so that targets whose name matches one of the
// glob patterns are reported as special-purpose. Other targets keep the
// usage kind the backend gave them.
func Classify(p Platform, patterns []string) Platform {
	return &classifier{Platform: p, patterns: patterns}
}

type classifier struct {
	Platform
	patterns []string
}

func (c *classifier) CurrentTargets(ctx context.Context) ([]Target, error) {
	targets, err := c.Platform.CurrentTargets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range targets {
		if MatchesAny(targets[i].Name, c.patterns) {
			targets[i].UsageKind = UsageSpecialPurpose
		}
	}
	return targets, nil
}

// MatchesAny reports whether name matches one of the glob patterns.
// Malformed patterns never match.
func MatchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// filterPreferredResolution keeps the modes whose resolution equals the
// resolution of a preferred mode. Order is preserved.
func filterPreferredResolution(modes []ModeInfo) []ModeInfo {
	preferred := make(map[Resolution]bool)
	for _, m := range modes {
		if m.Preferred {
			preferred[m.Resolution] = true
		}
	}

	filtered := make([]ModeInfo, 0, len(modes))
	for _, m := range modes {
		if preferred[m.Resolution] {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

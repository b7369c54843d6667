package highlights

import (
	"strings"

	"github.com/jipraks/shortclipper/internal/types"
)

// Bounds is the plausible short-form duration band. Values are configuration,
// not algorithmic constants.
type Bounds struct {
	MinSec float64
	MaxSec float64
}

func DefaultBounds() Bounds { return Bounds{MinSec: 15, MaxSec: 90} }

// Filter drops malformed candidates and keeps the model's ordering for the
// survivors. Dropped candidates are never substituted, only logged.
func Filter(cands []types.Highlight, sourceDuration float64, b Bounds, logf func(format string, args ...any)) []types.Highlight {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	out := make([]types.Highlight, 0, len(cands))
	for i, c := range cands {
		switch {
		case c.End <= c.Start:
			logf("dropping candidate %d: end %.1fs not after start %.1fs", i+1, c.End, c.Start)
		case c.Start < 0 || c.End > sourceDuration:
			logf("dropping candidate %d: span %.1f-%.1fs outside source 0-%.1fs", i+1, c.Start, c.End, sourceDuration)
		case c.Duration() < b.MinSec || c.Duration() > b.MaxSec:
			logf("dropping candidate %d: duration %.1fs outside %.0f-%.0fs band", i+1, c.Duration(), b.MinSec, b.MaxSec)
		default:
			c.Title = strings.TrimSpace(c.Title)
			c.HookText = strings.TrimSpace(c.HookText)
			if c.Title == "" {
				c.Title = "Highlight"
			}
			out = append(out, c)
		}
	}
	return out
}

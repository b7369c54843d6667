// Package tracking decides, per time window, where to crop a landscape frame
// so the portrait reframe follows the active subject.
package tracking

import "github.com/jipraks/shortclipper/internal/types"

// Config holds the smoothing thresholds. Defaults follow the documented
// tuning of the detection pipeline; all four are configuration inputs.
type Config struct {
	// ActivityThreshold is the minimum activity for a confident detection.
	ActivityThreshold float64
	// SwitchThreshold is how much a rival position's activity must exceed
	// the current subject's before the crop jumps to it.
	SwitchThreshold float64
	// MinShotHold is how long (seconds) a chosen subject is held before any
	// switch is allowed.
	MinShotHold float64
	// CenterWeight blends the fallback crop between frame center and the
	// nearest prior detection when nothing is confidently detected.
	CenterWeight float64
}

func DefaultConfig() Config {
	return Config{
		ActivityThreshold: 0.15,
		SwitchThreshold:   0.3,
		MinShotHold:       3.0,
		CenterWeight:      0.3,
	}
}

// A rival position must be at least this far away (fraction of frame width)
// to count as a different subject rather than drift of the current one.
const subjectDistance = 0.15

// ComputeCropWindows turns detector samples into a gap-free window sequence
// covering [0, duration]. The decision taken at each sample applies until the
// next sample; the span before the first sample reuses the first decision.
// Adjacent windows with equal offsets are merged.
func ComputeCropWindows(samples []types.ActivitySample, cfg Config, duration float64, srcWidth, cropWidth int) []types.CropWindow {
	if duration <= 0 || srcWidth <= 0 || cropWidth <= 0 || cropWidth > srcWidth {
		return nil
	}
	if len(samples) == 0 {
		return []types.CropWindow{{Start: 0, End: duration, X: (srcWidth - cropWidth) / 2}}
	}

	st := state{lastSeen: 0.5}
	xs := make([]int, len(samples))
	for i, s := range samples {
		xs[i] = st.step(s, cfg, srcWidth, cropWidth)
	}

	var out []types.CropWindow
	out = appendWindow(out, 0, samples[0].Time, xs[0])
	for i := range samples {
		end := duration
		if i+1 < len(samples) {
			end = samples[i+1].Time
		}
		out = appendWindow(out, samples[i].Time, end, xs[i])
	}
	return out
}

type state struct {
	curCenter  float64 // tracked subject position, normalized 0..1
	curAct     float64 // activity of the tracked subject when last confirmed
	lastSeen   float64 // nearest prior confident detection
	holdStart  float64 // when the current subject was adopted
	everLocked bool
}

func (st *state) step(s types.ActivitySample, cfg Config, srcWidth, cropWidth int) int {
	const frameCenter = 0.5
	switch {
	case s.Activity < cfg.ActivityThreshold:
		// No confident subject: blend toward frame center from the nearest
		// prior detection.
		pos := cfg.CenterWeight*frameCenter + (1-cfg.CenterWeight)*st.lastSeen
		return offsetFor(pos, srcWidth, cropWidth)

	case !st.everLocked:
		st.adopt(s)

	case abs(s.CenterX-st.curCenter) < subjectDistance:
		// Same subject drifting; follow it.
		st.curCenter = s.CenterX
		st.curAct = s.Activity
		st.lastSeen = s.CenterX

	default:
		// A different position. Switch only on strong evidence after the
		// minimum shot hold; otherwise keep the current framing.
		if s.Time-st.holdStart >= cfg.MinShotHold && s.Activity-st.curAct >= cfg.SwitchThreshold {
			st.adopt(s)
		}
	}
	return offsetFor(st.curCenter, srcWidth, cropWidth)
}

func (st *state) adopt(s types.ActivitySample) {
	st.curCenter = s.CenterX
	st.curAct = s.Activity
	st.lastSeen = s.CenterX
	st.holdStart = s.Time
	st.everLocked = true
}

func appendWindow(out []types.CropWindow, start, end float64, x int) []types.CropWindow {
	if end <= start {
		return out
	}
	if n := len(out); n > 0 && out[n-1].X == x {
		out[n-1].End = end
		return out
	}
	return append(out, types.CropWindow{Start: start, End: end, X: x})
}

func offsetFor(center float64, srcWidth, cropWidth int) int {
	x := int(center*float64(srcWidth)) - cropWidth/2
	if x < 0 {
		x = 0
	}
	if max := srcWidth - cropWidth; x > max {
		x = max
	}
	return x
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

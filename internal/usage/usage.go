// Package usage tracks billable external-API consumption for one job.
package usage

import "sync"

// Totals are monotonically increasing for the lifetime of a job.
type Totals struct {
	GPTInputTokens  int
	GPTOutputTokens int
	WhisperSeconds  float64
	TTSChars        int
}

// DeltaFunc receives each increment as it happens. It may be called from the
// pipeline worker goroutine; UI consumers must marshal delivery themselves.
type DeltaFunc func(gptIn, gptOut int, whisperSeconds float64, ttsChars int)

// Counters accumulates usage from whichever component incurs the cost.
// Safe for concurrent use.
type Counters struct {
	mu      sync.Mutex
	t       Totals
	onDelta DeltaFunc
}

func NewCounters(onDelta DeltaFunc) *Counters {
	return &Counters{onDelta: onDelta}
}

func (c *Counters) Add(gptIn, gptOut int, whisperSeconds float64, ttsChars int) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.t.GPTInputTokens += gptIn
	c.t.GPTOutputTokens += gptOut
	c.t.WhisperSeconds += whisperSeconds
	c.t.TTSChars += ttsChars
	cb := c.onDelta
	c.mu.Unlock()

	if cb != nil {
		cb(gptIn, gptOut, whisperSeconds, ttsChars)
	}
}

func (c *Counters) Snapshot() Totals {
	if c == nil {
		return Totals{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

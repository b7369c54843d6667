// Package events defines the typed event stream the pipeline emits instead of
// free-text status callbacks. Consumers (CLI, tests, a GUI) drain the stream;
// stage detection never depends on parsing log strings.
package events

import "fmt"

type Stage int

const (
	StageDownload Stage = iota
	StageTranscribe
	StageSelect
	StageRender
	StageCleanup
)

func (s Stage) String() string {
	switch s {
	case StageDownload:
		return "download"
	case StageTranscribe:
		return "transcribe"
	case StageSelect:
		return "select"
	case StageRender:
		return "render"
	case StageCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

type Status int

const (
	StatusSuccess Status = iota
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one pipeline notification. The concrete types are Log, Progress,
// Usage and Outcome. Events for a job arrive in program order.
type Event interface{ event() }

// Log carries a human-readable message for display only.
type Log struct {
	Message string
}

// Progress reports where the pipeline is. Percent is 0..1 and only meaningful
// when HasPercent is set. Clip/Clips are 1-based and set during StageRender.
type Progress struct {
	Stage      Stage
	Clip       int
	Clips      int
	Percent    float64
	HasPercent bool
}

// Usage is a delta of billable external-API consumption.
type Usage struct {
	GPTInputTokens  int
	GPTOutputTokens int
	WhisperSeconds  float64
	TTSChars        int
}

// Outcome is the single terminal event of a run.
type Outcome struct {
	Status Status
	Reason string
}

func (Log) event()      {}
func (Progress) event() {}
func (Usage) event()    {}
func (Outcome) event()  {}

// Sink receives events. It may be invoked from a non-UI goroutine; consumers
// owning UI state must marshal delivery themselves.
type Sink func(Event)

// Emitter is a nil-safe convenience wrapper around a Sink.
type Emitter struct {
	sink Sink
}

func NewEmitter(s Sink) *Emitter { return &Emitter{sink: s} }

func (e *Emitter) emit(ev Event) {
	if e == nil || e.sink == nil {
		return
	}
	e.sink(ev)
}

func (e *Emitter) Logf(format string, args ...any) {
	e.emit(Log{Message: fmt.Sprintf(format, args...)})
}

func (e *Emitter) Stage(stage Stage) {
	e.emit(Progress{Stage: stage})
}

func (e *Emitter) StagePercent(stage Stage, pct float64) {
	e.emit(Progress{Stage: stage, Percent: pct, HasPercent: true})
}

func (e *Emitter) ClipPercent(clip, clips int, pct float64) {
	e.emit(Progress{Stage: StageRender, Clip: clip, Clips: clips, Percent: pct, HasPercent: true})
}

func (e *Emitter) Clip(clip, clips int) {
	e.emit(Progress{Stage: StageRender, Clip: clip, Clips: clips})
}

func (e *Emitter) Usage(u Usage) {
	e.emit(u)
}

func (e *Emitter) Outcome(status Status, reason string) {
	e.emit(Outcome{Status: status, Reason: reason})
}

package types

// Segment is one time-aligned piece of the transcript. Segments are ordered
// by start, non-overlapping, and cover speech only.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcript struct {
	Segments []Segment `json:"segments"`
}

// SourceMedia is the downloaded source video plus what came with it.
type SourceMedia struct {
	VideoPath    string
	SubtitlePath string // empty when the platform had no usable track
	Title        string
	Duration     float64 // seconds
}

// Highlight is one model-proposed clip span.
type Highlight struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Title    string  `json:"title"`
	HookText string  `json:"hook_text"`
}

func (h Highlight) Duration() float64 { return h.End - h.Start }

// Options are the per-job feature toggles.
type Options struct {
	Captions bool
	Hook     bool
}

// ClipResult describes one finished clip on disk.
type ClipResult struct {
	VideoPath  string
	FolderPath string
	Title      string
	HookText   string
	Duration   float64
}

// CropWindow maps a time range of a clip to a horizontal crop offset in
// source pixels. A window sequence covers the whole clip with no gaps.
type CropWindow struct {
	Start float64
	End   float64
	X     int
}

// ActivitySample is one detector observation: how much subject activity a
// sampled frame shows and where its horizontal center sits (0..1).
type ActivitySample struct {
	Time     float64
	Activity float64
	CenterX  float64
}

// TokenUsage is the billing metadata of a single chat-completion call.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

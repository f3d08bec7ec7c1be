package whisper

import (
	"context"
	"time"
)

// Segment is a contiguous span of recognized text produced by the engine
// for a portion of the audio. Segments arrive in chronological order.
type Segment struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

// Result carries the raw engine output for one transcription run.
// AvgLogProb is the mean log-likelihood of the recognized tokens when the
// engine reported per-token probabilities, nil otherwise.
type Result struct {
	Segments   []Segment
	AvgLogProb *float64
}

type Request struct {
	AudioPath   string
	Language    string
	BeamSize    int
	Temperature float64
}

type Engine interface {
	LoadModel(ctx context.Context, path string, precision Precision) (*Model, error)
	Transcribe(ctx context.Context, model *Model, req Request) (Result, error)
}

// Model is an opaque handle to a validated model. Handles are owned by the
// Cache once created and are immutable after construction; they live until
// the process exits.
type Model struct {
	Path      string
	Precision Precision
}

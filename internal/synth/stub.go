package synth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/voxbridge/voxbridge/internal/audio"
)

const (
	DefaultSampleRate = 22050
	DefaultChannels   = 1
)

// Request is the synthesis request read from stdin. Voice is accepted for
// compatibility with the orchestrator's request shape and has no effect on
// the placeholder payload.
type Request struct {
	Text       string
	Voice      string
	SampleRate int
	Channels   int
}

// Result is the single response object written to stdout. Final is always
// true; the stub does not stream.
type Result struct {
	PCMBase64 string `json:"pcm_base64"`
	Final     bool   `json:"final"`
}

type wireRequest struct {
	Text       *string      `json:"text"`
	Voice      *string      `json:"voice"`
	SampleRate *json.Number `json:"sample_rate"`
	Channels   *json.Number `json:"channels"`
}

// DecodeRequest reads exactly one JSON object and applies defaults for
// absent or null fields. Numeric fields may arrive as JSON floats and are
// truncated to integers; explicit non-positive values are rejected rather
// than silently producing an empty payload.
func DecodeRequest(r io.Reader) (Request, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var wire wireRequest
	if err := dec.Decode(&wire); err != nil {
		return Request{}, fmt.Errorf("decode synthesis request: %w", err)
	}

	req := Request{}
	if wire.Text != nil {
		req.Text = *wire.Text
	}
	if wire.Voice != nil {
		req.Voice = *wire.Voice
	}

	var err error
	if req.SampleRate, err = coercePositive("sample_rate", wire.SampleRate, DefaultSampleRate); err != nil {
		return Request{}, err
	}
	if req.Channels, err = coercePositive("channels", wire.Channels, DefaultChannels); err != nil {
		return Request{}, err
	}

	return req, nil
}

func coercePositive(field string, value *json.Number, fallback int) (int, error) {
	if value == nil {
		return fallback, nil
	}

	f, err := value.Float64()
	if err != nil {
		return 0, fmt.Errorf("field %s is not numeric: %w", field, err)
	}

	n := int(f)
	if n < 1 {
		return 0, fmt.Errorf("field %s must be a positive integer, got %s", field, value.String())
	}
	return n, nil
}

// Synthesize produces the silent placeholder payload for req. Only the
// length of the text matters; its content is never modeled.
func Synthesize(req Request) []byte {
	return audio.SilencePCM(req.SampleRate, req.Channels, audio.StubDuration(req.Text))
}

// EncodeResult wraps a PCM payload in the final response object.
func EncodeResult(pcm []byte) Result {
	return Result{
		PCMBase64: base64.StdEncoding.EncodeToString(pcm),
		Final:     true,
	}
}

package synth

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeRequestDefaults(t *testing.T) {
	t.Parallel()

	req, err := DecodeRequest(strings.NewReader(`{}`))
	require.NoError(t, err)
	require.Equal(t, Request{Text: "", SampleRate: 22050, Channels: 1}, req)
}

func TestDecodeRequestExplicitFields(t *testing.T) {
	t.Parallel()

	req, err := DecodeRequest(strings.NewReader(`{"text": "hello there", "voice": "af_bella", "sample_rate": 16000, "channels": 2}`))
	require.NoError(t, err)
	require.Equal(t, "hello there", req.Text)
	require.Equal(t, "af_bella", req.Voice)
	require.Equal(t, 16000, req.SampleRate)
	require.Equal(t, 2, req.Channels)
}

func TestDecodeRequestCoercesFloats(t *testing.T) {
	t.Parallel()

	req, err := DecodeRequest(strings.NewReader(`{"sample_rate": 16000.0, "channels": 1.9}`))
	require.NoError(t, err)
	require.Equal(t, 16000, req.SampleRate)
	require.Equal(t, 1, req.Channels)
}

func TestDecodeRequestNullFieldsUseDefaults(t *testing.T) {
	t.Parallel()

	req, err := DecodeRequest(strings.NewReader(`{"text": null, "sample_rate": null, "channels": null}`))
	require.NoError(t, err)
	require.Equal(t, Request{Text: "", SampleRate: 22050, Channels: 1}, req)
}

func TestDecodeRequestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "not json"},
		{name: "empty input", input: ""},
		{name: "top-level array", input: "[1, 2]"},
		{name: "non-numeric sample rate", input: `{"sample_rate": "fast"}`},
		{name: "zero sample rate", input: `{"sample_rate": 0}`},
		{name: "negative channels", input: `{"channels": -1}`},
		{name: "non-string text", input: `{"text": 5}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeRequest(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestSynthesizePayloadSize(t *testing.T) {
	t.Parallel()

	pcm := Synthesize(Request{Text: "hi", SampleRate: 22050, Channels: 1})
	require.Len(t, pcm, 8820)
	for _, b := range pcm {
		require.Zero(t, b)
	}
}

func TestSynthesizeIgnoresVoice(t *testing.T) {
	t.Parallel()

	plain := Synthesize(Request{Text: "hi", SampleRate: 22050, Channels: 1})
	voiced := Synthesize(Request{Text: "hi", Voice: "af_bella", SampleRate: 22050, Channels: 1})
	require.Equal(t, plain, voiced)
}

func TestEncodeResult(t *testing.T) {
	t.Parallel()

	pcm := Synthesize(Request{Text: "", SampleRate: 22050, Channels: 1})
	result := EncodeResult(pcm)
	require.True(t, result.Final)

	decoded, err := base64.StdEncoding.DecodeString(result.PCMBase64)
	require.NoError(t, err)
	require.Equal(t, pcm, decoded)
}

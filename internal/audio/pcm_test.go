package audio

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStubDurationClamps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want time.Duration
	}{
		{name: "empty text floors at 200ms", text: "", want: 200 * time.Millisecond},
		{name: "short text floors at 200ms", text: "hi", want: 200 * time.Millisecond},
		{name: "25 chars scale linearly", text: strings.Repeat("a", 25), want: 500 * time.Millisecond},
		{name: "50 chars reach one second", text: strings.Repeat("a", 50), want: time.Second},
		{name: "500 chars cap at one second", text: strings.Repeat("a", 500), want: time.Second},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, StubDuration(tt.text))
		})
	}
}

func TestStubDurationCountsRunes(t *testing.T) {
	t.Parallel()

	// 25 three-byte runes must scale like 25 ASCII characters.
	require.Equal(t, 500*time.Millisecond, StubDuration(strings.Repeat("あ", 25)))
}

func TestFrameCount(t *testing.T) {
	t.Parallel()

	require.Equal(t, 4410, FrameCount(22050, 200*time.Millisecond))
	require.Equal(t, 22050, FrameCount(22050, time.Second))
	require.Equal(t, 8000, FrameCount(16000, 500*time.Millisecond))
	require.Equal(t, 0, FrameCount(22050, 0))
}

func TestSilencePCMSizeAndContent(t *testing.T) {
	t.Parallel()

	pcm := SilencePCM(22050, 1, StubDuration("hi"))
	require.Len(t, pcm, 8820)
	for _, b := range pcm {
		require.Zero(t, b)
	}

	stereo := SilencePCM(22050, 2, StubDuration("hi"))
	require.Len(t, stereo, 17640)
}

func TestWritePCMWAVRoundTrip(t *testing.T) {
	t.Parallel()

	pcm := SilencePCM(16000, 1, 200*time.Millisecond)
	path := filepath.Join(t.TempDir(), "stub.wav")
	require.NoError(t, WritePCMWAV(path, pcm, 16000, 1))

	info, err := ProbeWAV(path)
	require.NoError(t, err)
	require.Equal(t, 16000, info.SampleRate)
	require.Equal(t, 1, info.Channels)
	require.Equal(t, 16, info.BitDepth)
	require.Equal(t, 200*time.Millisecond, info.Duration)
}

func TestWritePCMWAVRejectsMisalignedPayload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.wav")
	require.Error(t, WritePCMWAV(path, make([]byte, 3), 16000, 1))
	require.Error(t, WritePCMWAV(path, make([]byte, 6), 16000, 2))
}

func TestProbeWAVRejectsNonWAV(t *testing.T) {
	t.Parallel()

	_, err := ProbeWAV(filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)
}

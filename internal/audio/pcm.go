package audio

import (
	"math"
	"time"
	"unicode/utf8"
)

// 16-bit signed little-endian, the only sample format the adapters emit.
const bytesPerSample = 2

const (
	minStubDuration = 200 * time.Millisecond
	maxStubDuration = time.Second

	// One second of placeholder audio per 50 characters of input text.
	charsPerSecond = 50.0
)

// StubDuration derives the placeholder playback length from the size of
// the input text, clamped to [200ms, 1s]. Characters are counted as runes
// so multi-byte text scales the same as ASCII.
func StubDuration(text string) time.Duration {
	seconds := float64(utf8.RuneCountInString(text)) / charsPerSecond
	seconds = math.Min(math.Max(seconds, minStubDuration.Seconds()), maxStubDuration.Seconds())
	return time.Duration(seconds * float64(time.Second))
}

// FrameCount is floor(sampleRate * seconds).
func FrameCount(sampleRate int, d time.Duration) int {
	return int(int64(sampleRate) * d.Nanoseconds() / int64(time.Second))
}

// SilencePCM allocates FrameCount frames of interleaved 16-bit signed
// silence. All-zero bytes encode zero amplitude on every channel.
func SilencePCM(sampleRate, channels int, d time.Duration) []byte {
	return make([]byte, FrameCount(sampleRate, d)*channels*bytesPerSample)
}

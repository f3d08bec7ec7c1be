package whisper

import (
	"math"
	"strings"
)

// CollapseSegments joins segment texts in the order the engine produced
// them with no separator, then trims surrounding whitespace. Zero segments
// collapse to the empty string.
func CollapseSegments(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	return strings.TrimSpace(b.String())
}

// ConfidenceFromLogProb maps an average log-probability x <= 0 onto (0, 1]
// via exp(x): zero means full certainty, increasingly negative values
// approach zero. Out-of-domain positive inputs pass through unclamped and
// yield values above 1.
func ConfidenceFromLogProb(avgLogProb float64) float64 {
	return math.Exp(avgLogProb)
}

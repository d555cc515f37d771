// Package align merges the independently produced interval streams of a run.
// Speech segments carry the text and timing; speaker segments and emotion
// predictions are looked up by midpoint and attached. The inputs are never
// mutated, every call produces fresh segments.
package align

import (
	"fmt"
	"math"
	"strings"

	"github.com/ovozlab/speechmark/internal/diarize"
	"github.com/ovozlab/speechmark/internal/dsp"
	"github.com/ovozlab/speechmark/internal/emotion"
	"github.com/ovozlab/speechmark/internal/transcribe"
)

// gapConfidenceFactor penalizes attributions made through the
// nearest-boundary fallback when no speaker segment contains the midpoint.
const gapConfidenceFactor = 0.7

// Segment is one speech segment with its attribution resolved.
type Segment struct {
	dsp.Interval
	Text       string        `json:"text"`
	Speaker    string        `json:"speaker"`
	Confidence float64       `json:"confidence"`
	Emotion    emotion.Label `json:"emotion,omitempty"`
}

// Align attributes each speech segment to a speaker. A segment whose midpoint
// lies inside a speaker segment (bounds inclusive) takes that speaker with
// confidence averaged between the two; a midpoint that falls in a gap takes
// the speaker whose nearer boundary is closest, at the speech confidence
// reduced by the gap factor. Speech ordering and timing pass through
// untouched. With no speaker segments at all the attribution stays empty and
// the confidence is only penalized.
func Align(speech []transcribe.Segment, speakers []diarize.SpeakerSegment) []Segment {
	var out []Segment
	for _, sp := range speech {
		mid := sp.Midpoint()

		matched := false
		for _, spk := range speakers {
			if spk.Contains(mid) {
				out = append(out, Segment{
					Interval:   sp.Interval,
					Text:       sp.Text,
					Speaker:    spk.Speaker,
					Confidence: (spk.Confidence + sp.Confidence) / 2,
				})
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		seg := Segment{
			Interval:   sp.Interval,
			Text:       sp.Text,
			Confidence: sp.Confidence * gapConfidenceFactor,
		}
		if closest := nearestSpeaker(speakers, mid); closest != nil {
			seg.Speaker = closest.Speaker
		}
		out = append(out, seg)
	}
	return out
}

// nearestSpeaker picks the speaker segment whose nearer boundary is closest
// to t, or nil when there are no segments.
func nearestSpeaker(speakers []diarize.SpeakerSegment, t float64) *diarize.SpeakerSegment {
	var best *diarize.SpeakerSegment
	bestDist := math.Inf(1)
	for i := range speakers {
		d := math.Min(math.Abs(speakers[i].Start-t), math.Abs(speakers[i].End-t))
		if d < bestDist {
			bestDist = d
			best = &speakers[i]
		}
	}
	return best
}

// WithEmotions attaches an emotion label to each aligned segment using the
// same midpoint rule: the prediction containing the segment's midpoint wins,
// otherwise the prediction with the nearest boundary. Confidence is not
// adjusted; the emotion is advisory reporting data.
func WithEmotions(aligned []Segment, preds []emotion.Prediction) []Segment {
	if len(preds) == 0 {
		return aligned
	}
	out := make([]Segment, len(aligned))
	for i, seg := range aligned {
		out[i] = seg
		mid := seg.Midpoint()

		matched := false
		for _, p := range preds {
			if p.Contains(mid) {
				out[i].Emotion = p.Emotion
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		bestDist := math.Inf(1)
		for _, p := range preds {
			d := math.Min(math.Abs(p.Start-mid), math.Abs(p.End-mid))
			if d < bestDist {
				bestDist = d
				out[i].Emotion = p.Emotion
			}
		}
	}
	return out
}

// FormatTranscript renders aligned segments as a plain-text transcript.
// Consecutive segments by the same speaker group under a single
// "SPEAKER_NN [HH:MM:SS --> HH:MM:SS]:" heading stamped with the first
// segment's interval.
func FormatTranscript(aligned []Segment) string {
	var b strings.Builder
	currentSpeaker := ""
	for _, seg := range aligned {
		if seg.Speaker != currentSpeaker {
			fmt.Fprintf(&b, "\n%s [%s --> %s]:\n",
				seg.Speaker, formatClock(seg.Start), formatClock(seg.End))
			currentSpeaker = seg.Speaker
		}
		fmt.Fprintf(&b, "  %s\n", seg.Text)
	}
	return strings.TrimPrefix(b.String(), "\n")
}

// formatClock renders seconds as zero-padded HH:MM:SS.
func formatClock(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Package diarize assigns time intervals of a recording to anonymous speaker
// identities. It is unsupervised: fixed windows of the signal are summarised
// into timbral voiceprints, the voiceprints are clustered, and contiguous
// windows sharing a cluster collapse into speaker segments.
package diarize

import (
	"fmt"

	"github.com/ovozlab/speechmark/internal/dsp"
)

const (
	// DefaultSegmentDuration is the analysis window in seconds.
	DefaultSegmentDuration = 1.0
	// DefaultMinSegmentDuration is the merge threshold for MergeShortSegments.
	DefaultMinSegmentDuration = 0.5

	// minSpeakers and maxSpeakers clamp both configured and derived counts.
	minSpeakers = 1
	maxSpeakers = 10

	// segmentConfidence is the fixed confidence attached to every segment.
	// The clustering gives no per-window certainty measure, so all segments
	// carry the same score.
	segmentConfidence = 0.85
)

// SpeakerSegment is a span of the recording attributed to one speaker.
type SpeakerSegment struct {
	dsp.Interval
	Speaker    string  `json:"speaker"`
	Confidence float64 `json:"confidence"`
}

// Options configures a diarization run.
type Options struct {
	// NumSpeakers forces the cluster count; zero derives it from the number
	// of analysis windows.
	NumSpeakers int
	// SegmentDuration is the analysis window length in seconds.
	SegmentDuration float64
}

// Diarize segments the signal by speaker. The returned list covers
// [0, sig.Duration()) with no gaps or overlaps, sorted by start time, with
// speakers named SPEAKER_01..NN in order of first appearance. A signal too
// short for a single window yields an empty result.
func Diarize(sig dsp.Signal, opts Options) []SpeakerSegment {
	segDur := opts.SegmentDuration
	if segDur <= 0 {
		segDur = DefaultSegmentDuration
	}

	prints := windowVoiceprints(sig, segDur)
	if len(prints) == 0 {
		return nil
	}

	k := opts.NumSpeakers
	if k == 0 {
		k = deriveSpeakerCount(len(prints))
	}
	k = clampSpeakerCount(k, len(prints))

	labels := clusterLabels(prints, k)

	// Collapse consecutive windows with the same cluster label into one
	// segment. The final segment always closes at the true signal end, even
	// when the dropped partial window makes it longer than segDur.
	var segments []SpeakerSegment
	current := labels[0]
	segStart := 0.0
	for i := 1; i < len(labels); i++ {
		if labels[i] != current {
			segEnd := float64(i) * segDur
			segments = append(segments, SpeakerSegment{
				Interval:   dsp.Interval{Start: segStart, End: segEnd},
				Speaker:    speakerID(current),
				Confidence: segmentConfidence,
			})
			current = labels[i]
			segStart = segEnd
		}
	}
	segments = append(segments, SpeakerSegment{
		Interval:   dsp.Interval{Start: segStart, End: sig.Duration()},
		Speaker:    speakerID(current),
		Confidence: segmentConfidence,
	})

	return renumberByFirstAppearance(segments)
}

// windowVoiceprints cuts the signal into consecutive non-overlapping windows
// of segDur seconds (discarding a final partial window) and extracts one
// voiceprint per window.
func windowVoiceprints(sig dsp.Signal, segDur float64) [][]float64 {
	windowSamples := int(segDur * float64(sig.SampleRate))
	if windowSamples <= 0 || sig.Empty() {
		return nil
	}
	numWindows := len(sig.Samples) / windowSamples

	var prints [][]float64
	for i := 0; i < numWindows; i++ {
		window := dsp.Signal{
			Samples:    sig.Samples[i*windowSamples : (i+1)*windowSamples],
			SampleRate: sig.SampleRate,
		}
		vp := dsp.Voiceprint(window)
		if vp == nil {
			// Window shorter than an analysis frame; treat as a silent,
			// featureless voiceprint rather than failing the run.
			vp = make([]float64, dsp.VoiceprintSize)
		}
		prints = append(prints, vp)
	}
	return prints
}

// deriveSpeakerCount guesses how many speakers a recording has from how many
// analysis windows it produced: short clips are almost always one voice,
// medium ones a dialogue.
func deriveSpeakerCount(numWindows int) int {
	switch {
	case numWindows < 10:
		return 1
	case numWindows < 30:
		return 2
	default:
		k := numWindows / 20
		if k > 3 {
			k = 3
		}
		return k
	}
}

func clampSpeakerCount(k, numWindows int) int {
	if k < minSpeakers {
		k = minSpeakers
	}
	if k > maxSpeakers {
		k = maxSpeakers
	}
	if k > numWindows {
		k = numWindows
	}
	return k
}

// speakerID renders a zero-based cluster label as SPEAKER_NN, 1-indexed.
func speakerID(label int) string {
	return fmt.Sprintf("SPEAKER_%02d", label+1)
}

// renumberByFirstAppearance rewrites speaker identifiers so that the first
// speaker heard is SPEAKER_01, the next new voice SPEAKER_02, and so on.
func renumberByFirstAppearance(segments []SpeakerSegment) []SpeakerSegment {
	next := 1
	seen := map[string]string{}
	for i, seg := range segments {
		id, ok := seen[seg.Speaker]
		if !ok {
			id = fmt.Sprintf("SPEAKER_%02d", next)
			seen[seg.Speaker] = id
			next++
		}
		segments[i].Speaker = id
	}
	return segments
}

// MergeShortSegments folds segments shorter than minDuration into their
// predecessor when both carry the same speaker label, extending the
// predecessor's end instead of keeping a separate entry.
func MergeShortSegments(segments []SpeakerSegment, minDuration float64) []SpeakerSegment {
	if len(segments) == 0 {
		return nil
	}
	merged := make([]SpeakerSegment, 0, len(segments))
	current := segments[0]
	for _, seg := range segments[1:] {
		if seg.Duration() < minDuration && seg.Speaker == current.Speaker {
			current.End = seg.End
			continue
		}
		merged = append(merged, current)
		current = seg
	}
	return append(merged, current)
}

// Speakers returns the distinct identifiers present, in order of appearance.
func Speakers(segments []SpeakerSegment) []string {
	var out []string
	seen := map[string]bool{}
	for _, seg := range segments {
		if !seen[seg.Speaker] {
			seen[seg.Speaker] = true
			out = append(out, seg.Speaker)
		}
	}
	return out
}

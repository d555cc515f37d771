package diarize

import (
	"math"
	"testing"

	"github.com/ovozlab/speechmark/internal/dsp"
)

// twoToneSignal builds a synthetic "conversation": the first half is a low
// tone, the second half a high tone, so window voiceprints form two clearly
// separated timbre groups.
func twoToneSignal(t *testing.T, totalSecs float64, sampleRate int) dsp.Signal {
	t.Helper()
	n := int(totalSecs * float64(sampleRate))
	samples := make([]float64, n)
	half := n / 2
	for i := 0; i < n; i++ {
		ts := float64(i) / float64(sampleRate)
		freq := 150.0
		if i >= half {
			freq = 3000.0
		}
		samples[i] = 0.3 * math.Sin(2*math.Pi*freq*ts)
	}
	return dsp.NewSignal(samples, sampleRate)
}

func TestDiarize(t *testing.T) {
	t.Run("two_speakers_two_segments", func(t *testing.T) {
		sig := twoToneSignal(t, 10.0, dsp.DefaultSampleRate)

		segments := Diarize(sig, Options{NumSpeakers: 2})
		if len(segments) != 2 {
			t.Fatalf("expected 2 segments, got %d: %+v", len(segments), segments)
		}
		if segments[0].Speaker != "SPEAKER_01" || segments[1].Speaker != "SPEAKER_02" {
			t.Errorf("speakers must be numbered by first appearance: %+v", segments)
		}
		if !approxEqual(segments[0].Start, 0.0, 1e-9) {
			t.Errorf("first segment must start at 0, got %.3f", segments[0].Start)
		}
		if !approxEqual(segments[1].End, 10.0, 1e-9) {
			t.Errorf("last segment must close at the signal end, got %.3f", segments[1].End)
		}
		if !approxEqual(segments[0].End, segments[1].Start, 1e-9) {
			t.Errorf("segments must be contiguous: %+v", segments)
		}
		for _, seg := range segments {
			if seg.Confidence != 0.85 {
				t.Errorf("segment confidence = %.2f, want 0.85", seg.Confidence)
			}
		}
	})

	t.Run("full_coverage_no_gaps", func(t *testing.T) {
		sig := twoToneSignal(t, 12.3, dsp.DefaultSampleRate)

		segments := Diarize(sig, Options{NumSpeakers: 2})
		if len(segments) == 0 {
			t.Fatal("expected segments")
		}
		if !approxEqual(segments[0].Start, 0.0, 1e-9) {
			t.Errorf("coverage must start at 0")
		}
		for i := 1; i < len(segments); i++ {
			if !approxEqual(segments[i-1].End, segments[i].Start, 1e-9) {
				t.Errorf("gap or overlap between segment %d and %d", i-1, i)
			}
		}
		// Final partial window is dropped from analysis, yet the last
		// segment still closes at the true end time.
		if !approxEqual(segments[len(segments)-1].End, 12.3, 1e-9) {
			t.Errorf("last segment ends at %.3f, want 12.3", segments[len(segments)-1].End)
		}
	})

	t.Run("distinct_speakers_bounded", func(t *testing.T) {
		sig := twoToneSignal(t, 20.0, dsp.DefaultSampleRate)

		for _, k := range []int{1, 2, 3} {
			segments := Diarize(sig, Options{NumSpeakers: k})
			if got := len(Speakers(segments)); got > k {
				t.Errorf("NumSpeakers=%d produced %d distinct speakers", k, got)
			}
		}
	})

	t.Run("too_short_for_one_window", func(t *testing.T) {
		sig := dsp.NewSignal(make([]float64, dsp.DefaultSampleRate/2), dsp.DefaultSampleRate)
		if got := Diarize(sig, Options{}); got != nil {
			t.Errorf("sub-window signal should yield no segments, got %+v", got)
		}
	})

	t.Run("empty_signal", func(t *testing.T) {
		if got := Diarize(dsp.Signal{SampleRate: dsp.DefaultSampleRate}, Options{}); got != nil {
			t.Errorf("empty signal should yield no segments, got %+v", got)
		}
	})
}

func TestWindowVoiceprintDimension(t *testing.T) {
	sig := twoToneSignal(t, 1.0, dsp.DefaultSampleRate)

	// Windows shorter than a spectral frame fall back to zeroed voiceprints
	// that still carry the standard dimensionality.
	prints := windowVoiceprints(sig, 0.01)
	if len(prints) == 0 {
		t.Fatal("expected voiceprints")
	}
	for i, vp := range prints {
		if len(vp) != dsp.VoiceprintSize {
			t.Fatalf("voiceprint %d has %d coefficients, want %d", i, len(vp), dsp.VoiceprintSize)
		}
	}
}

func TestDeriveSpeakerCount(t *testing.T) {
	tests := []struct {
		windows int
		want    int
	}{
		{1, 1},
		{9, 1},
		{10, 2},
		{29, 2},
		{30, 1},  // 30/20 = 1
		{45, 2},  // 45/20 = 2
		{60, 3},  // 60/20 = 3
		{200, 3}, // capped at 3
	}
	for _, tt := range tests {
		if got := deriveSpeakerCount(tt.windows); got != tt.want {
			t.Errorf("deriveSpeakerCount(%d) = %d, want %d", tt.windows, got, tt.want)
		}
	}
}

func TestClampSpeakerCount(t *testing.T) {
	tests := []struct {
		k, windows, want int
	}{
		{0, 50, 1},   // below minimum
		{15, 50, 10}, // above maximum
		{5, 3, 3},    // more clusters than windows
		{2, 50, 2},   // in range
	}
	for _, tt := range tests {
		if got := clampSpeakerCount(tt.k, tt.windows); got != tt.want {
			t.Errorf("clampSpeakerCount(%d, %d) = %d, want %d", tt.k, tt.windows, got, tt.want)
		}
	}
}

func TestMergeShortSegments(t *testing.T) {
	segs := []SpeakerSegment{
		{Interval: dsp.Interval{Start: 0, End: 3}, Speaker: "SPEAKER_01", Confidence: 0.85},
		{Interval: dsp.Interval{Start: 3, End: 3.2}, Speaker: "SPEAKER_01", Confidence: 0.85},
		{Interval: dsp.Interval{Start: 3.2, End: 3.4}, Speaker: "SPEAKER_02", Confidence: 0.85},
		{Interval: dsp.Interval{Start: 3.4, End: 6}, Speaker: "SPEAKER_02", Confidence: 0.85},
	}

	merged := MergeShortSegments(segs, 0.5)
	if len(merged) != 3 {
		t.Fatalf("expected 3 segments after merge, got %d: %+v", len(merged), merged)
	}
	// The short same-speaker segment extends its predecessor.
	if !approxEqual(merged[0].End, 3.2, 1e-9) {
		t.Errorf("predecessor should absorb the short segment: %+v", merged[0])
	}
	// A short segment with a different speaker stays separate.
	if merged[1].Speaker != "SPEAKER_02" || !approxEqual(merged[1].Start, 3.2, 1e-9) {
		t.Errorf("speaker change must not merge: %+v", merged[1])
	}

	if got := MergeShortSegments(nil, 0.5); got != nil {
		t.Errorf("empty input should stay empty, got %+v", got)
	}
}

func TestClusterLabels(t *testing.T) {
	t.Run("separable_groups", func(t *testing.T) {
		features := [][]float64{
			{1, 0, 0}, {0.9, 0.1, 0}, {1, 0.05, 0},
			{0, 0, 1}, {0, 0.1, 0.9}, {0.05, 0, 1},
		}
		labels := clusterLabels(features, 2)
		if len(labels) != 6 {
			t.Fatalf("expected 6 labels, got %d", len(labels))
		}
		if labels[0] != labels[1] || labels[1] != labels[2] {
			t.Errorf("first group split: %v", labels)
		}
		if labels[3] != labels[4] || labels[4] != labels[5] {
			t.Errorf("second group split: %v", labels)
		}
		if labels[0] == labels[3] {
			t.Errorf("groups should be separated: %v", labels)
		}
	})

	t.Run("k_clamped_to_n", func(t *testing.T) {
		labels := clusterLabels([][]float64{{1, 0}}, 5)
		if len(labels) != 1 || labels[0] != 0 {
			t.Errorf("single point must form a single cluster, got %v", labels)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := clusterLabels(nil, 2); got != nil {
			t.Errorf("no features should yield no labels, got %v", got)
		}
	})
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

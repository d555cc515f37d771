package align

import (
	"strings"
	"testing"

	"github.com/ovozlab/speechmark/internal/diarize"
	"github.com/ovozlab/speechmark/internal/dsp"
	"github.com/ovozlab/speechmark/internal/emotion"
	"github.com/ovozlab/speechmark/internal/transcribe"
)

func speech(start, end float64, text string) transcribe.Segment {
	return transcribe.Segment{
		Interval:   dsp.Interval{Start: start, End: end},
		Text:       text,
		Confidence: 0.9,
	}
}

func speaker(start, end float64, id string) diarize.SpeakerSegment {
	return diarize.SpeakerSegment{
		Interval:   dsp.Interval{Start: start, End: end},
		Speaker:    id,
		Confidence: 0.85,
	}
}

func TestAlign(t *testing.T) {
	t.Run("midpoint_containment", func(t *testing.T) {
		speeches := []transcribe.Segment{
			speech(0.0, 2.0, "hello"),
			speech(2.0, 4.0, "world"),
		}
		speakers := []diarize.SpeakerSegment{speaker(0.0, 4.0, "SPEAKER_01")}

		aligned := Align(speeches, speakers)
		if len(aligned) != 2 {
			t.Fatalf("expected 2 aligned segments, got %d", len(aligned))
		}
		for i, seg := range aligned {
			if seg.Speaker != "SPEAKER_01" {
				t.Errorf("segment %d attributed to %q, want SPEAKER_01", i, seg.Speaker)
			}
			// Containment held, so the confidence is the plain average of the
			// two sources with no gap penalty.
			if want := (0.85 + 0.9) / 2; seg.Confidence != want {
				t.Errorf("segment %d confidence = %.4f, want %.4f", i, seg.Confidence, want)
			}
			if seg.Interval != speeches[i].Interval || seg.Text != speeches[i].Text {
				t.Errorf("segment %d must keep speech timing and text: %+v", i, seg)
			}
		}
	})

	t.Run("gap_falls_back_to_nearest", func(t *testing.T) {
		speeches := []transcribe.Segment{speech(4.0, 6.0, "in the gap")}
		speakers := []diarize.SpeakerSegment{
			speaker(0.0, 3.0, "SPEAKER_01"),
			speaker(8.0, 12.0, "SPEAKER_02"),
		}

		aligned := Align(speeches, speakers)
		if len(aligned) != 1 {
			t.Fatalf("expected 1 aligned segment, got %d", len(aligned))
		}
		// Midpoint 5.0: 2.0 from SPEAKER_01's end, 3.0 from SPEAKER_02's start.
		if aligned[0].Speaker != "SPEAKER_01" {
			t.Errorf("attributed to %q, want SPEAKER_01", aligned[0].Speaker)
		}
		if want := 0.9 * 0.7; !approx(aligned[0].Confidence, want) {
			t.Errorf("gap confidence = %.4f, want %.4f", aligned[0].Confidence, want)
		}
	})

	t.Run("speaker_change_mid_transcript", func(t *testing.T) {
		speeches := []transcribe.Segment{
			speech(0.0, 2.0, "first voice"),
			speech(5.0, 7.0, "second voice"),
		}
		speakers := []diarize.SpeakerSegment{
			speaker(0.0, 4.0, "SPEAKER_01"),
			speaker(4.0, 8.0, "SPEAKER_02"),
		}

		aligned := Align(speeches, speakers)
		if aligned[0].Speaker != "SPEAKER_01" || aligned[1].Speaker != "SPEAKER_02" {
			t.Errorf("wrong attribution: %+v", aligned)
		}
	})

	t.Run("no_speakers_at_all", func(t *testing.T) {
		aligned := Align([]transcribe.Segment{speech(0, 1, "x")}, nil)
		if len(aligned) != 1 {
			t.Fatalf("expected 1 segment, got %d", len(aligned))
		}
		if aligned[0].Speaker != "" {
			t.Errorf("expected empty attribution, got %q", aligned[0].Speaker)
		}
		if want := 0.9 * 0.7; !approx(aligned[0].Confidence, want) {
			t.Errorf("confidence = %.4f, want %.4f", aligned[0].Confidence, want)
		}
	})

	t.Run("empty_speech", func(t *testing.T) {
		if got := Align(nil, []diarize.SpeakerSegment{speaker(0, 4, "SPEAKER_01")}); got != nil {
			t.Errorf("no speech should align to nothing, got %+v", got)
		}
	})
}

func TestWithEmotions(t *testing.T) {
	aligned := []Segment{
		{Interval: dsp.Interval{Start: 0, End: 2}, Text: "calm", Speaker: "SPEAKER_01"},
		{Interval: dsp.Interval{Start: 6, End: 8}, Text: "after the window", Speaker: "SPEAKER_01"},
	}
	preds := []emotion.Prediction{
		{Interval: dsp.Interval{Start: 0, End: 3}, Emotion: emotion.Neutral, Confidence: 0.7},
		{Interval: dsp.Interval{Start: 3, End: 6}, Emotion: emotion.Happy, Confidence: 0.8},
	}

	out := WithEmotions(aligned, preds)
	if out[0].Emotion != emotion.Neutral {
		t.Errorf("contained midpoint should take its prediction, got %s", out[0].Emotion)
	}
	// Midpoint 7.0 is past every prediction; nearest boundary is 6.0 on the
	// happy window.
	if out[1].Emotion != emotion.Happy {
		t.Errorf("uncovered midpoint should take the nearest prediction, got %s", out[1].Emotion)
	}
	// Inputs must not be mutated.
	if aligned[0].Emotion != "" {
		t.Errorf("WithEmotions mutated its input: %+v", aligned[0])
	}

	// Without predictions the segments pass through unchanged.
	if got := WithEmotions(aligned, nil); len(got) != len(aligned) || got[0].Emotion != "" {
		t.Errorf("no predictions should leave segments unchanged: %+v", got)
	}
}

func TestFormatTranscript(t *testing.T) {
	aligned := []Segment{
		{Interval: dsp.Interval{Start: 0, End: 2}, Text: "hello", Speaker: "SPEAKER_01"},
		{Interval: dsp.Interval{Start: 2, End: 4}, Text: "again", Speaker: "SPEAKER_01"},
		{Interval: dsp.Interval{Start: 65, End: 70}, Text: "reply", Speaker: "SPEAKER_02"},
	}

	got := FormatTranscript(aligned)

	if !strings.HasPrefix(got, "SPEAKER_01 [00:00:00 --> 00:00:02]:") {
		t.Errorf("transcript must open with the first speaker heading:\n%s", got)
	}
	// Same-speaker segments share one heading.
	if strings.Count(got, "SPEAKER_01 [") != 1 {
		t.Errorf("consecutive same-speaker segments must group:\n%s", got)
	}
	if !strings.Contains(got, "SPEAKER_02 [00:01:05 --> 00:01:10]:") {
		t.Errorf("second speaker heading missing or mis-stamped:\n%s", got)
	}
	for _, text := range []string{"  hello", "  again", "  reply"} {
		if !strings.Contains(got, text) {
			t.Errorf("transcript missing line %q:\n%s", text, got)
		}
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

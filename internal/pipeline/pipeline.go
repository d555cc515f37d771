// Package pipeline runs the full analysis chain for one recording: silence
// trimming, speaker segmentation, emotion scoring, transcript alignment and
// subtitle preparation. Every stage is synchronous and pure over its inputs;
// callers that want parallelism run whole files on separate workers.
package pipeline

import (
	"fmt"

	"github.com/ovozlab/speechmark/internal/align"
	"github.com/ovozlab/speechmark/internal/audio"
	"github.com/ovozlab/speechmark/internal/config"
	"github.com/ovozlab/speechmark/internal/diarize"
	"github.com/ovozlab/speechmark/internal/dsp"
	"github.com/ovozlab/speechmark/internal/emotion"
	"github.com/ovozlab/speechmark/internal/subtitle"
	"github.com/ovozlab/speechmark/internal/transcribe"
)

// Stage names reported through the progress callback, in execution order.
const (
	StageTrim      = "Trimming silence"
	StageDiarize   = "Segmenting speakers"
	StageEmotion   = "Scoring emotions"
	StageAlign     = "Aligning transcript"
	StageSubtitles = "Preparing subtitles"
)

// ProgressFunc receives stage transitions; progress is 0.0 at stage start and
// 1.0 at stage completion.
type ProgressFunc func(stage string, progress float64)

// Result collects everything one run produced. A batch entry that failed
// carries Failed plus the message and nothing else.
type Result struct {
	Input  string
	Failed bool
	Err    string

	OriginalDuration float64
	Trimmed          dsp.Signal
	Silences         []dsp.SilenceInterval
	Removed          []dsp.Interval
	TrimStats        dsp.TrimStats

	Speakers []diarize.SpeakerSegment
	Emotions []emotion.Prediction
	Aligned  []align.Segment

	Transcript string
	Subtitles  []subtitle.Entry
}

// Run executes the chain over an in-memory signal. Speech segments, when
// supplied, are assumed to be on the trimmed signal's timeline (the
// recognizer sees the trimmed audio). A nil progress callback is fine.
func Run(sig dsp.Signal, speech []transcribe.Segment, cfg config.Root, progress ProgressFunc) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	report := func(stage string, p float64) {
		if progress != nil {
			progress(stage, p)
		}
	}
	res := &Result{OriginalDuration: sig.Duration()}

	report(StageTrim, 0)
	res.Silences = dsp.DetectSilence(sig, cfg.Silence.ThresholdDB, cfg.Silence.MinDuration)
	res.Trimmed, res.Removed, res.TrimStats = dsp.RemoveSilence(sig, res.Silences, cfg.Silence.KeepDuration)
	report(StageTrim, 1)

	report(StageDiarize, 0)
	speakers := diarize.Diarize(res.Trimmed, diarize.Options{
		NumSpeakers:     cfg.Diarization.NumSpeakers,
		SegmentDuration: cfg.Diarization.SegmentDuration,
	})
	res.Speakers = diarize.MergeShortSegments(speakers, cfg.Diarization.MinSegment)
	report(StageDiarize, 1)

	report(StageEmotion, 0)
	if len(speech) > 0 {
		intervals := make([]dsp.Interval, len(speech))
		for i, s := range speech {
			intervals[i] = s.Interval
		}
		res.Emotions = emotion.ScoreSegments(res.Trimmed, intervals, cfg.Emotion.Scales)
	} else {
		res.Emotions = emotion.ScoreWindows(res.Trimmed, cfg.Emotion.SegmentDuration, cfg.Emotion.Scales)
	}
	report(StageEmotion, 1)

	report(StageAlign, 0)
	res.Aligned = align.WithEmotions(align.Align(speech, res.Speakers), res.Emotions)
	res.Transcript = align.FormatTranscript(res.Aligned)
	report(StageAlign, 1)

	report(StageSubtitles, 0)
	entries := subtitle.Entries(res.Aligned, cfg.Subtitles.IncludeSpeaker)
	res.Subtitles = subtitle.MergeShort(entries, cfg.Subtitles.MaxChars, cfg.Subtitles.MaxDuration)
	report(StageSubtitles, 1)

	return res, nil
}

// ProcessFile loads a WAV file and runs the chain over it. Failures come back
// as a failed Result, never an error, so one bad file cannot stop a batch;
// the only hard error from this package is an invalid configuration, which
// Run reports before any file is touched.
func ProcessFile(path string, speech []transcribe.Segment, cfg config.Root, progress ProgressFunc) Result {
	sig, _, err := audio.ReadWAV(path)
	if err != nil {
		return Result{Input: path, Failed: true, Err: err.Error()}
	}

	res, err := Run(sig, speech, cfg, progress)
	if err != nil {
		return Result{Input: path, Failed: true, Err: err.Error()}
	}
	res.Input = path
	return *res
}

// SpeakerShares returns each speaker's share of attributed time in percent.
func SpeakerShares(speakers []diarize.SpeakerSegment) map[string]float64 {
	if len(speakers) == 0 {
		return nil
	}
	var total float64
	byID := map[string]float64{}
	for _, seg := range speakers {
		byID[seg.Speaker] += seg.Duration()
		total += seg.Duration()
	}
	if total <= 0 {
		return nil
	}
	out := make(map[string]float64, len(byID))
	for id, dur := range byID {
		out[id] = dur / total * 100
	}
	return out
}

// Summary renders a one-line account of a result for logs.
func (r *Result) Summary() string {
	if r.Failed {
		return fmt.Sprintf("%s: failed: %s", r.Input, r.Err)
	}
	return fmt.Sprintf("%s: %.1fs -> %.1fs (%.1f%% silence removed), %d speakers, %d subtitles",
		r.Input, r.TrimStats.OriginalDuration, r.TrimStats.ResultDuration,
		r.TrimStats.RemovedPercent, len(diarize.Speakers(r.Speakers)), len(r.Subtitles))
}

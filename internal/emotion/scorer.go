// Package emotion scores speech segments against a small closed set of
// emotional categories using deterministic prosodic rules. This is an
// intentionally simple heuristic, not a learned classifier: the same segment
// always produces the same label, and the reference scales and rule
// thresholds below are the whole model.
package emotion

import (
	"github.com/ovozlab/speechmark/internal/dsp"
)

// Label is one of the supported emotion categories.
type Label string

const (
	Neutral  Label = "neutral"
	Happy    Label = "happy"
	Sad      Label = "sad"
	Angry    Label = "angry"
	Stressed Label = "stressed"
)

// Labels lists every category in a stable order.
var Labels = []Label{Neutral, Happy, Sad, Angry, Stressed}

// Prediction is an emotion call for one time interval.
type Prediction struct {
	dsp.Interval
	Emotion    Label   `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// Scales holds the fixed reference values used to squash raw features into
// [0, 1] before the rules run.
type Scales struct {
	PitchRefHz    float64 `yaml:"pitch_ref_hz"`   // pitch_norm = pitch_mean / PitchRefHz
	EnergyScale   float64 `yaml:"energy_scale"`   // energy_norm = energy * EnergyScale
	ZCRScale      float64 `yaml:"zcr_scale"`      // zcr_norm = zcr_mean * ZCRScale
	TempoRefBPM   float64 `yaml:"tempo_ref_bpm"`  // tempo_norm = tempo / TempoRefBPM
	MinConfidence float64 `yaml:"min_confidence"` // winner below this forces neutral
}

// DefaultScales returns the scales the rules were tuned against.
func DefaultScales() Scales {
	return Scales{
		PitchRefHz:    200.0,
		EnergyScale:   1000.0,
		ZCRScale:      10.0,
		TempoRefBPM:   150.0,
		MinConfidence: 0.3,
	}
}

// DefaultSegmentDuration splits an unsegmented signal into windows of this
// many seconds.
const DefaultSegmentDuration = 3.0

// neutralFallbackConfidence is used when no rule wins convincingly.
const neutralFallbackConfidence = 0.7

// Score classifies one already-cut segment of audio. start/end place the
// prediction on the original timeline. Feature extraction that produces
// nothing useful (silent or too-short audio) falls back to a neutral call at
// 0.5 rather than failing.
func Score(seg dsp.Signal, start, end float64, scales Scales) Prediction {
	iv := dsp.Interval{Start: start, End: end}
	if seg.Empty() {
		return Prediction{Interval: iv, Emotion: Neutral, Confidence: 0.5}
	}

	f := dsp.ExtractFeatures(seg)
	label, confidence := classify(f, scales)
	return Prediction{Interval: iv, Emotion: label, Confidence: confidence}
}

// ScoreSegments classifies the signal once per supplied interval. Intervals
// outside the signal clip to it; an empty interval list scores nothing.
func ScoreSegments(sig dsp.Signal, intervals []dsp.Interval, scales Scales) []Prediction {
	var out []Prediction
	for _, iv := range intervals {
		seg := sig.Slice(iv.Start, iv.End)
		out = append(out, Score(seg, iv.Start, iv.End, scales))
	}
	return out
}

// ScoreWindows splits the whole signal into fixed windows of segDur seconds
// (the final window clipped to the signal end) and classifies each. This is
// the coarse-grid fallback when no transcript or speaker segmentation exists.
func ScoreWindows(sig dsp.Signal, segDur float64, scales Scales) []Prediction {
	if segDur <= 0 {
		segDur = DefaultSegmentDuration
	}
	total := sig.Duration()
	var out []Prediction
	for start := 0.0; start < total; start += segDur {
		end := start + segDur
		if end > total {
			end = total
		}
		seg := sig.Slice(start, end)
		out = append(out, Score(seg, start, end, scales))
	}
	return out
}

// classify applies the scoring rules to normalised features and returns the
// winning label. The neutral baseline of 0.5 means a rule has to fire with
// real evidence to beat it; a winner under MinConfidence is overridden to
// neutral at the fallback confidence.
func classify(f dsp.Features, scales Scales) (Label, float64) {
	pitch := clamp01(f.PitchMean / scales.PitchRefHz)
	energy := clamp01(f.Energy * scales.EnergyScale)
	zcr := clamp01(f.ZCRMean * scales.ZCRScale)
	tempo := clamp01(f.Tempo / scales.TempoRefBPM)

	scores := map[Label]float64{
		Neutral:  0.5,
		Happy:    0,
		Sad:      0,
		Angry:    0,
		Stressed: 0,
	}

	// Happy: raised pitch with raised energy.
	if pitch > 0.6 && energy > 0.5 {
		scores[Happy] = pitch*0.5 + energy*0.5
	}
	// Sad: low pitch with low energy.
	if pitch < 0.4 && energy < 0.4 {
		scores[Sad] = (1-pitch)*0.5 + (1-energy)*0.5
	}
	// Angry: raised energy with a noisy, consonant-heavy signal.
	if energy > 0.6 && zcr > 0.5 {
		scores[Angry] = energy*0.5 + zcr*0.5
	}
	// Stressed: fast delivery at moderate energy.
	if tempo > 0.7 && energy > 0.3 && energy < 0.7 {
		scores[Stressed] = tempo*0.6 + energy*0.4
	}

	// Fixed evaluation order so ties resolve the same way every run.
	best := Neutral
	bestScore := scores[Neutral]
	for _, l := range []Label{Happy, Sad, Angry, Stressed} {
		if scores[l] > bestScore {
			best = l
			bestScore = scores[l]
		}
	}

	if bestScore < scales.MinConfidence {
		return Neutral, neutralFallbackConfidence
	}
	return best, bestScore
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Distribution returns each label's share of the prediction list in percent.
// Labels with no predictions are omitted.
func Distribution(preds []Prediction) map[Label]float64 {
	if len(preds) == 0 {
		return nil
	}
	counts := map[Label]int{}
	for _, p := range preds {
		counts[p.Emotion]++
	}
	out := make(map[Label]float64, len(counts))
	for l, c := range counts {
		out[l] = float64(c) / float64(len(preds)) * 100
	}
	return out
}

package dsp

import (
	"math"
	"testing"
)

// testSignalOptions configures the synthetic audio to generate.
type testSignalOptions struct {
	DurationSecs float64 // total duration in seconds
	SampleRate   int     // sample rate (default: 16000)
	ToneFreq     float64 // sine wave frequency in Hz (0 = no tone)
	ToneLevel    float64 // tone level in dBFS (e.g. -20.0)
	NoiseLevel   float64 // white noise level in dBFS (0 = no noise)
	SilenceGap   struct {
		Start    float64 // start time of silence gap in seconds
		Duration float64 // duration of silence gap in seconds
	}
}

// generateTestSignal creates a synthetic mono signal for testing: optionally
// a sine tone, deterministic white noise, and a silence gap.
func generateTestSignal(t *testing.T, opts testSignalOptions) Signal {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.DurationSecs == 0 {
		opts.DurationSecs = 5.0
	}

	totalSamples := int(opts.DurationSecs * float64(opts.SampleRate))
	samples := make([]float64, totalSamples)

	toneAmp := 0.0
	if opts.ToneFreq > 0 && opts.ToneLevel < 0 {
		toneAmp = math.Pow(10.0, opts.ToneLevel/20.0)
	}
	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, opts.NoiseLevel/20.0)
	}

	silenceStart := int(opts.SilenceGap.Start * float64(opts.SampleRate))
	silenceEnd := int((opts.SilenceGap.Start + opts.SilenceGap.Duration) * float64(opts.SampleRate))

	// Simple LCG random number generator for deterministic noise.
	rngState := uint32(12345)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	for i := 0; i < totalSamples; i++ {
		if i >= silenceStart && i < silenceEnd && opts.SilenceGap.Duration > 0 {
			continue
		}
		var sample float64
		if toneAmp > 0 {
			ts := float64(i) / float64(opts.SampleRate)
			sample += toneAmp * math.Sin(2.0*math.Pi*opts.ToneFreq*ts)
		}
		if noiseAmp > 0 {
			sample += noiseAmp * nextRandom()
		}
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		samples[i] = sample
	}

	return NewSignal(samples, opts.SampleRate)
}

// approxEqual reports whether a and b differ by at most tol.
func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

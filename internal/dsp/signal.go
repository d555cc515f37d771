// Package dsp provides the signal-level analysis primitives for the
// speechmark pipeline: silence detection, silence trimming and the short-time
// feature extraction that the diarizer and emotion scorer build on.
//
// Every function here is a pure, synchronous transformation over immutable
// inputs. Stages return new Signal values rather than mutating their input,
// which is what lets a caller run many whole-file pipelines in parallel
// without sharing state.
package dsp

import (
	"math"
)

// DefaultSampleRate is the pipeline-wide sample rate in Hz. Upstream format
// handling and resampling happen outside the core; everything in this module
// assumes mono audio at this rate unless the Signal says otherwise.
const DefaultSampleRate = 16000

// Signal is a mono audio signal: float64 samples in [-1, 1] plus the sample
// rate they were captured at. Treat it as immutable once produced by a stage.
type Signal struct {
	Samples    []float64
	SampleRate int
}

// NewSignal wraps samples at the given rate. A zero or negative rate falls
// back to DefaultSampleRate so a malformed header cannot produce divide-by-zero
// durations downstream.
func NewSignal(samples []float64, sampleRate int) Signal {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return Signal{Samples: samples, SampleRate: sampleRate}
}

// Duration returns the signal length in seconds.
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Empty reports whether the signal carries no samples.
func (s Signal) Empty() bool { return len(s.Samples) == 0 }

// SampleIndex converts a time in seconds to a sample index, clamped to the
// valid range for this signal.
func (s Signal) SampleIndex(t float64) int {
	idx := int(t * float64(s.SampleRate))
	if idx < 0 {
		return 0
	}
	if idx > len(s.Samples) {
		return len(s.Samples)
	}
	return idx
}

// Slice returns the sub-signal between start and end seconds. The slice
// aliases the receiver's sample storage; callers must not write through it.
func (s Signal) Slice(start, end float64) Signal {
	lo := s.SampleIndex(start)
	hi := s.SampleIndex(end)
	if hi < lo {
		hi = lo
	}
	return Signal{Samples: s.Samples[lo:hi], SampleRate: s.SampleRate}
}

// Interval is a half-open time range in seconds on one signal's timeline.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() float64 { return iv.End - iv.Start }

// Midpoint returns the temporal centre of the interval.
func (iv Interval) Midpoint() float64 { return (iv.Start + iv.End) / 2 }

// Contains reports whether t lies within the interval, bounds inclusive.
func (iv Interval) Contains(t float64) bool { return iv.Start <= t && t <= iv.End }

// rms computes the root-mean-square amplitude of a sample window.
func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// amplitudeDB converts a linear amplitude to decibels relative to ref.
// Values at or below zero clamp to the silence floor.
func amplitudeDB(amp, ref float64) float64 {
	const silenceFloorDB = -100.0
	if amp <= 0 || ref <= 0 {
		return silenceFloorDB
	}
	db := 20.0 * math.Log10(amp/ref)
	if db < silenceFloorDB {
		return silenceFloorDB
	}
	return db
}

package dsp

// Silence detection and removal.
//
// Detection runs short-time RMS analysis over fixed overlapping frames and
// flags frames whose level, in dB relative to the loudest frame, stays below
// a threshold. Contiguous silent frames become candidate intervals; runs
// shorter than the minimum duration are discarded. Removal excises the
// detected intervals but keeps a small pad at each boundary so the result
// still breathes naturally.

const (
	// silenceFrameLength is the analysis frame in samples (~32 ms at 16 kHz).
	silenceFrameLength = 512
	// silenceHopLength is the frame advance: half a frame, so frames overlap.
	silenceHopLength = silenceFrameLength / 2
)

// Silence policy defaults. These are policy constants, not derived values;
// the config layer exposes each of them.
const (
	DefaultSilenceThresholdDB  = -40.0
	DefaultMinSilenceDuration  = 0.5
	DefaultKeepSilenceDuration = 0.1
	DefaultMinSegmentDuration  = 1.0
)

// SilenceInterval is a detected span of low-energy audio. LevelDB records the
// mean frame level inside the span relative to the signal's peak frame, for
// reporting only.
type SilenceInterval struct {
	Interval
	LevelDB float64 `json:"level_db"`
}

// TrimStats summarises what RemoveSilence did to a signal.
type TrimStats struct {
	OriginalDuration float64 `json:"original_duration"`
	ResultDuration   float64 `json:"result_duration"`
	RemovedDuration  float64 `json:"removed_duration"`
	RemovedPercent   float64 `json:"removed_percent"`
}

// Chunk is a contiguous span of speech cut out of a signal at silence
// boundaries, with its position on the original timeline.
type Chunk struct {
	Signal Signal
	Interval
}

// DetectSilence returns the ordered, disjoint silence intervals of sig: spans
// at least minDuration seconds long whose short-time level stays below
// thresholdDB relative to the signal's peak frame energy. A degenerate signal
// yields an empty list rather than an error.
func DetectSilence(sig Signal, thresholdDB, minDuration float64) []SilenceInterval {
	if sig.Empty() || len(sig.Samples) < silenceFrameLength {
		return nil
	}

	// Per-frame RMS over overlapping frames. The final partial frame is
	// evaluated too so trailing silence is not lost.
	var frameRMS []float64
	for off := 0; off < len(sig.Samples); off += silenceHopLength {
		end := off + silenceFrameLength
		if end > len(sig.Samples) {
			end = len(sig.Samples)
		}
		frameRMS = append(frameRMS, rms(sig.Samples[off:end]))
		if end == len(sig.Samples) {
			break
		}
	}

	peak := 0.0
	for _, v := range frameRMS {
		if v > peak {
			peak = v
		}
	}

	frameTime := func(i int) float64 {
		return float64(i*silenceHopLength) / float64(sig.SampleRate)
	}

	var out []SilenceInterval
	inSilence := false
	runStart := 0
	var runLevelSum float64
	runFrames := 0

	emit := func(startFrame, endFrame int) {
		start := frameTime(startFrame)
		end := frameTime(endFrame)
		if end-start < minDuration {
			return
		}
		level := 0.0
		if runFrames > 0 {
			level = runLevelSum / float64(runFrames)
		}
		out = append(out, SilenceInterval{
			Interval: Interval{Start: start, End: end},
			LevelDB:  level,
		})
	}

	for i, v := range frameRMS {
		db := amplitudeDB(v, peak)
		if db < thresholdDB {
			if !inSilence {
				inSilence = true
				runStart = i
				runLevelSum = 0
				runFrames = 0
			}
			runLevelSum += db
			runFrames++
			continue
		}
		if inSilence {
			emit(runStart, i)
			inSilence = false
		}
	}
	// A silent run that reaches the final frame still counts, and closes at
	// the true end of the signal rather than the last frame boundary.
	if inSilence {
		start := frameTime(runStart)
		end := sig.Duration()
		if end-start >= minDuration {
			level := 0.0
			if runFrames > 0 {
				level = runLevelSum / float64(runFrames)
			}
			out = append(out, SilenceInterval{
				Interval: Interval{Start: start, End: end},
				LevelDB:  level,
			})
		}
	}

	return out
}

// RemoveSilence produces a new signal with the given silence intervals mostly
// excised. keepDuration seconds of silence are retained at each boundary when
// the interval is long enough to hold two pads; shorter intervals are removed
// in full. The returned intervals describe what was actually cut (narrowed by
// the pad on each side where a pad was kept), and the stats summarise the
// overall reduction. With no silence the input comes back unchanged.
func RemoveSilence(sig Signal, silences []SilenceInterval, keepDuration float64) (Signal, []Interval, TrimStats) {
	stats := TrimStats{OriginalDuration: sig.Duration()}
	if sig.Empty() || len(silences) == 0 {
		stats.ResultDuration = stats.OriginalDuration
		return sig, nil, stats
	}

	keepSamples := int(keepDuration * float64(sig.SampleRate))
	var segments [][]float64
	var removed []Interval
	prevEnd := 0.0

	for _, sil := range silences {
		if sil.Start > prevEnd {
			segments = append(segments, sig.Samples[sig.SampleIndex(prevEnd):sig.SampleIndex(sil.Start)])
		}

		lo := sig.SampleIndex(sil.Start)
		hi := sig.SampleIndex(sil.End)
		if keepSamples > 0 && hi-lo > keepSamples*2 {
			segments = append(segments, sig.Samples[lo:lo+keepSamples])
			segments = append(segments, sig.Samples[hi-keepSamples:hi])
			removed = append(removed, Interval{Start: sil.Start + keepDuration, End: sil.End - keepDuration})
		} else {
			removed = append(removed, sil.Interval)
		}
		prevEnd = sil.End
	}

	if prevEnd < sig.Duration() {
		segments = append(segments, sig.Samples[sig.SampleIndex(prevEnd):])
	}

	total := 0
	for _, seg := range segments {
		total += len(seg)
	}
	cleaned := make([]float64, 0, total)
	for _, seg := range segments {
		cleaned = append(cleaned, seg...)
	}

	out := Signal{Samples: cleaned, SampleRate: sig.SampleRate}
	stats.ResultDuration = out.Duration()
	stats.RemovedDuration = stats.OriginalDuration - stats.ResultDuration
	if stats.OriginalDuration > 0 {
		stats.RemovedPercent = stats.RemovedDuration / stats.OriginalDuration * 100
	}
	return out, removed, stats
}

// SpeechIntervals returns the complement of the given silences over the full
// signal duration: the spans where somebody is (probably) talking. A signal
// with no detected silence is one whole speech interval.
func SpeechIntervals(sig Signal, silences []SilenceInterval) []Interval {
	var out []Interval
	prevEnd := 0.0
	total := sig.Duration()
	for _, sil := range silences {
		if sil.Start > prevEnd {
			out = append(out, Interval{Start: prevEnd, End: sil.Start})
		}
		prevEnd = sil.End
	}
	if prevEnd < total {
		out = append(out, Interval{Start: prevEnd, End: total})
	}
	return out
}

// SplitOnSilence cuts the signal into speech chunks at silence boundaries,
// dropping chunks shorter than minSegment seconds. Chunk signals alias the
// input's sample storage.
func SplitOnSilence(sig Signal, silences []SilenceInterval, minSegment float64) []Chunk {
	if sig.Empty() {
		return nil
	}
	var out []Chunk
	for _, iv := range SpeechIntervals(sig, silences) {
		if iv.Duration() < minSegment {
			continue
		}
		out = append(out, Chunk{
			Signal:   sig.Slice(iv.Start, iv.End),
			Interval: iv,
		})
	}
	return out
}

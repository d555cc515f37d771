package dsp

// Short-time feature extraction shared by the diarizer (MFCC voiceprints) and
// the emotion scorer (prosodic statistics). All extraction is deterministic:
// the same samples always produce the same numbers.

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

const (
	// featureFrameLength is the spectral analysis frame in samples.
	featureFrameLength = 512
	// featureHopLength advances half a frame between spectra.
	featureHopLength = featureFrameLength / 2

	// pitchFrameLength is larger than the spectral frame so the
	// autocorrelation can see at least two periods of the lowest pitch.
	pitchFrameLength = 1024
	pitchHopLength   = 512

	// PitchFloorHz and PitchCeilHz bound the fundamental-frequency search to
	// the human voice range.
	PitchFloorHz = 50.0
	PitchCeilHz  = 500.0

	// VoiceprintSize is the number of cepstral coefficients in a voiceprint.
	VoiceprintSize = 13
	// numMelBands is the mel filterbank size feeding the cepstrum.
	numMelBands = 26
)

// Features holds the per-segment statistics the emotion scorer works from.
type Features struct {
	PitchMean    float64 // Hz, mean of the voiced-frame F0 track
	PitchStd     float64 // Hz, spread of the F0 track
	Energy       float64 // mean squared amplitude over the segment
	ZCRMean      float64 // zero-crossing rate mean across frames
	ZCRStd       float64 // zero-crossing rate spread
	CentroidMean float64 // Hz, mean spectral centroid
	MFCCMean     float64 // grand mean over all cepstral coefficients
	MFCCStd      float64 // grand spread over all cepstral coefficients
	Tempo        float64 // BPM estimate from onset energy flux
}

// ExtractFeatures computes the full prosodic/spectral feature set for one
// segment. Segments too short for spectral analysis come back zeroed rather
// than failing; the caller treats that as a neutral observation.
func ExtractFeatures(sig Signal) Features {
	var f Features
	if sig.Empty() {
		return f
	}

	// Energy uses the whole segment, not frames.
	var sum float64
	for _, v := range sig.Samples {
		sum += v * v
	}
	f.Energy = sum / float64(len(sig.Samples))

	if pitch := pitchTrack(sig); len(pitch) > 0 {
		f.PitchMean = stat.Mean(pitch, nil)
		f.PitchStd = math.Sqrt(stat.Variance(pitch, nil))
	}

	if zcr := zeroCrossingRates(sig); len(zcr) > 0 {
		f.ZCRMean = stat.Mean(zcr, nil)
		f.ZCRStd = math.Sqrt(stat.Variance(zcr, nil))
	}

	spectra := magnitudeSpectra(sig)
	if len(spectra) > 0 {
		var centroids []float64
		for _, mag := range spectra {
			centroids = append(centroids, spectralCentroid(mag, sig.SampleRate))
		}
		f.CentroidMean = stat.Mean(centroids, nil)

		mfcc := mfccFromSpectra(spectra, sig.SampleRate)
		var flat []float64
		for _, row := range mfcc {
			flat = append(flat, row...)
		}
		if len(flat) > 0 {
			f.MFCCMean = stat.Mean(flat, nil)
			f.MFCCStd = math.Sqrt(stat.Variance(flat, nil))
		}

		f.Tempo = tempoEstimate(spectra, sig.SampleRate)
	}

	return f
}

// Voiceprint returns the fixed-size timbral summary of a window: the mean of
// each cepstral coefficient across the window's frames. Windows too short for
// a single frame yield nil.
func Voiceprint(sig Signal) []float64 {
	spectra := magnitudeSpectra(sig)
	if len(spectra) == 0 {
		return nil
	}
	mfcc := mfccFromSpectra(spectra, sig.SampleRate)
	print := make([]float64, VoiceprintSize)
	for _, frame := range mfcc {
		for i, c := range frame {
			print[i] += c
		}
	}
	for i := range print {
		print[i] /= float64(len(mfcc))
	}
	return print
}

// magnitudeSpectra slides a Hann-windowed frame over the signal and returns
// one magnitude spectrum per frame (featureFrameLength/2+1 bins each).
func magnitudeSpectra(sig Signal) [][]float64 {
	if len(sig.Samples) < featureFrameLength {
		return nil
	}
	fft := fourier.NewFFT(featureFrameLength)
	window := hannWindow(featureFrameLength)
	buf := make([]float64, featureFrameLength)

	var out [][]float64
	for off := 0; off+featureFrameLength <= len(sig.Samples); off += featureHopLength {
		for i := range buf {
			buf[i] = sig.Samples[off+i] * window[i]
		}
		coeffs := fft.Coefficients(nil, buf)
		mag := make([]float64, len(coeffs))
		for i, c := range coeffs {
			mag[i] = cmplxAbs(c)
		}
		out = append(out, mag)
	}
	return out
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}

func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// spectralCentroid returns the magnitude-weighted mean frequency of one
// spectrum in Hz.
func spectralCentroid(mag []float64, sampleRate int) float64 {
	var num, den float64
	binHz := float64(sampleRate) / float64(featureFrameLength)
	for i, m := range mag {
		num += float64(i) * binHz * m
		den += m
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// zeroCrossingRates returns the per-frame sign-change rate, normalised to
// crossings per sample so values land in [0, 1].
func zeroCrossingRates(sig Signal) []float64 {
	if len(sig.Samples) < featureFrameLength {
		return nil
	}
	var out []float64
	for off := 0; off+featureFrameLength <= len(sig.Samples); off += featureHopLength {
		crossings := 0
		frame := sig.Samples[off : off+featureFrameLength]
		for i := 1; i < len(frame); i++ {
			if (frame[i-1] >= 0) != (frame[i] >= 0) {
				crossings++
			}
		}
		out = append(out, float64(crossings)/float64(len(frame)))
	}
	return out
}

// pitchTrack estimates the fundamental frequency of each voiced frame via
// normalised autocorrelation, restricted to [PitchFloorHz, PitchCeilHz].
// Unvoiced frames (weak correlation peak) are omitted from the track.
func pitchTrack(sig Signal) []float64 {
	if len(sig.Samples) < pitchFrameLength {
		return nil
	}
	minLag := int(float64(sig.SampleRate) / PitchCeilHz)
	maxLag := int(float64(sig.SampleRate) / PitchFloorHz)
	if maxLag >= pitchFrameLength {
		maxLag = pitchFrameLength - 1
	}
	if minLag < 1 {
		minLag = 1
	}

	// Voicing gate: frames whose best normalised correlation falls below
	// this are treated as unvoiced and contribute nothing to the track.
	const voicedThreshold = 0.3

	var track []float64
	for off := 0; off+pitchFrameLength <= len(sig.Samples); off += pitchHopLength {
		frame := sig.Samples[off : off+pitchFrameLength]

		var energy float64
		for _, v := range frame {
			energy += v * v
		}
		if energy == 0 {
			continue
		}

		bestLag := 0
		bestCorr := 0.0
		for lag := minLag; lag <= maxLag; lag++ {
			var corr float64
			for i := 0; i+lag < len(frame); i++ {
				corr += frame[i] * frame[i+lag]
			}
			corr /= energy
			if corr > bestCorr {
				bestCorr = corr
				bestLag = lag
			}
		}
		if bestLag > 0 && bestCorr >= voicedThreshold {
			track = append(track, float64(sig.SampleRate)/float64(bestLag))
		}
	}
	return track
}

// tempoEstimate derives a beats-per-minute figure from the onset strength
// envelope (positive spectral flux between successive frames), by picking the
// envelope autocorrelation peak inside a plausible tempo range.
func tempoEstimate(spectra [][]float64, sampleRate int) float64 {
	if len(spectra) < 4 {
		return 0
	}
	onset := make([]float64, len(spectra)-1)
	for t := 1; t < len(spectra); t++ {
		var flux float64
		prev, cur := spectra[t-1], spectra[t]
		for i := range cur {
			if d := cur[i] - prev[i]; d > 0 {
				flux += d
			}
		}
		onset[t-1] = flux
	}

	mean := stat.Mean(onset, nil)
	for i := range onset {
		onset[i] -= mean
	}

	// Frames per second of the onset envelope.
	fps := float64(sampleRate) / float64(featureHopLength)
	const minBPM, maxBPM = 40.0, 200.0
	minLag := int(fps * 60.0 / maxBPM)
	maxLag := int(fps * 60.0 / minBPM)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(onset) {
		maxLag = len(onset) - 1
	}
	if maxLag < minLag {
		return 0
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(onset); i++ {
			corr += onset[i] * onset[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	if bestLag == 0 || bestCorr <= 0 {
		return 0
	}
	return 60.0 * fps / float64(bestLag)
}

// mfccFromSpectra maps magnitude spectra through a mel filterbank and a
// DCT-II to per-frame cepstral coefficient vectors of length VoiceprintSize.
func mfccFromSpectra(spectra [][]float64, sampleRate int) [][]float64 {
	bank := melFilterbank(sampleRate)
	out := make([][]float64, 0, len(spectra))
	for _, mag := range spectra {
		// Filterbank energies in log domain.
		logMel := make([]float64, numMelBands)
		for b, filter := range bank {
			var e float64
			for i, w := range filter {
				e += w * mag[i] * mag[i]
			}
			logMel[b] = math.Log(e + 1e-10)
		}
		out = append(out, dctII(logMel, VoiceprintSize))
	}
	return out
}

// melFilterbank builds numMelBands triangular filters over the spectrum bins,
// spaced evenly on the mel scale from 0 Hz to Nyquist.
func melFilterbank(sampleRate int) [][]float64 {
	nBins := featureFrameLength/2 + 1
	hzToMel := func(hz float64) float64 { return 2595.0 * math.Log10(1.0+hz/700.0) }
	melToHz := func(mel float64) float64 { return 700.0 * (math.Pow(10, mel/2595.0) - 1.0) }

	maxMel := hzToMel(float64(sampleRate) / 2)
	// numMelBands filters need numMelBands+2 edge points.
	edges := make([]float64, numMelBands+2)
	for i := range edges {
		hz := melToHz(maxMel * float64(i) / float64(numMelBands+1))
		edges[i] = hz / (float64(sampleRate) / 2) * float64(nBins-1)
	}

	bank := make([][]float64, numMelBands)
	for b := range bank {
		filter := make([]float64, nBins)
		lo, mid, hi := edges[b], edges[b+1], edges[b+2]
		for i := 0; i < nBins; i++ {
			x := float64(i)
			switch {
			case x > lo && x <= mid && mid > lo:
				filter[i] = (x - lo) / (mid - lo)
			case x > mid && x < hi && hi > mid:
				filter[i] = (hi - x) / (hi - mid)
			}
		}
		bank[b] = filter
	}
	return bank
}

// dctII computes the first n type-II DCT coefficients of x.
func dctII(x []float64, n int) []float64 {
	out := make([]float64, n)
	N := float64(len(x))
	for k := 0; k < n; k++ {
		var sum float64
		for i, v := range x {
			sum += v * math.Cos(math.Pi*float64(k)*(float64(i)+0.5)/N)
		}
		out[k] = sum
	}
	return out
}

// Package audio provides WAV file I/O for the pipeline. Decoding normalises
// integer PCM to float64 samples in [-1, 1]; encoding writes 16-bit PCM.
package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ovozlab/speechmark/internal/dsp"
)

// Metadata describes a decoded WAV file.
type Metadata struct {
	Duration   float64 // seconds
	SampleRate int
	Channels   int
	BitDepth   int
}

// ReadWAV decodes a mono WAV file into a Signal. Multichannel input is
// rejected rather than silently downmixed; convert upstream.
func ReadWAV(path string) (dsp.Signal, *Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return dsp.Signal{}, nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	sig, md, err := DecodeWAV(f)
	if err != nil {
		return dsp.Signal{}, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return sig, md, nil
}

// DecodeWAV decodes a mono WAV stream into a Signal.
func DecodeWAV(r io.ReadSeeker) (dsp.Signal, *Metadata, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return dsp.Signal{}, nil, fmt.Errorf("not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return dsp.Signal{}, nil, fmt.Errorf("failed to read PCM data: %w", err)
	}
	if buf.Format.NumChannels != 1 {
		return dsp.Signal{}, nil, fmt.Errorf("expected mono audio, got %d channels", buf.Format.NumChannels)
	}
	if buf.Format.SampleRate <= 0 {
		return dsp.Signal{}, nil, fmt.Errorf("invalid sample rate %d", buf.Format.SampleRate)
	}

	bitDepth := int(dec.BitDepth)
	scale := float64(int(1) << (bitDepth - 1))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / scale
	}

	sig := dsp.NewSignal(samples, buf.Format.SampleRate)
	md := &Metadata{
		Duration:   sig.Duration(),
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   bitDepth,
	}
	return sig, md, nil
}

// WriteWAV encodes the signal as 16-bit mono PCM at path, creating parent
// directories as needed.
func WriteWAV(path string, sig dsp.Signal) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := EncodeWAV(f, sig); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// EncodeWAV writes the signal to w as 16-bit mono PCM. Samples outside
// [-1, 1] are clipped.
func EncodeWAV(w io.WriteSeeker, sig dsp.Signal) error {
	enc := wav.NewEncoder(w, sig.SampleRate, 16, 1, 1)

	data := make([]int, len(sig.Samples))
	for i, s := range sig.Samples {
		if s > 1 {
			s = 1
		}
		if s < -1 {
			s = -1
		}
		data[i] = int(s * 32767.0)
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  sig.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write PCM data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}

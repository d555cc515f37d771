// Package config loads pipeline policy settings from a YAML file and checks
// them for sanity. Every knob has a default, so an absent file or section is
// never an error; an out-of-range value is, since it signals a usage mistake
// rather than a data condition.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ovozlab/speechmark/internal/emotion"
)

// Silence configures silence detection and trimming.
type Silence struct {
	ThresholdDB  float64 `yaml:"threshold_db"`
	MinDuration  float64 `yaml:"min_duration"`
	KeepDuration float64 `yaml:"keep_duration"`
	MinSegment   float64 `yaml:"min_segment"`
}

// Diarization configures speaker segmentation.
type Diarization struct {
	NumSpeakers     int     `yaml:"num_speakers"`
	SegmentDuration float64 `yaml:"segment_duration"`
	MinSegment      float64 `yaml:"min_segment"`
}

// Emotion configures the emotion scorer's window and reference scales.
type Emotion struct {
	SegmentDuration float64        `yaml:"segment_duration"`
	Scales          emotion.Scales `yaml:"scales"`
}

// Subtitles configures subtitle rendering and merging.
type Subtitles struct {
	MaxChars       int     `yaml:"max_chars"`
	MaxDuration    float64 `yaml:"max_duration"`
	IncludeSpeaker bool    `yaml:"include_speaker"`
}

// Transcription configures the external recognizer.
type Transcription struct {
	ServiceURL   string `yaml:"service_url"`
	Language     string `yaml:"language"`
	SegmentsFile string `yaml:"segments_file"`
}

// Root is the full configuration tree.
type Root struct {
	Silence       Silence       `yaml:"silence"`
	Diarization   Diarization   `yaml:"diarization"`
	Emotion       Emotion       `yaml:"emotion"`
	Subtitles     Subtitles     `yaml:"subtitles"`
	Transcription Transcription `yaml:"transcription"`
	OutputDir     string        `yaml:"output_dir"`
}

// Default returns the configuration used when no file overrides it.
func Default() Root {
	return Root{
		Silence: Silence{
			ThresholdDB:  -40.0,
			MinDuration:  0.5,
			KeepDuration: 0.1,
			MinSegment:   1.0,
		},
		Diarization: Diarization{
			SegmentDuration: 1.0,
			MinSegment:      0.5,
		},
		Emotion: Emotion{
			SegmentDuration: 3.0,
			Scales:          emotion.DefaultScales(),
		},
		Subtitles: Subtitles{
			MaxChars:       80,
			MaxDuration:    7.0,
			IncludeSpeaker: true,
		},
		Transcription: Transcription{
			Language: "en",
		},
		OutputDir: "output",
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults untouched.
func Load(path string) (Root, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings that would make a run meaningless.
func (c Root) Validate() error {
	if c.Silence.ThresholdDB >= 0 {
		return fmt.Errorf("silence threshold must be negative dB, got %.1f", c.Silence.ThresholdDB)
	}
	if c.Silence.MinDuration <= 0 {
		return fmt.Errorf("minimum silence duration must be positive, got %.2f", c.Silence.MinDuration)
	}
	if c.Silence.KeepDuration < 0 {
		return fmt.Errorf("keep-silence pad must not be negative, got %.2f", c.Silence.KeepDuration)
	}
	if c.Diarization.NumSpeakers < 0 {
		return fmt.Errorf("speaker count must not be negative, got %d", c.Diarization.NumSpeakers)
	}
	if c.Diarization.SegmentDuration <= 0 {
		return fmt.Errorf("diarization window must be positive, got %.2f", c.Diarization.SegmentDuration)
	}
	if c.Emotion.SegmentDuration <= 0 {
		return fmt.Errorf("emotion window must be positive, got %.2f", c.Emotion.SegmentDuration)
	}
	if c.Subtitles.MaxChars <= 0 {
		return fmt.Errorf("subtitle character cap must be positive, got %d", c.Subtitles.MaxChars)
	}
	if c.Subtitles.MaxDuration <= 0 {
		return fmt.Errorf("subtitle duration cap must be positive, got %.2f", c.Subtitles.MaxDuration)
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.Silence.ThresholdDB != -40.0 {
		t.Errorf("default threshold = %.1f, want -40", cfg.Silence.ThresholdDB)
	}
	if cfg.Subtitles.MaxChars != 80 || cfg.Subtitles.MaxDuration != 7.0 {
		t.Errorf("unexpected subtitle defaults: %+v", cfg.Subtitles)
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty_path_gives_defaults", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load(\"\"): %v", err)
		}
		if cfg != Default() {
			t.Errorf("empty path should give defaults: %+v", cfg)
		}
	})

	t.Run("file_overrides_defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		doc := strings.Join([]string{
			"silence:",
			"  threshold_db: -35",
			"  min_duration: 0.5",
			"  keep_duration: 0.1",
			"diarization:",
			"  num_speakers: 2",
			"  segment_duration: 1.0",
			"subtitles:",
			"  max_chars: 60",
			"  max_duration: 7.0",
		}, "\n")
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Silence.ThresholdDB != -35 {
			t.Errorf("threshold not overridden: %.1f", cfg.Silence.ThresholdDB)
		}
		if cfg.Diarization.NumSpeakers != 2 {
			t.Errorf("speaker count not overridden: %d", cfg.Diarization.NumSpeakers)
		}
		if cfg.Subtitles.MaxChars != 60 {
			t.Errorf("subtitle cap not overridden: %d", cfg.Subtitles.MaxChars)
		}
	})

	t.Run("missing_file_errors", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("invalid_values_error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("silence:\n  threshold_db: 5\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("positive dB threshold must be rejected")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Root)
	}{
		{"zero_min_silence", func(c *Root) { c.Silence.MinDuration = 0 }},
		{"negative_pad", func(c *Root) { c.Silence.KeepDuration = -0.1 }},
		{"negative_speakers", func(c *Root) { c.Diarization.NumSpeakers = -1 }},
		{"zero_diarization_window", func(c *Root) { c.Diarization.SegmentDuration = 0 }},
		{"zero_emotion_window", func(c *Root) { c.Emotion.SegmentDuration = 0 }},
		{"zero_char_cap", func(c *Root) { c.Subtitles.MaxChars = 0 }},
		{"zero_duration_cap", func(c *Root) { c.Subtitles.MaxDuration = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

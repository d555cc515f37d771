package hum

import (
	"math"
	"testing"

	"github.com/ovozlab/speechmark/internal/dsp"
)

func TestFrequencyForTimezone(t *testing.T) {
	tests := []struct {
		timezone string
		want     int
	}{
		// 50Hz countries
		{"Europe/London", 50},
		{"Europe/Paris", 50},
		{"Europe/Berlin", 50},
		{"Australia/Sydney", 50},
		{"Asia/Shanghai", 50},
		{"Asia/Tokyo", 50}, // Japan defaults to 50Hz

		// 60Hz countries
		{"America/New_York", 60},
		{"America/Los_Angeles", 60},
		{"America/Chicago", 60},
		{"America/Toronto", 60},
		{"America/Mexico_City", 60},
		{"America/Bogota", 60},
		{"America/Sao_Paulo", 60},
		{"Asia/Seoul", 60},
		{"Asia/Taipei", 60},
		{"Asia/Manila", 60},

		// Edge cases
		{"UTC", 50},
		{"GMT", 50},
		{"Etc/UTC", 50},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			got := FrequencyForTimezone(tt.timezone)
			if got != tt.want {
				t.Errorf("FrequencyForTimezone(%q) = %d, want %d", tt.timezone, got, tt.want)
			}
		})
	}
}

func TestFrequency(t *testing.T) {
	freq := Frequency()
	if freq != 50 && freq != 60 {
		t.Errorf("Frequency() = %d, want 50 or 60", freq)
	}
}

// toneMix builds a speech-band tone with an added hum component at humAmp.
func toneMix(humHz int, humAmp float64) dsp.Signal {
	sr := dsp.DefaultSampleRate
	samples := make([]float64, 4*sr)
	for i := range samples {
		ts := float64(i) / float64(sr)
		samples[i] = 0.2*math.Sin(2*math.Pi*220*ts) + humAmp*math.Sin(2*math.Pi*float64(humHz)*ts)
	}
	return dsp.NewSignal(samples, sr)
}

func TestAssessAt(t *testing.T) {
	t.Run("hum_detected", func(t *testing.T) {
		a := AssessAt(toneMix(50, 0.15), 50)
		if !a.Detected {
			t.Errorf("strong 50Hz component should be detected: %+v", a)
		}
		if a.FrequencyHz != 50 {
			t.Errorf("assessment frequency = %d", a.FrequencyHz)
		}
		if a.Advice() == "" {
			t.Error("detected hum should produce advice")
		}
	})

	t.Run("clean_recording", func(t *testing.T) {
		a := AssessAt(toneMix(50, 0), 50)
		if a.Detected {
			t.Errorf("hum-free signal flagged: %+v", a)
		}
		if a.Advice() != "" {
			t.Errorf("clean assessment should carry no advice: %q", a.Advice())
		}
	})

	t.Run("wrong_frequency_not_detected", func(t *testing.T) {
		// Strong 50Hz hum measured at 60Hz should stay below threshold.
		a := AssessAt(toneMix(50, 0.15), 60)
		if a.Detected {
			t.Errorf("50Hz hum must not register at 60Hz: %+v", a)
		}
	})

	t.Run("degenerate_signals", func(t *testing.T) {
		if a := AssessAt(dsp.Signal{SampleRate: 16000}, 50); a.Detected || a.PowerShare != 0 {
			t.Errorf("empty signal: %+v", a)
		}
		silent := dsp.NewSignal(make([]float64, 16000), 16000)
		if a := AssessAt(silent, 50); a.Detected {
			t.Errorf("all-zero signal: %+v", a)
		}
	})
}

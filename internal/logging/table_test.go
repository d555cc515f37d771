package logging

import (
	"math"
	"strings"
	"testing"
)

func TestMetricTable(t *testing.T) {
	t.Run("aligned_columns", func(t *testing.T) {
		table := NewMetricTable("")
		table.AddRow("Original duration", "", "12.0s")
		table.AddRow("Removed", "", "4.0s")

		got := table.String()
		lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 rows, got %d:\n%s", len(lines), got)
		}
		// Values right-align into the same column.
		if !strings.HasSuffix(lines[0], "12.0s") || !strings.HasSuffix(lines[1], " 4.0s") {
			t.Errorf("values not aligned:\n%s", got)
		}
	})

	t.Run("missing_values_dashed", func(t *testing.T) {
		table := NewMetricTable("A", "B")
		table.AddRow("row", "", "1.0")

		if !strings.Contains(table.String(), MissingValue) {
			t.Errorf("missing cell should render as %q:\n%s", MissingValue, table.String())
		}
	})

	t.Run("empty_table", func(t *testing.T) {
		if got := NewMetricTable("A").String(); got != "" {
			t.Errorf("empty table should render nothing, got %q", got)
		}
	})

	t.Run("unit_suffix", func(t *testing.T) {
		table := NewMetricTable("")
		table.AddRow("Pitch", "Hz", "220.0")
		if !strings.Contains(table.String(), "Hz") {
			t.Errorf("unit missing:\n%s", table.String())
		}
	})
}

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		value    float64
		decimals int
		want     string
	}{
		{1.234, 1, "1.2"},
		{1.234, 3, "1.234"},
		{math.NaN(), 1, MissingValue},
		{math.Inf(1), 1, MissingValue},
	}
	for _, tt := range tests {
		if got := formatMetric(tt.value, tt.decimals); got != tt.want {
			t.Errorf("formatMetric(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
		}
	}

	if got := formatSeconds(2.5); got != "2.5s" {
		t.Errorf("formatSeconds = %q", got)
	}
	if got := formatPercent(33.333); got != "33.3%" {
		t.Errorf("formatPercent = %q", got)
	}
}

// Package logging generates the plain-text analysis report for each run.
// This file contains the reusable table infrastructure for aligned key/value
// metric tables.

package logging

import (
	"fmt"
	"math"
	"strings"
)

// MetricRow is a single row in a metric table. Values are pre-formatted
// strings so rows can mix decimal precision.
type MetricRow struct {
	Label  string
	Values []string
	Unit   string
}

// MetricTable formats aligned columns of labelled metrics.
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// NewMetricTable returns an empty table with the given column headers.
func NewMetricTable(headers ...string) *MetricTable {
	return &MetricTable{Headers: headers}
}

// AddRow appends a row of pre-formatted values.
func (t *MetricTable) AddRow(label, unit string, values ...string) {
	t.Rows = append(t.Rows, MetricRow{Label: label, Values: values, Unit: unit})
}

// String renders the table: labels left-aligned, values right-aligned within
// their columns, units appended after the last value column.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	labelWidth := 0
	for _, row := range t.Rows {
		if len(row.Label) > labelWidth {
			labelWidth = len(row.Label)
		}
	}

	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, val := range row.Values {
			if i < len(valueWidths) && len(val) > valueWidths[i] {
				valueWidths[i] = len(val)
			}
		}
	}

	var sb strings.Builder

	if headersNonEmpty(t.Headers) {
		sb.WriteString(strings.Repeat(" ", labelWidth+2))
		for i, header := range t.Headers {
			sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], header))
		}
		sb.WriteString("\n")
	}

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelWidth, row.Label))
		for i := 0; i < len(t.Headers); i++ {
			val := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], val))
		}
		if row.Unit != "" {
			sb.WriteString(row.Unit)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func headersNonEmpty(headers []string) bool {
	for _, h := range headers {
		if h != "" {
			return true
		}
	}
	return false
}

// MissingValue is the placeholder for unavailable measurements.
const MissingValue = "-"

// formatMetric formats a float with fixed decimals, or the missing-value
// placeholder for NaN/Inf.
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// formatSeconds renders a duration in seconds with one decimal and unit.
func formatSeconds(value float64) string {
	return formatMetric(value, 1) + "s"
}

// formatPercent renders a percentage with one decimal and unit.
func formatPercent(value float64) string {
	return formatMetric(value, 1) + "%"
}

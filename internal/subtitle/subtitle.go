// Package subtitle renders ordered interval+text streams as SRT and WebVTT
// files. The two formats share block structure; they differ only in the
// WEBVTT header and the millisecond separator.
package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ovozlab/speechmark/internal/align"
	"github.com/ovozlab/speechmark/internal/dsp"
)

const (
	// DefaultMaxChars caps merged subtitle text length in MergeShort.
	DefaultMaxChars = 80
	// DefaultMaxDuration caps merged subtitle duration in seconds.
	DefaultMaxDuration = 7.0
)

// Entry is one subtitle block: a 1-based index, its interval and the final
// display text.
type Entry struct {
	Index int
	dsp.Interval
	Text string
}

// Entries converts aligned segments into subtitle entries. With withSpeaker
// set, each text line is prefixed "SPEAKER_NN: ". Indices are assigned
// sequentially from 1.
func Entries(segments []align.Segment, withSpeaker bool) []Entry {
	var out []Entry
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if withSpeaker && seg.Speaker != "" {
			text = fmt.Sprintf("%s: %s", seg.Speaker, text)
		}
		out = append(out, Entry{
			Index:    len(out) + 1,
			Interval: seg.Interval,
			Text:     text,
		})
	}
	return out
}

// EncodeSRT renders entries in SubRip format: index, "start --> end" with a
// comma before the milliseconds, text, blank line.
func EncodeSRT(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			e.Index, formatTimestamp(e.Start, ','), formatTimestamp(e.End, ','), e.Text)
	}
	return b.String()
}

// EncodeVTT renders entries in WebVTT format: the same blocks as SRT under a
// WEBVTT header, with a dot before the milliseconds.
func EncodeVTT(entries []Entry) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			e.Index, formatTimestamp(e.Start, '.'), formatTimestamp(e.End, '.'), e.Text)
	}
	return b.String()
}

// WriteSRT writes entries as an SRT file, creating parent directories.
func WriteSRT(path string, entries []Entry) error {
	return writeFile(path, EncodeSRT(entries))
}

// WriteVTT writes entries as a WebVTT file, creating parent directories.
func WriteVTT(path string, entries []Entry) error {
	return writeFile(path, EncodeVTT(entries))
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create subtitle directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return nil
}

// formatTimestamp renders seconds as HH:MM:SS<sep>mmm, zero padded.
func formatTimestamp(seconds float64, sep byte) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	ms := int((seconds - float64(total)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}

// MergeShort greedily merges each entry with the next while the combined
// text stays within maxChars and the combined duration within maxDuration,
// then re-indexes the result. Short back-to-back utterances collapse into a
// readable block; anything at the cap flushes and starts a new accumulator.
func MergeShort(entries []Entry, maxChars int, maxDuration float64) []Entry {
	if len(entries) == 0 {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}

	var merged []Entry
	current := entries[0]
	current.Index = 1
	for _, next := range entries[1:] {
		combined := current.Text + " " + next.Text
		if utf8.RuneCountInString(combined) <= maxChars && next.End-current.Start <= maxDuration {
			current.Text = combined
			current.End = next.End
			continue
		}
		merged = append(merged, current)
		current = Entry{
			Index:    current.Index + 1,
			Interval: next.Interval,
			Text:     next.Text,
		}
	}
	return append(merged, current)
}

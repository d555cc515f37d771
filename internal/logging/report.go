package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ovozlab/speechmark/internal/emotion"
	"github.com/ovozlab/speechmark/internal/pipeline"
)

// ReportData carries everything the run report needs.
type ReportData struct {
	InputPath      string
	OutputDir      string
	StartTime      time.Time
	EndTime        time.Time
	SampleRate     int
	Result         *pipeline.Result
	TrimmedPath    string
	SRTPath        string
	VTTPath        string
	TranscriptPath string
}

// RunDir returns a fresh per-run output directory under base, named with the
// start timestamp plus a short unique suffix so concurrent runs never
// collide. The directory is created.
func RunDir(base string, start time.Time) (string, error) {
	name := fmt.Sprintf("%s-%s", start.Format("20060102-150405"), uuid.NewString()[:8])
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}
	return dir, nil
}

// GenerateReport writes the analysis report next to the run's other outputs
// and returns its path. The report file is named <input base>-report.log.
func GenerateReport(data ReportData) (string, error) {
	base := strings.TrimSuffix(filepath.Base(data.InputPath), filepath.Ext(data.InputPath))
	logPath := filepath.Join(data.OutputDir, base+"-report.log")

	f, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	writeReportHeader(f, data)
	writeTrimmingSection(f, data.Result)
	writeSpeakerSection(f, data.Result)
	writeEmotionSection(f, data.Result)
	writeOutputSection(f, data)
	writeTranscriptSection(f, data.Result)

	return logPath, nil
}

func writeSection(f *os.File, title string) {
	fmt.Fprintln(f, title)
	fmt.Fprintln(f, strings.Repeat("-", len(title)))
}

func writeReportHeader(f *os.File, data ReportData) {
	fmt.Fprintln(f, "Speechmark Analysis Report")
	fmt.Fprintln(f, "==========================")
	fmt.Fprintf(f, "File: %s\n", filepath.Base(data.InputPath))
	fmt.Fprintf(f, "Processed: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	if data.SampleRate > 0 {
		fmt.Fprintf(f, "Sample rate: %d Hz\n", data.SampleRate)
	}
	total := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(f, "Elapsed: %s\n", formatElapsed(total))
	fmt.Fprintln(f, "")
}

func writeTrimmingSection(f *os.File, res *pipeline.Result) {
	if res == nil {
		return
	}
	writeSection(f, "Silence Trimming")

	table := NewMetricTable("")
	table.AddRow("Original duration", "", formatSeconds(res.TrimStats.OriginalDuration))
	table.AddRow("Result duration", "", formatSeconds(res.TrimStats.ResultDuration))
	table.AddRow("Removed", "", formatSeconds(res.TrimStats.RemovedDuration))
	table.AddRow("Removed share", "", formatPercent(res.TrimStats.RemovedPercent))
	table.AddRow("Silence intervals", "", fmt.Sprintf("%d", len(res.Silences)))
	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

func writeSpeakerSection(f *os.File, res *pipeline.Result) {
	if res == nil || len(res.Speakers) == 0 {
		return
	}
	writeSection(f, "Speakers")

	shares := pipeline.SpeakerShares(res.Speakers)
	ids := make([]string, 0, len(shares))
	for id := range shares {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	table := NewMetricTable("")
	for _, id := range ids {
		table.AddRow(id, "", formatPercent(shares[id]))
	}
	table.AddRow("Segments", "", fmt.Sprintf("%d", len(res.Speakers)))
	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

func writeEmotionSection(f *os.File, res *pipeline.Result) {
	if res == nil || len(res.Emotions) == 0 {
		return
	}
	writeSection(f, "Emotions")

	dist := emotion.Distribution(res.Emotions)
	table := NewMetricTable("")
	// Stable label order; absent labels are skipped.
	for _, label := range emotion.Labels {
		if share, ok := dist[label]; ok {
			table.AddRow(string(label), "", formatPercent(share))
		}
	}
	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

func writeOutputSection(f *os.File, data ReportData) {
	writeSection(f, "Outputs")
	if data.TrimmedPath != "" {
		fmt.Fprintf(f, "Trimmed audio: %s\n", filepath.Base(data.TrimmedPath))
	}
	if data.SRTPath != "" {
		fmt.Fprintf(f, "Subtitles (SRT): %s\n", filepath.Base(data.SRTPath))
	}
	if data.VTTPath != "" {
		fmt.Fprintf(f, "Subtitles (VTT): %s\n", filepath.Base(data.VTTPath))
	}
	if data.TranscriptPath != "" {
		fmt.Fprintf(f, "Transcript: %s\n", filepath.Base(data.TranscriptPath))
	}
	if data.Result != nil {
		fmt.Fprintf(f, "Subtitle entries: %d\n", len(data.Result.Subtitles))
	}
	fmt.Fprintln(f, "")
}

func writeTranscriptSection(f *os.File, res *pipeline.Result) {
	if res == nil || res.Transcript == "" {
		return
	}
	writeSection(f, "Transcript")
	fmt.Fprintln(f, res.Transcript)
}

// formatElapsed renders a wall-clock duration the way humans read it.
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes%60, seconds)
}

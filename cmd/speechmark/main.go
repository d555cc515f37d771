package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ovozlab/speechmark/internal/audio"
	"github.com/ovozlab/speechmark/internal/cli"
	"github.com/ovozlab/speechmark/internal/config"
	"github.com/ovozlab/speechmark/internal/diarize"
	"github.com/ovozlab/speechmark/internal/dsp"
	"github.com/ovozlab/speechmark/internal/hum"
	"github.com/ovozlab/speechmark/internal/logging"
	"github.com/ovozlab/speechmark/internal/pipeline"
	"github.com/ovozlab/speechmark/internal/subtitle"
	"github.com/ovozlab/speechmark/internal/transcribe"
	"github.com/ovozlab/speechmark/internal/ui"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Version bool   `short:"v" help:"Show version information"`
	Config  string `short:"c" type:"path" help:"Path to YAML config file (optional)"`
	Plain   bool   `help:"Plain line-oriented output instead of the TUI"`
	Logs    bool   `help:"Write detailed debug logs"`

	// Policy flags are pointers: nil means the flag was not given, so a value
	// from the config file (or the built-in default) stays in effect.
	ThresholdDB  *float64 `name:"threshold-db" help:"Silence threshold in dB relative to peak (default -40)"`
	MinSilence   *float64 `name:"min-silence" help:"Minimum silence duration in seconds (default 0.5)"`
	KeepSilence  *float64 `name:"keep-silence" help:"Silence pad kept at trim boundaries in seconds (default 0.1)"`
	Speakers     *int     `help:"Expected speaker count (default 0 = auto)"`
	SegmentDur   *float64 `name:"segment-duration" help:"Diarization window in seconds (default 1.0)"`
	EmotionDur   *float64 `name:"emotion-window" help:"Emotion scoring window in seconds (default 3.0)"`
	MaxChars     *int     `name:"max-chars" help:"Subtitle merge character cap (default 80)"`
	MaxDuration  *float64 `name:"max-duration" help:"Subtitle merge duration cap in seconds (default 7.0)"`
	Language     string   `help:"Transcription language code (default en)"`
	Transcriber  string   `name:"transcriber" help:"Whisper-style transcription service URL (optional)"`
	SegmentsFile string   `name:"segments" type:"path" help:"Pre-computed transcription segments JSON (optional)"`
	OutputDir    string   `name:"output-dir" help:"Base directory for run outputs (default output)"`
	Chunks       bool     `help:"Also write each speech chunk as its own WAV file"`

	Files []string `arg:"" name:"files" help:"WAV files to process" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("speechmark"),
		kong.Description("Speech recording analyzer: silence trimming, speakers, emotions, subtitles"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if cliArgs.Logs {
		if f, err := os.Create("speechmark-debug.log"); err == nil {
			defer f.Close()
			log.SetOutput(f)
			log.SetLevel(logrus.DebugLevel)
		}
	}

	cfg, err := buildConfig(cliArgs)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	runDir, err := logging.RunDir(cfg.OutputDir, time.Now())
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	log.WithField("dir", runDir).Debug("run directory created")

	if cliArgs.Plain {
		os.Exit(runPlain(cliArgs, cfg, runDir, log))
	}
	os.Exit(runTUI(cliArgs, cfg, runDir, log))
}

// buildConfig layers the command-line flags over the config file (or the
// defaults when no file is given). Only flags actually given on the command
// line win; an untouched flag leaves the file's value in effect.
func buildConfig(c *CLI) (config.Root, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return cfg, err
	}

	if c.ThresholdDB != nil {
		cfg.Silence.ThresholdDB = *c.ThresholdDB
	}
	if c.MinSilence != nil {
		cfg.Silence.MinDuration = *c.MinSilence
	}
	if c.KeepSilence != nil {
		cfg.Silence.KeepDuration = *c.KeepSilence
	}
	if c.Speakers != nil {
		cfg.Diarization.NumSpeakers = *c.Speakers
	}
	if c.SegmentDur != nil {
		cfg.Diarization.SegmentDuration = *c.SegmentDur
	}
	if c.EmotionDur != nil {
		cfg.Emotion.SegmentDuration = *c.EmotionDur
	}
	if c.MaxChars != nil {
		cfg.Subtitles.MaxChars = *c.MaxChars
	}
	if c.MaxDuration != nil {
		cfg.Subtitles.MaxDuration = *c.MaxDuration
	}
	if c.Language != "" {
		cfg.Transcription.Language = c.Language
	}
	if c.Transcriber != "" {
		cfg.Transcription.ServiceURL = c.Transcriber
	}
	if c.SegmentsFile != "" {
		cfg.Transcription.SegmentsFile = c.SegmentsFile
	}
	if c.OutputDir != "" {
		cfg.OutputDir = c.OutputDir
	}
	return cfg, cfg.Validate()
}

// runTUI processes the batch behind the Bubbletea interface.
func runTUI(c *CLI, cfg config.Root, runDir string, log *logrus.Logger) int {
	p := tea.NewProgram(ui.NewModel(c.Files), tea.WithAltScreen())

	go func() {
		for i, inputPath := range c.Files {
			p.Send(ui.FileStartMsg{FileIndex: i, FileName: inputPath})

			res := processOne(inputPath, cfg, runDir, c.Chunks, log, func(stage string, progress float64) {
				p.Send(ui.ProgressMsg{Stage: stage, Progress: progress})
			})

			msg := ui.FileCompleteMsg{FileIndex: i, OutputDir: runDir}
			if res.Failed {
				msg.Error = fmt.Errorf("%s", res.Err)
			} else {
				msg.OriginalDuration = res.TrimStats.OriginalDuration
				msg.TrimmedDuration = res.TrimStats.ResultDuration
				msg.RemovedPercent = res.TrimStats.RemovedPercent
				msg.SpeakerCount = len(diarize.Speakers(res.Speakers))
				msg.SubtitleCount = len(res.Subtitles)
			}
			p.Send(msg)
		}
		p.Send(ui.AllCompleteMsg{})
	}()

	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		return 1
	}
	return 0
}

// runPlain processes the batch with line-oriented output.
func runPlain(c *CLI, cfg config.Root, runDir string, log *logrus.Logger) int {
	failed := 0
	for _, inputPath := range c.Files {
		fmt.Printf("processing %s\n", inputPath)
		res := processOne(inputPath, cfg, runDir, c.Chunks, log, func(stage string, progress float64) {
			if progress == 0 {
				fmt.Printf("  %s...\n", strings.ToLower(stage))
			}
		})
		fmt.Println(res.Summary())
		if res.Failed {
			failed++
		}
	}
	fmt.Printf("outputs in %s\n", runDir)
	if failed > 0 {
		return 1
	}
	return 0
}

// processOne runs the full pipeline for one file and writes its outputs into
// the run directory. Failures come back in the Result; the batch continues.
func processOne(inputPath string, cfg config.Root, runDir string, writeChunks bool, log *logrus.Logger, progress pipeline.ProgressFunc) pipeline.Result {
	start := time.Now()

	sig, md, err := audio.ReadWAV(inputPath)
	if err != nil {
		log.WithError(err).WithField("file", inputPath).Error("load failed")
		return pipeline.Result{Input: inputPath, Failed: true, Err: err.Error()}
	}

	speech, err := loadSpeech(cfg, sig)
	if err != nil {
		log.WithError(err).WithField("file", inputPath).Error("transcription failed")
		return pipeline.Result{Input: inputPath, Failed: true, Err: err.Error()}
	}

	res, err := pipeline.Run(sig, speech, cfg, progress)
	if err != nil {
		return pipeline.Result{Input: inputPath, Failed: true, Err: err.Error()}
	}
	res.Input = inputPath

	if a := hum.Assess(sig); a.Detected {
		log.WithField("file", inputPath).Warn(a.Advice())
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	trimmedPath := filepath.Join(runDir, base+"-trimmed.wav")
	srtPath := filepath.Join(runDir, base+".srt")
	vttPath := filepath.Join(runDir, base+".vtt")
	transcriptPath := filepath.Join(runDir, base+".txt")

	if err := audio.WriteWAV(trimmedPath, res.Trimmed); err != nil {
		return pipeline.Result{Input: inputPath, Failed: true, Err: err.Error()}
	}
	if writeChunks {
		for i, chunk := range dsp.SplitOnSilence(sig, res.Silences, cfg.Silence.MinSegment) {
			chunkPath := filepath.Join(runDir, fmt.Sprintf("%s-chunk-%02d.wav", base, i+1))
			if err := audio.WriteWAV(chunkPath, chunk.Signal); err != nil {
				log.WithError(err).WithField("chunk", i+1).Warn("chunk write failed")
			}
		}
	}
	if len(res.Subtitles) > 0 {
		if err := subtitle.WriteSRT(srtPath, res.Subtitles); err != nil {
			return pipeline.Result{Input: inputPath, Failed: true, Err: err.Error()}
		}
		if err := subtitle.WriteVTT(vttPath, res.Subtitles); err != nil {
			return pipeline.Result{Input: inputPath, Failed: true, Err: err.Error()}
		}
	} else {
		srtPath, vttPath = "", ""
	}
	if res.Transcript != "" {
		if err := os.WriteFile(transcriptPath, []byte(res.Transcript), 0o644); err != nil {
			return pipeline.Result{Input: inputPath, Failed: true, Err: err.Error()}
		}
	} else {
		transcriptPath = ""
	}

	if _, err := logging.GenerateReport(logging.ReportData{
		InputPath:      inputPath,
		OutputDir:      runDir,
		StartTime:      start,
		EndTime:        time.Now(),
		SampleRate:     md.SampleRate,
		Result:         res,
		TrimmedPath:    trimmedPath,
		SRTPath:        srtPath,
		VTTPath:        vttPath,
		TranscriptPath: transcriptPath,
	}); err != nil {
		log.WithError(err).Warn("report generation failed")
	}

	return *res
}

// loadSpeech obtains transcription segments for the file: a pre-computed
// segments file wins, then a remote recognizer; with neither configured the
// pipeline runs transcript-free. The recognizer is fed the trimmed audio so
// segment times land on the same timeline the pipeline aligns against.
func loadSpeech(cfg config.Root, sig dsp.Signal) ([]transcribe.Segment, error) {
	if cfg.Transcription.SegmentsFile != "" {
		return transcribe.LoadSegments(cfg.Transcription.SegmentsFile)
	}
	if cfg.Transcription.ServiceURL != "" {
		silences := dsp.DetectSilence(sig, cfg.Silence.ThresholdDB, cfg.Silence.MinDuration)
		trimmed, _, _ := dsp.RemoveSilence(sig, silences, cfg.Silence.KeepDuration)

		rec := transcribe.NewHTTPRecognizer(cfg.Transcription.ServiceURL)
		return rec.Recognize(context.Background(), trimmed, cfg.Transcription.Language)
	}
	return nil, nil
}

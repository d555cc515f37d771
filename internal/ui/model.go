// Package ui provides the Bubbletea terminal user interface for speechmark
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FileStatus represents the processing state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusProcessing
	StatusComplete
	StatusError
)

// FileProgress tracks progress for a single audio file
type FileProgress struct {
	InputPath string
	OutputDir string
	Status    FileStatus

	// Stage tracking
	Stage       string
	Progress    float64 // 0.0 to 1.0 within the current stage
	StartTime   time.Time
	ElapsedTime time.Duration

	// Completion results
	OriginalDuration float64
	TrimmedDuration  float64
	RemovedPercent   float64
	SpeakerCount     int
	SubtitleCount    int

	Error error
}

// Model is the Bubbletea model for the processing UI
type Model struct {
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	StartTime time.Time
	Done      bool

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model with the given input files
func NewModel(inputFiles []string) Model {
	files := make([]FileProgress, len(inputFiles))
	for i, path := range inputFiles {
		files[i] = FileProgress{
			InputPath: path,
			Status:    StatusQueued,
		}
	}

	return Model{
		Files:        files,
		CurrentIndex: -1,
		TotalFiles:   len(inputFiles),
		StartTime:    time.Now(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case ProgressMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			fp := &m.Files[m.CurrentIndex]
			fp.Stage = msg.Stage
			fp.Progress = msg.Progress
			fp.ElapsedTime = time.Since(fp.StartTime)
		}

	case FileStartMsg:
		m.CurrentIndex = msg.FileIndex
		m.Files[m.CurrentIndex].Status = StatusProcessing
		m.Files[m.CurrentIndex].StartTime = time.Now()

	case FileCompleteMsg:
		if msg.FileIndex >= 0 && msg.FileIndex < len(m.Files) {
			fp := &m.Files[msg.FileIndex]
			fp.OriginalDuration = msg.OriginalDuration
			fp.TrimmedDuration = msg.TrimmedDuration
			fp.RemovedPercent = msg.RemovedPercent
			fp.SpeakerCount = msg.SpeakerCount
			fp.SubtitleCount = msg.SubtitleCount
			fp.OutputDir = msg.OutputDir
			fp.Error = msg.Error

			if msg.Error != nil {
				fp.Status = StatusError
				m.FailedFiles++
			} else {
				fp.Status = StatusComplete
				m.CompletedFiles++
			}
		}

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nFiles: %d\n", len(m.Files))
	}

	if m.Done {
		return renderCompletionSummary(m)
	}
	return renderProcessingView(m)
}

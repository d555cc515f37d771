package ui

// ProgressMsg reports a pipeline stage transition for the active file.
type ProgressMsg struct {
	Stage    string  // pipeline stage name
	Progress float64 // 0.0 at stage start, 1.0 at completion
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished processing
type FileCompleteMsg struct {
	FileIndex        int
	OriginalDuration float64
	TrimmedDuration  float64
	RemovedPercent   float64
	SpeakerCount     int
	SubtitleCount    int
	OutputDir        string
	Error            error
}

// AllCompleteMsg indicates all files have been processed
type AllCompleteMsg struct{}

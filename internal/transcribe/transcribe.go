// Package transcribe defines the boundary to an external speech recognizer.
// The rest of the pipeline only consumes the Segment list; where it came from
// (a remote service, a file on disk, a test fixture) is this package's
// business.
package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ovozlab/speechmark/internal/dsp"
)

// Segment is one recognized utterance placed on the recording's timeline.
type Segment struct {
	dsp.Interval
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognizer turns a signal into timed text.
type Recognizer interface {
	Recognize(ctx context.Context, sig dsp.Signal, language string) ([]Segment, error)
}

// LoadSegments reads a segments JSON file produced by an earlier recognition
// run: either a bare array of segments or an object with a "segments" key.
func LoadSegments(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading segments file: %w", err)
	}

	var segments []Segment
	if err := json.Unmarshal(data, &segments); err == nil {
		return segments, nil
	}

	var wrapped struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parsing segments file %s: %w", path, err)
	}
	return wrapped.Segments, nil
}

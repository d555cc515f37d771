package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ovozlab/speechmark/internal/audio"
	"github.com/ovozlab/speechmark/internal/dsp"
)

// HTTPRecognizer posts audio to a whisper-style transcription service and
// decodes the segment list from its JSON response.
type HTTPRecognizer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRecognizer builds a recognizer against the service at baseURL.
func NewHTTPRecognizer(baseURL string) *HTTPRecognizer {
	return &HTTPRecognizer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type recognizeResponse struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// Recognize encodes the signal as WAV, posts it as a multipart upload and
// returns the recognized segments. The service sees a temporary file name,
// never the caller's paths.
func (r *HTTPRecognizer) Recognize(ctx context.Context, sig dsp.Signal, language string) ([]Segment, error) {
	tmp, err := os.CreateTemp("", "speechmark-*.wav")
	if err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := audio.WriteWAV(tmpPath, sig); err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filepath.Base(tmpPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(tmpPath)
	if err != nil {
		return nil, err
	}
	if _, err = io.Copy(fw, fd); err != nil {
		fd.Close()
		return nil, err
	}
	fd.Close()
	if language != "" {
		if err := w.WriteField("language", language); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/transcribe", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcription service %s: %s", resp.Status, string(msg))
	}

	var out recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding transcription response: %w", err)
	}
	return out.Segments, nil
}

package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/voxpipe/voxpipe/pkg/Logger"
	"github.com/voxpipe/voxpipe/pkg/audio"
)

// ErrEmptyAudio is returned before any network I/O when a segment carries no
// payload.
var ErrEmptyAudio = errors.New("empty audio payload")

// Fixed upload identity: whatever the capture host natively produced, the API
// always sees one container format under one filename.
const (
	uploadFilename = "chunk.wav"
	uploadMIME     = "audio/wav"
)

// WhisperClient talks to a whisper-style transcription endpoint: bearer-auth
// multipart POST, JSON {"text": ...} on success.
type WhisperClient struct {
	endpoint   string
	apiKey     string
	model      string
	language   string
	httpClient *http.Client
	logger     *Logger.Logger
}

type whisperResponse struct {
	Text string `json:"text"`
}

// NewWhisperClient creates the remote whisper-endpoint service.
func NewWhisperClient(endpoint, apiKey, model, language string, logger *Logger.Logger) *WhisperClient {
	return &WhisperClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		language: language,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Transcribe implements Service. The segment's timestamps pass through to the
// result untouched; the remote API never sees them.
func (w *WhisperClient) Transcribe(ctx context.Context, segment AudioSegment) (TranscriptionResult, error) {
	if len(segment.Data) == 0 {
		return TranscriptionResult{}, ErrEmptyAudio
	}

	wavData := audio.EncodeWAV(segment.Data, segment.SampleRate, segment.Channels)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", uploadFilename)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return TranscriptionResult{}, fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.WriteField("model", w.model); err != nil {
		return TranscriptionResult{}, fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.WriteField("language", w.language); err != nil {
		return TranscriptionResult{}, fmt.Errorf("failed to write language field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return TranscriptionResult{}, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, &body)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.logger.Errorf("Whisper endpoint error (status %d): %s", resp.StatusCode, string(responseBody))
		return TranscriptionResult{}, fmt.Errorf("transcription endpoint returned status %d: %s",
			resp.StatusCode, string(responseBody))
	}

	var parsed whisperResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return TranscriptionResult{}, fmt.Errorf("failed to decode response: %w", err)
	}

	w.logger.Debugf("Whisper transcription (%v span): %s", segment.Duration(), parsed.Text)

	return TranscriptionResult{
		Text:      parsed.Text,
		StartTime: segment.StartTime,
		EndTime:   segment.EndTime,
	}, nil
}

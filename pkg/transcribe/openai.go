package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/voxpipe/voxpipe/pkg/Logger"
	"github.com/voxpipe/voxpipe/pkg/audio"
)

// OpenAIService is the OpenAI-hosted remote variant, built on the official
// client instead of a hand-rolled multipart request.
type OpenAIService struct {
	client   openai.Client
	model    string
	language string
	logger   *Logger.Logger
}

// NewOpenAIService creates the OpenAI-backed service.
func NewOpenAIService(apiKey, model, language string, logger *Logger.Logger) *OpenAIService {
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &OpenAIService{
		client:   openai.NewClient(option.WithAPIKey(apiKey)),
		model:    model,
		language: language,
		logger:   logger,
	}
}

// Transcribe implements Service.
func (o *OpenAIService) Transcribe(ctx context.Context, segment AudioSegment) (TranscriptionResult, error) {
	if len(segment.Data) == 0 {
		return TranscriptionResult{}, ErrEmptyAudio
	}

	wavData := audio.EncodeWAV(segment.Data, segment.SampleRate, segment.Channels)

	resp, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:     openai.File(bytes.NewReader(wavData), uploadFilename, uploadMIME),
		Model:    openai.AudioModel(o.model),
		Language: openai.String(o.language),
	})
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			o.logger.Errorf("OpenAI transcription error (status %d): %s", apierr.StatusCode, apierr.RawJSON())
			return TranscriptionResult{}, fmt.Errorf("transcription endpoint returned status %d: %s",
				apierr.StatusCode, apierr.RawJSON())
		}
		return TranscriptionResult{}, fmt.Errorf("failed to call transcription endpoint: %w", err)
	}

	o.logger.Debugf("OpenAI transcription (%v span): %s", segment.Duration(), resp.Text)

	return TranscriptionResult{
		Text:      resp.Text,
		StartTime: segment.StartTime,
		EndTime:   segment.EndTime,
	}, nil
}

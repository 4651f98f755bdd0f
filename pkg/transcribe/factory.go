package transcribe

import (
	"github.com/voxpipe/voxpipe/pkg/Logger"
)

// Config carries the inputs the factory selects on. It is resolved once by
// the hosting application's startup path, never read ad hoc here.
type Config struct {
	APIKey   string
	UseMock  bool
	Provider string // "whisper" (default) or "openai"
	Endpoint string
	Model    string
	Language string
}

// NewService selects a transcription service. Precedence: an explicit mock
// request wins; an absent credential silently falls back to the mock so the
// application always runs; otherwise the configured remote variant is built
// with the credential.
func NewService(cfg Config, logger *Logger.Logger) Service {
	if cfg.UseMock {
		logger.Info("Using mock transcription service (explicitly requested)")
		return NewMockService(logger)
	}
	if cfg.APIKey == "" {
		logger.Warn("No transcription API key configured, falling back to mock service")
		return NewMockService(logger)
	}
	if cfg.Provider == "openai" {
		return NewOpenAIService(cfg.APIKey, cfg.Model, cfg.Language, logger)
	}
	return NewWhisperClient(cfg.Endpoint, cfg.APIKey, cfg.Model, cfg.Language, logger)
}

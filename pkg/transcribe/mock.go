package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/voxpipe/voxpipe/pkg/Logger"
)

// DefaultMockDelay is the artificial latency of the mock service.
const DefaultMockDelay = 250 * time.Millisecond

// MockService is a deterministic stand-in for the remote service. It
// synthesizes placeholder text from the segment's duration and start time
// after a fixed artificial delay; the only error it can return is the
// caller's context error. Used when no credential is configured or mock mode
// is selected.
type MockService struct {
	delay  time.Duration
	logger *Logger.Logger
}

// NewMockService creates a mock service with the default artificial delay.
func NewMockService(logger *Logger.Logger) *MockService {
	return &MockService{delay: DefaultMockDelay, logger: logger}
}

// NewMockServiceWithDelay lets tests shrink the artificial delay.
func NewMockServiceWithDelay(delay time.Duration, logger *Logger.Logger) *MockService {
	return &MockService{delay: delay, logger: logger}
}

// Transcribe implements Service.
func (m *MockService) Transcribe(ctx context.Context, segment AudioSegment) (TranscriptionResult, error) {
	// The artificial delay is always paid in full; cancellation is the only
	// way out, and it surfaces as the caller's context error, never as an
	// early success.
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return TranscriptionResult{}, ctx.Err()
	}

	text := fmt.Sprintf("[mock] %.1fs of audio from %s",
		segment.Duration().Seconds(), segment.StartTime.Format("15:04:05.000"))

	m.logger.Debugf("Mock transcription: %s", text)

	return TranscriptionResult{
		Text:      text,
		StartTime: segment.StartTime,
		EndTime:   segment.EndTime,
	}, nil
}

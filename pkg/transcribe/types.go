package transcribe

import (
	"context"
	"time"
)

// AudioSegment is one unit of captured audio bounded by two wall-clock
// timestamps. Data is raw 16-bit little-endian PCM; container wrapping is the
// service's concern, not the recorder's.
type AudioSegment struct {
	Data       []byte
	SampleRate int32
	Channels   int16
	StartTime  time.Time
	EndTime    time.Time
}

// Duration returns the segment's wall-clock span.
func (s AudioSegment) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// TranscriptionResult carries recognized text with the time bounds of the
// segment it came from. The remote API knows nothing about wall-clock time;
// StartTime/EndTime are reattached client-side, unchanged.
type TranscriptionResult struct {
	Text      string    `json:"text"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Seq       int       `json:"seq"`
}

// Service converts one audio segment into text. One call per segment, no
// batching.
type Service interface {
	Transcribe(ctx context.Context, segment AudioSegment) (TranscriptionResult, error)
}

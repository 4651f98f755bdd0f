package recorder

import (
	"github.com/voxpipe/voxpipe/internal/config"
	"github.com/voxpipe/voxpipe/internal/silence"
	"github.com/voxpipe/voxpipe/pkg/capture"
)

// ConfigFromSettings maps the application settings onto a recorder Config.
func ConfigFromSettings(s *config.Settings) Config {
	return Config{
		ChunkInterval:   s.Recorder.ChunkInterval(),
		MinSegment:      s.Recorder.MinSegment(),
		MinPayloadBytes: s.Recorder.MinPayloadBytes,
		SettleDelay:     s.Recorder.SettleDelay(),
		RingCapacity:    s.Recorder.RingCapacityBytes,
		OrderedResults:  s.Recorder.OrderedResults,
		FlushOnSilence:  s.Recorder.FlushOnSilence,
		Silence: silence.Config{
			Threshold:   s.Silence.Threshold,
			MinDuration: s.Silence.MinDuration(),
		},
		Capture: capture.Options{
			SampleRate:       s.Capture.SampleRate,
			Channels:         s.Capture.Channels,
			FragmentPeriod:   s.Capture.FragmentPeriod(),
			EchoCancellation: s.Capture.EchoCancellation,
			NoiseSuppression: s.Capture.NoiseSuppression,
			AutoGainControl:  s.Capture.AutoGainControl,
		},
	}
}

// Package mic captures microphone audio through PortAudio and emits it as
// fixed-period PCM fragments.
package mic

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/voxpipe/voxpipe/pkg/Logger"
	"github.com/voxpipe/voxpipe/pkg/capture"
)

// formatOverrides maps host identifiers (GOOS) to a forced capture format for
// hosts whose preferred-format support is known to be unreliable.
var formatOverrides = map[string]capture.Format{}

// Source is a PortAudio default-input capture source.
type Source struct {
	logger *Logger.Logger

	mu       sync.Mutex
	stream   *portaudio.Stream
	format   capture.Format
	ch       chan capture.Fragment
	done     chan struct{}
	loopDone chan struct{}
	started  bool
}

func New(logger *Logger.Logger) *Source {
	return &Source{logger: logger}
}

// Start implements capture.Source. Acquires the default input device, picks a
// sample format by capability negotiation, and starts the fragment read loop.
// A failed open with the negotiated format is retried with host-default
// settings before giving up.
func (s *Source) Start(ctx context.Context, opts capture.Options) (<-chan capture.Fragment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil, errors.New("mic source already started")
	}

	if opts.EchoCancellation || opts.NoiseSuppression || opts.AutoGainControl {
		s.logger.Debugf("DSP options requested but not available on this host, capturing raw")
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize audio host: %w", err)
	}

	format, err := capture.Negotiate(runtime.GOOS, capture.DefaultPreference, s.supports, formatOverrides)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = 16000
	}
	channels := opts.Channels
	if channels == 0 {
		channels = 1
	}
	period := opts.FragmentPeriod
	if period == 0 {
		period = 250 * time.Millisecond
	}
	framesPerBuffer := int(float64(sampleRate) * period.Seconds())

	buf := make([]int16, framesPerBuffer*int(channels))
	stream, err := portaudio.OpenDefaultStream(int(channels), 0, float64(sampleRate), framesPerBuffer, buf)
	if err != nil {
		// Preferred settings rejected; retry with the host default buffer
		// size before failing the start.
		s.logger.Warnf("Preferred capture settings rejected (%v), retrying with host defaults", err)
		buf = make([]int16, 1024*int(channels))
		stream, err = portaudio.OpenDefaultStream(int(channels), 0, float64(sampleRate), len(buf)/int(channels), buf)
		if err != nil {
			portaudio.Terminate()
			return nil, fmt.Errorf("failed to open capture stream: %w", err)
		}
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start capture stream: %w", err)
	}

	s.stream = stream
	s.format = format
	s.ch = make(chan capture.Fragment, 16)
	s.done = make(chan struct{})
	s.loopDone = make(chan struct{})
	s.started = true

	go s.readLoop(stream.Read, buf)

	s.logger.Infof("Microphone capture started: %d Hz, %d ch, %v fragments, format %s",
		sampleRate, channels, period, format)

	return s.ch, nil
}

// readLoop takes the device read as a function so it never touches the stream
// field; the stream is owned by Start/Stop under the mutex.
func (s *Source) readLoop(read func() error, buf []int16) {
	defer close(s.loopDone)
	defer close(s.ch)
	for {
		select {
		case <-s.done:
			return
		default:
		}

		if err := read(); err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Errorf("Capture read failed: %v", err)
			}
			return
		}

		data := make([]byte, len(buf)*2)
		for i, sample := range buf {
			data[2*i] = byte(sample)
			data[2*i+1] = byte(sample >> 8)
		}

		frag := capture.Fragment{Data: data, Timestamp: time.Now()}
		select {
		case s.ch <- frag:
		case <-s.done:
			return
		}
	}
}

// Stop implements capture.Source. Releases the device; the read loop's last
// buffer is the final fragment.
func (s *Source) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return errors.New("mic source not started")
	}
	s.started = false

	// The stream must not be stopped, closed, or the host terminated while a
	// device read is in progress: signal the loop and wait it out first. A
	// blocking read returns within one fragment period.
	close(s.done)
	<-s.loopDone

	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		s.logger.Warnf("Failed to stop capture stream: %v", err)
	}
	if err := s.stream.Close(); err != nil {
		s.logger.Warnf("Failed to close capture stream: %v", err)
	}
	s.stream = nil
	return portaudio.Terminate()
}

// Format implements capture.Source.
func (s *Source) Format() capture.Format {
	return s.format
}

// supports reports whether this source can deliver the format. Only 16-bit
// PCM is read natively today; the negotiation hook keeps the probe order and
// override table in one place.
func (s *Source) supports(f capture.Format) bool {
	return f == capture.FormatPCM16
}

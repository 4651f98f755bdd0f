// Package wsingest adapts push-style transports (websocket clients sending
// binary audio messages) to the capture.Source pull interface.
package wsingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/voxpipe/voxpipe/pkg/capture"
)

var ErrNotStarted = errors.New("ingest source not started")

// Source buffers pushed audio bytes onto a fragment channel. One Source per
// client connection.
type Source struct {
	mu      sync.Mutex
	ch      chan capture.Fragment
	started bool
	format  capture.Format
}

func New() *Source {
	return &Source{format: capture.FormatPCM16}
}

// Start implements capture.Source. The transport pushes fragments at whatever
// period the client produces them; FragmentPeriod is advisory here.
func (s *Source) Start(ctx context.Context, opts capture.Options) (<-chan capture.Fragment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil, errors.New("ingest source already started")
	}
	s.ch = make(chan capture.Fragment, 64)
	s.started = true
	return s.ch, nil
}

// Push hands one binary audio message to the fragment stream. Drops the
// fragment when the consumer lags rather than blocking the read loop.
func (s *Source) Push(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	frag := capture.Fragment{Data: data, Timestamp: time.Now()}
	select {
	case s.ch <- frag:
		return nil
	default:
		return errors.New("fragment channel full, dropping")
	}
}

// Stop implements capture.Source.
func (s *Source) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return ErrNotStarted
	}
	s.started = false
	close(s.ch)
	return nil
}

// Format implements capture.Source.
func (s *Source) Format() capture.Format {
	return s.format
}

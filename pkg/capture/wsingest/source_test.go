package wsingest

import (
	"context"
	"errors"
	"testing"

	"github.com/voxpipe/voxpipe/pkg/capture"
)

func TestSourcePushBeforeStart(t *testing.T) {
	s := New()
	if err := s.Push([]byte{1, 2, 3}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Expected ErrNotStarted, got %v", err)
	}
}

func TestSourceDeliversFragments(t *testing.T) {
	s := New()
	ch, err := s.Start(context.Background(), capture.Options{})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := s.Push([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	frag := <-ch
	if len(frag.Data) != 3 || frag.Data[0] != 1 {
		t.Errorf("Unexpected fragment: %v", frag.Data)
	}
	if frag.Timestamp.IsZero() {
		t.Error("Fragment must be timestamped")
	}
}

func TestSourceStopClosesChannel(t *testing.T) {
	s := New()
	ch, err := s.Start(context.Background(), capture.Options{})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if _, ok := <-ch; ok {
		t.Error("Channel must be closed after stop")
	}
	if err := s.Push([]byte{1}); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Push after stop must fail, got %v", err)
	}
}

func TestSourceDoubleStart(t *testing.T) {
	s := New()
	if _, err := s.Start(context.Background(), capture.Options{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := s.Start(context.Background(), capture.Options{}); err == nil {
		t.Error("Second start must fail")
	}
}

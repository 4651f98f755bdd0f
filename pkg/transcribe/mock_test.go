package transcribe

import (
	"context"
	"testing"
	"time"

	"github.com/voxpipe/voxpipe/pkg/Logger"
)

func TestMockServiceNeverFails(t *testing.T) {
	svc := NewMockServiceWithDelay(time.Millisecond, Logger.Nop())

	for _, size := range []int{0, 1, 3200} {
		res, err := svc.Transcribe(context.Background(), testSegment(size))
		if err != nil {
			t.Errorf("Mock failed for %d-byte segment: %v", size, err)
		}
		if res.Text == "" {
			t.Errorf("Mock produced empty text for %d-byte segment", size)
		}
	}
}

func TestMockServiceDeterministic(t *testing.T) {
	svc := NewMockServiceWithDelay(time.Millisecond, Logger.Nop())
	seg := testSegment(3200)

	first, err := svc.Transcribe(context.Background(), seg)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	second, err := svc.Transcribe(context.Background(), seg)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if first.Text != second.Text {
		t.Errorf("Mock text not deterministic: %q vs %q", first.Text, second.Text)
	}
	if !first.StartTime.Equal(seg.StartTime) || !first.EndTime.Equal(seg.EndTime) {
		t.Errorf("Mock did not preserve timestamps: got [%v, %v]", first.StartTime, first.EndTime)
	}
}

func TestMockServiceCancellation(t *testing.T) {
	svc := NewMockServiceWithDelay(time.Minute, Logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Transcribe(ctx, testSegment(100))
	if err == nil {
		t.Fatalf("Cancelled call must not succeed early, got %q", res.Text)
	}
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestMockServiceDelay(t *testing.T) {
	delay := 30 * time.Millisecond
	svc := NewMockServiceWithDelay(delay, Logger.Nop())

	begin := time.Now()
	if _, err := svc.Transcribe(context.Background(), testSegment(100)); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if elapsed := time.Since(begin); elapsed < delay {
		t.Errorf("Mock completed after %v, expected at least %v", elapsed, delay)
	}
}

package fragring

import (
	"bytes"
	"testing"
	"time"

	"github.com/voxpipe/voxpipe/pkg/capture"
)

func TestRingFIFO(t *testing.T) {
	ring := New(1024)

	if ring.Capacity() != 1024 {
		t.Errorf("Expected capacity 1024, got %d", ring.Capacity())
	}
	if ring.Len() != 0 {
		t.Errorf("Expected empty ring, got length %d", ring.Len())
	}

	now := time.Now()
	for i := 0; i < 3; i++ {
		frag := capture.Fragment{
			Data:      []byte{byte(i), byte(i + 1), byte(i + 2)},
			Timestamp: now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := ring.Enqueue(frag); err != nil {
			t.Fatalf("Failed to enqueue fragment %d: %v", i, err)
		}
	}

	frags := ring.Drain()
	if len(frags) != 3 {
		t.Fatalf("Expected 3 fragments, got %d", len(frags))
	}
	for i, frag := range frags {
		want := []byte{byte(i), byte(i + 1), byte(i + 2)}
		if !bytes.Equal(frag.Data, want) {
			t.Errorf("Fragment %d: expected %v, got %v", i, want, frag.Data)
		}
	}

	if ring.Len() != 0 {
		t.Errorf("Ring must be empty after drain, got length %d", ring.Len())
	}
}

func TestRingPreservesTimestamps(t *testing.T) {
	ring := New(1024)
	ts := time.Date(2026, 8, 25, 10, 0, 0, 123456000, time.UTC)

	if err := ring.Enqueue(capture.Fragment{Data: []byte{1, 2}, Timestamp: ts}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	frags := ring.Drain()
	if len(frags) != 1 {
		t.Fatalf("Expected 1 fragment, got %d", len(frags))
	}
	if !frags[0].Timestamp.Equal(ts) {
		t.Errorf("Timestamp not preserved: got %v, want %v", frags[0].Timestamp, ts)
	}
}

func TestRingDropsOldestOnOverflow(t *testing.T) {
	// Room for roughly two framed 32-byte fragments.
	ring := New(100)

	for i := 0; i < 5; i++ {
		data := bytes.Repeat([]byte{byte(i)}, 32)
		if err := ring.Enqueue(capture.Fragment{Data: data, Timestamp: time.Now()}); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}

	frags := ring.Drain()
	if len(frags) == 0 {
		t.Fatal("Expected surviving fragments after overflow")
	}
	// The survivors must be the most recent ones, in order.
	last := frags[len(frags)-1]
	if last.Data[0] != 4 {
		t.Errorf("Newest fragment lost: last survivor starts with %d", last.Data[0])
	}
	for i := 1; i < len(frags); i++ {
		if frags[i].Data[0] <= frags[i-1].Data[0] {
			t.Errorf("Survivors out of order: %d then %d", frags[i-1].Data[0], frags[i].Data[0])
		}
	}
}

func TestRingRejectsOversizedFragment(t *testing.T) {
	ring := New(64)
	err := ring.Enqueue(capture.Fragment{Data: make([]byte, 128), Timestamp: time.Now()})
	if err != ErrFragmentTooLarge {
		t.Errorf("Expected ErrFragmentTooLarge, got %v", err)
	}
}

func TestRingDrainEmpty(t *testing.T) {
	ring := New(64)
	if frags := ring.Drain(); len(frags) != 0 {
		t.Errorf("Expected no fragments from empty ring, got %d", len(frags))
	}
}

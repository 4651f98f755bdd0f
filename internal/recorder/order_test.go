package recorder

import (
	"testing"

	"github.com/voxpipe/voxpipe/pkg/transcribe"
)

func result(seq int, text string) transcribe.TranscriptionResult {
	return transcribe.TranscriptionResult{Seq: seq, Text: text}
}

func TestOrderBufferInOrder(t *testing.T) {
	b := newOrderBuffer()

	ready := b.Deliver(0, result(0, "a"))
	if len(ready) != 1 || ready[0].Text != "a" {
		t.Fatalf("Expected immediate delivery, got %v", ready)
	}
	ready = b.Deliver(1, result(1, "b"))
	if len(ready) != 1 || ready[0].Text != "b" {
		t.Fatalf("Expected immediate delivery, got %v", ready)
	}
}

func TestOrderBufferReorders(t *testing.T) {
	b := newOrderBuffer()

	if ready := b.Deliver(1, result(1, "b")); len(ready) != 0 {
		t.Fatalf("Out-of-order result must be held, got %v", ready)
	}
	if ready := b.Deliver(2, result(2, "c")); len(ready) != 0 {
		t.Fatalf("Out-of-order result must be held, got %v", ready)
	}

	ready := b.Deliver(0, result(0, "a"))
	if len(ready) != 3 {
		t.Fatalf("Expected 3 results released, got %d", len(ready))
	}
	for i, want := range []string{"a", "b", "c"} {
		if ready[i].Text != want {
			t.Errorf("Position %d: expected %q, got %q", i, want, ready[i].Text)
		}
	}
}

func TestOrderBufferSkipUnblocks(t *testing.T) {
	b := newOrderBuffer()

	if ready := b.Deliver(1, result(1, "b")); len(ready) != 0 {
		t.Fatalf("Result behind a gap must be held, got %v", ready)
	}

	// Chunk 0 failed; its slot opens and chunk 1 surfaces.
	ready := b.Skip(0)
	if len(ready) != 1 || ready[0].Text != "b" {
		t.Fatalf("Skip must unblock successors, got %v", ready)
	}

	if ready := b.Deliver(2, result(2, "c")); len(ready) != 1 || ready[0].Text != "c" {
		t.Fatalf("Sequence must continue after skip, got %v", ready)
	}
}

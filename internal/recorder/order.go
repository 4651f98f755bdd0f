package recorder

import (
	"sync"

	"github.com/voxpipe/voxpipe/pkg/transcribe"
)

// orderBuffer re-sequences transcription results that complete out of order.
// Results are keyed by the chunk sequence number assigned at flush time; a
// failed chunk releases its slot so later results are never held back by it.
type orderBuffer struct {
	mu      sync.Mutex
	next    int
	pending map[int]transcribe.TranscriptionResult
	skipped map[int]bool
}

func newOrderBuffer() *orderBuffer {
	return &orderBuffer{
		pending: make(map[int]transcribe.TranscriptionResult),
		skipped: make(map[int]bool),
	}
}

// Deliver stores one completed result and returns the run of results that are
// now ready to surface, in sequence order.
func (b *orderBuffer) Deliver(seq int, res transcribe.TranscriptionResult) []transcribe.TranscriptionResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[seq] = res
	return b.advanceLocked()
}

// Skip marks a sequence number as never arriving (failed or dropped chunk)
// and returns any results unblocked by the gap closing.
func (b *orderBuffer) Skip(seq int) []transcribe.TranscriptionResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.skipped[seq] = true
	return b.advanceLocked()
}

func (b *orderBuffer) advanceLocked() []transcribe.TranscriptionResult {
	var ready []transcribe.TranscriptionResult
	for {
		if res, ok := b.pending[b.next]; ok {
			ready = append(ready, res)
			delete(b.pending, b.next)
			b.next++
			continue
		}
		if b.skipped[b.next] {
			delete(b.skipped, b.next)
			b.next++
			continue
		}
		return ready
	}
}

// Package transcript keeps the accumulated display list of transcription
// results. Pure presentation state: append-only, never mutated after append.
package transcript

import (
	"strings"
	"sync"

	"github.com/voxpipe/voxpipe/pkg/transcribe"
)

type Store struct {
	mu      sync.Mutex
	results []transcribe.TranscriptionResult
}

func NewStore() *Store {
	return &Store{}
}

// Append adds one completed result.
func (s *Store) Append(res transcribe.TranscriptionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
}

// Results returns a copy of the accumulated list.
func (s *Store) Results() []transcribe.TranscriptionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]transcribe.TranscriptionResult, len(s.results))
	copy(out, s.results)
	return out
}

// Len reports how many results have accumulated.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Text renders the accumulated transcript as one string.
func (s *Store) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for i, res := range s.results {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strings.TrimSpace(res.Text))
	}
	return b.String()
}

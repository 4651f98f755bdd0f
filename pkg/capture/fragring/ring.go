// Package fragring is a bounded queue of capture fragments over a byte ring
// buffer. Fragments are framed with a length prefix; when the ring fills, the
// oldest complete fragment is dropped to make room. Drain is the atomic
// snapshot-and-clear primitive the recorder's flush relies on.
package fragring

import (
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/smallnest/ringbuffer"
	"github.com/voxpipe/voxpipe/pkg/capture"
)

// Frame layout: timestamp(8) + dataLen(4) + data.
const frameHeaderSize = 12

var ErrFragmentTooLarge = errors.New("fragment too large for ring")

type Ring struct {
	mu   sync.Mutex
	size int
	rb   *ringbuffer.RingBuffer
}

// New creates a ring holding up to size bytes of framed fragments.
func New(size int) *Ring {
	return &Ring{
		size: size,
		rb:   ringbuffer.New(size).SetBlocking(false),
	}
}

// Enqueue appends a fragment, evicting oldest fragments when full.
func (r *Ring) Enqueue(frag capture.Fragment) error {
	frame := encodeFrame(frag)
	required := 4 + len(frame)

	r.mu.Lock()
	defer r.mu.Unlock()

	if required > r.rb.Capacity() {
		return ErrFragmentTooLarge
	}

	for r.rb.Free() < required {
		if !r.dropOldestLocked() {
			r.rb.Reset()
			break
		}
	}

	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(frame)))
	if _, err := r.rb.Write(prefix[:]); err != nil {
		return err
	}
	_, err := r.rb.Write(frame)
	return err
}

// Drain removes and returns every buffered fragment in FIFO order, leaving
// the ring empty. Fragments enqueued after Drain returns belong to the next
// snapshot.
func (r *Ring) Drain() []capture.Fragment {
	r.mu.Lock()
	defer r.mu.Unlock()

	var frags []capture.Fragment
	for !r.rb.IsEmpty() {
		frag, ok := r.dequeueLocked()
		if !ok {
			break
		}
		frags = append(frags, frag)
	}
	return frags
}

// Len reports the buffered byte count, framing included.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rb.Length()
}

// Capacity reports the ring's byte capacity.
func (r *Ring) Capacity() int {
	return r.size
}

func (r *Ring) dequeueLocked() (capture.Fragment, bool) {
	var prefix [4]byte
	n, err := r.rb.Read(prefix[:])
	if err != nil || n != 4 {
		return capture.Fragment{}, false
	}
	frameLen := int(binary.LittleEndian.Uint32(prefix[:]))

	frame := make([]byte, frameLen)
	n, err = r.rb.Read(frame)
	if err != nil || n != frameLen {
		return capture.Fragment{}, false
	}
	return decodeFrame(frame)
}

func (r *Ring) dropOldestLocked() bool {
	if r.rb.IsEmpty() {
		return false
	}
	_, ok := r.dequeueLocked()
	return ok
}

func encodeFrame(frag capture.Fragment) []byte {
	frame := make([]byte, frameHeaderSize+len(frag.Data))
	binary.LittleEndian.PutUint64(frame[0:], uint64(frag.Timestamp.UnixNano()))
	binary.LittleEndian.PutUint32(frame[8:], uint32(len(frag.Data)))
	copy(frame[frameHeaderSize:], frag.Data)
	return frame
}

func decodeFrame(frame []byte) (capture.Fragment, bool) {
	if len(frame) < frameHeaderSize {
		return capture.Fragment{}, false
	}
	ts := int64(binary.LittleEndian.Uint64(frame[0:]))
	dataLen := int(binary.LittleEndian.Uint32(frame[8:]))
	if len(frame[frameHeaderSize:]) < dataLen {
		return capture.Fragment{}, false
	}
	data := make([]byte, dataLen)
	copy(data, frame[frameHeaderSize:frameHeaderSize+dataLen])
	return capture.Fragment{Data: data, Timestamp: time.Unix(0, ts)}, true
}

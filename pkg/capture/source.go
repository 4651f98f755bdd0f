package capture

import (
	"context"
	"time"
)

// Fragment is a small binary unit emitted by a source at a fixed short
// period, finer-grained than a transcription segment.
type Fragment struct {
	Data      []byte
	Timestamp time.Time
}

// Options describe what the recorder asks of the capture host. DSP flags are
// requests: hosts without the processing log and continue.
type Options struct {
	SampleRate       int32
	Channels         int16
	FragmentPeriod   time.Duration
	EchoCancellation bool
	NoiseSuppression bool
	AutoGainControl  bool
}

// Source is a streaming capture device. Start acquires the device and begins
// emitting fragments on the returned channel; Stop requests one final
// fragment, releases the device, and closes the channel.
type Source interface {
	Start(ctx context.Context, opts Options) (<-chan Fragment, error)
	Stop(ctx context.Context) error
	Format() Format
}

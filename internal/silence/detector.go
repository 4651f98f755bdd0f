// Package silence tracks sustained low-volume spans in a live audio stream.
package silence

import (
	"time"
)

// Config tunes the detector. Threshold is a normalized volume (0..1);
// MinDuration is how long volume must stay below it before a span counts as
// silence.
type Config struct {
	Threshold   float64
	MinDuration time.Duration
}

// Detector is a volume-threshold state machine. It is not safe for
// concurrent use; callers feed it from a single sampling loop.
type Detector struct {
	cfg    Config
	silent bool
	since  time.Time
}

func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Sample feeds one instantaneous volume reading. It returns true once the
// stream has been continuously below the threshold for at least MinDuration,
// and keeps returning true on every call while the silence holds. Any sample
// at or above the threshold resets the span.
func (d *Detector) Sample(volume float64, now time.Time) bool {
	if volume >= d.cfg.Threshold {
		d.silent = false
		return false
	}
	if !d.silent {
		d.silent = true
		d.since = now
	}
	return now.Sub(d.since) >= d.cfg.MinDuration
}

// Reset clears any tracked silence span.
func (d *Detector) Reset() {
	d.silent = false
}

// Package recorder owns the chunking state machine: it pulls fragments from a
// capture source, flushes them into bounded segments on a repeating timer, and
// hands each surviving segment to the configured transcription service.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/voxpipe/voxpipe/internal/silence"
	"github.com/voxpipe/voxpipe/pkg/Logger"
	"github.com/voxpipe/voxpipe/pkg/audio"
	"github.com/voxpipe/voxpipe/pkg/capture"
	"github.com/voxpipe/voxpipe/pkg/capture/fragring"
	"github.com/voxpipe/voxpipe/pkg/transcribe"
)

const (
	StateIdle      = "idle"
	StateRecording = "recording"

	EventStart = "start"
	EventStop  = "stop"
)

var (
	ErrAlreadyRecording = errors.New("recorder is already recording")
	ErrNotRecording     = errors.New("recorder is not recording")
)

// Config tunes the recorder. Zero values fall back to the defaults below.
type Config struct {
	ChunkInterval   time.Duration // flush timer period
	MinSegment      time.Duration // shorter flushes are discarded
	MinPayloadBytes int           // smaller flushes are discarded
	SettleDelay     time.Duration // wait after stop before the last flush
	RingCapacity    int           // fragment ring size, bytes

	// OrderedResults surfaces results in segment order through a reorder
	// buffer instead of completion order.
	OrderedResults bool
	// FlushOnSilence cuts a chunk early after sustained silence. Off by
	// default; the timer alone drives flushing then.
	FlushOnSilence bool
	Silence        silence.Config

	Capture capture.Options
}

func (c *Config) applyDefaults() {
	if c.ChunkInterval == 0 {
		c.ChunkInterval = 6 * time.Second
	}
	if c.MinSegment == 0 {
		c.MinSegment = 500 * time.Millisecond
	}
	if c.MinPayloadBytes == 0 {
		c.MinPayloadBytes = 100
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = 200 * time.Millisecond
	}
	if c.RingCapacity == 0 {
		c.RingCapacity = 1 << 20
	}
}

// Stats is a point-in-time snapshot of the recorder.
type Stats struct {
	SessionID uuid.UUID
	State     string
	Chunks    int
	InFlight  int
	LastError string
}

type Recorder struct {
	cfg    Config
	svc    transcribe.Service
	source capture.Source
	logger *Logger.Logger

	machine *fsm.FSM

	onResult func(transcribe.TranscriptionResult)
	onError  func(error)
	onSource func(capture.Source)

	ring  *fragring.Ring
	order *orderBuffer
	det   *silence.Detector

	mu        sync.Mutex
	sessionID uuid.UUID
	lastFlush time.Time
	seq       int
	lastErr   string

	inFlight atomic.Int32
	loopDone chan struct{}

	nowFn func() time.Time
}

func New(cfg Config, svc transcribe.Service, source capture.Source, logger *Logger.Logger) *Recorder {
	cfg.applyDefaults()
	r := &Recorder{
		cfg:    cfg,
		svc:    svc,
		source: source,
		logger: logger,
		nowFn:  time.Now,
	}
	r.machine = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: EventStart, Src: []string{StateIdle}, Dst: StateRecording},
			{Name: EventStop, Src: []string{StateRecording}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)
	if cfg.FlushOnSilence {
		r.det = silence.New(cfg.Silence)
	}
	return r
}

// OnResult registers the callback invoked once per completed, non-discarded
// segment. Set before Start.
func (r *Recorder) OnResult(fn func(transcribe.TranscriptionResult)) {
	r.onResult = fn
}

// OnError registers the callback for transient per-segment errors. Set before
// Start.
func (r *Recorder) OnError(fn func(error)) {
	r.onError = fn
}

// OnSourceChange registers the callback fired whenever the live capture
// source reference changes, for visualization wiring. Set before Start.
func (r *Recorder) OnSourceChange(fn func(capture.Source)) {
	r.onSource = fn
}

// State reports the current state name.
func (r *Recorder) State() string {
	return r.machine.Current()
}

// Stats returns a snapshot of the current session.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		SessionID: r.sessionID,
		State:     r.machine.Current(),
		Chunks:    r.seq,
		InFlight:  int(r.inFlight.Load()),
		LastError: r.lastErr,
	}
}

// Start transitions Idle -> Recording: acquires the capture source, resets
// session state, and begins the fragment/flush loop. A failed source
// acquisition reverts to Idle and returns the error.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.machine.Event(ctx, EventStart); err != nil {
		return ErrAlreadyRecording
	}

	frags, err := r.source.Start(ctx, r.cfg.Capture)
	if err != nil {
		r.machine.SetState(StateIdle)
		return fmt.Errorf("failed to acquire capture source: %w", err)
	}

	now := r.nowFn()
	r.mu.Lock()
	r.sessionID = uuid.New()
	r.lastFlush = now
	r.seq = 0
	r.lastErr = ""
	r.mu.Unlock()

	r.ring = fragring.New(r.cfg.RingCapacity)
	if r.cfg.OrderedResults {
		r.order = newOrderBuffer()
	}
	if r.det != nil {
		r.det.Reset()
	}
	r.loopDone = make(chan struct{})

	if r.onSource != nil {
		r.onSource(r.source)
	}

	r.logger.Infof("Recording started: session %s, chunk interval %v", r.sessionID, r.cfg.ChunkInterval)

	go r.loop(frags)
	return nil
}

// loop accumulates fragments and flushes on each timer tick. It exits when
// the source closes its fragment channel on Stop.
func (r *Recorder) loop(frags <-chan capture.Fragment) {
	defer close(r.loopDone)

	ticker := time.NewTicker(r.cfg.ChunkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flush()

		case frag, ok := <-frags:
			if !ok {
				return
			}
			if err := r.ring.Enqueue(frag); err != nil {
				r.logger.Warnf("Dropping fragment: %v", err)
				continue
			}
			if r.det != nil {
				r.sampleSilence(frag)
			}
		}
	}
}

// sampleSilence flushes early once a silence span crosses the configured
// minimum, provided the pending chunk is long enough to survive the discard
// rules.
func (r *Recorder) sampleSilence(frag capture.Fragment) {
	level := audio.Level(frag.Data)
	if !r.det.Sample(level, frag.Timestamp) {
		return
	}
	r.mu.Lock()
	pending := r.nowFn().Sub(r.lastFlush)
	r.mu.Unlock()
	if pending < r.cfg.MinSegment {
		return
	}
	r.logger.Debugf("Sustained silence after %v of audio, flushing early", pending)
	r.det.Reset()
	r.flush()
}

// flush atomically drains the fragment ring into one segment. Capture keeps
// accumulating into the ring while the snapshot is processed. An empty
// snapshot is a no-op; a segment below the duration or size floor is
// discarded without a service call.
func (r *Recorder) flush() {
	frags := r.ring.Drain()
	now := r.nowFn()

	r.mu.Lock()
	start := r.lastFlush
	r.lastFlush = now
	r.mu.Unlock()

	if len(frags) == 0 {
		return
	}

	total := 0
	for _, f := range frags {
		total += len(f.Data)
	}
	payload := make([]byte, 0, total)
	for _, f := range frags {
		payload = append(payload, f.Data...)
	}

	seg := transcribe.AudioSegment{
		Data:       payload,
		SampleRate: r.cfg.Capture.SampleRate,
		Channels:   r.cfg.Capture.Channels,
		StartTime:  start,
		EndTime:    now,
	}

	if seg.Duration() < r.cfg.MinSegment || len(payload) < r.cfg.MinPayloadBytes {
		r.logger.Debugf("Discarding segment: %v, %d bytes", seg.Duration(), len(payload))
		return
	}

	r.mu.Lock()
	seq := r.seq
	r.seq++
	r.mu.Unlock()

	r.inFlight.Add(1)
	go r.submit(seg, seq)
}

// submit runs one transcription call. Calls are never cancelled: a slow
// remote call finishes in the background even after recording stops. A
// failure surfaces a transient error and releases the chunk's slot in the
// reorder buffer; it never stops recording and the segment is not retried.
func (r *Recorder) submit(seg transcribe.AudioSegment, seq int) {
	defer r.inFlight.Add(-1)

	res, err := r.svc.Transcribe(context.Background(), seg)
	if err != nil {
		if errors.Is(err, transcribe.ErrEmptyAudio) {
			r.logger.Debugf("Chunk %d skipped: empty payload", seq)
		} else {
			r.mu.Lock()
			r.lastErr = err.Error()
			r.mu.Unlock()
			r.logger.Errorf("Transcription failed for chunk %d: %v", seq, err)
			if r.onError != nil {
				r.onError(fmt.Errorf("chunk %d: %w", seq, err))
			}
		}
		if r.order != nil {
			r.deliverAll(r.order.Skip(seq))
		}
		return
	}

	res.Seq = seq
	if r.order != nil {
		r.deliverAll(r.order.Deliver(seq, res))
		return
	}
	r.deliver(res)
}

func (r *Recorder) deliverAll(results []transcribe.TranscriptionResult) {
	for _, res := range results {
		r.deliver(res)
	}
}

func (r *Recorder) deliver(res transcribe.TranscriptionResult) {
	r.logger.Debugf("Chunk %d transcribed: %q", res.Seq, res.Text)
	if r.onResult != nil {
		r.onResult(res)
	}
}

// Stop transitions Recording -> Idle: releases the capture source, waits out
// the settling delay so trailing fragments can land, then flushes whatever is
// still buffered exactly once. In-flight transcriptions keep running.
func (r *Recorder) Stop(ctx context.Context) error {
	if err := r.machine.Event(ctx, EventStop); err != nil {
		return ErrNotRecording
	}

	if err := r.source.Stop(ctx); err != nil {
		r.logger.Warnf("Failed to stop capture source: %v", err)
	}
	<-r.loopDone

	timer := time.NewTimer(r.cfg.SettleDelay)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
	}

	r.flush()

	if r.onSource != nil {
		r.onSource(nil)
	}

	r.logger.Infof("Recording stopped: session %s, %d chunks, %d still in flight",
		r.sessionID, r.Stats().Chunks, r.inFlight.Load())
	return nil
}

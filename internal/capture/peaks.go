package capture

import (
	"math"
	"sync/atomic"

	"github.com/wiremix/mixerd/internal/pwire"
)

// PeakCapture holds the live per-channel peak level for one captured node.
// It is written from the PipeWire stream's real-time process callback and
// read from the application/view goroutine; every field access is a plain
// atomic load/store at Relaxed-equivalent ordering (Go gives us nothing
// weaker), matching `atomic_f32.rs`'s AtomicF32.
//
// The first buffer a freshly-connected stream delivers is frequently a
// stale/garbage one left over from format negotiation, so Process ignores
// it — callers open a stream and call Process on every buffer as it
// arrives; the skip is internal bookkeeping here, not something the caller
// needs to coordinate.
type PeakCapture struct {
	channels int
	rate     uint32
	peaks    []atomic.Uint32
	dirty    atomic.Bool
	buffers  atomic.Uint64

	processor pwire.PeakProcessor
}

// New returns a PeakCapture for a stream with the given channel count and
// negotiated sample rate. processor may be nil, in which case each buffer's
// peak is stored unsmoothed.
func New(channels int, rate uint32, processor pwire.PeakProcessor) *PeakCapture {
	return &PeakCapture{
		channels:  channels,
		rate:      rate,
		peaks:     make([]atomic.Uint32, channels),
		processor: processor,
	}
}

// Process extracts one peak per channel from an interleaved F32LE buffer
// and folds it into the running ballistics state. samples holds
// len(samples)/channels frames.
func (c *PeakCapture) Process(samples []float32) {
	buffersSeen := c.buffers.Add(1)
	if buffersSeen == 1 {
		// first buffer post-connect is frequently stale; drop it.
		return
	}
	if len(samples) == 0 || c.channels == 0 {
		return
	}
	sampleCount := len(samples) / c.channels

	// The first non-discarded buffer initializes the filter to the observed
	// peak instead of smoothing up from the zero-valued atomic, so the
	// needle doesn't visibly rise from zero on connect.
	firstReal := buffersSeen == 2

	for ch := 0; ch < c.channels; ch++ {
		peak := maxAbsStrided(samples, ch, c.channels)
		current := peak
		if !firstReal {
			current = c.load(ch)
		}
		c.store(ch, c.applyProcessor(current, peak, sampleCount))
	}
	c.dirty.Store(true)
}

func (c *PeakCapture) applyProcessor(current, target float32, sampleCount int) float32 {
	if c.processor == nil {
		return target
	}
	return c.processor(current, target, sampleCount, c.rate)
}

func (c *PeakCapture) load(ch int) float32 {
	return math.Float32frombits(c.peaks[ch].Load())
}

func (c *PeakCapture) store(ch int, v float32) {
	c.peaks[ch].Store(math.Float32bits(v))
}

// Snapshot returns the current per-channel peak levels.
func (c *PeakCapture) Snapshot() []float32 {
	out := make([]float32, c.channels)
	for ch := range out {
		out[ch] = c.load(ch)
	}
	return out
}

// TakeDirty atomically reports whether any peak has changed since the last
// call, clearing the flag. Any number of Process calls between two
// TakeDirty calls coalesce into a single true — this is what keeps a
// redraw loop from waking up once per audio buffer (scenario S4).
func (c *PeakCapture) TakeDirty() bool {
	return c.dirty.Swap(false)
}

// Channels reports the channel count this capture was opened with.
func (c *PeakCapture) Channels() int { return c.channels }

// Rate reports the negotiated sample rate this capture was opened with.
func (c *PeakCapture) Rate() uint32 { return c.rate }

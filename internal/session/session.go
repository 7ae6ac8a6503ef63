// Package session owns the single-threaded PipeWire event loop: it folds
// the pwire.StateEvent values its Backend delivers into the replica,
// executes inbound Commands through that Backend, and is the only place
// Registry, StreamRegistry, and SyncRegistry are ever touched.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/wiremix/mixerd/internal/capture"
	"github.com/wiremix/mixerd/internal/metrics"
	"github.com/wiremix/mixerd/internal/pwire"
	"github.com/wiremix/mixerd/internal/replica"
	"github.com/wiremix/mixerd/internal/view"
)

// Backend is the boundary between this package's pure dispatch logic and
// an actual PipeWire client connection. No third-party Go PipeWire binding
// exists to depend on (see DESIGN.md), so production code supplies a
// hand-written implementation that dials the PipeWire socket directly;
// tests supply an in-memory fake.
type Backend interface {
	// Run connects and blocks, delivering every StateEvent the server
	// reports onto events, and every core.sync completion's sequence
	// number onto syncDone, until ctx is cancelled or a fatal error
	// occurs.
	Run(ctx context.Context, events chan<- pwire.StateEvent, syncDone chan<- uint32) error

	SetNodeProps(node pwire.ObjectId, props pwire.PodObject) error
	SetDeviceRoute(device pwire.ObjectId, route pwire.PodObject) error
	SetDeviceProfile(device pwire.ObjectId, profile pwire.PodObject) error
	SetMetadataProperty(metadata pwire.ObjectId, prop pwire.MetadataProperty) error

	StartNodeCapture(node pwire.ObjectId, serial uint64, captureSink bool) (*capture.Stream, error)

	// Sync issues a core.sync with the given sequence number; the backend
	// must eventually deliver a pwire.Ready-triggering completion back
	// through the SyncRegistry the Session owns.
	Sync(seq uint32) error

	Close() error
}

// Session is the top-level owner of one PipeWire connection's worth of
// state: the object/stream/sync registries, the replica, the capture
// policy, and the command intake other goroutines (transport, automation,
// HTTP) send into.
type Session struct {
	backend  Backend
	registry *pwire.Registry
	streams  *pwire.StreamRegistry
	sync     *pwire.SyncRegistry
	state    *replica.State
	policy   *replica.CapturePolicy

	commands chan pwire.Command
	events   chan pwire.StateEvent
	syncDone chan uint32

	// volumeLimit throttles SetNodeVolumes/SetDeviceRouteVolumes execution
	// against a UI that emits one command per animation frame while a
	// slider is being dragged.
	volumeLimit *rate.Limiter

	log zerolog.Logger

	mu           sync.RWMutex
	onStateEvent func(pwire.StateEvent)

	// latestView is republished after every handleEvent so other
	// goroutines (the debug API, snapshot exporter, metrics collector) can
	// read a consistent View without touching State directly.
	latestView atomic.Pointer[view.View]

	// captureStreamCount mirrors streams' size after every handleEvent, for
	// the same cross-goroutine-read reason as latestView.
	captureStreamCount atomic.Int64
}

// New builds a Session around backend. captureEnabled controls whether the
// capture policy ever starts a stream. processor is the config-supplied
// PeakProcessor applied when merging capture output into the replica (see
// replica.State.SetPeakProcessor); nil stores observed peaks unsmoothed.
func New(backend Backend, captureEnabled bool, processor pwire.PeakProcessor, log zerolog.Logger) *Session {
	state := replica.New()
	state.SetPeakProcessor(processor)
	s := &Session{
		backend:     backend,
		registry:    pwire.NewRegistry(),
		streams:     pwire.NewStreamRegistry(),
		sync:        pwire.NewSyncRegistry(),
		state:       state,
		commands:    make(chan pwire.Command, 64),
		events:      make(chan pwire.StateEvent, 256),
		syncDone:    make(chan uint32, 8),
		volumeLimit: rate.NewLimiter(rate.Limit(30), 30),
		log:         log.With().Str("component", "session").Logger(),
	}
	s.policy = replica.NewCapturePolicy(&captureAdapter{s}, captureEnabled)
	return s
}

// OnStateEvent registers a callback invoked, from the session's own
// goroutine, for every StateEvent after it has been folded into State —
// the application layer (transport, audit, metrics) hangs its own
// observers off this rather than reading State concurrently.
func (s *Session) OnStateEvent(fn func(pwire.StateEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStateEvent = fn
}

// Submit enqueues a command for execution on the session goroutine. Safe
// to call from any goroutine.
func (s *Session) Submit(cmd pwire.Command) {
	select {
	case s.commands <- cmd:
	default:
		s.log.Warn().Msg("command queue full, dropping command")
	}
}

// State returns the replica, for read-only use by the caller of Run on the
// same goroutine (e.g. to build a View right after a batch of events).
// Calling this from any other goroutine is a bug — State is not
// synchronized.
func (s *Session) State() *replica.State {
	return s.state
}

// Run drives the session loop until ctx is cancelled: it starts the
// backend's own event-delivery goroutine, then serially folds StateEvents
// and executes Commands, one at a time, forever preserving the
// single-threaded-callback-world invariant PipeWire requires.
func (s *Session) Run(ctx context.Context) error {
	backendErrs := make(chan error, 1)
	go func() {
		backendErrs <- s.backend.Run(ctx, s.events, s.syncDone)
	}()

	seq := s.sync.Issue()
	if err := s.backend.Sync(seq); err != nil {
		s.log.Error().Err(err).Msg("initial sync failed")
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.streams.StopAll()
			return s.backend.Close()

		case err := <-backendErrs:
			s.streams.StopAll()
			return err

		case ev := <-s.events:
			s.handleEvent(ev)

		case seq := <-s.syncDone:
			if s.sync.Done(seq) {
				s.handleEvent(pwire.Ready{})
			}

		case cmd := <-s.commands:
			s.execute(cmd)

		case <-ticker.C:
			for _, id := range s.registry.Drain() {
				s.log.Debug().Stringer("id", id).Msg("garbage-collected proxy")
			}
			for _, entry := range s.streams.Entries() {
				if !entry.Handle.TakeDirty() {
					continue
				}
				s.handleEvent(pwire.NodePeaksDirty{ID: entry.Node, Peaks: entry.Handle.Snapshot()})
			}
		}
	}
}

func (s *Session) handleEvent(ev pwire.StateEvent) {
	s.state.Update(ev, s.policy)
	metrics.StateEventsTotal.Inc()
	s.captureStreamCount.Store(int64(s.streams.Len()))

	v := view.From(s.state)
	s.latestView.Store(&v)

	s.mu.RLock()
	cb := s.onStateEvent
	s.mu.RUnlock()
	if cb != nil {
		cb(ev)
	}
}

// LatestView returns the most recently published View. Safe to call from
// any goroutine; returns a zero View before the first event has been
// folded.
func (s *Session) LatestView() view.View {
	v := s.latestView.Load()
	if v == nil {
		return view.View{}
	}
	return *v
}

// ActiveCaptureCount reports how many nodes currently have a live
// peak-capture stream attached. Safe to call from any goroutine —
// StreamRegistry is otherwise session-goroutine-only, so this reads
// through an atomic snapshot taken on the session goroutine rather than
// the registry itself.
func (s *Session) ActiveCaptureCount() int {
	return int(s.captureStreamCount.Load())
}

// SinkCount, SourceCount, PlaybackStreamCount, and CaptureStreamCount
// satisfy metrics.GraphStats off the latest published View.
func (s *Session) SinkCount() int           { return len(s.LatestView().Sinks) }
func (s *Session) SourceCount() int         { return len(s.LatestView().Sources) }
func (s *Session) PlaybackStreamCount() int { return len(s.LatestView().PlaybackStreams) }
func (s *Session) CaptureStreamCount() int  { return len(s.LatestView().CaptureStreams) }

// captureAdapter lets replica.CapturePolicy drive the Session without the
// replica package depending on Session or Backend directly.
type captureAdapter struct{ s *Session }

func (c *captureAdapter) StartNodeCapture(node pwire.ObjectId, serial uint64, captureSink bool) {
	stream, err := c.s.backend.StartNodeCapture(node, serial, captureSink)
	if err != nil {
		c.s.log.Warn().Err(err).Stringer("node", node).Msg("failed to start capture")
		return
	}
	c.s.streams.Start(node, stream)
	c.s.handleEvent(pwire.NodeStreamStarted{ID: node, Rate: stream.Rate(), Channels: stream.Channels()})
}

func (c *captureAdapter) StopNodeCapture(node pwire.ObjectId) {
	if c.s.streams.Stop(node) {
		c.s.handleEvent(pwire.NodeStreamStopped{ID: node})
	}
}

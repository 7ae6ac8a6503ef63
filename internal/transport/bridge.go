package transport

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wiremix/mixerd/internal/pwire"
	"github.com/wiremix/mixerd/internal/view"
)

// ViewSource supplies the current graph projection, published from the
// session goroutine and safe to read from any goroutine. Satisfied by
// *session.Session.
type ViewSource interface {
	LatestView() view.View
}

// Bridge wires a Session's StateEvent stream and periodic View snapshots
// onto a Hub's connected WebSocket clients, batching bursts of StateEvents
// (e.g. the flood of *Added events at connect time) into single NDJSON
// writes instead of one frame per event.
//
// Bridge does not register itself against a session's OnStateEvent — the
// caller composes HandleStateEvent with its other observers (audit,
// automation) into a single callback, since Session supports only one.
type Bridge struct {
	hub   *Hub
	view  ViewSource
	batch *batcher[pwire.StateEvent]
	log   zerolog.Logger
}

// NewBridge returns a Bridge broadcasting onto hub. Call Run to start the
// periodic View push loop, and feed it events via HandleStateEvent.
func NewBridge(hub *Hub, view ViewSource, log zerolog.Logger) *Bridge {
	b := &Bridge{hub: hub, view: view, log: log.With().Str("component", "transport-bridge").Logger()}
	b.batch = newBatcher(64, 10*time.Millisecond, b.flush)
	return b
}

// HandleStateEvent enqueues ev for batched broadcast. Safe to call from the
// session goroutine only, matching Session.OnStateEvent's contract.
func (b *Bridge) HandleStateEvent(ev pwire.StateEvent) {
	b.batch.Add(ev)
}

func (b *Bridge) flush(events []pwire.StateEvent) {
	var frame []byte
	for _, ev := range events {
		data, err := encodeStateEvent(ev)
		if err != nil {
			b.log.Warn().Err(err).Msg("dropping unencodable state event")
			continue
		}
		frame = append(frame, data...)
		frame = append(frame, '\n')
	}
	if len(frame) > 0 {
		b.hub.Broadcast(frame)
	}
}

// Run periodically broadcasts the latest View until ctx is cancelled,
// mirroring the "View is rebuilt on each redraw" cadence a local UI would
// use for its own render loop.
func (b *Bridge) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.batch.Stop()
			return
		case <-ticker.C:
			if b.hub.ClientCount() == 0 {
				continue
			}
			data, err := encodeView(b.view.LatestView())
			if err != nil {
				b.log.Warn().Err(err).Msg("failed to encode view")
				continue
			}
			b.hub.Broadcast(data)
		}
	}
}

// InitialViewFunc returns a closure suitable for ServeWS's initialView
// parameter, snapshotting src.LatestView() at call time.
func InitialViewFunc(src ViewSource) func() []byte {
	return func() []byte {
		data, err := encodeView(src.LatestView())
		if err != nil {
			return nil
		}
		return data
	}
}

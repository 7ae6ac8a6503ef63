package pwire

// PeakHandle is the subset of a capture stream the session needs to drive
// it: start it against a target node, tear it down, and drain its
// coalesced peak output. The concrete implementation (an actual PipeWire
// stream bound to a peak-extracting process callback) lives in
// internal/capture, which depends on this package rather than the other
// way around — StreamRegistry only needs the shape, never the ballistics.
type PeakHandle interface {
	Close() error

	// TakeDirty atomically reports whether any peak has changed since the
	// last call, clearing the flag.
	TakeDirty() bool

	// Snapshot returns the current per-channel peak levels.
	Snapshot() []float32
}

// StreamEntry is one capture stream the session has started, keyed by the
// node it's listening to.
type StreamEntry struct {
	Node   ObjectId
	Handle PeakHandle
}

// StreamRegistry tracks which nodes currently have a live capture stream
// attached, so the capture policy (internal/replica) can start one exactly
// once per eligible node and stop it exactly once when the node stops
// being eligible (unlinked, removed, or no longer routed anywhere).
//
// Like Registry, this is single-owner: only the session goroutine touches
// it.
type StreamRegistry struct {
	streams map[ObjectId]*StreamEntry
}

// NewStreamRegistry returns an empty stream registry.
func NewStreamRegistry() *StreamRegistry {
	return &StreamRegistry{streams: make(map[ObjectId]*StreamEntry)}
}

// Start records a newly-started capture stream for node. It is the caller's
// responsibility to have actually created the stream; Start just tracks it.
func (s *StreamRegistry) Start(node ObjectId, handle PeakHandle) {
	s.streams[node] = &StreamEntry{Node: node, Handle: handle}
}

// Active reports whether node currently has a capture stream.
func (s *StreamRegistry) Active(node ObjectId) bool {
	_, ok := s.streams[node]
	return ok
}

// Stop closes and forgets the capture stream for node, if any. Returns
// false if node had no stream.
func (s *StreamRegistry) Stop(node ObjectId) bool {
	entry, ok := s.streams[node]
	if !ok {
		return false
	}
	delete(s.streams, node)
	_ = entry.Handle.Close()
	return true
}

// Len reports how many capture streams are currently active.
func (s *StreamRegistry) Len() int {
	return len(s.streams)
}

// Nodes returns every node currently being captured, ascending by id.
func (s *StreamRegistry) Nodes() []ObjectId {
	ids := make([]ObjectId, 0, len(s.streams))
	for id := range s.streams {
		ids = append(ids, id)
	}
	return SortObjectIds(ids)
}

// Entries returns every live stream entry, ascending by node id, for
// periodic draining (polling each stream's coalesced dirty flag).
func (s *StreamRegistry) Entries() []*StreamEntry {
	ids := s.Nodes()
	out := make([]*StreamEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.streams[id])
	}
	return out
}

// StopAll closes every active stream, used on session shutdown.
func (s *StreamRegistry) StopAll() {
	for node := range s.streams {
		s.Stop(node)
	}
}

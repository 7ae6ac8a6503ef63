package pwire

// SyncRegistry tracks outstanding `core.sync` round-trips so the session
// can tell when every object that existed at connect time has finished
// announcing its initial params, and emit exactly one Ready event for that
// moment (scenario S6) — never once per object, never more than once ever.
//
// PipeWire's core.sync takes a caller-chosen sequence number and calls back
// with that same number once every event queued before the sync request has
// been dispatched. The session issues one sync as soon as its loop starts;
// SyncRegistry tracks whether that particular sequence is still
// outstanding.
type SyncRegistry struct {
	pending map[uint32]struct{}
	nextSeq uint32
	fired   bool
}

// NewSyncRegistry returns an empty sync registry.
func NewSyncRegistry() *SyncRegistry {
	return &SyncRegistry{pending: make(map[uint32]struct{})}
}

// Issue allocates a new sequence number and marks it outstanding. The
// caller is expected to pass the returned value to the backend's
// core.sync() call.
func (s *SyncRegistry) Issue() uint32 {
	seq := s.nextSeq
	s.nextSeq++
	s.pending[seq] = struct{}{}
	return seq
}

// Done marks seq as having come back from core.sync's completion callback.
// It returns true exactly once: the first time the registry transitions to
// having no outstanding syncs after never having fired Ready before. Callers
// use that single true to emit the one Ready event the session promises.
func (s *SyncRegistry) Done(seq uint32) bool {
	delete(s.pending, seq)
	if s.fired || len(s.pending) > 0 {
		return false
	}
	s.fired = true
	return true
}

// Outstanding reports how many sync requests are still in flight.
func (s *SyncRegistry) Outstanding() int {
	return len(s.pending)
}

// ReadyFired reports whether the single Ready event has already been sent.
func (s *SyncRegistry) ReadyFired() bool {
	return s.fired
}

package capture

// StopFunc tears down the underlying PipeWire stream (disconnects and
// destroys the proxy). It is supplied by internal/session, which owns the
// actual backend connection; this package only owns the peak math.
type StopFunc func() error

// Stream pairs a running capture's PeakCapture with the function that stops
// it, and is what StreamRegistry actually stores as a pwire.PeakHandle.
type Stream struct {
	Node  uint32
	Peaks *PeakCapture
	stop  StopFunc
}

// NewStream wraps an already-started capture.
func NewStream(node uint32, peaks *PeakCapture, stop StopFunc) *Stream {
	return &Stream{Node: node, Peaks: peaks, stop: stop}
}

// Close stops the backing PipeWire stream exactly once.
func (s *Stream) Close() error {
	if s.stop == nil {
		return nil
	}
	stop := s.stop
	s.stop = nil
	return stop()
}

// TakeDirty satisfies pwire.PeakHandle by delegating to the underlying
// PeakCapture.
func (s *Stream) TakeDirty() bool { return s.Peaks.TakeDirty() }

// Snapshot satisfies pwire.PeakHandle by delegating to the underlying
// PeakCapture.
func (s *Stream) Snapshot() []float32 { return s.Peaks.Snapshot() }

// Channels reports the channel count this stream's PeakCapture was opened
// with, for the NodeStreamStarted event the session emits once a capture
// successfully starts.
func (s *Stream) Channels() int { return s.Peaks.Channels() }

// Rate reports the negotiated sample rate this stream's PeakCapture was
// opened with.
func (s *Stream) Rate() uint32 { return s.Peaks.Rate() }

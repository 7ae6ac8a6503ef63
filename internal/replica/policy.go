package replica

import "github.com/wiremix/mixerd/internal/pwire"

// CaptureStarter issues the actual node-capture-start/stop commands.
// internal/session implements this against the live backend; tests can
// supply a recording fake.
type CaptureStarter interface {
	StartNodeCapture(node pwire.ObjectId, serial uint64, captureSink bool)
	StopNodeCapture(node pwire.ObjectId)
}

// CapturePolicy decides which nodes should have a peak-capture stream
// attached, and drives CaptureStarter accordingly. It is a direct port of
// wiremix's CaptureManager: sources and playback/capture streams are
// captured as soon as they appear; sinks are captured once linked; started
// exactly once per eligible node and stopped exactly once it stops being
// eligible.
type CapturePolicy struct {
	capturing map[pwire.ObjectId]struct{}
	starter   CaptureStarter
	enabled   bool
}

// NewCapturePolicy returns a policy that issues commands through starter.
// enabled lets a config flag disable capture entirely (scenario cost: no
// capture streams means no peaks, which is valid when the terminal UI
// doesn't render meters).
func NewCapturePolicy(starter CaptureStarter, enabled bool) *CapturePolicy {
	return &CapturePolicy{capturing: make(map[pwire.ObjectId]struct{}), starter: starter, enabled: enabled}
}

// OnNode is called whenever a node's eligibility might have changed: on
// add, and after a media-class-bearing property update. Sources and
// application streams capture immediately; sinks wait for OnLink (a sink
// with no input link has nothing audible to meter).
func (p *CapturePolicy) OnNode(node *Node) {
	if !(node.Class.IsSource() || node.Class.IsPlaybackStream() || node.Class.IsCaptureStream()) {
		return
	}
	if _, ok := node.Props.ObjectSerial(); !ok {
		return
	}
	if _, already := p.capturing[node.ID]; already {
		return
	}
	p.start(node)
}

// OnLink is called when a node gains an input link. This is what starts
// capture for sinks; sources and streams are normally already captured via
// OnNode, and a node that is already capturing is left alone.
func (p *CapturePolicy) OnLink(node *Node) {
	if !(node.Class.IsEndpoint() || node.Class.IsPlaybackStream() || node.Class.IsCaptureStream()) {
		return
	}
	if _, already := p.capturing[node.ID]; already {
		return
	}
	p.start(node)
}

// OnPositionsChanged is called when a captured node's channel layout
// changes (e.g. a stream renegotiates format) — the capture is restarted
// against the new layout.
func (p *CapturePolicy) OnPositionsChanged(node *Node) {
	if _, ok := p.capturing[node.ID]; !ok {
		return
	}
	p.start(node)
}

// OnRemoved is called when a node is removed, or loses its last input
// link. It always issues a stop, even if the node was never captured —
// matching CaptureManager's unconditional `stop_capture_command`.
func (p *CapturePolicy) OnRemoved(node *Node) {
	if !p.enabled {
		return
	}
	delete(p.capturing, node.ID)
	p.starter.StopNodeCapture(node.ID)
}

func (p *CapturePolicy) start(node *Node) {
	if !p.enabled {
		return
	}
	serial, ok := node.Props.ObjectSerial()
	if !ok {
		return
	}
	p.capturing[node.ID] = struct{}{}
	p.starter.StartNodeCapture(node.ID, serial, node.Class.IsSink() || node.Class.IsSource())
}

// Capturing reports whether node currently has policy-tracked capture.
func (p *CapturePolicy) Capturing(node pwire.ObjectId) bool {
	_, ok := p.capturing[node]
	return ok
}

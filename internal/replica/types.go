// Package replica holds the event-sourced PipeWire graph replica: the
// State the daemon folds StateEvents into, and the capture policy that
// decides which nodes get a peak-capture stream.
package replica

import "github.com/wiremix/mixerd/internal/pwire"

// Device is a PipeWire "Audio/Device" card: ALSA or otherwise, carrying a
// set of enumerated routes/profiles and the currently active ones.
type Device struct {
	ID         pwire.ObjectId
	Props      *pwire.PropertyStore
	EnumRoutes map[int32]EnumRoute // keyed by route index
	Routes     map[int32]Route     // keyed by card device index, not route index
	Profiles   map[int32]Profile
	ActiveProfile int32
}

// EnumRoute is one of a device's available (but not necessarily active)
// routes.
type EnumRoute struct {
	Index       int32
	Description string
	Available   bool
	Profiles    []int32
	Devices     []int32
}

// Route is one of a device's currently active routes, keyed by the card
// device index it applies to — not by route index, per `monitor/device.rs`.
type Route struct {
	Index       int32
	Device      int32
	Profile     int32
	Description string
	Available   bool
	Volumes     []float32
	Mute        bool
}

// Profile is one of a card's available profiles.
type Profile struct {
	Index       int32
	Name        string
	Description string
	Available   bool
	Devices     []int32
}

// Node is a PipeWire "Audio/Sink", "Audio/Source", or application
// stream node.
type Node struct {
	ID        pwire.ObjectId
	Props     *pwire.PropertyStore
	Class     pwire.MediaClass
	Volumes   []float32
	VolumesSet bool // whether channel volumes have ever been reported
	Mute      bool
	// DeviceInfo, when non-nil, ties this node back to the card device
	// index/route that owns its volume controls (set for hardware
	// sink/source nodes, nil for application streams).
	DeviceInfo *DeviceInfo
	// Peaks holds the most recent capture peaks, if this node has a
	// capture stream attached. nil otherwise.
	Peaks []float32
	// Rate is the capture stream's negotiated sample rate in Hz, set when
	// NodeStreamStarted arrives and cleared on NodeStreamStopped. A peaks
	// merge is dropped while this is unknown (zero).
	Rate uint32
	// Positions is the node's channel layout (e.g. ["FL","FR"]), from the
	// port config param's audio position array.
	Positions []string
}

// DeviceInfo is the (device, route index, card device index) triple a
// hardware node's volume/mute resolves through, mirroring wiremix's
// `device_info` triple.
type DeviceInfo struct {
	Device      pwire.ObjectId
	RouteIndex  int32
	RouteDevice int32
}

// Client is a connected PipeWire client (an application).
type Client struct {
	ID    pwire.ObjectId
	Props *pwire.PropertyStore
}

// Link connects one node's output to another node's input.
type Link struct {
	ID         pwire.ObjectId
	OutputNode pwire.ObjectId
	InputNode  pwire.ObjectId
}

// Metadata mirrors a `pw_metadata` object: a small property bag keyed by
// (subject, key) rather than by a single property dictionary. Subject 0 is
// the global scope carrying `default.audio.sink`/`default.audio.source`.
type Metadata struct {
	ID    pwire.ObjectId
	Name  string
	Props map[uint32]map[string]MetadataValue
}

// MetadataValue is one (type, value) pair stored for a metadata key.
type MetadataValue struct {
	Type  string
	Value string
}

// State is the full replica: every bound object, keyed by id, as folded
// from the StateEvent stream so far. It is owned by exactly one goroutine
// (spec.md §5's "application/replica owner" role) and never mutated
// concurrently.
type State struct {
	Devices  map[pwire.ObjectId]*Device
	Nodes    map[pwire.ObjectId]*Node
	Clients  map[pwire.ObjectId]*Client
	Links    map[pwire.ObjectId]*Link
	Metadata map[pwire.ObjectId]*Metadata

	// PeakProcessor, if set, is applied when merging a NodePeaksDirty
	// observation into a node's displayed peaks (§4.6's NodePeaks merge),
	// independently of whatever smoothing the capture stream itself already
	// applied — set by the session owner from its config-supplied
	// processor via SetPeakProcessor.
	PeakProcessor pwire.PeakProcessor
}

// New returns an empty replica.
func New() *State {
	return &State{
		Devices:  make(map[pwire.ObjectId]*Device),
		Nodes:    make(map[pwire.ObjectId]*Node),
		Clients:  make(map[pwire.ObjectId]*Client),
		Links:    make(map[pwire.ObjectId]*Link),
		Metadata: make(map[pwire.ObjectId]*Metadata),
	}
}

// SetPeakProcessor installs the collaborator used for the NodePeaksDirty
// merge. Passing nil (the default) makes the merge store observed peaks
// unchanged.
func (s *State) SetPeakProcessor(p pwire.PeakProcessor) {
	s.PeakProcessor = p
}

// DefaultMetadata returns the first bound metadata object named
// "default", which is where default.audio.sink/source live, or nil.
func (s *State) DefaultMetadata() *Metadata {
	for _, m := range s.Metadata {
		if m.Name == "default" {
			return m
		}
	}
	return nil
}

// LinksInto returns every link whose input is node.
func (s *State) LinksInto(node pwire.ObjectId) []*Link {
	var out []*Link
	for _, l := range s.Links {
		if l.InputNode == node {
			out = append(out, l)
		}
	}
	return out
}

// LinksFrom returns every link whose output is node.
func (s *State) LinksFrom(node pwire.ObjectId) []*Link {
	var out []*Link
	for _, l := range s.Links {
		if l.OutputNode == node {
			out = append(out, l)
		}
	}
	return out
}

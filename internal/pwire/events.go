package pwire

// StateEvent is the tagged union of everything the session loop can report
// upward to the Replica. Each concrete type below implements stateEvent()
// purely as a marker — callers type-switch on the concrete type.
type StateEvent interface {
	stateEvent()
}

type DeviceAdded struct {
	ID    ObjectId
	Props *PropertyStore
}

type DeviceRemoved struct{ ID ObjectId }

type DeviceParamsChanged struct {
	ID     ObjectId
	Routes []EnumRouteParam
	Active []RouteParam
	Profiles []ProfileParam
	ActiveProfile int32
}

type NodeAdded struct {
	ID    ObjectId
	Props *PropertyStore
}

type NodeRemoved struct{ ID ObjectId }

type NodeParamsChanged struct {
	ID      ObjectId
	Mute    *bool
	Volumes []float32
	// Positions is the node's channel layout (e.g. ["FL","FR"]), from the
	// port config param's audio position array. nil means unchanged.
	Positions []string
}

type ClientAdded struct {
	ID    ObjectId
	Props *PropertyStore
}

type ClientRemoved struct{ ID ObjectId }

type LinkAdded struct {
	ID           ObjectId
	OutputNode   ObjectId
	InputNode    ObjectId
}

type LinkRemoved struct{ ID ObjectId }

type MetadataAdded struct {
	ID    ObjectId
	Props *PropertyStore
}

type MetadataRemoved struct{ ID ObjectId }

// MetadataPropertyChanged mirrors `pw_metadata` update events: subject 0
// carries the default-sink/default-source JSON blobs the view layer
// resolves through.
type MetadataPropertyChanged struct {
	MetadataID ObjectId
	Subject    uint32
	Key        string
	Type       string
	Value      string
}

// NodeStreamStarted is emitted once a capture stream's format negotiation
// completes: rate is the negotiated sample rate in Hz, channels the
// planar channel count the replica should size the node's peaks array to.
type NodeStreamStarted struct {
	ID       ObjectId
	Rate     uint32
	Channels int
}

// NodeStreamStopped is emitted when a capture stream is torn down, either
// because the node was removed/unlinked or capture was explicitly stopped.
type NodeStreamStopped struct{ ID ObjectId }

// NodePeaksDirty carries a freshly observed peak snapshot up from the
// capture stream's dirty-flag coalescing (at most one per redraw tick
// regardless of how many process callbacks fired in between — scenario
// S4). Peaks are the per-channel absolute amplitudes as currently held by
// the capture thread; Samples is passed through to the replica's own
// PeakProcessor call. The session's peak poll leaves Samples at zero,
// since a PeakHandle exposes no per-buffer frame count.
type NodePeaksDirty struct {
	ID      ObjectId
	Peaks   []float32
	Samples int
}

// Ready is emitted exactly once, after the initial core.sync round-trip
// following every object present at connect time has been bound and its
// initial param events drained (scenario S6).
type Ready struct{}

// Error reports a recoverable failure (a POD the daemon couldn't apply,
// a proxy bound to an object that vanished mid-flight, and so on). It never
// tears down the session on its own.
type Error struct {
	Op  string
	Err error
}

func (DeviceAdded) stateEvent()              {}
func (DeviceRemoved) stateEvent()            {}
func (DeviceParamsChanged) stateEvent()      {}
func (NodeAdded) stateEvent()                {}
func (NodeRemoved) stateEvent()              {}
func (NodeParamsChanged) stateEvent()        {}
func (ClientAdded) stateEvent()              {}
func (ClientRemoved) stateEvent()            {}
func (LinkAdded) stateEvent()                {}
func (LinkRemoved) stateEvent()              {}
func (MetadataAdded) stateEvent()            {}
func (MetadataRemoved) stateEvent()          {}
func (MetadataPropertyChanged) stateEvent()  {}
func (NodeStreamStarted) stateEvent()        {}
func (NodeStreamStopped) stateEvent()        {}
func (NodePeaksDirty) stateEvent()           {}
func (Ready) stateEvent()                    {}
func (Error) stateEvent()                    {}

// EnumRouteParam is one entry from a device's enumerated (available, not
// necessarily active) routes.
type EnumRouteParam struct {
	Index          int32
	Device         int32
	Name           string
	Description    string
	Direction      int32
	Profiles       []int32
	AvailableValue bool
}

// Available reports whether this route is currently usable (plugged in, in
// PipeWire's SPA_PARAM_AVAILABILITY_yes sense).
func (e EnumRouteParam) Available() bool { return e.AvailableValue }

// RouteParam is one of a device's currently active routes.
type RouteParam struct {
	Index   int32
	Device  int32
	Mute    bool
	Volumes []float32
}

// RouteDevice, RouteVolumes, and RouteMute satisfy replica.RouteParamLike,
// letting the replica fold a route update into every node it backs without
// this package needing to know about replica's Node type.
func (r RouteParam) RouteDevice() int32      { return r.Device }
func (r RouteParam) RouteVolumes() []float32 { return r.Volumes }
func (r RouteParam) RouteMute() bool         { return r.Mute }

// ProfileParam is one of a card's available profiles.
type ProfileParam struct {
	Index       int32
	Name        string
	Description string
	Available   bool
}

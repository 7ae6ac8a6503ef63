package pwire

// Command is the tagged union of user/UI intents the session loop consumes
// and translates into bound-proxy method calls. Like StateEvent, each
// variant's marker method exists only to close the union.
type Command interface {
	command()
}

// SetNodeMute toggles a node's Props mute flag.
type SetNodeMute struct {
	Node ObjectId
	Mute bool
}

// SetNodeVolumes sets a node's per-channel linear volumes.
type SetNodeVolumes struct {
	Node    ObjectId
	Volumes []float32
}

// SetDeviceRouteMute toggles mute on a device's currently active route.
type SetDeviceRouteMute struct {
	Device      ObjectId
	RouteIndex  int32
	RouteDevice int32
	Mute        bool
}

// SetDeviceRouteVolumes sets per-channel linear volumes on a device's
// currently active route.
type SetDeviceRouteVolumes struct {
	Device      ObjectId
	RouteIndex  int32
	RouteDevice int32
	Volumes     []float32
}

// SetRoute switches a device to a different enumerated route.
type SetRoute struct {
	Device      ObjectId
	RouteIndex  int32
	RouteDevice int32
}

// SetProfile switches a device's (card's) active profile.
type SetProfile struct {
	Device ObjectId
	Index  int32
}

// SetDefaultSink updates the `default.audio.sink` metadata property on the
// default metadata object.
type SetDefaultSink struct {
	MetadataID ObjectId
	NodeName   string
}

// SetDefaultSource updates `default.audio.source`.
type SetDefaultSource struct {
	MetadataID ObjectId
	NodeName   string
}

// SetNodeTarget requests a node be (re)linked to a specific target object,
// by setting its `target.object` metadata, or clears it back to automatic
// routing when TargetName is empty (scenario S5).
type SetNodeTarget struct {
	MetadataID ObjectId
	Node       ObjectId
	TargetName string
}

func (SetNodeMute) command()            {}
func (SetNodeVolumes) command()         {}
func (SetDeviceRouteMute) command()     {}
func (SetDeviceRouteVolumes) command()  {}
func (SetRoute) command()               {}
func (SetProfile) command()             {}
func (SetDefaultSink) command()         {}
func (SetDefaultSource) command()       {}
func (SetNodeTarget) command()          {}

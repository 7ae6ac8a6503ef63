package session

import (
	"github.com/wiremix/mixerd/internal/metrics"
	"github.com/wiremix/mixerd/internal/pwire"
)

// execute dispatches one Command to the backend, building whatever Pod the
// operation needs. Volume-bearing commands are rate-limited so a UI that
// emits a command per animation frame while a slider is dragged can't
// flood the backend with redundant Props updates.
func (s *Session) execute(cmd pwire.Command) {
	metrics.CommandsTotal.WithLabelValues(commandKind(cmd)).Inc()

	switch c := cmd.(type) {
	case pwire.SetNodeMute:
		s.applyNodeProps(c.Node, pwire.NewMuteProps(c.Mute))

	case pwire.SetNodeVolumes:
		if !s.volumeLimit.Allow() {
			return
		}
		s.applyNodeProps(c.Node, pwire.NewChannelVolumesProps(c.Volumes))

	case pwire.SetDeviceRouteMute:
		s.applyDeviceRouteProps(c.Device, c.RouteIndex, c.RouteDevice, pwire.NewMuteProps(c.Mute))

	case pwire.SetDeviceRouteVolumes:
		if !s.volumeLimit.Allow() {
			return
		}
		s.applyDeviceRouteProps(c.Device, c.RouteIndex, c.RouteDevice, pwire.NewChannelVolumesProps(c.Volumes))

	case pwire.SetRoute:
		obj := pwire.NewRouteObject(c.RouteIndex, c.RouteDevice, true)
		if err := s.backend.SetDeviceRoute(c.Device, obj); err != nil {
			s.log.Warn().Err(err).Msg("set route failed")
		}

	case pwire.SetProfile:
		obj := pwire.NewProfileObject(c.Index, true)
		if err := s.backend.SetDeviceProfile(c.Device, obj); err != nil {
			s.log.Warn().Err(err).Msg("set profile failed")
		}

	case pwire.SetDefaultSink:
		s.setMetadataProperty(c.MetadataID, 0, "default.audio.sink", nodeNameJSON(c.NodeName))

	case pwire.SetDefaultSource:
		s.setMetadataProperty(c.MetadataID, 0, "default.audio.source", nodeNameJSON(c.NodeName))

	case pwire.SetNodeTarget:
		s.setMetadataProperty(c.MetadataID, uint32(c.Node), "target.object", c.TargetName)

	default:
		s.log.Warn().Msg("unrecognized command type")
	}
}

func (s *Session) applyNodeProps(node pwire.ObjectId, props pwire.PodObject) {
	if err := s.backend.SetNodeProps(node, props); err != nil {
		s.log.Warn().Err(err).Stringer("node", node).Msg("set node props failed")
	}
}

// applyDeviceRouteProps wraps a mute/volume Props object inside a
// ParamRoute's nested props field, since a device's node-facing controls
// are actually a property of its active route, not of the device itself —
// the same wrapping `monitor/device.rs`'s ParamRoute deserialization
// expects in reverse.
func (s *Session) applyDeviceRouteProps(device pwire.ObjectId, index, routeDevice int32, inner pwire.PodObject) {
	route := pwire.PodObject{
		Type: pwire.ObjectParamRoute,
		Props: []pwire.PodProperty{
			{Key: pwire.PropRouteIndex, Value: pwire.PodIntValue(index)},
			{Key: pwire.PropRouteDevice, Value: pwire.PodIntValue(routeDevice)},
			{Key: pwire.PropRouteSave, Value: pwire.PodBoolValue(true)},
			{Key: pwire.PropParamID, Value: inner},
		},
	}
	if err := s.backend.SetDeviceRoute(device, route); err != nil {
		s.log.Warn().Err(err).Stringer("device", device).Msg("set device route props failed")
	}
}

func (s *Session) setMetadataProperty(metadata pwire.ObjectId, subject uint32, key, value string) {
	propType := "Spa:String:JSON"
	if key == "target.object" {
		propType = "Spa:Id"
	}
	prop := pwire.MetadataProperty{Subject: subject, Key: key, Type: propType, Value: value}
	if err := s.backend.SetMetadataProperty(metadata, prop); err != nil {
		s.log.Warn().Err(err).Msg("set metadata property failed")
	}
}

func nodeNameJSON(nodeName string) string {
	if nodeName == "" {
		return ""
	}
	return `{"name":"` + nodeName + `"}`
}

func commandKind(cmd pwire.Command) string {
	switch cmd.(type) {
	case pwire.SetNodeMute:
		return "set_node_mute"
	case pwire.SetNodeVolumes:
		return "set_node_volumes"
	case pwire.SetDeviceRouteMute:
		return "set_device_route_mute"
	case pwire.SetDeviceRouteVolumes:
		return "set_device_route_volumes"
	case pwire.SetRoute:
		return "set_route"
	case pwire.SetProfile:
		return "set_profile"
	case pwire.SetDefaultSink:
		return "set_default_sink"
	case pwire.SetDefaultSource:
		return "set_default_source"
	case pwire.SetNodeTarget:
		return "set_node_target"
	default:
		return "unknown"
	}
}

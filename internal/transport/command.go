package transport

import (
	"encoding/json"
	"fmt"

	"github.com/wiremix/mixerd/internal/pwire"
)

// commandEnvelope is the wire shape of a Command arriving from a UI client:
// a "type" discriminator plus whichever fields that type needs. Unlike
// StateEvent (server -> client, one struct per concrete type), commands
// arrive as a single JSON object so a client never needs to know Go's
// interface/marker-method plumbing.
type commandEnvelope struct {
	Type string `json:"type"`

	Node   pwire.ObjectId `json:"node,omitempty"`
	Device pwire.ObjectId `json:"device,omitempty"`

	Mute    bool      `json:"mute,omitempty"`
	Volumes []float32 `json:"volumes,omitempty"`

	RouteIndex  int32 `json:"route_index,omitempty"`
	RouteDevice int32 `json:"route_device,omitempty"`
	ProfileIndex int32 `json:"profile_index,omitempty"`

	MetadataID pwire.ObjectId `json:"metadata_id,omitempty"`
	NodeName   string         `json:"node_name,omitempty"`
	TargetName string         `json:"target_name,omitempty"`
}

// decodeCommand unmarshals a single NDJSON line into one of pwire's
// concrete Command types.
func decodeCommand(data []byte) (pwire.Command, error) {
	var env commandEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode command envelope: %w", err)
	}

	switch env.Type {
	case "set_node_mute":
		return pwire.SetNodeMute{Node: env.Node, Mute: env.Mute}, nil
	case "set_node_volumes":
		return pwire.SetNodeVolumes{Node: env.Node, Volumes: env.Volumes}, nil
	case "set_device_route_mute":
		return pwire.SetDeviceRouteMute{
			Device:      env.Device,
			RouteIndex:  env.RouteIndex,
			RouteDevice: env.RouteDevice,
			Mute:        env.Mute,
		}, nil
	case "set_device_route_volumes":
		return pwire.SetDeviceRouteVolumes{
			Device:      env.Device,
			RouteIndex:  env.RouteIndex,
			RouteDevice: env.RouteDevice,
			Volumes:     env.Volumes,
		}, nil
	case "set_route":
		return pwire.SetRoute{
			Device:      env.Device,
			RouteIndex:  env.RouteIndex,
			RouteDevice: env.RouteDevice,
		}, nil
	case "set_profile":
		return pwire.SetProfile{Device: env.Device, Index: env.ProfileIndex}, nil
	case "set_default_sink":
		return pwire.SetDefaultSink{MetadataID: env.MetadataID, NodeName: env.NodeName}, nil
	case "set_default_source":
		return pwire.SetDefaultSource{MetadataID: env.MetadataID, NodeName: env.NodeName}, nil
	case "set_node_target":
		return pwire.SetNodeTarget{MetadataID: env.MetadataID, Node: env.Node, TargetName: env.TargetName}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", env.Type)
	}
}

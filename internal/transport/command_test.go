package transport

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiremix/mixerd/internal/pwire"
)

func TestDecodeCommand_SetNodeMute(t *testing.T) {
	cmd, err := decodeCommand([]byte(`{"type":"set_node_mute","node":12,"mute":true}`))
	require.NoError(t, err)
	require.Equal(t, pwire.SetNodeMute{Node: pwire.ObjectId(12), Mute: true}, cmd)
}

func TestDecodeCommand_SetNodeVolumes(t *testing.T) {
	cmd, err := decodeCommand([]byte(`{"type":"set_node_volumes","node":3,"volumes":[0.5,0.75]}`))
	require.NoError(t, err)
	require.Equal(t, pwire.SetNodeVolumes{Node: pwire.ObjectId(3), Volumes: []float32{0.5, 0.75}}, cmd)
}

func TestDecodeCommand_SetDeviceRouteMute(t *testing.T) {
	cmd, err := decodeCommand([]byte(`{"type":"set_device_route_mute","device":7,"route_index":1,"route_device":2,"mute":true}`))
	require.NoError(t, err)
	require.Equal(t, pwire.SetDeviceRouteMute{Device: 7, RouteIndex: 1, RouteDevice: 2, Mute: true}, cmd)
}

func TestDecodeCommand_SetRoute(t *testing.T) {
	cmd, err := decodeCommand([]byte(`{"type":"set_route","device":7,"route_index":1,"route_device":2}`))
	require.NoError(t, err)
	require.Equal(t, pwire.SetRoute{Device: 7, RouteIndex: 1, RouteDevice: 2}, cmd)
}

func TestDecodeCommand_SetProfile(t *testing.T) {
	cmd, err := decodeCommand([]byte(`{"type":"set_profile","device":7,"profile_index":2}`))
	require.NoError(t, err)
	require.Equal(t, pwire.SetProfile{Device: 7, Index: 2}, cmd)
}

func TestDecodeCommand_SetDefaultSink(t *testing.T) {
	cmd, err := decodeCommand([]byte(`{"type":"set_default_sink","metadata_id":1,"node_name":"alsa_output"}`))
	require.NoError(t, err)
	require.Equal(t, pwire.SetDefaultSink{MetadataID: 1, NodeName: "alsa_output"}, cmd)
}

func TestDecodeCommand_SetDefaultSource(t *testing.T) {
	cmd, err := decodeCommand([]byte(`{"type":"set_default_source","metadata_id":1,"node_name":"alsa_input"}`))
	require.NoError(t, err)
	require.Equal(t, pwire.SetDefaultSource{MetadataID: 1, NodeName: "alsa_input"}, cmd)
}

func TestDecodeCommand_SetNodeTarget(t *testing.T) {
	cmd, err := decodeCommand([]byte(`{"type":"set_node_target","metadata_id":1,"node":9,"target_name":"alsa_output"}`))
	require.NoError(t, err)
	require.Equal(t, pwire.SetNodeTarget{MetadataID: 1, Node: 9, TargetName: "alsa_output"}, cmd)
}

func TestDecodeCommand_SetNodeTarget_EmptyTargetClearsRouting(t *testing.T) {
	cmd, err := decodeCommand([]byte(`{"type":"set_node_target","metadata_id":1,"node":9,"target_name":""}`))
	require.NoError(t, err)
	require.Equal(t, pwire.SetNodeTarget{MetadataID: 1, Node: 9, TargetName: ""}, cmd)
}

func TestDecodeCommand_UnknownType(t *testing.T) {
	_, err := decodeCommand([]byte(`{"type":"reboot_the_mixer"}`))
	require.Error(t, err)
}

func TestDecodeCommand_MalformedJSON(t *testing.T) {
	_, err := decodeCommand([]byte(`not json`))
	require.Error(t, err)
}

package replica

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wiremix/mixerd/internal/pwire"
)

func TestState_NodeLifecycle(t *testing.T) {
	s := New()
	props := pwire.FromDict([][2]string{
		{"media.class", "Audio/Sink"},
		{"node.description", "Speakers"},
		{"object.serial", "7"},
	})
	s.Update(pwire.NodeAdded{ID: 1, Props: props}, nil)
	require.Contains(t, s.Nodes, pwire.ObjectId(1))
	require.Equal(t, pwire.MediaClassSink, s.Nodes[1].Class)

	s.Update(pwire.NodeRemoved{ID: 1}, nil)
	require.NotContains(t, s.Nodes, pwire.ObjectId(1))
}

func TestState_LinkStartsCapturePolicyHook(t *testing.T) {
	starter := &recordingStarter{}
	policy := NewCapturePolicy(starter, true)
	s := New()

	sinkProps := pwire.FromDict([][2]string{
		{"media.class", "Audio/Sink"},
		{"object.serial", "9"},
	})
	s.Update(pwire.NodeAdded{ID: 2, Props: sinkProps}, policy)
	require.Empty(t, starter.started)

	s.Update(pwire.LinkAdded{ID: 100, OutputNode: 2, InputNode: 3}, policy)
	// link targets node 3 as input; sink 2 isn't the input side here, so
	// nothing starts yet.
	require.Empty(t, starter.started)

	s.Update(pwire.LinkAdded{ID: 101, OutputNode: 5, InputNode: 2}, policy)
	require.Equal(t, []pwire.ObjectId{2}, starter.started)
}

func TestState_RouteUpdatePropagatesToDeviceBackedNode(t *testing.T) {
	s := New()
	s.Update(pwire.DeviceAdded{ID: 10, Props: pwire.NewPropertyStore()}, nil)

	nodeProps := pwire.FromDict([][2]string{
		{"device.id", "10"},
		{"card.profile.device", "0"},
		{"object.serial", "1"},
	})
	s.Update(pwire.NodeAdded{ID: 20, Props: nodeProps}, nil)

	s.Update(pwire.DeviceParamsChanged{
		ID: 10,
		Active: []pwire.RouteParam{
			{Index: 1, Device: 0, Mute: true, Volumes: []float32{0.5, 0.5}},
		},
	}, nil)

	node := s.Nodes[20]
	require.True(t, node.Mute)
	require.Equal(t, []float32{0.5, 0.5}, node.Volumes)
	require.True(t, node.VolumesSet)
}

func TestState_NodePeaksDroppedUntilRateKnown(t *testing.T) {
	s := New()
	props := pwire.FromDict([][2]string{
		{"media.class", "Audio/Source"},
		{"object.serial", "1"},
	})
	s.Update(pwire.NodeAdded{ID: 1, Props: props}, nil)

	s.Update(pwire.NodePeaksDirty{ID: 1, Peaks: []float32{0.5}}, nil)
	require.Nil(t, s.Nodes[1].Peaks, "merge must be a no-op while node.rate is unknown")

	s.Update(pwire.NodeStreamStarted{ID: 1, Rate: 48000, Channels: 1}, nil)
	require.Equal(t, []float32{0}, s.Nodes[1].Peaks)

	s.Update(pwire.NodePeaksDirty{ID: 1, Peaks: []float32{0.5}}, nil)
	require.Equal(t, []float32{0.5}, s.Nodes[1].Peaks)

	s.Update(pwire.NodeStreamStopped{ID: 1}, nil)
	require.Nil(t, s.Nodes[1].Peaks)
	require.Equal(t, uint32(0), s.Nodes[1].Rate)
}

func TestState_NodePeaksResizesOnChannelCountChange(t *testing.T) {
	s := New()
	s.Update(pwire.NodeAdded{ID: 1, Props: pwire.NewPropertyStore()}, nil)
	s.Update(pwire.NodeStreamStarted{ID: 1, Rate: 48000, Channels: 2}, nil)
	require.Len(t, s.Nodes[1].Peaks, 2)

	s.Update(pwire.NodePeaksDirty{ID: 1, Peaks: []float32{0.3, 0.6, 0.1}}, nil)
	require.Equal(t, []float32{0.3, 0.6, 0.1}, s.Nodes[1].Peaks)
}

func TestState_NodePeaksAppliesConfiguredProcessor(t *testing.T) {
	s := New()
	s.SetPeakProcessor(pwire.NewBallisticsProcessor(0, 1))
	s.Update(pwire.NodeAdded{ID: 1, Props: pwire.NewPropertyStore()}, nil)
	s.Update(pwire.NodeStreamStarted{ID: 1, Rate: 48000, Channels: 1}, nil)

	s.Update(pwire.NodePeaksDirty{ID: 1, Peaks: []float32{0.9}}, nil)
	require.Equal(t, float32(0.9), s.Nodes[1].Peaks[0])

	s.Update(pwire.NodePeaksDirty{ID: 1, Peaks: []float32{0.2}}, nil)
	require.Equal(t, float32(0.9), s.Nodes[1].Peaks[0], "release=1 coefficient holds the level at its prior value on the way down")
}

func TestState_PositionsChangeRestartsCaptureOnce(t *testing.T) {
	starter := &recordingStarter{}
	policy := NewCapturePolicy(starter, true)
	s := New()

	props := pwire.FromDict([][2]string{
		{"media.class", "Audio/Source"},
		{"object.serial", "1"},
	})
	s.Update(pwire.NodeAdded{ID: 1, Props: props}, policy)
	require.Equal(t, []pwire.ObjectId{1}, starter.started)

	s.Update(pwire.NodeParamsChanged{ID: 1, Positions: []string{"FL", "FR"}}, policy)
	require.Equal(t, []string{"FL", "FR"}, s.Nodes[1].Positions)
	require.Equal(t, []pwire.ObjectId{1, 1}, starter.started, "an already-capturing node restarts on a layout change")
}

func TestState_MetadataDefaultSinkRoundTrip(t *testing.T) {
	s := New()
	s.Update(pwire.MetadataAdded{ID: 1, Props: pwire.FromDict([][2]string{{"metadata.name", "default"}})}, nil)
	s.Update(pwire.MetadataPropertyChanged{
		MetadataID: 1, Subject: 0, Key: "default.audio.sink",
		Type: "Spa:String:JSON", Value: `{"name":"alsa_output.pci"}`,
	}, nil)

	md := s.DefaultMetadata()
	require.NotNil(t, md)
	require.Equal(t, `{"name":"alsa_output.pci"}`, md.Props[0]["default.audio.sink"].Value)
}

package automation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiremix/mixerd/internal/pwire"
)

type recordedPublish struct {
	topic   string
	payload map[string]any
}

type fakePublisher struct {
	calls []recordedPublish
}

func (f *fakePublisher) Publish(topic string, payload []byte) {
	var decoded map[string]any
	_ = json.Unmarshal(payload, &decoded)
	f.calls = append(f.calls, recordedPublish{topic: topic, payload: decoded})
}

func TestRelay_MuteChangePublished(t *testing.T) {
	fp := &fakePublisher{}
	r := NewRelay(fp, "mixerd")

	mute := true
	r.Handle(pwire.NodeParamsChanged{ID: 7, Mute: &mute})

	require.Len(t, fp.calls, 1)
	require.Equal(t, "mixerd/mute", fp.calls[0].topic)
	require.Equal(t, float64(7), fp.calls[0].payload["node"])
	require.Equal(t, true, fp.calls[0].payload["mute"])
}

func TestRelay_VolumeChangePublished(t *testing.T) {
	fp := &fakePublisher{}
	r := NewRelay(fp, "mixerd")

	r.Handle(pwire.NodeParamsChanged{ID: 3, Volumes: []float32{0.5, 0.5}})

	require.Len(t, fp.calls, 1)
	require.Equal(t, "mixerd/volume", fp.calls[0].topic)
	require.Equal(t, float64(3), fp.calls[0].payload["node"])
}

func TestRelay_MuteAndVolumeBothPublishWhenBothChange(t *testing.T) {
	fp := &fakePublisher{}
	r := NewRelay(fp, "mixerd")

	mute := false
	r.Handle(pwire.NodeParamsChanged{ID: 1, Mute: &mute, Volumes: []float32{0.25}})

	require.Len(t, fp.calls, 2)
}

func TestRelay_DefaultSinkPublished(t *testing.T) {
	fp := &fakePublisher{}
	r := NewRelay(fp, "mixerd")

	r.Handle(pwire.MetadataPropertyChanged{Key: "default.audio.sink", Value: "alsa_output.usb"})

	require.Len(t, fp.calls, 1)
	require.Equal(t, "mixerd/default-sink", fp.calls[0].topic)
	require.Equal(t, "alsa_output.usb", fp.calls[0].payload["value"])
}

func TestRelay_DefaultSourcePublished(t *testing.T) {
	fp := &fakePublisher{}
	r := NewRelay(fp, "mixerd")

	r.Handle(pwire.MetadataPropertyChanged{Key: "default.audio.source", Value: "alsa_input.usb"})

	require.Len(t, fp.calls, 1)
	require.Equal(t, "mixerd/default-source", fp.calls[0].topic)
}

func TestRelay_IgnoresUnrelatedMetadataKeys(t *testing.T) {
	fp := &fakePublisher{}
	r := NewRelay(fp, "mixerd")

	r.Handle(pwire.MetadataPropertyChanged{Key: "something.else", Value: "x"})

	require.Empty(t, fp.calls)
}

func TestRelay_IgnoresUnrelatedEventTypes(t *testing.T) {
	fp := &fakePublisher{}
	r := NewRelay(fp, "mixerd")

	r.Handle(pwire.NodePeaksDirty{ID: 1, Peaks: []float32{0.1}})

	require.Empty(t, fp.calls)
}

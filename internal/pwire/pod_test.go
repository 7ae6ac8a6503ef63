package pwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode_MuteProps(t *testing.T) {
	obj := NewMuteProps(true)
	b, err := Encode(obj)
	require.NoError(t, err)
	require.NotEmpty(t, b)
	require.Equal(t, 0, len(b)%8, "pods must be 8-byte aligned")
}

func TestEncode_ChannelVolumes(t *testing.T) {
	obj := NewChannelVolumesProps([]float32{0.5, 0.5})
	b, err := Encode(obj)
	require.NoError(t, err)
	require.Equal(t, 0, len(b)%8)
}

func TestEncode_RouteObjectCarriesSaveFlag(t *testing.T) {
	obj := NewRouteObject(2, 0, true)
	require.Len(t, obj.Props, 3)
	require.Equal(t, PropRouteSave, obj.Props[2].Key)
	require.Equal(t, PodBoolValue(true), obj.Props[2].Value)

	b, err := Encode(obj)
	require.NoError(t, err)
	require.Equal(t, 0, len(b)%8)
}

func TestEncode_UnsupportedPodErrors(t *testing.T) {
	_, err := encodeBody(nil)
	require.Error(t, err)
}

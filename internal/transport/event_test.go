package transport

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiremix/mixerd/internal/pwire"
)

func TestEncodeStateEvent_NodeAdded(t *testing.T) {
	data, err := encodeStateEvent(pwire.NodeAdded{ID: 5})
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "node_added", env["type"])
}

func TestEncodeStateEvent_Error_FlattensErrToString(t *testing.T) {
	data, err := encodeStateEvent(pwire.Error{Op: "set_node_mute", Err: errors.New("proxy gone")})
	require.NoError(t, err)

	var env struct {
		Type string `json:"type"`
		Data struct {
			Op  string `json:"op"`
			Err string `json:"err"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "error", env.Type)
	require.Equal(t, "set_node_mute", env.Data.Op)
	require.Equal(t, "proxy gone", env.Data.Err)
}

func TestEncodeStateEvent_NodePeaksDirty(t *testing.T) {
	data, err := encodeStateEvent(pwire.NodePeaksDirty{ID: 4, Peaks: []float32{0.5, 0.25}, Samples: 512})
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "node_peaks_dirty", env["type"])
}

func TestEncodeStateEvent_MetadataPropertyChanged(t *testing.T) {
	data, err := encodeStateEvent(pwire.MetadataPropertyChanged{
		MetadataID: 1,
		Subject:    0,
		Key:        "default.audio.sink",
		Type:       "Spa:String:JSON",
		Value:      `{"name":"alsa_output"}`,
	})
	require.NoError(t, err)

	var env struct {
		Type string `json:"type"`
		Data pwire.MetadataPropertyChanged `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	require.Equal(t, "metadata_property_changed", env.Type)
	require.Equal(t, "default.audio.sink", env.Data.Key)
}

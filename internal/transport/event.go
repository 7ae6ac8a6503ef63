package transport

import (
	"encoding/json"
	"fmt"

	"github.com/wiremix/mixerd/internal/pwire"
	"github.com/wiremix/mixerd/internal/view"
)

// eventEnvelope is the wire shape of everything pushed down the WebSocket:
// a "type" discriminator plus whatever payload that type carries, mirroring
// commandEnvelope on the intake side.
type eventEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func encodeEnvelope(typ string, data any) ([]byte, error) {
	return json.Marshal(eventEnvelope{Type: typ, Data: data})
}

// encodeView wraps a full View snapshot, sent once right after a client
// connects and periodically thereafter so a client that missed an event
// self-heals on the next tick.
func encodeView(v view.View) ([]byte, error) {
	return encodeEnvelope("view", v)
}

// encodeStateEvent maps a pwire.StateEvent onto a JSON envelope. pwire.Error
// carries a Go error, which json.Marshal can't serialize on its own, so it's
// flattened to a string first.
func encodeStateEvent(ev pwire.StateEvent) ([]byte, error) {
	switch e := ev.(type) {
	case pwire.DeviceAdded:
		return encodeEnvelope("device_added", e)
	case pwire.DeviceRemoved:
		return encodeEnvelope("device_removed", e)
	case pwire.DeviceParamsChanged:
		return encodeEnvelope("device_params_changed", e)
	case pwire.NodeAdded:
		return encodeEnvelope("node_added", e)
	case pwire.NodeRemoved:
		return encodeEnvelope("node_removed", e)
	case pwire.NodeParamsChanged:
		return encodeEnvelope("node_params_changed", e)
	case pwire.ClientAdded:
		return encodeEnvelope("client_added", e)
	case pwire.ClientRemoved:
		return encodeEnvelope("client_removed", e)
	case pwire.LinkAdded:
		return encodeEnvelope("link_added", e)
	case pwire.LinkRemoved:
		return encodeEnvelope("link_removed", e)
	case pwire.MetadataAdded:
		return encodeEnvelope("metadata_added", e)
	case pwire.MetadataRemoved:
		return encodeEnvelope("metadata_removed", e)
	case pwire.MetadataPropertyChanged:
		return encodeEnvelope("metadata_property_changed", e)
	case pwire.NodeStreamStarted:
		return encodeEnvelope("node_stream_started", e)
	case pwire.NodeStreamStopped:
		return encodeEnvelope("node_stream_stopped", e)
	case pwire.NodePeaksDirty:
		return encodeEnvelope("node_peaks_dirty", e)
	case pwire.Ready:
		return encodeEnvelope("ready", e)
	case pwire.Error:
		return encodeEnvelope("error", struct {
			Op  string `json:"op"`
			Err string `json:"err"`
		}{Op: e.Op, Err: e.Err.Error()})
	default:
		return nil, fmt.Errorf("unknown state event type %T", ev)
	}
}

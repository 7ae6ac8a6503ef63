package automation

import (
	"encoding/json"
	"fmt"

	"github.com/wiremix/mixerd/internal/pwire"
)

// Publisher is the subset of Client a Relay needs; accepting it instead of
// *Client keeps Relay testable without a live broker connection.
type Publisher interface {
	Publish(topic string, payload []byte)
}

// Relay publishes a small JSON message to topicPrefix/<kind> whenever a
// default-endpoint, mute, or volume change is folded into the replica —
// the three classes of event a home-automation scene is typically wired to
// react to.
type Relay struct {
	client Publisher
	prefix string
}

// NewRelay builds a Relay that publishes under topicPrefix.
func NewRelay(client Publisher, topicPrefix string) *Relay {
	return &Relay{client: client, prefix: topicPrefix}
}

// Handle is registered via Session.OnStateEvent; it inspects ev and
// publishes only the subset of events the relay cares about, ignoring
// everything else (link/client churn, peak updates, and so on).
func (r *Relay) Handle(ev pwire.StateEvent) {
	switch e := ev.(type) {
	case pwire.NodeParamsChanged:
		if e.Mute != nil {
			r.publish("mute", map[string]any{"node": e.ID, "mute": *e.Mute})
		}
		if e.Volumes != nil {
			r.publish("volume", map[string]any{"node": e.ID, "volumes": e.Volumes})
		}
	case pwire.MetadataPropertyChanged:
		switch e.Key {
		case "default.audio.sink":
			r.publish("default-sink", map[string]any{"value": e.Value})
		case "default.audio.source":
			r.publish("default-source", map[string]any{"value": e.Value})
		}
	}
}

func (r *Relay) publish(kind string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	r.client.Publish(fmt.Sprintf("%s/%s", r.prefix, kind), data)
}

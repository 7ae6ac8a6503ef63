package view

import (
	"encoding/json"
	"sort"

	"github.com/wiremix/mixerd/internal/pwire"
	"github.com/wiremix/mixerd/internal/replica"
)

// Endpoint is a sink or source entry in the View: either a real hardware
// device/virtual node, or a synthetic "Monitor of <sink>" pseudo-source
// mirroring a sink's monitor ports.
type Endpoint struct {
	ID        pwire.ObjectId
	Title     string
	Volume    float32 // display scale
	Mute      bool
	IsDefault bool
	IsMonitor bool
	// Peaks holds the most recent per-channel capture amplitude in [0,1],
	// nil if no capture stream is attached to this node.
	Peaks []float32
}

// Stream is an application playback/capture stream entry.
type Stream struct {
	ID          pwire.ObjectId
	Title       string
	Application string
	Volume      float32
	Mute        bool
	Target      string // title of the linked endpoint, "" if the stream has no link
	// Peaks holds the most recent per-channel capture amplitude in [0,1],
	// nil if no capture stream is attached to this node.
	Peaks []float32
}

// View is the full, pure, denormalized snapshot the terminal UI renders.
// It holds no references back into the replica: every field is a plain
// value, safe to serialize and hand to another goroutine/process.
type View struct {
	Sinks          []Endpoint
	Sources        []Endpoint
	PlaybackStreams []Stream
	CaptureStreams  []Stream
	DefaultSinkName   string
	DefaultSourceName string
}

type defaultNameJSON struct {
	Name string `json:"name"`
}

func resolveDefaultName(md *replica.Metadata, key string) string {
	if md == nil {
		return ""
	}
	v, ok := md.Props[0][key]
	if !ok {
		return ""
	}
	var parsed defaultNameJSON
	if err := json.Unmarshal([]byte(v.Value), &parsed); err != nil {
		return ""
	}
	return parsed.Name
}

// From builds a View from the current replica state. It is a pure
// function: calling it twice on an unchanged state returns equal values.
func From(s *replica.State) View {
	md := s.DefaultMetadata()
	defaultSink := resolveDefaultName(md, "default.audio.sink")
	defaultSource := resolveDefaultName(md, "default.audio.source")

	v := View{DefaultSinkName: defaultSink, DefaultSourceName: defaultSource}

	for _, n := range s.Nodes {
		name, _ := n.Props.NodeName()
		switch {
		case n.Class.IsSink():
			v.Sinks = append(v.Sinks, Endpoint{
				ID:        n.ID,
				Title:     n.Props.Title(),
				Volume:    MeanDisplay(n.Volumes),
				Mute:      n.Mute,
				IsDefault: name == defaultSink,
				Peaks:     n.Peaks,
			})
			v.Sources = append(v.Sources, Endpoint{
				ID:        n.ID,
				Title:     "Monitor of " + n.Props.Title(),
				Volume:    MeanDisplay(n.Volumes),
				Mute:      n.Mute,
				IsMonitor: true,
				Peaks:     n.Peaks,
			})
		case n.Class.IsSource():
			v.Sources = append(v.Sources, Endpoint{
				ID:        n.ID,
				Title:     n.Props.Title(),
				Volume:    MeanDisplay(n.Volumes),
				Mute:      n.Mute,
				IsDefault: name == defaultSource,
				Peaks:     n.Peaks,
			})
		case n.Class.IsPlaybackStream():
			v.PlaybackStreams = append(v.PlaybackStreams, streamFromNode(s, n))
		case n.Class.IsCaptureStream():
			v.CaptureStreams = append(v.CaptureStreams, streamFromNode(s, n))
		}
	}

	sortEndpoints(v.Sinks)
	sortEndpoints(v.Sources)
	sortStreams(v.PlaybackStreams)
	sortStreams(v.CaptureStreams)

	return v
}

func streamFromNode(s *replica.State, n *replica.Node) Stream {
	app, _ := n.Props.ApplicationName()
	target := resolveStreamTarget(s, n)
	return Stream{
		ID:          n.ID,
		Title:       n.Props.Title(),
		Application: app,
		Volume:      MeanDisplay(n.Volumes),
		Mute:        n.Mute,
		Target:      target,
		Peaks:       n.Peaks,
	}
}

// resolveStreamTarget names the endpoint a stream is currently linked to,
// by walking its links to whichever sink/source node is on the other end —
// not by re-reading target.object, since a stream can be linked
// automatically without ever having had an explicit target set.
func resolveStreamTarget(s *replica.State, n *replica.Node) string {
	var links []*replica.Link
	if n.Class.IsPlaybackStream() {
		links = s.LinksFrom(n.ID)
	} else {
		links = s.LinksInto(n.ID)
	}
	for _, l := range links {
		other := l.InputNode
		if n.Class.IsPlaybackStream() {
			other = l.InputNode
		} else {
			other = l.OutputNode
		}
		if target, ok := s.Nodes[other]; ok {
			return target.Props.Title()
		}
	}
	return ""
}

func sortEndpoints(es []Endpoint) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].Title != es[j].Title {
			return es[i].Title < es[j].Title
		}
		return es[i].ID < es[j].ID
	})
}

func sortStreams(ss []Stream) {
	sort.Slice(ss, func(i, j int) bool {
		if ss[i].Title != ss[j].Title {
			return ss[i].Title < ss[j].Title
		}
		return ss[i].ID < ss[j].ID
	})
}

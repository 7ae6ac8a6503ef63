package pwire

// MediaClass is the closed set of `media.class` strings this module
// understands, mirroring wiremix's `media_class.rs`. Anything else PipeWire
// reports is treated as MediaClassOther and ignored by capture policy and
// the view's sink/source/stream grouping.
type MediaClass int

const (
	MediaClassOther MediaClass = iota
	MediaClassSink
	MediaClassSource
	MediaClassSourceVirtual
	MediaClassDuplex
	MediaClassStreamOutputAudio
	MediaClassStreamInputAudio
)

var mediaClassStrings = map[string]MediaClass{
	"Audio/Sink":           MediaClassSink,
	"Audio/Source":         MediaClassSource,
	"Audio/Source/Virtual": MediaClassSourceVirtual,
	"Audio/Duplex":         MediaClassDuplex,
	"Stream/Output/Audio":  MediaClassStreamOutputAudio,
	"Stream/Input/Audio":   MediaClassStreamInputAudio,
}

// ParseMediaClass maps a raw `media.class` property value to its closed
// enum member, or MediaClassOther if unrecognized.
func ParseMediaClass(raw string) MediaClass {
	if mc, ok := mediaClassStrings[raw]; ok {
		return mc
	}
	return MediaClassOther
}

// IsSink reports whether mc denotes a playback sink, matching
// media_class::is_sink: "Audio/Sink" | "Audio/Duplex".
func (mc MediaClass) IsSink() bool {
	return mc == MediaClassSink || mc == MediaClassDuplex
}

// IsSource reports whether mc denotes a capture source, matching
// media_class::is_source: "Audio/Source" | "Audio/Duplex" |
// "Audio/Source/Virtual".
func (mc MediaClass) IsSource() bool {
	return mc == MediaClassSource || mc == MediaClassDuplex || mc == MediaClassSourceVirtual
}

// IsPlaybackStream reports whether mc is an application's output stream —
// one of the node kinds capture policy attaches a peak stream to as soon as
// it appears.
func (mc MediaClass) IsPlaybackStream() bool {
	return mc == MediaClassStreamOutputAudio
}

// IsCaptureStream reports whether mc is an application's input stream.
func (mc MediaClass) IsCaptureStream() bool {
	return mc == MediaClassStreamInputAudio
}

// IsEndpoint reports whether mc is a sink or source (device endpoint),
// as opposed to an application stream.
func (mc MediaClass) IsEndpoint() bool {
	return mc.IsSink() || mc.IsSource()
}

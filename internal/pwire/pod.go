package pwire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PodType mirrors the small subset of SPA_TYPE_* ids this module ever needs
// to emit. We don't implement the whole SPA type system, only what
// command execution (spec.md §4.8) constructs: bools, floats, ints, arrays
// of floats (channel volumes), and the Object/Struct containers that hold
// them.
type PodType uint32

const (
	PodNone PodType = iota
	PodBool
	PodInt
	PodLong
	PodFloat
	PodDouble
	PodString
	PodArray
	PodStruct
	PodObject
	PodProp
)

// ObjectType identifies which SPA param object a Pod encodes, matching the
// `spa_param_type` PipeWire uses to dispatch Node/Device `set_param` calls.
type ObjectType uint32

const (
	ObjectPropsParams ObjectType = iota
	ObjectParamRoute
	ObjectParamProfile
)

// PropKey identifies a single SPA_PROP_* / SPA_PARAM_ROUTE_* /
// SPA_PARAM_PROFILE_* field within an Object pod.
type PropKey uint32

const (
	PropMute PropKey = iota
	PropChannelVolumes
	PropRouteIndex
	PropRouteDevice
	PropRouteSave
	PropProfileIndex
	PropProfileSave
	PropParamID
)

// Pod is the tagged-union value tree this package builds and serializes.
// It is the Go analogue of `libspa`'s `struct spa_pod`: a handful of
// concrete variants behind one interface, never a general-purpose codec.
type Pod interface {
	podType() PodType
}

type PodBoolValue bool

func (PodBoolValue) podType() PodType { return PodBool }

type PodIntValue int32

func (PodIntValue) podType() PodType { return PodInt }

type PodFloatValue float32

func (PodFloatValue) podType() PodType { return PodFloat }

type PodFloatArray []float32

func (PodFloatArray) podType() PodType { return PodArray }

// PodProperty is one key/value pair inside an Object pod, equivalent to
// `struct spa_pod_prop`.
type PodProperty struct {
	Key   PropKey
	Value Pod
}

// PodObject is a SPA object pod: an ObjectType tag plus an ordered list of
// properties. `ParamRoute`, `ParamProfile`, and node/device `Props` are all
// built as one of these before being handed to Encode.
type PodObject struct {
	Type  ObjectType
	Props []PodProperty
}

func (PodObject) podType() PodType { return PodObject }

// NewMuteProps builds the Props object that toggles a node or device route's
// mute state, matching `execute.rs`'s `set_mute` shape: a single
// `SPA_PROP_mute` boolean.
func NewMuteProps(mute bool) PodObject {
	return PodObject{
		Type: ObjectPropsParams,
		Props: []PodProperty{
			{Key: PropMute, Value: PodBoolValue(mute)},
		},
	}
}

// NewChannelVolumesProps builds the Props object carrying a full
// per-channel linear volume vector, matching `execute.rs`'s `set_volumes`.
// Volumes are linear (0.0-1.0 cubic-scale), not the cube-root UI value —
// callers apply the cube on the way in, per spec.md's volume invariant.
func NewChannelVolumesProps(linear []float32) PodObject {
	vals := make(PodFloatArray, len(linear))
	copy(vals, linear)
	return PodObject{
		Type: ObjectPropsParams,
		Props: []PodProperty{
			{Key: PropChannelVolumes, Value: vals},
		},
	}
}

// NewRouteObject builds a `ParamRoute` object selecting route `index` on
// card device `device`, with `save` controlling whether PipeWire persists
// the choice to its state file — the `save: true` semantics described in
// `monitor/execute.rs`.
func NewRouteObject(index, device int32, save bool) PodObject {
	return PodObject{
		Type: ObjectParamRoute,
		Props: []PodProperty{
			{Key: PropRouteIndex, Value: PodIntValue(index)},
			{Key: PropRouteDevice, Value: PodIntValue(device)},
			{Key: PropRouteSave, Value: PodBoolValue(save)},
		},
	}
}

// NewProfileObject builds a `ParamProfile` object selecting card profile
// `index`.
func NewProfileObject(index int32, save bool) PodObject {
	return PodObject{
		Type: ObjectParamProfile,
		Props: []PodProperty{
			{Key: PropProfileIndex, Value: PodIntValue(index)},
			{Key: PropProfileSave, Value: PodBoolValue(save)},
		},
	}
}

// MetadataProperty is the (subject, key, type, value) string tuple
// `pw_metadata.set_property` takes — not a Pod object, since metadata
// properties travel as plain strings over the metadata interface rather
// than as SPA pods.
type MetadataProperty struct {
	Subject uint32
	Key     string
	Type    string
	Value   string
}

// Encode serializes a Pod into the length-prefixed, 8-byte-aligned binary
// layout `libspa` uses on the wire: a (size uint32, type uint32) header
// followed by the body, body padded so the next pod starts on an 8-byte
// boundary. Nested Object/Array pods recurse the same way.
func Encode(p Pod) ([]byte, error) {
	body, err := encodeBody(p)
	if err != nil {
		return nil, err
	}
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(body)))
	binary.LittleEndian.PutUint32(header[4:8], uint32(p.podType()))
	out := append(header, body...)
	return pad8(out), nil
}

func encodeBody(p Pod) ([]byte, error) {
	switch v := p.(type) {
	case PodBoolValue:
		b := make([]byte, 4)
		if v {
			binary.LittleEndian.PutUint32(b, 1)
		}
		return b, nil
	case PodIntValue:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(int32(v)))
		return b, nil
	case PodFloatValue:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
		return b, nil
	case PodFloatArray:
		b := make([]byte, 0, 8+4*len(v))
		child := make([]byte, 8)
		binary.LittleEndian.PutUint32(child[0:4], 4)
		binary.LittleEndian.PutUint32(child[4:8], uint32(PodFloat))
		b = append(b, child...)
		for _, f := range v {
			fb := make([]byte, 4)
			binary.LittleEndian.PutUint32(fb, math.Float32bits(f))
			b = append(b, fb...)
		}
		return b, nil
	case PodObject:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint32(b[0:4], uint32(v.Type))
		binary.LittleEndian.PutUint32(b[4:8], uint32(len(v.Props)))
		for _, prop := range v.Props {
			kb := make([]byte, 8)
			binary.LittleEndian.PutUint32(kb[0:4], uint32(prop.Key))
			binary.LittleEndian.PutUint32(kb[4:8], 0)
			b = append(b, kb...)
			encoded, err := Encode(prop.Value)
			if err != nil {
				return nil, err
			}
			b = append(b, encoded...)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("pwire: no encoder for pod type %T", p)
	}
}

func pad8(b []byte) []byte {
	if rem := len(b) % 8; rem != 0 {
		b = append(b, make([]byte, 8-rem)...)
	}
	return b
}

package pwire

import "strconv"

// Kind tags how a property's raw string was parsed.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindU32
	KindU64
	KindI32
	KindObjectId
)

// entry is one property: the raw string PipeWire sent, plus whichever typed
// value we managed to parse from it (or KindString if parsing wasn't
// attempted/failed). Re-parsing raw always reproduces parsed — that's the
// invariant PropertyStore promises its callers.
type entry struct {
	raw    string
	kind   Kind
	str    string
	b      bool
	u32    uint32
	u64    uint64
	i32    int32
	objID  ObjectId
}

// keyDecl declares how one well-known property key is parsed.
type keyDecl struct {
	key  string
	kind Kind
}

// knownKeys is the closed-but-extensible declaration table described in
// spec.md §4.1. Adding a property the rest of the system cares about is a
// one-line addition here.
var knownKeys = map[string]Kind{
	"object.id":             KindU32,
	"object.serial":         KindU64,
	"media.class":           KindString,
	"media.name":            KindString,
	"media.role":            KindString,
	"node.name":             KindString,
	"node.description":      KindString,
	"node.nick":             KindString,
	"node.rate":             KindU32,
	"node.autoconnect":      KindBool,
	"node.passive":          KindBool,
	"device.id":             KindU32,
	"device.name":           KindString,
	"device.description":    KindString,
	"device.nick":           KindString,
	"device.api":            KindString,
	"card.profile.device":   KindI32,
	"client.id":             KindU32,
	"client.name":           KindString,
	"application.name":      KindString,
	"application.id":        KindString,
	"application.process.id": KindU32,
	"target.object":         KindString,
	"target.node":           KindString,
	"metadata.name":         KindString,
	"link.output.node":      KindU32,
	"link.output.port":      KindU32,
	"link.input.node":       KindU32,
	"link.input.port":       KindU32,
	"factory.id":            KindU32,
	"priority.session":      KindI32,
	"stream.is-monitor":     KindBool,
	"stream.monitor":        KindBool,
}

// PropertyStore is a typed, cached projection of a PipeWire property
// dictionary. Unknown keys are retained verbatim as raw strings; known keys
// are additionally parsed into their declared type once, on ingestion,
// rather than on every hot-path read.
type PropertyStore struct {
	entries map[string]entry
}

// NewPropertyStore returns an empty store.
func NewPropertyStore() *PropertyStore {
	return &PropertyStore{entries: make(map[string]entry)}
}

// FromDict populates a PropertyStore from an ordered key/value sequence,
// as delivered by a PipeWire `info.props` dictionary. Later keys overwrite
// earlier ones, matching dictionary semantics.
func FromDict(pairs [][2]string) *PropertyStore {
	p := NewPropertyStore()
	for _, kv := range pairs {
		p.Set(kv[0], kv[1])
	}
	return p
}

// Set stores (and, for known keys, parses) one property.
func (p *PropertyStore) Set(key, raw string) {
	e := entry{raw: raw, kind: KindString, str: raw}
	if kind, ok := knownKeys[key]; ok {
		if parsed, ok := parseKind(kind, raw); ok {
			e = parsed
			e.raw = raw
		}
	}
	p.entries[key] = e
}

func parseKind(kind Kind, raw string) (entry, bool) {
	switch kind {
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return entry{}, false
		}
		return entry{kind: KindBool, b: b}, true
	case KindU32:
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return entry{}, false
		}
		return entry{kind: KindU32, u32: uint32(v)}, true
	case KindU64:
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return entry{}, false
		}
		return entry{kind: KindU64, u64: v}, true
	case KindI32:
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return entry{}, false
		}
		return entry{kind: KindI32, i32: int32(v)}, true
	case KindObjectId:
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return entry{}, false
		}
		return entry{kind: KindObjectId, objID: ObjectId(v)}, true
	default:
		return entry{kind: KindString, str: raw}, true
	}
}

// Raw returns the raw string for any key, known or not.
func (p *PropertyStore) Raw(key string) (string, bool) {
	e, ok := p.entries[key]
	if !ok {
		return "", false
	}
	return e.raw, true
}

// Has reports whether key is present at all (raw or typed).
func (p *PropertyStore) Has(key string) bool {
	_, ok := p.entries[key]
	return ok
}

// Keys returns every property name currently stored, order unspecified.
func (p *PropertyStore) Keys() []string {
	keys := make([]string, 0, len(p.entries))
	for k := range p.entries {
		keys = append(keys, k)
	}
	return keys
}

func (p *PropertyStore) str(key string) (string, bool) {
	e, ok := p.entries[key]
	if !ok || e.kind != KindString {
		return "", false
	}
	return e.str, true
}

func (p *PropertyStore) boolVal(key string) (bool, bool) {
	e, ok := p.entries[key]
	if !ok || e.kind != KindBool {
		return false, false
	}
	return e.b, true
}

func (p *PropertyStore) u32(key string) (uint32, bool) {
	e, ok := p.entries[key]
	if !ok || e.kind != KindU32 {
		return 0, false
	}
	return e.u32, true
}

func (p *PropertyStore) u64(key string) (uint64, bool) {
	e, ok := p.entries[key]
	if !ok || e.kind != KindU64 {
		return 0, false
	}
	return e.u64, true
}

func (p *PropertyStore) i32(key string) (int32, bool) {
	e, ok := p.entries[key]
	if !ok || e.kind != KindI32 {
		return 0, false
	}
	return e.i32, true
}

// Typed accessors for the properties the session engine actually reads on
// its hot paths (name resolution, capture policy, target resolution).
// Each mirrors spec.md's "get_<name>()" contract: present, and the right
// kind, or (zero, false).

func (p *PropertyStore) ObjectID() (uint32, bool)        { return p.u32("object.id") }
func (p *PropertyStore) ObjectSerial() (uint64, bool)    { return p.u64("object.serial") }
func (p *PropertyStore) MediaClass() (string, bool)      { return p.str("media.class") }
func (p *PropertyStore) MediaName() (string, bool)       { return p.str("media.name") }
func (p *PropertyStore) NodeName() (string, bool)        { return p.str("node.name") }
func (p *PropertyStore) NodeDescription() (string, bool) { return p.str("node.description") }
func (p *PropertyStore) NodeNick() (string, bool)        { return p.str("node.nick") }
func (p *PropertyStore) DeviceID() (uint32, bool)        { return p.u32("device.id") }
func (p *PropertyStore) DeviceName() (string, bool)      { return p.str("device.name") }
func (p *PropertyStore) DeviceDescription() (string, bool) { return p.str("device.description") }
func (p *PropertyStore) DeviceNick() (string, bool)      { return p.str("device.nick") }
func (p *PropertyStore) CardProfileDevice() (int32, bool) { return p.i32("card.profile.device") }
func (p *PropertyStore) ClientID() (uint32, bool)        { return p.u32("client.id") }
func (p *PropertyStore) ApplicationName() (string, bool) { return p.str("application.name") }
func (p *PropertyStore) TargetObject() (string, bool)    { return p.str("target.object") }
func (p *PropertyStore) TargetNode() (string, bool)      { return p.str("target.node") }
func (p *PropertyStore) MetadataName() (string, bool)    { return p.str("metadata.name") }

// Title resolves the best human-facing label for a node, preferring
// description over nick over name, matching how the view layer picks a
// default label before any name-template override from the (external)
// config layer is applied.
func (p *PropertyStore) Title() string {
	if d, ok := p.NodeDescription(); ok && d != "" {
		return d
	}
	if n, ok := p.NodeNick(); ok && n != "" {
		return n
	}
	if n, ok := p.NodeName(); ok && n != "" {
		return n
	}
	return ""
}

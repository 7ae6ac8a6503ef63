package pwire

// ObjectKind is the PipeWire global type a bound proxy represents. The
// session dispatches on this to pick which event/listener shape to attach.
type ObjectKind int

const (
	KindDevice ObjectKind = iota
	KindNode
	KindClient
	KindLink
	KindMetadata
)

// BoundObject is one live proxy the session owns: the registry entry plus
// whatever properties arrived with its `global` announcement.
type BoundObject struct {
	ID    ObjectId
	Kind  ObjectKind
	Props *PropertyStore
}

// Registry is the single-owner map of every bound proxy, keyed by
// ObjectId. It is only ever touched from the session goroutine — nothing
// here is safe for concurrent use, by design (spec.md §5: "single-threaded
// callback world").
//
// Destroying a proxy from inside the PipeWire callback that announced its
// removal corrupts PipeWire's own dispatch loop, so Remove never frees
// anything immediately: it moves the id onto a pending list that the
// session drains on its periodic (50ms) loop tick, after the current round
// of callbacks has fully returned.
type Registry struct {
	objects map[ObjectId]*BoundObject
	pending []ObjectId
}

// NewRegistry returns an empty object registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[ObjectId]*BoundObject)}
}

// Add registers a newly-bound proxy.
func (r *Registry) Add(obj *BoundObject) {
	r.objects[obj.ID] = obj
}

// Get looks up a bound object by id.
func (r *Registry) Get(id ObjectId) (*BoundObject, bool) {
	obj, ok := r.objects[id]
	return obj, ok
}

// MarkRemoved defers destruction of id: the entry is still visible via Get
// until Drain runs, matching the "objects still resolvable mid-callback"
// requirement — only the owning proxy is actually torn down later.
func (r *Registry) MarkRemoved(id ObjectId) {
	r.pending = append(r.pending, id)
}

// Drain removes every id queued by MarkRemoved since the last Drain and
// returns them, in the order they were marked, so the caller can run its
// own proxy-destroy logic now that it is safe to do so.
func (r *Registry) Drain() []ObjectId {
	if len(r.pending) == 0 {
		return nil
	}
	drained := r.pending
	r.pending = nil
	for _, id := range drained {
		delete(r.objects, id)
	}
	return drained
}

// ByKind returns every bound object of the given kind, ascending by id.
func (r *Registry) ByKind(kind ObjectKind) []*BoundObject {
	var ids []ObjectId
	for id, obj := range r.objects {
		if obj.Kind == kind {
			ids = append(ids, id)
		}
	}
	ids = SortObjectIds(ids)
	out := make([]*BoundObject, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.objects[id])
	}
	return out
}

// Len returns the number of currently-bound objects (pending removals still
// count until Drain runs).
func (r *Registry) Len() int {
	return len(r.objects)
}

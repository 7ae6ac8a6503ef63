// Package pwire implements the low-level PipeWire session bridge: property
// parsing, POD serialization, proxy/stream/sync bookkeeping, and the
// StateEvent/Command vocabulary exchanged with the session loop.
package pwire

import "strconv"

// ObjectId is the 32-bit handle PipeWire assigns to a bound global.
type ObjectId uint32

// String renders the id as a plain decimal, matching how PipeWire itself
// prints object ids in logs.
func (id ObjectId) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Less orders ids numerically. Used wherever a deterministic iteration
// order over a map[ObjectId]... is required (e.g. test fixtures).
func (id ObjectId) Less(other ObjectId) bool {
	return id < other
}

// SortObjectIds returns a new, ascending-sorted copy of ids.
func SortObjectIds(ids []ObjectId) []ObjectId {
	out := make([]ObjectId, len(ids))
	copy(out, ids)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

package collide

import (
	"fmt"
	"strings"

	"disambig/internal/names"
	"disambig/internal/universe"
)

const (
	ownKindBits = 3
	ownKindMask = 1<<ownKindBits - 1

	// CounterBits is the width of each packed collision counter.
	CounterBits = 5
	counterMask = 1<<CounterBits - 1

	// MaxCount is the value a counter saturates at.
	MaxCount = counterMask
)

// Record is one symbol's collision bookkeeping: the interned name, the
// namespace it was registered in, and five saturating counters packed
// into a single word. Records are values and never change once appended.
type Record struct {
	Name names.ID
	// Origin is the ancestor scope whose table produced the super-member
	// hit, carried along when later records copy these counts.
	Origin universe.ScopeID
	data   uint32
}

// NewRecord returns a record with no collisions.
func NewRecord(name names.ID, own Kind) Record {
	return Record{Name: name, data: uint32(own) & ownKindMask}
}

// RecordFromPacked rebuilds a record from its Packed form.
func RecordFromPacked(name names.ID, packed uint32, origin universe.ScopeID) (Record, error) {
	r := Record{Name: name, Origin: origin, data: packed}
	if !r.OwnKind().IsValid() || packed>>(ownKindBits+NumKinds*CounterBits) != 0 {
		return Record{}, fmt.Errorf("collide: invalid packed record %#x", packed)
	}
	return r, nil
}

// Packed returns the raw word holding own kind and counters.
func (r Record) Packed() uint32 { return r.data }

// OwnKind returns the namespace the symbol itself was registered in.
func (r Record) OwnKind() Kind { return Kind(r.data & ownKindMask) }

// Count returns the collision counter for slot k.
func (r Record) Count(k Kind) uint8 {
	if !k.IsValid() {
		return 0
	}
	return uint8((r.data >> shiftFor(k)) & counterMask)
}

// Counts returns all five counters indexed by Kind.
func (r Record) Counts() [NumKinds]uint8 {
	var out [NumKinds]uint8
	for k := range Kind(NumKinds) {
		out[k] = r.Count(k)
	}
	return out
}

// IsClean reports whether every counter is zero.
func (r Record) IsClean() bool { return r.data>>ownKindBits == 0 }

// HasCollisions reports whether the record needs a rename. A member does
// not react to function hits and a function does not react to
// super-function hits.
func (r Record) HasCollisions() bool {
	switch r.OwnKind() {
	case MemberName:
		return r.Count(SuperMemberName) > 0 || r.Count(MemberName) > 0
	case FunctionName:
		return r.Count(MemberName) > 0 || r.Count(SuperMemberName) > 0 || r.Count(FunctionName) > 0
	case ParameterName:
		return r.Count(MemberName) > 0 || r.Count(SuperMemberName) > 0 || r.Count(FunctionName) > 0 ||
			r.Count(SuperFunctionName) > 0 || r.Count(ParameterName) > 0
	}
	return false
}

// inherit copies the counters of existing, reclassifies the copy as own
// and bumps slot. saturated is true when the slot was already at MaxCount.
func (r Record) inherit(existing Record, own Kind, slot Kind) (out Record, saturated bool) {
	out = Record{Name: r.Name, Origin: existing.Origin, data: existing.data}
	out.data = out.data&^ownKindMask | uint32(own)&ownKindMask
	if out.Count(slot) >= MaxCount {
		return out, true
	}
	out.data += 1 << shiftFor(slot)
	return out, false
}

func shiftFor(k Kind) uint32 {
	return ownKindBits + uint32(k)*CounterBits
}

// DebugString renders own kind and every counter, e.g.
// "own=function member=1 super-member=0 function=0 super-function=0 parameter=0".
func (r Record) DebugString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "own=%s", r.OwnKind())
	for k := range Kind(NumKinds) {
		fmt.Fprintf(&sb, " %s=%d", k, r.Count(k))
	}
	return sb.String()
}

package collide

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"sync"

	"disambig/internal/names"
	"disambig/internal/universe"
)

// Key identifies one raw symbol inside one scope. Name alone is not enough:
// overloads and shadowed members share a name, so data members add their
// number, offset and size and functions their declaration index.
type Key struct {
	Scope  universe.ScopeID
	Kind   Kind
	Name   names.ID
	Number uint32
	Offset uint32
	Size   uint32
	Index  uint32
}

func (k Key) String() string {
	switch k.Kind {
	case FunctionName:
		return fmt.Sprintf("{scope=%d %s name=%d number=%d index=%d}", k.Scope, k.Kind, k.Name, k.Number, k.Index)
	default:
		return fmt.Sprintf("{scope=%d %s name=%d number=%d offset=%#x size=%#x}", k.Scope, k.Kind, k.Name, k.Number, k.Offset, k.Size)
	}
}

// MemberKey builds the key of a data member of scope.
func MemberKey(scope universe.ScopeID, name names.ID, m universe.Member) Key {
	return Key{Scope: scope, Kind: MemberName, Name: name, Number: m.Number, Offset: m.Offset, Size: m.Size}
}

// FunctionKey builds the key of a function declared on scope.
func FunctionKey(scope universe.ScopeID, name names.ID, f universe.Function) Key {
	return Key{Scope: scope, Kind: FunctionName, Name: name, Number: f.Number, Index: f.Index}
}

// ParamKey builds the key of a parameter of the function scope fn.
func ParamKey(fn universe.ScopeID, name names.ID, p universe.Member) Key {
	return Key{Scope: fn, Kind: ParameterName, Name: name, Number: p.Number, Offset: p.Offset, Size: p.Size}
}

// Position locates a record: the table's scope and the index inside it.
type Position struct {
	Table universe.ScopeID
	Index uint32
}

// Translation maps keys to record positions. It is written during the
// build and read-only afterwards.
type Translation struct {
	mu      sync.RWMutex
	entries map[Key]Position
}

// NewTranslation returns an empty lookup.
func NewTranslation() *Translation {
	return &Translation{entries: make(map[Key]Position)}
}

// Publish records key -> pos. A key already present is left untouched and
// a *KeyError wrapping ErrDuplicateKey is returned.
func (t *Translation) Publish(key Key, pos Position) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[key]; ok {
		return &KeyError{Key: key, Err: ErrDuplicateKey}
	}
	t.entries[key] = pos
	return nil
}

// Contains reports whether key was published.
func (t *Translation) Contains(key Key) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[key]
	return ok
}

// Resolve returns the position published for key, or a *KeyError wrapping
// ErrNotFound.
func (t *Translation) Resolve(key Key) (Position, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	pos, ok := t.entries[key]
	if !ok {
		return Position{}, &KeyError{Key: key, Err: ErrNotFound}
	}
	return pos, nil
}

// Len reports the number of published keys.
func (t *Translation) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Keys returns every key ordered by the position it resolves to, so that
// iteration follows table order.
func (t *Translation) Keys() []Key {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := slices.Collect(maps.Keys(t.entries))
	slices.SortFunc(keys, func(a, b Key) int {
		pa, pb := t.entries[a], t.entries[b]
		if c := cmp.Compare(pa.Table, pb.Table); c != 0 {
			return c
		}
		if c := cmp.Compare(pa.Index, pb.Index); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return keys
}

// Package names holds the interned name pool shared by every symbol table.
package names

import (
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"
)

// ID is the identity of an interned raw name. Equality is by identity.
type ID uint32

// NoID is reserved for the empty string.
const NoID ID = 0

// IsValid reports whether the id refers to a non-empty name.
func (id ID) IsValid() bool { return id != NoID }

// Pool deduplicates raw symbol strings into stable identities.
// Identities are never freed or reused.
type Pool struct {
	mu    sync.RWMutex
	byID  []string      // id -> text (byID[0] = "" for NoID)
	index map[string]ID // text -> id
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{
		byID:  []string{""},
		index: map[string]ID{"": NoID},
	}
}

// Restore rebuilds a pool from a Snapshot, keeping every identity.
// The first entry must be the empty string.
func Restore(snapshot []string) (*Pool, error) {
	if len(snapshot) == 0 || snapshot[0] != "" {
		return nil, fmt.Errorf("names: snapshot must start with the empty name")
	}
	p := &Pool{
		byID:  slices.Clone(snapshot),
		index: make(map[string]ID, len(snapshot)),
	}
	for i, s := range p.byID {
		if _, dup := p.index[s]; dup {
			return nil, fmt.Errorf("names: snapshot repeats %q", s)
		}
		id, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, fmt.Errorf("names: snapshot too large: %w", err)
		}
		p.index[s] = ID(id)
	}
	return p, nil
}

// FindOrAdd returns the identity of s and whether this call inserted it.
// A name that was just inserted cannot appear in any symbol table yet.
func (p *Pool) FindOrAdd(s string) (ID, bool) {
	p.mu.RLock()
	id, ok := p.index[s]
	p.mu.RUnlock()
	if ok {
		return id, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if id, ok := p.index[s]; ok {
		return id, false
	}
	value, err := safecast.Conv[uint32](len(p.byID))
	if err != nil {
		panic(fmt.Errorf("names pool overflow: %w", err))
	}
	cpy := string([]byte(s))
	id = ID(value)
	p.byID = append(p.byID, cpy)
	p.index[cpy] = id
	return id, true
}

// Intern is FindOrAdd without the insertion flag.
func (p *Pool) Intern(s string) ID {
	id, _ := p.FindOrAdd(s)
	return id
}

// Find returns the identity of s without inserting it.
func (p *Pool) Find(s string) (ID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	id, ok := p.index[s]
	return id, ok
}

// Lookup returns the text for id.
func (p *Pool) Lookup(id ID) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if int(id) >= len(p.byID) {
		return "", false
	}
	return p.byID[id], true
}

// MustLookup returns the text for id and panics on an unknown id.
func (p *Pool) MustLookup(id ID) string {
	s, ok := p.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("names: invalid id %d", id))
	}
	return s
}

// Has reports whether id was handed out by this pool.
func (p *Pool) Has(id ID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int(id) < len(p.byID)
}

// Len counts stored names including NoID, so it is never below 1.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.byID)
}

// Snapshot returns a copy of all names indexed by id.
func (p *Pool) Snapshot() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.byID)
}

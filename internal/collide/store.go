package collide

import (
	"maps"
	"slices"
	"sync"

	"disambig/internal/universe"
)

// Store maps scope identities to their tables. The map itself is guarded so
// independent inheritance trees can be built on separate workers; a single
// table is only ever written by the worker building its scope.
type Store struct {
	mu     sync.RWMutex
	tables map[universe.ScopeID]*Table
	built  map[universe.ScopeID]bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		tables: make(map[universe.ScopeID]*Table),
		built:  make(map[universe.ScopeID]bool),
	}
}

// Get returns the table of scope, or nil.
func (s *Store) Get(scope universe.ScopeID) *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables[scope]
}

// GetOrCreate returns the table of scope, creating an empty one on first use.
func (s *Store) GetOrCreate(scope universe.ScopeID) *Table {
	s.mu.RLock()
	t, ok := s.tables[scope]
	s.mu.RUnlock()
	if ok {
		return t
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tables[scope]; ok {
		return t
	}
	t = NewTable(0)
	s.tables[scope] = t
	return t
}

// Put installs a prebuilt table, used when restoring a snapshot.
func (s *Store) Put(scope universe.ScopeID, t *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[scope] = t
	s.built[scope] = true
}

// Has reports whether scope owns a table.
func (s *Store) Has(scope universe.ScopeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tables[scope]
	return ok
}

// Built reports whether the type scope was fully processed.
func (s *Store) Built(scope universe.ScopeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built[scope]
}

// MarkBuilt freezes the scope's table and remembers it as processed.
func (s *Store) MarkBuilt(scope universe.ScopeID) {
	t := s.GetOrCreate(scope)
	s.mu.Lock()
	defer s.mu.Unlock()
	t.Freeze()
	s.built[scope] = true
}

// Freeze marks the scope's table read-only if it exists.
func (s *Store) Freeze(scope universe.ScopeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tables[scope]; ok {
		t.Freeze()
	}
}

// Scopes returns all scope ids with a table, ascending.
func (s *Store) Scopes() []universe.ScopeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.tables))
}

// Len reports the number of tables.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}

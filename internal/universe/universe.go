// Package universe is the boundary to the reflection walker: the types,
// data members, functions and parameters whose names get disambiguated.
package universe

import (
	"errors"
	"fmt"
	"slices"
)

// Member is a data member or a function parameter.
type Member struct {
	Name string
	// Number disambiguates same-named symbols in the reflection source.
	Number uint32
	Offset uint32
	Size   uint32
}

// Function is a function declared on a type. It is a scope of its own
// holding its parameters.
type Function struct {
	ID     ScopeID
	Name   string
	Number uint32
	// Index is the declaration index used for the translation key.
	Index  uint32
	Params []Member
}

// Type is a reflected type with at most one direct ancestor.
type Type struct {
	ID        ScopeID
	Name      string
	Super     ScopeID
	Members   []Member
	Functions []Function
}

// Universe is the set of reflected types handed to the collision index.
// It is read-only once built by New.
type Universe struct {
	Types []Type

	types map[ScopeID]int
	funcs map[ScopeID]funcRef
}

type funcRef struct {
	owner int
	fn    int
}

// New indexes types by id. Duplicate scope ids are rejected.
func New(types []Type) (*Universe, error) {
	u := &Universe{
		Types: types,
		types: make(map[ScopeID]int, len(types)),
		funcs: make(map[ScopeID]funcRef),
	}
	for i := range u.Types {
		t := &u.Types[i]
		if !t.ID.IsValid() {
			return nil, fmt.Errorf("universe: type %q has no scope id", t.Name)
		}
		if u.has(t.ID) {
			return nil, fmt.Errorf("universe: scope id %d used twice (type %q)", t.ID, t.Name)
		}
		u.types[t.ID] = i
		for j := range t.Functions {
			f := &t.Functions[j]
			if !f.ID.IsValid() {
				return nil, fmt.Errorf("universe: function %s.%s has no scope id", t.Name, f.Name)
			}
			if u.has(f.ID) {
				return nil, fmt.Errorf("universe: scope id %d used twice (function %s.%s)", f.ID, t.Name, f.Name)
			}
			u.funcs[f.ID] = funcRef{owner: i, fn: j}
		}
	}
	return u, nil
}

func (u *Universe) has(id ScopeID) bool {
	if _, ok := u.types[id]; ok {
		return true
	}
	_, ok := u.funcs[id]
	return ok
}

// Type returns the type with the given id.
func (u *Universe) Type(id ScopeID) (*Type, bool) {
	i, ok := u.types[id]
	if !ok {
		return nil, false
	}
	return &u.Types[i], true
}

// Function returns a function scope and the type declaring it.
func (u *Universe) Function(id ScopeID) (*Function, *Type, bool) {
	ref, ok := u.funcs[id]
	if !ok {
		return nil, nil, false
	}
	owner := &u.Types[ref.owner]
	return &owner.Functions[ref.fn], owner, true
}

// ScopeName returns the display name of a type ("Derived") or a function
// ("Derived.Value").
func (u *Universe) ScopeName(id ScopeID) (string, bool) {
	if t, ok := u.Type(id); ok {
		return t.Name, true
	}
	if f, owner, ok := u.Function(id); ok {
		return owner.Name + "." + f.Name, true
	}
	return "", false
}

// Roots partitions the universe into independent inheritance trees and
// returns, per tree, the member type ids in input order. Types whose
// ancestor chain is broken (unknown ancestor or cycle) are grouped with
// the last type reached before the break, so every type lands in exactly
// one tree. Trees are ordered by their first type in the input.
func (u *Universe) Roots() [][]ScopeID {
	rootOf := make(map[ScopeID]ScopeID, len(u.Types))
	for _, t := range u.Types {
		rootOf[t.ID] = u.root(t.ID)
	}
	order := make([]ScopeID, 0)
	groups := make(map[ScopeID][]ScopeID)
	for _, t := range u.Types {
		r := rootOf[t.ID]
		if _, ok := groups[r]; !ok {
			order = append(order, r)
		}
		groups[r] = append(groups[r], t.ID)
	}
	out := make([][]ScopeID, 0, len(order))
	for _, r := range order {
		out = append(out, groups[r])
	}
	return out
}

// root walks ancestors until a root, an unknown id or a repeat.
// On a cycle the smallest id on the cycle is used so that every member
// of the loop agrees on its tree.
func (u *Universe) root(id ScopeID) ScopeID {
	seen := make(map[ScopeID]bool)
	var path []ScopeID
	cur := id
	for {
		if seen[cur] {
			i := slices.Index(path, cur)
			return slices.Min(path[i:])
		}
		seen[cur] = true
		path = append(path, cur)
		t, ok := u.Type(cur)
		if !ok {
			return path[len(path)-2]
		}
		if !t.Super.IsValid() {
			return cur
		}
		cur = t.Super
	}
}

// Ancestors returns id's ancestor chain, nearest first. ok is false when
// the chain names an unknown type or loops; chain then holds the ids
// reached before the break.
func (u *Universe) Ancestors(id ScopeID) (chain []ScopeID, ok bool) {
	t, found := u.Type(id)
	if !found {
		return nil, false
	}
	seen := map[ScopeID]bool{id: true}
	for cur := t.Super; cur.IsValid(); {
		if seen[cur] {
			return chain, false
		}
		anc, found := u.Type(cur)
		if !found {
			return chain, false
		}
		seen[cur] = true
		chain = append(chain, cur)
		cur = anc.Super
	}
	return chain, true
}

// Validate checks that every symbol has a name. Broken ancestor chains are
// left to the collision index, which reports them per type.
func (u *Universe) Validate() error {
	var errs []error
	for _, t := range u.Types {
		for i, m := range t.Members {
			if m.Name == "" {
				errs = append(errs, fmt.Errorf("universe: member #%d of %s has no name", i, t.Name))
			}
		}
		for _, f := range t.Functions {
			if f.Name == "" {
				errs = append(errs, fmt.Errorf("universe: function #%d of %s has no name", f.Index, t.Name))
			}
			for i, p := range f.Params {
				if p.Name == "" {
					errs = append(errs, fmt.Errorf("universe: parameter #%d of %s.%s has no name", i, t.Name, f.Name))
				}
			}
		}
	}
	return errors.Join(errs...)
}

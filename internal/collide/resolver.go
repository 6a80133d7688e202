package collide

import (
	"errors"
	"fmt"

	"disambig/internal/diag"
	"disambig/internal/names"
	"disambig/internal/universe"
)

// ScopeNamer gives display names for scope ids.
type ScopeNamer interface {
	ScopeName(id universe.ScopeID) (string, bool)
}

// Resolver is the renderer's read-only view of a built index.
// It is safe for concurrent use once the build is over.
type Resolver struct {
	pool   *names.Pool
	store  *Store
	trans  *Translation
	scopes ScopeNamer
	policy SuffixPolicy
}

// NewResolver assembles a resolver from its parts, e.g. after restoring
// a snapshot.
func NewResolver(pool *names.Pool, store *Store, trans *Translation, scopes ScopeNamer, policy SuffixPolicy) *Resolver {
	return &Resolver{pool: pool, store: store, trans: trans, scopes: scopes, policy: policy}
}

// Resolver returns the read side of the index.
func (x *Index) Resolver(policy SuffixPolicy) *Resolver {
	return NewResolver(x.pool, x.store, x.trans, x.src, policy)
}

// Pool returns the name pool the resolver reads from.
func (r *Resolver) Pool() *names.Pool { return r.pool }

// Store returns the scope tables.
func (r *Resolver) Store() *Store { return r.store }

// Translation returns the key lookup.
func (r *Resolver) Translation() *Translation { return r.trans }

// Policy returns the super suffix policy.
func (r *Resolver) Policy() SuffixPolicy { return r.policy }

// Record returns the record published for key.
func (r *Resolver) Record(key Key) (Record, Position, error) {
	pos, err := r.trans.Resolve(key)
	if err != nil {
		return Record{}, Position{}, err
	}
	rec, ok := r.store.Get(pos.Table).At(pos.Index)
	if !ok {
		return Record{}, pos, &KeyError{Key: key, Err: fmt.Errorf("%w: position %d/%d is outside its table", ErrNotFound, pos.Table, pos.Index)}
	}
	return rec, pos, nil
}

// Name returns the final, collision-free identifier for key.
func (r *Resolver) Name(key Key) (string, error) {
	rec, _, err := r.Record(key)
	if err != nil {
		return "", err
	}
	raw, ok := r.pool.Lookup(rec.Name)
	if !ok {
		return "", &KeyError{Key: key, Err: fmt.Errorf("%w: name id %d is not interned", ErrNotFound, rec.Name)}
	}
	return Stringify(raw, rec, r.suffixName(key, rec)), nil
}

// MustName is Name for callers that registered key themselves. Asking for
// an unknown key is a logic error and panics.
func (r *Resolver) MustName(key Key) string {
	name, err := r.Name(key)
	if err != nil {
		panic(err)
	}
	return name
}

// HasCollisions reports whether the symbol behind key was renamed.
func (r *Resolver) HasCollisions(key Key) (bool, error) {
	rec, _, err := r.Record(key)
	if err != nil {
		return false, err
	}
	return rec.HasCollisions(), nil
}

// Verify resolves every published key and reports each one that leads
// nowhere, which only happens for resolvers restored from a damaged
// snapshot. It returns how many keys were reported.
func (r *Resolver) Verify(rep diag.Reporter) int {
	n := 0
	for _, key := range r.trans.Keys() {
		_, err := r.Name(key)
		if err == nil {
			continue
		}
		code := diag.UnknownCode
		if errors.Is(err, ErrNotFound) {
			code = diag.IdxNotFound
		}
		raw, _ := r.pool.Lookup(key.Name)
		diag.ReportError(rep, code, diag.Subject{Scope: r.ScopeName(key.Scope), Symbol: raw}, err.Error()).Emit()
		n++
	}
	return n
}

func (r *Resolver) suffixName(key Key, rec Record) string {
	if rec.OwnKind() != MemberName || rec.Count(SuperMemberName) == 0 {
		return ""
	}
	scope := key.Scope
	if r.policy == SuffixAncestor && rec.Origin.IsValid() {
		scope = rec.Origin
	}
	return r.ScopeName(scope)
}

// ScopeName returns the display name of a scope, or "Scope<id>" for scopes
// the resolver has no name for.
func (r *Resolver) ScopeName(id universe.ScopeID) string {
	if r.scopes != nil {
		if name, ok := r.scopes.ScopeName(id); ok {
			return name
		}
	}
	return fmt.Sprintf("Scope%d", id)
}

// MemberKey builds the key of a data member from its raw text.
// ok is false when the name was never interned.
func (r *Resolver) MemberKey(scope universe.ScopeID, m universe.Member) (Key, bool) {
	id, ok := r.pool.Find(m.Name)
	return MemberKey(scope, id, m), ok
}

// FunctionKey builds the key of a function from its raw text.
func (r *Resolver) FunctionKey(scope universe.ScopeID, f universe.Function) (Key, bool) {
	id, ok := r.pool.Find(f.Name)
	return FunctionKey(scope, id, f), ok
}

// ParamKey builds the key of a parameter of function scope fn.
func (r *Resolver) ParamKey(fn universe.ScopeID, p universe.Member) (Key, bool) {
	id, ok := r.pool.Find(p.Name)
	return ParamKey(fn, id, p), ok
}

// Entry is one resolved symbol.
type Entry struct {
	Key      Key
	Position Position
	Record   Record
	Scope    string
	Raw      string
	Final    string
}

// Renamed reports whether Final differs from Raw because of a collision.
func (e Entry) Renamed() bool { return e.Record.HasCollisions() }

// Entries resolves every published key in table order.
func (r *Resolver) Entries() ([]Entry, error) {
	keys := r.trans.Keys()
	out := make([]Entry, 0, len(keys))
	for _, key := range keys {
		rec, pos, err := r.Record(key)
		if err != nil {
			return nil, err
		}
		raw, ok := r.pool.Lookup(rec.Name)
		if !ok {
			return nil, &KeyError{Key: key, Err: fmt.Errorf("%w: name id %d is not interned", ErrNotFound, rec.Name)}
		}
		out = append(out, Entry{
			Key:      key,
			Position: pos,
			Record:   rec,
			Scope:    r.ScopeName(key.Scope),
			Raw:      raw,
			Final:    Stringify(raw, rec, r.suffixName(key, rec)),
		})
	}
	return out, nil
}

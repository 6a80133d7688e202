// Package snapshot freezes a built collision index to disk so renderers
// can resolve names without rebuilding it.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"disambig/internal/collide"
	"disambig/internal/names"
	"disambig/internal/universe"
)

// Schema is bumped whenever the encoded layout changes.
const Schema uint16 = 1

// ErrSchema is returned by Read for snapshots of another schema version.
var ErrSchema = errors.New("snapshot: unsupported schema")

type Snapshot struct {
	Schema    uint16
	BuildID   uuid.UUID
	CreatedAt time.Time
	Policy    string

	// Names is the pool in id order, Names[0] being the empty NoID slot.
	Names   []string
	Scopes  []ScopeDump
	Entries []EntryDump
}

// ScopeDump is one table with the scope's display name.
type ScopeDump struct {
	ID      uint32
	Name    string
	Records []RecordDump
}

type RecordDump struct {
	Name   uint32
	Packed uint32
	Origin uint32 `msgpack:",omitempty"`
}

// EntryDump is one published translation key and its position.
type EntryDump struct {
	Scope  uint32
	Kind   uint8
	Name   uint32
	Number uint32 `msgpack:",omitempty"`
	Offset uint32 `msgpack:",omitempty"`
	Size   uint32 `msgpack:",omitempty"`
	Index  uint32 `msgpack:",omitempty"`
	Table  uint32
	Pos    uint32
}

// Capture copies the state behind r into a new snapshot.
func Capture(r *collide.Resolver) *Snapshot {
	s := &Snapshot{
		Schema:    Schema,
		BuildID:   uuid.New(),
		CreatedAt: time.Now().UTC(),
		Policy:    r.Policy().String(),
		Names:     r.Pool().Snapshot(),
	}
	store := r.Store()
	for _, id := range store.Scopes() {
		recs := store.Get(id).Records()
		dump := ScopeDump{ID: uint32(id), Name: r.ScopeName(id), Records: make([]RecordDump, len(recs))}
		for i, rec := range recs {
			dump.Records[i] = RecordDump{Name: uint32(rec.Name), Packed: rec.Packed(), Origin: uint32(rec.Origin)}
		}
		s.Scopes = append(s.Scopes, dump)
	}
	trans := r.Translation()
	for _, key := range trans.Keys() {
		pos, _ := trans.Resolve(key)
		s.Entries = append(s.Entries, EntryDump{
			Scope: uint32(key.Scope), Kind: uint8(key.Kind), Name: uint32(key.Name),
			Number: key.Number, Offset: key.Offset, Size: key.Size, Index: key.Index,
			Table: uint32(pos.Table), Pos: pos.Index,
		})
	}
	return s
}

// Write captures r and stores it at path, replacing any existing file
// atomically.
func Write(path string, r *collide.Resolver) (*Snapshot, error) {
	s := Capture(r)
	if err := s.WriteFile(path); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteFile encodes s to a temp file next to path and renames it into place.
func (s *Snapshot) WriteFile(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = msgpack.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Read decodes the snapshot at path.
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var s Snapshot
	if err := msgpack.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}
	if s.Schema != Schema {
		return nil, fmt.Errorf("%w: %s has schema %d, want %d", ErrSchema, path, s.Schema, Schema)
	}
	return &s, nil
}

// Resolver rebuilds a read-only resolver from the snapshot, using the
// suffix policy the snapshot was taken with.
func (s *Snapshot) Resolver() (*collide.Resolver, error) {
	policy, err := collide.ParseSuffixPolicy(s.Policy)
	if err != nil {
		return nil, err
	}
	pool, err := names.Restore(s.Names)
	if err != nil {
		return nil, err
	}
	store := collide.NewStore()
	scopes := make(scopeNames, len(s.Scopes))
	for _, sc := range s.Scopes {
		t := collide.NewTable(len(sc.Records))
		for i, rd := range sc.Records {
			if !pool.Has(names.ID(rd.Name)) {
				return nil, fmt.Errorf("snapshot: record %d of scope %s names unknown id %d", i, sc.Name, rd.Name)
			}
			rec, err := collide.RecordFromPacked(names.ID(rd.Name), rd.Packed, universe.ScopeID(rd.Origin))
			if err != nil {
				return nil, fmt.Errorf("snapshot: scope %s: %w", sc.Name, err)
			}
			t.Append(rec)
		}
		t.Freeze()
		store.Put(universe.ScopeID(sc.ID), t)
		scopes[universe.ScopeID(sc.ID)] = sc.Name
	}
	trans := collide.NewTranslation()
	for _, e := range s.Entries {
		key := collide.Key{
			Scope: universe.ScopeID(e.Scope), Kind: collide.Kind(e.Kind), Name: names.ID(e.Name),
			Number: e.Number, Offset: e.Offset, Size: e.Size, Index: e.Index,
		}
		if !key.Kind.IsOwn() {
			return nil, fmt.Errorf("snapshot: entry %s has kind %s", key, key.Kind)
		}
		if err := trans.Publish(key, collide.Position{Table: universe.ScopeID(e.Table), Index: e.Pos}); err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
	}
	return collide.NewResolver(pool, store, trans, scopes, policy), nil
}

type scopeNames map[universe.ScopeID]string

func (m scopeNames) ScopeName(id universe.ScopeID) (string, bool) {
	name, ok := m[id]
	return name, ok
}

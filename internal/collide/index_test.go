package collide

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"disambig/internal/diag"
	"disambig/internal/names"
	"disambig/internal/universe"
)

const (
	baseID    universe.ScopeID = 1
	derivedID universe.ScopeID = 2
	valueFnID universe.ScopeID = 10
)

type fixture struct {
	u    *universe.Universe
	idx  *Index
	bag  *diag.Bag
	pool *names.Pool
}

func newFixture(t *testing.T, types []universe.Type, reserved []ReservedWord) *fixture {
	t.Helper()
	u, err := universe.New(types)
	if err != nil {
		t.Fatalf("universe.New: %v", err)
	}
	bag := diag.NewBag(0)
	rep := diag.BagReporter{Bag: bag}
	pool := names.NewPool()
	opts := Options{Reporter: rep}
	if reserved != nil {
		opts.Reserved = NewReserved(pool, reserved, rep)
		opts.CheckReserved = true
	}
	return &fixture{u: u, idx: New(pool, u, opts), bag: bag, pool: pool}
}

func (f *fixture) buildAll(t *testing.T) {
	t.Helper()
	ids := make([]universe.ScopeID, 0, len(f.u.Types))
	for _, ty := range f.u.Types {
		ids = append(ids, ty.ID)
	}
	if err := f.idx.AddAll(context.Background(), ids); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
}

func (f *fixture) member(t *testing.T, r *Resolver, scope universe.ScopeID, m universe.Member) string {
	t.Helper()
	key, ok := r.MemberKey(scope, m)
	if !ok {
		t.Fatalf("member %q was never interned", m.Name)
	}
	name, err := r.Name(key)
	if err != nil {
		t.Fatalf("Name(%s): %v", key, err)
	}
	return name
}

func baseDerived() []universe.Type {
	return []universe.Type{
		{ID: baseID, Name: "Base", Members: []universe.Member{{Name: "Value", Offset: 0, Size: 4}}},
		{
			ID: derivedID, Name: "Derived", Super: baseID,
			Members:   []universe.Member{{Name: "Value", Offset: 4, Size: 4}},
			Functions: []universe.Function{{ID: valueFnID, Name: "Value", Index: 0}},
		},
	}
}

func TestEndToEndBaseDerived(t *testing.T) {
	cases := []struct {
		policy SuffixPolicy
		member string
	}{
		{SuffixAncestor, "Value_Base"},
		{SuffixOwner, "Value_Derived"},
	}
	for _, c := range cases {
		t.Run(c.policy.String(), func(t *testing.T) {
			f := newFixture(t, baseDerived(), nil)
			f.buildAll(t)
			r := f.idx.Resolver(c.policy)
			base, _ := f.u.Type(baseID)
			derived, _ := f.u.Type(derivedID)

			if got := f.member(t, r, baseID, base.Members[0]); got != "Value" {
				t.Errorf("Base.Value = %q, want Value", got)
			}
			if got := f.member(t, r, derivedID, derived.Members[0]); got != c.member {
				t.Errorf("Derived.Value member = %q, want %q", got, c.member)
			}
			key, _ := r.FunctionKey(derivedID, derived.Functions[0])
			if got := r.MustName(key); got != "Func_Value" {
				t.Errorf("Derived.Value function = %q, want Func_Value", got)
			}

			mkey, _ := r.MemberKey(derivedID, derived.Members[0])
			rec, _, err := r.Record(mkey)
			if err != nil {
				t.Fatalf("Record: %v", err)
			}
			if rec.OwnKind() != MemberName || rec.Count(SuperMemberName) != 1 || rec.Count(MemberName) != 0 {
				t.Errorf("Derived.Value record = %s", rec.DebugString())
			}
			if f.bag.Len() != 0 {
				t.Errorf("unexpected diagnostics:\n%s", diag.FormatShort(f.bag.Items(), true))
			}
		})
	}
}

func TestNoMatchIsClean(t *testing.T) {
	f := newFixture(t, []universe.Type{{
		ID: 1, Name: "T",
		Members: []universe.Member{{Name: "a"}, {Name: "b", Offset: 4}},
	}}, nil)
	f.buildAll(t)
	for _, rec := range f.idx.Store().Get(1).Records() {
		if !rec.IsClean() || rec.HasCollisions() {
			t.Fatalf("record %s should be clean", rec.DebugString())
		}
	}
}

func TestRepeatedMemberCounts(t *testing.T) {
	f := newFixture(t, []universe.Type{{
		ID: 1, Name: "T",
		Members: []universe.Member{{Name: "x"}, {Name: "x", Number: 1}, {Name: "x", Number: 2}},
	}}, nil)
	f.buildAll(t)
	recs := f.idx.Store().Get(1).Records()
	for i, want := range []uint8{0, 1, 2} {
		if got := recs[i].Count(MemberName); got != want {
			t.Errorf("record %d member count = %d, want %d", i, got, want)
		}
	}
	r := f.idx.Resolver(SuffixAncestor)
	ty, _ := f.u.Type(1)
	for i, want := range []string{"x", "x_0", "x_1"} {
		if got := f.member(t, r, 1, ty.Members[i]); got != want {
			t.Errorf("member %d = %q, want %q", i, got, want)
		}
	}
}

func TestSuperHitUsesNearestAncestor(t *testing.T) {
	f := newFixture(t, []universe.Type{
		{ID: 1, Name: "A", Members: []universe.Member{{Name: "v"}}},
		{ID: 2, Name: "B", Super: 1, Members: []universe.Member{{Name: "v"}}},
		{ID: 3, Name: "C", Super: 2, Members: []universe.Member{{Name: "v"}}},
	}, nil)
	f.buildAll(t)
	r := f.idx.Resolver(SuffixAncestor)
	c, _ := f.u.Type(3)
	if got := f.member(t, r, 3, c.Members[0]); got != "v_B" {
		t.Fatalf("C.v = %q, want v_B", got)
	}
	key, _ := r.MemberKey(3, c.Members[0])
	rec, _, _ := r.Record(key)
	if rec.Count(SuperMemberName) != 2 || rec.Origin != 2 {
		t.Fatalf("C.v record = %s origin=%d", rec.DebugString(), rec.Origin)
	}
}

func TestFunctionOverloads(t *testing.T) {
	f := newFixture(t, []universe.Type{{
		ID: 1, Name: "T",
		Functions: []universe.Function{
			{ID: 10, Name: "Run", Index: 0},
			{ID: 11, Name: "Run", Index: 1},
		},
	}}, nil)
	f.buildAll(t)
	r := f.idx.Resolver(SuffixAncestor)
	ty, _ := f.u.Type(1)
	var got []string
	for _, fn := range ty.Functions {
		key, _ := r.FunctionKey(1, fn)
		got = append(got, r.MustName(key))
	}
	if fmt.Sprint(got) != "[Run Run_0]" {
		t.Fatalf("overloads = %v", got)
	}
}

func TestParameters(t *testing.T) {
	f := newFixture(t, []universe.Type{{
		ID: 1, Name: "T",
		Members: []universe.Member{{Name: "Value"}},
		Functions: []universe.Function{{
			ID: 10, Name: "Set",
			Params: []universe.Member{
				{Name: "int"},
				{Name: "Value", Number: 1},
				{Name: "a", Number: 2},
				{Name: "a", Number: 3},
				{Name: "Params", Number: 4},
			},
		}},
	}}, DefaultReservedWords())
	f.buildAll(t)
	r := f.idx.Resolver(SuffixAncestor)
	ty, _ := f.u.Type(1)
	want := []string{"Param_int", "Param_Value", "a", "a_0", "Params_0"}
	for i, p := range ty.Functions[0].Params {
		key, ok := r.ParamKey(10, p)
		if !ok {
			t.Fatalf("param %q not interned", p.Name)
		}
		if got := r.MustName(key); got != want[i] {
			t.Errorf("param %d = %q, want %q", i, got, want[i])
		}
	}
	if !f.idx.Store().Get(10).Frozen() {
		t.Errorf("function table should be frozen after its parameters")
	}
}

func TestReservedMember(t *testing.T) {
	f := newFixture(t, []universe.Type{
		{ID: 1, Name: "Base"},
		{ID: 2, Name: "Holder", Super: 1, Members: []universe.Member{{Name: "class"}}},
	}, DefaultReservedWords())
	f.buildAll(t)
	ty, _ := f.u.Type(2)
	for _, p := range []SuffixPolicy{SuffixAncestor, SuffixOwner} {
		if got := f.member(t, f.idx.Resolver(p), 2, ty.Members[0]); got != "class_Holder" {
			t.Errorf("%s: reserved member = %q, want class_Holder", p, got)
		}
	}
}

func TestReservedCheckDisabled(t *testing.T) {
	u, _ := universe.New([]universe.Type{{ID: 1, Name: "T", Members: []universe.Member{{Name: "class"}}}})
	pool := names.NewPool()
	idx := New(pool, u, Options{Reserved: NewReserved(pool, DefaultReservedWords(), nil), CheckReserved: false})
	if err := idx.AddType(context.Background(), 1); err != nil {
		t.Fatalf("AddType: %v", err)
	}
	r := idx.Resolver(SuffixAncestor)
	key, _ := r.MemberKey(1, u.Types[0].Members[0])
	if got := r.MustName(key); got != "class" {
		t.Fatalf("got %q, want class", got)
	}
}

func TestCounterSaturation(t *testing.T) {
	members := make([]universe.Member, MaxCount+2)
	for i := range members {
		members[i] = universe.Member{Name: "x", Number: uint32(i)}
	}
	f := newFixture(t, []universe.Type{{ID: 1, Name: "T", Members: members}}, nil)
	f.buildAll(t)
	if got := f.bag.Count(diag.IdxCounterSaturation); got != 1 {
		t.Fatalf("saturation diagnostics = %d, want 1", got)
	}
	recs := f.idx.Store().Get(1).Records()
	if last := recs[len(recs)-1]; last.Count(MemberName) != MaxCount {
		t.Fatalf("last record = %s", last.DebugString())
	}
}

func TestDuplicateKeySkipped(t *testing.T) {
	f := newFixture(t, []universe.Type{{
		ID: 1, Name: "T",
		Members: []universe.Member{{Name: "x", Offset: 8, Size: 4}, {Name: "x", Offset: 8, Size: 4}},
	}}, nil)
	f.buildAll(t)
	if got := f.bag.Count(diag.IdxDuplicateKey); got != 1 {
		t.Fatalf("duplicate diagnostics = %d, want 1", got)
	}
	if n := f.idx.Store().Get(1).Len(); n != 1 {
		t.Fatalf("table has %d records, want 1", n)
	}
	if f.idx.Translation().Len() != 1 {
		t.Fatalf("translation has %d keys, want 1", f.idx.Translation().Len())
	}
}

func TestPublishDuplicateLeavesEntry(t *testing.T) {
	tr := NewTranslation()
	key := Key{Scope: 1, Kind: MemberName, Name: 3}
	if err := tr.Publish(key, Position{Table: 1, Index: 0}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	err := tr.Publish(key, Position{Table: 1, Index: 5})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("second Publish err = %v, want ErrDuplicateKey", err)
	}
	var kerr *KeyError
	if !errors.As(err, &kerr) || kerr.Key != key {
		t.Fatalf("error does not carry the key: %v", err)
	}
	for range 2 {
		pos, err := tr.Resolve(key)
		if err != nil || pos != (Position{Table: 1, Index: 0}) {
			t.Fatalf("Resolve = %v, %v", pos, err)
		}
	}
}

func TestResolveUnknownKey(t *testing.T) {
	f := newFixture(t, baseDerived(), nil)
	f.buildAll(t)
	r := f.idx.Resolver(SuffixAncestor)
	_, err := r.Name(Key{Scope: 99, Kind: MemberName})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("MustName should panic on unknown key")
		}
	}()
	r.MustName(Key{Scope: 99, Kind: MemberName})
}

func TestVerifyReportsDanglingKeys(t *testing.T) {
	f := newFixture(t, baseDerived(), nil)
	f.buildAll(t)
	live := f.idx.Resolver(SuffixAncestor)
	if n := live.Verify(diag.BagReporter{Bag: f.bag}); n != 0 || f.bag.Len() != 0 {
		t.Fatalf("fresh build reported %d dangling keys", n)
	}

	value, _ := f.pool.Find("Value")
	trans := NewTranslation()
	good := MemberKey(baseID, value, universe.Member{Name: "Value", Size: 4})
	pos, err := f.idx.Translation().Resolve(good)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := trans.Publish(good, pos); err != nil {
		t.Fatal(err)
	}
	outside := MemberKey(derivedID, value, universe.Member{Name: "Value", Offset: 4, Size: 4})
	if err := trans.Publish(outside, Position{Table: derivedID, Index: 42}); err != nil {
		t.Fatal(err)
	}

	damaged := NewResolver(f.pool, f.idx.Store(), trans, f.u, SuffixAncestor)
	if _, err := damaged.Name(outside); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Name(outside) = %v, want ErrNotFound", err)
	}
	bag := diag.NewBag(0)
	if n := damaged.Verify(diag.BagReporter{Bag: bag}); n != 1 {
		t.Fatalf("Verify = %d, want 1", n)
	}
	d := bag.Items()[0]
	if d.Code != diag.IdxNotFound || d.Subject != (diag.Subject{Scope: "Derived", Symbol: "Value"}) {
		t.Errorf("diagnostic = %s", d.Line())
	}
}

func TestAddTypeBuildsAncestorsFirst(t *testing.T) {
	f := newFixture(t, baseDerived(), nil)
	if err := f.idx.AddType(context.Background(), derivedID); err != nil {
		t.Fatalf("AddType: %v", err)
	}
	if !f.idx.Store().Built(baseID) {
		t.Fatalf("Base should be built before Derived")
	}
	r := f.idx.Resolver(SuffixAncestor)
	derived, _ := f.u.Type(derivedID)
	if got := f.member(t, r, derivedID, derived.Members[0]); got != "Value_Base" {
		t.Fatalf("Derived.Value = %q", got)
	}

	n := f.idx.Translation().Len()
	if err := f.idx.AddType(context.Background(), baseID); err != nil {
		t.Fatalf("AddType(Base): %v", err)
	}
	if err := f.idx.AddType(context.Background(), derivedID); err != nil {
		t.Fatalf("AddType(Derived) again: %v", err)
	}
	if f.idx.Translation().Len() != n || f.bag.Len() != 0 {
		t.Fatalf("rebuild changed state: %d keys, %d diagnostics", f.idx.Translation().Len(), f.bag.Len())
	}
}

func TestEmptyTypeIsBuilt(t *testing.T) {
	f := newFixture(t, []universe.Type{{ID: 1, Name: "Empty"}}, nil)
	f.buildAll(t)
	if !f.idx.Store().Built(1) {
		t.Fatalf("empty type should be marked built")
	}
}

func TestAncestorCycle(t *testing.T) {
	f := newFixture(t, []universe.Type{
		{ID: 1, Name: "A", Super: 2, Members: []universe.Member{{Name: "x"}}},
		{ID: 2, Name: "B", Super: 1, Members: []universe.Member{{Name: "x"}}},
		{ID: 3, Name: "C", Members: []universe.Member{{Name: "x"}}},
	}, nil)
	f.buildAll(t)
	if got := f.bag.Count(diag.IdxAncestorCycle); got != 1 {
		t.Fatalf("cycle diagnostics = %d, want 1", got)
	}
	if f.idx.Store().Built(1) || f.idx.Store().Built(2) {
		t.Fatalf("types on a cycle must not be built")
	}
	if !f.idx.Store().Built(3) {
		t.Fatalf("unrelated type should still be built")
	}
}

func TestAncestorCycleBuildsTypesBelowIt(t *testing.T) {
	a := universe.Type{ID: 1, Name: "A", Super: 2, Members: []universe.Member{{Name: "v"}}}
	c := universe.Type{ID: 2, Name: "C", Super: 1, Members: []universe.Member{{Name: "v"}}}
	d := universe.Type{ID: 3, Name: "D", Super: 2, Members: []universe.Member{{Name: "v"}}}
	e := universe.Type{ID: 4, Name: "E", Super: 2, Members: []universe.Member{{Name: "w"}}}

	orders := map[string][]universe.Type{
		"cycle first":      {a, c, d, e},
		"descendant first": {d, a, c},
		"nested":           {e, d, c, a},
	}
	for name, types := range orders {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, types, nil)
			f.buildAll(t)

			if got := f.bag.Count(diag.IdxAncestorCycle); got != 1 {
				t.Fatalf("cycle diagnostics = %d, want 1:\n%s", got, diag.FormatShort(f.bag.Items(), true))
			}
			d0 := f.bag.Items()[0]
			if d0.Subject.Scope != "A" {
				t.Errorf("cycle reported against %q, want A", d0.Subject.Scope)
			}
			if len(d0.Notes) != 2 || d0.Notes[0].Msg != "collide: ancestor chain forms a cycle: A -> C -> A" {
				t.Errorf("notes = %+v", d0.Notes)
			}
			for _, id := range []universe.ScopeID{1, 2} {
				if f.idx.Store().Built(id) {
					t.Errorf("scope %d is on the cycle and must not be built", id)
				}
				if err := f.idx.Skipped(id); !errors.Is(err, ErrAncestorCycle) {
					t.Errorf("Skipped(%d) = %v, want ErrAncestorCycle", id, err)
				}
			}
			if !f.idx.Store().Built(3) {
				t.Fatalf("D extends the cycle and must still be built")
			}
			if err := f.idx.Skipped(3); err != nil {
				t.Errorf("Skipped(D) = %v", err)
			}

			r := f.idx.Resolver(SuffixAncestor)
			if got := f.member(t, r, 3, universe.Member{Name: "v"}); got != "v" {
				t.Errorf("D.v = %q, want v: the broken chain must not be searched", got)
			}
		})
	}
}

func TestUnknownAncestor(t *testing.T) {
	f := newFixture(t, []universe.Type{
		{ID: 1, Name: "Orphan", Super: 42, Members: []universe.Member{{Name: "x"}}},
	}, nil)
	f.buildAll(t)
	if got := f.bag.Count(diag.IdxUnknownAncestor); got != 1 {
		t.Fatalf("unknown ancestor diagnostics = %d, want 1", got)
	}
	if !f.idx.Store().Built(1) {
		t.Fatalf("type should be built without its missing ancestor")
	}
}

func TestAddTypeUnknownID(t *testing.T) {
	f := newFixture(t, baseDerived(), nil)
	if err := f.idx.AddType(context.Background(), 77); !errors.Is(err, ErrUnknownScope) {
		t.Fatalf("err = %v, want ErrUnknownScope", err)
	}
}

func TestAddTypeCancelled(t *testing.T) {
	f := newFixture(t, baseDerived(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.idx.AddType(ctx, derivedID); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRegisterRejectsBadRequests(t *testing.T) {
	f := newFixture(t, baseDerived(), nil)
	name := f.pool.Intern("p")
	if _, err := f.idx.Register(Registration{Scope: baseID, Name: name, Kind: ParameterName}); !errors.Is(err, ErrMissingFunctionScope) {
		t.Fatalf("err = %v, want ErrMissingFunctionScope", err)
	}
	if _, err := f.idx.Register(Registration{Scope: baseID, Name: name, Kind: SuperMemberName}); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("err = %v, want ErrInvalidKind", err)
	}
}

func TestEntriesFollowTableOrder(t *testing.T) {
	f := newFixture(t, baseDerived(), nil)
	f.buildAll(t)
	entries, err := f.idx.Resolver(SuffixAncestor).Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Scope+"."+e.Final)
	}
	want := "[Base.Value Derived.Value_Base Derived.Func_Value]"
	if fmt.Sprint(got) != want {
		t.Fatalf("entries = %v, want %s", got, want)
	}
	if !entries[1].Renamed() || entries[0].Renamed() {
		t.Fatalf("Renamed flags wrong: %+v", entries)
	}
}

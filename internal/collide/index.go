package collide

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"disambig/internal/diag"
	"disambig/internal/names"
	"disambig/internal/trace"
	"disambig/internal/universe"
)

// Source is the reflection walker as the index sees it.
type Source interface {
	Type(id universe.ScopeID) (*universe.Type, bool)
	ScopeName(id universe.ScopeID) (string, bool)
}

// Options configures an Index.
type Options struct {
	// Reserved is the seeded reserved-word table; nil disables the check.
	Reserved *Reserved
	// CheckReserved is the reserved-word flag the per-type driver passes
	// to every registration.
	CheckReserved bool
	// Reporter receives diagnostics; nil drops them.
	Reporter diag.Reporter
}

// Index builds the per-scope symbol tables and the translation lookup.
type Index struct {
	pool          *names.Pool
	reserved      *Reserved
	store         *Store
	trans         *Translation
	src           Source
	reporter      diag.Reporter
	checkReserved bool

	failMu sync.Mutex
	failed map[universe.ScopeID]error
}

// New creates an index over src. pool must already hold the reserved words
// when opts.Reserved is set.
func New(pool *names.Pool, src Source, opts Options) *Index {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Index{
		pool:          pool,
		reserved:      opts.Reserved,
		store:         NewStore(),
		trans:         NewTranslation(),
		src:           src,
		reporter:      reporter,
		checkReserved: opts.CheckReserved,
		failed:        make(map[universe.ScopeID]error),
	}
}

func (x *Index) Pool() *names.Pool { return x.pool }

func (x *Index) Store() *Store { return x.store }

func (x *Index) Translation() *Translation { return x.trans }

func (x *Index) Reserved() *Reserved { return x.reserved }

// Registration is one symbol handed to Register.
type Registration struct {
	// Scope is the type scope the symbol is declared in.
	Scope universe.ScopeID
	// Ancestors is Scope's ancestor chain, nearest first, all already built.
	Ancestors []universe.ScopeID
	Name      names.ID
	// Inserted is the pool's "newly inserted" flag for Name. A name nobody
	// has seen before cannot collide, so the search is skipped.
	Inserted bool
	Kind     Kind
	// Function is the owning function scope; required for ParameterName.
	Function      universe.ScopeID
	CheckReserved bool
	// Subject names the symbol in diagnostics.
	Subject diag.Subject
}

// Register appends a record for req to its target table and returns the
// record's position. The target is the function's table for parameters and
// the type's own table otherwise. Searches run in priority order and the
// first hit wins:
//
//  1. parameters: the function's own table
//  2. parameters: reserved words
//  3. the type's own table
//  4. every ancestor's table, nearest first (a super hit)
//  5. reserved words
//
// A hit copies the found record's counters and bumps the slot
// foundKind+1 for super hits, foundKind otherwise.
func (x *Index) Register(req Registration) (Position, error) {
	if !req.Kind.IsOwn() {
		return Position{}, fmt.Errorf("%w: %s", ErrInvalidKind, req.Kind)
	}
	isParam := req.Kind == ParameterName
	if isParam && !req.Function.IsValid() {
		return Position{}, ErrMissingFunctionScope
	}

	targetScope := req.Scope
	if isParam {
		targetScope = req.Function
	}
	target := x.store.GetOrCreate(targetScope)

	if req.Inserted {
		return x.push(target, targetScope, NewRecord(req.Name, req.Kind)), nil
	}

	if isParam {
		if hit, ok := target.Find(req.Name); ok {
			return x.collide(req, target, targetScope, hit, false, universe.NoScope)
		}
		if req.CheckReserved {
			if hit, ok := x.reserved.Find(req.Name); ok {
				return x.collide(req, target, targetScope, hit, false, universe.NoScope)
			}
		}
	}

	if hit, ok := x.store.Get(req.Scope).Find(req.Name); ok {
		return x.collide(req, target, targetScope, hit, false, universe.NoScope)
	}

	for _, anc := range req.Ancestors {
		if hit, ok := x.store.Get(anc).Find(req.Name); ok {
			return x.collide(req, target, targetScope, hit, true, anc)
		}
	}

	if req.CheckReserved {
		if hit, ok := x.reserved.Find(req.Name); ok {
			return x.collide(req, target, targetScope, hit, false, universe.NoScope)
		}
	}

	return x.push(target, targetScope, NewRecord(req.Name, req.Kind)), nil
}

func (x *Index) collide(req Registration, target *Table, scope universe.ScopeID, hit Record, super bool, from universe.ScopeID) (Position, error) {
	slot := hit.OwnKind()
	if super {
		slot++
	}
	if !slot.IsValid() {
		return Position{}, fmt.Errorf("collide: %s hit on %s cannot be counted", hit.OwnKind(), req.Subject)
	}
	rec, saturated := NewRecord(req.Name, req.Kind).inherit(hit, req.Kind, slot)
	if super && slot == SuperMemberName {
		rec.Origin = from
	}
	if saturated {
		diag.ReportWarning(x.reporter, diag.IdxCounterSaturation, req.Subject,
			fmt.Sprintf("%s collision counter saturated at %d; generated name may repeat", slot, MaxCount)).Emit()
	}
	return x.push(target, scope, rec), nil
}

func (x *Index) push(t *Table, scope universe.ScopeID, r Record) Position {
	return Position{Table: scope, Index: t.Append(r)}
}

// AddAll runs AddType for every id in order.
func (x *Index) AddAll(ctx context.Context, ids []universe.ScopeID) error {
	for _, id := range ids {
		if err := x.AddType(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// AddType builds the tables of type id, first building every ancestor that
// is not built yet (furthest first). Already built types are skipped.
// Broken ancestor chains are reported as diagnostics and do not fail the
// call; only cancellation and unknown ids do. A type on an ancestor cycle
// is never built, but types below the cycle are, without the broken part
// of their chain.
func (x *Index) AddType(ctx context.Context, id universe.ScopeID) error {
	if x.store.Built(id) || x.isFailed(id) {
		return nil
	}
	if _, ok := x.src.Type(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownScope, id)
	}

	// pending runs from id up to the first built, failed or missing ancestor
	var pending []universe.ScopeID
	at := make(map[universe.ScopeID]int)
	for cur := id; cur.IsValid() && !x.store.Built(cur) && !x.isFailed(cur); {
		if i, loop := at[cur]; loop {
			x.reportCycle(pending[i:])
			pending = pending[:i]
			break
		}
		t, ok := x.src.Type(cur)
		if !ok {
			last := pending[len(pending)-1]
			diag.ReportError(x.reporter, diag.IdxUnknownAncestor, x.subject(last, ""),
				fmt.Sprintf("ancestor scope %d is not part of the universe; building without it", cur)).Emit()
			break
		}
		at[cur] = len(pending)
		pending = append(pending, cur)
		cur = t.Super
	}

	for i := len(pending) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		x.buildType(ctx, pending[i])
	}
	return nil
}

// reportCycle marks every type of cycle as failed and reports the cycle
// once. The chain starts at the smallest id so the report does not depend
// on which type was reached first.
func (x *Index) reportCycle(cycle []universe.ScopeID) {
	start := 0
	for i, c := range cycle {
		if c < cycle[start] {
			start = i
		}
	}
	ordered := append(slices.Clone(cycle[start:]), cycle[:start]...)
	chain := make([]string, 0, len(ordered)+1)
	for _, c := range ordered {
		chain = append(chain, x.scopeName(c))
	}
	chain = append(chain, chain[0])
	err := fmt.Errorf("%w: %s", ErrAncestorCycle, strings.Join(chain, " -> "))

	x.failMu.Lock()
	for _, c := range ordered {
		x.failed[c] = err
	}
	x.failMu.Unlock()

	b := diag.ReportError(x.reporter, diag.IdxAncestorCycle, x.subject(ordered[0], ""),
		"ancestor chain loops; every type on it is skipped").
		WithNote(diag.Subject{}, err.Error())
	for _, c := range ordered[1:] {
		b.WithNote(x.subject(c, ""), "skipped, on the same cycle")
	}
	b.Emit()
}

func (x *Index) isFailed(id universe.ScopeID) bool {
	return x.Skipped(id) != nil
}

// Skipped returns the reason type id was left unbuilt, wrapping
// ErrAncestorCycle, or nil.
func (x *Index) Skipped(id universe.ScopeID) error {
	x.failMu.Lock()
	defer x.failMu.Unlock()
	return x.failed[id]
}

// ancestors returns the built ancestor chain of t, nearest first.
func (x *Index) ancestors(t *universe.Type) []universe.ScopeID {
	var chain []universe.ScopeID
	for cur := t.Super; cur.IsValid() && x.store.Built(cur); {
		chain = append(chain, cur)
		anc, ok := x.src.Type(cur)
		if !ok {
			break
		}
		cur = anc.Super
	}
	return chain
}

func (x *Index) buildType(ctx context.Context, id universe.ScopeID) {
	t, _ := x.src.Type(id)
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeType, "type:"+t.Name, 0)

	base := Registration{
		Scope:         id,
		Ancestors:     x.ancestors(t),
		CheckReserved: x.checkReserved && x.reserved != nil,
	}

	for _, m := range t.Members {
		req := base
		req.Kind = MemberName
		x.add(tracer, req, m.Name, func(name names.ID) Key { return MemberKey(id, name, m) })
	}

	for _, f := range t.Functions {
		req := base
		req.Kind = FunctionName
		x.add(tracer, req, f.Name, func(name names.ID) Key { return FunctionKey(id, name, f) })

		for _, p := range f.Params {
			req := base
			req.Kind = ParameterName
			req.Function = f.ID
			x.add(tracer, req, p.Name, func(name names.ID) Key { return ParamKey(f.ID, name, p) })
		}
		x.store.Freeze(f.ID)
	}

	x.store.MarkBuilt(id)
	span.WithExtra("members", fmt.Sprint(len(t.Members))).
		WithExtra("functions", fmt.Sprint(len(t.Functions))).
		End("")
}

// add interns raw, registers it and publishes its key. A key that is
// already published is reported and the symbol is skipped.
func (x *Index) add(tracer trace.Tracer, req Registration, raw string, keyFor func(names.ID) Key) {
	name, inserted := x.pool.FindOrAdd(raw)
	key := keyFor(name)
	req.Name = name
	req.Inserted = inserted
	req.Subject = x.subject(key.Scope, raw)

	if x.trans.Contains(key) {
		x.reportDuplicate(req.Subject, key)
		return
	}
	pos, err := x.Register(req)
	if err != nil {
		code := diag.UnknownCode
		if errors.Is(err, ErrMissingFunctionScope) {
			code = diag.IdxMissingFunctionScope
		}
		diag.ReportError(x.reporter, code, req.Subject, err.Error()).Emit()
		return
	}
	if err := x.trans.Publish(key, pos); err != nil {
		x.reportDuplicate(req.Subject, key)
		return
	}
	trace.Point(tracer, trace.ScopeSymbol, req.Kind.String()+":"+raw, req.Subject.String())
}

func (x *Index) reportDuplicate(subject diag.Subject, key Key) {
	diag.ReportError(x.reporter, diag.IdxDuplicateKey, subject,
		fmt.Sprintf("translation key %s already published; symbol skipped", key)).Emit()
}

func (x *Index) scopeName(id universe.ScopeID) string {
	if name, ok := x.src.ScopeName(id); ok {
		return name
	}
	return fmt.Sprintf("scope#%d", id)
}

func (x *Index) subject(scope universe.ScopeID, symbol string) diag.Subject {
	return diag.Subject{Scope: x.scopeName(scope), Symbol: symbol}
}

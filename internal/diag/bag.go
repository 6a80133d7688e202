package diag

import (
	"cmp"
	"slices"
)

// DefaultLimit caps a Bag created with a non-positive limit.
const DefaultLimit = 1 << 16

// Bag collects diagnostics up to a limit. It is not safe for concurrent
// use; build workers report through a LockedReporter.
type Bag struct {
	items   []Diagnostic
	limit   int
	dropped int
}

func NewBag(limit int) *Bag {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Bag{limit: limit}
}

// Add appends d and reports whether it fit under the limit.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.limit {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Dropped counts diagnostics refused because the bag was full.
func (b *Bag) Dropped() int { return b.dropped }

func (b *Bag) HasErrors() bool { return b.any(SevError) }

// HasWarnings is true for warnings and errors alike.
func (b *Bag) HasWarnings() bool { return b.any(SevWarning) }

func (b *Bag) any(floor Severity) bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= floor })
}

func (b *Bag) Len() int { return len(b.items) }

// Count returns how many diagnostics carry code.
func (b *Bag) Count(code Code) int {
	n := 0
	for _, d := range b.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Items returns the backing slice. Do not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// Sort puts the bag in a build-order independent order: subject first,
// then the most severe, then code and message.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Subject.Scope, y.Subject.Scope),
			cmp.Compare(x.Subject.Symbol, y.Subject.Symbol),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
			cmp.Compare(x.Message, y.Message),
		)
	})
}

// Dedup keeps the first of every group of diagnostics that a
// DedupReporter would have merged.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := dedupKey{code: d.Code, sev: d.Severity, subject: d.Subject, msg: d.Message}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}

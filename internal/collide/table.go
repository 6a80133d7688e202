package collide

import (
	"fmt"

	"fortio.org/safecast"

	"disambig/internal/names"
)

// Table is the ordered, append-only list of records of one scope.
// Searches scan from the most recent record backwards.
type Table struct {
	records []Record
	frozen  bool
}

// NewTable creates a table with an optional capacity hint.
func NewTable(capacity int) *Table {
	if capacity < 0 {
		capacity = 0
	}
	return &Table{records: make([]Record, 0, capacity)}
}

// Append adds r and returns its index. Appending to a frozen table panics.
func (t *Table) Append(r Record) uint32 {
	if t.frozen {
		panic("collide: append to frozen table")
	}
	idx, err := safecast.Conv[uint32](len(t.records))
	if err != nil {
		panic(fmt.Errorf("collide: table overflow: %w", err))
	}
	t.records = append(t.records, r)
	return idx
}

// At returns the record at i.
func (t *Table) At(i uint32) (Record, bool) {
	if t == nil || int(i) >= len(t.records) {
		return Record{}, false
	}
	return t.records[i], true
}

// Find returns the most recently appended record named name.
func (t *Table) Find(name names.ID) (Record, bool) {
	if t == nil {
		return Record{}, false
	}
	for i := len(t.records) - 1; i >= 0; i-- {
		if t.records[i].Name == name {
			return t.records[i], true
		}
	}
	return Record{}, false
}

// Len reports the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records exposes the backing slice. Do not modify it.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	return t.records
}

// Freeze marks the table read-only.
func (t *Table) Freeze() { t.frozen = true }

// Frozen reports whether Freeze was called.
func (t *Table) Frozen() bool { return t != nil && t.frozen }

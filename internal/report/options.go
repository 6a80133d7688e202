// Package report renders resolved names and diagnostics for the CLI.
package report

// PrettyOpts configures human-readable diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
}

// JSONOpts configures JSON diagnostics.
type JSONOpts struct {
	// Max truncates the output, not the bag; 0 keeps everything.
	Max          int
	IncludeNotes bool
}

// NamesOpts configures the name table.
type NamesOpts struct {
	Color bool
	// OnlyCollisions keeps the rows whose final name differs from the raw one.
	OnlyCollisions bool
	// MaxWidth truncates the name columns to this many cells; 0 disables it.
	MaxWidth int
	// Counts appends the record's collision counters.
	Counts bool
}

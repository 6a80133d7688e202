// Package diag defines the diagnostic model used while building the collision index.
//
// # Purpose
//
//   - Carry per-symbol findings (duplicate translation keys, saturated counters,
//     broken ancestor chains) out of the build without aborting it: the offending
//     symbol is skipped and the build continues.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform any formatting beyond FormatShort, IO, or CLI
// integration. Rendering lives in internal/report.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Subject – the scope and symbol the finding is about.
//   - Notes – optional secondary subjects/messages for additional context.
//
// # Emitting diagnostics
//
// Producers use a diag.Reporter. ReportError and ReportWarning return a
// ReportBuilder; chain WithNote and finish with Emit. BagReporter collects into
// a Bag, LockedReporter makes any Reporter safe for concurrent build workers,
// DedupReporter drops repeats.
package diag

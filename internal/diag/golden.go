package diag

import (
	"strings"
)

// FormatShort renders diagnostics one per line:
//
//	ERROR IDX1001 Derived.Value: duplicate translation key ...
//
// Notes follow on indented lines when includeNotes is set. The caller is
// expected to Sort the bag first if a stable order matters.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString(d.Line())
		sb.WriteByte('\n')
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			sb.WriteString("  note: ")
			if n.Subject != (Subject{}) {
				sb.WriteString(n.Subject.String())
				sb.WriteString(": ")
			}
			sb.WriteString(n.Msg)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

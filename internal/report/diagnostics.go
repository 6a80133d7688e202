package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"disambig/internal/diag"
)

func severityColor(sev diag.Severity, enabled bool) *color.Color {
	var c *color.Color
	switch sev {
	case diag.SevError:
		c = color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		c = color.New(color.FgYellow, color.Bold)
	default:
		c = color.New(color.FgCyan)
	}
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Diagnostics prints one line per diagnostic in bag order:
//
//	<scope>.<symbol>: <SEV> <CODE>: <message>
//
// followed by indented notes when requested.
func Diagnostics(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	for _, d := range bag.Items() {
		sev := severityColor(d.Severity, opts.Color).Sprint(d.Severity.String())
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", d.Subject, sev, d.Code.ID(), d.Message); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			line := "  note: " + n.Msg
			if n.Subject != (diag.Subject{}) {
				line = "  note: " + n.Subject.String() + ": " + n.Msg
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	if n := bag.Dropped(); n > 0 {
		if _, err := fmt.Fprintf(w, "%d more diagnostics not shown (max_diagnostics reached)\n", n); err != nil {
			return err
		}
	}
	return nil
}

// NoteJSON is one note of a diagnostic.
type NoteJSON struct {
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// DiagnosticJSON is the JSON form of a diagnostic.
type DiagnosticJSON struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	Message  string     `json:"message"`
	Scope    string     `json:"scope,omitempty"`
	Symbol   string     `json:"symbol,omitempty"`
	Notes    []NoteJSON `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root object written by DiagnosticsJSON.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

// BuildDiagnosticsOutput converts bag without serialising it.
func BuildDiagnosticsOutput(bag *diag.Bag, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, n)}
	for _, d := range items[:n] {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Scope:    d.Subject.Scope,
			Symbol:   d.Subject.Symbol,
		}
		if opts.IncludeNotes {
			for _, note := range d.Notes {
				nj := NoteJSON{Message: note.Msg}
				if note.Subject != (diag.Subject{}) {
					nj.Subject = note.Subject.String()
				}
				dj.Notes = append(dj.Notes, nj)
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	out.Dropped = bag.Dropped() + len(items) - n
	return out
}

// DiagnosticsJSON writes bag as indented JSON.
func DiagnosticsJSON(w io.Writer, bag *diag.Bag, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, opts))
}

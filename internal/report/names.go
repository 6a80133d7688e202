package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"disambig/internal/collide"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	summaryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
)

var nameColumns = []string{"SCOPE", "KIND", "RAW", "FINAL"}

// Names prints the resolved names as an aligned table followed by a
// one-line summary.
func Names(w io.Writer, entries []collide.Entry, opts NamesOpts) error {
	rows := make([][]string, 0, len(entries))
	renamed := make([]bool, 0, len(entries))
	scopes := make(map[string]bool)
	total := 0
	for _, e := range entries {
		scopes[e.Scope] = true
		if e.Renamed() {
			total++
		} else if opts.OnlyCollisions {
			continue
		}
		row := []string{e.Scope, e.Key.Kind.String(), e.Raw, e.Final}
		if opts.Counts {
			row = append(row, counts(e.Record))
		}
		rows = append(rows, row)
		renamed = append(renamed, e.Renamed())
	}

	header := nameColumns
	if opts.Counts {
		header = append(append([]string(nil), nameColumns...), "COUNTS")
	}
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(nameColumns) {
				row[i] = truncate(cell, opts.MaxWidth)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	final := color.New(color.FgYellow)
	if opts.Color {
		final.EnableColor()
	} else {
		final.DisableColor()
	}

	line := formatRow(header, widths)
	if opts.Color {
		line = headerStyle.Render(line)
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = runewidth.FillRight(cell, widths[j])
		}
		if renamed[i] {
			pad := widths[3] - runewidth.StringWidth(row[3])
			cells[3] = final.Sprint(row[3]) + strings.Repeat(" ", pad)
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d symbols in %d scopes, %d renamed", len(entries), len(scopes), total)
	if opts.Color {
		summary = summaryStyle.Render(summary)
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}

func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		padded[i] = runewidth.FillRight(c, widths[i])
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// counts renders the non-zero counters, e.g. "member=1 super-member=1".
func counts(r collide.Record) string {
	var parts []string
	for k, n := range r.Counts() {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", collide.Kind(k), n))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// NameJSON is one row of NamesJSON.
type NameJSON struct {
	Scope   string           `json:"scope"`
	Kind    string           `json:"kind"`
	Raw     string           `json:"raw"`
	Final   string           `json:"final"`
	Renamed bool             `json:"renamed"`
	Counts  map[string]uint8 `json:"counts,omitempty"`
	Number  uint32           `json:"number,omitempty"`
	Offset  uint32           `json:"offset,omitempty"`
	Size    uint32           `json:"size,omitempty"`
	Index   uint32           `json:"index,omitempty"`
}

// NamesJSON writes the raw to final mapping as indented JSON.
func NamesJSON(w io.Writer, entries []collide.Entry, opts NamesOpts) error {
	out := make([]NameJSON, 0, len(entries))
	for _, e := range entries {
		if opts.OnlyCollisions && !e.Renamed() {
			continue
		}
		nj := NameJSON{
			Scope: e.Scope, Kind: e.Key.Kind.String(), Raw: e.Raw, Final: e.Final, Renamed: e.Renamed(),
			Number: e.Key.Number, Offset: e.Key.Offset, Size: e.Key.Size, Index: e.Key.Index,
		}
		for k, n := range e.Record.Counts() {
			if n == 0 {
				continue
			}
			if nj.Counts == nil {
				nj.Counts = make(map[string]uint8)
			}
			nj.Counts[collide.Kind(k).String()] = n
		}
		out = append(out, nj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

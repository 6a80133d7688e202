package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// Kind distinguishes span boundaries from instant points.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Event is one trace record. Seq is assigned by the tracer that writes it.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string // "build", "type:Derived", "member:Value"
	Detail   string
	Elapsed  time.Duration // end events only
	Extra    map[string]string
}

// Format selects how events are written.
type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
)

// ParseFormat converts "auto", "text" or "ndjson" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

func formatFor(path string) Format {
	if strings.HasSuffix(path, ".ndjson") || strings.HasSuffix(path, ".jsonl") {
		return FormatNDJSON
	}
	return FormatText
}

type eventJSON struct {
	Time      string            `json:"time"`
	Seq       uint64            `json:"seq"`
	Kind      string            `json:"kind"`
	Scope     string            `json:"scope"`
	SpanID    uint64            `json:"span_id,omitempty"`
	ParentID  uint64            `json:"parent_id,omitempty"`
	Name      string            `json:"name"`
	Detail    string            `json:"detail,omitempty"`
	ElapsedUS int64             `json:"elapsed_us,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Append writes ev in format f to buf.
func (ev *Event) Append(buf []byte, f Format) []byte {
	if f == FormatNDJSON {
		data, err := json.Marshal(eventJSON{
			Time:      ev.Time.UTC().Format(time.RFC3339Nano),
			Seq:       ev.Seq,
			Kind:      ev.Kind.String(),
			Scope:     ev.Scope.String(),
			SpanID:    ev.SpanID,
			ParentID:  ev.ParentID,
			Name:      ev.Name,
			Detail:    ev.Detail,
			ElapsedUS: ev.Elapsed.Microseconds(),
			Extra:     ev.Extra,
		})
		if err != nil {
			return buf
		}
		return append(append(buf, data...), '\n')
	}

	// [seq] <indent><marker> name (detail) {k=v} elapsed
	buf = fmt.Appendf(buf, "[%6d] ", ev.Seq)
	if ev.Scope > ScopeDriver {
		buf = append(buf, strings.Repeat("  ", int(ev.Scope-ScopeDriver))...)
	}
	switch ev.Kind {
	case KindSpanBegin:
		buf = append(buf, "→ "...)
	case KindSpanEnd:
		buf = append(buf, "← "...)
	default:
		buf = append(buf, "• "...)
	}
	buf = append(buf, ev.Name...)
	if ev.Detail != "" {
		buf = fmt.Appendf(buf, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		buf = append(buf, " {"...)
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = fmt.Appendf(buf, "%s=%s", k, ev.Extra[k])
		}
		buf = append(buf, '}')
	}
	if ev.Kind == KindSpanEnd {
		buf = fmt.Appendf(buf, " %s", ev.Elapsed.Round(time.Microsecond))
	}
	return append(buf, '\n')
}

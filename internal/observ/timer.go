// Package observ records how long each phase of a run took.
package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Phase is one finished step of a run.
type Phase struct {
	Name    string
	Elapsed time.Duration
	Items   int // types, symbols, entries: whatever the phase counts
	Note    string
}

// Timer collects phases in the order they were started. It is safe for
// concurrent use and a nil Timer records nothing.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

func NewTimer() *Timer { return &Timer{} }

// Lap is a running phase.
type Lap struct {
	t     *Timer
	slot  int
	began time.Time
}

// Start opens a phase named name. The phase keeps its place in the
// summary even if a later phase stops first.
func (t *Timer) Start(name string) *Lap {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name})
	return &Lap{t: t, slot: len(t.phases) - 1, began: time.Now()}
}

// Stop records the elapsed time with the number of items handled. Only the
// first Stop counts.
func (l *Lap) Stop(items int, note string) {
	if l == nil || l.t == nil {
		return
	}
	elapsed := time.Since(l.began)
	l.t.mu.Lock()
	l.t.phases[l.slot] = Phase{Name: l.t.phases[l.slot].Name, Elapsed: elapsed, Items: items, Note: note}
	l.t.mu.Unlock()
	l.t = nil
}

// Phases returns a copy of everything recorded so far.
func (t *Timer) Phases() []Phase {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Phase(nil), t.phases...)
}

// PhaseReport is the serialisable form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Items      int     `json:"items,omitempty"`
	Note       string  `json:"note,omitempty"`
}

type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	var r Report
	var total time.Duration
	for _, p := range t.Phases() {
		total += p.Elapsed
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: ms(p.Elapsed), Items: p.Items, Note: p.Note})
	}
	r.TotalMS = ms(total)
	return r
}

// Summary is the --timings block: one row per phase with its share of the
// total.
func (t *Timer) Summary() string {
	phases := t.Phases()
	var total time.Duration
	width := len("total")
	for _, p := range phases {
		total += p.Elapsed
		width = max(width, len(p.Name))
	}
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range phases {
		share := 0.0
		if total > 0 {
			share = 100 * float64(p.Elapsed) / float64(total)
		}
		fmt.Fprintf(&sb, "  %-*s %9.3f ms %5.1f%%", width, p.Name, ms(p.Elapsed), share)
		if p.Items > 0 {
			fmt.Fprintf(&sb, " %7d items", p.Items)
		}
		if p.Note != "" {
			sb.WriteString("  " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-*s %9.3f ms\n", width, "total", ms(total))
	return sb.String()
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

package observ

import (
	"strings"
	"sync"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	load := tm.Start("load")
	build := tm.Start("build")
	build.Stop(0, "")
	load.Stop(3, "universe.yaml")
	load.Stop(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d, want 2", len(r.Phases))
	}
	if p := r.Phases[0]; p.Name != "load" || p.Items != 3 || p.Note != "universe.yaml" {
		t.Fatalf("load phase = %+v", p)
	}
	if r.Phases[1].Name != "build" {
		t.Fatalf("phases out of start order: %+v", r.Phases)
	}
	s := tm.Summary()
	for _, want := range []string{"timings:", "load", "3 items", "universe.yaml", "total", "%"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Start("x").Stop(1, "")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer should report nothing")
	}
	if !strings.HasPrefix(tm.Summary(), "timings:") {
		t.Fatalf("nil summary = %q", tm.Summary())
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Start("tree").Stop(1, "")
		}()
	}
	wg.Wait()
	if n := len(tm.Phases()); n != 8 {
		t.Fatalf("phases = %d, want 8", n)
	}
}

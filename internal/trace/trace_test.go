package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopePhase, true},
		{LevelPhase, ScopeType, false},
		{LevelDetail, ScopeType, true},
		{LevelDetail, ScopeSymbol, false},
		{LevelDebug, ScopeSymbol, true},
	}
	for _, c := range cases {
		if got := c.level.ShouldEmit(c.scope); got != c.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", c.level, c.scope, got, c.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug"} {
		l, err := ParseLevel(s)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
		if l.String() != s {
			t.Errorf("round trip %q -> %q", s, l.String())
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopeType, "type:Derived", 0)
	Point(tr, ScopeSymbol, "member:Value", "filtered at detail")
	span.WithExtra("members", "1").End("done")

	out := buf.String()
	if !strings.Contains(out, "→ type:Derived") {
		t.Errorf("missing begin line: %q", out)
	}
	if !strings.Contains(out, "← type:Derived (done) {members=1} ") {
		t.Errorf("missing end line: %q", out)
	}
	if strings.Contains(out, "member:Value") {
		t.Errorf("symbol point must be filtered at detail level: %q", out)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeSymbol, "member:Value", "Base.Value")

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("invalid ndjson %q: %v", buf.String(), err)
	}
	if ev["name"] != "member:Value" || ev["scope"] != "symbol" || ev["kind"] != "point" {
		t.Errorf("unexpected event %v", ev)
	}
}

func TestContextDefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Errorf("missing tracer must be Nop")
	}
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelPhase, FormatText))
	if FromContext(ctx).Level() != LevelPhase {
		t.Errorf("attached tracer lost")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr != Nop {
		t.Errorf("LevelOff must produce a disabled tracer")
	}
}

func TestSequenceFollowsOutputOrder(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	outer := Begin(tr, ScopePhase, "build", 0)
	inner := Begin(tr, ScopePhase, "render", outer.ID())
	Point(tr, ScopeType, "type:Base", "")
	inner.End("")
	outer.End("")
	if d := outer.End("again"); d != 0 {
		t.Errorf("second End must be inert, got %v", d)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("want 4 events, got %d:\n%s", len(lines), buf.String())
	}
	for i, line := range lines {
		var ev struct {
			Seq      uint64 `json:"seq"`
			ParentID uint64 `json:"parent_id"`
			Name     string `json:"name"`
		}
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if ev.Seq != uint64(i+1) {
			t.Errorf("line %d: seq %d", i, ev.Seq)
		}
		if ev.Name == "render" && ev.ParentID != outer.ID() {
			t.Errorf("render parent = %d, want %d", ev.ParentID, outer.ID())
		}
	}
}

func TestDisabledScopeGivesInertSpan(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	span := Begin(tr, ScopeType, "type:Base", 0)
	if span.ID() != 0 {
		t.Errorf("inert span has id %d", span.ID())
	}
	span.WithExtra("k", "v").End("")
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFormatFromPath(t *testing.T) {
	if formatFor("run.ndjson") != FormatNDJSON || formatFor("run.jsonl") != FormatNDJSON {
		t.Errorf("json lines paths must select NDJSON")
	}
	if formatFor("-") != FormatText {
		t.Errorf("stderr must be text")
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Errorf("expected error for unknown format")
	}
}

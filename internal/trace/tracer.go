package trace

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Tracer receives events. Implementations must be safe for concurrent use;
// the build traces every inheritance tree from its own goroutine.
type Tracer interface {
	Emit(ev *Event)
	Level() Level
	// NewSpanID hands out span ids unique within the tracer.
	NewSpanID() uint64
	Close() error
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)       {}
func (nopTracer) Level() Level      { return LevelOff }
func (nopTracer) NewSpanID() uint64 { return 0 }
func (nopTracer) Close() error      { return nil }

// Nop discards everything.
var Nop Tracer = nopTracer{}

type ctxKey struct{}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithTracer attaches t to ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// Config selects level, format and destination of a tracer.
type Config struct {
	Level      Level
	Format     Format    // FormatAuto picks from OutputPath
	Output     io.Writer // takes precedence over OutputPath
	OutputPath string    // "" or "-" is stderr
}

// New builds a tracer from cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = formatFor(cfg.OutputPath)
	}
	w := cfg.Output
	var closer io.Closer
	if w == nil {
		if cfg.OutputPath == "" || cfg.OutputPath == "-" {
			w = os.Stderr
		} else {
			f, err := os.Create(cfg.OutputPath)
			if err != nil {
				return nil, fmt.Errorf("failed to open trace output: %w", err)
			}
			w, closer = f, f
		}
	}
	t := NewStreamTracer(w, cfg.Level, format)
	t.closer = closer
	return t, nil
}

// StreamTracer writes each event as soon as it arrives. Output order
// matches Seq order.
type StreamTracer struct {
	level  Level
	format Format
	spans  atomic.Uint64

	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	seq    uint64
	buf    []byte
}

// NewStreamTracer writes to w. The caller keeps ownership of w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	return &StreamTracer{w: w, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	ev.Seq = t.seq
	t.buf = ev.Append(t.buf[:0], t.format)
	// trace output never fails the run
	_, _ = t.w.Write(t.buf)
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) NewSpanID() uint64 { return t.spans.Add(1) }

// Close flushes a buffered writer and closes the file New opened.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	if t.closer != nil {
		err := t.closer.Close()
		t.closer = nil
		return err
	}
	return nil
}

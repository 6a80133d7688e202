// Package trace records spans around the phases of a disambiguation run.
//
// A Tracer travels in the context. Code that wants to be traced asks for
// it and opens a span at the granularity it works on:
//
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeType, "type:"+name, 0)
//	defer span.End("")
//
// The tracer's Level decides which scopes are written: phase shows the
// driver phases, detail adds one span per type, and debug adds a point
// per registered symbol. Output is text for humans or NDJSON when the
// trace file ends in .ndjson or .jsonl.
package trace

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"disambig/internal/config"
	"disambig/internal/trace"
)

// setupTracing attaches the configured tracer to ctx and returns the
// cleanup that flushes and closes it.
func setupTracing(ctx context.Context, cmd *cobra.Command, cfg config.TraceConfig) (context.Context, func(), error) {
	level, err := trace.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff {
		return trace.WithTracer(ctx, trace.Nop), func() {}, nil
	}

	tracer, err := trace.New(trace.Config{Level: level, OutputPath: cfg.Output})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cleanup := func() {
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return trace.WithTracer(ctx, tracer), cleanup, nil
}

// Package driver turns a universe into a frozen collision index.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"disambig/internal/collide"
	"disambig/internal/diag"
	"disambig/internal/names"
	"disambig/internal/observ"
	"disambig/internal/trace"
	"disambig/internal/universe"
)

// Options configures Build.
type Options struct {
	// Jobs is the worker count; 0 means GOMAXPROCS and 1 builds sequentially.
	Jobs int
	// Reserved seeds the reserved-word table. Nil means no table at all.
	Reserved      []collide.ReservedWord
	CheckReserved bool
	Policy        collide.SuffixPolicy
	// MaxDiagnostics caps the result bag; 0 means the bag's own limit.
	MaxDiagnostics int
	// Timer receives the phase timings; nil creates a private one.
	Timer *observ.Timer
}

// Result is a finished build.
type Result struct {
	Universe *universe.Universe
	Index    *collide.Index
	Resolver *collide.Resolver
	Bag      *diag.Bag
	Timing   observ.Report
}

// Build registers every symbol of u and returns the frozen index.
// With more than one job the universe is split into independent
// inheritance trees, each built on its own worker; the produced names
// do not depend on the job count.
func Build(ctx context.Context, u *universe.Universe, opts Options) (*Result, error) {
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	tracer := trace.FromContext(ctx)
	bag := diag.NewBag(opts.MaxDiagnostics)
	// the lock also guards the dedup set across build workers
	reporter := diag.NewLockedReporter(diag.NewDedupReporter(diag.BagReporter{Bag: bag}))

	pool := names.NewPool()
	var reserved *collide.Reserved
	if opts.Reserved != nil {
		phase := timer.Start("reserved")
		reserved = collide.NewReserved(pool, opts.Reserved, reporter)
		phase.Stop(reserved.Len(), "")
	}

	idx := collide.New(pool, u, collide.Options{
		Reserved:      reserved,
		CheckReserved: opts.CheckReserved,
		Reporter:      reporter,
	})

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	phase := timer.Start("build")
	span := trace.Begin(tracer, trace.ScopePhase, "build", 0)
	var err error
	if jobs == 1 {
		err = buildSequential(ctx, idx, u)
	} else {
		err = buildParallel(ctx, idx, u, jobs)
	}
	span.WithExtra("jobs", fmt.Sprint(jobs)).End("")
	phase.Stop(len(u.Types), fmt.Sprintf("jobs=%d", jobs))
	if err != nil {
		return nil, err
	}

	bag.Sort()
	return &Result{
		Universe: u,
		Index:    idx,
		Resolver: idx.Resolver(opts.Policy),
		Bag:      bag,
		Timing:   timer.Report(),
	}, nil
}

func buildSequential(ctx context.Context, idx *collide.Index, u *universe.Universe) error {
	ids := make([]universe.ScopeID, len(u.Types))
	for i, t := range u.Types {
		ids[i] = t.ID
	}
	return idx.AddAll(ctx, ids)
}

func buildParallel(ctx context.Context, idx *collide.Index, u *universe.Universe, jobs int) error {
	trees := u.Roots()
	if len(trees) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(trees)))
	for _, tree := range trees {
		g.Go(func() error {
			return idx.AddAll(gctx, tree)
		})
	}
	return g.Wait()
}

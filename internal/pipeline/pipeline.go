// Package pipeline drives files through parse, metadata lookup, path
// planning and the final move, with bounded concurrency and streamed
// per-file results.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vmunix/sortarr/internal/fileops"
	"github.com/vmunix/sortarr/internal/metadata"
	"github.com/vmunix/sortarr/internal/planner"
	"github.com/vmunix/sortarr/pkg/parse"
)

// State is where a file currently sits in its processing sequence.
type State string

const (
	StatePending        State = "pending"
	StateParsing        State = "parsing"
	StateMetadataLookup State = "metadata_lookup"
	StatePathPlanning   State = "path_planning"
	StateMoving         State = "moving"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Result is the terminal outcome for one file. State is StateDone or
// StateFailed; Err names the failing stage for failed files.
type Result struct {
	SourcePath string
	Parsed     *parse.Info
	Metadata   *metadata.Record
	TargetPath string
	State      State
	Err        error
	Duration   time.Duration
}

// Stats aggregates a run.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Lookup resolves a title to metadata with soft-failure semantics.
// *metadata.Resolver satisfies it.
type Lookup interface {
	SearchWithRetry(ctx context.Context, title string, year int, policy metadata.RetryPolicy) *metadata.Record
}

const defaultMaxConcurrent = 4

// Config tunes the pipeline.
type Config struct {
	MaxConcurrent int  // files in flight past parsing, default 4
	DryRun        bool // plan only, skip the move and side effects
	Retry         metadata.RetryPolicy
}

// Pipeline wires the processing stages together. resolver and sidecars
// may be nil; planning then uses parse-only information and no sidecar
// files are written.
type Pipeline struct {
	resolver Lookup
	planner  *planner.Planner
	executor *fileops.Executor
	sidecars *SidecarWriter
	cfg      Config
	log      *slog.Logger

	wg sync.WaitGroup // in-flight sidecar writes
}

// New creates a pipeline.
func New(resolver Lookup, pl *planner.Planner, ex *fileops.Executor, sw *SidecarWriter, cfg Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	return &Pipeline{
		resolver: resolver,
		planner:  pl,
		executor: ex,
		sidecars: sw,
		cfg:      cfg,
		log:      log.With("component", "pipeline"),
	}
}

// Run processes files into root. Each file yields exactly one Result,
// sent on out (when non-nil) in completion order; out is closed before
// Run returns. Cancellation is honored between files: in-flight work
// completes, remaining files are recorded as failed.
func (p *Pipeline) Run(ctx context.Context, files []string, root string, out chan<- Result) Stats {
	start := time.Now()
	stats := Stats{Total: len(files)}

	var mu sync.Mutex
	emit := func(res Result) {
		mu.Lock()
		if res.State == StateDone {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
		mu.Unlock()
		if out != nil {
			out <- res
		}
	}

	sem := semaphore.NewWeighted(int64(p.cfg.MaxConcurrent))
	var g errgroup.Group

	for _, src := range files {
		if err := ctx.Err(); err != nil {
			emit(Result{SourcePath: src, State: StateFailed, Err: err})
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			emit(Result{SourcePath: src, State: StateFailed, Err: err})
			continue
		}

		g.Go(func() error {
			defer sem.Release(1)
			emit(p.processFile(ctx, src, root))
			return nil
		})
	}
	_ = g.Wait()

	p.wg.Wait() // pending sidecar writes
	if out != nil {
		close(out)
	}

	stats.Elapsed = time.Since(start)
	return stats
}

// processFile walks one file through the stage sequence. Metadata lookup
// failure is not terminal; planning continues with parse-only data.
func (p *Pipeline) processFile(ctx context.Context, src, root string) Result {
	start := time.Now()
	res := Result{SourcePath: src, State: StateParsing}

	info := parse.Parse(src)
	res.Parsed = info
	if info.Title == "" {
		return p.fail(res, start, fmt.Errorf("no usable title in %q", src))
	}

	res.State = StateMetadataLookup
	if p.resolver != nil {
		res.Metadata = p.resolver.SearchWithRetry(ctx, info.Title, info.Year, p.cfg.Retry)
		if res.Metadata == nil {
			p.log.Debug("no metadata, organizing from parse only", "path", src, "title", info.Title)
		}
	}

	res.State = StatePathPlanning
	target, err := p.planner.Plan(src, root, res.Metadata, info)
	if err != nil {
		return p.fail(res, start, fmt.Errorf("plan target: %w", err))
	}
	res.TargetPath = target

	if p.cfg.DryRun {
		res.State = StateDone
		res.Duration = time.Since(start)
		return res
	}

	res.State = StateMoving
	if err := p.executor.Move(ctx, src, target); err != nil {
		return p.fail(res, start, fmt.Errorf("move: %w", err))
	}

	if p.sidecars != nil && res.Metadata != nil {
		p.writeSidecars(target, res.Metadata)
	}

	res.State = StateDone
	res.Duration = time.Since(start)
	return res
}

// writeSidecars persists the poster and synopsis next to the moved file in
// the background. Failures never affect the file's result.
func (p *Pipeline) writeSidecars(target string, rec *metadata.Record) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sidecarTimeout)
		defer cancel()
		if err := p.sidecars.Write(ctx, target, rec); err != nil {
			p.log.Warn("sidecar write failed", "target", target, "error", err)
		}
	}()
}

func (p *Pipeline) fail(res Result, start time.Time, err error) Result {
	res.State = StateFailed
	res.Err = err
	res.Duration = time.Since(start)
	p.log.Warn("file failed", "path", res.SourcePath, "error", err)
	return res
}

package metadata

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vmunix/sortarr/internal/tmdb"
)

// RetryPolicy bounds retries of transient provider failures.
type RetryPolicy struct {
	MaxAttempts int           // total attempts per pair
	Backoff     time.Duration // base delay, doubled per attempt
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.Backoff <= 0 {
		p.Backoff = 500 * time.Millisecond
	}
	return p
}

// SearchWithRetry is the soft-failure form of Search: transient provider
// errors are retried with exponential backoff up to the policy bound, then
// treated as no result. Configuration errors and cancellation are never
// retried.
func (r *Resolver) SearchWithRetry(ctx context.Context, title string, year int, policy RetryPolicy) *Record {
	policy = policy.withDefaults()

	for attempt := 1; ; attempt++ {
		rec, err := r.Search(ctx, title, year)
		if err == nil {
			return rec
		}
		if errors.Is(err, tmdb.ErrUnauthorized) || ctx.Err() != nil {
			return nil
		}
		if attempt >= policy.MaxAttempts {
			r.log.Warn("metadata lookup exhausted retries",
				"title", title, "year", year, "attempts", attempt, "error", err)
			return nil
		}

		delay := policy.Backoff << (attempt - 1)
		r.log.Debug("retrying metadata lookup",
			"title", title, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
	}
}

// Request is one title/year pair for batch resolution.
type Request struct {
	Title string
	Year  int
}

// BatchOptions tune ResolveAll.
type BatchOptions struct {
	Concurrency int // max in-flight resolutions, default 4
	Retry       RetryPolicy
}

// ResolveAll resolves many pairs concurrently under a global concurrency
// cap; the resolver's request pacer keeps the provider traffic spaced. A
// pair that exhausts its retries yields nil rather than aborting the
// batch. The result slice is aligned with reqs.
func (r *Resolver) ResolveAll(ctx context.Context, reqs []Request, opts BatchOptions) []*Record {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	results := make([]*Record, len(reqs))
	sem := semaphore.NewWeighted(int64(opts.Concurrency))

	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			results[i] = r.SearchWithRetry(ctx, req.Title, req.Year, opts.Retry)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Package metadata resolves parsed titles against an external metadata
// provider using a progressive-fallback search with result scoring and a
// persistent cache.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/sortarr/internal/cache"
	"github.com/vmunix/sortarr/internal/tmdb"
	"github.com/vmunix/sortarr/pkg/parse"
)

const (
	defaultCacheTTL    = 30 * 24 * time.Hour
	defaultSearchPages = 2
	defaultDetailLimit = 3

	cacheWriteTimeout = 5 * time.Second
)

// Override pins a title directly to a provider id, bypassing search.
type Override struct {
	ID        int
	MediaType string
}

// Config tunes the resolver.
type Config struct {
	CacheTTL    time.Duration
	SearchPages int
	DetailLimit int
	// MinInterval is the minimum spacing between provider requests.
	// Zero disables pacing.
	MinInterval time.Duration
	// Overrides maps cleaned titles (parse.CleanTitle form) to provider ids.
	Overrides map[string]Override
}

// Resolver turns a parsed title/year into a Record. Lookups consult a
// manual override table, then the persistent cache, then the provider via
// progressively simplified title variants. Concurrent lookups for the same
// key share one in-flight resolution.
type Resolver struct {
	provider    Provider
	store       *cache.Store // nil disables persistence
	ttl         time.Duration
	searchPages int
	detailLimit int
	overrides   map[string]Override
	pace        *pacer
	log         *slog.Logger

	mu       sync.Mutex
	inflight map[string]*inflight

	wg sync.WaitGroup // pending async cache writes
}

type inflight struct {
	done chan struct{}
	rec  *Record
	err  error
}

// NewResolver creates a resolver. store may be nil to disable the
// persistent cache.
func NewResolver(provider Provider, store *cache.Store, cfg Config, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.SearchPages <= 0 {
		cfg.SearchPages = defaultSearchPages
	}
	if cfg.DetailLimit <= 0 {
		cfg.DetailLimit = defaultDetailLimit
	}
	return &Resolver{
		provider:    provider,
		store:       store,
		ttl:         cfg.CacheTTL,
		searchPages: cfg.SearchPages,
		detailLimit: cfg.DetailLimit,
		overrides:   cfg.Overrides,
		pace:        &pacer{interval: cfg.MinInterval},
		log:         log.With("component", "metadata"),
		inflight:    make(map[string]*inflight),
	}
}

// Search resolves title/year to a Record. A nil, nil return means no result,
// which is an expected outcome. The returned error is either a context
// error, tmdb.ErrUnauthorized, or a transient provider failure; callers
// that want soft semantics use SearchWithRetry.
func (r *Resolver) Search(ctx context.Context, title string, year int) (*Record, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil
	}

	key := cache.Key(title, year)

	r.mu.Lock()
	if f, ok := r.inflight[key]; ok {
		r.mu.Unlock()
		select {
		case <-f.done:
			return f.rec, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f := &inflight{done: make(chan struct{})}
	r.inflight[key] = f
	r.mu.Unlock()

	f.rec, f.err = r.resolve(ctx, title, year, key)
	close(f.done)

	r.mu.Lock()
	delete(r.inflight, key)
	r.mu.Unlock()

	return f.rec, f.err
}

// Flush waits for pending asynchronous cache writes. Call before shutdown
// so successful resolutions are not lost.
func (r *Resolver) Flush() {
	r.wg.Wait()
}

func (r *Resolver) resolve(ctx context.Context, title string, year int, key string) (*Record, error) {
	// Manual override table wins over everything.
	if ov, ok := r.overrides[parse.CleanTitle(title)]; ok {
		rec, err := r.confirm(ctx, ov.MediaType, ov.ID)
		if err == nil {
			r.storeAsync(key, year, rec)
			return rec, nil
		}
		if errors.Is(err, tmdb.ErrUnauthorized) || ctx.Err() != nil {
			return nil, err
		}
		r.log.Warn("override lookup failed, falling back to search",
			"title", title, "id", ov.ID, "error", err)
	}

	if r.store != nil {
		if data, ok := r.store.Get(ctx, key, r.ttl); ok {
			var rec Record
			if err := json.Unmarshal(data, &rec); err == nil {
				r.log.Debug("cache hit", "key", key, "title", rec.Title)
				return &rec, nil
			}
			r.log.Warn("discarding unreadable cache entry", "key", key)
		}
	}

	var lastErr error
	for _, variant := range titleVariants(title, year) {
		rec, err := r.searchVariant(ctx, variant, year)
		if err != nil {
			if errors.Is(err, tmdb.ErrUnauthorized) || ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		if rec != nil {
			r.log.Debug("resolved", "title", title, "variant", variant,
				"id", rec.ID, "canonical", rec.Title)
			r.storeAsync(key, year, rec)
			return rec, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("provider search: %w", lastErr)
	}

	// Variant list exhausted with no match: a normal outcome.
	r.log.Debug("no result", "title", title, "year", year)
	return nil, nil
}

// searchVariant runs one search attempt: gather candidates, rank them, and
// confirm the top candidates via detail lookup. The detail endpoint is
// authoritative for media-type classification.
func (r *Resolver) searchVariant(ctx context.Context, query string, year int) (*Record, error) {
	candidates, err := r.gather(ctx, query, year)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	for _, cand := range rankCandidates(query, year, candidates, r.detailLimit) {
		rec, err := r.confirm(ctx, cand.MediaType, cand.ID)
		if err != nil {
			if errors.Is(err, tmdb.ErrUnauthorized) || ctx.Err() != nil {
				return nil, err
			}
			r.log.Debug("detail confirmation failed", "id", cand.ID, "error", err)
			continue
		}
		return rec, nil
	}
	return nil, nil
}

// gather collects candidates from the multi search across pages, falling
// back to the type-specific endpoints when multi search is unavailable.
// Every provider request goes through the pacer.
func (r *Resolver) gather(ctx context.Context, query string, year int) ([]tmdb.Candidate, error) {
	var all []tmdb.Candidate
	totalPages := 1

	for page := 1; page <= r.searchPages && page <= totalPages; page++ {
		if err := r.pace.wait(ctx); err != nil {
			return nil, err
		}
		cands, tp, err := r.provider.SearchMulti(ctx, query, page)
		if err != nil {
			if page == 1 {
				return r.gatherTyped(ctx, query, year)
			}
			break
		}
		if tp > 0 {
			totalPages = tp
		}
		if len(cands) == 0 {
			break
		}
		all = append(all, cands...)
	}
	return all, nil
}

func (r *Resolver) gatherTyped(ctx context.Context, query string, year int) ([]tmdb.Candidate, error) {
	if err := r.pace.wait(ctx); err != nil {
		return nil, err
	}
	tv, _, errTV := r.provider.SearchTV(ctx, query, year, 1)
	if err := r.pace.wait(ctx); err != nil {
		return nil, err
	}
	movies, _, errMovie := r.provider.SearchMovie(ctx, query, year, 1)
	if errTV != nil && errMovie != nil {
		return nil, errTV
	}
	return append(tv, movies...), nil
}

func (r *Resolver) confirm(ctx context.Context, mediaType string, id int) (*Record, error) {
	if err := r.pace.wait(ctx); err != nil {
		return nil, err
	}
	var d *tmdb.Details
	var err error
	switch mediaType {
	case tmdb.MediaMovie:
		d, err = r.provider.MovieDetails(ctx, id)
	default:
		d, err = r.provider.TVDetails(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return recordFromDetails(d), nil
}

// pacer enforces a minimum interval between provider request starts
// across goroutines. A zero interval is a no-op.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func (p *pacer) wait(ctx context.Context) error {
	if p.interval <= 0 {
		return nil
	}

	p.mu.Lock()
	now := time.Now()
	at := p.next
	if at.Before(now) {
		at = now
	}
	p.next = at.Add(p.interval)
	p.mu.Unlock()

	d := time.Until(at)
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// storeAsync persists a resolution in the background. Cache write failures
// are logged and never affect the search result.
func (r *Resolver) storeAsync(key string, year int, rec *Record) {
	if r.store == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		r.log.Warn("marshal record for cache", "key", key, "error", err)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()
		if err := r.store.Set(ctx, key, year, data); err != nil {
			r.log.Warn("cache write failed", "key", key, "error", err)
		}
	}()
}

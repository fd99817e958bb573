package metadata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/sortarr/internal/metadata/mocks"
	"github.com/vmunix/sortarr/internal/tmdb"
)

func TestSearchWithRetry_RecoversFromTransientFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	transient := errors.New("connection reset")
	gomock.InOrder(
		// First attempt: multi search and both typed fallbacks fail.
		provider.EXPECT().SearchMulti(gomock.Any(), "Frieren", 1).Return(nil, 0, transient),
		provider.EXPECT().SearchTV(gomock.Any(), "Frieren", 2023, 1).Return(nil, 0, transient),
		provider.EXPECT().SearchMovie(gomock.Any(), "Frieren", 2023, 1).Return(nil, 0, transient),
		// Second attempt succeeds.
		provider.EXPECT().SearchMulti(gomock.Any(), "Frieren", 1).Return([]tmdb.Candidate{
			{ID: 209867, Title: "Frieren: Beyond Journey's End", MediaType: tmdb.MediaTV, Date: "2023-09-29"},
		}, 1, nil),
		provider.EXPECT().TVDetails(gomock.Any(), 209867).Return(frierenDetails, nil),
	)

	r := NewResolver(provider, nil, Config{}, testLogger())
	rec := r.SearchWithRetry(context.Background(), "Frieren", 2023,
		RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond})

	require.NotNil(t, rec)
	assert.Equal(t, 209867, rec.ID)
}

func TestSearchWithRetry_ExhaustsAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	transient := errors.New("connection reset")
	provider.EXPECT().SearchMulti(gomock.Any(), "Frieren", 1).Return(nil, 0, transient).Times(2)
	provider.EXPECT().SearchTV(gomock.Any(), "Frieren", 0, 1).Return(nil, 0, transient).Times(2)
	provider.EXPECT().SearchMovie(gomock.Any(), "Frieren", 0, 1).Return(nil, 0, transient).Times(2)

	r := NewResolver(provider, nil, Config{}, testLogger())
	rec := r.SearchWithRetry(context.Background(), "Frieren", 0,
		RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond})

	assert.Nil(t, rec, "exhausted retries degrade to no result")
}

func TestSearchWithRetry_NoRetryOnUnauthorized(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	provider.EXPECT().SearchMulti(gomock.Any(), "Frieren", 1).Return(nil, 0, tmdb.ErrUnauthorized).Times(1)
	provider.EXPECT().SearchTV(gomock.Any(), "Frieren", 0, 1).Return(nil, 0, tmdb.ErrUnauthorized).Times(1)
	provider.EXPECT().SearchMovie(gomock.Any(), "Frieren", 0, 1).Return(nil, 0, tmdb.ErrUnauthorized).Times(1)

	r := NewResolver(provider, nil, Config{}, testLogger())
	rec := r.SearchWithRetry(context.Background(), "Frieren", 0,
		RetryPolicy{MaxAttempts: 5, Backoff: time.Millisecond})

	assert.Nil(t, rec)
}

func TestResolveAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	ids := map[string]int{"Frieren": 1, "Overlord": 2, "Totoro": 3}

	provider.EXPECT().
		SearchMulti(gomock.Any(), gomock.Any(), 1).
		DoAndReturn(func(_ context.Context, query string, _ int) ([]tmdb.Candidate, int, error) {
			id, ok := ids[query]
			if !ok {
				return nil, 1, nil
			}
			return []tmdb.Candidate{
				{ID: id, Title: query, MediaType: tmdb.MediaTV, Date: "2020-01-01"},
			}, 1, nil
		}).
		Times(3)
	provider.EXPECT().
		TVDetails(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id int) (*tmdb.Details, error) {
			return &tmdb.Details{ID: id, Title: "Show", MediaType: tmdb.MediaTV, Date: "2020-01-01"}, nil
		}).
		Times(3)

	r := NewResolver(provider, nil, Config{}, testLogger())
	reqs := []Request{
		{Title: "Frieren"},
		{Title: "Overlord"},
		{Title: "Totoro"},
	}
	results := r.ResolveAll(context.Background(), reqs, BatchOptions{Concurrency: 2})

	require.Len(t, results, 3)
	for i, req := range reqs {
		require.NotNil(t, results[i], "request %d", i)
		assert.Equal(t, ids[req.Title], results[i].ID, "results align with requests")
	}
}

func TestResolveAll_FailedPairDoesNotAbortBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	transient := errors.New("connection reset")
	provider.EXPECT().
		SearchMulti(gomock.Any(), gomock.Any(), 1).
		DoAndReturn(func(_ context.Context, query string, _ int) ([]tmdb.Candidate, int, error) {
			if query == "Broken" {
				return nil, 0, transient
			}
			return []tmdb.Candidate{
				{ID: 7, Title: query, MediaType: tmdb.MediaTV, Date: "2020-01-01"},
			}, 1, nil
		}).
		AnyTimes()
	provider.EXPECT().
		SearchTV(gomock.Any(), "Broken", 0, 1).
		Return(nil, 0, transient).
		AnyTimes()
	provider.EXPECT().
		SearchMovie(gomock.Any(), "Broken", 0, 1).
		Return(nil, 0, transient).
		AnyTimes()
	provider.EXPECT().
		TVDetails(gomock.Any(), 7).
		Return(&tmdb.Details{ID: 7, Title: "Fine", MediaType: tmdb.MediaTV, Date: "2020-01-01"}, nil).
		AnyTimes()

	r := NewResolver(provider, nil, Config{}, testLogger())
	results := r.ResolveAll(context.Background(),
		[]Request{{Title: "Broken"}, {Title: "Fine"}},
		BatchOptions{Retry: RetryPolicy{MaxAttempts: 2, Backoff: time.Millisecond}})

	require.Len(t, results, 2)
	assert.Nil(t, results[0])
	require.NotNil(t, results[1])
	assert.Equal(t, 7, results[1].ID)
}

func TestPacer_SpacesStarts(t *testing.T) {
	p := &pacer{interval: 20 * time.Millisecond}
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestPacer_CancelledContext(t *testing.T) {
	p := &pacer{interval: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, p.wait(ctx), "first start is immediate")
	cancel()
	assert.ErrorIs(t, p.wait(ctx), context.Canceled)
}

func TestSearch_PacesProviderRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	// Single-word titles produce exactly one variant, so each Search is
	// one multi-search request.
	provider.EXPECT().SearchMulti(gomock.Any(), "Frieren", 1).Return(nil, 1, nil)
	provider.EXPECT().SearchMulti(gomock.Any(), "Overlord", 1).Return(nil, 1, nil)

	r := NewResolver(provider, nil, Config{MinInterval: 30 * time.Millisecond}, testLogger())

	start := time.Now()
	_, err := r.Search(context.Background(), "Frieren", 0)
	require.NoError(t, err)
	_, err = r.Search(context.Background(), "Overlord", 0)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond,
		"second provider request waits out the minimum interval")
}

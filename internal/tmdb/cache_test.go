package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	c := newCache(time.Hour)

	key := cacheKey(MediaTV, 12345)

	// Miss
	_, ok := c.get(key)
	assert.False(t, ok, "empty cache should miss")

	// Set and hit
	c.set(key, &Details{ID: 12345, Title: "Test Show", MediaType: MediaTV})

	got, ok := c.get(key)
	require.True(t, ok, "should hit after set")
	assert.Equal(t, "Test Show", got.Title)

	// Different key should miss
	_, ok = c.get(cacheKey(MediaMovie, 12345))
	assert.False(t, ok, "same id under another media type should miss")
}

func TestCache_Expiry(t *testing.T) {
	c := newCache(-time.Second)

	key := cacheKey(MediaMovie, 1)
	c.set(key, &Details{ID: 1})

	_, ok := c.get(key)
	assert.False(t, ok, "expired entry should miss")
}

func TestClient_TVDetails_Cached(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		_ = json.NewEncoder(w).Encode(tvDetailsResponse{ID: 1396, Name: "Breaking Bad"})
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL), WithCacheTTL(time.Hour))

	// First call hits the API
	_, err := client.TVDetails(context.Background(), 1396)
	require.NoError(t, err)
	assert.Equal(t, 1, callCount)

	// Second call uses the cache
	_, err = client.TVDetails(context.Background(), 1396)
	require.NoError(t, err)
	assert.Equal(t, 1, callCount, "should use cache, not call API again")
}

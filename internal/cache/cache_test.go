package cache

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/sortarr/internal/migrations"

	_ "modernc.org/sqlite"
)

// setupTestStore creates an in-memory store plus the raw handle for tests
// that need to manipulate timestamps directly.
func setupTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return NewStore(db), db
}

func TestKey(t *testing.T) {
	tests := []struct {
		title string
		year  int
		want  string
	}{
		{"Breaking Bad", 2008, "breaking_bad_2008"},
		{"Breaking Bad", 0, "breaking_bad_any"},
		{"Spider-Man: No Way Home", 2021, "spiderman_no_way_home_2021"},
		{"  Spaced   Out  ", 0, "spaced_out_any"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(tt.title, tt.year))
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	key := Key("Test Show", 2020)
	payload := []byte(`{"id": 123, "title": "Test Show"}`)

	require.NoError(t, store.Set(ctx, key, 2020, payload))

	got, ok := store.Get(ctx, key, time.Hour)
	assert.True(t, ok, "expected cache hit")
	assert.Equal(t, payload, got)
}

func TestStore_Get_Miss(t *testing.T) {
	store, _ := setupTestStore(t)

	got, ok := store.Get(context.Background(), "nonexistent_any", time.Hour)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_Get_ZeroMaxAgeAlwaysMisses(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	key := Key("Test Show", 2020)
	require.NoError(t, store.Set(ctx, key, 2020, []byte("payload")))

	_, ok := store.Get(ctx, key, 0)
	assert.False(t, ok, "zero max age must always miss")
}

func TestStore_Set_Upsert(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	key := Key("Test Show", 2020)
	require.NoError(t, store.Set(ctx, key, 2020, []byte("first")))
	require.NoError(t, store.Set(ctx, key, 2020, []byte("second")))

	got, ok := store.Get(ctx, key, time.Hour)
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got)

	st, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Entries)
}

func TestStore_Cleanup_TTL(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "old_any", 0, []byte("old")))
	require.NoError(t, store.Set(ctx, "new_any", 0, []byte("new")))

	// Backdate one entry past the TTL.
	_, err := db.Exec("UPDATE media_cache SET updated_at = ? WHERE title_key = ?",
		time.Now().UTC().Add(-48*time.Hour), "old_any")
	require.NoError(t, err)

	removed, err := store.Cleanup(ctx, 24*time.Hour, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok := store.Get(ctx, "old_any", time.Hour)
	assert.False(t, ok)
	_, ok = store.Get(ctx, "new_any", time.Hour)
	assert.True(t, ok)
}

func TestStore_Cleanup_Capacity(t *testing.T) {
	store, db := setupTestStore(t)
	ctx := context.Background()

	const maxItems = 5
	const total = maxItems + 3

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < total; i++ {
		key := fmt.Sprintf("entry_%02d_any", i)
		require.NoError(t, store.Set(ctx, key, 0, []byte("payload")))
		// Give each entry a distinct, increasing timestamp.
		_, err := db.Exec("UPDATE media_cache SET updated_at = ? WHERE title_key = ?",
			base.Add(time.Duration(i)*time.Minute), key)
		require.NoError(t, err)
	}

	removed, err := store.Cleanup(ctx, 24*time.Hour, maxItems)
	require.NoError(t, err)
	assert.Equal(t, int64(total-maxItems), removed)

	st, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, maxItems, st.Entries)

	// The survivors must be the most recently inserted entries.
	for i := total - maxItems; i < total; i++ {
		_, ok := store.Get(ctx, fmt.Sprintf("entry_%02d_any", i), 24*time.Hour)
		assert.True(t, ok, "entry %d should survive", i)
	}
	for i := 0; i < total-maxItems; i++ {
		_, ok := store.Get(ctx, fmt.Sprintf("entry_%02d_any", i), 24*time.Hour)
		assert.False(t, ok, "entry %d should be evicted", i)
	}
}

func TestStore_Clear(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a_any", 0, []byte("a")))
	require.NoError(t, store.Set(ctx, "b_any", 0, []byte("b")))

	removed, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	st, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Entries)
}

func TestStore_GetStats(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	st, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Entries)

	require.NoError(t, store.Set(ctx, "a_any", 0, []byte("a")))

	st, err = store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Entries)
	assert.False(t, st.Newest.IsZero())
}

func TestOpen_CreatesSchema(t *testing.T) {
	path := t.TempDir() + "/cache.db"

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, Key("Persisted", 2020), 2020, []byte("x")))

	_, ok := store.Get(ctx, Key("Persisted", 2020), time.Hour)
	assert.True(t, ok)
}

package fileops

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testExecutor(cfg Config) *Executor {
	if cfg.Backoff == 0 {
		cfg.Backoff = time.Millisecond
	}
	return NewExecutor(cfg, testLogger())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "downloads", "movie.mkv")
	dst := filepath.Join(dir, "media", "Akira (1988)", "Akira (1988).mkv")
	writeFile(t, src, "video data")

	e := testExecutor(Config{})
	require.NoError(t, e.Move(context.Background(), src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "video data", string(data))

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source should be gone after move")
}

func TestMove_TargetExistsIsTerminal(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "movie.mkv")
	dst := filepath.Join(dir, "existing.mkv")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	e := testExecutor(Config{MaxAttempts: 3})
	op := &FileOperation{Source: src, Target: dst, Kind: KindMove}
	err := e.Execute(context.Background(), op)

	assert.ErrorIs(t, err, ErrTargetExists)
	assert.Equal(t, 1, op.Attempt, "existing target must not be retried")

	data, _ := os.ReadFile(dst)
	assert.Equal(t, "old", string(data), "existing target untouched")
	_, statErr := os.Stat(src)
	assert.NoError(t, statErr, "source untouched")
}

func TestMove_OverwriteReplaces(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "movie.mkv")
	dst := filepath.Join(dir, "existing.mkv")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	e := testExecutor(Config{Overwrite: true})
	require.NoError(t, e.Move(context.Background(), src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestMove_MissingSourceExhaustsRetries(t *testing.T) {
	dir := t.TempDir()
	e := testExecutor(Config{MaxAttempts: 3})

	op := &FileOperation{
		Source: filepath.Join(dir, "nope.mkv"),
		Target: filepath.Join(dir, "out.mkv"),
		Kind:   KindMove,
	}
	err := e.Execute(context.Background(), op)

	require.Error(t, err)
	assert.Equal(t, 3, op.Attempt, "transient errors retry up to the bound")
}

func TestMove_InsufficientSpace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "movie.mkv")
	writeFile(t, src, "video data")

	e := testExecutor(Config{MaxAttempts: 1})
	e.freeSpace = func(string) (uint64, error) { return 1, nil }

	err := e.Move(context.Background(), src, filepath.Join(dir, "out", "movie.mkv"))
	assert.ErrorIs(t, err, ErrInsufficientSpace)
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "movie.mkv")
	dst := filepath.Join(dir, "backup", "movie.mkv")
	writeFile(t, src, "video data")

	e := testExecutor(Config{})
	require.NoError(t, e.Copy(context.Background(), src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "video data", string(data))

	_, err = os.Stat(src)
	assert.NoError(t, err, "copy keeps the source")
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "movie.mkv")
	writeFile(t, path, "x")

	e := testExecutor(Config{})
	require.NoError(t, e.Delete(context.Background(), path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, e.Delete(context.Background(), path), "deleting a missing file is fine")
}

func TestExecute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := testExecutor(Config{})
	err := e.Move(ctx, "/nope", "/nowhere")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()

	var ops []*FileOperation
	for _, name := range []string{"a.mkv", "b.mkv", "c.mkv"} {
		src := filepath.Join(dir, "in", name)
		writeFile(t, src, name)
		ops = append(ops, &FileOperation{
			Source: src,
			Target: filepath.Join(dir, "out", name),
			Kind:   KindMove,
		})
	}
	// One doomed operation: missing source.
	ops = append(ops, &FileOperation{
		Source: filepath.Join(dir, "in", "missing.mkv"),
		Target: filepath.Join(dir, "out", "missing.mkv"),
		Kind:   KindMove,
	})

	e := testExecutor(Config{MaxAttempts: 1})

	var mu sync.Mutex
	var calls int
	var last Progress
	failed := e.RunBatch(context.Background(), ops, 2, func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		last = p
	})

	assert.Equal(t, 1, failed)
	assert.Equal(t, 4, calls, "progress fires once per operation")
	assert.Equal(t, 4, last.Total)

	for _, op := range ops[:3] {
		assert.NoError(t, op.Err)
		assert.FileExists(t, op.Target)
	}
	assert.Error(t, ops[3].Err)
}

func TestRunBatch_CancelledCountsEveryOperation(t *testing.T) {
	dir := t.TempDir()

	var ops []*FileOperation
	for _, name := range []string{"a.mkv", "b.mkv", "c.mkv"} {
		ops = append(ops, &FileOperation{
			Source: filepath.Join(dir, name),
			Target: filepath.Join(dir, "out", name),
			Kind:   KindMove,
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := testExecutor(Config{MaxAttempts: 1})

	var mu sync.Mutex
	var calls int
	var last Progress
	failed := e.RunBatch(ctx, ops, 1, func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		last = p
	})

	assert.Equal(t, len(ops), failed)
	assert.Equal(t, len(ops), calls, "progress fires for skipped operations too")
	assert.Equal(t, len(ops), last.Completed, "final tally adds up to the total")
	assert.Equal(t, len(ops), last.Failed)
	for _, op := range ops {
		assert.Error(t, op.Err)
	}
}

func TestFindVideos(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "show", "ep01.mkv"), "x")
	writeFile(t, filepath.Join(dir, "show", "ep02.mp4"), "x")
	writeFile(t, filepath.Join(dir, "show", "ep01.sample.mkv"), "x")
	writeFile(t, filepath.Join(dir, "show", "info.nfo"), "x")

	videos, err := FindVideos(dir)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "show", "ep01.mkv"),
		filepath.Join(dir, "show", "ep02.mp4"),
	}, videos)
}

func TestIsVideoFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"movie.mkv", true},
		{"movie.MKV", true},
		{"movie.mp4", true},
		{"movie.avi", true},
		{"movie.txt", false},
		{"movie.nfo", false},
		{"movie.srt", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsVideoFile(tt.path), "IsVideoFile(%q)", tt.path)
	}
}

// Package fileops executes filesystem operations for organized media:
// moves, copies and deletes with retry, disk-space pre-checks and bounded
// batch concurrency.
package fileops

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrTargetExists indicates the target file already exists and
	// overwrite is disabled. Never retried.
	ErrTargetExists = errors.New("target file already exists")

	// ErrInsufficientSpace indicates the target volume lacks room for the
	// source file plus the safety buffer.
	ErrInsufficientSpace = errors.New("insufficient disk space")
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond

	// spaceBuffer is the safety margin required beyond the source size.
	spaceBuffer = 64 << 20 // 64 MiB
)

// Config tunes the executor.
type Config struct {
	MaxAttempts int           // attempts per operation, default 3
	Backoff     time.Duration // base retry delay, doubled per attempt
	Overwrite   bool          // replace existing targets
}

// Executor performs file operations with retries.
type Executor struct {
	maxAttempts int
	backoff     time.Duration
	overwrite   bool
	log         *slog.Logger

	freeSpace func(path string) (uint64, error)
}

// NewExecutor creates an executor with defaults applied.
func NewExecutor(cfg Config, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	return &Executor{
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		overwrite:   cfg.Overwrite,
		log:         log.With("component", "fileops"),
		freeSpace:   freeSpace,
	}
}

// Move relocates src to dst. Same-device moves use an atomic rename;
// cross-device moves degrade to copy-then-delete. Parent directories are
// created as needed.
func (e *Executor) Move(ctx context.Context, src, dst string) error {
	return e.Execute(ctx, &FileOperation{Source: src, Target: dst, Kind: KindMove})
}

// Copy duplicates src at dst, creating parent directories as needed.
func (e *Executor) Copy(ctx context.Context, src, dst string) error {
	return e.Execute(ctx, &FileOperation{Source: src, Target: dst, Kind: KindCopy})
}

// Delete removes path. Deleting a missing file is not an error.
func (e *Executor) Delete(ctx context.Context, path string) error {
	return e.Execute(ctx, &FileOperation{Source: path, Kind: KindDelete})
}

// Execute runs a single operation, updating its attempt counter as
// retries happen.
func (e *Executor) Execute(ctx context.Context, op *FileOperation) error {
	var fn func() error
	switch op.Kind {
	case KindMove:
		fn = func() error { return e.move(op.Source, op.Target) }
	case KindCopy:
		fn = func() error {
			if err := e.prepareTarget(op.Source, op.Target); err != nil {
				return err
			}
			_, err := copyFile(op.Source, op.Target)
			return err
		}
	case KindDelete:
		fn = func() error {
			err := os.Remove(op.Source)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		}
	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
	return e.withRetry(ctx, op, fn)
}

func (e *Executor) move(src, dst string) error {
	if err := e.prepareTarget(src, dst); err != nil {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}

	// Different filesystem: copy, then remove the source.
	if _, err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		e.log.Warn("source left behind after cross-device move", "path", src, "error", err)
	}
	return nil
}

// prepareTarget enforces the overwrite policy, checks free space and
// creates the target's parent directory.
func (e *Executor) prepareTarget(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		if !e.overwrite {
			return ErrTargetExists
		}
	}

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	free, err := e.freeSpace(filepath.Dir(dst))
	if err != nil {
		// Space probe failure is not a reason to refuse the operation.
		e.log.Debug("free-space probe failed", "path", dst, "error", err)
		return nil
	}
	if free > 0 && free < uint64(info.Size())+spaceBuffer {
		return fmt.Errorf("%w: need %d bytes, %d free", ErrInsufficientSpace, info.Size()+spaceBuffer, free)
	}
	return nil
}

// withRetry runs fn up to maxAttempts times with exponential backoff.
// An existing-target conflict is terminal immediately.
func (e *Executor) withRetry(ctx context.Context, op *FileOperation, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		op.Attempt = attempt

		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrTargetExists) {
			return err
		}
		lastErr = err

		if attempt < e.maxAttempts {
			delay := e.backoff << (attempt - 1)
			e.log.Debug("retrying operation",
				"kind", op.Kind, "src", op.Source, "dst", op.Target,
				"attempt", attempt, "delay", delay, "error", err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("%s %s after %d attempts: %w", op.Kind, op.Source, e.maxAttempts, lastErr)
}

package fileops

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Kind identifies a file operation.
type Kind string

const (
	KindMove   Kind = "move"
	KindCopy   Kind = "copy"
	KindDelete Kind = "delete"
)

// FileOperation is one unit of filesystem work. The executor updates
// Attempt as retries happen; Err holds the terminal failure, if any.
type FileOperation struct {
	Source  string
	Target  string
	Kind    Kind
	Attempt int
	Err     error
}

// Progress is the running tally reported after each completed operation.
type Progress struct {
	Completed int
	Failed    int
	Total     int
}

// RunBatch executes ops under a bounded concurrency limit. onProgress, if
// non-nil, fires after every operation with running counts. A failed
// operation records its error on the op and never aborts the batch.
// Returns the number of failures.
func (e *Executor) RunBatch(ctx context.Context, ops []*FileOperation, limit int, onProgress func(Progress)) int {
	if limit <= 0 {
		limit = 1
	}
	sem := semaphore.NewWeighted(int64(limit))

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		done Progress
	)
	done.Total = len(ops)

	for _, op := range ops {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Cancelled: the remaining operations still complete, as
			// failures, so the final tally adds up to Total.
			mu.Lock()
			op.Err = err
			done.Completed++
			done.Failed++
			snapshot := done
			mu.Unlock()
			if onProgress != nil {
				onProgress(snapshot)
			}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			err := e.Execute(ctx, op)

			mu.Lock()
			op.Err = err
			done.Completed++
			if err != nil {
				done.Failed++
			}
			snapshot := done
			mu.Unlock()

			if onProgress != nil {
				onProgress(snapshot)
			}
		}()
	}
	wg.Wait()

	return done.Failed
}

// Package util holds small concurrency helpers shared by the dispatch core.
package util

import (
	"context"
	"errors"
	"sync"
)

// FanOut runs fn for every index in [0, n) across at most workerLimit
// goroutines and waits for the whole group to finish. Every task gets a
// chance to run even when a sibling fails; all failures are surfaced
// together via errors.Join once the group has quiesced.
func FanOut(ctx context.Context, n, workerLimit int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return nil
	}
	if workerLimit <= 0 || workerLimit > n {
		workerLimit = n
	}

	tasks := make(chan int)
	errCh := make(chan error, n)

	wg := sync.WaitGroup{}
	for w := 0; w < workerLimit; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				if err := fn(ctx, i); err != nil {
					errCh <- err
				}
			}
		}()
	}

	for i := 0; i < n; i++ {
		tasks <- i
	}
	close(tasks)
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

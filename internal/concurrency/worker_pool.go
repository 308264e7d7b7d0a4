package concurrency

import (
	"context"
	"sync"
)

// TaskFn processes the task with the given index.
type TaskFn func(ctx context.Context, index int)

// ForEach fans tasks 0..tasks-1 out over a fixed number of workers and
// waits for all of them. Stops handing out work once ctx is done; tasks
// already picked up run to completion.
func ForEach(ctx context.Context, workers, tasks int, fn TaskFn) {
	if tasks <= 0 {
		return
	}
	if workers > tasks {
		workers = tasks
	}
	if workers < 1 {
		workers = 1
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range idx {
				fn(ctx, n)
			}
		}()
	}

	for n := 0; n < tasks; n++ {
		select {
		case idx <- n:
		case <-ctx.Done():
			close(idx)
			wg.Wait()
			return
		}
	}
	close(idx)
	wg.Wait()
}

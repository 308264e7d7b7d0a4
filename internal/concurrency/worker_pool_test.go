package concurrency

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForEachRunsEveryTaskOnce(t *testing.T) {
	seen := make([]int32, 100)
	ForEach(context.Background(), 4, len(seen), func(_ context.Context, i int) {
		atomic.AddInt32(&seen[i], 1)
	})

	for i, n := range seen {
		assert.EqualValues(t, 1, n, "task %d", i)
	}
}

func TestForEachZeroTasks(t *testing.T) {
	called := false
	ForEach(context.Background(), 4, 0, func(context.Context, int) { called = true })
	assert.False(t, called)
}

func TestForEachMoreWorkersThanTasks(t *testing.T) {
	var count int32
	ForEach(context.Background(), 16, 3, func(context.Context, int) {
		atomic.AddInt32(&count, 1)
	})
	assert.EqualValues(t, 3, count)
}

func TestForEachStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var count int32
	ForEach(ctx, 1, 1000, func(ctx context.Context, i int) {
		if i == 0 {
			cancel()
		}
		atomic.AddInt32(&count, 1)
	})

	assert.Less(t, atomic.LoadInt32(&count), int32(1000))
}

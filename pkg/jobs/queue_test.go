package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesPayloads(t *testing.T) {
	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 3)

	q := NewQueue[string]("test", func(ctx context.Context, payload string) error {
		mu.Lock()
		got = append(got, payload)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, Config{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))
	require.NoError(t, q.Enqueue("c"))

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b", "c"}, got)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue[int]("test", func(ctx context.Context, payload int) error { return nil }, Config{})

	err := q.Enqueue(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}

func TestQueueEnqueueWhenFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue[int]("test", func(ctx context.Context, payload int) error {
		<-block
		return nil
	}, Config{Workers: 1, BufferSize: 1})

	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	// Saturate the single worker and the buffer; eventually Enqueue must
	// refuse rather than block.
	var sawFull bool
	for i := 0; i < 10; i++ {
		if err := q.Enqueue(i); err != nil {
			sawFull = true
			break
		}
	}
	assert.True(t, sawFull)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts atomic.Int32
	done := make(chan struct{})

	q := NewQueue[string]("test", func(ctx context.Context, payload string) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, Config{Workers: 1, MaxRetries: 5, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("job"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried to success")
	}
	assert.Equal(t, int32(3), attempts.Load())
}

func TestQueueDropsAfterMaxRetries(t *testing.T) {
	var attempts atomic.Int32

	q := NewQueue[string]("test", func(ctx context.Context, payload string) error {
		attempts.Add(1)
		return errors.New("permanent")
	}, Config{Workers: 1, MaxRetries: 2, RetryDelay: 5 * time.Millisecond})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue("job"))

	// First attempt plus two retries.
	assert.Eventually(t, func() bool {
		return attempts.Load() == 3
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), attempts.Load())
	q.Stop()
}

func TestQueueStopWaitsForWorkers(t *testing.T) {
	started := make(chan struct{})
	q := NewQueue[int]("test", func(ctx context.Context, payload int) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}, Config{Workers: 1, MaxRetries: 0})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(1))
	<-started

	doneStop := make(chan struct{})
	go func() {
		q.Stop()
		close(doneStop)
	}()

	select {
	case <-doneStop:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	// A stopped queue refuses new work.
	assert.Error(t, q.Enqueue(2))
}

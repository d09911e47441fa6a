package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 2)
	q := NewQueue("compile", func(_ context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "a"}))
	require.NoError(t, q.Enqueue(Job{ID: "b"}))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-done:
			seen[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed")
		}
	}
	require.Equal(t, map[string]bool{"a": true, "b": true}, seen)
}

func TestQueueRetriesTransientFailures(t *testing.T) {
	var attempts int32
	succeeded := make(chan int, 1)
	q := NewQueue("compile", func(_ context.Context, job Job) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return errors.New("disk busy")
		}
		succeeded <- job.Attempt
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 5 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))
	select {
	case attempt := <-succeeded:
		require.Equal(t, 2, attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("job never succeeded")
	}
}

func TestQueueDropsPermanentFailures(t *testing.T) {
	var attempts int32
	q := NewQueue("compile", func(context.Context, Job) error {
		atomic.AddInt32(&attempts, 1)
		return Permanent(errors.New("corrupt pdf"))
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))
	time.Sleep(50 * time.Millisecond)
	q.Stop()
	require.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestQueueRecoversHandlerPanic(t *testing.T) {
	var attempts int32
	q := NewQueue("compile", func(context.Context, Job) error {
		atomic.AddInt32(&attempts, 1)
		panic("gofpdi: bad xref")
	}, QueueConfig{RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))
	time.Sleep(50 * time.Millisecond)
	q.Stop()
	require.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestQueueEnqueueBeforeStartAndAfterStop(t *testing.T) {
	q := NewQueue("compile", func(context.Context, Job) error { return nil }, QueueConfig{})
	require.ErrorIs(t, q.Enqueue(Job{ID: "x"}), ErrNotStarted)

	q.Start(context.Background())
	q.Stop()
	require.ErrorIs(t, q.Enqueue(Job{ID: "y"}), ErrNotStarted)
}

func TestQueueRejectsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := NewQueue("compile", func(context.Context, Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(release)

	require.NoError(t, q.Enqueue(Job{ID: "running"}))
	<-started
	require.NoError(t, q.Enqueue(Job{ID: "waiting"}))
	require.ErrorIs(t, q.Enqueue(Job{ID: "rejected"}), ErrQueueFull)

	stats := q.Stats()
	require.Equal(t, 1, stats.Depth)
	require.Equal(t, 1, stats.InFlight)
}

func TestQueueStatsCountOutcomes(t *testing.T) {
	q := NewQueue("compile", func(_ context.Context, job Job) error {
		if job.ID == "bad" {
			return Permanent(errors.New("corrupt pdf"))
		}
		return nil
	}, QueueConfig{})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "good"}))
	require.NoError(t, q.Enqueue(Job{ID: "bad"}))
	require.Eventually(t, func() bool {
		stats := q.Stats()
		return stats.Succeeded == 1 && stats.Dropped == 1
	}, 2*time.Second, 5*time.Millisecond)
	q.Stop()
	require.Zero(t, q.Stats().InFlight)
}

func TestPermanent(t *testing.T) {
	base := errors.New("boom")
	err := Permanent(base)
	require.True(t, IsPermanent(err))
	require.True(t, errors.Is(err, base))
	require.False(t, IsPermanent(base))
	require.Nil(t, Permanent(nil))
}

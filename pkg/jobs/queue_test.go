package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDispatchesByType(t *testing.T) {
	q := NewQueue("test", QueueConfig{Workers: 2})
	got := make(chan string, 1)
	q.Register("greet", func(ctx context.Context, job Job) error {
		got <- job.Payload.(string)
		return nil
	})
	q.Start(context.Background())
	defer q.Stop()

	id, err := q.Enqueue("greet", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case payload := <-got:
		assert.Equal(t, "hello", payload)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	q := NewQueue("retry", QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 10 * time.Millisecond})
	var calls int32
	done := make(chan struct{})
	q.Register("flaky", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue("flaky", nil)
	require.NoError(t, err)

	select {
	case <-done:
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
}

func TestQueueRejectsWhenNotStartedOrUnknownType(t *testing.T) {
	q := NewQueue("idle", QueueConfig{})
	q.Register("known", func(ctx context.Context, job Job) error { return nil })

	_, err := q.Enqueue("known", nil)
	require.Error(t, err)

	q.Start(context.Background())
	defer q.Stop()

	_, err = q.Enqueue("unknown", nil)
	require.Error(t, err)
}

func TestQueueReportsRunsToObserver(t *testing.T) {
	type run struct {
		jobType string
		failed  bool
	}
	runs := make(chan run, 4)
	q := NewQueue("observed", QueueConfig{
		Workers:    1,
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
		Observer: func(jobType string, err error, _ time.Duration) {
			runs <- run{jobType: jobType, failed: err != nil}
		},
	})
	var calls int32
	q.Register("once-flaky", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("first attempt fails")
		}
		return nil
	})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue("once-flaky", nil)
	require.NoError(t, err)

	for _, want := range []run{{"once-flaky", true}, {"once-flaky", false}} {
		select {
		case got := <-runs:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("observer was not called")
		}
	}
}

package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(nil)
	err := s.Add("not a cron", "broken", func(ctx context.Context) error { return nil })
	require.Error(t, err)
	assert.Equal(t, 0, s.Entries())
}

func TestSchedulerRunsRegisteredJob(t *testing.T) {
	s := NewScheduler(nil)
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Add("@every 1s", "tick", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}))
	assert.Equal(t, 1, s.Entries())

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}

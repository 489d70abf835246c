package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startScheduler(t *testing.T, cfg SchedulerConfig) (*Scheduler, chan *Job) {
	t.Helper()
	s := NewScheduler(cfg, zap.NewNop())
	done := make(chan *Job, 10)
	s.notifyDone(done)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s, done
}

func waitJob(t *testing.T, done chan *Job) *Job {
	t.Helper()
	select {
	case job := <-done:
		return job
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
		return nil
	}
}

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler(SchedulerConfig{}, zap.NewNop())
	assert.Equal(t, 2, s.config.MaxConcurrentJobs)
	assert.Equal(t, 5*time.Minute, s.config.JobTimeout)
	assert.Equal(t, time.Minute, s.config.RetryDelay)
}

func TestScheduler_RunsRegisteredTask(t *testing.T) {
	s, done := startScheduler(t, SchedulerConfig{MaxConcurrentJobs: 1})
	s.Register("overdue-invoices", func(ctx context.Context) (int, error) {
		return 4, nil
	})

	submitted, err := s.Submit("overdue-invoices")
	require.NoError(t, err)

	job := waitJob(t, done)
	assert.Equal(t, submitted.ID, job.ID)
	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.Equal(t, 4, job.Handled)
	assert.NotNil(t, job.CompletedAt)
}

func TestScheduler_RetriesFailedTask(t *testing.T) {
	s, done := startScheduler(t, SchedulerConfig{MaxConcurrentJobs: 1, RetryAttempts: 1, RetryDelay: 10 * time.Millisecond})
	var calls atomic.Int32
	s.Register("low-stock", func(ctx context.Context) (int, error) {
		if calls.Add(1) == 1 {
			return 0, errors.New("database unavailable")
		}
		return 1, nil
	})

	_, err := s.Submit("low-stock")
	require.NoError(t, err)

	job := waitJob(t, done)
	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, int32(2), calls.Load())
}

func TestScheduler_GivesUpAfterRetries(t *testing.T) {
	s, done := startScheduler(t, SchedulerConfig{MaxConcurrentJobs: 1, RetryAttempts: 0})
	s.Register("reminders", func(ctx context.Context) (int, error) {
		return 0, errors.New("smtp down")
	})

	_, err := s.Submit("reminders")
	require.NoError(t, err)

	job := waitJob(t, done)
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "smtp down", job.Error)
}

func TestScheduler_RecoversPanic(t *testing.T) {
	s, done := startScheduler(t, SchedulerConfig{MaxConcurrentJobs: 1})
	s.Register("broken", func(ctx context.Context) (int, error) {
		panic("nil map")
	})

	_, err := s.Submit("broken")
	require.NoError(t, err)

	job := waitJob(t, done)
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Contains(t, job.Error, "task panicked: nil map")
}

func TestScheduler_SubmitErrors(t *testing.T) {
	s := NewScheduler(SchedulerConfig{}, zap.NewNop())
	s.Register("known", func(ctx context.Context) (int, error) { return 0, nil })

	_, err := s.Submit("unknown")
	assert.ErrorIs(t, err, ErrUnknownTask)

	_, err = s.Submit("known")
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)

	assert.Equal(t, []string{"known"}, s.Tasks())
}

func TestScheduler_StartStopIdempotent(t *testing.T) {
	s := NewScheduler(SchedulerConfig{}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

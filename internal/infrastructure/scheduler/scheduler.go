// Package scheduler runs the back office housekeeping tasks: overdue
// factures, expiring devis, appointment reminders and the low stock digest.
package scheduler

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Task is the body of a background job. It returns how many records it handled.
type Task func(ctx context.Context) (int, error)

// Job is one run of a registered task, retries included.
type Job struct {
	ID          uuid.UUID
	Name        string
	Status      JobStatus
	Error       string
	Handled     int
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

func NewJob(name string, maxRetries int) *Job {
	return &Job{ID: uuid.New(), Name: name, Status: JobStatusPending, MaxRetries: maxRetries}
}

func (j *Job) Start() {
	now := time.Now()
	j.Status, j.StartedAt, j.Error = JobStatusRunning, &now, ""
}

func (j *Job) Complete(handled int) {
	now := time.Now()
	j.Status, j.CompletedAt, j.Handled = JobStatusSuccess, &now, handled
}

func (j *Job) Fail(reason string) {
	now := time.Now()
	j.Status, j.CompletedAt, j.Error = JobStatusFailed, &now, reason
}

func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

type SchedulerConfig struct {
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	// RetryAttempts is the number of reruns after a failure. Zero disables
	// retries.
	RetryAttempts int
	RetryDelay    time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		MaxConcurrentJobs: 2,
		JobTimeout:        5 * time.Minute,
		RetryAttempts:     2,
		RetryDelay:        time.Minute,
	}
}

const queueSize = 100

// Scheduler runs registered tasks on a fixed set of workers.
type Scheduler struct {
	config SchedulerConfig
	logger *zap.Logger

	mu      sync.Mutex
	tasks   map[string]Task
	queue   chan *Job
	running bool
	cancel  context.CancelFunc
	workers sync.WaitGroup

	// done receives every job that reached a final state; tests only.
	done chan *Job
}

func NewScheduler(config SchedulerConfig, logger *zap.Logger) *Scheduler {
	d := DefaultSchedulerConfig()
	if config.MaxConcurrentJobs <= 0 {
		config.MaxConcurrentJobs = d.MaxConcurrentJobs
	}
	config.JobTimeout = cmp.Or(max(config.JobTimeout, 0), d.JobTimeout)
	config.RetryDelay = cmp.Or(max(config.RetryDelay, 0), d.RetryDelay)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config: config,
		logger: logger.Named("scheduler"),
		tasks:  make(map[string]Task),
		queue:  make(chan *Job, queueSize),
	}
}

// Register adds a named task, replacing any task of the same name.
func (s *Scheduler) Register(name string, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[name] = task
}

// Tasks lists the registered task names in order.
func (s *Scheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.tasks))
}

func (s *Scheduler) notifyDone(ch chan *Job) { s.done = ch }

func (s *Scheduler) task(name string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[name]
	return t, ok
}

// Start launches the workers. Starting twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	for id := range s.config.MaxConcurrentJobs {
		s.workers.Add(1)
		go s.work(ctx, id)
	}
	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout))
	return nil
}

// Stop cancels the running jobs and waits for the workers until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	stopped := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
		s.logger.Info("Job scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a run of the named task.
func (s *Scheduler) Submit(name string) (*Job, error) {
	if _, ok := s.task(name); !ok {
		return nil, ErrUnknownTask
	}
	job := NewJob(name, s.config.RetryAttempts)
	if err := s.enqueue(job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *Scheduler) enqueue(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrSchedulerNotRunning
	}
	select {
	case s.queue <- job:
		s.logger.Debug("Job queued", zap.Stringer("job_id", job.ID), zap.String("task", job.Name))
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *Scheduler) work(ctx context.Context, id int) {
	defer s.workers.Done()
	log := s.logger.With(zap.Int("worker_id", id))
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.queue:
			s.execute(ctx, log, job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, log *zap.Logger, job *Job) {
	task, _ := s.task(job.Name)
	log = log.With(zap.Stringer("job_id", job.ID), zap.String("task", job.Name))

	job.Start()
	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	handled, err := guard(runCtx, task)
	cancel()

	if err == nil {
		job.Complete(handled)
		log.Info("Job completed", zap.Int("handled", handled))
		s.settle(job)
		return
	}

	job.Fail(err.Error())
	log.Error("Job failed", zap.Int("retry_count", job.RetryCount), zap.Error(err))
	if !job.ShouldRetry() || ctx.Err() != nil {
		s.settle(job)
		return
	}
	job.RetryCount++
	job.Status = JobStatusPending
	time.AfterFunc(s.config.RetryDelay, func() {
		if err := s.enqueue(job); err != nil {
			log.Warn("Job retry dropped", zap.Error(err))
		}
	})
}

// guard runs task and reports a panic as a PanicError.
func guard(ctx context.Context, task Task) (handled int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return task(ctx)
}

func (s *Scheduler) settle(job *Job) {
	if s.done != nil {
		s.done <- job
	}
}

package scheduler

import (
	"errors"
	"fmt"
)

var (
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
	ErrJobQueueFull        = errors.New("job queue is full")
	ErrUnknownTask         = errors.New("unknown task")
	ErrInvalidCronSpec     = errors.New("invalid cron expression")
)

// PanicError is the failure recorded for a task that panicked.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

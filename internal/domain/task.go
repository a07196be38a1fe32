package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task correlates a client-visible id with the queued orchestration job.
type Task struct {
	ID        string
	JobID     string
	ListID    string
	CreatedAt time.Time
}

// NewTask builds a task that is not yet bound to a job or list.
func NewTask() Task {
	return Task{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

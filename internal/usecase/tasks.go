package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/ports"
)

// TaskService queues submissions as orchestration jobs.
type TaskService struct {
	tasks        ports.TaskRepository
	dispatcher   ports.Dispatcher
	orchestrator *Orchestrator
	audit        *Auditor
	logger       *slog.Logger
}

// NewTaskService wires the dispatcher with the orchestrator.
func NewTaskService(tasks ports.TaskRepository, dispatcher ports.Dispatcher, orchestrator *Orchestrator, audit *Auditor, logger *slog.Logger) *TaskService {
	return &TaskService{
		tasks:        tasks,
		dispatcher:   dispatcher,
		orchestrator: orchestrator,
		audit:        audit,
		logger:       logger,
	}
}

// Submit records a task and enqueues the list job for it. The returned id
// is the client-visible handle.
func (s *TaskService) Submit(ctx context.Context, sub domain.Submission) (string, error) {
	if !sub.Type.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedListType, sub.Type)
	}
	if sub.Type == domain.ListTypeFile && sub.Filename == "" {
		return "", fmt.Errorf("file list requires a filename")
	}

	task := domain.NewTask()
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}

	taskID := task.ID
	job, err := s.dispatcher.Submit(ctx, func(jobCtx context.Context, job ports.JobHandle) error {
		s.debug("list job started", "task_id", taskID, "job_id", job.ID)
		list, err := s.orchestrator.CreateList(jobCtx, taskID, sub)
		if err != nil {
			return fmt.Errorf("task %s: %w", taskID, err)
		}
		s.debug("list job finished", "task_id", taskID, "job_id", job.ID, "list_id", list.ID)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("enqueue task %s: %w", taskID, err)
	}

	if err := s.tasks.SetTaskJob(ctx, taskID, job.ID); err != nil {
		return "", fmt.Errorf("bind job to task %s: %w", taskID, err)
	}

	s.audit.Write(ctx, "", "", "", fmt.Sprintf("List of references added to the processing queue (task %s): %d position", taskID, s.dispatcher.Pending()))
	return taskID, nil
}

func (s *TaskService) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

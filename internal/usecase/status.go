package usecase

import (
	"context"
	"fmt"

	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/ports"
)

// ListStatus is a snapshot of a list with everything discovered in it.
type ListStatus struct {
	List      domain.List
	Papers    []domain.Paper
	Notebooks []domain.Notebook
}

// Failed counts notebooks whose processing ended in failure.
func (s ListStatus) Failed() int {
	n := 0
	for _, nb := range s.Notebooks {
		if nb.IsFailed {
			n++
		}
	}
	return n
}

// StatusReader is the read side used by presentation layers.
type StatusReader struct {
	tasks     ports.TaskRepository
	lists     ports.ListRepository
	papers    ports.PaperRepository
	notebooks ports.NotebookRepository
	logs      ports.AuditRepository
}

func NewStatusReader(tasks ports.TaskRepository, lists ports.ListRepository, papers ports.PaperRepository, notebooks ports.NotebookRepository, logs ports.AuditRepository) *StatusReader {
	return &StatusReader{tasks: tasks, lists: lists, papers: papers, notebooks: notebooks, logs: logs}
}

// Task returns the task record behind a client handle.
func (r *StatusReader) Task(ctx context.Context, taskID string) (domain.Task, error) {
	return r.tasks.GetTask(ctx, taskID)
}

// List collects the list and its papers and notebooks.
func (r *StatusReader) List(ctx context.Context, listID string) (ListStatus, error) {
	list, err := r.lists.GetList(ctx, listID)
	if err != nil {
		return ListStatus{}, fmt.Errorf("get list %s: %w", listID, err)
	}
	papers, err := r.papers.PapersByList(ctx, listID)
	if err != nil {
		return ListStatus{}, fmt.Errorf("papers of list %s: %w", listID, err)
	}
	notebooks, err := r.notebooks.NotebooksByList(ctx, listID)
	if err != nil {
		return ListStatus{}, fmt.Errorf("notebooks of list %s: %w", listID, err)
	}
	return ListStatus{List: list, Papers: papers, Notebooks: notebooks}, nil
}

// TaskList resolves a task id to the status of its list. A task whose job
// has not created the list yet yields domain.ErrNotFound.
func (r *StatusReader) TaskList(ctx context.Context, taskID string) (ListStatus, error) {
	task, err := r.tasks.GetTask(ctx, taskID)
	if err != nil {
		return ListStatus{}, fmt.Errorf("get task %s: %w", taskID, err)
	}
	if task.ListID == "" {
		return ListStatus{}, fmt.Errorf("task %s has no list yet: %w", taskID, domain.ErrNotFound)
	}
	return r.List(ctx, task.ListID)
}

// Logs returns audit entries matching filter in append order.
func (r *StatusReader) Logs(ctx context.Context, filter domain.LogFilter) ([]domain.LogEntry, error) {
	return r.logs.Entries(ctx, filter)
}

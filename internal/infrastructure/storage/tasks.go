package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NotebookValidator/internal/domain"
)

// CreateTask inserts a task row.
func (s *Store) CreateTask(ctx context.Context, task domain.Task) error {
	_, err := s.exec(ctx, s.sb.Insert("tasks").
		Columns("id", "job_id", "list_id", "date_created").
		Values(task.ID, task.JobID, task.ListID, formatTime(task.CreatedAt)))
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// SetTaskJob records the job id handed out by the dispatcher.
func (s *Store) SetTaskJob(ctx context.Context, taskID, jobID string) error {
	res, err := s.exec(ctx, s.sb.Update("tasks").Set("job_id", jobID).Where(sq.Eq{"id": taskID}))
	if err != nil {
		return fmt.Errorf("update task job: %w", err)
	}
	return expectRow(res, "task", taskID)
}

// SetTaskList records the list created by the task's job.
func (s *Store) SetTaskList(ctx context.Context, taskID, listID string) error {
	res, err := s.exec(ctx, s.sb.Update("tasks").Set("list_id", listID).Where(sq.Eq{"id": taskID}))
	if err != nil {
		return fmt.Errorf("update task list: %w", err)
	}
	return expectRow(res, "task", taskID)
}

// GetTask loads a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row, err := s.queryRow(ctx, s.sb.Select("id", "job_id", "list_id", "date_created").From("tasks").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.Task{}, err
	}

	var (
		task    domain.Task
		created string
	)
	err = row.Scan(&task.ID, &task.JobID, &task.ListID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("get task: %w", err)
	}
	task.CreatedAt = parseTime(created)
	return task, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NotebookValidator/internal/domain"
)

var listColumns = []string{"id", "task_id", "filename", "extension", "storage_path", "list_type", "is_processed", "date_created", "date_updated"}

// CreateList inserts a new list row.
func (s *Store) CreateList(ctx context.Context, list domain.List) error {
	_, err := s.exec(ctx, s.sb.Insert("lists").Columns(listColumns...).Values(
		list.ID,
		list.TaskID,
		list.Filename,
		list.Extension,
		list.StoragePath,
		string(list.Type),
		list.IsProcessed,
		formatTime(list.CreatedAt),
		formatTime(list.UpdatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert list: %w", err)
	}
	return nil
}

// UpdateList overwrites the mutable fields of a list.
func (s *Store) UpdateList(ctx context.Context, list domain.List) error {
	res, err := s.exec(ctx, s.sb.Update("lists").SetMap(map[string]any{
		"task_id":      list.TaskID,
		"filename":     list.Filename,
		"extension":    list.Extension,
		"storage_path": list.StoragePath,
		"list_type":    string(list.Type),
		"is_processed": list.IsProcessed,
		"date_updated": formatTime(list.UpdatedAt),
	}).Where(sq.Eq{"id": list.ID}))
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}
	return expectRow(res, "list", list.ID)
}

// GetList loads a list by id.
func (s *Store) GetList(ctx context.Context, id string) (domain.List, error) {
	row, err := s.queryRow(ctx, s.sb.Select(listColumns...).From("lists").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.List{}, err
	}
	list, err := scanList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.List{}, fmt.Errorf("list %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.List{}, fmt.Errorf("get list: %w", err)
	}
	return list, nil
}

func scanList(row rowScanner) (domain.List, error) {
	var (
		list     domain.List
		listType string
		created  string
		updated  string
	)
	if err := row.Scan(
		&list.ID,
		&list.TaskID,
		&list.Filename,
		&list.Extension,
		&list.StoragePath,
		&listType,
		&list.IsProcessed,
		&created,
		&updated,
	); err != nil {
		return domain.List{}, err
	}
	list.Type = domain.ListType(listType)
	list.CreatedAt = parseTime(created)
	list.UpdatedAt = parseTime(updated)
	return list, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NotebookValidator/internal/domain"
)

// AppendLog inserts an audit entry. Entries are never updated.
func (s *Store) AppendLog(ctx context.Context, entry domain.LogEntry) error {
	_, err := s.exec(ctx, s.sb.Insert("logs").
		Columns("id", "list_id", "paper_id", "notebook_id", "message", "date_created").
		Values(
			entry.ID,
			nullableString(entry.ListID),
			nullableString(entry.PaperID),
			nullableString(entry.NotebookID),
			entry.Message,
			formatTime(entry.CreatedAt),
		))
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

// Entries returns audit entries matching the filter in append order.
func (s *Store) Entries(ctx context.Context, filter domain.LogFilter) ([]domain.LogEntry, error) {
	where := sq.Eq{}
	if filter.ListID != "" {
		where["list_id"] = filter.ListID
	}
	if filter.PaperID != "" {
		where["paper_id"] = filter.PaperID
	}
	if filter.NotebookID != "" {
		where["notebook_id"] = filter.NotebookID
	}

	builder := s.sb.Select("id", "list_id", "paper_id", "notebook_id", "message", "date_created").
		From("logs").
		OrderBy("seq")
	if len(where) > 0 {
		builder = builder.Where(where)
	}

	rows, err := s.query(ctx, builder)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var (
			entry                       domain.LogEntry
			listID, paperID, notebookID sql.NullString
			created                     string
		)
		if err := rows.Scan(&entry.ID, &listID, &paperID, &notebookID, &entry.Message, &created); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		entry.ListID = listID.String
		entry.PaperID = paperID.String
		entry.NotebookID = notebookID.String
		entry.CreatedAt = parseTime(created)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return entries, nil
}

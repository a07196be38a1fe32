package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NotebookValidator/internal/domain"
)

var notebookColumns = []string{
	"id", "list_id", "paper_id", "original_url", "download_url", "filename",
	"storage_path", "output_path", "output_html_path", "kernel", "message",
	"is_downloaded", "is_processed", "is_failed", "date_created",
}

// CreateNotebook inserts a new notebook row.
func (s *Store) CreateNotebook(ctx context.Context, nb domain.Notebook) error {
	_, err := s.exec(ctx, s.sb.Insert("notebooks").Columns(notebookColumns...).Values(
		nb.ID,
		nb.ListID,
		nb.PaperID,
		nb.OriginalURL,
		nb.DownloadURL,
		nb.Filename,
		nb.StoragePath,
		nb.OutputPath,
		nb.OutputHTMLPath,
		nullableString(nb.Kernel),
		nb.Message,
		nb.IsDownloaded,
		nb.IsProcessed,
		nb.IsFailed,
		formatTime(nb.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert notebook: %w", err)
	}
	return nil
}

// UpdateNotebook overwrites the mutable fields of a notebook.
func (s *Store) UpdateNotebook(ctx context.Context, nb domain.Notebook) error {
	res, err := s.exec(ctx, s.sb.Update("notebooks").SetMap(map[string]any{
		"download_url":     nb.DownloadURL,
		"filename":         nb.Filename,
		"storage_path":     nb.StoragePath,
		"output_path":      nb.OutputPath,
		"output_html_path": nb.OutputHTMLPath,
		"kernel":           nullableString(nb.Kernel),
		"message":          nb.Message,
		"is_downloaded":    nb.IsDownloaded,
		"is_processed":     nb.IsProcessed,
		"is_failed":        nb.IsFailed,
	}).Where(sq.Eq{"id": nb.ID}))
	if err != nil {
		return fmt.Errorf("update notebook: %w", err)
	}
	return expectRow(res, "notebook", nb.ID)
}

// GetNotebook loads a notebook by id.
func (s *Store) GetNotebook(ctx context.Context, id string) (domain.Notebook, error) {
	row, err := s.queryRow(ctx, s.sb.Select(notebookColumns...).From("notebooks").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.Notebook{}, err
	}
	nb, err := scanNotebook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notebook{}, fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Notebook{}, fmt.Errorf("get notebook: %w", err)
	}
	return nb, nil
}

// NotebooksByList returns every notebook discovered under a list.
func (s *Store) NotebooksByList(ctx context.Context, listID string) ([]domain.Notebook, error) {
	rows, err := s.query(ctx, s.sb.Select(notebookColumns...).From("notebooks").
		Where(sq.Eq{"list_id": listID}).
		OrderBy("date_created", "id"))
	if err != nil {
		return nil, fmt.Errorf("query notebooks: %w", err)
	}
	defer rows.Close()

	var notebooks []domain.Notebook
	for rows.Next() {
		nb, err := scanNotebook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notebook: %w", err)
		}
		notebooks = append(notebooks, nb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return notebooks, nil
}

func scanNotebook(row rowScanner) (domain.Notebook, error) {
	var (
		nb      domain.Notebook
		kernel  sql.NullString
		created string
	)
	if err := row.Scan(
		&nb.ID,
		&nb.ListID,
		&nb.PaperID,
		&nb.OriginalURL,
		&nb.DownloadURL,
		&nb.Filename,
		&nb.StoragePath,
		&nb.OutputPath,
		&nb.OutputHTMLPath,
		&kernel,
		&nb.Message,
		&nb.IsDownloaded,
		&nb.IsProcessed,
		&nb.IsFailed,
		&created,
	); err != nil {
		return domain.Notebook{}, err
	}
	nb.Kernel = kernel.String
	nb.CreatedAt = parseTime(created)
	return nb, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NotebookValidator/internal/domain"
)

var paperColumns = []string{"id", "list_id", "original_url", "download_url", "url_type", "is_processed", "date_created"}

// CreatePaper inserts a new paper row.
func (s *Store) CreatePaper(ctx context.Context, paper domain.Paper) error {
	_, err := s.exec(ctx, s.sb.Insert("papers").Columns(paperColumns...).Values(
		paper.ID,
		paper.ListID,
		paper.OriginalURL,
		paper.DownloadURL,
		string(paper.URLType),
		paper.IsProcessed,
		formatTime(paper.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert paper: %w", err)
	}
	return nil
}

// UpdatePaper stores the download URL and processing flag. The URL type is
// fixed at creation and never rewritten.
func (s *Store) UpdatePaper(ctx context.Context, paper domain.Paper) error {
	res, err := s.exec(ctx, s.sb.Update("papers").
		Set("download_url", paper.DownloadURL).
		Set("is_processed", paper.IsProcessed).
		Where(sq.Eq{"id": paper.ID}))
	if err != nil {
		return fmt.Errorf("update paper: %w", err)
	}
	return expectRow(res, "paper", paper.ID)
}

// GetPaper loads a paper by id.
func (s *Store) GetPaper(ctx context.Context, id string) (domain.Paper, error) {
	row, err := s.queryRow(ctx, s.sb.Select(paperColumns...).From("papers").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.Paper{}, err
	}
	paper, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Paper{}, fmt.Errorf("paper %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Paper{}, fmt.Errorf("get paper: %w", err)
	}
	return paper, nil
}

// PapersByList returns the papers of a list in creation order.
func (s *Store) PapersByList(ctx context.Context, listID string) ([]domain.Paper, error) {
	rows, err := s.query(ctx, s.sb.Select(paperColumns...).From("papers").
		Where(sq.Eq{"list_id": listID}).
		OrderBy("date_created", "id"))
	if err != nil {
		return nil, fmt.Errorf("query papers: %w", err)
	}
	defer rows.Close()

	var papers []domain.Paper
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, paper)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return papers, nil
}

func scanPaper(row rowScanner) (domain.Paper, error) {
	var (
		paper   domain.Paper
		urlType string
		created string
	)
	if err := row.Scan(
		&paper.ID,
		&paper.ListID,
		&paper.OriginalURL,
		&paper.DownloadURL,
		&urlType,
		&paper.IsProcessed,
		&created,
	); err != nil {
		return domain.Paper{}, err
	}
	paper.URLType = domain.URLType(urlType)
	paper.CreatedAt = parseTime(created)
	return paper, nil
}

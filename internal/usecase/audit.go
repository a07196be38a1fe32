package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/ports"
)

// Auditor appends audit entries keyed by list, paper and notebook.
type Auditor struct {
	repo      ports.AuditRepository
	logger    *slog.Logger
	onFailure func(error)
}

// NewAuditor wires the audit repository. A failed append panics: the audit
// trail is the only user-visible record of the pipeline.
func NewAuditor(repo ports.AuditRepository, logger *slog.Logger) *Auditor {
	return &Auditor{
		repo:   repo,
		logger: logger,
		onFailure: func(err error) {
			panic(err)
		},
	}
}

// Write appends one entry and returns its id.
func (a *Auditor) Write(ctx context.Context, listID, paperID, notebookID, message string) string {
	entry := domain.NewLogEntry(listID, paperID, notebookID, message)
	if err := a.repo.AppendLog(ctx, entry); err != nil {
		a.onFailure(fmt.Errorf("append audit entry: %w", err))
		return entry.ID
	}

	if a.logger != nil {
		a.logger.Debug(message, "list_id", listID, "paper_id", paperID, "notebook_id", notebookID)
	}
	return entry.ID
}

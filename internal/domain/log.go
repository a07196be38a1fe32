package domain

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry is one append-only audit record. Empty coordinates are absent.
type LogEntry struct {
	ID         string
	ListID     string
	PaperID    string
	NotebookID string
	Message    string
	CreatedAt  time.Time
}

// NewLogEntry stamps a new entry with its own id and creation time.
func NewLogEntry(listID, paperID, notebookID, message string) LogEntry {
	return LogEntry{
		ID:         uuid.NewString(),
		ListID:     listID,
		PaperID:    paperID,
		NotebookID: notebookID,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
}

// LogFilter selects audit entries by coordinates; empty fields match anything.
type LogFilter struct {
	ListID     string
	PaperID    string
	NotebookID string
}

package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ListType tells how the references of a list were supplied.
type ListType string

const (
	ListTypeFile ListType = "file"
	ListTypeURLs ListType = "urls"
)

// Valid reports whether t is one of the supported list types.
func (t ListType) Valid() bool {
	return t == ListTypeFile || t == ListTypeURLs
}

const defaultListExtension = "csv"

// List is one batch submission of paper references.
type List struct {
	ID          string
	TaskID      string
	Filename    string
	Extension   string
	StoragePath string
	Type        ListType
	IsProcessed bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewList builds an unprocessed list stamped with the current time.
func NewList(taskID string, listType ListType) List {
	now := time.Now().UTC()
	return List{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		Extension: defaultListExtension,
		Type:      listType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AttachFile records the uploaded reference table on the list.
func (l *List) AttachFile(filename, storagePath string) {
	l.Filename = filename
	l.StoragePath = storagePath
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		l.Extension = strings.ToLower(ext)
	}
}

// MarkProcessed flips the list into its terminal state.
func (l *List) MarkProcessed() {
	l.IsProcessed = true
	l.UpdatedAt = time.Now().UTC()
}

// Submission carries the client input for a new list.
type Submission struct {
	Type       ListType
	Filename   string
	References []string
}

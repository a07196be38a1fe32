package ports

import (
	"context"
	"time"

	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/notebook"
)

// ListRepository persists batch submissions.
type ListRepository interface {
	CreateList(ctx context.Context, list domain.List) error
	UpdateList(ctx context.Context, list domain.List) error
	GetList(ctx context.Context, id string) (domain.List, error)
}

// PaperRepository persists resolved paper references.
type PaperRepository interface {
	CreatePaper(ctx context.Context, paper domain.Paper) error
	UpdatePaper(ctx context.Context, paper domain.Paper) error
	GetPaper(ctx context.Context, id string) (domain.Paper, error)
	PapersByList(ctx context.Context, listID string) ([]domain.Paper, error)
}

// NotebookRepository persists discovered notebooks and their processing state.
type NotebookRepository interface {
	CreateNotebook(ctx context.Context, nb domain.Notebook) error
	UpdateNotebook(ctx context.Context, nb domain.Notebook) error
	GetNotebook(ctx context.Context, id string) (domain.Notebook, error)
	NotebooksByList(ctx context.Context, listID string) ([]domain.Notebook, error)
}

// TaskRepository persists correlation records between clients and jobs.
type TaskRepository interface {
	CreateTask(ctx context.Context, task domain.Task) error
	SetTaskJob(ctx context.Context, taskID, jobID string) error
	SetTaskList(ctx context.Context, taskID, listID string) error
	GetTask(ctx context.Context, id string) (domain.Task, error)
}

// AuditRepository appends and reads audit entries.
type AuditRepository interface {
	AppendLog(ctx context.Context, entry domain.LogEntry) error
	Entries(ctx context.Context, filter domain.LogFilter) ([]domain.LogEntry, error)
}

// JobHandle identifies a unit of queued work.
type JobHandle struct {
	ID string
}

// JobFunc is the work handed to the dispatcher. The handle of the job is
// passed in explicitly.
type JobFunc func(ctx context.Context, job JobHandle) error

// Dispatcher hands work to background workers.
type Dispatcher interface {
	Submit(ctx context.Context, fn JobFunc) (JobHandle, error)
	Pending() int
}

// TableReader loads one reference per row from an uploaded table.
type TableReader interface {
	ReadTable(path string) ([]string, error)
}

// PathResolver maps file names into the shared uploads area.
type PathResolver interface {
	StoragePath(filename string) string
	UploadsRoot() string
}

// DocumentFetcher retrieves the raw bytes of a paper.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// LinkParser extracts candidate hyperlink targets from markup.
type LinkParser interface {
	ParseLinks(content []byte) ([]string, error)
}

// LinkResolver turns a notebook page link into a direct download URL.
type LinkResolver interface {
	DirectURL(originalURL string) string
}

// Downloader stores the body behind url at destination.
type Downloader interface {
	Retrieve(ctx context.Context, url, destination string) error
}

// InstallReport is the result of a dependency installation attempt.
type InstallReport struct {
	OK  bool
	Log string
}

// DependencyInstaller makes sure a kernel can import what a notebook needs.
type DependencyInstaller interface {
	Ensure(ctx context.Context, doc *notebook.Document, kernel string) (InstallReport, error)
}

// ExecOptions bounds a notebook execution.
type ExecOptions struct {
	Timeout    time.Duration
	KernelName string
	WorkingDir string
}

// Executor runs every cell of a notebook. On failure it may return the
// partially executed document alongside the error.
type Executor interface {
	Execute(ctx context.Context, doc *notebook.Document, opts ExecOptions) (*notebook.Document, error)
}

// Renderer produces a static human-viewable document.
type Renderer interface {
	Render(doc *notebook.Document) ([]byte, error)
}

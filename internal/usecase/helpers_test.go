package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"NotebookValidator/internal/config"
	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/infrastructure/storage"
	"NotebookValidator/internal/notebook"
	"NotebookValidator/internal/ports"
)

const (
	notebookWithKernel = `{
 "cells": [
  {"cell_type": "code", "execution_count": 7, "metadata": {}, "outputs": [{"output_type": "stream", "name": "stdout", "text": "stale\n"}], "source": "print('fresh')\n"}
 ],
 "metadata": {"kernelspec": {"name": "python3", "display_name": "Python 3"}},
 "nbformat": 4,
 "nbformat_minor": 2
}`
	notebookWithoutKernel = `{
 "cells": [{"cell_type": "code", "execution_count": null, "metadata": {}, "outputs": [], "source": "x = 1\n"}],
 "metadata": {},
 "nbformat": 4,
 "nbformat_minor": 2
}`
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMemoryStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(context.Background(), config.DatabaseConfig{Driver: storage.DriverMemory})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type tempPaths struct{ root string }

func (p tempPaths) StoragePath(filename string) string { return filepath.Join(p.root, filepath.Base(filename)) }
func (p tempPaths) UploadsRoot() string                { return p.root }

type fetcherStub struct {
	pages map[string]string
}

func (f fetcherStub) Fetch(_ context.Context, url string) ([]byte, error) {
	page, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("fetch %s: status 404", url)
	}
	return []byte(page), nil
}

// lineParser treats every non-empty line of the page as a link target.
type lineParser struct{}

func (lineParser) ParseLinks(content []byte) ([]string, error) {
	var links []string
	for _, line := range strings.Split(string(content), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			links = append(links, line)
		}
	}
	return links, nil
}

type identityResolver struct{}

func (identityResolver) DirectURL(u string) string { return u }

type downloaderStub struct {
	files map[string]string
}

func (d downloaderStub) Retrieve(_ context.Context, url, destination string) error {
	body, ok := d.files[url]
	if !ok {
		return fmt.Errorf("download %s: status 404", url)
	}
	return os.WriteFile(destination, []byte(body), 0o644)
}

type installerStub struct {
	mu      sync.Mutex
	kernels []string
	err     error
}

func (i *installerStub) Ensure(_ context.Context, _ *notebook.Document, kernel string) (ports.InstallReport, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.kernels = append(i.kernels, kernel)
	if i.err != nil {
		return ports.InstallReport{Log: "interrupted"}, i.err
	}
	return ports.InstallReport{OK: true, Log: "nothing to install"}, nil
}

type executorFunc func(ctx context.Context, doc *notebook.Document, opts ports.ExecOptions) (*notebook.Document, error)

func (f executorFunc) Execute(ctx context.Context, doc *notebook.Document, opts ports.ExecOptions) (*notebook.Document, error) {
	return f(ctx, doc, opts)
}

// executeOK marks every code cell as run once with a single stdout output.
func executeOK(_ context.Context, doc *notebook.Document, _ ports.ExecOptions) (*notebook.Document, error) {
	out, err := notebook.Clone(doc)
	if err != nil {
		return nil, err
	}
	for i, cell := range out.Cells {
		if cell.Type != notebook.CellTypeCode {
			continue
		}
		n := i + 1
		cell.ExecutionCount = &n
		cell.Outputs = append(cell.Outputs, []byte(`{"output_type":"stream","name":"stdout","text":"fresh\n"}`))
	}
	return out, nil
}

type rendererStub struct{}

func (rendererStub) Render(doc *notebook.Document) ([]byte, error) {
	return []byte(fmt.Sprintf("<html>%d cells</html>", len(doc.Cells))), nil
}

type failingAudit struct{}

func (failingAudit) AppendLog(context.Context, domain.LogEntry) error {
	return errors.New("database is locked")
}

func (failingAudit) Entries(context.Context, domain.LogFilter) ([]domain.LogEntry, error) {
	return nil, nil
}

type tableStub struct {
	refs []string
	err  error
}

func (t tableStub) ReadTable(string) ([]string, error) { return t.refs, t.err }

// inlineDispatcher runs jobs synchronously inside Submit.
type inlineDispatcher struct {
	mu   sync.Mutex
	runs int
	errs []error
}

func (d *inlineDispatcher) Submit(ctx context.Context, fn ports.JobFunc) (ports.JobHandle, error) {
	d.mu.Lock()
	d.runs++
	handle := ports.JobHandle{ID: fmt.Sprintf("job-%d", d.runs)}
	d.mu.Unlock()

	err := fn(ctx, handle)
	d.mu.Lock()
	d.errs = append(d.errs, err)
	d.mu.Unlock()
	return handle, nil
}

func (d *inlineDispatcher) Pending() int { return 0 }

type fixture struct {
	store        *storage.Store
	notebookRepo ports.NotebookRepository
	root         string
	fetcher      fetcherStub
	downloads    downloaderStub
	installer    *installerStub
	executor     executorFunc
	tables       tableStub
	audit        *Auditor
	papers       *PaperResolver
	notebooks    *NotebookProcessor
	orchestrator *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		store:     newMemoryStore(t),
		root:      t.TempDir(),
		fetcher:   fetcherStub{pages: map[string]string{}},
		downloads: downloaderStub{files: map[string]string{}},
		installer: &installerStub{},
		executor:  executeOK,
	}
}

// build wires the use cases after the test has configured its stubs.
func (f *fixture) build() {
	logger := quietLogger()
	paths := tempPaths{root: f.root}

	var notebookRepo ports.NotebookRepository = f.store
	if f.notebookRepo != nil {
		notebookRepo = f.notebookRepo
	}

	f.audit = NewAuditor(f.store, logger)
	f.papers = NewPaperResolver(f.store, f.fetcher, lineParser{}, f.audit, logger)
	f.notebooks = NewNotebookProcessor(NotebookProcessorDeps{
		Notebooks:  notebookRepo,
		Paths:      paths,
		Links:      identityResolver{},
		Downloader: f.downloads,
		Installer:  f.installer,
		Executor:   f.executor,
		Renderer:   rendererStub{},
		Audit:      f.audit,
		Logger:     logger,
	})
	f.orchestrator = NewOrchestrator(OrchestratorDeps{
		Lists:     f.store,
		Tasks:     f.store,
		Tables:    f.tables,
		Paths:     paths,
		Papers:    f.papers,
		Notebooks: f.notebooks,
		Audit:     f.audit,
		Logger:    logger,
	})
}

func (f *fixture) messages(t *testing.T, filter domain.LogFilter) []string {
	t.Helper()
	entries, err := f.store.Entries(context.Background(), filter)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

func containsMessage(messages []string, prefix string) bool {
	for _, m := range messages {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

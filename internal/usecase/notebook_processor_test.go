package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/notebook"
	"NotebookValidator/internal/ports"
)

func processOne(t *testing.T, f *fixture, url string) domain.Notebook {
	t.Helper()
	f.build()
	ctx := context.Background()

	id, err := f.notebooks.Create(ctx, "list-1", "paper-1", url)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	nb, err := f.store.GetNotebook(ctx, id)
	if err != nil {
		t.Fatalf("GetNotebook: %v", err)
	}
	if !nb.IsProcessed {
		t.Fatalf("notebook %s not in terminal state", id)
	}
	return nb
}

func TestProcessSuccessWritesArtifacts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.downloads.files[goodNotebookURL] = notebookWithKernel
	var seen ports.ExecOptions
	var inputCleared bool
	f.executor = func(ctx context.Context, doc *notebook.Document, opts ports.ExecOptions) (*notebook.Document, error) {
		seen = opts
		inputCleared = len(doc.Cells[0].Outputs) == 0 && doc.Cells[0].ExecutionCount == nil
		return executeOK(ctx, doc, opts)
	}

	nb := processOne(t, f, goodNotebookURL)
	if nb.IsFailed || nb.Message != domain.MessageProcessed || nb.Kernel != "python3" {
		t.Fatalf("unexpected notebook %#v", nb)
	}
	if !inputCleared {
		t.Fatal("outputs should be cleared before execution")
	}
	if seen.KernelName != "python3" || seen.Timeout != ExecutionTimeout || seen.WorkingDir != f.root {
		t.Fatalf("unexpected exec options %#v", seen)
	}
	if len(f.installer.kernels) != 1 || f.installer.kernels[0] != "python3" {
		t.Fatalf("installer calls = %v", f.installer.kernels)
	}

	raw, err := os.ReadFile(nb.OutputPath)
	if err != nil {
		t.Fatalf("read output notebook: %v", err)
	}
	out, err := notebook.Parse(raw)
	if err != nil {
		t.Fatalf("parse output notebook: %v", err)
	}
	if c := out.Cells[0].ExecutionCount; c == nil || *c != 1 {
		t.Fatalf("output notebook not executed: %v", c)
	}
	html, err := os.ReadFile(nb.OutputHTMLPath)
	if err != nil || string(html) != "<html>1 cells</html>" {
		t.Fatalf("unexpected html %q (%v)", html, err)
	}

	logs := f.messages(t, domain.LogFilter{NotebookID: nb.ID})
	for _, want := range []string{
		"Start downloading notebook: " + goodNotebookURL,
		"URL to download notebook: " + goodNotebookURL,
		"Downloaded notebook: ",
		"Start processing notebook: ",
		"Install dependencies log: nothing to install",
		"Successfully processed notebook: ",
		"Start writing HTML output to file",
	} {
		if !containsMessage(logs, want) {
			t.Fatalf("missing %q in %v", want, logs)
		}
	}
}

func TestProcessDownloadFailureFailsAtParse(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	nb := processOne(t, f, unreachableNBURL)
	if !nb.IsFailed || nb.IsDownloaded || !strings.Contains(nb.Message, "read notebook") {
		t.Fatalf("unexpected notebook %#v", nb)
	}
	if fileExists(nb.OutputPath) || fileExists(nb.OutputHTMLPath) {
		t.Fatal("failed download should not produce artifacts")
	}
	logs := f.messages(t, domain.LogFilter{NotebookID: nb.ID})
	if !containsMessage(logs, "Caught exception when download notebook") || !containsMessage(logs, "Caught exception when process") {
		t.Fatalf("unexpected log: %v", logs)
	}
}

// failingDownloadUpdate rejects the write that records a completed download.
type failingDownloadUpdate struct {
	ports.NotebookRepository
}

func (r failingDownloadUpdate) UpdateNotebook(ctx context.Context, nb domain.Notebook) error {
	if nb.IsDownloaded && !nb.IsProcessed {
		return errors.New("disk full")
	}
	return r.NotebookRepository.UpdateNotebook(ctx, nb)
}

func TestCreateFailsWhenDownloadStateCannotBeStored(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.downloads.files[goodNotebookURL] = notebookWithKernel
	f.notebookRepo = failingDownloadUpdate{NotebookRepository: f.store}
	executed := false
	f.executor = func(ctx context.Context, doc *notebook.Document, opts ports.ExecOptions) (*notebook.Document, error) {
		executed = true
		return executeOK(ctx, doc, opts)
	}
	f.build()

	_, err := f.notebooks.Create(context.Background(), "list-1", "paper-1", goodNotebookURL)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected store failure from Create, got %v", err)
	}
	if executed {
		t.Fatal("processing must not run after a store failure")
	}

	logs := f.messages(t, domain.LogFilter{ListID: "list-1"})
	if containsMessage(logs, "Caught exception when download notebook") {
		t.Fatalf("store failure must not be logged as a download exception: %v", logs)
	}
}

func TestProcessUnparseableNotebook(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.downloads.files[goodNotebookURL] = "<html>not a notebook</html>"
	nb := processOne(t, f, goodNotebookURL)
	if !nb.IsFailed || nb.Kernel != "" || !nb.IsDownloaded {
		t.Fatalf("unexpected notebook %#v", nb)
	}
}

func TestProcessExecutionFailureKeepsPartialDocument(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.downloads.files[goodNotebookURL] = notebookWithKernel
	f.executor = func(ctx context.Context, doc *notebook.Document, opts ports.ExecOptions) (*notebook.Document, error) {
		partial, _ := executeOK(ctx, doc, opts)
		return partial, fmt.Errorf("CellExecutionError: NameError")
	}

	nb := processOne(t, f, goodNotebookURL)
	if !nb.IsFailed || nb.Kernel != "python3" || !strings.Contains(nb.Message, "NameError") {
		t.Fatalf("unexpected notebook %#v", nb)
	}
	if !fileExists(nb.OutputPath) || !fileExists(nb.OutputHTMLPath) {
		t.Fatal("execution failure with a document should still write artifacts")
	}
}

func TestProcessExecutionTimeout(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.downloads.files[goodNotebookURL] = notebookWithKernel
	f.executor = func(context.Context, *notebook.Document, ports.ExecOptions) (*notebook.Document, error) {
		return nil, fmt.Errorf("execute notebook: %w", context.DeadlineExceeded)
	}

	nb := processOne(t, f, goodNotebookURL)
	if !nb.IsFailed || !strings.Contains(nb.Message, "timed out") {
		t.Fatalf("unexpected notebook %#v", nb)
	}
	if !fileExists(nb.OutputPath) {
		t.Fatal("the cleared document should still be written after a timeout")
	}
}

func TestProcessInstallerError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.downloads.files[goodNotebookURL] = notebookWithKernel
	f.installer.err = context.Canceled
	executed := false
	f.executor = func(ctx context.Context, doc *notebook.Document, opts ports.ExecOptions) (*notebook.Document, error) {
		executed = true
		return executeOK(ctx, doc, opts)
	}

	nb := processOne(t, f, goodNotebookURL)
	if !nb.IsFailed || nb.Kernel != "python3" || executed {
		t.Fatalf("installer error should stop before execution: %#v executed=%v", nb, executed)
	}
}

func TestOutcomeMessage(t *testing.T) {
	t.Parallel()

	if msg := (Outcome{Stage: StageDone}).Message(); msg != domain.MessageProcessed {
		t.Fatalf("success message = %q", msg)
	}
	failed := Outcome{Stage: StageKernel, Err: notebook.ErrNoKernel}
	if !failed.Failed() || failed.Message() != notebook.ErrNoKernel.Error() {
		t.Fatalf("unexpected failed outcome message %q", failed.Message())
	}
	if msg := (Outcome{Stage: StageExecute, Err: errors.New("")}).Message(); msg != "notebook processing failed at execute stage" {
		t.Fatalf("empty error message = %q", msg)
	}
}

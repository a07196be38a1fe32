package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/notebook"
	"NotebookValidator/internal/ports"
)

// ExecutionTimeout caps a single notebook run.
const ExecutionTimeout = 3600 * time.Second

// Stage names the step of notebook processing an outcome stopped at.
type Stage string

const (
	StageParse        Stage = "parse"
	StageKernel       Stage = "kernel"
	StageDependencies Stage = "dependencies"
	StageExecute      Stage = "execute"
	StageDone         Stage = "done"
)

// Outcome is the result of one processing attempt. Doc and Kernel are set
// only when the corresponding step succeeded.
type Outcome struct {
	Stage  Stage
	Doc    *notebook.Document
	Kernel string
	Err    error
}

// Failed reports whether the attempt stopped before completion.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Message is the human-readable status stored on the notebook.
func (o Outcome) Message() string {
	if o.Err == nil {
		return domain.MessageProcessed
	}
	if msg := o.Err.Error(); msg != "" {
		return msg
	}
	return fmt.Sprintf("notebook processing failed at %s stage", o.Stage)
}

// NotebookProcessorDeps wires the collaborators of the notebook processor.
type NotebookProcessorDeps struct {
	Notebooks  ports.NotebookRepository
	Paths      ports.PathResolver
	Links      ports.LinkResolver
	Downloader ports.Downloader
	Installer  ports.DependencyInstaller
	Executor   ports.Executor
	Renderer   ports.Renderer
	Audit      *Auditor
	Logger     *slog.Logger
}

// NotebookProcessor downloads, executes and records one notebook at a time.
type NotebookProcessor struct {
	notebooks  ports.NotebookRepository
	paths      ports.PathResolver
	links      ports.LinkResolver
	downloader ports.Downloader
	installer  ports.DependencyInstaller
	executor   ports.Executor
	renderer   ports.Renderer
	audit      *Auditor
	logger     *slog.Logger
	timeout    time.Duration
}

// NewNotebookProcessor constructs the processor.
func NewNotebookProcessor(deps NotebookProcessorDeps) *NotebookProcessor {
	return &NotebookProcessor{
		notebooks:  deps.Notebooks,
		paths:      deps.Paths,
		links:      deps.Links,
		downloader: deps.Downloader,
		installer:  deps.Installer,
		executor:   deps.Executor,
		renderer:   deps.Renderer,
		audit:      deps.Audit,
		logger:     deps.Logger,
		timeout:    ExecutionTimeout,
	}
}

// Create persists a notebook for url and runs download and processing
// before returning its id. Only persistence failures are returned.
func (p *NotebookProcessor) Create(ctx context.Context, listID, paperID, url string) (string, error) {
	nb := domain.NewNotebook(listID, paperID, url)
	if err := p.notebooks.CreateNotebook(ctx, nb); err != nil {
		return "", fmt.Errorf("create notebook: %w", err)
	}

	raw, output, html := nb.ArtifactNames()
	nb.Filename = raw
	nb.StoragePath = p.paths.StoragePath(raw)
	nb.OutputPath = p.paths.StoragePath(output)
	nb.OutputHTMLPath = p.paths.StoragePath(html)
	if err := p.notebooks.UpdateNotebook(ctx, nb); err != nil {
		return "", fmt.Errorf("update notebook %s paths: %w", nb.ID, err)
	}

	// A failed download leaves no usable file; processing then fails at the parse step.
	if err := p.Download(ctx, &nb); err != nil {
		return "", err
	}

	if err := p.Process(ctx, &nb); err != nil {
		return "", err
	}
	return nb.ID, nil
}

// Download resolves the direct URL of the notebook and stores it locally.
// Retrieval failures are audited and leave the notebook not downloaded;
// only store failures are returned.
func (p *NotebookProcessor) Download(ctx context.Context, nb *domain.Notebook) error {
	p.audit.Write(ctx, nb.ListID, nb.PaperID, nb.ID, fmt.Sprintf("Start downloading notebook: %s", nb.OriginalURL))

	nb.DownloadURL = p.links.DirectURL(nb.OriginalURL)
	p.audit.Write(ctx, nb.ListID, nb.PaperID, nb.ID, fmt.Sprintf("URL to download notebook: %s", nb.DownloadURL))

	if err := p.downloader.Retrieve(ctx, nb.DownloadURL, nb.StoragePath); err != nil {
		p.audit.Write(ctx, nb.ListID, nb.PaperID, nb.ID, fmt.Sprintf("Caught exception when download notebook: retrieve %s: %v", nb.DownloadURL, err))
		return nil
	}

	downloaded := *nb
	downloaded.IsDownloaded = true
	if err := p.notebooks.UpdateNotebook(ctx, downloaded); err != nil {
		return fmt.Errorf("update notebook %s: %w", nb.ID, err)
	}
	nb.IsDownloaded = true

	p.audit.Write(ctx, nb.ListID, nb.PaperID, nb.ID, fmt.Sprintf("Downloaded notebook: %s", nb.DownloadURL))
	return nil
}

// Process executes the downloaded notebook once and records the terminal
// state. Execution failures are stored on the notebook, never returned.
func (p *NotebookProcessor) Process(ctx context.Context, nb *domain.Notebook) error {
	p.audit.Write(ctx, nb.ListID, nb.PaperID, nb.ID, fmt.Sprintf("Start processing notebook: %s", nb.OriginalURL))

	outcome := p.run(ctx, nb)
	if outcome.Failed() {
		p.audit.Write(ctx, nb.ListID, nb.PaperID, nb.ID, fmt.Sprintf("Caught exception when process: %s", outcome.Message()))
	} else {
		p.audit.Write(ctx, nb.ListID, nb.PaperID, nb.ID, fmt.Sprintf("Successfully processed notebook: %s", nb.OriginalURL))
	}

	nb.Kernel = outcome.Kernel
	nb.Message = outcome.Message()
	nb.IsFailed = outcome.Failed()
	nb.IsProcessed = true
	if err := p.notebooks.UpdateNotebook(ctx, *nb); err != nil {
		return fmt.Errorf("update notebook %s: %w", nb.ID, err)
	}

	if outcome.Doc != nil {
		p.writeArtifacts(ctx, nb, outcome.Doc)
	}
	return nil
}

func (p *NotebookProcessor) run(ctx context.Context, nb *domain.Notebook) Outcome {
	content, err := os.ReadFile(nb.StoragePath)
	if err != nil {
		// A missing or unreadable download counts as unparseable input.
		return Outcome{Stage: StageParse, Err: fmt.Errorf("read notebook: %w", err)}
	}

	doc, err := notebook.Parse(content)
	if err != nil {
		return Outcome{Stage: StageParse, Err: err}
	}
	notebook.ClearOutputs(doc)

	kernel, err := notebook.KernelName(doc)
	if err != nil {
		// Without a kernel the document is not carried forward, so no artifacts are written.
		return Outcome{Stage: StageKernel, Err: err}
	}

	report, err := p.installer.Ensure(ctx, doc, kernel)
	p.audit.Write(ctx, nb.ListID, nb.PaperID, nb.ID, fmt.Sprintf("Install dependencies log: %s", report.Log))
	if err != nil {
		return Outcome{Stage: StageDependencies, Doc: doc, Kernel: kernel, Err: fmt.Errorf("install dependencies: %w", err)}
	}
	if !report.OK {
		p.debug("dependency installation reported problems", "notebook_id", nb.ID, "kernel", kernel)
	}

	executed, err := p.executor.Execute(ctx, doc, ports.ExecOptions{
		Timeout:    p.timeout,
		KernelName: kernel,
		WorkingDir: p.paths.UploadsRoot(),
	})
	if executed == nil {
		executed = doc
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("notebook execution timed out after %s: %w", p.timeout, err)
		}
		return Outcome{Stage: StageExecute, Doc: executed, Kernel: kernel, Err: err}
	}

	return Outcome{Stage: StageDone, Doc: executed, Kernel: kernel}
}

func (p *NotebookProcessor) writeArtifacts(ctx context.Context, nb *domain.Notebook, doc *notebook.Document) {
	p.audit.Write(ctx, nb.ListID, nb.PaperID, nb.ID, "Start writing HTML output to file")

	if html, err := p.renderer.Render(doc); err != nil {
		p.artifactFailed(ctx, nb, "render html", err)
	} else if err := os.WriteFile(nb.OutputHTMLPath, html, 0o644); err != nil {
		p.artifactFailed(ctx, nb, "write html", err)
	}

	raw, err := notebook.Serialize(doc)
	if err != nil {
		p.artifactFailed(ctx, nb, "serialize notebook", err)
		return
	}
	if err := os.WriteFile(nb.OutputPath, raw, 0o644); err != nil {
		p.artifactFailed(ctx, nb, "write notebook", err)
	}
}

func (p *NotebookProcessor) artifactFailed(ctx context.Context, nb *domain.Notebook, step string, err error) {
	if p.logger != nil {
		p.logger.Warn("notebook artifact failed", "notebook_id", nb.ID, "step", step, "error", err)
	}
	p.audit.Write(ctx, nb.ListID, nb.PaperID, nb.ID, fmt.Sprintf("Caught exception when %s: %v", step, err))
}

func (p *NotebookProcessor) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"NotebookValidator/internal/config"
	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/infrastructure/download"
	"NotebookValidator/internal/infrastructure/files"
	"NotebookValidator/internal/infrastructure/jupyter"
	"NotebookValidator/internal/infrastructure/parser"
	"NotebookValidator/internal/infrastructure/queue"
	"NotebookValidator/internal/infrastructure/render"
	"NotebookValidator/internal/infrastructure/storage"
	"NotebookValidator/internal/infrastructure/table"
	"NotebookValidator/internal/linkresolver"
	"NotebookValidator/internal/logging"
	"NotebookValidator/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *storage.Store
	uploads *files.Uploads
	pool    *queue.Pool
	tasks   *usecase.TaskService
	status  *usecase.StatusReader
}

// New opens the store and builds the pipeline. Call Start before Submit.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	uploads, err := files.NewUploads(cfg.Storage.UploadsDir)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	client := &http.Client{Timeout: cfg.HTTP.Timeout}
	audit := usecase.NewAuditor(store, baseLogger.With("component", "audit"))

	papers := usecase.NewPaperResolver(
		store,
		parser.NewPaperFetcher(client, cfg.HTTP.UserAgent),
		parser.NewLinkParser(),
		audit,
		baseLogger.With("component", "paper"),
	)

	notebooks := usecase.NewNotebookProcessor(usecase.NotebookProcessorDeps{
		Notebooks:  store,
		Paths:      uploads,
		Links:      linkresolver.Default(),
		Downloader: download.NewHTTPDownloader(client, cfg.HTTP.UserAgent),
		Installer:  jupyter.NewInstaller(cfg.Jupyter.Installers, baseLogger.With("component", "installer")),
		Executor:   jupyter.NewExecutor(cfg.Jupyter.Python, baseLogger.With("component", "executor")),
		Renderer:   jupyter.NewHTMLExporter(cfg.Jupyter.Command, render.NewHTMLRenderer(), baseLogger.With("component", "renderer")),
		Audit:      audit,
		Logger:     baseLogger.With("component", "notebook"),
	})

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Lists:     store,
		Tasks:     store,
		Tables:    table.NewReader(),
		Paths:     uploads,
		Papers:    papers,
		Notebooks: notebooks,
		Audit:     audit,
		Logger:    baseLogger.With("component", "orchestrator"),
	})

	pool := queue.NewPool(cfg.Worker.Concurrency, cfg.Worker.QueueSize, baseLogger.With("component", "queue"))

	return &Application{
		cfg:     cfg,
		logger:  baseLogger,
		store:   store,
		uploads: uploads,
		pool:    pool,
		tasks:   usecase.NewTaskService(store, pool, orchestrator, audit, baseLogger.With("component", "tasks")),
		status:  usecase.NewStatusReader(store, store, store, store, store),
	}, nil
}

// Start launches the workers.
func (a *Application) Start(ctx context.Context) error {
	return a.pool.Start(ctx)
}

// Submit queues a list of references and returns the task id.
func (a *Application) Submit(ctx context.Context, sub domain.Submission) (string, error) {
	return a.tasks.Submit(ctx, sub)
}

// ImportFile copies a local reference table into the uploads area and
// returns the file name to submit.
func (a *Application) ImportFile(path string) (string, error) {
	name, err := a.uploads.Import(path)
	if err != nil {
		return "", fmt.Errorf("import reference table: %w", err)
	}
	return name, nil
}

// Wait blocks until every queued job has finished.
func (a *Application) Wait(ctx context.Context) error {
	return a.pool.Wait(ctx)
}

// Status exposes the read side.
func (a *Application) Status() *usecase.StatusReader {
	return a.status
}

// SchemaVersion reports the applied migration version.
func (a *Application) SchemaVersion() (uint, bool, error) {
	return a.store.Version()
}

// Close stops the workers and releases the store.
func (a *Application) Close(ctx context.Context) error {
	stopErr := a.pool.Stop(ctx)
	if err := a.store.Close(); err != nil {
		return err
	}
	return stopErr
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/ports"
)

// OrchestratorDeps wires all collaborators of the list workflow.
type OrchestratorDeps struct {
	Lists     ports.ListRepository
	Tasks     ports.TaskRepository
	Tables    ports.TableReader
	Paths     ports.PathResolver
	Papers    *PaperResolver
	Notebooks *NotebookProcessor
	Audit     *Auditor
	Logger    *slog.Logger
}

// Orchestrator drives a list through paper resolution and notebook processing.
type Orchestrator struct {
	lists     ports.ListRepository
	tasks     ports.TaskRepository
	tables    ports.TableReader
	paths     ports.PathResolver
	papers    *PaperResolver
	notebooks *NotebookProcessor
	audit     *Auditor
	logger    *slog.Logger
}

// NewOrchestrator constructs the list workflow.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		lists:     deps.Lists,
		tasks:     deps.Tasks,
		tables:    deps.Tables,
		paths:     deps.Paths,
		papers:    deps.Papers,
		notebooks: deps.Notebooks,
		audit:     deps.Audit,
		logger:    deps.Logger,
	}
}

// CreateList persists a list for the submission and processes every
// reference in it inline. The returned list is in its terminal state.
func (o *Orchestrator) CreateList(ctx context.Context, taskID string, sub domain.Submission) (domain.List, error) {
	if !sub.Type.Valid() {
		return domain.List{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedListType, sub.Type)
	}

	list := domain.NewList(taskID, sub.Type)
	if err := o.lists.CreateList(ctx, list); err != nil {
		return domain.List{}, fmt.Errorf("create list: %w", err)
	}
	o.audit.Write(ctx, list.ID, "", "", "Successfully saved file with list of links")

	if taskID != "" && o.tasks != nil {
		if err := o.tasks.SetTaskList(ctx, taskID, list.ID); err != nil {
			return domain.List{}, fmt.Errorf("attach list to task %s: %w", taskID, err)
		}
	}

	refs := sub.References
	if list.Type == domain.ListTypeFile {
		var err error
		refs, err = o.loadReferences(ctx, &list, sub.Filename)
		if err != nil {
			return domain.List{}, err
		}
	}

	o.debug("process list", "list_id", list.ID, "type", list.Type, "references", len(refs))

	for _, ref := range refs {
		if err := o.processReference(ctx, list.ID, ref); err != nil {
			return domain.List{}, err
		}
	}

	list.MarkProcessed()
	if err := o.lists.UpdateList(ctx, list); err != nil {
		return domain.List{}, fmt.Errorf("mark list %s processed: %w", list.ID, err)
	}
	o.audit.Write(ctx, list.ID, "", "", fmt.Sprintf("List processed: %d papers", len(refs)))

	return list, nil
}

func (o *Orchestrator) processReference(ctx context.Context, listID, ref string) error {
	paper, err := o.papers.Create(ctx, listID, ref)
	if err != nil {
		return err
	}

	links, err := o.papers.ExtractLinks(ctx, &paper)
	if err != nil {
		return err
	}

	for _, link := range links {
		if _, err := o.notebooks.Create(ctx, listID, paper.ID, link); err != nil {
			return err
		}
	}

	return o.papers.MarkDone(ctx, &paper)
}

// loadReferences records the uploaded file on the list and reads its rows.
// A table that cannot be read is logged and yields no references.
func (o *Orchestrator) loadReferences(ctx context.Context, list *domain.List, filename string) ([]string, error) {
	list.AttachFile(filename, o.paths.StoragePath(filename))
	if err := o.lists.UpdateList(ctx, *list); err != nil {
		return nil, fmt.Errorf("update list %s file: %w", list.ID, err)
	}
	o.audit.Write(ctx, list.ID, "", "", "Successfully updated file with list of links")
	o.audit.Write(ctx, list.ID, "", "", "Starting processing list of urls")

	refs, err := o.tables.ReadTable(list.StoragePath)
	if err != nil {
		o.debug("reference table rejected", "list_id", list.ID, "path", list.StoragePath, "error", err)
		o.audit.Write(ctx, list.ID, "", "", fmt.Sprintf("Wrong file format: %v", err))
		return nil, nil
	}

	o.audit.Write(ctx, list.ID, "", "", fmt.Sprintf("Total papers urls extracted: %d", len(refs)))
	return refs, nil
}

func (o *Orchestrator) debug(msg string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}

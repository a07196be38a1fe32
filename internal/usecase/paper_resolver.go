package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/ports"
)

const notebookExtension = ".ipynb"

// PaperResolver turns a reference into a Paper and finds the notebooks it links to.
type PaperResolver struct {
	papers  ports.PaperRepository
	fetcher ports.DocumentFetcher
	parser  ports.LinkParser
	audit   *Auditor
	logger  *slog.Logger
}

// NewPaperResolver wires storage, fetch and parse collaborators.
func NewPaperResolver(papers ports.PaperRepository, fetcher ports.DocumentFetcher, parser ports.LinkParser, audit *Auditor, logger *slog.Logger) *PaperResolver {
	return &PaperResolver{
		papers:  papers,
		fetcher: fetcher,
		parser:  parser,
		audit:   audit,
		logger:  logger,
	}
}

// Create persists a new paper for ref.
func (r *PaperResolver) Create(ctx context.Context, listID, ref string) (domain.Paper, error) {
	r.audit.Write(ctx, listID, "", "", fmt.Sprintf("Process paper url: %s", ref))

	paper := domain.NewPaper(listID, ref)
	if err := r.papers.CreatePaper(ctx, paper); err != nil {
		return domain.Paper{}, fmt.Errorf("create paper: %w", err)
	}
	return paper, nil
}

// ResolveDownloadURL computes and stores the fetchable URL of the paper.
func (r *PaperResolver) ResolveDownloadURL(ctx context.Context, paper *domain.Paper) error {
	paper.DownloadURL = domain.DownloadURLFor(paper.OriginalURL)
	if err := r.papers.UpdatePaper(ctx, *paper); err != nil {
		return fmt.Errorf("update paper %s: %w", paper.ID, err)
	}
	return nil
}

// ExtractLinks fetches the paper and returns the notebook links found in it,
// in first-seen order. Fetch and parse failures are logged and yield no links.
func (r *PaperResolver) ExtractLinks(ctx context.Context, paper *domain.Paper) ([]string, error) {
	r.audit.Write(ctx, paper.ListID, paper.ID, "", fmt.Sprintf("Start downloading paper from URL: %s", paper.OriginalURL))

	if err := r.ResolveDownloadURL(ctx, paper); err != nil {
		return nil, err
	}

	content, err := r.fetch(ctx, paper.DownloadURL)
	if err != nil {
		r.debug("paper fetch failed", "paper_id", paper.ID, "error", err)
		r.audit.Write(ctx, paper.ListID, paper.ID, "", fmt.Sprintf("Caught exception when try to download paper: %v", err))
		return []string{}, nil
	}

	r.audit.Write(ctx, paper.ListID, paper.ID, "", fmt.Sprintf("Downloaded paper from URL: %s", paper.DownloadURL))

	targets, err := r.parser.ParseLinks(content)
	if err != nil {
		r.audit.Write(ctx, paper.ListID, paper.ID, "", fmt.Sprintf("Caught exception when parse paper: %v", err))
		return []string{}, nil
	}

	links := notebookLinks(targets)
	r.audit.Write(ctx, paper.ListID, paper.ID, "", fmt.Sprintf("Found %d links to notebooks in paper", len(links)))
	return links, nil
}

// MarkDone moves the paper to its terminal state.
func (r *PaperResolver) MarkDone(ctx context.Context, paper *domain.Paper) error {
	paper.IsProcessed = true
	if err := r.papers.UpdatePaper(ctx, *paper); err != nil {
		return fmt.Errorf("mark paper %s done: %w", paper.ID, err)
	}
	r.audit.Write(ctx, paper.ListID, paper.ID, "", "Paper marked as done")
	return nil
}

func (r *PaperResolver) fetch(ctx context.Context, downloadURL string) ([]byte, error) {
	if downloadURL == "" {
		return nil, fmt.Errorf("no download url known for reference")
	}
	return r.fetcher.Fetch(ctx, downloadURL)
}

func (r *PaperResolver) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

// notebookLinks keeps targets whose path ends with the notebook extension,
// dropping exact duplicates.
func notebookLinks(targets []string) []string {
	seen := map[string]struct{}{}
	links := make([]string, 0)
	for _, target := range targets {
		if !isNotebookLink(target) {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		links = append(links, target)
	}
	return links
}

func isNotebookLink(target string) bool {
	if target == "" {
		return false
	}
	path := target
	if parsed, err := url.Parse(target); err == nil {
		path = parsed.Path
	}
	return strings.HasSuffix(path, notebookExtension)
}

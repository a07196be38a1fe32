package jupyter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"NotebookValidator/internal/notebook"
	"NotebookValidator/internal/ports"
)

const exportTimeout = 2 * time.Minute

// HTMLExporter renders notebooks with `jupyter nbconvert --to html`. When
// nbconvert is missing or fails, the fallback renderer produces the page.
type HTMLExporter struct {
	command  string
	fallback ports.Renderer
	logger   *slog.Logger
}

var _ ports.Renderer = (*HTMLExporter)(nil)

func NewHTMLExporter(command string, fallback ports.Renderer, logger *slog.Logger) *HTMLExporter {
	if command == "" {
		command = "jupyter"
	}
	return &HTMLExporter{command: command, fallback: fallback, logger: logger}
}

func (x *HTMLExporter) Render(doc *notebook.Document) ([]byte, error) {
	page, err := x.export(doc)
	if err == nil {
		return page, nil
	}
	if x.fallback == nil {
		return nil, err
	}
	if x.logger != nil {
		x.logger.Warn("nbconvert html export failed, using built-in renderer", "error", err)
	}
	return x.fallback.Render(doc)
}

func (x *HTMLExporter) export(doc *notebook.Document) ([]byte, error) {
	raw, err := notebook.Serialize(doc)
	if err != nil {
		return nil, err
	}

	input, err := os.CreateTemp("", ".render-*.ipynb")
	if err != nil {
		return nil, fmt.Errorf("create export input: %w", err)
	}
	defer os.Remove(input.Name())
	if _, err := input.Write(raw); err != nil {
		_ = input.Close()
		return nil, fmt.Errorf("write export input: %w", err)
	}
	if err := input.Close(); err != nil {
		return nil, fmt.Errorf("close export input: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, x.command, "nbconvert", "--to", "html", "--stdout", input.Name())
	cmd.WaitDelay = killGrace
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if tail := lastLines(stderr.String(), stderrTailLines); tail != "" {
			return nil, fmt.Errorf("nbconvert html: %w\n%s", err, tail)
		}
		return nil, fmt.Errorf("nbconvert html: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("nbconvert html: empty output")
	}
	return stdout.Bytes(), nil
}

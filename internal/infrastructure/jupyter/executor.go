package jupyter

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"NotebookValidator/internal/notebook"
	"NotebookValidator/internal/ports"
)

const (
	stderrTailLines = 20
	killGrace       = 5 * time.Second
)

// driver executes the notebook with nbclient and always writes it back to
// stdout, so a failing cell still yields the partially executed document.
//
//go:embed execute.py
var driver string

// Executor runs notebooks through an embedded nbclient driver.
type Executor struct {
	python string
	logger *slog.Logger
}

var _ ports.Executor = (*Executor)(nil)

// NewExecutor wires the python interpreter that has nbclient installed; an
// empty command means "python3".
func NewExecutor(python string, logger *slog.Logger) *Executor {
	if python == "" {
		python = "python3"
	}
	return &Executor{python: python, logger: logger}
}

// Execute runs every cell with the requested kernel inside opts.WorkingDir.
// The whole run is bounded by opts.Timeout. When a cell fails the partially
// executed document is returned together with the error.
func (e *Executor) Execute(ctx context.Context, doc *notebook.Document, opts ports.ExecOptions) (*notebook.Document, error) {
	if opts.KernelName == "" {
		return nil, fmt.Errorf("kernel name is required")
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	raw, err := notebook.Serialize(doc)
	if err != nil {
		return nil, err
	}

	input, err := os.CreateTemp(opts.WorkingDir, ".exec-*.ipynb")
	if err != nil {
		return nil, fmt.Errorf("create execution input: %w", err)
	}
	inputPath := input.Name()
	defer os.Remove(inputPath)

	if _, err := input.Write(raw); err != nil {
		_ = input.Close()
		return nil, fmt.Errorf("write execution input: %w", err)
	}
	if err := input.Close(); err != nil {
		return nil, fmt.Errorf("close execution input: %w", err)
	}

	args := e.args(inputPath, opts)
	cmd := exec.CommandContext(ctx, e.python, args...)
	cmd.Dir = opts.WorkingDir
	cmd.WaitDelay = killGrace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.debug("execute notebook", "kernel", opts.KernelName, "dir", opts.WorkingDir)
	if err := cmd.Run(); err != nil {
		partial := e.partial(stdout.Bytes())
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return partial, fmt.Errorf("execute notebook: %w", ctxErr)
		}
		if tail := lastLines(stderr.String(), stderrTailLines); tail != "" {
			return partial, fmt.Errorf("execute notebook: %w\n%s", err, tail)
		}
		return partial, fmt.Errorf("execute notebook: %w", err)
	}

	executed, err := notebook.Parse(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("read executed notebook: %w", err)
	}
	return executed, nil
}

// partial parses whatever the driver managed to write before failing.
func (e *Executor) partial(out []byte) *notebook.Document {
	if len(bytes.TrimSpace(out)) == 0 {
		return nil
	}
	doc, err := notebook.Parse(out)
	if err != nil {
		e.debug("discard partial notebook", "error", err)
		return nil
	}
	return doc
}

func (e *Executor) args(inputPath string, opts ports.ExecOptions) []string {
	return []string{
		"-c", driver,
		inputPath,
		opts.KernelName,
		strconv.Itoa(int(opts.Timeout.Seconds())),
	}
}

func (e *Executor) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func lastLines(text string, n int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

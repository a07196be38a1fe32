package jupyter

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	"NotebookValidator/internal/notebook"
	"NotebookValidator/internal/ports"
)

var (
	importExpr     = regexp.MustCompile(`^\s*import\s+(.+)$`)
	fromImportExpr = regexp.MustCompile(`^\s*from\s+([A-Za-z_][\w.]*)\s+import\b`)
)

// Installer installs the third-party modules a notebook imports, using a
// per-kernel command such as `python3 -m pip install`.
type Installer struct {
	commands map[string][]string
	logger   *slog.Logger
}

var _ ports.DependencyInstaller = (*Installer)(nil)

// NewInstaller maps kernel names to installer command prefixes.
func NewInstaller(commands map[string][]string, logger *slog.Logger) *Installer {
	return &Installer{commands: commands, logger: logger}
}

// Ensure installs the notebook's imports for kernel. Installer failures are
// reported in the InstallReport; an error means the attempt was cancelled.
func (i *Installer) Ensure(ctx context.Context, doc *notebook.Document, kernel string) (ports.InstallReport, error) {
	command, ok := i.commands[kernel]
	if !ok || len(command) == 0 {
		return ports.InstallReport{OK: true, Log: fmt.Sprintf("no installer configured for kernel %s", kernel)}, nil
	}

	modules := ImportedModules(doc)
	if len(modules) == 0 {
		return ports.InstallReport{OK: true, Log: "no third-party imports found"}, nil
	}

	args := append(append([]string{}, command[1:]...), modules...)
	cmd := exec.CommandContext(ctx, command[0], args...)
	output, err := cmd.CombinedOutput()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ports.InstallReport{Log: string(output)}, fmt.Errorf("install dependencies: %w", ctxErr)
	}

	log := fmt.Sprintf("%s %s\n%s", command[0], strings.Join(args, " "), output)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("dependency installation failed", "kernel", kernel, "modules", modules, "error", err)
		}
		return ports.InstallReport{OK: false, Log: log + err.Error()}, nil
	}
	return ports.InstallReport{OK: true, Log: log}, nil
}

// ImportedModules lists the top-level modules imported by code cells,
// excluding relative imports and the Python standard library.
func ImportedModules(doc *notebook.Document) []string {
	if doc == nil {
		return nil
	}

	seen := map[string]struct{}{}
	for _, cell := range doc.Cells {
		if cell == nil || cell.Type != notebook.CellTypeCode {
			continue
		}
		scanner := bufio.NewScanner(strings.NewReader(string(cell.Source)))
		for scanner.Scan() {
			for _, module := range importsOnLine(scanner.Text()) {
				top := strings.SplitN(module, ".", 2)[0]
				if top == "" || isStdlib(top) {
					continue
				}
				seen[top] = struct{}{}
			}
		}
	}

	modules := make([]string, 0, len(seen))
	for m := range seen {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	return modules
}

func importsOnLine(line string) []string {
	if m := fromImportExpr.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	m := importExpr.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	var modules []string
	for _, part := range strings.Split(m[1], ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		name := strings.TrimRight(fields[0], ";")
		if name != "" && !strings.ContainsAny(name, "#(") {
			modules = append(modules, name)
		}
	}
	return modules
}

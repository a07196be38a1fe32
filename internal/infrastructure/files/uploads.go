package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"NotebookValidator/internal/ports"
)

// Uploads is the shared directory holding reference tables, downloaded
// notebooks and their outputs.
type Uploads struct {
	root string
}

var _ ports.PathResolver = (*Uploads)(nil)

// NewUploads makes sure root exists.
func NewUploads(root string) (*Uploads, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("ensure uploads dir: %w", err)
	}
	return &Uploads{root: abs}, nil
}

// StoragePath returns where filename lives inside the uploads area.
func (u *Uploads) StoragePath(filename string) string {
	return filepath.Join(u.root, filepath.Base(filename))
}

// UploadsRoot returns the uploads directory.
func (u *Uploads) UploadsRoot() string {
	return u.root
}

// Import copies a local file into the uploads area and returns its name there.
func (u *Uploads) Import(source string) (string, error) {
	name := filepath.Base(source)
	dest := u.StoragePath(name)

	if abs, err := filepath.Abs(source); err == nil && abs == dest {
		return name, nil
	}

	in, err := os.Open(source)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", source, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("copy %s: %w", source, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dest, err)
	}
	return name, nil
}

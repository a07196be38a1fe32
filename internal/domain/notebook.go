package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageProcessed is stored on notebooks that executed without error.
const MessageProcessed = "Successfully processed"

// Notebook is one computational notebook discovered inside a paper.
type Notebook struct {
	ID             string
	ListID         string
	PaperID        string
	OriginalURL    string
	DownloadURL    string
	Filename       string
	StoragePath    string
	OutputPath     string
	OutputHTMLPath string
	Kernel         string
	Message        string
	IsDownloaded   bool
	IsProcessed    bool
	IsFailed       bool
	CreatedAt      time.Time
}

// NewNotebook builds a notebook record for a discovered link.
func NewNotebook(listID, paperID, originalURL string) Notebook {
	return Notebook{
		ID:          uuid.NewString(),
		ListID:      listID,
		PaperID:     paperID,
		OriginalURL: originalURL,
		CreatedAt:   time.Now().UTC(),
	}
}

// ArtifactNames returns the file names of the raw notebook, the re-serialized
// output and the rendered HTML, all derived from the notebook id.
func (n Notebook) ArtifactNames() (raw, output, html string) {
	raw = n.ID + ".ipynb"
	return raw, "v_output_" + raw, raw + ".html"
}

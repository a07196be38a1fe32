// Package notebook implements the nbformat v4 document model used by the
// notebook processor: parsing, re-serialization and cell normalization.
package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	CellTypeCode     = "code"
	CellTypeMarkdown = "markdown"
	CellTypeRaw      = "raw"

	minFormat = 4
)

var (
	ErrNoKernel          = errors.New("notebook metadata has no kernelspec name")
	ErrUnsupportedFormat = errors.New("unsupported notebook format")
)

// Document is a parsed notebook. Unknown top-level metadata is preserved as raw JSON.
type Document struct {
	Cells         []*Cell         `json:"cells"`
	Metadata      json.RawMessage `json:"metadata"`
	NBFormat      int             `json:"nbformat"`
	NBFormatMinor int             `json:"nbformat_minor"`
}

// Parse decodes notebook bytes. nbformat 3 documents are upgraded to the
// v4 layout; anything older is rejected.
func Parse(data []byte) (*Document, error) {
	var head struct {
		NBFormat int `json:"nbformat"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	switch {
	case head.NBFormat == v3Format:
		upgraded, err := upgradeV3(data)
		if err != nil {
			return nil, err
		}
		data = upgraded
	case head.NBFormat < minFormat:
		return nil, fmt.Errorf("%w: nbformat %d", ErrUnsupportedFormat, head.NBFormat)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	return &doc, nil
}

// Serialize encodes the document in the canonical on-disk layout.
func Serialize(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("serialize notebook: nil document")
	}
	out := *doc
	if len(out.Metadata) == 0 {
		out.Metadata = json.RawMessage(`{}`)
	}
	if out.Cells == nil {
		out.Cells = []*Cell{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode notebook: %w", err)
	}
	return buf.Bytes(), nil
}

// ClearOutputs drops outputs and execution counters from every code cell.
// Calling it again on a cleared document changes nothing.
func ClearOutputs(doc *Document) *Document {
	if doc == nil {
		return nil
	}
	for _, cell := range doc.Cells {
		if cell == nil || cell.Type != CellTypeCode {
			continue
		}
		cell.Outputs = []json.RawMessage{}
		cell.ExecutionCount = nil
		delete(cell.extra, "prompt_number")
	}
	return doc
}

// KernelName returns metadata.kernelspec.name.
func KernelName(doc *Document) (string, error) {
	if doc == nil || len(doc.Metadata) == 0 {
		return "", ErrNoKernel
	}
	var meta struct {
		KernelSpec *struct {
			Name string `json:"name"`
		} `json:"kernelspec"`
	}
	if err := json.Unmarshal(doc.Metadata, &meta); err != nil {
		return "", fmt.Errorf("decode notebook metadata: %w", err)
	}
	if meta.KernelSpec == nil || strings.TrimSpace(meta.KernelSpec.Name) == "" {
		return "", ErrNoKernel
	}
	return meta.KernelSpec.Name, nil
}

// Clone returns a deep copy made through a serialize/parse round trip.
func Clone(doc *Document) (*Document, error) {
	raw, err := Serialize(doc)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"NotebookValidator/internal/ports"
)

const defaultUserAgent = "NotebookValidator/1.0"

// maxDocumentSize bounds how much of a paper is read into memory.
const maxDocumentSize = 64 << 20

// PaperFetcher downloads paper documents (publisher pages, PMC JATS XML).
type PaperFetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.DocumentFetcher = (*PaperFetcher)(nil)

// NewPaperFetcher wires an HTTP client; a nil client gets a 60s timeout.
func NewPaperFetcher(client *http.Client, userAgent string) *PaperFetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &PaperFetcher{client: client, userAgent: userAgent}
}

// Fetch returns the body of pageURL. Non-2xx responses are errors.
func (f *PaperFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return body, nil
}

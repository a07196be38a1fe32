package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestRetrieve(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		_, _ = w.Write([]byte(`{"cells": []}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	d := NewHTTPDownloader(server.Client(), "test")

	dest := filepath.Join(dir, "nb.ipynb")
	if err := d.Retrieve(context.Background(), server.URL+"/nb.ipynb", dest); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"cells": []}` {
		t.Fatalf("unexpected content: %s", data)
	}

	missing := filepath.Join(dir, "gone.ipynb")
	if err := d.Retrieve(context.Background(), server.URL+"/gone", missing); err == nil {
		t.Fatal("expected error for 410")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Fatalf("expected no file after failed download, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the downloaded file, got %d entries", len(entries))
	}

	if err := d.Retrieve(context.Background(), "", dest); err == nil {
		t.Fatal("expected error for empty url")
	}
}

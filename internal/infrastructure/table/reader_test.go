package table

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"NotebookValidator/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadTableCSV(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "refs.csv", "\xef\xbb\xbfurl,comment\n10.1234/abc,first\n\n https://www.ncbi.nlm.nih.gov/pmc/articles/PMC1/ ,second\n,10.5555/late\n")

	refs, err := NewReader().ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	want := []string{"10.1234/abc", "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC1/", "10.5555/late"}
	if len(refs) != len(want) {
		t.Fatalf("expected %v, got %v", want, refs)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("ref %d = %q, want %q", i, refs[i], want[i])
		}
	}
}

func TestReadTableTSVWithoutHeader(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "refs.tsv", "10.1234/a\tx\n10.1234/b\ty\n")
	refs, err := NewReader().ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(refs) != 2 || refs[0] != "10.1234/a" || refs[1] != "10.1234/b" {
		t.Fatalf("unexpected refs: %v", refs)
	}
}

func TestReadTableWrongFormat(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "refs.xlsx", "PK\x03\x04")
	if _, err := NewReader().ReadTable(path); !errors.Is(err, domain.ErrWrongFileFormat) {
		t.Fatalf("expected ErrWrongFileFormat, got %v", err)
	}

	if _, err := NewReader().ReadTable(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadTableUTF16WithBOM(t *testing.T) {
	t.Parallel()

	// "DOI\n10.1234/x\n" as UTF-16LE with a byte order mark.
	content := []byte{0xff, 0xfe}
	for _, r := range "DOI\n10.1234/x\n" {
		content = append(content, byte(r), 0)
	}
	path := writeFile(t, "refs.csv", string(content))

	refs, err := NewReader().ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if len(refs) != 1 || refs[0] != "10.1234/x" {
		t.Fatalf("unexpected refs: %q", refs)
	}
}

package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/ports"
)

var headerNames = map[string]struct{}{
	"url":       {},
	"urls":      {},
	"doi":       {},
	"link":      {},
	"links":     {},
	"reference": {},
	"paper":     {},
}

// Reader loads paper references from CSV, TSV or plain text uploads.
type Reader struct{}

var _ ports.TableReader = Reader{}

// NewReader builds a table reader.
func NewReader() Reader {
	return Reader{}
}

// ReadTable returns the first non-empty cell of every row. A leading header
// row naming the column is skipped. Files are UTF-8 unless a byte order mark
// says otherwise; spreadsheet exports often carry a UTF-16 BOM.
func (Reader) ReadTable(path string) ([]string, error) {
	delimiter, err := delimiterFor(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	defer file.Close()

	decoded := transform.NewReader(file, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var refs []string
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrWrongFileFormat, err)
		}

		value := firstValue(record)
		if value == "" {
			continue
		}
		if row == 0 && isHeader(value) {
			continue
		}
		refs = append(refs, value)
	}
	return refs, nil
}

func delimiterFor(path string) (rune, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ',', nil
	case ".tsv":
		return '\t', nil
	default:
		return 0, fmt.Errorf("%w: %s", domain.ErrWrongFileFormat, filepath.Base(path))
	}
}

func firstValue(record []string) string {
	for _, field := range record {
		if v := strings.TrimSpace(field); v != "" {
			return v
		}
	}
	return ""
}

func isHeader(value string) bool {
	_, ok := headerNames[cases.Fold().String(value)]
	return ok
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" info ":  slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"":        slog.LevelDebug,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriterFormats(t *testing.T) {
	t.Parallel()

	var jsonBuf bytes.Buffer
	NewWithWriter(&jsonBuf, "info", "json").Info("hello", "list_id", "l1")
	var record map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &record); err != nil {
		t.Fatalf("expected json output, got %q: %v", jsonBuf.String(), err)
	}
	if record["list_id"] != "l1" {
		t.Fatalf("unexpected record: %#v", record)
	}

	var textBuf bytes.Buffer
	NewWithWriter(&textBuf, "info", "text").Info("hello")
	if !strings.Contains(textBuf.String(), "msg=hello") {
		t.Fatalf("expected text output, got %q", textBuf.String())
	}

	var autoBuf bytes.Buffer
	NewWithWriter(&autoBuf, "info", "auto").Info("hello")
	if !strings.HasPrefix(strings.TrimSpace(autoBuf.String()), "{") {
		t.Fatalf("expected json for non-terminal writer, got %q", autoBuf.String())
	}

	var quiet bytes.Buffer
	NewWithWriter(&quiet, "error", "text").Info("dropped")
	if quiet.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", quiet.String())
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileDefaults(t *testing.T) {
	t.Setenv(databaseDriverEnv, "")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(uploadsDirEnv, "")

	cfg := LoadFile("")
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "validator.db" {
		t.Fatalf("unexpected database defaults: %#v", cfg.Database)
	}
	if cfg.Worker.Concurrency != 1 || cfg.Worker.QueueSize != 64 {
		t.Fatalf("unexpected worker defaults: %#v", cfg.Worker)
	}
	if !filepath.IsAbs(cfg.Storage.UploadsDir) {
		t.Fatalf("expected absolute uploads dir, got %s", cfg.Storage.UploadsDir)
	}
	if len(cfg.Jupyter.Installers["python3"]) == 0 {
		t.Fatal("expected default python3 installer")
	}
}

func TestLoadFileMergesYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
database:
  driver: postgres
  dsn: postgres://localhost/validator
storage:
  uploadsDir: /srv/uploads
worker:
  concurrency: 4
http:
  timeout: 5s
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(databaseDriverEnv, "")
	t.Setenv(databaseDSNEnv, "postgres://override/validator")
	t.Setenv(uploadsDirEnv, "")
	t.Setenv(logLevelEnv, "")
	t.Setenv(jupyterPythonEnv, "")

	cfg := LoadFile(path)
	if cfg.Database.Driver != "postgres" {
		t.Fatalf("expected postgres driver, got %s", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "postgres://override/validator" {
		t.Fatalf("expected env override for dsn, got %s", cfg.Database.DSN)
	}
	if cfg.Storage.UploadsDir != "/srv/uploads" {
		t.Fatalf("unexpected uploads dir: %s", cfg.Storage.UploadsDir)
	}
	if cfg.Worker.Concurrency != 4 || cfg.Worker.QueueSize != 64 {
		t.Fatalf("unexpected worker config: %#v", cfg.Worker)
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Fatalf("unexpected http timeout: %v", cfg.HTTP.Timeout)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging config: %#v", cfg.Logging)
	}
	if cfg.Jupyter.Command != "jupyter" {
		t.Fatalf("expected default jupyter command, got %s", cfg.Jupyter.Command)
	}
	if cfg.Jupyter.Python != "python3" {
		t.Fatalf("expected default python interpreter, got %s", cfg.Jupyter.Python)
	}
}

func TestLoadFileFallsBackOnBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("database: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(databaseDSNEnv, "")

	cfg := LoadFile(path)
	if cfg.Database.DSN != "validator.db" {
		t.Fatalf("expected defaults after parse failure, got %#v", cfg.Database)
	}
}

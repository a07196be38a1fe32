package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "NOTEBOOK_VALIDATOR_CONFIG"
	databaseDriverEnv = "DATABASE_DRIVER"
	databaseDSNEnv    = "DATABASE_DSN"
	uploadsDirEnv     = "UPLOADS_DIR"
	logLevelEnv       = "LOG_LEVEL"
	jupyterCommandEnv = "JUPYTER_COMMAND"
	jupyterPythonEnv  = "JUPYTER_PYTHON"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Worker   WorkerConfig   `yaml:"worker"`
	HTTP     HTTPConfig     `yaml:"http"`
	Jupyter  JupyterConfig  `yaml:"jupyter"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig selects the store backend: sqlite (DSN is a file path),
// postgres (DSN is a connection string) or memory.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// StorageConfig points at the shared uploads area for tables, notebooks and outputs.
type StorageConfig struct {
	UploadsDir string `yaml:"uploadsDir"`
}

// WorkerConfig sizes the in-process job pool.
type WorkerConfig struct {
	Concurrency int `yaml:"concurrency"`
	QueueSize   int `yaml:"queueSize"`
}

// HTTPConfig tunes outbound fetches of papers and notebooks.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

// JupyterConfig describes how notebooks are executed, rendered and their
// dependencies installed. Python must have nbclient available; Command is the
// jupyter binary used for nbconvert HTML export.
type JupyterConfig struct {
	Command    string              `yaml:"command"`
	Python     string              `yaml:"python"`
	Installers map[string][]string `yaml:"installers"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads YAML configuration from the env-provided path (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile reads YAML configuration from path, falling back to defaults when
// path is empty or unusable, then applies environment overrides.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(uploadsDirEnv); v != "" {
		c.Storage.UploadsDir = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(jupyterCommandEnv); v != "" {
		c.Jupyter.Command = v
	}

	if v := os.Getenv(jupyterPythonEnv); v != "" {
		c.Jupyter.Python = v
	}
}

func (c *Config) normalize() {
	defaults := defaultConfig()
	if c.Worker.Concurrency <= 0 {
		log.Printf("config: worker concurrency %d is invalid, reverting to %d", c.Worker.Concurrency, defaults.Worker.Concurrency)
		c.Worker.Concurrency = defaults.Worker.Concurrency
	}
	if c.Worker.QueueSize <= 0 {
		c.Worker.QueueSize = defaults.Worker.QueueSize
	}
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = defaults.HTTP.Timeout
	}
	if abs, err := filepath.Abs(c.Storage.UploadsDir); err == nil {
		c.Storage.UploadsDir = abs
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Storage.UploadsDir != "" {
		base.Storage.UploadsDir = override.Storage.UploadsDir
	}

	if override.Worker.Concurrency != 0 {
		base.Worker.Concurrency = override.Worker.Concurrency
	}
	if override.Worker.QueueSize != 0 {
		base.Worker.QueueSize = override.Worker.QueueSize
	}

	if override.HTTP.Timeout != 0 {
		base.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}

	if override.Jupyter.Command != "" {
		base.Jupyter.Command = override.Jupyter.Command
	}
	if override.Jupyter.Python != "" {
		base.Jupyter.Python = override.Jupyter.Python
	}
	if len(override.Jupyter.Installers) > 0 {
		base.Jupyter.Installers = override.Jupyter.Installers
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Driver: "sqlite", DSN: "validator.db"},
		Storage:  StorageConfig{UploadsDir: "uploads"},
		Worker:   WorkerConfig{Concurrency: 1, QueueSize: 64},
		HTTP:     HTTPConfig{Timeout: 60 * time.Second, UserAgent: "NotebookValidator/1.0"},
		Jupyter: JupyterConfig{
			Command: "jupyter",
			Python:  "python3",
			Installers: map[string][]string{
				"python2": {"python2", "-m", "pip", "install", "--quiet"},
				"python3": {"python3", "-m", "pip", "install", "--quiet"},
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "auto"},
	}
}

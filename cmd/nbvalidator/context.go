package main

import (
	"context"
	"os"
	"strings"
	"sync"

	"NotebookValidator/internal/app"
	"NotebookValidator/internal/config"
	"NotebookValidator/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     config.Config
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() config.Config {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if path == "" {
			c.config = config.Load()
			return
		}
		c.config = config.LoadFile(path)
	})
	return c.config
}

// withApp opens the application for the duration of fn. Logs go to stderr
// so command output stays machine-readable.
func (c *commandContext) withApp(ctx context.Context, fn func(*app.Application) error) error {
	cfg := c.ensureConfig()
	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close(context.WithoutCancel(ctx))

	return fn(application)
}

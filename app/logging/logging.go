// Package logging configures the process-wide logrus logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	Level   string `default:"warn"`
	Format  string `default:"text"`
	Project string
	LogID   string `split_words:"true" default:"competitor-form"`
}

// Setup applies cfg to the standard logger. When a Google Cloud project is
// configured, entries are mirrored to Cloud Logging; the returned func
// flushes and closes that client.
func Setup(ctx context.Context, cfg Config, out io.Writer) (func(), error) {
	if out == nil {
		out = os.Stdout
	}

	log.SetOutput(out)

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.Project == "" {
		return func() {}, nil
	}

	hook, err := NewCloudHook(ctx, cfg.Project, cfg.LogID)
	if err != nil {
		return nil, err
	}

	log.AddHook(hook)

	return hook.Close, nil
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/lixenwraith/rainfield/config"
)

// setupLogging returns a file logger when debug is set, otherwise a discarding logger
// The closer is nil when no file was opened
func setupLogging(cfg config.LogConfig, level slog.Level) (*slog.Logger, io.Closer, error) {
	if !cfg.Debug || cfg.File == "" {
		return slog.New(slog.DiscardHandler), nil, nil
	}

	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("log: create %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("log: open %s: %w", cfg.File, err)
	}

	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})).
		With("run", uuid.New().String())
	return log, f, nil
}

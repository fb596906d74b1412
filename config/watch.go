package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// watchDebounce coalesces editor save bursts into one reload
const watchDebounce = 100 * time.Millisecond

// ReadLines reads text.lines from a YAML file
func ReadLines(path string) ([]string, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return k.Strings("text.lines"), nil
}

// Watch calls onChange with the new text.lines each time path is saved with different lines
// It blocks until ctx is cancelled
func Watch(ctx context.Context, path string, onChange func([]string)) error {
	log := LoggerFrom(ctx).With("component", "watch", "file", path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors replace files on save, so the directory is watched rather than the file
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	current, err := ReadLines(abs)
	if err != nil {
		log.Warn("initial read failed", "error", err)
	}

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(watchDebounce)

		case <-debounce.C:
			lines, err := ReadLines(abs)
			if err != nil {
				log.Warn("reload failed", "error", err)
				continue
			}
			if slices.Equal(lines, current) {
				continue
			}
			current = lines
			log.Info("text changed", "lines", len(lines))
			onChange(lines)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				debounce.Reset(watchDebounce)
				continue
			}
			log.Error("watcher error", "error", err)
		}
	}
}

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 150 * time.Millisecond

// RunWatch renders script to output and renders again every time the script changes.
// It returns when ctx is cancelled.
func RunWatch(ctx context.Context, opts RunOptions, script, output string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(cfg)

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	changes, err := watchFile(ctx, script, DefaultDebounce)
	if err != nil {
		return err
	}

	rerender := func() {
		res, err := render(ctx, cfg, stores, logger, script, output)
		if err != nil {
			printSystemMessage("Render failed: %v", err)
			return
		}
		printSystemMessage("Rendered %d lines to '%s' (%d rejected).", res.Lines, res.Output, res.Rejected)
	}

	logger.Info("Starting Watcher", "script", script)
	rerender()

	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-changes:
			if !ok {
				return nil
			}
			printSystemMessage("Change detected in '%s'.", name)
			rerender()
		}
	}
}

// watchFile reports changes to path. Editors often replace files on save,
// so the parent directory is watched and events are filtered by name.
// Bursts of events within debounce collapse into one.
func watchFile(ctx context.Context, path string, debounce time.Duration) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		defer w.Close()

		var (
			timer   *time.Timer
			pending <-chan time.Time
		)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target || !evt.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				pending = timer.C
			case <-pending:
				pending = nil
				select {
				case ch <- target:
				case <-ctx.Done():
					return
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return ch, nil
}

func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/modelspec/internal/document"
)

// watchValidate validates paths, then again after every change to a
// document until interrupted.
func watchValidate(ctx context.Context, cc *CommandContext, paths []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, p := range paths {
		if err := watchPath(watcher, p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}

	r := cc.Renderer
	rerun := func(trigger string) {
		if trigger != "" {
			r.Println("")
			r.Muted(fmt.Sprintf("Change detected: %s", filepath.Base(trigger)))
		}
		if _, err := validateOnce(ctx, cc, paths); err != nil {
			r.Error(err.Error())
		}
	}

	rerun("")
	r.Muted("Watching for changes. Press Ctrl+C to stop.")

	debounce := time.Duration(cc.Cfg.GetWatchConfig().DebounceMillis) * time.Millisecond
	watchLoop(ctx, watcher, debounce, rerun, func(err error) {
		cc.Logger.Warn("watcher error", "error", err)
	})
	return nil
}

// watchPath adds a directory tree, or the directory holding a file.
func watchPath(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(path))
	}
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if p != path && len(info.Name()) > 0 && info.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

// watchLoop calls onChange once a burst of document events has been quiet
// for debounce. onChange runs on the calling goroutine, so no run is in
// flight once watchLoop returns. It returns when ctx is done or the watcher
// closes.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, onChange func(trigger string), onError func(error)) {
	var (
		debounceTimer *time.Timer
		fire          <-chan time.Time
		trigger       string
	)
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fire:
			fire = nil
			if ctx.Err() == nil {
				onChange(trigger)
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// New directories are watched as they appear.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchPath(watcher, event.Name)
					continue
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !document.HasExtension(event.Name) {
				continue
			}

			trigger = event.Name
			if debounceTimer == nil {
				debounceTimer = time.NewTimer(debounce)
			} else {
				debounceTimer.Reset(debounce)
			}
			fire = debounceTimer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches rapid editor events into one re-analysis.
const debounceWindow = 500 * time.Millisecond

// Watch runs an initial analysis, then re-analyzes whenever a Go file
// changes. Re-runs go through the shared parse cache, so only changed
// files are re-parsed.
func (p *Pipeline) Watch(ctx context.Context) error {
	if err := p.Analyze(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := p.watchDirsStage(watcher); err != nil {
		return err
	}

	fmt.Printf("\n👀 Watching %s for changes (Ctrl+C to stop)...\n", p.Root)

	var timer *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Directories created after startup join the watch, so
			// files added inside them are seen too.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !p.Crawler.Ignored(filepath.Base(event.Name)) {
						_ = watcher.Add(event.Name)
					}
					continue
				}
			}
			if !strings.HasSuffix(event.Name, ".go") {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				pending = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case <-pending:
			timer = nil
			pending = nil
			fmt.Println("\n🔄 Change detected, re-analyzing...")
			if err := p.Analyze(ctx); err != nil {
				p.Log.Error("re-analysis failed", slog.String("error", err.Error()))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.Log.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// watchDirsStage registers the project's directory tree, skipping the
// same directories the crawler skips.
func (p *Pipeline) watchDirsStage(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(p.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != p.Root && p.Crawler.Ignored(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Package watch re-indexes the export root when transcripts change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Zuo-Peng/wca/internal/scan"
)

const DefaultDebounce = 500 * time.Millisecond

type Watcher struct {
	Root     string
	Debounce time.Duration
	// OnChange receives the sorted set of export paths touched since the
	// previous call. Calls never overlap.
	OnChange func(paths []string)
	Logger   *slog.Logger
}

// Run blocks until ctx is cancelled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := addTree(fw, w.Root); err != nil {
		return err
	}
	logger.Info("watching", "root", w.Root)

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) && !hidden(ev.Name) {
				if err := addTree(fw, ev.Name); err != nil {
					logger.Warn("watch new directory", "path", ev.Name, "error", err)
				}
				continue
			}
			if !relevant(ev) {
				continue
			}
			logger.Debug("change", "path", ev.Name, "op", ev.Op.String())
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)
			if w.OnChange != nil {
				w.OnChange(paths)
			}
		}
	}
}

// relevant reports whether ev touches an export file in a way that can
// change the index.
func relevant(ev fsnotify.Event) bool {
	if !scan.IsExport(ev.Name) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

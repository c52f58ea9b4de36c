package utils

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileWatcher polls a download directory for files produced by the browser
type FileWatcher struct {
	Interval      time.Duration
	PartialSuffix string
}

// NewFileWatcher creates a watcher with the given poll interval and in-progress suffix
func NewFileWatcher(interval time.Duration, partialSuffix string) *FileWatcher {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &FileWatcher{
		Interval:      interval,
		PartialSuffix: partialSuffix,
	}
}

type fileInfo struct {
	path    string
	name    string
	modTime time.Time
}

// Snapshot returns the names of the regular files currently in dir
func (w *FileWatcher) Snapshot(dir string) map[string]struct{} {
	names := make(map[string]struct{})
	for _, f := range listFiles(dir) {
		names[f.name] = struct{}{}
	}
	return names
}

// WaitSince returns the newest complete file in dir modified strictly after since
// whose extension is in exts (any extension when exts is empty).
// The boolean is false when nothing arrived before timeout.
func (w *FileWatcher) WaitSince(ctx context.Context, dir string, since time.Time, exts []string, timeout time.Duration) (string, bool) {
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = true
	}
	return w.poll(ctx, timeout, func() (string, bool) {
		return newest(listFiles(dir), func(f fileInfo) bool {
			if w.isPartial(f.name) || !f.modTime.After(since) {
				return false
			}
			return len(allowed) == 0 || allowed[strings.ToLower(filepath.Ext(f.name))]
		})
	})
}

// WaitNovel returns the newest complete file in dir whose name is not in before
func (w *FileWatcher) WaitNovel(ctx context.Context, dir string, before map[string]struct{}, timeout time.Duration) (string, bool) {
	return w.poll(ctx, timeout, func() (string, bool) {
		return newest(listFiles(dir), func(f fileInfo) bool {
			if w.isPartial(f.name) {
				return false
			}
			_, seen := before[f.name]
			return !seen
		})
	})
}

func (w *FileWatcher) poll(ctx context.Context, timeout time.Duration, check func() (string, bool)) (string, bool) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		if path, ok := check(); ok {
			return path, true
		}
		if !time.Now().Before(deadline) {
			return "", false
		}
		select {
		case <-ctx.Done():
			return "", false
		case <-ticker.C:
		}
	}
}

func (w *FileWatcher) isPartial(name string) bool {
	return w.PartialSuffix != "" && strings.HasSuffix(name, w.PartialSuffix)
}

func listFiles(dir string) []fileInfo {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	files := make([]fileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, fileInfo{
			path:    filepath.Join(dir, e.Name()),
			name:    e.Name(),
			modTime: info.ModTime(),
		})
	}
	return files
}

// newest picks the most recently modified file accepted by keep
func newest(files []fileInfo, keep func(fileInfo) bool) (string, bool) {
	var best *fileInfo
	for i := range files {
		if !keep(files[i]) {
			continue
		}
		if best == nil || files[i].modTime.After(best.modTime) {
			best = &files[i]
		}
	}
	if best == nil {
		return "", false
	}
	return best.path, true
}

// Package watch re-runs an import whenever one of the exported files it
// depends on changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/wowscene/internal/logger"
	"github.com/Faultbox/wowscene/pkg/scene"
)

// DefaultDelay is how long a burst of file events is collected before the
// callback runs. Exporters write several files per model.
const DefaultDelay = 500 * time.Millisecond

// Watcher calls Rebuild after files an import read have changed.
type Watcher struct {
	// Rebuild runs once at start and again after every burst of changes. It
	// returns the new scene, whose source directories are watched next.
	Rebuild func() (*scene.Node, error)
	Delay   time.Duration

	fs   *fsnotify.Watcher
	dirs map[string]bool
}

// New returns a Watcher for rebuild.
func New(rebuild func() (*scene.Node, error)) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		Rebuild: rebuild,
		Delay:   DefaultDelay,
		fs:      fs,
		dirs:    make(map[string]bool),
	}, nil
}

// Run rebuilds until ctx is done. A failed rebuild is logged and the
// previous watch list is kept.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	w.rebuild()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !Relevant(e.Name) || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("file changed", zap.String("file", e.Name), zap.Stringer("op", e.Op))
			if timer == nil {
				timer = time.NewTimer(w.Delay)
			} else {
				timer.Reset(w.Delay)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			w.rebuild()
		}
	}
}

func (w *Watcher) rebuild() {
	root, err := w.Rebuild()
	if err != nil {
		logger.Error("rebuild failed", zap.Error(err))
		return
	}
	for _, dir := range Dirs(root) {
		if w.dirs[dir] {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.dirs[dir] = true
	}
	logger.Debug("watching", zap.Int("dirs", len(w.dirs)))
}

// Dirs returns the directories holding the source files of a scene, in
// tree order.
func Dirs(root *scene.Node) []string {
	var dirs []string
	seen := make(map[string]bool)
	scene.Walk(root, func(n *scene.Node) bool {
		if n.SourcePath == "" {
			return true
		}
		dir := filepath.Dir(n.SourcePath)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
		return true
	})
	return dirs
}

// Relevant reports whether a change to the named file can affect an import.
func Relevant(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".obj", ".mtl", ".csv", ".json", ".png", ".jpg", ".jpeg", ".bmp", ".tga":
		return true
	}
	return false
}

package service

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces editor write bursts before re-syncing a note
const debounce = 2 * time.Second

// Watcher keeps card rows in step with vault edits between full syncs
type Watcher struct {
	svc  *Service
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// Watch starts a recursive vault watcher; cancel ctx or call Close to stop
func (s *Service) Watch(ctx context.Context) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	root := s.Vault.Root()
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != root {
				return filepath.SkipDir
			}
			return fsw.Add(p)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{svc: s, fsw: fsw, done: make(chan struct{})}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher and waits for its loop to exit
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	// Pending paths wait out the debounce window before syncing
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev, pending)
			if len(pending) > 0 && fire == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.svc.Log.Warn().Err(err).Msg("vault watcher error")
		case <-fire:
			timer = nil
			fire = nil
			for p := range pending {
				delete(pending, p)
				if _, err := w.svc.syncFile(ctx, p); err != nil {
					w.svc.Log.Warn().Err(err).Str("note", p).Msg("vault resync failed")
				}
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event, pending map[string]struct{}) {
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if !strings.HasPrefix(filepath.Base(ev.Name), ".") {
				_ = w.fsw.Add(ev.Name)
			}
			return
		}
	}
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Rename) {
		return
	}
	rel, ok := w.svc.Vault.Rel(ev.Name)
	if !ok || !strings.HasSuffix(rel, ".md") {
		return
	}
	if strings.HasPrefix(filepath.Base(rel), ".") {
		return // temp files from atomic writes
	}
	pending[rel] = struct{}{}
}

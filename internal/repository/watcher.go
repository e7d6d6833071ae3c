package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Coubiac/signstamp/internal/logger"
)

// DefaultDebounce coalesces bursty fsnotify events (write+chmod/rename) into one check.
const DefaultDebounce = 200 * time.Millisecond

// Watched is a collection whose file can be observed for external edits.
// JSONCollection implements this interface.
type Watched interface {
	Name() string
	Path() (string, error)
	SyncFromDisk() (bool, error)
}

// ChangeFunc is called with the collection name after its file was changed by someone else.
type ChangeFunc func(collection string)

// Watcher notifies about edits of collection files made outside this process.
type Watcher struct {
	collections []Watched
	onChange    ChangeFunc
	debounce    time.Duration
}

// NewWatcher creates a watcher for the given collections.
func NewWatcher(onChange ChangeFunc, collections ...Watched) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("onChange callback is required")
	}
	if len(collections) == 0 {
		return nil, errors.New("at least one collection is required")
	}
	return &Watcher{collections: collections, onChange: onChange, debounce: DefaultDebounce}, nil
}

// Start watches the parent directories (not the files) so atomic replace sequences
// (temp+rename) are still observed on Linux and Windows. Events are filtered by path
// and debounced per collection. A directory that does not exist yet is not created:
// its nearest existing ancestor is watched until the directory shows up. The caller
// owns ctx: cancel it to stop the goroutine and close the watcher.
func (w *Watcher) Start(ctx context.Context) error {
	byPath := make(map[string]Watched, len(w.collections))
	byDir := make(map[string][]Watched)
	for _, c := range w.collections {
		path, err := c.Path()
		if err != nil {
			return fmt.Errorf("resolve %s file: %w", c.Name(), err)
		}
		path = filepath.Clean(path)
		byPath[path] = c
		dir := filepath.Dir(path)
		byDir[dir] = append(byDir[dir], c)
		// baseline so the first event compares against current content
		if _, err := c.SyncFromDisk(); err != nil {
			logger.WithComponent("watcher").Warnf("initial read of %s failed: %v", c.Name(), err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dw := &dirWatch{watcher: watcher, watched: make(map[string]struct{}), pending: make(map[string]struct{})}
	for dir := range byDir {
		if _, err := dw.attach(dir); err != nil {
			watcher.Close()
			return fmt.Errorf("watch dir: %w", err)
		}
	}

	go w.loop(ctx, dw, byPath, byDir)
	return nil
}

// dirWatch tracks which data directories are watched directly and which ones
// are still waiting to be created.
type dirWatch struct {
	watcher *fsnotify.Watcher
	watched map[string]struct{}
	pending map[string]struct{}
}

// attach watches dir when it exists and reports true. Otherwise it watches the
// nearest existing ancestor and keeps dir pending.
func (d *dirWatch) attach(dir string) (bool, error) {
	target, exists, err := nearestExisting(dir)
	if err != nil {
		return false, err
	}
	if _, ok := d.watched[target]; !ok {
		if err := d.watcher.Add(target); err != nil {
			return false, err
		}
		d.watched[target] = struct{}{}
	}
	if !exists {
		d.pending[dir] = struct{}{}
		logger.WithComponent("watcher").Debugf("%s does not exist yet, watching %s", dir, target)
		return false, nil
	}
	delete(d.pending, dir)
	return true, nil
}

// nearestExisting returns dir itself when it is an existing directory, or its
// closest ancestor that is.
func nearestExisting(dir string) (string, bool, error) {
	for current := dir; ; {
		info, err := os.Stat(current)
		switch {
		case err == nil && info.IsDir():
			return current, current == dir, nil
		case err == nil:
			return "", false, fmt.Errorf("%s is not a directory", current)
		case !errors.Is(err, fs.ErrNotExist):
			return "", false, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false, fmt.Errorf("no existing ancestor of %s", dir)
		}
		current = parent
	}
}

func (w *Watcher) loop(ctx context.Context, dw *dirWatch, byPath map[string]Watched, byDir map[string][]Watched) {
	defer dw.watcher.Close()

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	schedule := func(c Watched) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[c.Name()]; ok {
			t.Stop()
		}
		timers[c.Name()] = time.AfterFunc(w.debounce, func() { w.check(ctx, c) })
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && len(dw.pending) > 0 {
				for dir := range dw.pending {
					attached, err := dw.attach(dir)
					if err != nil {
						logger.WithComponent("watcher").Warnf("cannot watch %s: %v", dir, err)
						continue
					}
					if attached {
						logger.WithComponent("watcher").Debugf("watching %s", dir)
						// files may have been written before the watch was added
						for _, c := range byDir[dir] {
							schedule(c)
						}
					}
				}
			}
			c, watched := byPath[filepath.Clean(event.Name)]
			if !watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule(c)
			}
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			logger.WithComponent("watcher").Errorf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) check(ctx context.Context, c Watched) {
	if ctx.Err() != nil {
		return
	}
	changed, err := c.SyncFromDisk()
	if err != nil {
		logger.WithComponent("watcher").Warnf("reload check for %s failed: %v", c.Name(), err)
		return
	}
	if !changed {
		logger.WithComponent("watcher").Tracef("%s unchanged on disk", c.Name())
		return
	}
	logger.WithComponent("watcher").Infof("%s changed on disk", c.Name())
	w.onChange(c.Name())
}

package site

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
	"go.uber.org/zap"

	"github.com/Bitlatte/folio/internal/logging"
)

// DefaultDebounce is how long Watch waits after the last change before
// calling rebuild.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls Rebuild once changes under Dirs settle.
type Watcher struct {
	Dirs     []string
	Debounce time.Duration
	Logger   *zap.Logger
	Rebuild  func()
}

// Watch runs w until ctx is done. Directories created later are watched too.
func Watch(ctx context.Context, dirs []string, logger *zap.Logger, rebuild func()) error {
	w := &Watcher{Dirs: dirs, Debounce: DefaultDebounce, Logger: logger, Rebuild: rebuild}
	return w.Run(ctx)
}

func (w *Watcher) Run(ctx context.Context) error {
	log := logging.OrNop(w.Logger)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range w.Dirs {
		if !exists(dir) {
			log.Info("directory not found, not watching", zap.String("dir", dir))
			continue
		}
		w.addTree(watcher, dir, log)
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("change detected", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				w.addTree(watcher, event.Name, log)
			}

			mu.Lock()
			if timer != nil && timer.Stop() {
				wg.Done()
			}
			wg.Add(1)
			timer = time.AfterFunc(debounce, func() {
				defer wg.Done()
				if ctx.Err() != nil {
					return
				}
				w.Rebuild()
			})
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Warn("watcher overflow, some changes may be missed", zap.Error(err))
				continue
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}

// addTree watches root and every directory below it.
func (w *Watcher) addTree(watcher *fsnotify.Watcher, root string, log *zap.Logger) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("walk for watching", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				log.Warn("watch directory", zap.String("dir", path), zap.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		log.Warn("walk for watching", zap.String("dir", root), zap.Error(err))
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

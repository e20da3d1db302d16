package session

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchFile follows the session file and folds external writes back into the
// store, so a second portalctl process observes token rotation done by the
// first instead of refreshing with a stale token. Blocks until ctx is done.
func WatchFile(ctx context.Context, store *Store, storage *FileStorage, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: the file is replaced by rename on every save, and
	// watching the inode directly would go stale after the first rotation.
	if err := watcher.Add(filepath.Dir(storage.Path())); err != nil {
		return err
	}

	target := filepath.Clean(storage.Path())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			state, found, err := storage.Load()
			if err != nil {
				logger.Warn("failed to reload session file", zap.Error(err))
				continue
			}
			if !found {
				continue
			}
			cur := store.Current()
			if state.AccessToken == cur.AccessToken &&
				state.RefreshToken == cur.RefreshToken &&
				state.IsAuthenticated == cur.IsAuthenticated {
				continue
			}
			logger.Debug("session file changed externally, reloading")
			store.replaceFromStorage(state)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("session watcher error", zap.Error(err))
		}
	}
}

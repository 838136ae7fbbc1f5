package session

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads path whenever it changes until ctx is done. Reloads keep
// the budget and transaction log; a failed reload is logged and the
// previous data stays on screen.
func (c *Controller) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	go c.runWatcher(ctx, watcher, path)

	return nil
}

// runWatcher processes file system events with debouncing.
func (c *Controller) runWatcher(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Spreadsheet apps save by writing a temp file and renaming it.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(c.debounce, func() {
				c.handleFileChange(ctx, watcher, path)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.logger.Error("file watcher error", "err", err)
		}
	}
}

// handleFileChange reloads the file and re-adds the watch, which a rename
// drops.
func (c *Controller) handleFileChange(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	if ctx.Err() != nil {
		return
	}

	if err := c.reload(ctx, path); err != nil {
		c.logger.Warn("reload failed", "path", path, "err", err)
	}

	if err := watcher.Add(path); err != nil {
		c.logger.Warn("failed to watch file", "path", path, "err", err)
	}
}

func (c *Controller) reload(ctx context.Context, path string) error {
	data, err := c.loader.Load(ctx, path)
	if err != nil {
		return err
	}
	if data.IsEmpty() {
		return ErrEmptyData
	}

	c.mu.Lock()
	c.data = data
	c.path = path
	c.status = c.expenseStatus()
	c.mu.Unlock()

	c.logger.Info("reloaded budget", "path", path)
	c.present(ctx)
	return nil
}

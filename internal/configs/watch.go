package configs

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/sbilibin2017/gophaproxy/internal/logger"
)

// Watch reloads path on every write and passes the result to onChange until
// ctx is cancelled. A reload that fails to parse is logged and skipped.
func Watch(ctx context.Context, path string, onChange func(*AgentConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	logger.Log.Info("watching config", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic saves arrive as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadFile(path)
			if err != nil {
				logger.Log.Error("config reload failed", zap.String("path", path), zap.Error(err))
				continue
			}

			logger.Log.Info("config reloaded", zap.String("path", path))
			onChange(cfg)

			// The inode may have been replaced.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("config watcher error", zap.Error(err))
		}
	}
}

package filesystem

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch reports changes to the canvas file and the header image, including
// edits made outside this process. onChange receives the file's base name.
// The base directory is created if missing. The watch stops when ctx is done.
func (s *fsStore) Watch(ctx context.Context, onChange func(name string)) error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.basePath); err != nil {
		watcher.Close()
		return err
	}

	log := logrus.WithField("path", s.basePath)
	log.Debug("Watching data directory")

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Base(event.Name)
				if name != CanvasFileName && name != HeaderImageFileName {
					continue
				}
				if !event.Has(fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename) {
					continue
				}
				log.WithFields(logrus.Fields{"file": name, "op": event.Op.String()}).Debug("Data file changed")
				onChange(name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("File watcher error")
			}
		}
	}()

	return nil
}

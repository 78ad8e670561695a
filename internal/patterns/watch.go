package patterns

import (
	"fmt"

	"gopkg.in/fsnotify.v1"
)

// Watch starts reloading pattern files as they change on disk.
func (r *Registry) Watch() error {
	r.mu.RLock()
	dir := r.dir
	r.mu.RUnlock()
	if dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})
	go r.watchLoop(watcher, r.stopChan)

	r.log.Info("watching pattern directory", "dir", dir)
	return nil
}

func (r *Registry) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) {
				continue
			}
			switch {
			case event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name)
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.log.Warn("pattern watcher error", "error", err)
		}
	}
}

func (r *Registry) handleFileChange(path string) {
	if err := r.LoadFile(path); err != nil {
		// Editors often create the file before writing it; the write event
		// that follows reloads it.
		r.log.Warn("pattern file not loaded", "path", path, "error", err)
		return
	}
	r.log.Info("pattern file loaded", "path", path)
	r.notify()
}

func (r *Registry) handleFileRemove(path string) {
	if err := r.Reload(); err != nil {
		r.log.Warn("pattern reload after remove", "path", path, "error", err)
	}
	r.log.Info("pattern file removed", "path", path)
	r.notify()
}

func (r *Registry) notify() {
	r.mu.RLock()
	fn := r.onChange
	r.mu.RUnlock()
	if fn != nil {
		fn(r.Matcher())
	}
}

// StopWatch stops the watcher started by Watch.
func (r *Registry) StopWatch() {
	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

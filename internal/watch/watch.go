// Package watch notifies when a save file is rewritten by another process.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Debounce is the quiet period after the last event before the callback runs.
const Debounce = 150 * time.Millisecond

// Watcher monitors one file. The directory is watched rather than the file,
// because atomic saves replace the file with a rename and a file watch would
// be lost with the old inode.
type Watcher struct {
	File string

	onChange func()
	done     chan struct{}
	watcher  *fsnotify.Watcher
}

// New creates a watcher for file that calls onChange after it settles.
func New(file string, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		File:     abs,
		onChange: onChange,
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.File)); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending <-chan time.Time
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.File {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(Debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("file", w.File).Msg("watch error")
		case <-pending:
			pending = nil
			w.onChange()
		}
	}
}

package tui

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// debounce is how long the watcher waits after the last write before
// asking for a reload. SQLite touches the main file, -wal and -shm in bursts.
const debounce = 200 * time.Millisecond

// StartWatcher watches dbPath's directory and calls send with a
// FileChangedMsg after writes to the database or its journal files settle.
// The returned func stops the watcher.
func StartWatcher(dbPath string, send func(tea.Msg)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		watcher.Close()
		return nil, err
	}

	base := filepath.Base(dbPath)
	done := make(chan struct{})

	go func() {
		var (
			mu    sync.Mutex
			timer *time.Timer
		)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(event.Name), base) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					select {
					case <-done:
					default:
						send(FileChangedMsg{})
					}
				})
				mu.Unlock()

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}

			case <-done:
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				mu.Unlock()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			watcher.Close()
		})
	}, nil
}

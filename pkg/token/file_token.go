package token

import (
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// File is a Provider for an API key which is backed by a file. This
// will lookup the value from the file, and will watch the file for
// changes, and re-read when required.
//
// This is typically used for keys mounted into a container from a
// secret store, which the orchestrator rewrites in place if and when
// the key is rotated.
type File struct {
	mutex sync.RWMutex
	token string
}

func NewFile(filename string) (*File, error) {

	value, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	fileToken := File{
		token: strings.TrimSpace(string(value)),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					value, err := os.ReadFile(filename)
					if err == nil {
						fileToken.mutex.Lock()
						fileToken.token = strings.TrimSpace(string(value))
						fileToken.mutex.Unlock()
					}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	err = watcher.Add(filename)
	if err != nil {
		return nil, err
	}

	return &fileToken, nil
}

func (t *File) Token() string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	return t.token
}

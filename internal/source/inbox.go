package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

// DefaultInboxSettle is how long a file must go without writes before it is
// handed out.
const DefaultInboxSettle = 250 * time.Millisecond

// Inbox watches a directory and reports files created or written in it once
// they stop changing.
type Inbox struct {
	dir     string
	settle  time.Duration
	watcher *fsnotify.Watcher
	paths   chan string
}

// NewInbox creates dir when needed and starts watching it.
func NewInbox(dir string) (*Inbox, error) {
	dir, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("expanding inbox path: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Inbox{
		dir:     dir,
		settle:  DefaultInboxSettle,
		watcher: watcher,
		paths:   make(chan string, 16),
	}, nil
}

// Dir returns the watched directory.
func (in *Inbox) Dir() string {
	return in.dir
}

// Paths delivers settled files. It is closed when Run returns.
func (in *Inbox) Paths() <-chan string {
	return in.paths
}

// Run forwards settled files to Paths until ctx is done or the watcher is
// closed.
func (in *Inbox) Run(ctx context.Context) {
	defer close(in.paths)

	log.Info("Watching inbox", "dir", in.dir)

	ticker := time.NewTicker(in.settle / 2)
	defer ticker.Stop()

	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if hidden(event.Name) {
				continue
			}
			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			pending[event.Name] = time.Now()

		case err, ok := <-in.watcher.Errors:
			if !ok {
				return
			}
			log.Debug("fsnotify error", "dir", in.dir, "error", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < in.settle {
					continue
				}
				delete(pending, path)
				select {
				case in.paths <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// Close stops watching.
func (in *Inbox) Close() error {
	return in.watcher.Close()
}

// hidden skips dotfiles and editor swap files.
func hidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~")
}

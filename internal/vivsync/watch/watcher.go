// Package watch drives the sync client without a host editor: it
// watches a directory tree for writes and synthesizes the mutation and
// idle events an editor would normally provide.
package watch

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/rjeczalik/notify"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/vivify-tools/vivsync/internal/utils"
	"github.com/vivify-tools/vivsync/internal/vivsync"
	"github.com/vivify-tools/vivsync/internal/vivsync/trigger"
)

// DefaultIdle is how long after the last write the idle event fires.
const DefaultIdle = 500 * time.Millisecond

var defaultIgnoreLines = []string{
	".git/",
	"node_modules/",
	".DS_Store",
	"*.swp",
	"*.swo",
	"*~",
	"4913", // vim write-test file
	"*.tmp",
	"*.log",
}

// Watcher tails a directory and feeds events into a Client.
type Watcher struct {
	client *vivsync.Client
	dir    string
	idle   time.Duration
	ignore *gitignore.GitIgnore
	events chan notify.EventInfo
}

// New builds a watcher rooted at dir. Extra ignore patterns use
// gitignore syntax and extend the built-in noise filter.
func New(client *vivsync.Client, dir string, idle time.Duration, ignoreLines ...string) (*Watcher, error) {
	resolved, err := utils.ResolvePath(dir)
	if err != nil {
		return nil, err
	}
	if idle <= 0 {
		idle = DefaultIdle
	}

	lines := append(append([]string(nil), defaultIgnoreLines...), ignoreLines...)
	return &Watcher{
		client: client,
		dir:    resolved,
		idle:   idle,
		ignore: gitignore.CompileIgnoreLines(lines...),
		events: make(chan notify.EventInfo, 64),
	}, nil
}

// Run watches until ctx is cancelled. Each write becomes a TextChanged
// event; a quiet period after the last write becomes an Idle event for
// the last touched file, so idle-triggered mode works without an
// editor's CursorHold.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("watch start", "dir", w.dir, "idle", w.idle)

	if err := notify.Watch(w.dir+"/...", w.events, notify.Write); err != nil {
		return err
	}
	defer notify.Stop(w.events)

	idleTimer := time.NewTimer(w.idle)
	if !idleTimer.Stop() {
		<-idleTimer.C
	}
	defer idleTimer.Stop()

	var lastPath, lastFiletype string

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stop", "dir", w.dir)
			return ctx.Err()

		case ev := <-w.events:
			path := ev.Path()
			if w.ignore.MatchesPath(path) {
				continue
			}

			filetype := FiletypeOf(path)
			slog.Debug("watch: write", "path", path, "filetype", filetype)

			w.client.HandleEvent(trigger.Event{
				Kind:     trigger.TextChanged,
				Path:     path,
				Filetype: filetype,
			}, fileContent(path))

			lastPath, lastFiletype = path, filetype
			idleTimer.Reset(w.idle)

		case <-idleTimer.C:
			if lastPath == "" {
				continue
			}
			slog.Debug("watch: idle", "path", lastPath)
			w.client.HandleEvent(trigger.Event{
				Kind:     trigger.Idle,
				Path:     lastPath,
				Filetype: lastFiletype,
			}, fileContent(lastPath))
		}
	}
}

func fileContent(path string) func() (string, error) {
	return func() (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// FiletypeOf maps a file extension to the filetype name an editor
// would declare, so the configured filetype patterns apply unchanged.
func FiletypeOf(path string) string {
	ext := ""
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			ext = path[i+1:]
			break
		}
		if path[i] == '/' || path[i] == '\\' {
			break
		}
	}

	switch ext {
	case "md", "markdown", "mdown", "mkd":
		return "markdown"
	case "adoc", "asciidoc":
		return "asciidoc"
	case "wiki":
		return "vimwiki"
	case "txt", "text":
		return "text"
	default:
		return ext
	}
}

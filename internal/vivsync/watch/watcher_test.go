package watch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivify-tools/vivsync/internal/vivsync"
	"github.com/vivify-tools/vivsync/internal/vivsync/config"
)

func TestFiletypeOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/u/notes.md", "markdown"},
		{"/home/u/notes.markdown", "markdown"},
		{"/home/u/notes.mkd", "markdown"},
		{"/home/u/doc.adoc", "asciidoc"},
		{"/home/u/index.wiki", "vimwiki"},
		{"/home/u/todo.txt", "text"},
		{"/home/u/main.go", "go"},
		{"/home/u/Makefile", ""},
		{"/home/u.dir/README", ""},
		{`C:\Users\x.md`, "markdown"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FiletypeOf(tt.path))
		})
	}
}

func TestNew_BadDirRejected(t *testing.T) {
	_, err := New(nil, "", DefaultIdle)
	assert.Error(t, err)
}

func TestNew_IgnoreList(t *testing.T) {
	w, err := New(nil, t.TempDir(), 0, "drafts/")
	require.NoError(t, err)

	assert.True(t, w.ignore.MatchesPath("/x/.git/config"))
	assert.True(t, w.ignore.MatchesPath("/x/notes.md.swp"))
	assert.True(t, w.ignore.MatchesPath("/x/drafts/a.md"))
	assert.False(t, w.ignore.MatchesPath("/x/notes.md"))
	assert.Equal(t, DefaultIdle, w.idle)
}

func TestRun_SyncsWritesInInstantMode(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := &config.Config{Port: port, InstantRefresh: true, Filetypes: []string{"markdown"}}
	require.NoError(t, cfg.Validate())
	client := vivsync.New(cfg)

	dir := t.TempDir()
	w, err := New(client, dir, 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the recursive watch a moment to arm
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# hi"), 0o644))

	assert.Eventually(t, func() bool {
		client.Flush()
		mu.Lock()
		defer mu.Unlock()
		for _, b := range bodies {
			if b == `{"content":"# hi"}` {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestRun_NonSyncableFiletypeIgnored(t *testing.T) {
	var hits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	cfg := &config.Config{Port: port, InstantRefresh: true, Filetypes: []string{"markdown"}}
	require.NoError(t, cfg.Validate())
	client := vivsync.New(cfg)

	dir := t.TempDir()
	w, err := New(client, dir, 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0o644))

	time.Sleep(500 * time.Millisecond)
	client.Flush()
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, hits)
}

// Package vivsync is the host-independent Vivify sync client: it keeps
// a live-preview server updated with buffer content and cursor
// position, and opens preview windows via the external viewer binary.
package vivsync

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/vivify-tools/vivsync/internal/vivsync/addr"
	"github.com/vivify-tools/vivsync/internal/vivsync/config"
	"github.com/vivify-tools/vivsync/internal/vivsync/dispatch"
	"github.com/vivify-tools/vivsync/internal/vivsync/doctor"
	"github.com/vivify-tools/vivsync/internal/vivsync/payload"
	"github.com/vivify-tools/vivsync/internal/vivsync/trigger"
	"github.com/vivify-tools/vivsync/internal/vivsync/viewer"
)

// Client bridges editing events to the Vivify server. Configuration is
// replaced wholesale by Reconfigure (single writer); event handlers
// and dispatch callbacks only ever read it.
type Client struct {
	cfg        atomic.Pointer[config.Config]
	dispatcher *dispatch.Dispatcher
	platform   addr.Platform
}

// New builds a Client around an already-validated config.
func New(cfg *config.Config) *Client {
	c := &Client{
		dispatcher: dispatch.New(),
		platform:   addr.Native(),
	}
	c.cfg.Store(cfg)
	return c
}

// Config returns the live configuration. Callers must not mutate it.
func (c *Client) Config() *config.Config {
	return c.cfg.Load()
}

// Reconfigure validates and swaps in a new configuration wholesale.
// Takes effect on the next event; in-flight dispatches are unaffected.
func (c *Client) Reconfigure(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg.Store(cfg)
	slog.Debug("client: reconfigured", "port", cfg.Port, "instant", cfg.InstantRefresh, "autoscroll", cfg.AutoScroll)
	return nil
}

// HandleEvent evaluates one editing event against the live config and
// fires at most one dispatch. Content is fetched lazily so cursor-only
// events never touch the buffer text. Unaddressable buffers and
// non-syncable filetypes are skipped silently.
func (c *Client) HandleEvent(ev trigger.Event, content func() (string, error)) {
	cfg := c.cfg.Load()

	switch trigger.ShouldSync(ev, cfg) {
	case trigger.SyncContent:
		text, err := content()
		if err != nil {
			slog.Debug("client: content unavailable", "path", ev.Path, "error", err)
			return
		}
		c.SyncText(ev.Path, text)
	case trigger.SyncCursor:
		c.SyncCursor(ev.Path, ev.Line)
	}
}

// SyncText pushes full buffer text to the viewer for path.
func (c *Client) SyncText(path, text string) {
	url, err := addr.ViewerURL(c.cfg.Load().ServerURL(), path, c.platform)
	if err != nil {
		// no addressable resource, nothing to sync
		return
	}
	c.dispatcher.Dispatch(url, payload.NewText(text))
}

// SyncCursor pushes a 1-based cursor line to the viewer for path.
func (c *Client) SyncCursor(path string, line int) {
	url, err := addr.ViewerURL(c.cfg.Load().ServerURL(), path, c.platform)
	if err != nil {
		return
	}
	c.dispatcher.Dispatch(url, payload.NewCursor(line))
}

// OpenViewer launches the external viewer on path at line and starts
// the dispatcher's startup grace window. A missing binary surfaces
// here, the one place transport problems are user-visible.
func (c *Client) OpenViewer(path string, line int) error {
	cfg := c.cfg.Load()
	opener := viewer.NewOpener(cfg.BinaryOrDefault())
	if err := opener.Open(path, line); err != nil {
		return err
	}
	c.dispatcher.NoteViewerOpened(cfg.ServerURL())
	return nil
}

// Health runs the advisory diagnostics once.
func (c *Client) Health(ctx context.Context) *doctor.Report {
	return doctor.Run(ctx, c.cfg.Load())
}

// Flush drains in-flight dispatches; for shutdown, never the event path.
func (c *Client) Flush() {
	c.dispatcher.Flush()
}

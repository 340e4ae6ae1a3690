// Package dispatch delivers sync payloads to the Vivify server as
// fire-and-forget HTTP POSTs. The caller never blocks on the network,
// never sees an error and never retries: the server may simply not be
// running, and the next edit is the retry. Transport failures are
// logged at debug level only.
package dispatch

import (
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/imroc/req/v3"

	"github.com/vivify-tools/vivsync/internal/version"
	"github.com/vivify-tools/vivsync/internal/vivsync/payload"
)

const (
	// GracePeriod suppresses dispatches right after a viewer open, so a
	// slow-starting server is not hit with a burst of doomed requests.
	GracePeriod = 2 * time.Second

	requestTimeout    = 3 * time.Second
	readyPollInterval = 250 * time.Millisecond
)

// Dispatcher owns the HTTP client and the startup-grace state. Safe
// for use from a single event loop plus its own completion goroutines.
type Dispatcher struct {
	client *req.Client

	gracePeriod  time.Duration
	pollInterval time.Duration

	mu         sync.Mutex
	graceUntil time.Time
	ready      bool

	wg sync.WaitGroup
}

// New builds a Dispatcher with the shared request client.
func New() *Dispatcher {
	client := req.C().
		SetTimeout(requestTimeout).
		SetUserAgent(version.AppName + "/" + version.Version).
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)

	return &Dispatcher{
		client:       client,
		gracePeriod:  GracePeriod,
		pollInterval: readyPollInterval,
	}
}

// Dispatch serializes the payload and POSTs it to url off the calling
// goroutine. It returns immediately; completion is only ever observed
// in logs. No ordering is guaranteed across concurrent dispatches and
// an issued dispatch cannot be cancelled.
func (d *Dispatcher) Dispatch(url string, p payload.Payload) {
	if d.suppressed() {
		slog.Debug("dispatch: suppressed during startup grace", "url", url)
		return
	}

	body, err := payload.Marshal(p)
	if err != nil {
		slog.Debug("dispatch: marshal failed", "url", url, "error", err)
		return
	}

	d.wg.Add(1)
	go d.post(url, body)
}

func (d *Dispatcher) post(url string, body []byte) {
	defer d.wg.Done()

	resp, err := d.client.R().
		SetContentType("application/json").
		SetHeader("X-Request-Id", uuid.NewString()).
		SetBodyBytes(body).
		Post(url)
	if err != nil {
		// server absent or mid-restart; the next edit re-triggers
		slog.Debug("dispatch: request failed", "url", url, "error", err)
		return
	}

	d.markReady()
	if resp.IsErrorState() {
		slog.Debug("dispatch: server rejected payload", "url", url, "status", resp.StatusCode)
	}
}

// NoteViewerOpened starts the startup grace window after an "open
// viewer" command and polls the server in the background, so dispatch
// resumes as soon as any response is observed rather than only at
// window expiry.
func (d *Dispatcher) NoteViewerOpened(serverURL string) {
	d.mu.Lock()
	d.graceUntil = time.Now().Add(d.gracePeriod)
	d.ready = false
	d.mu.Unlock()

	d.wg.Add(1)
	go d.pollReady(serverURL)
}

func (d *Dispatcher) pollReady(serverURL string) {
	defer d.wg.Done()

	deadline := time.Now().Add(d.gracePeriod)
	for time.Now().Before(deadline) {
		resp, err := d.client.R().Get(serverURL + "/")
		if err == nil && resp.StatusCode < 500 {
			d.markReady()
			return
		}
		time.Sleep(d.pollInterval)
	}
}

// Flush blocks until all in-flight dispatches have completed. Used on
// shutdown so a final sync is not cut off mid-request; never called on
// the event path.
func (d *Dispatcher) Flush() {
	d.wg.Wait()
}

func (d *Dispatcher) suppressed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.ready && time.Now().Before(d.graceUntil)
}

func (d *Dispatcher) markReady() {
	d.mu.Lock()
	d.ready = true
	d.mu.Unlock()
}

// Package doctor runs read-only diagnostics: is the viewer binary
// reachable, is the Vivify server answering on the configured port.
// Purely advisory; nothing here changes sync behavior.
package doctor

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"

	"github.com/vivify-tools/vivsync/internal/version"
	"github.com/vivify-tools/vivsync/internal/vivsync/config"
	"github.com/vivify-tools/vivsync/internal/vivsync/viewer"
)

const probeTimeout = 2 * time.Second

// Report is the outcome of one diagnostic run.
type Report struct {
	Binary       string `json:"binary"`
	BinaryPath   string `json:"binary_path,omitempty"`
	BinaryFound  bool   `json:"binary_found"`
	BinaryError  string `json:"binary_error,omitempty"`
	ServerURL    string `json:"server_url"`
	ServerUp     bool   `json:"server_up"`
	ServerStatus int    `json:"server_status,omitempty"`
	ServerError  string `json:"server_error,omitempty"`
}

// Healthy reports whether everything checked out.
func (r *Report) Healthy() bool {
	return r.BinaryFound && r.ServerUp
}

// JSON renders the report for machine consumption.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Run probes the viewer binary and the server once.
func Run(ctx context.Context, cfg *config.Config) *Report {
	report := &Report{
		Binary:    cfg.BinaryOrDefault(),
		ServerURL: cfg.ServerURL(),
	}

	opener := viewer.NewOpener(report.Binary)
	if path, err := opener.Resolve(); err != nil {
		report.BinaryError = err.Error()
	} else {
		report.BinaryFound = true
		report.BinaryPath = path
	}

	client := req.C().
		SetTimeout(probeTimeout).
		SetUserAgent(version.AppName + "/" + version.Version)

	resp, err := client.R().SetContext(ctx).Get(report.ServerURL + "/")
	if err != nil {
		report.ServerError = err.Error()
		return report
	}

	report.ServerStatus = resp.StatusCode
	report.ServerUp = resp.StatusCode < 500
	return report
}

// Package viewer launches the external Vivify binary to open preview
// windows. The process is spawned detached: no stdio is captured and
// the caller never waits on it.
package viewer

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/vivify-tools/vivsync/internal/utils"
)

var ErrBinaryNotFound = errors.New("viewer: binary not found")

// Opener resolves and spawns the viewer binary.
type Opener struct {
	// binary is a custom path or a bare command name for PATH lookup.
	binary string
}

func NewOpener(binary string) *Opener {
	return &Opener{binary: binary}
}

// Resolve returns the executable path for the viewer binary. A custom
// path must exist as a file; a bare name goes through PATH lookup.
// Missing binaries are a user-visible error here, unlike transport
// failures elsewhere.
func (o *Opener) Resolve() (string, error) {
	if strings.ContainsAny(o.binary, `/\`) {
		if !utils.FileExists(o.binary) {
			return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, o.binary)
		}
		return o.binary, nil
	}

	path, err := exec.LookPath(o.binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, o.binary)
	}
	return path, nil
}

// Open spawns `<binary> <escaped-path>:<line>` detached. line < 1 is
// clamped to 1. The spawned process is reaped in the background; its
// exit status is only ever logged.
func (o *Opener) Open(path string, line int) error {
	if path == "" {
		return errors.New("viewer: path is empty")
	}
	bin, err := o.Resolve()
	if err != nil {
		return err
	}
	if line < 1 {
		line = 1
	}

	target := EscapeTarget(path, line)
	cmd := exec.Command(bin, target)
	cmd.SysProcAttr = getSysProcAttr()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("viewer: start %s: %w", bin, err)
	}
	slog.Debug("viewer: opened", "binary", bin, "target", target, "pid", cmd.Process.Pid)

	go func() {
		if err := cmd.Wait(); err != nil {
			slog.Debug("viewer: process exited", "binary", bin, "error", err)
		}
	}()

	return nil
}

// EscapeTarget builds the `<path>:<line>` argument. Colons inside the
// path are backslash-escaped so the trailing line suffix stays
// unambiguous on Windows drive-letter paths.
func EscapeTarget(path string, line int) string {
	escaped := strings.ReplaceAll(path, ":", `\:`)
	return fmt.Sprintf("%s:%d", escaped, line)
}

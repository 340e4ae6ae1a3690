// Package trigger decides, per editing event, whether a sync should
// fire. The decision is a pure function of the event and the live
// configuration; no state is kept between events. Idle detection
// itself belongs to the host (or the watch daemon) — this package only
// classifies the events it is handed.
package trigger

import (
	"log/slog"
	"regexp"

	"github.com/vivify-tools/vivsync/internal/vivsync/config"
)

// EventKind classifies host editing events.
type EventKind int

const (
	// TextChanged fires on any buffer mutation.
	TextChanged EventKind = iota
	// CursorMoved fires on cursor movement without mutation.
	CursorMoved
	// Idle fires after the host's idle timeout with no mutations.
	Idle
)

func (k EventKind) String() string {
	switch k {
	case TextChanged:
		return "text-changed"
	case CursorMoved:
		return "cursor-moved"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}

// Event is one host editing event with the buffer state it concerns.
type Event struct {
	Kind     EventKind
	Path     string // absolute file path, empty when the buffer is unaddressable
	Filetype string // the buffer's declared filetype
	Line     int    // 1-based cursor line, meaningful for CursorMoved
}

// Decision is the outcome of evaluating one event.
type Decision int

const (
	NoSync Decision = iota
	SyncContent
	SyncCursor
)

// ShouldSync evaluates one event against the current configuration.
// Config is consulted fresh on every call, never snapshotted, so a
// re-setup takes effect on the very next event.
func ShouldSync(ev Event, cfg *config.Config) Decision {
	// A buffer without a file path has no addressable viewer.
	if ev.Path == "" {
		return NoSync
	}
	if !MatchesFiletype(ev.Filetype, cfg.Filetypes) {
		return NoSync
	}

	switch ev.Kind {
	case TextChanged:
		if cfg.InstantRefresh {
			return SyncContent
		}
	case Idle:
		if !cfg.InstantRefresh {
			return SyncContent
		}
	case CursorMoved:
		if cfg.AutoScroll {
			return SyncCursor
		}
	}
	return NoSync
}

// MatchesFiletype reports whether the buffer filetype matches any of
// the configured patterns. Patterns are regexps matched unanchored, so
// "markdown" matches both "markdown" and "markdown.pandoc". Invalid
// patterns are skipped, never fatal.
func MatchesFiletype(filetype string, patterns []string) bool {
	if filetype == "" {
		return false
	}
	for _, pat := range patterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			slog.Debug("trigger: bad filetype pattern", "pattern", pat, "error", err)
			continue
		}
		if re.MatchString(filetype) {
			return true
		}
	}
	return false
}

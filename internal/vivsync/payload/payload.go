// Package payload defines the JSON bodies accepted by the Vivify
// viewer endpoint. Every request carries exactly one variant: full
// buffer content or a 1-based cursor line, never both.
package payload

import (
	"strings"

	"github.com/goccy/go-json"
)

// Payload is the tagged union of viewer update bodies.
type Payload interface {
	viewerPayload()
}

// Content carries the full text of a buffer, newline-joined.
type Content struct {
	Content string `json:"content"`
}

func (Content) viewerPayload() {}

// Cursor carries a 1-based cursor line number.
type Cursor struct {
	Cursor int `json:"cursor"`
}

func (Cursor) viewerPayload() {}

// NewContent joins buffer lines into a Content payload.
func NewContent(lines []string) Content {
	return Content{Content: strings.Join(lines, "\n")}
}

// NewText wraps already-joined buffer text.
func NewText(text string) Content {
	return Content{Content: text}
}

// NewCursor wraps a 1-based line number.
func NewCursor(line int) Cursor {
	return Cursor{Cursor: line}
}

// Marshal serializes a payload to its JSON wire form.
func Marshal(p Payload) ([]byte, error) {
	return json.Marshal(p)
}

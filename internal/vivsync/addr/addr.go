// Package addr builds the viewer URLs the Vivify server uses to route
// sync payloads to connected preview clients. The encoding here must
// match the server's own canonicalization byte for byte: the server
// strips the /viewer/ prefix and uses the remainder as the lookup key
// for open viewers, so any drift silently delivers updates to nobody.
package addr

import (
	"errors"
	"runtime"
	"strings"
)

// ViewerRoute is the fixed route prefix the server strips to recover
// the file path. Exactly one slash between the route and the encoded
// path; the server's prefix strip is length-based.
const ViewerRoute = "/viewer/"

var ErrEmptyPath = errors.New("addr: path is empty")

// Platform selects the path-separator convention used when encoding.
type Platform int

const (
	Posix Platform = iota
	Windows
)

func (p Platform) String() string {
	if p == Windows {
		return "windows"
	}
	return "posix"
}

// Native returns the Platform for the running host.
func Native() Platform {
	if runtime.GOOS == "windows" {
		return Windows
	}
	return Posix
}

// Encode percent-encodes an absolute file path the way the Vivify
// server canonicalizes it. Characters in the unreserved set
// [A-Za-z0-9-._~] pass through. On posix the separator '/' also passes
// through so the server can parse path structure. On windows all
// separators are first normalized to '\' and then percent-encoded
// (%5C), with drive-letter colons encoded as %3A; the server decodes
// before keying, so structure survives.
//
// Encode must be applied exactly once to the raw path. It is not
// idempotent: re-encoding escapes the '%' of prior escapes.
func Encode(rawPath string, platform Platform) string {
	if platform == Windows {
		rawPath = strings.ReplaceAll(rawPath, "/", `\`)
	}

	var b strings.Builder
	b.Grow(len(rawPath))
	for i := 0; i < len(rawPath); i++ {
		c := rawPath[i]
		switch {
		case c >= 'a' && c <= 'z',
			c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		case c == '/' && platform == Posix:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

// ViewerURL joins a server base URL with the encoded form of rawPath.
// rawPath must already be absolute; resolution is the caller's job.
func ViewerURL(baseURL, rawPath string, platform Platform) (string, error) {
	if rawPath == "" {
		return "", ErrEmptyPath
	}
	return strings.TrimSuffix(baseURL, "/") + ViewerRoute + Encode(rawPath, platform), nil
}

// Package loading resolves document locations into byte streams. A location
// names a source (file path, URL, literal text); its canonical form is the
// identity the parser uses to deduplicate imports.
package loading

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Location identifies a document source.
type Location interface {
	// Canonical returns the identity of the document. Two locations refer
	// to the same document iff their canonical forms are equal.
	Canonical() string
	String() string
}

// FileLocation is a filesystem path, possibly relative to an origin.
type FileLocation struct {
	Path string
}

func (l FileLocation) Canonical() string {
	abs, err := filepath.Abs(l.Path)
	if err != nil {
		return l.Path
	}
	return "file://" + filepath.ToSlash(abs)
}

func (l FileLocation) String() string { return l.Path }

// URLLocation is an http(s) URL.
type URLLocation struct {
	URL string
}

func (l URLLocation) Canonical() string { return l.URL }
func (l URLLocation) String() string    { return l.URL }

// LiteralLocation wraps in-memory document text. Its canonical form is
// derived from the content so identical literals deduplicate.
type LiteralLocation struct {
	Content string
	// Name labels the literal in diagnostics; defaults to "literal".
	Name string
}

func (l LiteralLocation) Canonical() string { return "literal:" + l.Content }

func (l LiteralLocation) String() string {
	if l.Name != "" {
		return l.Name
	}
	return "literal"
}

// Parse interprets a URI string the way the CLI accepts it: explicit
// file:// and http(s):// schemes, anything else a filesystem path.
func Parse(uri string) Location {
	switch {
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return URLLocation{URL: uri}
	case strings.HasPrefix(uri, "file://"):
		return FileLocation{Path: strings.TrimPrefix(uri, "file://")}
	default:
		return FileLocation{Path: uri}
	}
}

// Resolve interprets a possibly-relative location against an origin. An
// absolute path or URL passes through; a relative path is joined to the
// origin's directory. A nil origin leaves the location untouched.
func Resolve(loc, origin Location) Location {
	fl, ok := loc.(FileLocation)
	if !ok || filepath.IsAbs(fl.Path) {
		return loc
	}
	switch o := origin.(type) {
	case FileLocation:
		return FileLocation{Path: filepath.Join(filepath.Dir(o.Path), fl.Path)}
	case URLLocation:
		if u, err := url.Parse(o.URL); err == nil {
			u.Path = path.Join(path.Dir(u.Path), filepath.ToSlash(fl.Path))
			return URLLocation{URL: u.String()}
		}
	}
	return loc
}

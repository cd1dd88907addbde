package seo

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Bahjat/seoverify/internal/platform/errs"
)

// Blacklist decides which relative paths are skipped. A plain entry is a
// string-prefix test; an entry with glob metacharacters is matched with
// doublestar against the whole relative path.
type Blacklist struct {
	prefixes []string
	globs    []string
}

// NewBlacklist validates the glob entries of patterns.
func NewBlacklist(patterns []string) (Blacklist, error) {
	var b Blacklist
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if !isGlob(p) {
			b.prefixes = append(b.prefixes, p)
			continue
		}
		glob := strings.TrimPrefix(p, "/")
		if !doublestar.ValidatePattern(glob) {
			return Blacklist{}, &errs.AppError{
				Kind:    errs.InvalidInput,
				Message: fmt.Sprintf("invalid blacklist pattern %q", p),
			}
		}
		b.globs = append(b.globs, glob)
	}
	return b, nil
}

func isGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// Match reports whether rel, a relative path with a leading slash, is
// blacklisted.
func (b Blacklist) Match(rel string) bool {
	for _, p := range b.prefixes {
		if strings.HasPrefix(rel, p) {
			return true
		}
	}
	trimmed := strings.TrimPrefix(rel, "/")
	for _, g := range b.globs {
		if ok, _ := doublestar.Match(g, trimmed); ok {
			return true
		}
	}
	return false
}

// RelativePath returns path relative to root in slash form with a leading
// slash, e.g. "/post-1/index.html".
func RelativePath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return "/" + strings.TrimPrefix(filepath.ToSlash(rel), "./"), nil
}

// RouteFromPath derives the served route from a relative file path:
// "/post-1/index.html" is "/post-1", "/404.html" is "/404" and
// "/index.html" is "/".
func RouteFromPath(rel string) string {
	r := "/" + strings.TrimLeft(rel, "/")
	switch {
	case r == "/index.html":
		return "/"
	case strings.HasSuffix(r, "/index.html"):
		return strings.TrimSuffix(r, "/index.html")
	default:
		return strings.TrimSuffix(r, ".html")
	}
}

// Rewrites maps relative file paths (or derived routes) to the route used
// for the request and the report.
type Rewrites map[string]string

// Route returns the route for rel, applying the table when rel or its
// derived route is a key.
func (rw Rewrites) Route(rel string) string {
	if to, ok := rw[rel]; ok {
		return to
	}
	route := RouteFromPath(rel)
	if to, ok := rw[route]; ok {
		return to
	}
	return route
}

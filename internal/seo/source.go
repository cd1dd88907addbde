package seo

import (
	"context"
	"io"
	"strings"
)

// Page is one route to check. File is the HTML file backing the route, or
// empty for routes that exist only on the server.
type Page struct {
	Route string
	File  string
}

// PageSource obtains the raw HTML for a page. A 404 from a server is
// reported as an *errs.AppError of kind NotFound carrying the full URL;
// everything else that prevents reading the page is FetchFailed.
type PageSource interface {
	Fetch(ctx context.Context, page Page) (io.ReadCloser, error)
	Close() error
}

// JoinURL builds the request URL for route: base, then prefix, then route,
// with exactly one slash at each join.
func JoinURL(base, prefix, route string) string {
	u := strings.TrimRight(base, "/")
	if p := strings.Trim(prefix, "/"); p != "" {
		u += "/" + p
	}

	r := strings.TrimLeft(route, "/")
	if r == "" {
		if strings.Trim(prefix, "/") == "" {
			return u + "/"
		}
		return u
	}
	return u + "/" + r
}

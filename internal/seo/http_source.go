package seo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Bahjat/seoverify/internal/platform/errs"
	"github.com/Bahjat/seoverify/internal/platform/requestid"
)

const (
	maxRedirects    = 5
	maxResponseBody = 10 << 20
	userAgent       = "seoverify/1.0"
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
	errBodyTooLarge     = errors.New("response body too large")
)

// NetworkOptions configures the sources that fetch pages from a server.
type NetworkOptions struct {
	BaseURL    string
	PathPrefix string
	// Timeout bounds one fetch, body included. Zero means no timeout.
	Timeout time.Duration
	// AllowRemote permits non-loopback destinations.
	AllowRemote bool
}

// HTTPSource fetches pages from a running server with plain GET requests.
type HTTPSource struct {
	client     *http.Client
	baseURL    string
	pathPrefix string
	maxBody    int64
}

// NewHTTPSource returns an HTTPSource whose transport refuses non-loopback
// addresses unless opts.AllowRemote is set.
func NewHTTPSource(opts NetworkOptions) *HTTPSource {
	return newHTTPSource(opts, &http.Transport{
		DialContext:         localDialer(opts.AllowRemote).DialContext,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	})
}

func newHTTPSource(opts NetworkOptions, transport http.RoundTripper) *HTTPSource {
	return &HTTPSource{
		baseURL:    opts.BaseURL,
		pathPrefix: opts.PathPrefix,
		maxBody:    maxResponseBody,
		client: &http.Client{
			Timeout:       opts.Timeout,
			Transport:     transport,
			CheckRedirect: redirectPolicy,
		},
	}
}

// redirectPolicy validates redirect targets and limits the redirect chain length.
func redirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// URL returns the full request URL for route.
func (s *HTTPSource) URL(route string) string {
	return JoinURL(s.baseURL, s.pathPrefix, route)
}

// Fetch GETs the page and reads the whole body before returning it, so a
// connection dropped mid-body is a FetchFailed error. A 404 returns a
// NotFound error.
func (s *HTTPSource) Fetch(ctx context.Context, page Page) (io.ReadCloser, error) {
	target := s.URL(page.Route)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, &errs.AppError{Kind: errs.InvalidInput, URL: target, Message: "invalid page URL", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")
	req.Header.Set(requestid.Header, requestid.New())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &errs.AppError{Kind: errs.FetchFailed, URL: target, Message: "could not fetch " + target, Cause: err}
	}

	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &errs.AppError{
			Kind:    errs.NotFound,
			Status:  resp.StatusCode,
			URL:     target,
			Message: "page not found: " + target,
		}
	case resp.StatusCode >= 400:
		return nil, &errs.AppError{
			Kind:    errs.FetchFailed,
			Status:  resp.StatusCode,
			URL:     target,
			Message: fmt.Sprintf("%s returned status %d", target, resp.StatusCode),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, &errs.AppError{Kind: errs.FetchFailed, Status: resp.StatusCode, URL: target, Message: "could not read " + target, Cause: err}
	}
	if int64(len(data)) > s.maxBody {
		return nil, &errs.AppError{
			Kind:    errs.FetchFailed,
			Status:  resp.StatusCode,
			URL:     target,
			Message: fmt.Sprintf("%s is larger than %d bytes", target, s.maxBody),
			Cause:   errBodyTooLarge,
		}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Close releases idle connections.
func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

package seo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Bahjat/seoverify/internal/platform/errs"
)

// BrowserSource renders pages in one headless Chrome instance, so routes
// that only exist after client-side rendering are checked as a visitor
// would see them. The browser is started by NewBrowserSource, reused for
// every page (one tab each) and shut down by Close.
type BrowserSource struct {
	baseURL    string
	pathPrefix string
	timeout    time.Duration

	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	closeOnce     sync.Once
}

// NewBrowserSource starts headless Chrome. The caller must call Close on
// every path once the source is no longer needed.
func NewBrowserSource(ctx context.Context, opts NetworkOptions) (*BrowserSource, error) {
	if !opts.AllowRemote {
		if err := checkLocalURL(opts.BaseURL); err != nil {
			return nil, &errs.AppError{Kind: errs.InvalidInput, URL: opts.BaseURL, Message: "browser source", Cause: err}
		}
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &BrowserSource{
		baseURL:       opts.BaseURL,
		pathPrefix:    opts.PathPrefix,
		timeout:       opts.Timeout,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}

	// An empty Run allocates the browser and its first tab.
	if err := chromedp.Run(browserCtx); err != nil {
		_ = s.Close()
		return nil, &errs.AppError{Kind: errs.FetchFailed, Message: "could not start headless browser", Cause: err}
	}
	return s, nil
}

// URL returns the full navigation URL for route.
func (s *BrowserSource) URL(route string) string {
	return JoinURL(s.baseURL, s.pathPrefix, route)
}

// Fetch navigates a fresh tab to the page and returns the rendered DOM.
func (s *BrowserSource) Fetch(ctx context.Context, page Page) (io.ReadCloser, error) {
	target := s.URL(page.Route)

	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	if s.timeout > 0 {
		var cancelTimeout context.CancelFunc
		tabCtx, cancelTimeout = context.WithTimeout(tabCtx, s.timeout)
		defer cancelTimeout()
	}

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(target))
	if err != nil {
		return nil, &errs.AppError{Kind: errs.FetchFailed, URL: target, Message: "could not navigate to " + target, Cause: err}
	}

	if resp != nil {
		status := int(resp.Status)
		switch {
		case status == http.StatusNotFound:
			return nil, &errs.AppError{Kind: errs.NotFound, Status: status, URL: target, Message: "page not found: " + target}
		case status >= 400:
			return nil, &errs.AppError{
				Kind:    errs.FetchFailed,
				Status:  status,
				URL:     target,
				Message: fmt.Sprintf("%s returned status %d", target, status),
			}
		}
	}

	var rendered string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &rendered, chromedp.ByQuery)); err != nil {
		return nil, &errs.AppError{Kind: errs.FetchFailed, URL: target, Message: "could not read rendered page", Cause: err}
	}
	return io.NopCloser(strings.NewReader(rendered)), nil
}

// Close shuts the browser down. It is safe to call more than once.
func (s *BrowserSource) Close() error {
	s.closeOnce.Do(func() {
		s.cancelBrowser()
		s.cancelAlloc()
	})
	return nil
}

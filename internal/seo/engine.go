package seo

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/Bahjat/seoverify/internal/platform/errs"
)

// Engine fetches one page, parses it, runs every check against it and
// reports the results.
type Engine struct {
	source            PageSource
	checks            []Check
	reporter          *Reporter
	abortOnFetchError bool
	logger            *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAbortOnFetchError makes a non-404 fetch error stop the run instead of
// being counted as a failure for the page.
func WithAbortOnFetchError(abort bool) Option {
	return func(e *Engine) { e.abortOnFetchError = abort }
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine returns an Engine backed by the given source, checks and reporter.
func NewEngine(source PageSource, checks []Check, reporter *Reporter, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		checks:   checks,
		reporter: reporter,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithSource returns a copy of e that fetches from source. The copy shares
// the reporter, so its results land in the same summary.
func (e *Engine) WithSource(source PageSource) *Engine {
	c := *e
	c.source = source
	return &c
}

// Reporter returns the reporter results are written to.
func (e *Engine) Reporter() *Reporter {
	return e.reporter
}

// CheckPage runs the checks for one page. It returns an error only when the
// run should stop: a fetch error under the abort policy, or ctx ending. A
// body that cannot be read to the end is a fetch error, not a parse error.
func (e *Engine) CheckPage(ctx context.Context, page Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger := e.logger.With("route", page.Route)
	e.reporter.Page(page.Route)

	data, err := e.fetch(ctx, page)
	if err != nil {
		if appErr, ok := errs.As(err); ok && appErr.Kind == errs.NotFound {
			logger.Warn("page not found", "url", appErr.URL, "status", appErr.Status)
			e.reporter.NotFound(appErr.URL)
			return nil
		}
		return e.fetchFailed(ctx, logger, page.Route, err)
	}

	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		parseErr := &errs.AppError{Kind: errs.ParsingFailed, URL: page.Route, Message: "failed to parse the HTML content", Cause: err}
		logger.Error("parse failed", "error", parseErr)
		for _, c := range e.checks {
			e.reporter.Failure(page.Route, c.Name(), parseErr.Error())
		}
		return nil
	}

	for _, c := range e.checks {
		res, err := runCheck(c, doc)
		if err != nil {
			logger.Error("check failed to run", "check", c.Name(), "error", err)
			e.reporter.Failure(page.Route, c.Name(), err.Error())
			continue
		}
		if res.Passed {
			e.reporter.Success(page.Route, c.Name(), res.Message)
		} else {
			e.reporter.Failure(page.Route, c.Name(), res.Message)
		}
	}

	logger.Debug("page checked", "checks", len(e.checks))
	return nil
}

// fetchFailed applies the fetch error policy: under abort err is returned,
// otherwise one "fetch" failure is recorded for route.
func (e *Engine) fetchFailed(ctx context.Context, logger *slog.Logger, route string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	logger.Error("fetch failed", "error", err)
	if e.abortOnFetchError {
		return err
	}
	e.reporter.Failure(route, "fetch", err.Error())
	return nil
}

// fetch returns the whole page body.
func (e *Engine) fetch(ctx context.Context, page Page) ([]byte, error) {
	body, err := e.source.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	data, err := io.ReadAll(body)
	if err != nil {
		if _, ok := errs.As(err); ok {
			return nil, err
		}
		return nil, &errs.AppError{Kind: errs.FetchFailed, URL: page.Route, Message: "could not read page body", Cause: err}
	}
	return data, nil
}

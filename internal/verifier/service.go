package verifier

import (
	"context"
	"io"
	"log/slog"

	"github.com/Bahjat/seoverify/internal/model"
	"github.com/Bahjat/seoverify/internal/platform/config"
	"github.com/Bahjat/seoverify/internal/platform/requestid"
	"github.com/Bahjat/seoverify/internal/seo"
)

// Process exit statuses.
const (
	ExitOK      = 0
	ExitFailed  = 1
	ExitAborted = 2
)

// Service runs one complete crawl: the output directory walk, then the
// extra routes, then the summary.
type Service struct {
	cfg    config.Config
	out    io.Writer
	logger *slog.Logger
	open   SourceOpener
}

// NewService creates a Service that prints its report to out.
func NewService(cfg config.Config, out io.Writer, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, out: out, logger: logger, open: OpenSource}
}

// WithSourceOpener replaces the function used to open page sources.
func (s *Service) WithSourceOpener(open SourceOpener) *Service {
	s.open = open
	return s
}

// Run performs the crawl. Sources it opens are closed on every return path.
// On error the returned report holds whatever was recorded before the abort.
func (s *Service) Run(ctx context.Context) (*model.RunReport, error) {
	runID := requestid.New()
	ctx = requestid.NewContext(ctx, runID)
	logger := s.logger.With("run_id", runID, "source", string(s.cfg.Source))

	checks, err := seo.LookupChecks(s.cfg.Checks)
	if err != nil {
		return nil, err
	}
	blacklist, err := seo.NewBlacklist(s.cfg.Blacklist)
	if err != nil {
		return nil, err
	}

	netOpts := seo.NetworkOptions{
		BaseURL:     s.cfg.BaseURL,
		PathPrefix:  s.cfg.PathPrefix,
		Timeout:     s.cfg.FetchTimeout,
		AllowRemote: s.cfg.AllowRemote,
	}

	primary, err := s.open(ctx, s.cfg.Source, netOpts)
	if err != nil {
		logger.Error("could not open page source", "error", err)
		return nil, err
	}
	defer closeSource(primary, logger)

	summary := seo.NewSummary()
	reporter := seo.NewReporter(s.out, summary, s.cfg.NoColor)
	engine := seo.NewEngine(primary, checks, reporter,
		seo.WithAbortOnFetchError(s.cfg.OnFetchError == config.AbortOnError),
		seo.WithLogger(logger),
	)

	reporter.Banner(s.cfg.Dir)
	logger.Info("walk started", "dir", s.cfg.Dir, "checks", len(checks))

	walker := seo.NewWalker(engine, blacklist, s.cfg.Rewrites, logger)
	if err := walker.Walk(ctx, s.cfg.Dir); err != nil {
		return s.aborted(summary, runID, logger, err)
	}

	if err := s.checkExtraRoutes(ctx, engine, primary, netOpts, logger); err != nil {
		return s.aborted(summary, runID, logger, err)
	}

	reporter.Summarize()
	reporter.Done()

	report := summary.Report(runID, string(s.cfg.Source))
	logger.Info("run complete",
		"pages", report.Pages,
		"skipped", report.Skipped,
		"passed", report.Passed,
		"failed", report.Failed,
		"not_found", len(report.NotFound),
	)
	return &report, nil
}

// checkExtraRoutes checks routes that have no file in the output tree. They
// need a network source, so the file source is swapped for an http one.
func (s *Service) checkExtraRoutes(ctx context.Context, engine *seo.Engine, primary seo.PageSource, opts seo.NetworkOptions, logger *slog.Logger) error {
	if len(s.cfg.ExtraRoutes) == 0 {
		return nil
	}

	network := primary
	if s.cfg.Source == config.SourceFile {
		src, err := s.open(ctx, config.SourceHTTP, opts)
		if err != nil {
			return err
		}
		defer closeSource(src, logger)
		network = src
	}

	logger.Info("checking extra routes", "count", len(s.cfg.ExtraRoutes))
	extra := engine.WithSource(network)
	for _, route := range s.cfg.ExtraRoutes {
		if err := extra.CheckPage(ctx, seo.Page{Route: route}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) aborted(summary *seo.Summary, runID string, logger *slog.Logger, err error) (*model.RunReport, error) {
	logger.Error("run aborted", "error", err)
	report := summary.Report(runID, string(s.cfg.Source))
	return &report, err
}

func closeSource(src seo.PageSource, logger *slog.Logger) {
	if err := src.Close(); err != nil {
		logger.Warn("closing page source", "error", err)
	}
}

// ExitCode maps a run outcome to the process exit status.
func ExitCode(report *model.RunReport, err error) int {
	switch {
	case err != nil || report == nil:
		return ExitAborted
	case !report.OK():
		return ExitFailed
	default:
		return ExitOK
	}
}

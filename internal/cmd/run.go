package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bahjat/seoverify/internal/platform/config"
	"github.com/Bahjat/seoverify/internal/preview"
	"github.com/Bahjat/seoverify/internal/verifier"
)

type runFlags struct {
	source       string
	baseURL      string
	blacklist    []string
	rewrites     map[string]string
	extraRoutes  []string
	checks       []string
	onFetchError string
	fetchTimeout time.Duration
	allowRemote  bool
	serveLocal   bool
	noColor      bool
	json         bool
}

func newRunCommand(global *globalFlags) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check every page of the generated site",
		Long: `Walk the output directory, run the SEO checks on every HTML file, then on
any extra routes, and print a summary.

Sources:
  file     read HTML straight from the output directory (default)
  http     GET each page from base-url + path-prefix + route
  browser  render each page in headless Chrome at the same URL`,
		Example: `  seoverify run --dir public/blog
  seoverify run --source http --base-url http://localhost:9000 --extra-route /login
  seoverify run --serve-local --source http --blacklist /drafts --blacklist 'tags/**/amp/*.html'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, global, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.source, "source", "s", "", "page source: file, http or browser")
	f.StringVar(&flags.baseURL, "base-url", "", "scheme and host of the server (default http://localhost:9000)")
	f.StringArrayVar(&flags.blacklist, "blacklist", nil, "relative path prefix or glob to skip (repeatable)")
	f.StringToStringVar(&flags.rewrites, "rewrite", nil, "relative path to served route, e.g. /old/index.html=/new (repeatable)")
	f.StringArrayVar(&flags.extraRoutes, "extra-route", nil, "route with no backing file to fetch and check (repeatable)")
	f.StringSliceVar(&flags.checks, "check", nil, "checks to run: canonical, single-h1 (default all)")
	f.StringVar(&flags.onFetchError, "on-fetch-error", "", "continue or abort when a page cannot be fetched")
	f.DurationVar(&flags.fetchTimeout, "fetch-timeout", 0, "timeout for one network fetch, 0 for none (default 30s)")
	f.BoolVar(&flags.allowRemote, "allow-remote", false, "allow fetching from non-loopback hosts")
	f.BoolVar(&flags.serveLocal, "serve-local", false, "serve --dir on an ephemeral local port and crawl that")
	f.BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	f.BoolVar(&flags.json, "json", false, "print the final report as JSON after the summary")

	return cmd
}

func (f *runFlags) apply(cmd *cobra.Command) func(*config.Config) {
	return func(c *config.Config) {
		fs := cmd.Flags()
		if fs.Changed("source") {
			c.Source = config.Source(f.source)
		}
		if fs.Changed("base-url") {
			c.BaseURL = f.baseURL
		}
		if fs.Changed("blacklist") {
			c.Blacklist = f.blacklist
		}
		if fs.Changed("rewrite") {
			if c.Rewrites == nil {
				c.Rewrites = map[string]string{}
			}
			for from, to := range f.rewrites {
				c.Rewrites[from] = to
			}
		}
		if fs.Changed("extra-route") {
			c.ExtraRoutes = f.extraRoutes
		}
		if fs.Changed("check") {
			c.Checks = f.checks
		}
		if fs.Changed("on-fetch-error") {
			c.OnFetchError = config.FetchErrorPolicy(f.onFetchError)
		}
		if fs.Changed("fetch-timeout") {
			c.FetchTimeout = f.fetchTimeout
		}
		if fs.Changed("allow-remote") {
			c.AllowRemote = f.allowRemote
		}
		if fs.Changed("no-color") {
			c.NoColor = f.noColor
		}
		if fs.Changed("json") {
			c.JSON = f.json
		}
	}
}

func runVerify(cmd *cobra.Command, global *globalFlags, flags *runFlags) error {
	cfg, err := loadConfig(cmd, global, flags.apply(cmd))
	if err != nil {
		return &ExitError{Code: verifier.ExitAborted, Err: err}
	}
	log := newLogger(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flags.serveLocal {
		srv, err := preview.Start("127.0.0.1:0", cfg.Dir, cfg.PathPrefix, log)
		if err != nil {
			return &ExitError{Code: verifier.ExitAborted, Err: fmt.Errorf("start preview server: %w", err)}
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		cfg.BaseURL = srv.URL()
		log.Info("preview server started", "url", cfg.BaseURL)
	}

	report, err := verifier.NewService(cfg, cmd.OutOrStdout(), log).Run(ctx)
	code := verifier.ExitCode(report, err)

	if cfg.JSON && report != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			log.Error("failed to encode report", "error", encErr)
		}
	}

	if code != verifier.ExitOK {
		return &ExitError{Code: code, Err: err}
	}
	return nil
}

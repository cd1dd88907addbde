package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Bahjat/seoverify/internal/platform/config"
	"github.com/Bahjat/seoverify/internal/platform/logger"
	"github.com/Bahjat/seoverify/internal/verifier"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// ExitError carries a process exit status out of a command. A nil Err means
// the status was already explained on the console.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	dir        string
	pathPrefix string
	logLevel   string
	logFormat  string
}

// NewRootCommand creates and returns the root cobra command for seoverify.
func NewRootCommand() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "seoverify",
		Short: "Check a built static site for basic SEO problems",
		Long: `seoverify walks the HTML files of a generated site and checks every page
for a canonical link and exactly one <h1>. Pages can be read from disk,
fetched from a running server, or rendered in headless Chrome.

Exit status is 0 when every check passed, 1 when a check failed or a route
was not found, and 2 when the run could not complete.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&flags.dir, "dir", "d", "", "generated output directory (default public/blog)")
	pf.StringVar(&flags.pathPrefix, "path-prefix", "", "URL path the site is served under (default /blog)")
	pf.StringVar(&flags.logLevel, "log-level", "", "diagnostic log level: DEBUG, INFO, WARN, ERROR")
	pf.StringVar(&flags.logFormat, "log-format", "", "diagnostic log format: json or text")

	cmd.AddCommand(newRunCommand(&flags))
	cmd.AddCommand(newServeCommand(&flags))

	return cmd
}

// Execute runs the root command with args and returns the process exit status.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return verifier.ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return verifier.ExitAborted
}

// loadConfig layers the config file, environment and changed flags.
func loadConfig(cmd *cobra.Command, flags *globalFlags, extra ...func(*config.Config)) (config.Config, error) {
	overrides := []func(*config.Config){func(c *config.Config) {
		fs := cmd.Flags()
		if fs.Changed("dir") {
			c.Dir = flags.dir
		}
		if fs.Changed("path-prefix") {
			c.PathPrefix = flags.pathPrefix
		}
		if fs.Changed("log-level") {
			c.LogLevel = flags.logLevel
		}
		if fs.Changed("log-format") {
			c.LogFormat = flags.logFormat
		}
	}}
	return config.Load(flags.configPath, append(overrides, extra...)...)
}

func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	return logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
}

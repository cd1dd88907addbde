package cmd

import (
	"context"
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

func newServeCommand(global *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated site locally for the http and browser sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, global, func(c *config.Config) {
				if cmd.Flags().Changed("addr") {
					c.ServeAddr = addr
				}
			})
			if err != nil {
				return &ExitError{Code: verifier.ExitAborted, Err: err}
			}
			log := newLogger(cmd, cfg)

			srv, err := preview.Listen(cfg.ServeAddr, cfg.Dir, cfg.PathPrefix, log)
			if err != nil {
				return &ExitError{Code: verifier.ExitAborted, Err: err}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at %s%s\n", cfg.Dir, srv.URL(), cfg.PathPrefix)
			return srv.Serve()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default localhost:9000)")
	return cmd
}

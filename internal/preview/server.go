package preview

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server is a running preview server.
type Server struct {
	srv     *http.Server
	ln      net.Listener
	handler *Handler
}

// Listen binds addr and prepares a server for dir. Use "127.0.0.1:0" for an
// ephemeral port.
func Listen(addr, dir, prefix string, logger *slog.Logger) (*Server, error) {
	handler, err := NewHandler(dir, prefix, logger)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		_ = handler.Close()
		return nil, err
	}

	return &Server{
		ln:      ln,
		handler: handler,
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
	}, nil
}

// Start is Listen followed by serving in a background goroutine.
func Start(addr, dir, prefix string, logger *slog.Logger) (*Server, error) {
	s, err := Listen(addr, dir, prefix, logger)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := s.Serve(); err != nil {
			logger.Error("preview server stopped", "error", err)
		}
	}()
	return s, nil
}

// URL returns the base URL the server answers on.
func (s *Server) URL() string {
	return "http://" + s.ln.Addr().String()
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends,
// then closes the site directory.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	return errors.Join(err, s.handler.Close())
}

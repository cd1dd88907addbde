// Package preview serves a generated site directory over HTTP the way the
// production host does, so the http and browser sources can be pointed at it.
package preview

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/Bahjat/seoverify/internal/platform/middleware"
)

// Handler maps request paths under a prefix onto HTML files in a directory.
// It holds the directory open until Close.
type Handler struct {
	root   *os.Root
	prefix string
	logger *slog.Logger
	next   http.Handler
}

// NewHandler returns the preview handler for dir mounted under prefix,
// wrapped in request-id and logging middleware.
func NewHandler(dir, prefix string, logger *slog.Logger) (*Handler, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, err
	}

	h := &Handler{root: root, prefix: normalizePrefix(prefix), logger: logger}
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	h.next = middleware.RequestID(middleware.Logging(logger)(mux))

	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.next.ServeHTTP(w, r)
}

// Close releases the site directory. Requests served afterwards get 404.
func (h *Handler) Close() error {
	return h.root.Close()
}

// RegisterRoutes attaches the handler to the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", h.handlePage)
}

func normalizePrefix(prefix string) string {
	p := strings.Trim(prefix, "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	rel, ok := h.relative(r.URL.Path)
	if !ok {
		h.renderNotFound(w, r)
		return
	}

	for _, candidate := range candidates(rel) {
		if h.serveFile(w, r, candidate, http.StatusOK) {
			return
		}
	}
	h.renderNotFound(w, r)
}

// relative strips the mount prefix. ok is false for paths outside it.
func (h *Handler) relative(urlPath string) (string, bool) {
	p := path.Clean("/" + urlPath)
	if h.prefix != "" {
		if p != h.prefix && !strings.HasPrefix(p, h.prefix+"/") {
			return "", false
		}
		p = strings.TrimPrefix(p, h.prefix)
	}
	return strings.TrimPrefix(p, "/"), true
}

// candidates lists the files that may back a route, most specific first.
func candidates(rel string) []string {
	if rel == "" {
		return []string{"index.html"}
	}
	if strings.HasSuffix(rel, ".html") {
		return []string{rel}
	}
	return []string{rel + "/index.html", rel + ".html"}
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string, status int) bool {
	f, err := h.root.Open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("preview open failed", "file", name, "error", err)
		}
		return false
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
		if r.Method != http.MethodHead {
			_, _ = f.WriteTo(w)
		}
		return true
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
	return true
}

// renderNotFound serves the site's own 404.html with status 404 when it
// exists, like static hosts do.
func (h *Handler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	if h.serveFile(w, r, "404.html", http.StatusNotFound) {
		return
	}
	http.NotFound(w, r)
}

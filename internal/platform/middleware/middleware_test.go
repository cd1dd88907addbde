package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Bahjat/seoverify/internal/platform/requestid"
)

func TestRequestID_ReusesIncomingHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/blog/post-1", nil)
	req.Header.Set(requestid.Header, "crawl-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "crawl-42" {
		t.Errorf("context id = %q, want %q", seen, "crawl-42")
	}
	if got := rec.Header().Get(requestid.Header); got != "crawl-42" {
		t.Errorf("response header = %q, want %q", got, "crawl-42")
	}
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(seen) != 36 {
		t.Errorf("generated id = %q, want a UUID", seen)
	}
}

func TestLogging_RecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := Logging(log)(http.NotFoundHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/blog/missing", nil))

	out := buf.String()
	if !strings.Contains(out, "status=404") {
		t.Errorf("log missing status: %q", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("404 not logged at WARN: %q", out)
	}
	if !strings.Contains(out, "path=/blog/missing") {
		t.Errorf("log missing path: %q", out)
	}
}

func TestLogging_DefaultStatusOK(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<h1>hi</h1>"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/blog", nil))

	out := buf.String()
	if !strings.Contains(out, "status=200") || !strings.Contains(out, "bytes=11") {
		t.Errorf("unexpected log line: %q", out)
	}
}

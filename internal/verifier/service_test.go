package verifier

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bahjat/seoverify/internal/model"
	"github.com/Bahjat/seoverify/internal/platform/config"
	"github.com/Bahjat/seoverify/internal/platform/errs"
	"github.com/Bahjat/seoverify/internal/seo"
)

const (
	goodPage = `<html><head><link rel="canonical" href="/x"></head><body><h1>Fine</h1></body></html>`
	badPage  = `<html><head></head><body><h1>One</h1><h1>Two</h1></body></html>`
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func testConfig(dir string) config.Config {
	cfg := config.Default()
	cfg.Dir = dir
	cfg.NoColor = true
	return cfg
}

func runService(t *testing.T, cfg config.Config) (*model.RunReport, string, error) {
	t.Helper()
	var out bytes.Buffer
	report, err := NewService(cfg, &out, slog.New(slog.DiscardHandler)).Run(context.Background())
	return report, out.String(), err
}

func TestRun_AllPass(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"blog/post-1/index.html": goodPage,
	})

	report, out, err := runService(t, testConfig(dir))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, ExitOK, ExitCode(report, err))
	assert.Len(t, report.RunID, 36)
	assert.Contains(t, out, "📁 "+dir)
	assert.Contains(t, out, "Total 2 test(s) passed.")
	assert.Contains(t, out, "👋 All tests completed.")
}

func TestRun_FailuresExitOne(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"blog/post-1/index.html": goodPage,
		"blog/post-2/index.html": badPage,
	})

	report, out, err := runService(t, testConfig(dir))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, ExitFailed, ExitCode(report, err))
	assert.Contains(t, out, "Total 2 test(s) failed.")
}

func TestRun_MissingRootAborts(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "public", "blog"))

	report, _, err := runService(t, cfg)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidInput))
	assert.Equal(t, ExitAborted, ExitCode(report, err))
}

func TestRun_UnknownCheckAborts(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Checks = []string{"nope"}

	report, _, err := runService(t, cfg)
	assert.Equal(t, ExitAborted, ExitCode(report, err))
}

func newSiteServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch body, ok := pages[r.URL.Path]; {
		case ok:
			_, _ = io.WriteString(w, body)
		case strings.HasSuffix(r.URL.Path, "/boom"):
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRun_ExtraRoutesUseNetwork(t *testing.T) {
	dir := writeTree(t, map[string]string{"post-1/index.html": goodPage})
	ts := newSiteServer(t, map[string]string{"/blog/login": goodPage})

	cfg := testConfig(dir)
	cfg.BaseURL = ts.URL
	cfg.ExtraRoutes = []string{"/login", "/signup"}

	report, out, err := runService(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Passed)
	assert.Equal(t, 3, report.Pages)
	assert.Equal(t, []string{ts.URL + "/blog/signup"}, report.NotFound)
	assert.Equal(t, ExitFailed, ExitCode(report, err))
	assert.Equal(t, 1, strings.Count(out, "📄 /login\n"))
	assert.Contains(t, out, "Total 1 route(s) not found:")
}

func TestRun_HTTPSourceRewritesAndNotFound(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"old/index.html":  badPage,
		"gone/index.html": goodPage,
	})
	ts := newSiteServer(t, map[string]string{"/blog/new": goodPage})

	cfg := testConfig(dir)
	cfg.Source = config.SourceHTTP
	cfg.BaseURL = ts.URL
	cfg.Rewrites = map[string]string{"/old/index.html": "/new"}

	report, _, err := runService(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Passed, "served /blog/new is the good page")
	assert.Equal(t, []string{ts.URL + "/blog/gone"}, report.NotFound)
}

func TestRun_FetchErrorPolicy(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"boom/index.html": goodPage,
		"ok/index.html":   goodPage,
	})
	ts := newSiteServer(t, map[string]string{"/blog/ok": goodPage})

	cfg := testConfig(dir)
	cfg.Source = config.SourceHTTP
	cfg.BaseURL = ts.URL

	t.Run("continue", func(t *testing.T) {
		report, _, err := runService(t, cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, 2, report.Passed)
		assert.Equal(t, ExitFailed, ExitCode(report, err))
	})

	t.Run("abort", func(t *testing.T) {
		abortCfg := cfg
		abortCfg.OnFetchError = config.AbortOnError

		report, out, err := runService(t, abortCfg)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.FetchFailed))
		assert.Equal(t, ExitAborted, ExitCode(report, err))
		assert.NotContains(t, out, "All tests completed")
	})
}

func TestRun_ConnectionDroppedMidBody(t *testing.T) {
	dir := writeTree(t, map[string]string{"post-1/index.html": goodPage})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		conn, buf, err := http.NewResponseController(w).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		defer func() { _ = conn.Close() }()
		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Length: 100000\r\n\r\n<html><body><h1>")
		_ = buf.Flush()
	}))
	defer ts.Close()

	cfg := testConfig(dir)
	cfg.Source = config.SourceHTTP
	cfg.BaseURL = ts.URL

	t.Run("continue", func(t *testing.T) {
		report, _, err := runService(t, cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, "fetch", report.Outcomes[0].Check)
		assert.Equal(t, ExitFailed, ExitCode(report, err))
	})

	t.Run("abort", func(t *testing.T) {
		abortCfg := cfg
		abortCfg.OnFetchError = config.AbortOnError

		report, _, err := runService(t, abortCfg)
		assert.True(t, errs.Is(err, errs.FetchFailed), "err = %v", err)
		assert.Equal(t, ExitAborted, ExitCode(report, err))
	})
}

// closeTracker is a page source that records Close calls.
type closeTracker struct {
	seo.PageSource
	closed int
}

func (c *closeTracker) Close() error {
	c.closed++
	return nil
}

func TestRun_SourceClosedOnEveryPath(t *testing.T) {
	var opened []*closeTracker
	opener := func(context.Context, config.Source, seo.NetworkOptions) (seo.PageSource, error) {
		src := &closeTracker{PageSource: seo.NewFileSource()}
		opened = append(opened, src)
		return src, nil
	}

	t.Run("success", func(t *testing.T) {
		opened = nil
		cfg := testConfig(writeTree(t, map[string]string{"index.html": goodPage}))
		cfg.Source = config.SourceBrowser

		_, err := NewService(cfg, io.Discard, slog.New(slog.DiscardHandler)).WithSourceOpener(opener).Run(context.Background())
		require.NoError(t, err)
		require.Len(t, opened, 1)
		assert.Equal(t, 1, opened[0].closed)
	})

	t.Run("aborted walk", func(t *testing.T) {
		opened = nil
		cfg := testConfig(filepath.Join(t.TempDir(), "missing"))
		cfg.Source = config.SourceBrowser

		_, err := NewService(cfg, io.Discard, slog.New(slog.DiscardHandler)).WithSourceOpener(opener).Run(context.Background())
		require.Error(t, err)
		require.Len(t, opened, 1)
		assert.Equal(t, 1, opened[0].closed)
	})
}

var errNoBrowser = errors.New("no browser")

func TestRun_SourceOpenFailure(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Source = config.SourceBrowser

	opener := func(context.Context, config.Source, seo.NetworkOptions) (seo.PageSource, error) {
		return nil, errNoBrowser
	}

	report, err := NewService(cfg, io.Discard, slog.New(slog.DiscardHandler)).WithSourceOpener(opener).Run(context.Background())
	assert.ErrorIs(t, err, errNoBrowser)
	assert.Equal(t, ExitAborted, ExitCode(report, err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(&model.RunReport{Passed: 3, NotFound: []string{}}, nil))
	assert.Equal(t, ExitFailed, ExitCode(&model.RunReport{Failed: 1}, nil))
	assert.Equal(t, ExitFailed, ExitCode(&model.RunReport{NotFound: []string{"http://localhost:9000/blog/x"}}, nil))
	assert.Equal(t, ExitAborted, ExitCode(&model.RunReport{}, errNoBrowser))
	assert.Equal(t, ExitAborted, ExitCode(nil, nil))
}

func TestOpenSource(t *testing.T) {
	src, err := OpenSource(context.Background(), config.SourceFile, seo.NetworkOptions{})
	require.NoError(t, err)
	assert.IsType(t, &seo.FileSource{}, src)

	src, err = OpenSource(context.Background(), config.SourceHTTP, seo.NetworkOptions{BaseURL: "http://localhost:9000"})
	require.NoError(t, err)
	assert.IsType(t, &seo.HTTPSource{}, src)

	_, err = OpenSource(context.Background(), "carrier-pigeon", seo.NetworkOptions{})
	assert.True(t, errs.Is(err, errs.InvalidInput))
}

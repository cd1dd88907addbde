package seo

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Bahjat/seoverify/internal/platform/errs"
)

// Walker visits every HTML file below a root directory and hands each one
// to the Engine. It is strictly sequential: one page is fetched and checked
// before the next is looked at. os.ReadDir sorts entries by name, so the
// visiting order is the same on every filesystem.
type Walker struct {
	engine    *Engine
	blacklist Blacklist
	rewrites  Rewrites
	logger    *slog.Logger
}

// NewWalker returns a Walker feeding engine.
func NewWalker(engine *Engine, blacklist Blacklist, rewrites map[string]string, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Walker{
		engine:    engine,
		blacklist: blacklist,
		rewrites:  Rewrites(rewrites),
		logger:    logger,
	}
}

// Walk checks every HTML file under root. A missing or unreadable root is an
// error, as is anything the engine reports as fatal. A subdirectory that
// cannot be listed follows the fetch error policy.
func (w *Walker) Walk(ctx context.Context, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &errs.AppError{Kind: errs.InvalidInput, URL: root, Message: "cannot walk output directory", Cause: err}
	}
	if !info.IsDir() {
		return &errs.AppError{Kind: errs.InvalidInput, URL: root, Message: "output path is not a directory"}
	}
	return w.walkDir(ctx, root, root)
}

func (w *Walker) walkDir(ctx context.Context, root, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if dir == root {
			return &errs.AppError{Kind: errs.InvalidInput, URL: root, Message: "cannot list output directory", Cause: err}
		}
		rel, relErr := RelativePath(root, dir)
		if relErr != nil {
			return relErr
		}
		if w.blacklist.Match(rel) {
			return nil
		}
		listErr := &errs.AppError{Kind: errs.FetchFailed, URL: dir, Message: "cannot list directory " + rel, Cause: err}
		return w.engine.fetchFailed(ctx, w.logger.With("path", rel), rel, listErr)
	}

	var files, dirs []string
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case entry.IsDir():
			dirs = append(dirs, name)
		case !strings.HasSuffix(name, ".html"):
		case entry.Type().IsRegular():
			files = append(files, name)
		case entry.Type()&fs.ModeSymlink != 0:
			// Linked pages are checked; linked directories are not followed.
			info, err := os.Stat(filepath.Join(dir, name))
			if err == nil && info.Mode().IsRegular() {
				files = append(files, name)
			}
		}
	}

	for _, name := range files {
		path := filepath.Join(dir, name)
		rel, err := RelativePath(root, path)
		if err != nil {
			return err
		}

		if w.blacklist.Match(rel) {
			w.logger.Debug("page blacklisted", "path", rel)
			w.engine.Reporter().Skip()
			continue
		}

		page := Page{Route: w.rewrites.Route(rel), File: path}
		if err := w.engine.CheckPage(ctx, page); err != nil {
			return err
		}
	}

	for _, name := range dirs {
		if err := w.walkDir(ctx, root, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

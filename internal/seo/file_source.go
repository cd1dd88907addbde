package seo

import (
	"context"
	"io"
	"os"

	"github.com/Bahjat/seoverify/internal/platform/errs"
)

// FileSource reads pages straight from the generated output directory.
type FileSource struct{}

// NewFileSource returns a FileSource.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Fetch opens page.File. A page with no backing file cannot be served.
func (*FileSource) Fetch(ctx context.Context, page Page) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if page.File == "" {
		return nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			URL:     page.Route,
			Message: "route has no backing file; use the http or browser source",
		}
	}

	f, err := os.Open(page.File)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.FetchFailed,
			URL:     page.File,
			Message: "could not read page file",
			Cause:   err,
		}
	}
	return f, nil
}

// Close is a no-op.
func (*FileSource) Close() error { return nil }

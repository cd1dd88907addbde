package verifier

import (
	"context"
	"fmt"

	"github.com/Bahjat/seoverify/internal/platform/config"
	"github.com/Bahjat/seoverify/internal/platform/errs"
	"github.com/Bahjat/seoverify/internal/seo"
)

// SourceOpener opens the page source of the given kind.
type SourceOpener func(ctx context.Context, kind config.Source, opts seo.NetworkOptions) (seo.PageSource, error)

// OpenSource is the default SourceOpener.
func OpenSource(ctx context.Context, kind config.Source, opts seo.NetworkOptions) (seo.PageSource, error) {
	switch kind {
	case config.SourceFile:
		return seo.NewFileSource(), nil
	case config.SourceHTTP:
		return seo.NewHTTPSource(opts), nil
	case config.SourceBrowser:
		src, err := seo.NewBrowserSource(ctx, opts)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, &errs.AppError{Kind: errs.InvalidInput, Message: fmt.Sprintf("unknown page source %q", kind)}
	}
}

package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header that carries a request ID between the crawler
// and the preview server.
const Header = "X-Request-ID"

type ctxKey struct{}

// New returns a fresh random request ID.
func New() string {
	return uuid.New().String()
}

// NewContext returns a context that carries the given request ID.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID stored in ctx, or an empty string.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Package cookies persists the client's cookie jar: the device identifier
// and the remember-me pair. Every cookie keeps its own expiry and security
// attributes; an expired cookie reads as absent.
package cookies

import (
	"context"
	"net/http"
)

type Repository interface {
	// Get returns (nil, nil) when the cookie is missing or expired.
	Get(ctx context.Context, name string) (*http.Cookie, error)
	Set(ctx context.Context, c *http.Cookie) error
	Delete(ctx context.Context, name string) error
}

package device

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/evento/internal/client/repositories/cookies"
)

const (
	// CookieName holds the device identifier.
	CookieName = "deviceId"

	// IDTTL keeps the identifier for a year after it was last written.
	IDTTL = 365 * 24 * time.Hour
)

// EnsureID returns the persisted device identifier, generating and storing a
// new random one when none exists yet. Two concurrent first calls may both
// generate an id; the last write wins and either value is a valid id.
func EnsureID(ctx context.Context, jar cookies.Repository) (string, error) {
	c, err := jar.Get(ctx, CookieName)
	if err != nil {
		return "", fmt.Errorf("read device id: %w", err)
	}
	if c != nil && c.Value != "" {
		return c.Value, nil
	}

	id := uuid.NewString()
	err = jar.Set(ctx, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(IDTTL),
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	if err != nil {
		return "", fmt.Errorf("store device id: %w", err)
	}
	return id, nil
}

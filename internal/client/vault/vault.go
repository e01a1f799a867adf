// Package vault keeps the remember-me credentials of the last login as a
// pair of encrypted cookies.
package vault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/evento/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/evento/internal/cryptox"
	"github.com/dmitrijs2005/evento/internal/logging"
)

const (
	EmailCookie    = "rememberedEmail"
	PasswordCookie = "rememberedPassword"

	// TTL is how long remembered credentials survive without a new login.
	TTL = 7 * 24 * time.Hour

	keyInfo = "evento-remember-me"
)

var ErrEmptySecret = errors.New("vault secret is empty")

// Credentials is what Recall hands back to pre-fill the login form. Either
// field may be empty.
type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Empty() bool {
	return c.Email == "" && c.Password == ""
}

type Vault struct {
	jar    cookies.Repository
	key    []byte
	logger logging.Logger
	now    func() time.Time
}

// New derives the cookie cipher key from secret. The secret is a build-time
// value; see buildinfo.VaultSecret.
func New(jar cookies.Repository, secret []byte, logger logging.Logger) (*Vault, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	key, err := cryptox.DeriveKey(secret, keyInfo)
	if err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}
	return &Vault{jar: jar, key: key, logger: logger, now: time.Now}, nil
}

// batchJar is implemented by jars that can store several cookies atomically.
type batchJar interface {
	SetAll(ctx context.Context, cs ...*http.Cookie) error
}

// Remember encrypts both values and writes them with identical attributes.
func (v *Vault) Remember(ctx context.Context, email, password string) error {
	expires := v.now().Add(TTL)
	var pair []*http.Cookie
	for _, f := range []struct{ name, value string }{
		{EmailCookie, email},
		{PasswordCookie, password},
	} {
		sealed, err := cryptox.Seal(f.value, v.key)
		if err != nil {
			return fmt.Errorf("seal %s: %w", f.name, err)
		}
		pair = append(pair, &http.Cookie{
			Name:     f.name,
			Value:    sealed,
			Path:     "/",
			Expires:  expires,
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}

	if b, ok := v.jar.(batchJar); ok {
		if err := b.SetAll(ctx, pair...); err != nil {
			return fmt.Errorf("store remembered credentials: %w", err)
		}
		return nil
	}
	for _, c := range pair {
		if err := v.jar.Set(ctx, c); err != nil {
			return fmt.Errorf("store %s: %w", c.Name, err)
		}
	}
	return nil
}

func (v *Vault) Forget(ctx context.Context) error {
	if err := v.jar.Delete(ctx, EmailCookie); err != nil {
		return fmt.Errorf("forget %s: %w", EmailCookie, err)
	}
	if err := v.jar.Delete(ctx, PasswordCookie); err != nil {
		return fmt.Errorf("forget %s: %w", PasswordCookie, err)
	}
	return nil
}

// Recall returns the stored credentials. A missing cookie yields an empty
// field. A cookie that no longer decrypts is removed and also yields an
// empty field; only storage failures are reported as errors.
func (v *Vault) Recall(ctx context.Context) (Credentials, error) {
	email, err := v.recall(ctx, EmailCookie)
	if err != nil {
		return Credentials{}, err
	}
	password, err := v.recall(ctx, PasswordCookie)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Email: email, Password: password}, nil
}

func (v *Vault) recall(ctx context.Context, name string) (string, error) {
	c, err := v.jar.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("recall %s: %w", name, err)
	}
	if c == nil || c.Value == "" {
		return "", nil
	}

	plain, err := cryptox.Open(c.Value, v.key)
	if err != nil {
		v.logger.Warn(ctx, "tampered remember-me cookie", "cookie", name, "error", err)
		if err := v.jar.Delete(ctx, name); err != nil {
			return "", fmt.Errorf("drop %s: %w", name, err)
		}
		return "", nil
	}
	return plain, nil
}

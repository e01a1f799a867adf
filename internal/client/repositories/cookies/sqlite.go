package cookies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/evento/internal/dbx"
)

var ErrInvalidCookie = errors.New("invalid cookie")

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Get(ctx context.Context, name string) (*http.Cookie, error) {
	var (
		c                          http.Cookie
		expiresAt                  int64
		secure, httpOnly, sameSite int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT name, value, path, expires_at, secure, http_only, same_site FROM cookies WHERE name = ?`, name).
		Scan(&c.Name, &c.Value, &c.Path, &expiresAt, &secure, &httpOnly, &sameSite)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cookie[%s]: %w", name, err)
	}

	if expiresAt > 0 {
		c.Expires = time.Unix(expiresAt, 0)
		if !r.now().Before(c.Expires) {
			if err := r.Delete(ctx, name); err != nil {
				return nil, err
			}
			return nil, nil
		}
	}
	c.Secure = secure == 1
	c.HttpOnly = httpOnly == 1
	c.SameSite = http.SameSite(sameSite)
	return &c, nil
}

// Set stores c, replacing any cookie with the same name. A positive MaxAge
// takes precedence over Expires, as browsers do; a negative MaxAge deletes.
func (r *SQLiteRepository) Set(ctx context.Context, c *http.Cookie) error {
	if c == nil || c.Name == "" {
		return ErrInvalidCookie
	}
	if c.MaxAge < 0 {
		return r.Delete(ctx, c.Name)
	}

	var expiresAt int64
	switch {
	case c.MaxAge > 0:
		expiresAt = r.now().Add(time.Duration(c.MaxAge) * time.Second).Unix()
	case !c.Expires.IsZero():
		expiresAt = c.Expires.Unix()
	}

	path := c.Path
	if path == "" {
		path = "/"
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cookies (name, value, path, expires_at, secure, http_only, same_site)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			path = excluded.path,
			expires_at = excluded.expires_at,
			secure = excluded.secure,
			http_only = excluded.http_only,
			same_site = excluded.same_site
	`, c.Name, c.Value, path, expiresAt, boolToInt(c.Secure), boolToInt(c.HttpOnly), int(c.SameSite))
	if err != nil {
		return fmt.Errorf("set cookie[%s]: %w", c.Name, err)
	}
	return nil
}

// SetAll stores every cookie or none of them. When the repository already
// runs inside a transaction the writes join it.
func (r *SQLiteRepository) SetAll(ctx context.Context, cs ...*http.Cookie) error {
	db, ok := r.db.(*sql.DB)
	if !ok {
		return r.setEach(ctx, cs)
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := &SQLiteRepository{db: tx, now: r.now}
		return txRepo.setEach(ctx, cs)
	})
}

func (r *SQLiteRepository) setEach(ctx context.Context, cs []*http.Cookie) error {
	for _, c := range cs {
		if err := r.Set(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete cookie[%s]: %w", name, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

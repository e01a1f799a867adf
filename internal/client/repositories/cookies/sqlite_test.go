package cookies

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE cookies (
    name       TEXT PRIMARY KEY,
    value      TEXT    NOT NULL,
    path       TEXT    NOT NULL DEFAULT '/',
    expires_at INTEGER NOT NULL,
    secure     INTEGER NOT NULL DEFAULT 0,
    http_only  INTEGER NOT NULL DEFAULT 0,
    same_site  INTEGER NOT NULL DEFAULT 0
);`)
	require.NoError(t, err)
	return db
}

func newRepo(t *testing.T, now time.Time) *SQLiteRepository {
	t.Helper()
	r := NewSQLiteRepository(setupDB(t))
	r.now = func() time.Time { return now }
	return r
}

func TestSetGet_KeepsAttributes(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := newRepo(t, now)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &http.Cookie{
		Name:     "deviceId",
		Value:    "abc",
		Expires:  now.Add(24 * time.Hour),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}))

	c, err := r.Get(ctx, "deviceId")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, now.Add(24*time.Hour).Unix(), c.Expires.Unix())
}

func TestGet_Missing(t *testing.T) {
	r := newRepo(t, time.Now())

	c, err := r.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, c)
}

func TestGet_ExpiredIsAbsentAndPurged(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := newRepo(t, now)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &http.Cookie{Name: "old", Value: "v", Expires: now.Add(time.Hour)}))

	r.now = func() time.Time { return now.Add(2 * time.Hour) }

	c, err := r.Get(ctx, "old")
	require.NoError(t, err)
	require.Nil(t, c)

	var n int
	require.NoError(t, r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cookies`).Scan(&n))
	require.Zero(t, n)
}

func TestSet_MaxAge(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := newRepo(t, now)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &http.Cookie{Name: "m", Value: "v", MaxAge: 60}))
	c, err := r.Get(ctx, "m")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, now.Add(time.Minute).Unix(), c.Expires.Unix())

	require.NoError(t, r.Set(ctx, &http.Cookie{Name: "m", MaxAge: -1}))
	c, err = r.Get(ctx, "m")
	require.NoError(t, err)
	require.Nil(t, c)
}

func TestSet_UpsertAndSessionCookie(t *testing.T) {
	r := newRepo(t, time.Now())
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &http.Cookie{Name: "s", Value: "one"}))
	require.NoError(t, r.Set(ctx, &http.Cookie{Name: "s", Value: "two"}))

	c, err := r.Get(ctx, "s")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "two", c.Value)
	assert.True(t, c.Expires.IsZero())
}

func TestSet_Invalid(t *testing.T) {
	r := newRepo(t, time.Now())
	require.ErrorIs(t, r.Set(context.Background(), nil), ErrInvalidCookie)
	require.ErrorIs(t, r.Set(context.Background(), &http.Cookie{Value: "x"}), ErrInvalidCookie)
}

func TestDelete_Idempotent(t *testing.T) {
	r := newRepo(t, time.Now())
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, &http.Cookie{Name: "x", Value: "1"}))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx, "x"))
}

func TestSetAll_StoresEveryCookie(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newRepo(t, now)
	ctx := context.Background()

	err := r.SetAll(ctx,
		&http.Cookie{Name: "a", Value: "1", Expires: now.Add(time.Hour)},
		&http.Cookie{Name: "b", Value: "2", Expires: now.Add(time.Hour)},
	)
	require.NoError(t, err)

	for name, want := range map[string]string{"a": "1", "b": "2"} {
		c, err := r.Get(ctx, name)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, want, c.Value)
	}
}

func TestSetAll_RollsBackOnInvalidCookie(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newRepo(t, now)
	ctx := context.Background()

	err := r.SetAll(ctx,
		&http.Cookie{Name: "a", Value: "1", Expires: now.Add(time.Hour)},
		&http.Cookie{Value: "nameless"},
	)
	require.ErrorIs(t, err, ErrInvalidCookie)

	c, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, c)
}

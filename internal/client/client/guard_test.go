package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/evento/internal/logging"
)

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeSignOut struct {
	log   *callLog
	Calls int
	Err   error
}

func (f *fakeSignOut) SignOut(context.Context) error {
	f.Calls++
	f.log.add("signout")
	return f.Err
}

type orderedTokens struct {
	*fakeTokens
	log *callLog
}

func (o orderedTokens) ClearToken(ctx context.Context) error {
	o.log.add("clear")
	return o.fakeTokens.ClearToken(ctx)
}

type fakeNav struct {
	log       *callLog
	current   string
	LastRoute string
	LastState any
	Replaces  int
}

func (n *fakeNav) Replace(route string, state any) {
	n.log.add("navigate")
	n.Replaces++
	n.LastRoute, n.LastState = route, state
	n.current = route
}

func (n *fakeNav) Current() string { return n.current }

type guardFixture struct {
	log    *callLog
	signer *fakeSignOut
	tokens *fakeTokens
	nav    *fakeNav
	guard  *Guard
	client *HTTPClient
}

func newGuardFixture(t *testing.T, status int, body map[string]any) *guardFixture {
	t.Helper()
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) { respond(w, status, body) })

	f := &guardFixture{log: &callLog{}, tokens: &fakeTokens{token: "stale"}}
	f.signer = &fakeSignOut{log: f.log}
	f.nav = &fakeNav{log: f.log, current: "admin/events"}
	f.guard = NewGuard(f.signer, orderedTokens{f.tokens, f.log}, f.nav, logging.Nop())
	f.client = newClient(t, srv.URL)
	f.client.UseRequest(BearerToken(f.tokens))
	f.guard.Attach(f.client)
	return f
}

func TestGuard_ForbiddenFiresOnceInOrder(t *testing.T) {
	f := newGuardFixture(t, 403, map[string]any{"message": "forbidden"})

	req := &Request{Path: "/api/events"}
	_, err := f.client.Do(context.Background(), req)

	require.ErrorIs(t, err, ErrUnauthorized)
	apiErr, _ := AsAPIError(err)
	assert.Equal(t, 403, apiErr.Status)
	assert.Equal(t, "forbidden", apiErr.Message)

	assert.Equal(t, 1, f.signer.Calls)
	tok, _ := f.tokens.Token(context.Background())
	assert.Empty(t, tok)
	assert.Equal(t, []string{"signout", "clear", "navigate"}, f.log.list())
	assert.Equal(t, LoginRoute, f.nav.LastRoute)
	assert.Equal(t, LoginState{From: "admin/events", Expired: true}, f.nav.LastState)
	assert.True(t, req.Retried())
	assert.Equal(t, StateRetryAttempted, f.guard.LastState())
	assert.Equal(t, 1, f.guard.Fired())
}

func TestGuard_RetriedRequestIsTerminal(t *testing.T) {
	f := newGuardFixture(t, 401, map[string]any{"message": "expired"})

	req := &Request{Path: "/api/events"}
	_, err := f.client.Do(context.Background(), req)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.client.Do(context.Background(), req)
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, 1, f.signer.Calls)
	assert.Equal(t, 1, f.nav.Replaces)
	assert.Equal(t, StateTerminal, f.guard.LastState())
	assert.Equal(t, 1, f.guard.Fired())
}

func TestGuard_IndependentCallsEachFire(t *testing.T) {
	f := newGuardFixture(t, 401, map[string]any{"message": "expired"})

	_, _ = f.client.Do(context.Background(), &Request{Path: "/api/events"})
	_, _ = f.client.Do(context.Background(), &Request{Path: "/api/blogs"})

	assert.Equal(t, 2, f.guard.Fired())
	// both redirects replace the same login entry
	assert.Equal(t, LoginRoute, f.nav.LastRoute)
}

func TestGuard_IgnoresOtherFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
		public bool
	}{
		{"server error", 500, map[string]any{"message": "boom"}, false},
		{"not found", 404, map[string]any{"message": "missing"}, false},
		{"bad credentials on login", 401, map[string]any{"message": "Invalid credentials"}, true},
		{"device limit", 403, map[string]any{"code": DeviceLimitCode}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGuardFixture(t, tt.status, tt.body)
			req := &Request{Path: "/api/login", Public: tt.public}

			_, err := f.client.Do(context.Background(), req)
			require.Error(t, err)

			assert.Zero(t, f.signer.Calls)
			assert.Zero(t, f.nav.Replaces)
			assert.False(t, req.Retried())
			assert.Equal(t, StateNormal, f.guard.LastState())
		})
	}
}

func TestGuard_ContinuesWhenSignOutFails(t *testing.T) {
	f := newGuardFixture(t, 401, map[string]any{})
	f.signer.Err = errors.New("identity offline")

	_, err := f.client.Do(context.Background(), &Request{Path: "/api/users"})
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, []string{"signout", "clear", "navigate"}, f.log.list())
}

func TestGuard_DetachStopsHandling(t *testing.T) {
	srv := newAPIServer(t, func(w http.ResponseWriter, r *http.Request) { respond(w, 401, map[string]any{}) })
	c := newClient(t, srv.URL)
	log := &callLog{}
	nav := &fakeNav{log: log}
	g := NewGuard(&fakeSignOut{log: log}, &fakeTokens{}, nav, logging.Nop())

	detach := g.Attach(c)
	detach()

	_, err := c.Do(context.Background(), &Request{Path: "/api/users"})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, nav.Replaces)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "normal", StateNormal.String())
	assert.Equal(t, "retry-attempted", StateRetryAttempted.String())
	assert.Equal(t, "terminal", StateTerminal.String())
	assert.Equal(t, "unknown", State(42).String())
}

package client

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/evento/internal/logging"
)

// State is a step of the session guard's handling of one failed call.
type State int

const (
	StateNormal State = iota
	StateUnauthorizedDetected
	StateRetryAttempted
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateUnauthorizedDetected:
		return "unauthorized-detected"
	case StateRetryAttempted:
		return "retry-attempted"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// LoginRoute is where an expired session is sent.
const LoginRoute = "login"

// LoginState travels with the redirect to the login view.
type LoginState struct {
	From    string
	Expired bool
}

type Navigator interface {
	// Replace swaps the current view for route without adding history.
	Replace(route string, state any)
	Current() string
}

type SignOuter interface {
	SignOut(ctx context.Context) error
}

type TokenClearer interface {
	ClearToken(ctx context.Context) error
}

// Guard ends the local session when the backend rejects a call as
// unauthorized: it signs out, clears the stored token and replaces the
// current view with the login view. Each call triggers it at most once.
type Guard struct {
	identity SignOuter
	tokens   TokenClearer
	nav      Navigator
	logger   logging.Logger

	mu    sync.Mutex
	last  State
	fired int
}

func NewGuard(identity SignOuter, tokens TokenClearer, nav Navigator, logger logging.Logger) *Guard {
	return &Guard{identity: identity, tokens: tokens, nav: nav, logger: logger}
}

// Attach registers the guard on c and returns the matching eject func.
func (g *Guard) Attach(c *HTTPClient) (detach func()) {
	return c.UseError(g.Intercept)
}

// Intercept is the ErrorInterceptor run for every failed call.
func (g *Guard) Intercept(ctx context.Context, req *Request, err *APIError) {
	g.mu.Lock()
	g.last = g.advance(req, err)
	fire := g.last == StateRetryAttempted
	if fire {
		g.fired++
	}
	g.mu.Unlock()

	if fire {
		g.handleUnauthorized(ctx, req)
	}
}

func (g *Guard) advance(req *Request, err *APIError) State {
	if req.Public || !err.Unauthorized() {
		return StateNormal
	}
	// StateUnauthorizedDetected
	if req.retried {
		return StateTerminal
	}
	req.retried = true
	return StateRetryAttempted
}

func (g *Guard) handleUnauthorized(ctx context.Context, req *Request) {
	from := g.nav.Current()
	g.logger.Warn(ctx, "session rejected by backend, signing out", "path", req.Path, "view", from)

	if err := g.identity.SignOut(ctx); err != nil {
		g.logger.Error(ctx, "sign out after unauthorized response", "error", err)
	}
	if err := g.tokens.ClearToken(ctx); err != nil {
		g.logger.Error(ctx, "clear token after unauthorized response", "error", err)
	}
	g.nav.Replace(LoginRoute, LoginState{From: from, Expired: true})
}

// LastState returns the state reached by the most recent failed call.
func (g *Guard) LastState() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Fired counts how many times the unauthorized handler ran.
func (g *Guard) Fired() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fired
}

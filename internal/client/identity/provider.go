package identity

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/evento/internal/client/models"
	"github.com/dmitrijs2005/evento/internal/logging"
)

// Provider owns the current user. It subscribes to the backend when
// constructed and keeps the subscription until Close.
//
// Until the backend delivers its first notification the current user is
// unknown: Current reports loaded == false.
type Provider struct {
	backend Backend
	logger  logging.Logger

	mu       sync.RWMutex
	user     *models.User
	loaded   bool
	watchers map[int]func(*models.User)
	nextID   int

	busy        atomic.Int32
	unsubscribe func()
	closeOnce   sync.Once
}

func NewProvider(backend Backend, logger logging.Logger) *Provider {
	p := &Provider{
		backend:  backend,
		logger:   logger,
		watchers: map[int]func(*models.User){},
	}
	p.unsubscribe = backend.OnSessionStateChange(p.setUser)
	return p
}

func (p *Provider) setUser(u *models.User) {
	p.mu.Lock()
	p.user = cloneUser(u)
	p.loaded = true
	fns := make([]func(*models.User), 0, len(p.watchers))
	for _, fn := range p.watchers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(cloneUser(u))
	}
}

// Current returns a copy of the signed-in user, nil when nobody is signed
// in. loaded is false while the session state is still unknown.
func (p *Provider) Current() (user *models.User, loaded bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cloneUser(p.user), p.loaded
}

// Watch calls fn on every session-state change until cancel is called.
func (p *Provider) Watch(fn func(*models.User)) (cancel func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.watchers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

// Busy reports whether an identity operation is in flight.
func (p *Provider) Busy() bool {
	return p.busy.Load() > 0
}

func (p *Provider) begin() func() {
	p.busy.Add(1)
	return func() { p.busy.Add(-1) }
}

func (p *Provider) Register(ctx context.Context, email, password string) (*models.User, error) {
	defer p.begin()()
	u, err := p.backend.CreateAccount(ctx, email, password)
	if err != nil {
		p.logger.Debug(ctx, "register failed", "email", email, "error", err)
		return nil, err
	}
	return u, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	defer p.begin()()
	u, err := p.backend.Authenticate(ctx, email, password)
	if err != nil {
		p.logger.Debug(ctx, "sign in failed", "email", email, "error", err)
		return nil, err
	}
	return u, nil
}

// SignInWithProvider runs the backend's interactive federated flow and
// returns the resulting profile.
func (p *Provider) SignInWithProvider(ctx context.Context) (*models.User, error) {
	defer p.begin()()
	u, err := p.backend.FederatedAuthenticate(ctx)
	if err != nil {
		p.logger.Debug(ctx, "federated sign in failed", "error", err)
		return nil, err
	}
	return u, nil
}

func (p *Provider) SignOut(ctx context.Context) error {
	defer p.begin()()
	return p.backend.TerminateSession(ctx)
}

// ReloadCurrentUser refreshes the profile of the signed-in user. It does
// nothing when nobody is signed in.
func (p *Provider) ReloadCurrentUser(ctx context.Context) error {
	if u, _ := p.Current(); u == nil {
		return nil
	}

	defer p.begin()()
	u, err := p.backend.Reload(ctx)
	if err != nil {
		return err
	}
	p.setUser(u)
	return nil
}

// Close tears down the backend subscription. It is safe to call twice.
func (p *Provider) Close() {
	p.closeOnce.Do(func() {
		if p.unsubscribe != nil {
			p.unsubscribe()
		}
	})
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

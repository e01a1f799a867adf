package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/evento/internal/buildinfo"
	"github.com/dmitrijs2005/evento/internal/client/client"
	"github.com/dmitrijs2005/evento/internal/client/config"
	"github.com/dmitrijs2005/evento/internal/client/device"
	"github.com/dmitrijs2005/evento/internal/client/identity"
	"github.com/dmitrijs2005/evento/internal/client/models"
	"github.com/dmitrijs2005/evento/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/evento/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/evento/internal/client/services"
	"github.com/dmitrijs2005/evento/internal/client/vault"
	"github.com/dmitrijs2005/evento/internal/logging"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Views the App navigates between.
const (
	RouteLogin       = client.LoginRoute
	RouteHome        = "home"
	RouteDeviceLimit = "device-limit"
)

// UserSource reports the signed-in user; identity.Provider implements it.
type UserSource interface {
	Current() (*models.User, bool)
	ReloadCurrentUser(ctx context.Context) error
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	http     *client.HTTPClient
	tokens   services.TokenStore
	identity UserSource
	auth     services.AuthService
	content  *services.ContentService
	reader   *bufio.Reader
	out      io.Writer

	mu         sync.Mutex
	route      string
	routeState any
	Mode       Mode

	closers []func()
}

// NewApp is the composition root: it opens the local store and builds every
// component on top of it.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	a := &App{
		config: c,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		route:  RouteLogin,
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, func() { _ = db.Close() })

	meta := metadata.NewSQLiteRepository(db)
	tokens := metadata.NewTokenStore(meta)
	jar := cookies.NewSQLiteRepository(db)
	a.tokens = tokens

	v, err := vault.New(jar, []byte(buildinfo.VaultSecret), logger.With("component", "vault"))
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	ua := c.UserAgent
	if ua == "" {
		ua = device.DefaultUserAgent(buildinfo.Version)
	}

	httpClient, err := client.NewHTTPClient(client.Options{
		BaseURL: c.APIBaseURL,
		Timeout: c.RequestTimeout,
		Logger:  logger.With("component", "http"),
	})
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.http = httpClient
	a.closers = append(a.closers,
		httpClient.Close,
		httpClient.UseRequest(client.BearerToken(tokens)),
		httpClient.UseRequest(client.UserAgent(ua)),
	)

	var federated identity.FederatedFlow
	if c.GoogleClientID != "" {
		federated = &identity.GoogleFlow{
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			ListenAddr:   c.OAuthListenAddr,
			OpenURL:      a.openURL,
		}
	}
	backend := identity.NewFirebaseBackend(identity.FirebaseConfig{
		APIKey:              c.IdentityAPIKey,
		IdentityEndpoint:    c.IdentityEndpoint,
		SecureTokenEndpoint: c.SecureTokenEndpoint,
		Federated:           federated,
	}, meta)
	provider := identity.NewProvider(backend, logger.With("component", "identity"))
	a.identity = provider
	a.closers = append(a.closers, provider.Watch(a.onSessionChange))
	if err := backend.Start(ctx); err != nil {
		logger.Warn(ctx, "restore identity session", "error", err)
	}

	guard := client.NewGuard(provider, tokens, a, logger.With("component", "guard"))
	a.closers = append(a.closers, guard.Attach(httpClient))

	a.auth = services.NewAuthService(services.AuthDeps{
		Identity:  provider,
		API:       client.NewAPI(httpClient),
		Tokens:    tokens,
		Vault:     v,
		Cookies:   jar,
		UserAgent: ua,
		Logger:    logger.With("component", "auth"),
	})
	a.content = services.NewContentService(httpClient)

	if a.isLoggedIn(ctx) {
		a.route = RouteHome
	}
	return a, nil
}

// Close releases everything NewApp acquired, newest first.
func (a *App) Close(ctx context.Context) {
	if a.auth != nil {
		_ = a.auth.Close(ctx)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	fmt.Fprintln(a.out, "Welcome to Evento CLI (type 'help' for commands)")

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) openURL(url string) error {
	_, err := fmt.Fprintf(a.out, "Open this address in your browser to continue:\n%s\n", url)
	return err
}

func (a *App) onSessionChange(u *models.User) {
	if u == nil {
		a.logger.Debug(context.Background(), "identity signed out")
		return
	}
	a.logger.Debug(context.Background(), "identity signed in", "uid", u.UID)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	token, err := a.tokens.Token(ctx)
	return err == nil && token != ""
}

func (a *App) currentUser() *models.User {
	if a.identity == nil {
		return nil
	}
	u, _ := a.identity.Current()
	return u
}

func (a *App) getStatus() string {
	s := ""
	if u := a.currentUser(); u != nil {
		s = u.Email + " "
	}
	a.mu.Lock()
	s += string(a.Mode)
	a.mu.Unlock()
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher pings the backend every interval and tracks the
// connectivity mode until ctx is done. A non-positive interval disables it.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.auth.Ping(pingCtx); err != nil {
			a.setMode(ModeOffline)
			return
		}
		a.setMode(ModeOnline)
	}

	check()
	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}

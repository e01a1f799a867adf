package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/evento/internal/client/models"
	"github.com/dmitrijs2005/evento/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/evento/internal/common"
)

// SessionKey is the metadata key holding the persisted identity session.
const SessionKey = "identity_session"

// expirySkew refreshes id tokens slightly before they actually expire.
const expirySkew = 30 * time.Second

// FederatedFlow obtains an identity-provider credential interactively.
type FederatedFlow interface {
	Authorize(ctx context.Context) (Credential, error)
}

// Credential is the provider-issued proof exchanged for an identity session.
type Credential struct {
	ProviderID string
	IDToken    string
}

type FirebaseConfig struct {
	APIKey              string
	IdentityEndpoint    string
	SecureTokenEndpoint string
	HTTPClient          *http.Client
	Federated           FederatedFlow
}

type session struct {
	IDToken      string      `json:"idToken"`
	RefreshToken string      `json:"refreshToken"`
	User         models.User `json:"user"`
}

// FirebaseBackend talks to the Identity Toolkit REST API. The session is
// persisted in the metadata store so it survives restarts.
type FirebaseBackend struct {
	cfg   FirebaseConfig
	store metadata.Repository
	http  *http.Client
	now   func() time.Time

	mu      sync.Mutex
	session *session
	subs    map[int]func(*models.User)
	nextSub int
}

func NewFirebaseBackend(cfg FirebaseConfig, store metadata.Repository) *FirebaseBackend {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	cfg.IdentityEndpoint = strings.TrimRight(cfg.IdentityEndpoint, "/")
	cfg.SecureTokenEndpoint = strings.TrimRight(cfg.SecureTokenEndpoint, "/")
	return &FirebaseBackend{
		cfg:   cfg,
		store: store,
		http:  hc,
		now:   time.Now,
		subs:  map[int]func(*models.User){},
	}
}

// Start restores the persisted session and delivers the first state
// notification. An unreadable session, or one whose refresh token was
// revoked, is discarded; a failure to delete it is returned.
func (b *FirebaseBackend) Start(ctx context.Context) error {
	raw, err := b.store.Get(ctx, SessionKey)
	if err != nil {
		b.emit(nil)
		return fmt.Errorf("load identity session: %w", err)
	}
	if len(raw) == 0 {
		b.emit(nil)
		return nil
	}

	var s session
	if err := json.Unmarshal(raw, &s); err != nil || s.RefreshToken == "" {
		err := b.drop(ctx)
		b.emit(nil)
		return err
	}

	b.mu.Lock()
	b.session = &s
	b.mu.Unlock()

	if _, err := b.freshToken(ctx); err != nil {
		var idErr *Error
		if errors.As(err, &idErr) {
			err := b.drop(ctx)
			b.emit(nil)
			return err
		}
		// offline: keep the session, the token is refreshed on next use
		b.emit(&s.User)
		return err
	}

	u := b.currentUser()
	b.emit(u)
	return nil
}

func (b *FirebaseBackend) OnSessionStateChange(fn func(*models.User)) func() {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *FirebaseBackend) emit(u *models.User) {
	b.mu.Lock()
	fns := make([]func(*models.User), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		if u == nil {
			fn(nil)
			continue
		}
		c := *u
		fn(&c)
	}
}

type authResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	PhoneNumber  string `json:"phoneNumber"`
}

func (b *FirebaseBackend) CreateAccount(ctx context.Context, email, password string) (*models.User, error) {
	var resp authResponse
	err := b.call(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return b.establish(ctx, resp)
}

func (b *FirebaseBackend) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var resp authResponse
	err := b.call(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return b.establish(ctx, resp)
}

// FederatedAuthenticate runs the configured interactive flow and exchanges
// its credential for an identity session.
func (b *FirebaseBackend) FederatedAuthenticate(ctx context.Context) (*models.User, error) {
	if b.cfg.Federated == nil {
		return nil, ErrFederatedDisabled
	}
	cred, err := b.cfg.Federated.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	postBody := url.Values{}
	postBody.Set("id_token", cred.IDToken)
	postBody.Set("providerId", cred.ProviderID)

	var resp authResponse
	err = b.call(ctx, "accounts:signInWithIdp", map[string]any{
		"postBody":            postBody.Encode(),
		"requestUri":          "http://localhost",
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return b.establish(ctx, resp)
}

// TerminateSession forgets the local session. Identity Toolkit sessions
// are bearer-only, so there is nothing to revoke remotely.
func (b *FirebaseBackend) TerminateSession(ctx context.Context) error {
	err := b.drop(ctx)
	b.emit(nil)
	return err
}

func (b *FirebaseBackend) Reload(ctx context.Context) (*models.User, error) {
	token, err := b.freshToken(ctx)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Users []authResponse `json:"users"`
	}
	if err := b.call(ctx, "accounts:lookup", map[string]any{"idToken": token}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, &Error{Status: http.StatusBadRequest, Code: CodeUserNotFound}
	}

	u := userFrom(resp.Users[0])
	b.mu.Lock()
	if b.session == nil {
		b.mu.Unlock()
		return nil, ErrNoSession
	}
	b.session.User = u
	s := *b.session
	b.mu.Unlock()

	if err := b.persist(ctx, &s); err != nil {
		return nil, err
	}
	return &u, nil
}

// IDToken returns a valid id token for the signed-in user, refreshing it
// when it is about to expire.
func (b *FirebaseBackend) IDToken(ctx context.Context) (string, error) {
	return b.freshToken(ctx)
}

func (b *FirebaseBackend) establish(ctx context.Context, resp authResponse) (*models.User, error) {
	if resp.IDToken == "" || resp.LocalID == "" {
		return nil, ErrMalformedResponse
	}
	s := &session{IDToken: resp.IDToken, RefreshToken: resp.RefreshToken, User: userFrom(resp)}

	b.mu.Lock()
	b.session = s
	b.mu.Unlock()

	if err := b.persist(ctx, s); err != nil {
		return nil, err
	}
	u := s.User
	b.emit(&u)
	return &u, nil
}

func (b *FirebaseBackend) currentUser() *models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return nil
	}
	u := b.session.User
	return &u
}

func (b *FirebaseBackend) persist(ctx context.Context, s *session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := b.store.Set(ctx, SessionKey, raw); err != nil {
		return fmt.Errorf("save identity session: %w", err)
	}
	return nil
}

func (b *FirebaseBackend) drop(ctx context.Context) error {
	b.mu.Lock()
	b.session = nil
	b.mu.Unlock()
	if err := b.store.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("drop identity session: %w", err)
	}
	return nil
}

func (b *FirebaseBackend) freshToken(ctx context.Context) (string, error) {
	b.mu.Lock()
	s := b.session
	b.mu.Unlock()
	if s == nil {
		return "", ErrNoSession
	}
	if !b.expired(s.IDToken) {
		return s.IDToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", s.RefreshToken)

	endpoint := b.cfg.SecureTokenEndpoint + "/token?key=" + url.QueryEscape(b.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := b.do(req, &resp); err != nil {
		return "", err
	}
	if resp.IDToken == "" {
		return "", ErrMalformedResponse
	}

	b.mu.Lock()
	if b.session == nil {
		b.mu.Unlock()
		return "", ErrNoSession
	}
	b.session.IDToken = resp.IDToken
	if resp.RefreshToken != "" {
		b.session.RefreshToken = resp.RefreshToken
	}
	updated := *b.session
	b.mu.Unlock()

	if err := b.persist(ctx, &updated); err != nil {
		return "", err
	}
	return updated.IDToken, nil
}

// expired inspects the exp claim without verifying the signature; the
// token is only ever presented back to its issuer.
func (b *FirebaseBackend) expired(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !b.now().Add(expirySkew).Before(claims.ExpiresAt.Time)
}

func (b *FirebaseBackend) call(ctx context.Context, method string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := b.cfg.IdentityEndpoint + "/" + method + "?key=" + url.QueryEscape(b.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", common.ApplicationJSON)
	return b.do(req, out)
}

func (b *FirebaseBackend) do(req *http.Request, out any) error {
	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("identity response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return parseError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// parseError understands both the Identity Toolkit shape
// {"error":{"message":"CODE : detail"}} and the Secure Token shape
// {"error":"invalid_grant","error_description":"CODE"}.
func parseError(status int, data []byte) error {
	var toolkit struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &toolkit) == nil && toolkit.Error.Message != "" {
		code, detail, _ := strings.Cut(toolkit.Error.Message, " : ")
		return &Error{Status: status, Code: strings.TrimSpace(code), Message: strings.TrimSpace(detail)}
	}

	var oauth struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if json.Unmarshal(data, &oauth) == nil && (oauth.Description != "" || oauth.Error != "") {
		code := oauth.Description
		if code == "" {
			code = strings.ToUpper(oauth.Error)
		}
		return &Error{Status: status, Code: code}
	}

	return &Error{Status: status, Code: http.StatusText(status)}
}

func userFrom(r authResponse) models.User {
	return models.User{
		UID:         r.LocalID,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		Phone:       r.PhoneNumber,
		PhotoURL:    r.PhotoURL,
	}
}

package identity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/evento/internal/common"
)

const (
	GoogleIssuer     = "https://accounts.google.com"
	GoogleProviderID = "google.com"

	callbackPath = "/callback"
)

// GoogleFlow is an OAuth 2.0 authorization code flow with PKCE against an
// OpenID Connect issuer. The browser is sent back to a loopback listener;
// the returned id_token is verified before it is handed on.
type GoogleFlow struct {
	ClientID     string
	ClientSecret string
	// ListenAddr is the loopback address of the redirect listener.
	ListenAddr string
	// Issuer defaults to GoogleIssuer.
	Issuer string
	// OpenURL presents the consent URL to the user.
	OpenURL func(url string) error
	// HTTPClient is used for discovery, key fetch and code exchange.
	HTTPClient *http.Client
	// Timeout bounds the wait for the browser callback.
	Timeout time.Duration
}

type callbackResult struct {
	code string
	err  error
}

func (g *GoogleFlow) Authorize(ctx context.Context) (Credential, error) {
	if g.ClientID == "" {
		return Credential{}, ErrFederatedDisabled
	}
	if g.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, g.HTTPClient)
	}

	issuer := g.Issuer
	if issuer == "" {
		issuer = GoogleIssuer
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return Credential{}, fmt.Errorf("oidc discovery: %w", err)
	}

	addr := g.ListenAddr
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return Credential{}, fmt.Errorf("listen for oauth callback: %w", err)
	}

	conf := &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  "http://" + ln.Addr().String() + callbackPath,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}

	state, err := common.MakeRandHexString(16)
	if err != nil {
		_ = ln.Close()
		return Credential{}, err
	}
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = errors.New("oauth callback state mismatch")
		case q.Get("error") != "":
			res.err = fmt.Errorf("%w: %s", ErrFederatedCancelled, q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("oauth callback without code")
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Signed in. You can close this window.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
	if g.OpenURL != nil {
		if err := g.OpenURL(authURL); err != nil {
			return Credential{}, fmt.Errorf("open consent page: %w", err)
		}
	}

	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var res callbackResult
	select {
	case res = <-results:
	case <-waitCtx.Done():
		return Credential{}, fmt.Errorf("%w: %v", ErrFederatedCancelled, waitCtx.Err())
	}
	if res.err != nil {
		return Credential{}, res.err
	}

	tok, err := conf.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return Credential{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return Credential{}, ErrMalformedResponse
	}
	if _, err := provider.Verifier(&oidc.Config{ClientID: g.ClientID}).Verify(ctx, rawID); err != nil {
		return Credential{}, fmt.Errorf("verify id token: %w", err)
	}

	return Credential{ProviderID: GoogleProviderID, IDToken: rawID}, nil
}

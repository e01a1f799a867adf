package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/evento/internal/client/models"
)

// API exposes the authentication endpoints of the Evento backend.
type API struct {
	c *HTTPClient
}

func NewAPI(c *HTTPClient) *API {
	return &API{c: c}
}

type LoginRequest struct {
	Email    string        `json:"email"`
	Password string        `json:"password,omitempty"`
	UID      string        `json:"uid,omitempty"`
	Device   models.Device `json:"device"`
}

type SocialLoginRequest struct {
	Email  string        `json:"email"`
	Name   string        `json:"name,omitempty"`
	UID    string        `json:"uid"`
	Photo  string        `json:"photo,omitempty"`
	Device models.Device `json:"device"`
}

type NewUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	UID   string `json:"uid,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// LoginResult carries the bearer token issued on login.
type LoginResult struct {
	Token   string
	Message string
	Data    json.RawMessage
}

func (a *API) Login(ctx context.Context, in LoginRequest) (*LoginResult, error) {
	return a.login(ctx, "/api/login", in)
}

func (a *API) LoginSocial(ctx context.Context, in SocialLoginRequest) (*LoginResult, error) {
	return a.login(ctx, "/api/login-social", in)
}

func (a *API) login(ctx context.Context, path string, body any) (*LoginResult, error) {
	env, err := a.c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body, Public: true})
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: env.Token, Message: env.Message, Data: env.Data}, nil
}

// LogoutAll ends the account's sessions on every device. uid may be empty.
func (a *API) LogoutAll(ctx context.Context, email, uid string) error {
	body := struct {
		Email string `json:"email"`
		UID   string `json:"uid,omitempty"`
	}{email, uid}
	_, err := a.c.Do(ctx, &Request{Method: http.MethodPost, Path: "/api/logout-all", Body: body, Public: true})
	return err
}

func (a *API) CreateUser(ctx context.Context, u NewUser) error {
	_, err := a.c.Do(ctx, &Request{Method: http.MethodPost, Path: "/api/users/create", Body: u, Public: true})
	return err
}

// ForgotPassword asks the backend to mail a reset link and returns its
// message.
func (a *API) ForgotPassword(ctx context.Context, email string) (string, error) {
	body := struct {
		Email string `json:"email"`
	}{email}
	env, err := a.c.Do(ctx, &Request{Method: http.MethodPost, Path: "/api/users/forgot-password", Body: body, Public: true})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func (a *API) Ping(ctx context.Context) error {
	_, err := a.c.Do(ctx, &Request{Method: http.MethodGet, Path: "/api/health", Public: true})
	return err
}

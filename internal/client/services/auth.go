// Package services contains the application services of the Evento client.
// This file defines the authentication service: registration, password and
// federated login with device tracking, remember-me, logout on this or all
// devices, and token introspection.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/evento/internal/client/client"
	"github.com/dmitrijs2005/evento/internal/client/device"
	"github.com/dmitrijs2005/evento/internal/client/models"
	"github.com/dmitrijs2005/evento/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/evento/internal/client/vault"
	"github.com/dmitrijs2005/evento/internal/logging"
)

// MinPasswordLength matches the identity backend's own rule.
const MinPasswordLength = 6

var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrWeakPassword  = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrEmptyPassword = errors.New("password is required")
	ErrEmptyName     = errors.New("name is required")
	ErrMissingToken  = errors.New("backend returned no session token")
	ErrNotLoggedIn   = errors.New("not logged in")
)

// DeviceLimitError rejects a login because the account is already signed in
// on the maximum number of devices. It matches client.ErrDeviceLimit.
type DeviceLimitError struct {
	Email   string
	UID     string
	Message string
}

func (e *DeviceLimitError) Error() string {
	if e.Message != "" {
		return "device limit reached: " + e.Message
	}
	return "device limit reached"
}

func (e *DeviceLimitError) Unwrap() error { return client.ErrDeviceLimit }

// Identity is the subset of identity.Provider used here.
type Identity interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*models.User, error)
	SignInWithProvider(ctx context.Context) (*models.User, error)
	SignOut(ctx context.Context) error
	Close()
}

// AuthAPI is the subset of client.API used here.
type AuthAPI interface {
	Login(ctx context.Context, in client.LoginRequest) (*client.LoginResult, error)
	LoginSocial(ctx context.Context, in client.SocialLoginRequest) (*client.LoginResult, error)
	LogoutAll(ctx context.Context, email, uid string) error
	CreateUser(ctx context.Context, u client.NewUser) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	Ping(ctx context.Context) error
}

type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

type CredentialVault interface {
	Remember(ctx context.Context, email, password string) error
	Forget(ctx context.Context) error
	Recall(ctx context.Context) (vault.Credentials, error)
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Validation failures (ErrInvalidEmail, ErrWeakPassword, ErrEmptyName,
//     ErrEmptyPassword) are returned before any network call.
//   - Login and LoginWithProvider return *DeviceLimitError when the backend
//     refuses another device.
//   - Close tears down the identity subscription.
type AuthService interface {
	Register(ctx context.Context, name, email, password, phone string) (*models.User, error)
	Login(ctx context.Context, email, password string, remember bool) (*models.User, error)
	LoginWithProvider(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	LogoutAllDevices(ctx context.Context, email, uid string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	RememberedCredentials(ctx context.Context) (vault.Credentials, error)
	TokenInfo(ctx context.Context) (client.TokenInfo, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type AuthDeps struct {
	Identity  Identity
	API       AuthAPI
	Tokens    TokenStore
	Vault     CredentialVault
	Cookies   cookies.Repository
	UserAgent string
	Logger    logging.Logger
}

type authService struct {
	AuthDeps
	now func() time.Time
}

func NewAuthService(deps AuthDeps) AuthService {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	return &authService{AuthDeps: deps, now: time.Now}
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

func (a *authService) Register(ctx context.Context, name, email, password, phone string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	u, err := a.Identity.Register(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}

	err = a.API.CreateUser(ctx, client.NewUser{
		Name:  name,
		Email: email,
		Phone: phone,
		UID:   u.UID,
		Photo: u.PhotoURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create user profile: %w", err)
	}

	u.DisplayName = name
	u.Phone = phone
	a.Logger.Info(ctx, "account registered", "email", email, "uid", u.UID)
	return u, nil
}

func (a *authService) Login(ctx context.Context, email, password string, remember bool) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	u, err := a.Identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	dev, err := a.describeDevice(ctx)
	if err != nil {
		a.abandon(ctx)
		return nil, err
	}

	res, err := a.API.Login(ctx, client.LoginRequest{
		Email:    email,
		Password: password,
		UID:      u.UID,
		Device:   dev,
	})
	if err != nil {
		return nil, a.loginFailed(ctx, err, email, u.UID)
	}
	if err := a.storeToken(ctx, res.Token); err != nil {
		a.abandon(ctx)
		return nil, err
	}

	if remember {
		if err := a.Vault.Remember(ctx, email, password); err != nil {
			a.Logger.Warn(ctx, "remember credentials", "error", err)
		}
	} else if err := a.Vault.Forget(ctx); err != nil {
		a.Logger.Warn(ctx, "forget credentials", "error", err)
	}

	a.Logger.Info(ctx, "login succeeded", "email", email, "device_id", dev.DeviceID)
	return u, nil
}

func (a *authService) LoginWithProvider(ctx context.Context) (*models.User, error) {
	u, err := a.Identity.SignInWithProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("federated sign in: %w", err)
	}

	dev, err := a.describeDevice(ctx)
	if err != nil {
		a.abandon(ctx)
		return nil, err
	}

	res, err := a.API.LoginSocial(ctx, client.SocialLoginRequest{
		Email:  u.Email,
		Name:   u.DisplayName,
		UID:    u.UID,
		Photo:  u.PhotoURL,
		Device: dev,
	})
	if err != nil {
		return nil, a.loginFailed(ctx, err, u.Email, u.UID)
	}
	if err := a.storeToken(ctx, res.Token); err != nil {
		a.abandon(ctx)
		return nil, err
	}

	a.Logger.Info(ctx, "federated login succeeded", "email", u.Email, "device_id", dev.DeviceID)
	return u, nil
}

func (a *authService) describeDevice(ctx context.Context) (models.Device, error) {
	dev := device.Collect(a.UserAgent, a.now())
	id, err := device.EnsureID(ctx, a.Cookies)
	if err != nil {
		return models.Device{}, err
	}
	dev.DeviceID = id
	return dev, nil
}

func (a *authService) storeToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}
	if err := a.Tokens.SetToken(ctx, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// loginFailed ends the identity session that has no backend counterpart
// and translates a device-limit rejection.
func (a *authService) loginFailed(ctx context.Context, err error, email, uid string) error {
	a.abandon(ctx)
	if errors.Is(err, client.ErrDeviceLimit) {
		dl := &DeviceLimitError{Email: email, UID: uid}
		if apiErr, ok := client.AsAPIError(err); ok {
			dl.Message = apiErr.Message
		}
		a.Logger.Info(ctx, "login refused: device limit", "email", email)
		return dl
	}
	return fmt.Errorf("backend login: %w", err)
}

func (a *authService) abandon(ctx context.Context) {
	if err := a.Identity.SignOut(ctx); err != nil {
		a.Logger.Warn(ctx, "sign out after failed login", "error", err)
	}
}

func (a *authService) Logout(ctx context.Context) error {
	var errs []error
	if err := a.Identity.SignOut(ctx); err != nil {
		errs = append(errs, fmt.Errorf("sign out: %w", err))
	}
	if err := a.Tokens.ClearToken(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear token: %w", err))
	}
	return errors.Join(errs...)
}

// LogoutAllDevices asks the backend to end every session of the account.
// uid may be empty.
func (a *authService) LogoutAllDevices(ctx context.Context, email, uid string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := a.API.LogoutAll(ctx, email, uid); err != nil {
		return fmt.Errorf("logout all devices: %w", err)
	}
	if err := a.Tokens.ClearToken(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	a.Logger.Info(ctx, "logged out on all devices", "email", email)
	return nil
}

func (a *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if err := validateEmail(email); err != nil {
		return "", err
	}
	return a.API.ForgotPassword(ctx, email)
}

func (a *authService) RememberedCredentials(ctx context.Context) (vault.Credentials, error) {
	return a.Vault.Recall(ctx)
}

func (a *authService) TokenInfo(ctx context.Context) (client.TokenInfo, error) {
	token, err := a.Tokens.Token(ctx)
	if err != nil {
		return client.TokenInfo{}, err
	}
	if token == "" {
		return client.TokenInfo{}, ErrNotLoggedIn
	}
	return client.InspectToken(token, a.now())
}

// Ping proxies a liveness check to the backend.
func (a *authService) Ping(ctx context.Context) error {
	return a.API.Ping(ctx)
}

func (a *authService) Close(ctx context.Context) error {
	a.Identity.Close()
	return nil
}

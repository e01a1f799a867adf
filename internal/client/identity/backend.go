// Package identity presents a uniform identity API over the configured
// identity backend and broadcasts session-state changes to the rest of the
// client.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evento/internal/client/models"
)

// Backend is the contract every identity backend implements.
//
// OnSessionStateChange registers fn to be called with the signed-in user,
// or nil after sign-out. The returned func removes the registration.
type Backend interface {
	CreateAccount(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FederatedAuthenticate(ctx context.Context) (*models.User, error)
	TerminateSession(ctx context.Context) error
	Reload(ctx context.Context) (*models.User, error)
	OnSessionStateChange(fn func(*models.User)) (unsubscribe func())
}

var (
	ErrNoSession          = errors.New("no active identity session")
	ErrFederatedDisabled  = errors.New("federated sign-in is not configured")
	ErrFederatedCancelled = errors.New("federated sign-in cancelled")
	ErrMalformedResponse  = errors.New("malformed identity response")
)

// Error is a rejection reported by the identity backend. Code is the
// backend's machine-readable reason, e.g. EMAIL_EXISTS.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" && e.Message != e.Code {
		return fmt.Sprintf("identity: %s: %s", e.Code, e.Message)
	}
	return "identity: " + e.Code
}

// Common backend codes.
const (
	CodeEmailExists     = "EMAIL_EXISTS"
	CodeEmailNotFound   = "EMAIL_NOT_FOUND"
	CodeInvalidPassword = "INVALID_PASSWORD"
	CodeInvalidLogin    = "INVALID_LOGIN_CREDENTIALS"
	CodeUserDisabled    = "USER_DISABLED"
	CodeWeakPassword    = "WEAK_PASSWORD"
	CodeTooManyAttempts = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeInvalidIDToken  = "INVALID_ID_TOKEN"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeInvalidRefresh  = "INVALID_REFRESH_TOKEN"
)

// HasCode reports whether err is an identity *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// Package common contains shared constants and sentinel errors used across
// Evento client components.
package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer token on
	// outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the session token in the Authorization header.
	BearerPrefix = "Bearer "

	// ApplicationJSON is the only content type spoken with the backend.
	ApplicationJSON = "application/json"
)

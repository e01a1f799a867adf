// Package client talks to the Evento REST API.
//
// # Overview
//
// The package provides:
//  1. HTTPClient, the single shared client. It resolves paths against a
//     fixed base URL, speaks JSON and runs two ejectable pipelines:
//     request transforms (BearerToken, UserAgent) and error interceptors.
//  2. Guard, the error interceptor that ends the local session when the
//     backend answers 401 or 403, at most once per call.
//  3. API and Resource[T], the typed endpoints used by the services.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) applying
//     the embedded goose migrations to the SQLite store.
//
// # Error Handling
//
// Every failed call returns an *APIError. Callers match categories with
// errors.Is: ErrUnauthorized, ErrUnavailable, ErrDeviceLimit.
//
// # Concurrency
//
// HTTPClient and Guard are safe for concurrent use.
package client

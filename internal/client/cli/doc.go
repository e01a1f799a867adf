// Package cli provides the interactive Evento command-line client.
//
// It wires configuration, the local SQLite store, the identity provider,
// the shared HTTP client with its session guard, and the services into an
// App, then runs a REPL on top of it. The App is also the Navigator the
// session guard redirects through: an expired session moves the user back
// to the login view.
//
// Key features:
//   - Register / Login (password with remember-me, or Google)
//   - Device-limit handling with forced logout on all devices
//   - Admin listing, inspection and deletion of events, blogs, contacts,
//     users and orders; creation of events and blogs
//   - Token introspection and a background connectivity watcher
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli

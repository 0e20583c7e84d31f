// Package cli provides the interactive profile command-line client.
//
// It wires configuration, session storage, the API client and services into
// a REPL that behaves like a small single-page app: a Navigator tracks the
// current route (/dashboard, /profile, /login, /register; "/" goes to the
// dashboard, anything else to the not-found view) and guards the protected
// ones.
//
// When the API answers 401 the client clears stored credentials and emits
// its unauthorized event; App wires that event to the session and to the
// login view.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, Navigator and runREPL for details.
package cli

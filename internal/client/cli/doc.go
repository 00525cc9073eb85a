// Package cli provides the interactive evote command-line client.
//
// It wires configuration, the local session database, the REST client and
// the election and results views into a REPL. The REPL behaves like a small
// router: every page has a route ("/", "/results", "/election", "/login",
// "/registration") and the election page is only reachable with a session.
// Signed-in users asking for the login or registration page land on the
// election page instead.
//
// A background countdown keeps the prompt's "closes in" status current. When
// the backend refuses the session for good, the REPL sends the user to the
// login page before the next prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// ctx is cancelled.
package cli

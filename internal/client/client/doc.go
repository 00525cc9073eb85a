// Package client contains the client side of the evote backend API.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface): Login, Register,
//     Candidates, PartyVotes and CastVote.
//  2. A REST implementation (see HTTPClient) that attaches the access token,
//     tags every request with an X-Request-ID, transparently refreshes an
//     expired access token once per request, and maps HTTP statuses to
//     sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     database with embedded goose migrations.
//
// # Error Handling
//
// Transport failures and gateway errors match ErrUnavailable. 401/403 match
// ErrUnauthorized. When the refresh exchange is rejected the session is
// cleared, the session-expired handler runs, and the call fails with
// ErrSessionExpired. Any other non-2xx answer is an *APIError carrying the
// backend message.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation.
package client

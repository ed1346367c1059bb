// Package client talks to the Moonlight Match backend.
//
// # Overview
//
//  1. Gateway performs JSON/HTTP calls, attaching "Authorization: Bearer <token>"
//     read from a TokenSource on every authenticated call. It never retries,
//     refreshes tokens or queues requests.
//  2. API implements the Client interface (auth, events, matching control,
//     tickets, matches, form completion) on top of the Gateway.
//  3. InitDatabase and RunMigrations bootstrap the local SQLite database that
//     holds the persisted session.
//
// # Error Handling
//
// Failures are sentinel errors matched with errors.Is: ErrUnavailable (no
// response), ErrUnauthorized (401/403), ErrConflict (409), ErrRejected (other
// 4xx), ErrServer (5xx), ErrMalformedResponse (undecodable 2xx body) and
// ErrValidation (request refused before any I/O). Non-2xx responses are
// *StatusError values carrying the backend's error text; see ServerMessage.
package client

// Package client is the bcard2 API access layer plus the local database
// bootstrap.
//
// # Overview
//
//  1. Client is the transport-agnostic contract for the remote API: cards
//     (list, get, my-cards, create, toggle like, delete) and users
//     (register, login).
//  2. HTTPClient implements it over REST. Authenticated calls carry the
//     bearer token in the x-auth-token header, and every request is tagged
//     with an X-Request-ID for log correlation.
//  3. InitDatabase and RunMigrations open the local SQLite file and apply the
//     embedded goose migrations.
//
// # Error Handling
//
// Failures are reported as sentinel errors matchable with errors.Is:
// ErrUnavailable (transport failure, 502/503/504), ErrUnauthorized (401),
// ErrForbidden (403) and ErrNotFound (404). Any other non-2xx status yields a
// *ServerError carrying the status code and a best-effort message.
//
// No call is retried.
package client

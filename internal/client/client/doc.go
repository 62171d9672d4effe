// Package client talks to the remote recruitment API and bootstraps the
// local database.
//
// # Overview
//
// Client is the transport contract used by the controllers. HTTPClient
// implements it over HTTP+JSON: it attaches the bearer token from the
// injected session store, tags every request with an X-Request-ID and
// records per-operation metrics.
//
// InitDatabase and RunMigrations open the local sqlite file and apply the
// embedded goose migrations.
//
// # Error Handling
//
// Failures are reported with sentinel errors matched by errors.Is:
// ErrNetworkFailure, ErrUnauthorized, ErrMalformedResponse and
// ErrServerRejected. A server rejection is a *ServerRejectedError carrying
// the HTTP status and the most specific message the body offered.
//
// A 401 or 403 on an authenticated call clears the session before
// ErrUnauthorized is returned. Nothing is retried.
package client

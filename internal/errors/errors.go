// Package errors defines domain-level errors used throughout the application.
// These errors represent diagnostic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// When adding a new error here, don't forget to:
// 1. Add your error to mapError (internal/daemon/api_server.go)
// 2. Add a test case to TestMapError (internal/daemon/api_server_test.go)
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrServerNotFound indicates that the requested MCP server is not present in the registry.
	// Recommended to map to HTTP 404 Not Found.
	ErrServerNotFound = errors.New("server not found")

	// ErrHealthNotTracked indicates that health monitoring has no record for the specified server.
	// Recommended to map to HTTP 404 Not Found.
	ErrHealthNotTracked = errors.New("server health is not being tracked")

	// ErrNoCommand indicates that a stdio descriptor has no executable command configured.
	// Probes classify this as an unattemptable (error) result rather than propagating it.
	ErrNoCommand = errors.New("no command specified")

	// ErrNoURL indicates that an HTTP descriptor has no URL configured.
	// Probes classify this as an unattemptable (error) result rather than propagating it.
	ErrNoURL = errors.New("no URL specified")

	// ErrUnknownTransport indicates that a descriptor's transport kind is not supported.
	// Probes classify this as an unattemptable (error) result rather than propagating it.
	ErrUnknownTransport = errors.New("unknown transport type")

	// ErrRegistryNotFound indicates that the server registry file does not exist.
	// Recommended to map to HTTP 502 Bad Gateway (external dependency failure).
	ErrRegistryNotFound = errors.New("server registry not found")

	// ErrRegistryInvalid indicates that the server registry file failed parsing or schema validation.
	// Recommended to map to HTTP 502 Bad Gateway (external dependency failure).
	ErrRegistryInvalid = errors.New("server registry invalid")

	// ErrUnauthorized indicates that a request carried a missing, malformed, or rejected bearer token.
	// Recommended to map to HTTP 401 Unauthorized.
	ErrUnauthorized = errors.New("unauthorized")
)

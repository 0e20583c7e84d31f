// Package common contains shared constants and small helpers used across
// the client, the development API and their tests.
package common

const (
	// AuthorizationHeader carries the bearer token on outbound requests.
	AuthorizationHeader = "Authorization"
	// BearerPrefix precedes the token in the Authorization header value.
	BearerPrefix = "Bearer "
	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

// Durable storage keys. Both are always written and cleared together.
const (
	AuthTokenKey = "authToken"
	UserKey      = "user"
)

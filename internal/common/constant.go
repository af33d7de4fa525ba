// Package common contains shared constants and sentinel errors used across
// bcards client components.
package common

// AuthTokenHeaderName is the HTTP header the bcard2 API reads the bearer
// token from.
const AuthTokenHeaderName = "x-auth-token"

// RequestIDHeaderName tags every outbound request for diagnostics.
const RequestIDHeaderName = "X-Request-ID"

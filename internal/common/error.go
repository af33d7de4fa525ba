// Package common defines shared constants and sentinel errors used across
// the client layers of bcards. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Session / authorization errors detected locally, before any network call.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotBusiness      = errors.New("business or admin role required")

	// Token errors.
	ErrNoToken      = errors.New("no token returned")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Form errors.
	ErrValidation = errors.New("validation failed")
	ErrFormClosed = errors.New("form closed")
)

// Package common defines shared constants, sentinel errors and small
// utilities used across the client layers. Callers should use errors.Is
// to match the sentinel values.
package common

import "errors"

var (
	// ErrPrecondition marks a failure detected locally, before any network
	// call was made (missing email, OTP code, tokens, ...).
	ErrPrecondition = errors.New("precondition failed")

	// ErrUnauthorized marks an authentication failure reported by the
	// remote API (invalid credentials, expired token, bad OTP).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned by storage lookups that matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrInternal covers generic internal flow-control failures.
	ErrInternal = errors.New("internal error")
)

// Package common defines shared constants and sentinel errors used across
// vipgate components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorBadRequest   = errors.New("bad request")
	ErrorConflict     = errors.New("conflict")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Session registry errors.
	ErrSessionNotFound = errors.New("session not found")

	// Credential errors.
	ErrWeakPassword = errors.New("password does not meet policy")
)

// CardUsedError reports an attempt to redeem a card that has already been
// consumed. It carries the original consumption instant for diagnostics and
// unwraps to ErrorConflict so errors.Is keeps working.
type CardUsedError struct {
	UsedAt time.Time
}

func (e *CardUsedError) Error() string {
	return fmt.Sprintf("card already used at %s", e.UsedAt.Format(time.RFC3339))
}

func (e *CardUsedError) Unwrap() error { return ErrorConflict }

package models

import "time"

// VerificationCode backs the password-reset flow server-side so a reset can
// be invalidated before its signed token expires. One unused row per user;
// requesting a new reset overwrites it.
type VerificationCode struct {
	ID        int64
	UserID    int64
	Email     string
	Code      string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

package models

import "time"

// UserStatus enumerates account states.
type UserStatus string

const (
	UserEnabled  UserStatus = "enabled"
	UserDisabled UserStatus = "disabled"
)

// User is an account identity plus its entitlement snapshot. The effective
// VIP tier is derived, never read directly from VIPLevel: a lapsed or absent
// VIPExpiresAt means tier 0 regardless of the stored value.
type User struct {
	ID                int64
	UserName          string
	PasswordHash      string
	Email             string
	EmailVerified     bool
	VIPLevel          int
	VIPExpiresAt      *time.Time
	Status            UserStatus
	LastLoginAt       *time.Time
	LastLoginHardware string
	LastLoginVersion  string
	LastLoginIP       string
	LastLogoutAt      *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EffectiveVIP returns the VIP tier active at the given instant.
func (u *User) EffectiveVIP(now time.Time) int {
	if u.VIPExpiresAt == nil || !u.VIPExpiresAt.After(now) {
		return 0
	}
	return u.VIPLevel
}

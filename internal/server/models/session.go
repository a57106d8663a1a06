package models

import "time"

// Session is a single live login. One row per logged-in user: the login flow
// removes any previous session for the same user before inserting a new one.
type Session struct {
	ID              int64
	UserID          int64
	SessionToken    string
	LoginTime       time.Time
	HardwareCode    string
	SoftwareVersion string
	IPAddress       string
	LastActivityAt  time.Time
	StatusInterval  int // expected heartbeat cadence, minutes
	CreatedAt       time.Time
}

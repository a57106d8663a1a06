package models

import "time"

// LoginLog is an append-only record of a successful login.
type LoginLog struct {
	ID              int64
	UserID          int64
	LoginTime       time.Time
	HardwareCode    string
	SoftwareVersion string
	IPAddress       string
	Status          string
	CreatedAt       time.Time
}

// AuditLog is an append-only record of a privileged operation. Writes are
// best-effort: a failed insert is logged and never fails the audited action.
type AuditLog struct {
	ID        int64
	AdminID   int64
	Action    string
	Details   string
	IPAddress string
	CreatedAt time.Time
}

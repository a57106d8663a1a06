package models

import "time"

// RechargeCard is a single-use entitlement voucher. IsUsed transitions
// false -> true exactly once; a consumed card is immutable afterwards.
type RechargeCard struct {
	ID           int64
	CardCode     string
	VIPLevel     int
	DurationDays int
	Price        float64
	IsUsed       bool
	UsedAt       *time.Time
	UsedBy       *int64
	CreatedAt    time.Time
}

// RechargeLog is the append-only record of a successful redemption.
type RechargeLog struct {
	ID           int64
	UserID       int64
	CardCode     string
	VIPLevel     int
	DurationDays int
	RechargeTime time.Time
	CreatedAt    time.Time
}

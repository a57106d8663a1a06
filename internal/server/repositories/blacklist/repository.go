// Package blacklist stores registration blocks by username, hardware code
// or client IP.
package blacklist

import "context"

type Repository interface {
	IsBlocked(ctx context.Context, username, hardware, ip string) (bool, error)
}

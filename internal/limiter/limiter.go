// Package limiter throttles login attempts per (username, client address).
package limiter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Limiter controls login attempts and temporary lockouts.
type Limiter interface {
	// Allow reports whether login is currently allowed and, if not, how long to wait.
	Allow(ctx context.Context, username, ipHash string) (bool, time.Duration, error)
	// Success resets counters after a successful login.
	Success(ctx context.Context, username, ipHash string) error
	// Failure records a failed attempt; it reports whether the attempt placed a block.
	Failure(ctx context.Context, username, ipHash string) (bool, time.Duration, error)
}

// Options configure the sliding window and lockout.
type Options struct {
	// MaxFails failures inside Window trigger a block of BlockFor.
	MaxFails int
	Window   time.Duration
	BlockFor time.Duration
}

// HashIP returns a stable hex hash for an address so raw IPs are never stored.
func HashIP(ip string) string {
	h := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(h[:])
}

// Nop never blocks. It backs deployments and tests that do not throttle.
type Nop struct{}

func (Nop) Allow(context.Context, string, string) (bool, time.Duration, error) { return true, 0, nil }
func (Nop) Success(context.Context, string, string) error                      { return nil }
func (Nop) Failure(context.Context, string, string) (bool, time.Duration, error) {
	return false, 0, nil
}

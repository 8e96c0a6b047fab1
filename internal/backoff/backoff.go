// Package backoff implements the reconnect delay policy for the notification
// feed connection.
//
// The policy is deliberately linear rather than exponential: the feed is
// UI-facing, and a multi-minute gap between attempts would leave the user
// staring at a stale badge. Delay for attempt n (1-indexed) is base*n, and
// the policy gives up entirely after a fixed attempt count.
package backoff

import "time"

// Default policy values.
const (
	DefaultBaseDelay   = 1 * time.Second
	DefaultMaxAttempts = 5
)

// Policy computes reconnect delays and the give-up condition.
type Policy struct {
	BaseDelay   time.Duration // delay unit; attempt n waits BaseDelay * n
	MaxAttempts int           // attempts beyond this are refused
}

// Default returns the reference policy: 1s base, 5 attempts.
func Default() Policy {
	return Policy{
		BaseDelay:   DefaultBaseDelay,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Delay returns the wait before attempt n (1-indexed). Attempts below 1 are
// treated as attempt 1.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay * time.Duration(attempt)
}

// Exhausted reports whether the attempt budget is spent after n consecutive
// failures: the nth failure with n == MaxAttempts is the last one.
func (p Policy) Exhausted(failures int) bool {
	return failures >= p.MaxAttempts
}

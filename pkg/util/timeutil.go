package util

import "time"

// NowUTC returns the current wall clock in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Clock lets callers swap time for tests.
type Clock func() time.Time

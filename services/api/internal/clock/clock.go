package clock

import "time"

// Clock supplies timestamps for created_at/modified_at bookkeeping.
type Clock interface {
	Now() time.Time
}

// Postgres stores timestamptz with microsecond precision; truncating up front
// keeps values returned to callers equal to what a re-read produces.
const precision = time.Microsecond

type systemClock struct{}

// NewSystem returns a UTC clock backed by time.Now.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC().Truncate(precision)
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always returns the same instant (useful for tests).
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC().Truncate(precision)}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

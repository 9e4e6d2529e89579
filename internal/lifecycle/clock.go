package lifecycle

import "time"

// Clock supplies "today" for all date comparisons. Injectable so the engine
// stays deterministic under test.
type Clock interface {
	Today() time.Time
}

// SystemClock returns the current UTC date.
type SystemClock struct{}

func (SystemClock) Today() time.Time {
	return DateOnly(time.Now().UTC())
}

// FixedClock always returns the same date.
type FixedClock struct {
	Date time.Time
}

func (c FixedClock) Today() time.Time {
	return DateOnly(c.Date)
}

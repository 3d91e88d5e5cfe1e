package vehicle

import "time"

// Clock supplies the current time for age calculation
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// YearClock returns a FixedClock positioned mid-way through year
func YearClock(year int) FixedClock {
	return FixedClock(time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC))
}

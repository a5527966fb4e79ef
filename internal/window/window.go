// Package window implements the historical window policy: the bounded
// date range within which contracts and documents are eligible for
// retroactive fiscal reconstruction.
//
// The window spans ten years back to one year forward from "now" and is
// recomputed from the clock on every call, so a run executed today admits
// a different window than one executed a year from now.
package window

import "time"

// Clock abstracts wall-clock access so the window stays deterministic
// under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system wall clock
type SystemClock struct{}

// Now returns the current system time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always reports the same instant
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.Instant
}

// RetroactiveYears is how far back the reconstruction window reaches.
const RetroactiveYears = 10

// ForwardYears is how far forward the window admits dated entities
// (contracts signed for the upcoming year).
const ForwardYears = 1

// Policy answers window-eligibility questions. It is stateless beyond
// the injected clock; all bounds derive from the clock at call time.
type Policy struct {
	clock Clock
}

// NewPolicy creates a Policy backed by the given clock. A nil clock
// falls back to the system clock.
func NewPolicy(clock Clock) *Policy {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Policy{clock: clock}
}

// MinimumDate returns the earliest date eligible for reconstruction
func (p *Policy) MinimumDate() time.Time {
	return p.clock.Now().AddDate(-RetroactiveYears, 0, 0)
}

// MaximumDate returns the latest date eligible for reconstruction
func (p *Policy) MaximumDate() time.Time {
	return p.clock.Now().AddDate(ForwardYears, 0, 0)
}

// InWindow reports whether the date lies within [MinimumDate, MaximumDate].
// Total over any date value; zero and epoch dates simply evaluate false.
func (p *Policy) InWindow(date time.Time) bool {
	return !date.Before(p.MinimumDate()) && !date.After(p.MaximumDate())
}

// CurrentYear returns the calendar year of the clock's now
func (p *Policy) CurrentYear() int {
	return p.clock.Now().Year()
}

// FiscalYears returns the fixed recomputation window
// [currentYear-10, currentYear] in ascending order.
func (p *Policy) FiscalYears() []int {
	current := p.CurrentYear()
	years := make([]int, 0, RetroactiveYears+1)
	for y := current - RetroactiveYears; y <= current; y++ {
		years = append(years, y)
	}
	return years
}

// ExerciseYearInRange reports whether an AEAT exercise year lies within
// [currentYear-10, currentYear+1].
func (p *Policy) ExerciseYearInRange(year int) bool {
	current := p.CurrentYear()
	return year >= current-RetroactiveYears && year <= current+ForwardYears
}

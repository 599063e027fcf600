// Package clock provides the wall clock used for delegation records
package clock

import "time"

// SystemClock implements usecase.Clock with the standard library
type SystemClock struct{}

// NewSystemClock creates the production clock
func NewSystemClock() SystemClock {
	return SystemClock{}
}

// Now returns the current time
func (SystemClock) Now() time.Time {
	return time.Now()
}

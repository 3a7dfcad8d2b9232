package service

import "time"

// Clock returns the current instant. Injected so tests control time.
type Clock interface {
	Now() time.Time
}

// Scheduler runs f once after d. It stands in for the save and delete round
// trips; completions are not cancelled once scheduled.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// TimerScheduler schedules completions with time.AfterFunc.
type TimerScheduler struct{}

// AfterFunc calls f on its own goroutine after d.
func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

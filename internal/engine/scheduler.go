package engine

import "time"

// Scheduler runs a function once after a delay. The returned cancel function
// stops the pending run; cancelling after the function has started is a no-op.
//
// The production implementation is [TimerScheduler]. Tests substitute a
// manual scheduler so debounce behaviour can be driven deterministically.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler schedules functions with [time.AfterFunc].
type TimerScheduler struct{}

var _ Scheduler = TimerScheduler{}

func (TimerScheduler) Schedule(d time.Duration, fn func()) (cancel func()) {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

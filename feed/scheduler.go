package feed

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Scheduler runs a callback on a fixed period until the returned stop
// function is called. Callbacks never overlap.
type Scheduler interface {
	Every(period time.Duration, fn func()) (stop func())
}

// TickerScheduler drives callbacks from a time.Ticker on a single goroutine.
// A callback that overruns the period delays the next one; ticks are
// dropped, never queued.
type TickerScheduler struct{}

// Every starts the ticker. stop blocks until the goroutine has exited, so
// no callback runs after it returns.
func (TickerScheduler) Every(period time.Duration, fn func()) func() {
	ticker := time.NewTicker(period)
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// Re-check so a stop racing a tick wins.
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
			<-exited
		})
	}
}

// Run ticks f every period until ctx is cancelled, then stops the feed.
// All mutation happens on the scheduler's goroutine.
func Run(ctx context.Context, sched Scheduler, f *Feed, period time.Duration) error {
	if period <= 0 {
		return errors.New("feed: period must be positive")
	}
	if sched == nil {
		sched = TickerScheduler{}
	}

	f.logger.Info("feed started", "period", period, "capacity", f.Capacity(), "policy", string(f.policy))

	stop := sched.Every(period, func() { f.Tick() })
	<-ctx.Done()
	stop()
	f.Stop()

	f.logger.Info("feed finished", "ticks", f.Ticks())
	return nil
}

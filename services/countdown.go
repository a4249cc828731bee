package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fenilmodi00/ipo-dashboard/models"
	"github.com/sirupsen/logrus"
)

const (
	countdownCutoffHour = 16
	countdownClosedText = "Closed at 4:00 PM"

	// DefaultCountdownInterval is the live refresh period.
	DefaultCountdownInterval = time.Second
)

// CountdownDeadline is 16:00 IST on the market date of closeDate.
func CountdownDeadline(closeDate time.Time) time.Time {
	return atClock(closeDate, countdownCutoffHour, 0, istLocation)
}

// CalculateCountdown returns the time left until the close-date cutoff. now is
// converted to IST before the subtraction so the result does not depend on the
// host timezone.
func CalculateCountdown(closeDate time.Time, now time.Time) models.Countdown {
	diff := CountdownDeadline(closeDate).Sub(now.In(istLocation)).Milliseconds()
	if diff <= 0 {
		return models.Countdown{IsExpired: true, Formatted: countdownClosedText}
	}

	hours := diff / (60 * 60 * 1000)
	minutes := (diff % (60 * 60 * 1000)) / (60 * 1000)
	seconds := (diff % (60 * 1000)) / 1000

	formatted := fmt.Sprintf("Closes in %dm %ds", minutes, seconds)
	if hours > 0 {
		formatted = fmt.Sprintf("Closes in %dh %dm", hours, minutes)
	}

	return models.Countdown{
		Hours:     hours,
		Minutes:   minutes,
		Seconds:   seconds,
		Formatted: formatted,
	}
}

// CountdownSubject is one displayed close date.
type CountdownSubject struct {
	ID        string
	CloseDate time.Time
}

// CountdownSnapshot is the countdown of every subject at one tick.
type CountdownSnapshot struct {
	At         time.Time                   `json:"at"`
	Countdowns map[string]models.Countdown `json:"countdowns"`
}

// CountdownTicker re-evaluates the countdown of a subject list on a repeating
// timer. At most one timer runs per ticker: replacing the subjects or calling
// Stop tears the previous one down before returning.
type CountdownTicker struct {
	interval time.Duration
	clock    func() time.Time
	updates  chan CountdownSnapshot

	mutex  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCountdownTicker creates a ticker; a non-positive interval means one second.
func NewCountdownTicker(interval time.Duration) *CountdownTicker {
	if interval <= 0 {
		interval = DefaultCountdownInterval
	}
	return &CountdownTicker{
		interval: interval,
		clock:    time.Now,
		updates:  make(chan CountdownSnapshot, 1),
	}
}

// Updates delivers one snapshot per tick. The channel is never closed.
func (t *CountdownTicker) Updates() <-chan CountdownSnapshot {
	return t.updates
}

// SetSubjects stops the running timer, if any, and starts a new one for
// subjects. The first snapshot is emitted immediately. An empty list leaves the
// ticker stopped. The timer also stops when ctx is done.
func (t *CountdownTicker) SetSubjects(ctx context.Context, subjects []CountdownSubject) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.stopLocked()
	if len(subjects) == 0 {
		return
	}

	owned := make([]CountdownSubject, len(subjects))
	copy(owned, subjects)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.run(runCtx, owned, done)

	logrus.WithFields(logrus.Fields{
		"component": "CountdownTicker",
		"subjects":  len(owned),
		"interval":  t.interval,
	}).Debug("Countdown timer started")
}

// Stop tears down the running timer and waits for it to exit.
func (t *CountdownTicker) Stop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.stopLocked()
}

// Running reports whether a timer is active.
func (t *CountdownTicker) Running() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.done == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func (t *CountdownTicker) stopLocked() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil

	// drop a snapshot computed for the old subjects
	select {
	case <-t.updates:
	default:
	}

	logrus.WithField("component", "CountdownTicker").Debug("Countdown timer stopped")
}

func (t *CountdownTicker) run(ctx context.Context, subjects []CountdownSubject, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	if !t.emit(ctx, subjects) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !t.emit(ctx, subjects) {
				return
			}
		}
	}
}

func (t *CountdownTicker) emit(ctx context.Context, subjects []CountdownSubject) bool {
	now := t.clock()
	snapshot := CountdownSnapshot{
		At:         now,
		Countdowns: make(map[string]models.Countdown, len(subjects)),
	}
	for _, s := range subjects {
		snapshot.Countdowns[s.ID] = CalculateCountdown(s.CloseDate, now)
	}

	select {
	case t.updates <- snapshot:
		return true
	case <-ctx.Done():
		return false
	}
}

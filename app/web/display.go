package web

import (
	"context"
	"sync"
	"time"

	"github.com/mpraski/competitor-form/app/ratelimit"
	"github.com/mpraski/competitor-form/app/ticker"
)

type (
	// Display holds what the user currently sees: the rate-limit counter and
	// the last message reported by the submission controller.
	Display struct {
		mu       sync.RWMutex
		status   ratelimit.Status
		message  string
		category string
		success  bool
		busy     bool
		human    bool
	}

	Snapshot struct {
		Remaining       int    `json:"remaining"`
		ResetInMinutes  int    `json:"resetInMinutes"`
		CooldownSeconds int    `json:"cooldownSeconds"`
		Level           string `json:"level,omitempty"`
		Message         string `json:"message,omitempty"`
		Category        string `json:"category,omitempty"`
		Success         bool   `json:"success"`
		Busy            bool   `json:"busy"`
	}

	StatusSource interface {
		Status(context.Context, time.Time) ratelimit.Status
	}

	// Monitor keeps a Display current: a full refresh every RefreshEvery and,
	// while a cooldown is running, a per-second countdown that ends itself.
	Monitor struct {
		source         StatusSource
		display        *Display
		refreshEvery   time.Duration
		countdownEvery time.Duration
		now            func() time.Time

		mu        sync.Mutex
		countdown *ticker.Task
	}
)

const (
	DefaultRefreshEvery   = 30 * time.Second
	DefaultCountdownEvery = time.Second
)

func NewDisplay() *Display { return &Display{} }

func (d *Display) Render(s ratelimit.Status) {
	d.mu.Lock()
	d.status = s
	d.mu.Unlock()
}

func (d *Display) setCooldown(seconds int) {
	d.mu.Lock()
	d.status.CooldownSeconds = seconds
	if seconds == 0 {
		d.status.CooldownUntil = time.Time{}
	}
	d.mu.Unlock()
}

func (d *Display) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return Snapshot{
		Remaining:       d.status.Remaining,
		ResetInMinutes:  d.status.ResetInMinutes,
		CooldownSeconds: d.status.CooldownSeconds,
		Level:           d.status.Level.String(),
		Message:         d.message,
		Category:        d.category,
		Success:         d.success,
		Busy:            d.busy,
	}
}

func (d *Display) Status() ratelimit.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.status
}

func (d *Display) ReportError(message, category string) {
	d.mu.Lock()
	d.message, d.category, d.success = message, category, false
	d.mu.Unlock()
}

func (d *Display) ReportSuccess(message string) {
	d.mu.Lock()
	d.message, d.category, d.success = message, "", true
	d.mu.Unlock()
}

func (d *Display) ClearMessages() {
	d.mu.Lock()
	d.message, d.category, d.success = "", "", false
	d.mu.Unlock()
}

func (d *Display) SetBusy(busy bool) {
	d.mu.Lock()
	d.busy = busy
	d.mu.Unlock()
}

// MarkHuman records that a person interacted with the form. It is a hint for
// logs only and never gates a submission.
func (d *Display) MarkHuman() {
	d.mu.Lock()
	d.human = true
	d.mu.Unlock()
}

func (d *Display) Human() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.human
}

func NewMonitor(source StatusSource, display *Display, refreshEvery, countdownEvery time.Duration) *Monitor {
	if refreshEvery <= 0 {
		refreshEvery = DefaultRefreshEvery
	}

	if countdownEvery <= 0 {
		countdownEvery = DefaultCountdownEvery
	}

	return &Monitor{
		source:         source,
		display:        display,
		refreshEvery:   refreshEvery,
		countdownEvery: countdownEvery,
		now:            time.Now,
	}
}

// Refresh recomputes the status now and starts a countdown if one is due,
// or stops a running one when the cooldown is gone.
func (m *Monitor) Refresh(ctx context.Context) ratelimit.Status {
	s := m.source.Status(ctx, m.now())
	m.display.Render(s)

	if !s.CooldownUntil.IsZero() {
		m.startCountdown(ctx, s.CooldownUntil)
	} else {
		m.stopCountdown()
		m.display.setCooldown(0)
	}

	return s
}

// Run refreshes immediately and then periodically until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.Refresh(ctx)

	t := ticker.Every(ctx, m.refreshEvery, func(time.Time) bool {
		m.Refresh(ctx)
		return true
	})

	<-t.Done()
	m.stopCountdown()

	return nil
}

func (m *Monitor) startCountdown(ctx context.Context, until time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.countdown != nil {
		m.countdown.Stop()
	}

	m.countdown = ticker.Countdown(ctx, until, m.countdownEvery, m.now, func(left time.Duration) {
		m.display.setCooldown(ratelimit.CeilSeconds(left))
	})
}

func (m *Monitor) stopCountdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.countdown != nil {
		m.countdown.Stop()
		m.countdown = nil
	}
}

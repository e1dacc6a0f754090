// Package activity tracks user presence and drives idle-based connectivity.
//
// A two-state machine (Active/Idle) fed by raw input events. Recording is
// debounced through a rate limiter so rapid input cannot churn storage writes
// or timers. Entering Idle disconnects the live-update channel; returning to
// Active reconnects it. All timers come from an injected clock.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/gartnera/desktop/internal/domain"
	"github.com/gartnera/desktop/internal/metrics"
)

// Monitor owns the ActivityRecord: last-activity timestamp, idle flag, and the
// single pending idle timer. Mutations are serialized by the mutex; side
// effects fire outside it, after the state transition is committed.
type Monitor struct {
	store       domain.KVStore
	conn        domain.LiveUpdateService
	clock       clockwork.Clock
	limiter     *rate.Limiter
	idleTimeout time.Duration

	mu           sync.Mutex
	lastActivity time.Time
	isIdle       bool
	idleTimer    clockwork.Timer
	timerGen     uint64
	cancels      []func()
	stopped      bool
}

// NewMonitor creates a monitor in the Active state with no recorded activity.
func NewMonitor(store domain.KVStore, conn domain.LiveUpdateService, clock clockwork.Clock, debounce, idleTimeout time.Duration) *Monitor {
	return &Monitor{
		store:       store,
		conn:        conn,
		clock:       clock,
		limiter:     rate.NewLimiter(rate.Every(debounce), 1),
		idleTimeout: idleTimeout,
	}
}

// Attach subscribes the monitor to an input source. All qualifying event kinds
// feed the same record-activity transition. The cancel handle is retained and
// released on Stop.
func (m *Monitor) Attach(source domain.InputSource) error {
	cancel, err := source.Subscribe(func(domain.InputEvent) {
		m.Record(context.Background())
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		cancel()
		return nil
	}
	m.cancels = append(m.cancels, cancel)
	return nil
}

// Record is the record-activity transition. Events inside the debounce window
// are dropped entirely: no timestamp update, no timer reset.
func (m *Monitor) Record(ctx context.Context) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}

	now := m.clock.Now()
	if !m.limiter.AllowN(now, 1) {
		m.mu.Unlock()
		metrics.ActivityEventsDebouncedTotal.Inc()
		return
	}

	m.lastActivity = now
	wasIdle := m.isIdle
	m.isIdle = false
	m.rescheduleIdleTimerLocked()
	m.mu.Unlock()

	// The persisted copy exists for cross-restart continuity; it is not
	// authoritative for in-process decisions, so a write failure only logs.
	if err := m.store.Set(ctx, domain.KeyLastActive, now.UnixMilli()); err != nil {
		slog.WarnContext(ctx, "Failed to persist last activity", "error", err)
	}

	if wasIdle {
		metrics.IdleTransitionsTotal.WithLabelValues("active").Inc()
		slog.InfoContext(ctx, "User active again, reconnecting live updates")
		if err := m.conn.ReconnectFromActivity(ctx); err != nil {
			slog.ErrorContext(ctx, "Reconnect after activity failed", "error", err)
		}
	}
}

// IsIdle reports the current state of the idle machine.
func (m *Monitor) IsIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isIdle
}

// LastActivity returns the last accepted activity instant, with ok false when
// no activity has been recorded yet.
func (m *Monitor) LastActivity() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity, !m.lastActivity.IsZero()
}

// Stop detaches from all input sources and cancels any pending idle timer.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.stopped = true
	cancels := m.cancels
	m.cancels = nil
	m.cancelIdleTimerLocked()
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// rescheduleIdleTimerLocked cancels any pending idle timer and schedules a new
// one as a single operation, so exactly one timer is ever pending.
func (m *Monitor) rescheduleIdleTimerLocked() {
	m.cancelIdleTimerLocked()
	m.timerGen++
	gen := m.timerGen
	m.idleTimer = m.clock.AfterFunc(m.idleTimeout, func() { m.onIdleTimeout(gen) })
}

func (m *Monitor) cancelIdleTimerLocked() {
	if m.idleTimer != nil {
		m.idleTimer.Stop()
		m.idleTimer = nil
	}
	m.timerGen++
}

func (m *Monitor) onIdleTimeout(gen uint64) {
	m.mu.Lock()
	// A stale generation means an activity event rescheduled (or Stop
	// cancelled) this timer after it had already fired.
	if gen != m.timerGen || m.stopped || m.isIdle {
		m.mu.Unlock()
		return
	}
	m.isIdle = true
	m.idleTimer = nil
	m.mu.Unlock()

	ctx := context.Background()
	metrics.IdleTransitionsTotal.WithLabelValues("idle").Inc()
	slog.Info("User idle, disconnecting live updates", "idle_timeout", m.idleTimeout)
	if err := m.conn.DisconnectFromInactivity(ctx); err != nil {
		slog.Error("Disconnect from inactivity failed", "error", err)
	}
}

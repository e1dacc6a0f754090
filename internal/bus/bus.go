package bus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gartnera/desktop/internal/domain"
	"github.com/gartnera/desktop/internal/metrics"
)

const (
	commandTimeout = 5 * time.Second  // actor command timeout
	stopTimeout    = 10 * time.Second // graceful shutdown timeout
)

// busCmd is the command interface for the Bus actor.
type busCmd interface{ isBusCmd() }

type baseBusCmd struct{}

func (baseBusCmd) isBusCmd() {}

type subscribeCmd struct {
	baseBusCmd
	id           string
	handler      func(domain.Message)
	errorChannel chan error
}

type unsubscribeCmd struct {
	baseBusCmd
	id           string
	errorChannel chan error
}

type publishCmd struct {
	baseBusCmd
	msg domain.Message
}

type busStopCmd struct {
	baseBusCmd
}

// Bus is the in-process broadcast channel. Messages fan out to every
// subscriber in subscription order; publishing never blocks on handlers
// beyond their own execution time on the actor goroutine.
type Bus struct {
	cmdCh       chan busCmd
	clock       clockwork.Clock
	subscribers map[string]func(domain.Message)
	order       []string
	done        chan struct{}
	stopTimeout time.Duration
}

// New creates the bus and starts its actor goroutine.
func New(clock clockwork.Clock) *Bus {
	b := &Bus{
		cmdCh:       make(chan busCmd, 256),
		clock:       clock,
		subscribers: make(map[string]func(domain.Message)),
		done:        make(chan struct{}),
		stopTimeout: stopTimeout,
	}
	go b.run()
	return b
}

// Subscribe registers handler under a stable identity. Registering an identity
// that is already present returns domain.ErrDuplicateSubscription; the
// original registration stays in place.
func (b *Bus) Subscribe(id string, handler func(domain.Message)) error {
	errCh := make(chan error, 1)
	select {
	case b.cmdCh <- subscribeCmd{id: id, handler: handler, errorChannel: errCh}:
	case <-b.done:
		return domain.ErrBusStopped
	}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("subscribe command timed out after %v", commandTimeout)
	}
}

// Unsubscribe removes the registration for id.
func (b *Bus) Unsubscribe(id string) error {
	errCh := make(chan error, 1)
	select {
	case b.cmdCh <- unsubscribeCmd{id: id, errorChannel: errCh}:
	case <-b.done:
		return domain.ErrBusStopped
	}

	timer := b.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case err := <-errCh:
		return err
	case <-timer.Chan():
		return fmt.Errorf("unsubscribe command timed out after %v", commandTimeout)
	}
}

// Publish fans msg out to all current subscribers. Messages published after
// Stop are dropped.
func (b *Bus) Publish(msg domain.Message) {
	select {
	case b.cmdCh <- publishCmd{msg: msg}:
		metrics.BusPublishedTotal.WithLabelValues(msg.Command).Inc()
	case <-b.done:
		slog.Debug("Dropping message published after bus stop", "command", msg.Command)
	}
}

// Stop shuts the bus down. Blocks until the actor goroutine has drained its
// queue and exited, or the stop timeout is reached.
func (b *Bus) Stop() {
	select {
	case b.cmdCh <- busStopCmd{}:
	case <-b.done:
		return
	}

	timer := b.clock.NewTimer(b.stopTimeout)
	defer timer.Stop()

	select {
	case <-b.done:
		slog.Info("Bus stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Bus stop timeout exceeded, forcing exit", "timeout", b.stopTimeout)
		close(b.done)
	}
}

func (b *Bus) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Bus panic recovered", "panic", r)
			close(b.done)
		}
	}()

	for cmd := range b.cmdCh {
		switch c := cmd.(type) {
		case subscribeCmd:
			c.errorChannel <- b.handleSubscribe(c)
		case unsubscribeCmd:
			c.errorChannel <- b.handleUnsubscribe(c)
		case publishCmd:
			b.handlePublish(c.msg)
		case busStopCmd:
			slog.Info("Bus shutting down", "subscribers", len(b.subscribers))
			close(b.done)
			return
		default:
			slog.Warn("Bus received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (b *Bus) handleSubscribe(c subscribeCmd) error {
	if _, exists := b.subscribers[c.id]; exists {
		return fmt.Errorf("subscribe %q: %w", c.id, domain.ErrDuplicateSubscription)
	}
	b.subscribers[c.id] = c.handler
	b.order = append(b.order, c.id)
	metrics.BusSubscribers.Set(float64(len(b.subscribers)))
	slog.Debug("Bus subscriber registered", "id", c.id, "total", len(b.subscribers))
	return nil
}

func (b *Bus) handleUnsubscribe(c unsubscribeCmd) error {
	if _, exists := b.subscribers[c.id]; !exists {
		return fmt.Errorf("unsubscribe %q: %w", c.id, domain.ErrSubscriptionNotFound)
	}
	delete(b.subscribers, c.id)
	for i, id := range b.order {
		if id == c.id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	metrics.BusSubscribers.Set(float64(len(b.subscribers)))
	slog.Debug("Bus subscriber removed", "id", c.id, "total", len(b.subscribers))
	return nil
}

func (b *Bus) handlePublish(msg domain.Message) {
	for _, id := range b.order {
		b.subscribers[id](msg)
	}
}

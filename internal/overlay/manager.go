// Package overlay enforces the single-overlay rule for transient modal UI.
package overlay

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/gartnera/desktop/internal/domain"
	"github.com/gartnera/desktop/internal/metrics"
)

type activeOverlay struct {
	id     uuid.UUID
	kind   domain.OverlayKind
	handle domain.OverlayHandle
}

// Manager owns the overlay slot. At most one overlay is active at any time;
// opening a new one closes and releases the previous one synchronously before
// the new one is created.
type Manager struct {
	factory domain.OverlayFactory

	mu     sync.Mutex
	active *activeOverlay
}

// NewManager creates a manager with an empty slot. The factory is supplied by
// the host UI layer.
func NewManager(factory domain.OverlayFactory) *Manager {
	return &Manager{factory: factory}
}

// Open presents the requested overlay at the given mount point, replacing any
// overlay currently active. On factory failure the error propagates and the
// slot stays empty; the previous overlay is already closed at that point.
func (m *Manager) Open(kind domain.OverlayKind, mount domain.MountPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		slog.Debug("Replacing active overlay", "old_kind", m.active.kind, "new_kind", kind)
		metrics.OverlaysReplacedTotal.Inc()
		m.active.handle.Close()
		m.active = nil
	}

	handle, err := m.factory.New(kind, mount)
	if err != nil {
		return fmt.Errorf("open overlay %q: %w", kind, err)
	}

	entry := &activeOverlay{id: uuid.New(), kind: kind, handle: handle}
	m.active = entry
	metrics.OverlaysOpenedTotal.WithLabelValues(string(kind)).Inc()

	// One-shot listener: clear the slot when this overlay closes, unless a
	// newer overlay has already taken it.
	go func() {
		<-handle.Closed()
		m.mu.Lock()
		if m.active != nil && m.active.id == entry.id {
			m.active = nil
		}
		m.mu.Unlock()
	}()

	return nil
}

// CurrentlyOpen reports whether an overlay handle is active.
func (m *Manager) CurrentlyOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil
}

// ActiveKind returns the kind of the active overlay, with ok false when the
// slot is empty.
func (m *Manager) ActiveKind() (domain.OverlayKind, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return "", false
	}
	return m.active.kind, true
}

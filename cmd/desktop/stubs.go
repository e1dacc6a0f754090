package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gartnera/desktop/internal/domain"
)

// The real account, crypto, sync, and UI layers live in the host application.
// These stand-ins log every call so a demo run shows the full coordination
// flow end to end.

type memoryStore struct {
	mu     sync.Mutex
	values map[string]any
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: make(map[string]any)}
}

func (s *memoryStore) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *memoryStore) Get(_ context.Context, key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok, nil
}

type stubUsers struct{}

func (stubUsers) UserID(context.Context) (string, error)          { return "demo-user", nil }
func (stubUsers) IsAuthenticated(context.Context) (bool, error)   { return true, nil }
func (stubUsers) Clear(ctx context.Context) error {
	slog.InfoContext(ctx, "Cleared user state")
	return nil
}

type stubCrypto struct{}

func (stubCrypto) HasKey(context.Context) (bool, error) { return true, nil }
func (stubCrypto) Fingerprint(context.Context, string) ([]string, error) {
	return []string{"alabaster", "shotgun", "promiscuous", "flip", "gyroscope"}, nil
}
func (stubCrypto) ClearKeys(ctx context.Context) error {
	slog.InfoContext(ctx, "Cleared key material")
	return nil
}

type stubAuth struct{}

func (stubAuth) Logout(ctx context.Context, onDone func(ctx context.Context)) {
	slog.InfoContext(ctx, "Provider logout")
	onDone(ctx)
}

type stubLocker struct{}

func (stubLocker) Lock(ctx context.Context) error {
	slog.InfoContext(ctx, "Vault locked")
	return nil
}

type stubLiveUpdate struct{}

func (stubLiveUpdate) UpdateConnection(ctx context.Context) error {
	slog.InfoContext(ctx, "Live-update connection re-evaluated")
	return nil
}

func (stubLiveUpdate) DisconnectFromInactivity(ctx context.Context) error {
	slog.InfoContext(ctx, "Live-update disconnected from inactivity")
	return nil
}

func (stubLiveUpdate) ReconnectFromActivity(ctx context.Context) error {
	slog.InfoContext(ctx, "Live-update reconnected from activity")
	return nil
}

type stubNavigator struct{}

func (stubNavigator) NavigateToLogin(ctx context.Context) {
	slog.InfoContext(ctx, "Navigating", "route", "login")
}

func (stubNavigator) NavigateToLock(ctx context.Context, refresh bool) {
	slog.InfoContext(ctx, "Navigating", "route", "lock", "refresh", refresh)
}

type stubAnalytics struct{}

func (stubAnalytics) TrackEvent(ctx context.Context, action, label string) {
	slog.InfoContext(ctx, "Analytics event", "action", action, "label", label)
}

type stubLocalizer struct{}

func (stubLocalizer) T(key string) string { return key }

type stubDialogs struct{}

func (stubDialogs) ShowDialog(ctx context.Context, body, title, confirmText, cancelText string) (bool, error) {
	slog.InfoContext(ctx, "Dialog shown", "title", title, "body", body, "confirm", confirmText, "cancel", cancelText)
	return false, nil
}

func (stubDialogs) LaunchURI(ctx context.Context, uri string) error {
	slog.InfoContext(ctx, "Launching URI", "uri", uri)
	return nil
}

type stubOverlayHandle struct {
	closed chan struct{}
	once   sync.Once
}

func (h *stubOverlayHandle) Close()                  { h.once.Do(func() { close(h.closed) }) }
func (h *stubOverlayHandle) Closed() <-chan struct{} { return h.closed }

type stubOverlayFactory struct{}

func (stubOverlayFactory) New(kind domain.OverlayKind, mount domain.MountPoint) (domain.OverlayHandle, error) {
	slog.Info("Overlay instantiated", "kind", kind, "mount", mount)
	return &stubOverlayHandle{closed: make(chan struct{})}, nil
}

type logDisplay struct{}

func (logDisplay) Show(req domain.ToastRequest) {
	slog.Info("Toast", "kind", req.Kind, "title", req.Title, "body", req.Body, "format", req.BodyFormat, "timeout_ms", req.TimeoutMs)
}

type stubSyncState struct{}

func (stubSyncState) SetLastSync(ctx context.Context, t time.Time) error {
	slog.InfoContext(ctx, "Last-sync reset", "time", t)
	return nil
}

type stubTokens struct{}

func (stubTokens) ClearToken(ctx context.Context) error {
	slog.InfoContext(ctx, "Tokens cleared")
	return nil
}

type logClearStore struct{ name string }

func (s logClearStore) Clear(ctx context.Context, userID string) error {
	slog.InfoContext(ctx, "Store cleared", "store", s.name, "user_id", userID)
	return nil
}

type stubPasswordHistory struct{}

func (stubPasswordHistory) Clear(ctx context.Context) error {
	slog.InfoContext(ctx, "Password history cleared")
	return nil
}

type stubSearchIndex struct{}

func (stubSearchIndex) ClearIndex(ctx context.Context) {
	slog.InfoContext(ctx, "Search index cleared")
}

// scriptedInput lets the demo inject synthetic user activity.
type scriptedInput struct {
	mu  sync.Mutex
	fns []func(domain.InputEvent)
}

func (s *scriptedInput) Subscribe(fn func(domain.InputEvent)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
	return func() {}, nil
}

func (s *scriptedInput) Trigger(kind domain.InputEventKind) {
	s.mu.Lock()
	fns := append(([]func(domain.InputEvent))(nil), s.fns...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(domain.InputEvent{Kind: kind})
	}
}

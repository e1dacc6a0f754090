package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gartnera/desktop/internal/domain"
)

// --- Mock implementations ---

type fakeBus struct {
	mu        sync.Mutex
	handlers  map[string]func(domain.Message)
	published []domain.Message
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string]func(domain.Message))}
}

func (b *fakeBus) Subscribe(id string, handler func(domain.Message)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[id]; ok {
		return domain.ErrDuplicateSubscription
	}
	b.handlers[id] = handler
	return nil
}

func (b *fakeBus) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[id]; !ok {
		return domain.ErrSubscriptionNotFound
	}
	delete(b.handlers, id)
	return nil
}

func (b *fakeBus) Publish(msg domain.Message) {
	b.mu.Lock()
	b.published = append(b.published, msg)
	b.mu.Unlock()
}

// deliver pushes a message straight into the coordinator's handler, the way
// the real bus goroutine would.
func (b *fakeBus) deliver(msg domain.Message) {
	b.mu.Lock()
	handler := b.handlers[SubscriptionID]
	b.mu.Unlock()
	if handler != nil {
		handler(msg)
	}
}

func (b *fakeBus) publishedCommands() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, msg := range b.published {
		out = append(out, msg.Command)
	}
	return out
}

func (b *fakeBus) lastPublished() (domain.Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.published) == 0 {
		return domain.Message{}, false
	}
	return b.published[len(b.published)-1], true
}

type mockUsers struct {
	mu            sync.Mutex
	authenticated bool
	userID        string
}

func (m *mockUsers) UserID(context.Context) (string, error) { return m.userID, nil }
func (m *mockUsers) IsAuthenticated(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated, nil
}
func (m *mockUsers) Clear(context.Context) error { return nil }

type mockCrypto struct {
	hasKey      bool
	fingerprint []string
}

func (m *mockCrypto) HasKey(context.Context) (bool, error) { return m.hasKey, nil }
func (m *mockCrypto) Fingerprint(context.Context, string) ([]string, error) {
	return m.fingerprint, nil
}
func (m *mockCrypto) ClearKeys(context.Context) error { return nil }

type mockLocker struct {
	mu    sync.Mutex
	locks int
}

func (m *mockLocker) Lock(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks++
	return nil
}

func (m *mockLocker) lockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locks
}

type mockLiveUpdate struct {
	mu      sync.Mutex
	updates int
	fail    int // fail this many calls before succeeding
}

func (m *mockLiveUpdate) UpdateConnection(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.fail > 0 {
		m.fail--
		return errors.New("transport down")
	}
	return nil
}

func (m *mockLiveUpdate) DisconnectFromInactivity(context.Context) error { return nil }
func (m *mockLiveUpdate) ReconnectFromActivity(context.Context) error    { return nil }

func (m *mockLiveUpdate) updateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updates
}

type mockNavigator struct {
	mu        sync.Mutex
	lockNavs  []bool
	loginNavs int
}

func (m *mockNavigator) NavigateToLogin(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginNavs++
}

func (m *mockNavigator) NavigateToLock(_ context.Context, refresh bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockNavs = append(m.lockNavs, refresh)
}

type mockAnalytics struct {
	mu     sync.Mutex
	events [][2]string
}

func (m *mockAnalytics) TrackEvent(_ context.Context, action, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, [2]string{action, label})
}

type passthroughLocalizer struct{}

func (passthroughLocalizer) T(key string) string { return key }

type mockDialogs struct {
	mu       sync.Mutex
	confirm  bool
	bodies   []string
	launched []string
}

func (m *mockDialogs) ShowDialog(_ context.Context, body, _, _, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bodies = append(m.bodies, body)
	return m.confirm, nil
}

func (m *mockDialogs) LaunchURI(_ context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.launched = append(m.launched, uri)
	return nil
}

func (m *mockDialogs) launchedURIs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.launched...)
}

type mockOverlays struct {
	mu     sync.Mutex
	opened []domain.OverlayKind
	mounts []domain.MountPoint
}

func (m *mockOverlays) Open(kind domain.OverlayKind, mount domain.MountPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = append(m.opened, kind)
	m.mounts = append(m.mounts, mount)
	return nil
}

type mockToaster struct {
	mu       sync.Mutex
	payloads []domain.ToastPayload
}

func (m *mockToaster) Show(_ context.Context, payload domain.ToastPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, payload)
}

type mockTeardown struct {
	mu   sync.Mutex
	runs []bool
}

func (m *mockTeardown) Run(_ context.Context, expired bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, expired)
	return nil
}

func (m *mockTeardown) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

type mockMonitor struct {
	mu       sync.Mutex
	attached int
	stopped  bool
}

func (m *mockMonitor) Attach(domain.InputSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attached++
	return nil
}

func (m *mockMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

type staticInputSource struct{}

func (staticInputSource) Subscribe(func(domain.InputEvent)) (func(), error) {
	return func() {}, nil
}

type fixture struct {
	c          *Coordinator
	bus        *fakeBus
	users      *mockUsers
	crypto     *mockCrypto
	locker     *mockLocker
	liveUpdate *mockLiveUpdate
	nav        *mockNavigator
	analytics  *mockAnalytics
	dialogs    *mockDialogs
	overlays   *mockOverlays
	toaster    *mockToaster
	teardown   *mockTeardown
	monitor    *mockMonitor
	clock      *clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bus:        newFakeBus(),
		users:      &mockUsers{authenticated: true, userID: "user-1"},
		crypto:     &mockCrypto{hasKey: true, fingerprint: []string{"alpha", "bravo", "charlie"}},
		locker:     &mockLocker{},
		liveUpdate: &mockLiveUpdate{},
		nav:        &mockNavigator{},
		analytics:  &mockAnalytics{},
		dialogs:    &mockDialogs{},
		overlays:   &mockOverlays{},
		toaster:    &mockToaster{},
		teardown:   &mockTeardown{},
		monitor:    &mockMonitor{},
		clock:      clockwork.NewFakeClock(),
	}
	f.c = New(Deps{
		Bus:                f.bus,
		Users:              f.users,
		Crypto:             f.crypto,
		Locker:             f.locker,
		LiveUpdate:         f.liveUpdate,
		Navigator:          f.nav,
		Analytics:          f.analytics,
		Localizer:          passthroughLocalizer{},
		Dialogs:            f.dialogs,
		Overlays:           f.overlays,
		Toaster:            f.toaster,
		Teardown:           f.teardown,
		Monitor:            f.monitor,
		InputSources:       []domain.InputSource{staticInputSource{}, staticInputSource{}},
		Mounts: map[domain.OverlayKind]domain.MountPoint{
			domain.OverlaySettings:        "settings-mount",
			domain.OverlayPremium:         "premium-mount",
			domain.OverlayPasswordHistory: "history-mount",
		},
		Clock:              f.clock,
		MenuRefreshDelay:   time.Second,
		FingerprintHelpURI: "https://example.com/fingerprint",
	})
	require.NoError(t, f.c.Start(context.Background()))
	t.Cleanup(f.c.Stop)
	return f
}

func TestStart_TwiceFails(t *testing.T) {
	f := newFixture(t)

	err := f.c.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateSubscription)
}

func TestStart_AttachesAllInputSources(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 2, f.monitor.attached)
}

func TestStart_SchedulesMenuRefresh(t *testing.T) {
	f := newFixture(t)

	assert.Empty(t, f.bus.publishedCommands())

	f.clock.Advance(time.Second)
	require.Eventually(t, func() bool {
		return len(f.bus.publishedCommands()) == 1
	}, time.Second, time.Millisecond)

	msg, ok := f.bus.lastPublished()
	require.True(t, ok)
	assert.Equal(t, domain.CommandUpdateAppMenu, msg.Command)
	assert.Equal(t, true, msg.Data["isAuthenticated"])
	assert.Equal(t, false, msg.Data["isLocked"])
}

func TestStop_ReleasesEverything(t *testing.T) {
	f := newFixture(t)

	f.c.Stop()

	assert.True(t, f.monitor.stopped)
	// Unsubscribed: delivery is a no-op now.
	f.bus.deliver(domain.NewMessage(domain.CommandLockVault))
	assert.Equal(t, 0, f.locker.lockCount())
	// Pending menu refresh cancelled.
	f.clock.Advance(time.Minute)
	assert.Empty(t, f.bus.publishedCommands())
}

func TestDispatch_AuthStateCommandsRefreshConnectionAndMenu(t *testing.T) {
	for _, command := range []string{domain.CommandLoggedIn, domain.CommandLoggedOut, domain.CommandUnlocked} {
		t.Run(command, func(t *testing.T) {
			f := newFixture(t)

			f.bus.deliver(domain.NewMessage(command))

			require.Eventually(t, func() bool {
				return f.liveUpdate.updateCount() == 1 && len(f.bus.publishedCommands()) == 1
			}, time.Second, time.Millisecond)

			msg, _ := f.bus.lastPublished()
			assert.Equal(t, domain.CommandUpdateAppMenu, msg.Command)
		})
	}
}

func TestDispatch_MenuStateReflectsCollaborators(t *testing.T) {
	f := newFixture(t)
	f.users.authenticated = false
	f.crypto.hasKey = false

	f.bus.deliver(domain.NewMessage(domain.CommandLoggedOut))

	require.Eventually(t, func() bool { return len(f.bus.publishedCommands()) == 1 }, time.Second, time.Millisecond)
	msg, _ := f.bus.lastPublished()
	assert.Equal(t, false, msg.Data["isAuthenticated"])
	assert.Equal(t, true, msg.Data["isLocked"])
}

func TestDispatch_ConnectionRefreshRetriesTransientFailures(t *testing.T) {
	f := newFixture(t)
	f.liveUpdate.fail = 1

	f.bus.deliver(domain.NewMessage(domain.CommandLoggedIn))

	// First attempt fails; the retry fires after the backoff. The menu
	// refresh timer from Start is already waiting on the clock, so the
	// backoff timer is the second waiter.
	require.Eventually(t, func() bool { return f.liveUpdate.updateCount() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, f.clock.BlockUntilContext(context.Background(), 2))
	f.clock.Advance(500 * time.Millisecond)
	require.Eventually(t, func() bool { return f.liveUpdate.updateCount() == 2 }, time.Second, time.Millisecond)
}

func TestDispatch_Logout(t *testing.T) {
	f := newFixture(t)

	f.bus.deliver(domain.Message{Command: domain.CommandLogout, Data: map[string]any{"expired": true}})

	require.Eventually(t, func() bool { return f.teardown.runCount() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []bool{true}, f.teardown.runs)
}

func TestDispatch_LogoutWithoutPayloadNotExpired(t *testing.T) {
	f := newFixture(t)

	f.bus.deliver(domain.NewMessage(domain.CommandLogout))

	require.Eventually(t, func() bool { return f.teardown.runCount() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []bool{false}, f.teardown.runs)
}

func TestDispatch_LockVaultForwardsToLocker(t *testing.T) {
	f := newFixture(t)

	f.bus.deliver(domain.NewMessage(domain.CommandLockVault))

	require.Eventually(t, func() bool { return f.locker.lockCount() == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, f.nav.lockNavs)
}

func TestDispatch_LockedNavigatesWithRefresh(t *testing.T) {
	f := newFixture(t)

	f.bus.deliver(domain.NewMessage(domain.CommandLocked))

	require.Eventually(t, func() bool {
		return f.liveUpdate.updateCount() == 1 && len(f.bus.publishedCommands()) == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, []bool{true}, f.nav.lockNavs)
}

func TestDispatch_OverlayCommands(t *testing.T) {
	tests := []struct {
		command string
		kind    domain.OverlayKind
		mount   string
	}{
		{domain.CommandOpenSettings, domain.OverlaySettings, "settings-mount"},
		{domain.CommandOpenPremium, domain.OverlayPremium, "premium-mount"},
		{domain.CommandOpenPasswordHistory, domain.OverlayPasswordHistory, "history-mount"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			f := newFixture(t)

			f.bus.deliver(domain.NewMessage(tt.command))

			require.Len(t, f.overlays.opened, 1)
			assert.Equal(t, tt.kind, f.overlays.opened[0])
			assert.Equal(t, tt.mount, f.overlays.mounts[0])
		})
	}
}

func TestDispatch_ShowFingerprintPhrase(t *testing.T) {
	f := newFixture(t)
	f.dialogs.confirm = true

	f.bus.deliver(domain.NewMessage(domain.CommandShowFingerprintPhrase))

	require.Eventually(t, func() bool { return len(f.dialogs.launchedURIs()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "https://example.com/fingerprint", f.dialogs.launched[0])
	assert.Contains(t, f.dialogs.bodies[0], "alpha-bravo-charlie")
	assert.Contains(t, f.dialogs.bodies[0], "yourAccountsFingerprint")
}

func TestDispatch_FingerprintDialogDeclined(t *testing.T) {
	f := newFixture(t)
	f.dialogs.confirm = false

	f.bus.deliver(domain.NewMessage(domain.CommandShowFingerprintPhrase))

	require.Eventually(t, func() bool {
		f.dialogs.mu.Lock()
		defer f.dialogs.mu.Unlock()
		return len(f.dialogs.bodies) == 1
	}, time.Second, time.Millisecond)
	assert.Empty(t, f.dialogs.launchedURIs())
}

func TestDispatch_ShowToast(t *testing.T) {
	f := newFixture(t)

	f.bus.deliver(domain.Message{Command: domain.CommandShowToast, Data: map[string]any{
		"type":  "error",
		"title": "Oops",
		"text":  "something broke",
	}})

	require.Len(t, f.toaster.payloads, 1)
	assert.Equal(t, "error", f.toaster.payloads[0].Type)
	assert.Equal(t, "Oops", f.toaster.payloads[0].Title)
	assert.Equal(t, "something broke", f.toaster.payloads[0].Text)
}

func TestDispatch_AnalyticsEventTrack(t *testing.T) {
	f := newFixture(t)

	f.bus.deliver(domain.Message{Command: domain.CommandAnalyticsEventTrack, Data: map[string]any{
		"action": "Opened Settings",
		"label":  "menu",
	}})

	require.Len(t, f.analytics.events, 1)
	assert.Equal(t, [2]string{"Opened Settings", "menu"}, f.analytics.events[0])
}

func TestDispatch_SyncCommandsAreNoopHooks(t *testing.T) {
	f := newFixture(t)

	f.bus.deliver(domain.NewMessage(domain.CommandSyncStarted))
	f.bus.deliver(domain.NewMessage(domain.CommandSyncCompleted))

	assert.Empty(t, f.bus.publishedCommands())
	assert.Equal(t, 0, f.liveUpdate.updateCount())
}

func TestDispatch_UnknownCommandHasZeroSideEffects(t *testing.T) {
	f := newFixture(t)

	f.bus.deliver(domain.NewMessage("definitelyNotACommand"))

	// Give any stray goroutine a moment to surface.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.bus.publishedCommands())
	assert.Equal(t, 0, f.liveUpdate.updateCount())
	assert.Equal(t, 0, f.teardown.runCount())
	assert.Equal(t, 0, f.locker.lockCount())
	assert.Empty(t, f.overlays.opened)
	assert.Empty(t, f.toaster.payloads)
	assert.Empty(t, f.analytics.events)
}

func TestDispatch_ReentrantDuringLogout(t *testing.T) {
	f := newFixture(t)

	// A logout in flight must not block later commands.
	f.bus.deliver(domain.NewMessage(domain.CommandLogout))
	f.bus.deliver(domain.NewMessage(domain.CommandOpenSettings))

	require.Len(t, f.overlays.opened, 1)
	require.Eventually(t, func() bool { return f.teardown.runCount() == 1 }, time.Second, time.Millisecond)
}

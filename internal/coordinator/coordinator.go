package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gartnera/desktop/internal/domain"
	"github.com/gartnera/desktop/internal/metrics"
	"github.com/gartnera/desktop/internal/platform/correlation"
	"github.com/gartnera/desktop/internal/platform/retry"
)

// SubscriptionID is the coordinator's stable identity on the broadcast bus.
const SubscriptionID = "session-coordinator"

const (
	connectionRetryAttempts = 3
	connectionRetryBackoff  = 500 * time.Millisecond
)

// OverlayOpener presents singleton overlays. Implemented by overlay.Manager.
type OverlayOpener interface {
	Open(kind domain.OverlayKind, mount domain.MountPoint) error
}

// Toaster is the notification pipeline entry point. Implemented by
// notify.Notifier.
type Toaster interface {
	Show(ctx context.Context, payload domain.ToastPayload)
}

// LogoutRunner executes the teardown sequence. Implemented by
// teardown.Sequencer.
type LogoutRunner interface {
	Run(ctx context.Context, expired bool) error
}

// ActivityMonitor is the idle state machine the coordinator attaches to input
// sources. Implemented by activity.Monitor.
type ActivityMonitor interface {
	Attach(source domain.InputSource) error
	Stop()
}

// Deps bundles everything the coordinator routes to.
type Deps struct {
	Bus        domain.Bus
	Users      domain.UserService
	Crypto     domain.CryptoService
	Locker     domain.VaultLocker
	LiveUpdate domain.LiveUpdateService
	Navigator  domain.Navigator
	Analytics  domain.Analytics
	Localizer  domain.Localizer
	Dialogs    domain.DialogService
	Overlays   OverlayOpener
	Toaster    Toaster
	Teardown   LogoutRunner
	Monitor    ActivityMonitor

	// InputSources are the host window's raw input feeds; all of them drive
	// the activity monitor.
	InputSources []domain.InputSource

	// Mounts anchors each overlay kind in the host UI.
	Mounts map[domain.OverlayKind]domain.MountPoint

	Clock              clockwork.Clock
	MenuRefreshDelay   time.Duration
	FingerprintHelpURI string
}

// Coordinator owns the bus subscription and the lifecycle of the activity
// monitor. Create with New, then Start exactly once.
type Coordinator struct {
	deps      Deps
	menuTimer clockwork.Timer
	started   bool
}

func New(deps Deps) *Coordinator {
	return &Coordinator{deps: deps}
}

// Start subscribes to the bus, attaches the input sources, and schedules the
// start-up app-menu broadcast. Starting twice is an error.
func (c *Coordinator) Start(ctx context.Context) error {
	if c.started {
		return fmt.Errorf("coordinator: %w", domain.ErrDuplicateSubscription)
	}

	if err := c.deps.Bus.Subscribe(SubscriptionID, c.dispatch); err != nil {
		return fmt.Errorf("coordinator subscribe: %w", err)
	}
	c.started = true

	for _, source := range c.deps.InputSources {
		if err := c.deps.Monitor.Attach(source); err != nil {
			slog.WarnContext(ctx, "Failed to attach input source", "error", err)
		}
	}

	// Give the menu consumer a beat to come up before the first state lands.
	c.menuTimer = c.deps.Clock.AfterFunc(c.deps.MenuRefreshDelay, func() {
		c.updateAppMenu(correlation.WithID(context.Background(), correlation.NewID()))
	})

	slog.InfoContext(ctx, "Session coordinator started", "subscription_id", SubscriptionID)
	return nil
}

// Stop unsubscribes from the bus and releases every handle Start acquired.
func (c *Coordinator) Stop() {
	if !c.started {
		return
	}
	c.started = false

	if c.menuTimer != nil {
		c.menuTimer.Stop()
		c.menuTimer = nil
	}
	c.deps.Monitor.Stop()
	if err := c.deps.Bus.Unsubscribe(SubscriptionID); err != nil {
		slog.Warn("Coordinator unsubscribe failed", "error", err)
	}
	slog.Info("Session coordinator stopped")
}

// dispatch decodes one bus message and routes it. Runs on the bus goroutine:
// anything slow goes to its own goroutine so later commands are not held up.
func (c *Coordinator) dispatch(msg domain.Message) {
	ctx := correlation.WithID(context.Background(), correlation.NewID())

	cmd := domain.DecodeCommand(msg)
	if cmd == nil {
		metrics.CommandsUnknownTotal.Inc()
		slog.DebugContext(ctx, "Ignoring unknown command", "command", msg.Command)
		return
	}
	metrics.CommandsDispatchedTotal.WithLabelValues(msg.Command).Inc()
	slog.DebugContext(ctx, "Dispatching command", "command", msg.Command)

	switch cmd := cmd.(type) {
	case domain.LoggedInCommand, domain.LoggedOutCommand, domain.UnlockedCommand:
		go c.refreshConnection(ctx)
		go c.updateAppMenu(ctx)

	case domain.LogoutCommand:
		go func() {
			if err := c.deps.Teardown.Run(ctx, cmd.Expired); err != nil {
				slog.ErrorContext(ctx, "Teardown finished with failures", "error", err)
			}
		}()

	case domain.LockVaultCommand:
		go func() {
			if err := c.deps.Locker.Lock(ctx); err != nil {
				slog.ErrorContext(ctx, "Vault lock failed", "error", err)
			}
		}()

	case domain.LockedCommand:
		c.deps.Navigator.NavigateToLock(ctx, true)
		go c.refreshConnection(ctx)
		go c.updateAppMenu(ctx)

	case domain.SyncStartedCommand, domain.SyncCompletedCommand:
		// Hook points for sync-aware features; nothing to do yet.

	case domain.OpenSettingsCommand:
		c.openOverlay(ctx, domain.OverlaySettings)
	case domain.OpenPremiumCommand:
		c.openOverlay(ctx, domain.OverlayPremium)
	case domain.OpenPasswordHistoryCommand:
		c.openOverlay(ctx, domain.OverlayPasswordHistory)

	case domain.ShowFingerprintPhraseCommand:
		go c.showFingerprintPhrase(ctx)

	case domain.ShowToastCommand:
		c.deps.Toaster.Show(ctx, cmd.Payload)

	case domain.AnalyticsEventTrackCommand:
		c.deps.Analytics.TrackEvent(ctx, cmd.Action, cmd.Label)
	}
}

// updateAppMenu derives the session state on demand and re-broadcasts it for
// the menu consumer. Never cached: the auth and key collaborators are the
// source of truth.
func (c *Coordinator) updateAppMenu(ctx context.Context) {
	isAuthenticated, err := c.deps.Users.IsAuthenticated(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Could not resolve authentication state", "error", err)
		return
	}
	hasKey, err := c.deps.Crypto.HasKey(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Could not resolve key state", "error", err)
		return
	}

	c.deps.Bus.Publish(domain.Message{
		Command: domain.CommandUpdateAppMenu,
		Data: map[string]any{
			"isAuthenticated": isAuthenticated,
			"isLocked":        !hasKey,
		},
	})
}

// refreshConnection re-evaluates the live-update channel after an
// authentication-state change, retrying transient failures.
func (c *Coordinator) refreshConnection(ctx context.Context) {
	policy := retry.Policy{
		MaxAttempts:    connectionRetryAttempts,
		InitialBackoff: connectionRetryBackoff,
		Clock:          c.deps.Clock,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.WarnContext(ctx, "Live-update refresh failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}
	err := retry.Do(ctx, policy, func(error) retry.Action { return retry.Retry }, func() error {
		return c.deps.LiveUpdate.UpdateConnection(ctx)
	})
	if err != nil {
		slog.ErrorContext(ctx, "Live-update refresh gave up", "error", err)
	}
}

func (c *Coordinator) openOverlay(ctx context.Context, kind domain.OverlayKind) {
	if err := c.deps.Overlays.Open(kind, c.deps.Mounts[kind]); err != nil {
		slog.ErrorContext(ctx, "Could not open overlay", "kind", kind, "error", err)
	}
}

// showFingerprintPhrase computes the account fingerprint, shows it in a
// confirmation dialog, and opens the help article when the user asks to learn
// more.
func (c *Coordinator) showFingerprintPhrase(ctx context.Context) {
	userID, err := c.deps.Users.UserID(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Could not resolve user for fingerprint", "error", err)
		return
	}
	fingerprint, err := c.deps.Crypto.Fingerprint(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Could not compute fingerprint", "error", err)
		return
	}

	body := c.deps.Localizer.T("yourAccountsFingerprint") + ":\n" + strings.Join(fingerprint, "-")
	confirmed, err := c.deps.Dialogs.ShowDialog(ctx, body,
		c.deps.Localizer.T("fingerprintPhrase"),
		c.deps.Localizer.T("learnMore"),
		c.deps.Localizer.T("close"))
	if err != nil {
		slog.ErrorContext(ctx, "Fingerprint dialog failed", "error", err)
		return
	}
	if confirmed {
		if err := c.deps.Dialogs.LaunchURI(ctx, c.deps.FingerprintHelpURI); err != nil {
			slog.ErrorContext(ctx, "Could not open fingerprint help", "error", err)
		}
	}
}

// Package teardown coordinates the all-stores logout sequence.
//
// All per-session store clears are issued concurrently; individual failures
// are collected rather than aborting the sequence, so a single bad store can
// no longer leave the rest of the session data behind. The provider logout and
// navigation always run.
package teardown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gartnera/desktop/internal/domain"
	"github.com/gartnera/desktop/internal/metrics"
)

// StoreClearError reports one store that failed to clear during teardown.
type StoreClearError struct {
	Store string
	Err   error
}

func (e *StoreClearError) Error() string { return fmt.Sprintf("clear %s: %v", e.Store, e.Err) }
func (e *StoreClearError) Unwrap() error { return e.Err }

// FailedStores extracts the names of stores that failed out of an error
// returned by Run.
func FailedStores(err error) []string {
	var names []string
	collect(err, &names)
	return names
}

func collect(err error, names *[]string) {
	if err == nil {
		return
	}
	var sce *StoreClearError
	if errors.As(err, &sce) {
		*names = append(*names, sce.Store)
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, sub := range joined.Unwrap() {
			collect(sub, names)
		}
	}
}

// Toaster is the notification pipeline entry point the sequencer uses for the
// session-expired toast.
type Toaster interface {
	Show(ctx context.Context, payload domain.ToastPayload)
}

// Stores bundles every per-session store the sequencer clears.
type Stores struct {
	Sync            domain.SyncState
	Tokens          domain.TokenStore
	Crypto          domain.CryptoService
	Users           domain.UserService
	Settings        domain.SettingsStore
	Ciphers         domain.CipherStore
	Folders         domain.FolderStore
	Collections     domain.CollectionStore
	PasswordHistory domain.PasswordHistoryStore
	Search          domain.SearchIndex
}

// Sequencer runs the logout sequence. Concurrent triggers collapse into one
// in-flight run.
type Sequencer struct {
	stores    Stores
	auth      domain.AuthService
	toaster   Toaster
	nav       domain.Navigator
	analytics domain.Analytics
	localizer domain.Localizer

	group singleflight.Group
}

func NewSequencer(stores Stores, auth domain.AuthService, toaster Toaster, nav domain.Navigator, analytics domain.Analytics, localizer domain.Localizer) *Sequencer {
	return &Sequencer{
		stores:    stores,
		auth:      auth,
		toaster:   toaster,
		nav:       nav,
		analytics: analytics,
		localizer: localizer,
	}
}

// Run executes the teardown: concurrent store clears, search index reset,
// provider logout, then the completion effects (analytics, expired toast,
// navigation to login). The returned error joins every store that failed to
// clear; the sequence itself always runs to completion.
func (s *Sequencer) Run(ctx context.Context, expired bool) error {
	result, err, _ := s.group.Do("logout", func() (any, error) {
		return nil, s.run(ctx, expired)
	})
	_ = result
	return err
}

func (s *Sequencer) run(ctx context.Context, expired bool) error {
	userID, err := s.stores.Users.UserID(ctx)
	if err != nil {
		// Clears that need scoping get an empty ID; better a partial clear
		// than none at all on a dying session.
		slog.WarnContext(ctx, "Could not resolve user for teardown", "error", err)
	}

	slog.InfoContext(ctx, "Starting session teardown", "expired", expired)

	clears := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"syncState", func(ctx context.Context) error { return s.stores.Sync.SetLastSync(ctx, time.Unix(0, 0)) }},
		{"tokens", s.stores.Tokens.ClearToken},
		{"cryptoKeys", s.stores.Crypto.ClearKeys},
		{"user", s.stores.Users.Clear},
		{"settings", func(ctx context.Context) error { return s.stores.Settings.Clear(ctx, userID) }},
		{"ciphers", func(ctx context.Context) error { return s.stores.Ciphers.Clear(ctx, userID) }},
		{"folders", func(ctx context.Context) error { return s.stores.Folders.Clear(ctx, userID) }},
		{"collections", func(ctx context.Context) error { return s.stores.Collections.Clear(ctx, userID) }},
		{"passwordHistory", func(ctx context.Context) error { return s.stores.PasswordHistory.Clear(ctx) }},
	}

	var (
		mu       sync.Mutex
		failures []error
		wg       sync.WaitGroup
	)
	for _, clear := range clears {
		wg.Add(1)
		go func(name string, fn func(context.Context) error) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				metrics.TeardownStoreFailuresTotal.WithLabelValues(name).Inc()
				mu.Lock()
				failures = append(failures, &StoreClearError{Store: name, Err: err})
				mu.Unlock()
			}
		}(clear.name, clear.fn)
	}
	wg.Wait()

	// Process-wide, not user-scoped.
	s.stores.Search.ClearIndex(ctx)

	s.auth.Logout(ctx, func(ctx context.Context) {
		s.analytics.TrackEvent(ctx, "Logged Out", "")
		if expired {
			s.toaster.Show(ctx, domain.ToastPayload{
				Type:  string(domain.ToastWarning),
				Title: s.localizer.T("loggedOut"),
				Text:  s.localizer.T("loginExpired"),
			})
		}
		s.nav.NavigateToLogin(ctx)
	})

	joined := errors.Join(failures...)
	if joined != nil {
		metrics.TeardownsTotal.WithLabelValues("partial").Inc()
		slog.ErrorContext(ctx, "Teardown completed with store failures", "failed_stores", FailedStores(joined))
		return joined
	}
	metrics.TeardownsTotal.WithLabelValues("ok").Inc()
	slog.InfoContext(ctx, "Teardown complete")
	return nil
}

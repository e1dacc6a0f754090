package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/gartnera/desktop/internal/activity"
	"github.com/gartnera/desktop/internal/bus"
	"github.com/gartnera/desktop/internal/coordinator"
	"github.com/gartnera/desktop/internal/domain"
	"github.com/gartnera/desktop/internal/notify"
	"github.com/gartnera/desktop/internal/overlay"
	"github.com/gartnera/desktop/internal/platform/config"
	"github.com/gartnera/desktop/internal/platform/logging"
	"github.com/gartnera/desktop/internal/teardown"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runGracefulShutdown(coord *coordinator.Coordinator, broker *bus.Bus) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		coord.Stop()
		broker.Stop()

		close(done)
	}()

	return done
}

// runDemoScript drives a small scripted session so a demo run exercises the
// whole pipeline: login, activity, an overlay, a toast, and a logout.
func runDemoScript(broker *bus.Bus, input *scriptedInput) {
	step := func(msg domain.Message) {
		time.Sleep(250 * time.Millisecond)
		broker.Publish(msg)
	}

	step(domain.NewMessage(domain.CommandLoggedIn))

	time.Sleep(250 * time.Millisecond)
	input.Trigger(domain.InputPointerMove)
	input.Trigger(domain.InputKeyPress)

	step(domain.NewMessage(domain.CommandOpenSettings))
	step(domain.Message{Command: domain.CommandShowToast, Data: map[string]any{
		"type":  "success",
		"title": "Welcome",
		"text":  []any{"Session restored.", "Vault is unlocked."},
	}})
	step(domain.NewMessage(domain.CommandShowFingerprintPhrase))
	step(domain.Message{Command: domain.CommandLogout, Data: map[string]any{"expired": false}})
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting",
		"activity_debounce", cfg.ActivityDebounce,
		"idle_timeout", cfg.IdleTimeout)

	broker := bus.New(clock)

	store := newMemoryStore()
	liveUpdate := stubLiveUpdate{}
	monitor := activity.NewMonitor(store, liveUpdate, clock, cfg.ActivityDebounce, cfg.IdleTimeout)

	overlays := overlay.NewManager(stubOverlayFactory{})
	notifier := notify.NewNotifier(logDisplay{})

	sequencer := teardown.NewSequencer(teardown.Stores{
		Sync:            stubSyncState{},
		Tokens:          stubTokens{},
		Crypto:          stubCrypto{},
		Users:           stubUsers{},
		Settings:        logClearStore{name: "settings"},
		Ciphers:         logClearStore{name: "ciphers"},
		Folders:         logClearStore{name: "folders"},
		Collections:     logClearStore{name: "collections"},
		PasswordHistory: stubPasswordHistory{},
		Search:          stubSearchIndex{},
	}, stubAuth{}, notifier, stubNavigator{}, stubAnalytics{}, stubLocalizer{})

	input := &scriptedInput{}

	coord := coordinator.New(coordinator.Deps{
		Bus:          broker,
		Users:        stubUsers{},
		Crypto:       stubCrypto{},
		Locker:       stubLocker{},
		LiveUpdate:   liveUpdate,
		Navigator:    stubNavigator{},
		Analytics:    stubAnalytics{},
		Localizer:    stubLocalizer{},
		Dialogs:      stubDialogs{},
		Overlays:     overlays,
		Toaster:      notifier,
		Teardown:     sequencer,
		Monitor:      monitor,
		InputSources: []domain.InputSource{input},
		Mounts: map[domain.OverlayKind]domain.MountPoint{
			domain.OverlaySettings:        "main-window",
			domain.OverlayPremium:         "main-window",
			domain.OverlayPasswordHistory: "main-window",
		},
		Clock:              clock,
		MenuRefreshDelay:   cfg.MenuRefreshDelay,
		FingerprintHelpURI: cfg.FingerprintHelpURI,
	})

	if err := coord.Start(context.Background()); err != nil {
		slog.Error("Failed to start coordinator", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(coord, broker)

	go runDemoScript(broker, input)

	<-done
	slog.Info("Shutdown complete")
}

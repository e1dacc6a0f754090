package domain

import "context"

// Navigator drives routing. Mechanics are the host's concern.
type Navigator interface {
	NavigateToLogin(ctx context.Context)
	// NavigateToLock routes to the lock screen; refresh asks the screen to
	// re-read its state rather than reuse a cached view.
	NavigateToLock(ctx context.Context, refresh bool)
}

// Localizer resolves UI strings by key.
type Localizer interface {
	T(key string) string
}

// DialogService shows blocking confirmation dialogs and opens external links.
type DialogService interface {
	// ShowDialog returns true when the user picked the confirm button.
	ShowDialog(ctx context.Context, body, title, confirmText, cancelText string) (bool, error)
	LaunchURI(ctx context.Context, uri string) error
}

// Analytics forwards tracking events to the analytics transport.
type Analytics interface {
	TrackEvent(ctx context.Context, action, label string)
}

// OverlayKind names the overlays the coordinator can present.
type OverlayKind string

const (
	OverlaySettings        OverlayKind = "settings"
	OverlayPremium         OverlayKind = "premium"
	OverlayPasswordHistory OverlayKind = "passwordHistory"
)

// MountPoint is an opaque host-UI anchor an overlay is instantiated at.
type MountPoint any

// OverlayHandle is one live overlay instance. Closed is signalled exactly once,
// whether the overlay was dismissed by the user or closed programmatically.
type OverlayHandle interface {
	Close()
	Closed() <-chan struct{}
}

// OverlayFactory instantiates overlays. Supplied by the host UI layer.
type OverlayFactory interface {
	New(kind OverlayKind, mount MountPoint) (OverlayHandle, error)
}

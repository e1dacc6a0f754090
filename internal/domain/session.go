package domain

import "context"

// UserService resolves the active user. Backed by the account layer outside
// this module.
type UserService interface {
	UserID(ctx context.Context) (string, error)
	IsAuthenticated(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}

// CryptoService exposes the key-material operations the coordinator needs.
// Cryptographic correctness is the provider's problem, not ours.
type CryptoService interface {
	HasKey(ctx context.Context) (bool, error)
	Fingerprint(ctx context.Context, userID string) ([]string, error)
	ClearKeys(ctx context.Context) error
}

// AuthService performs the provider-side logout step. Logout does its own
// internal bookkeeping and invokes onDone exactly once when finished.
type AuthService interface {
	Logout(ctx context.Context, onDone func(ctx context.Context))
}

// VaultLocker performs the narrower lock operation. Locking is a distinct
// collaborator concern; the dispatcher only forwards to it.
type VaultLocker interface {
	Lock(ctx context.Context) error
}

// LiveUpdateService toggles the persistent server-push channel. Only the
// connect/disconnect signaling is in scope here; the transport lives elsewhere.
type LiveUpdateService interface {
	// UpdateConnection re-evaluates whether the channel should be up after an
	// authentication-state change.
	UpdateConnection(ctx context.Context) error
	DisconnectFromInactivity(ctx context.Context) error
	ReconnectFromActivity(ctx context.Context) error
}

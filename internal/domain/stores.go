package domain

import (
	"context"
	"time"
)

// KVStore is the persisted key-value contract. The engine behind it
// (file, sqlite, OS keychain) is owned by the host and out of scope.
type KVStore interface {
	Set(ctx context.Context, key string, value any) error
	Get(ctx context.Context, key string) (any, bool, error)
}

// KeyLastActive is the well-known key under which the activity monitor
// persists the last-activity instant for cross-restart idle continuity.
const KeyLastActive = "lastActive"

// Per-session stores cleared during teardown. Each store owns its data
// except while a logout is in flight, when the sequencer mutates it.

type SyncState interface {
	SetLastSync(ctx context.Context, t time.Time) error
}

type TokenStore interface {
	ClearToken(ctx context.Context) error
}

type SettingsStore interface {
	Clear(ctx context.Context, userID string) error
}

type CipherStore interface {
	Clear(ctx context.Context, userID string) error
}

type FolderStore interface {
	Clear(ctx context.Context, userID string) error
}

type CollectionStore interface {
	Clear(ctx context.Context, userID string) error
}

type PasswordHistoryStore interface {
	Clear(ctx context.Context) error
}

// SearchIndex is the process-wide search structure, not scoped to a user.
type SearchIndex interface {
	ClearIndex(ctx context.Context)
}

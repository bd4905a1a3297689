package core

import (
	"context"

	"github.com/example/bwotp/internal/models"
)

// VaultClient is the subset of vault CLI operations the core depends on.
// vaultcli.Client satisfies it; tests substitute fakes.
type VaultClient interface {
	ConfigureServer(ctx context.Context, serverURL string) error
	LoginAPIKey(ctx context.Context) error
	Refresh(ctx context.Context) error
	Status(ctx context.Context) (*models.VaultStatus, error)
	Unlock(ctx context.Context, masterPassword string) (string, error)
	ListItems(ctx context.Context, session string) ([]models.Item, error)
	GetTOTP(ctx context.Context, itemID, session string) (string, error)
}

// SessionProvider hands out vault session tokens.
type SessionProvider interface {
	GetSession(ctx context.Context) (string, error)
	// Invalidate drops the cached token so the next GetSession unlocks again.
	Invalidate()
}

// TOTPProvider returns the current TOTP code for a named item.
type TOTPProvider interface {
	GetTOTP(ctx context.Context, name string) (string, error)
}

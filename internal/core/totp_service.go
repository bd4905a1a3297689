package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// TOTPService resolves an item by name and fetches its current TOTP code.
type TOTPService struct {
	sessions SessionProvider
	resolver *ItemResolver
	client   VaultClient
	logger   *zap.Logger
}

// NewTOTPService creates a TOTPService.
func NewTOTPService(sessions SessionProvider, resolver *ItemResolver, client VaultClient, logger *zap.Logger) *TOTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TOTPService{
		sessions: sessions,
		resolver: resolver,
		client:   client,
		logger:   logger,
	}
}

// GetTOTP returns the TOTP code for the item called name.
//
// A missing item triggers one index refresh and a second lookup. A failed
// TOTP fetch is treated as a stale session: the session is invalidated,
// re-acquired, and the fetch is retried exactly once. The error from that
// retry is returned as is.
func (s *TOTPService) GetTOTP(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errEmptyItemName
	}

	session, err := s.sessions.GetSession(ctx)
	if err != nil {
		return "", err
	}

	itemID, err := s.resolve(ctx, session, name)
	if err != nil {
		return "", err
	}

	code, err := s.client.GetTOTP(ctx, itemID, session)
	if err == nil {
		return code, nil
	}

	// The most common cause of a failed fetch is a session the CLI no longer
	// accepts (vault re-locked, server restarted). Drop it, unlock again and
	// try exactly once more; a second failure is a real error and goes back
	// to the caller untouched.
	s.logger.Warn("TOTP fetch failed, retrying with a fresh session",
		zap.String("item", name), zap.Error(err))
	s.sessions.Invalidate()

	session, err = s.sessions.GetSession(ctx)
	if err != nil {
		return "", err
	}
	return s.client.GetTOTP(ctx, itemID, session)
}

func (s *TOTPService) resolve(ctx context.Context, session, name string) (string, error) {
	itemID, found, err := s.resolver.FindItemID(ctx, session, name)
	if err != nil {
		return "", err
	}
	if found {
		return itemID, nil
	}

	// The item may have been added after the CLI last synced. Refresh is
	// advisory: if it fails, the second lookup simply sees the same list.
	if err := s.client.Refresh(ctx); err != nil {
		s.logger.Debug("Vault refresh failed, ignoring", zap.Error(err))
	}

	itemID, found, err = s.resolver.FindItemID(ctx, session, name)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrItemNotFound, name)
	}
	return itemID, nil
}

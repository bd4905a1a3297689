package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/bwotp/internal/models"
)

// countingSessions wraps a SessionManager and records calls.
type countingSessions struct {
	inner       *SessionManager
	gets        int
	invalidates int
}

func (c *countingSessions) GetSession(ctx context.Context) (string, error) {
	c.gets++
	return c.inner.GetSession(ctx)
}

func (c *countingSessions) Invalidate() {
	c.invalidates++
	c.inner.Invalidate()
}

func newTestTOTPService(t *testing.T, vault *fakeVault) (*TOTPService, *countingSessions) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	sessions := &countingSessions{
		inner: NewSessionManager(vault, "hunter2", logger, WithClock(clockwork.NewFakeClock())),
	}
	return NewTOTPService(sessions, NewItemResolver(vault), vault, logger), sessions
}

func sequentialSessions() func(string) (string, error) {
	var n int
	return func(string) (string, error) {
		n++
		return fmt.Sprintf("session-%d", n), nil
	}
}

func TestTOTPService_ReturnsCodeForExactMatch(t *testing.T) {
	var gotItem string
	vault := &fakeVault{
		listFn: listOf(models.Item{ID: "abc123", Name: "MoviePilot"}),
		totpFn: func(itemID, _ string) (string, error) {
			gotItem = itemID
			return "482913", nil
		},
	}
	svc, _ := newTestTOTPService(t, vault)

	code, err := svc.GetTOTP(context.Background(), "  MoviePilot ")

	require.NoError(t, err)
	assert.Equal(t, "482913", code)
	assert.Equal(t, "abc123", gotItem)
	assert.Equal(t, 0, vault.refreshCalls)
	assert.Equal(t, []string{"session-1"}, vault.totpSessions)
}

func TestTOTPService_EmptyNameSkipsSession(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		vault := &fakeVault{}
		svc, sessions := newTestTOTPService(t, vault)

		_, err := svc.GetTOTP(context.Background(), name)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "Item name is empty", err.Error())
		assert.Equal(t, 0, sessions.gets)
		assert.Equal(t, 0, vault.unlocks())
	}
}

func TestTOTPService_RefreshesOnceWhenNotFound(t *testing.T) {
	refreshed := false
	vault := &fakeVault{
		refreshFn: func() error { refreshed = true; return nil },
		listFn: func(string) ([]models.Item, error) {
			if !refreshed {
				return nil, nil
			}
			return []models.Item{{ID: "new1", Name: "Fresh"}}, nil
		},
	}
	svc, _ := newTestTOTPService(t, vault)

	code, err := svc.GetTOTP(context.Background(), "Fresh")

	require.NoError(t, err)
	assert.Equal(t, "000000", code)
	assert.Equal(t, 1, vault.refreshCalls)
	assert.Equal(t, []string{"session-1", "session-1"}, vault.listSessions)
}

func TestTOTPService_RefreshErrorIsIgnored(t *testing.T) {
	calls := 0
	vault := &fakeVault{
		refreshFn: func() error { return errors.New("network down") },
		listFn: func(string) ([]models.Item, error) {
			calls++
			if calls == 1 {
				return nil, nil
			}
			return []models.Item{{ID: "x", Name: "Late"}}, nil
		},
	}
	svc, _ := newTestTOTPService(t, vault)

	_, err := svc.GetTOTP(context.Background(), "Late")

	require.NoError(t, err)
	assert.Equal(t, 1, vault.refreshCalls)
}

func TestTOTPService_NotFoundAfterRefresh(t *testing.T) {
	vault := &fakeVault{listFn: listOf(models.Item{ID: "abc123", Name: "MoviePilot"})}
	svc, _ := newTestTOTPService(t, vault)

	_, err := svc.GetTOTP(context.Background(), "Unknown")

	require.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, "Item not found: Unknown", err.Error())
	assert.Equal(t, 1, vault.refreshCalls)
	assert.Len(t, vault.listSessions, 2)
	assert.Empty(t, vault.totpSessions)
}

func TestTOTPService_RetriesOnceWithFreshSession(t *testing.T) {
	vault := &fakeVault{
		unlockFn: sequentialSessions(),
		listFn:   listOf(models.Item{ID: "abc123", Name: "MoviePilot"}),
		totpFn: func(_, session string) (string, error) {
			if session == "session-1" {
				return "", errors.New("Session key is invalid.")
			}
			return "135790", nil
		},
	}
	svc, sessions := newTestTOTPService(t, vault)

	code, err := svc.GetTOTP(context.Background(), "MoviePilot")

	require.NoError(t, err)
	assert.Equal(t, "135790", code)
	assert.Equal(t, 1, sessions.invalidates)
	assert.Equal(t, 2, vault.unlocks())
	assert.Equal(t, []string{"session-1", "session-2"}, vault.totpSessions)
}

func TestTOTPService_RetryFailureIsReturnedUnmodified(t *testing.T) {
	retryErr := errors.New("Not found.")
	vault := &fakeVault{
		unlockFn: sequentialSessions(),
		listFn:   listOf(models.Item{ID: "abc123", Name: "MoviePilot"}),
		totpFn: func(_, session string) (string, error) {
			if session == "session-1" {
				return "", errors.New("Session key is invalid.")
			}
			return "", retryErr
		},
	}
	svc, sessions := newTestTOTPService(t, vault)

	_, err := svc.GetTOTP(context.Background(), "MoviePilot")

	assert.Same(t, retryErr, err)
	assert.Equal(t, 1, sessions.invalidates)
	assert.Len(t, vault.totpSessions, 2, "TOTP fetch must be attempted exactly twice")
}

func TestTOTPService_ReacquireFailureIsReturned(t *testing.T) {
	unlocks := 0
	unlockErr := errors.New("Invalid master password.")
	vault := &fakeVault{
		unlockFn: func(string) (string, error) {
			unlocks++
			if unlocks > 1 {
				return "", unlockErr
			}
			return "session-1", nil
		},
		listFn: listOf(models.Item{ID: "abc123", Name: "MoviePilot"}),
		totpFn: func(string, string) (string, error) { return "", errors.New("Session key is invalid.") },
	}
	svc, _ := newTestTOTPService(t, vault)

	_, err := svc.GetTOTP(context.Background(), "MoviePilot")

	assert.Same(t, unlockErr, err)
	assert.Len(t, vault.totpSessions, 1)
}

func TestTOTPService_SessionErrorPropagates(t *testing.T) {
	vault := &fakeVault{}
	logger := zaptest.NewLogger(t)
	sessions := NewSessionManager(vault, "", logger)
	svc := NewTOTPService(sessions, NewItemResolver(vault), vault, logger)

	_, err := svc.GetTOTP(context.Background(), "MoviePilot")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, vault.listSessions)
}

func TestTOTPService_ListErrorIsNotRetried(t *testing.T) {
	listErr := errors.New("Vault is locked.")
	vault := &fakeVault{listFn: func(string) ([]models.Item, error) { return nil, listErr }}
	svc, sessions := newTestTOTPService(t, vault)

	_, err := svc.GetTOTP(context.Background(), "MoviePilot")

	require.ErrorIs(t, err, listErr)
	assert.Equal(t, "Vault is locked.", err.Error())
	assert.Equal(t, 0, sessions.invalidates)
	assert.Equal(t, 0, vault.refreshCalls)
}

func TestTOTPService_ItemWithoutIDIsNotFound(t *testing.T) {
	vault := &fakeVault{listFn: listOf(models.Item{ID: "", Name: "MoviePilot"})}
	svc, sessions := newTestTOTPService(t, vault)

	_, err := svc.GetTOTP(context.Background(), "MoviePilot")

	require.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, "Item not found: MoviePilot", err.Error())
	assert.Equal(t, 1, vault.refreshCalls)
	assert.Empty(t, vault.totpSessions)
	assert.Equal(t, 0, sessions.invalidates)
	assert.Equal(t, 1, vault.unlocks())
}

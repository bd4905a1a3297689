package core

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an unlocked session is reused before unlocking again.
const DefaultSessionTTL = 600 * time.Second

// SessionManager owns the cached vault session token.
// The check-or-unlock sequence runs under a single mutex, so concurrent
// callers on a cold cache wait for one unlock instead of racing their own.
type SessionManager struct {
	client         VaultClient
	masterPassword string
	ttl            time.Duration
	clock          clockwork.Clock
	logger         *zap.Logger

	mu         sync.Mutex
	token      string
	acquiredAt time.Time
}

// SessionManagerOption customizes a SessionManager.
type SessionManagerOption func(*SessionManager)

// WithSessionTTL overrides DefaultSessionTTL. Non-positive values are ignored.
func WithSessionTTL(ttl time.Duration) SessionManagerOption {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock sets the clock used to age sessions.
func WithClock(clock clockwork.Clock) SessionManagerOption {
	return func(m *SessionManager) {
		m.clock = clock
	}
}

// NewSessionManager creates a SessionManager that unlocks with masterPassword.
func NewSessionManager(client VaultClient, masterPassword string, logger *zap.Logger, opts ...SessionManagerOption) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &SessionManager{
		client:         client,
		masterPassword: masterPassword,
		ttl:            DefaultSessionTTL,
		clock:          clockwork.NewRealClock(),
		logger:         logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetSession returns the cached token while it is younger than the TTL,
// otherwise unlocks the vault and caches the new token.
func (m *SessionManager) GetSession(ctx context.Context) (string, error) {
	// The lock stays held across the unlock subprocess below. Callers arriving
	// on a cold or expired cache block here and then read the token the first
	// caller stored, instead of each spawning their own `bw unlock`.
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.clock.Since(m.acquiredAt) < m.ttl {
		return m.token, nil
	}

	// Without a password there is nothing to unlock with; fail before spawning a process.
	if m.masterPassword == "" {
		return "", errMasterPasswordUnset
	}

	m.logger.Info("Unlocking vault", zap.Bool("expired", m.token != ""))
	token, err := m.client.Unlock(ctx, m.masterPassword)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", errEmptySession
	}

	m.token = token
	m.acquiredAt = m.clock.Now()
	return m.token, nil
}

// Invalidate clears the cached token and its timestamp.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.acquiredAt = time.Time{}
}

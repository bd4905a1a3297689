package core

import (
	"context"
	"sync"

	"github.com/example/bwotp/internal/models"
)

// fakeVault is a VaultClient whose behaviour is set per test through the
// optional func fields. Call counters are safe for concurrent use.
type fakeVault struct {
	mu sync.Mutex

	configureFn func(url string) error
	loginFn     func() error
	refreshFn   func() error
	statusFn    func() (*models.VaultStatus, error)
	unlockFn    func(password string) (string, error)
	listFn      func(session string) ([]models.Item, error)
	totpFn      func(itemID, session string) (string, error)

	configureCalls int
	loginCalls     int
	refreshCalls   int
	statusCalls    int
	unlockCalls    int
	listSessions   []string
	totpSessions   []string
}

func (f *fakeVault) ConfigureServer(_ context.Context, url string) error {
	f.mu.Lock()
	f.configureCalls++
	f.mu.Unlock()
	if f.configureFn != nil {
		return f.configureFn(url)
	}
	return nil
}

func (f *fakeVault) LoginAPIKey(context.Context) error {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	if f.loginFn != nil {
		return f.loginFn()
	}
	return nil
}

func (f *fakeVault) Refresh(context.Context) error {
	f.mu.Lock()
	f.refreshCalls++
	f.mu.Unlock()
	if f.refreshFn != nil {
		return f.refreshFn()
	}
	return nil
}

func (f *fakeVault) Status(context.Context) (*models.VaultStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	f.mu.Unlock()
	if f.statusFn != nil {
		return f.statusFn()
	}
	return &models.VaultStatus{Status: models.StatusUnlocked}, nil
}

func (f *fakeVault) Unlock(_ context.Context, password string) (string, error) {
	f.mu.Lock()
	f.unlockCalls++
	f.mu.Unlock()
	if f.unlockFn != nil {
		return f.unlockFn(password)
	}
	return "session-1", nil
}

func (f *fakeVault) ListItems(_ context.Context, session string) ([]models.Item, error) {
	f.mu.Lock()
	f.listSessions = append(f.listSessions, session)
	f.mu.Unlock()
	if f.listFn != nil {
		return f.listFn(session)
	}
	return nil, nil
}

func (f *fakeVault) GetTOTP(_ context.Context, itemID, session string) (string, error) {
	f.mu.Lock()
	f.totpSessions = append(f.totpSessions, session)
	f.mu.Unlock()
	if f.totpFn != nil {
		return f.totpFn(itemID, session)
	}
	return "000000", nil
}

func (f *fakeVault) unlocks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unlockCalls
}

package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/bwotp/internal/models"
)

// Startup steps.
const (
	StepLogin   = "login"
	StepRefresh = "refresh"
	StepStatus  = "status"
)

// StepResult records the outcome of a best-effort startup step.
// A non-nil Err is reported but never stops startup.
type StepResult struct {
	Step string
	Err  error
}

// Bootstrapper prepares the vault CLI before the HTTP server starts.
type Bootstrapper struct {
	client    VaultClient
	serverURL string
	logger    *zap.Logger
}

// NewBootstrapper creates a Bootstrapper. An empty serverURL keeps the CLI's current server.
func NewBootstrapper(client VaultClient, serverURL string, logger *zap.Logger) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{client: client, serverURL: serverURL, logger: logger}
}

// Run configures the server endpoint, then attempts login, refresh and a
// status probe. Only a failure to configure the server is returned; the
// remaining steps are best-effort since the CLI may already be logged in
// or the server may become reachable later.
func (b *Bootstrapper) Run(ctx context.Context) ([]StepResult, error) {
	if b.serverURL != "" {
		if err := b.client.ConfigureServer(ctx, b.serverURL); err != nil {
			return nil, fmt.Errorf("failed to configure vault server %q: %w", b.serverURL, err)
		}
		b.logger.Info("Vault server configured", zap.String("server", b.serverURL))
	}

	// Login fails harmlessly when the CLI is already logged in from a previous
	// run, and refresh fails while the server is unreachable. Neither should
	// keep the process from serving /health.
	results := []StepResult{
		{Step: StepLogin, Err: b.client.LoginAPIKey(ctx)},
		{Step: StepRefresh, Err: b.client.Refresh(ctx)},
	}

	status, err := b.client.Status(ctx)
	results = append(results, StepResult{Step: StepStatus, Err: err})
	if err == nil {
		b.logStatus(status)
	}

	for _, r := range results {
		if r.Err != nil {
			b.logger.Warn("Startup step failed, continuing", zap.String("step", r.Step), zap.Error(r.Err))
		}
	}
	return results, nil
}

func (b *Bootstrapper) logStatus(status *models.VaultStatus) {
	fields := []zap.Field{
		zap.String("status", status.Status),
		zap.String("server", status.ServerURL),
	}
	if status.LastSync != nil {
		fields = append(fields, zap.Time("last_sync", *status.LastSync))
	}
	if status.Status == models.StatusUnauthenticated {
		b.logger.Warn("Vault CLI is not logged in; OTP requests will fail until it is", fields...)
		return
	}
	b.logger.Info("Vault CLI status", fields...)
}

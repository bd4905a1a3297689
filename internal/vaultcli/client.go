package vaultcli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/bwotp/internal/models"
)

// PasswordEnvVar is the variable the unlock call reads the master password from.
// Passing it through the environment keeps it out of argv.
const PasswordEnvVar = "BW_MASTER_PASSWORD"

// Client maps vault operations onto Bitwarden CLI invocations.
type Client struct {
	runner CommandRunner
}

// NewClient creates a Client backed by runner.
func NewClient(runner CommandRunner) *Client {
	return &Client{runner: runner}
}

// ConfigureServer points the CLI at a self-hosted server.
func (c *Client) ConfigureServer(ctx context.Context, serverURL string) error {
	_, err := c.runner.Run(ctx, []string{"config", "server", serverURL}, nil)
	return err
}

// LoginAPIKey logs in with the client id/secret taken from BW_CLIENTID and BW_CLIENTSECRET.
func (c *Client) LoginAPIKey(ctx context.Context) error {
	_, err := c.runner.Run(ctx, []string{"login", "--apikey"}, nil)
	return err
}

// Refresh pulls the latest vault data into the CLI's local index.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.runner.Run(ctx, []string{"refresh"}, nil)
	return err
}

// Status reports the CLI's authentication and lock state.
func (c *Client) Status(ctx context.Context) (*models.VaultStatus, error) {
	out, err := c.runner.Run(ctx, []string{"status"}, nil)
	if err != nil {
		return nil, err
	}
	var status models.VaultStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		return nil, fmt.Errorf("failed to decode vault status: %w", err)
	}
	return &status, nil
}

// Unlock decrypts the vault and returns the raw session token.
func (c *Client) Unlock(ctx context.Context, masterPassword string) (string, error) {
	return c.runner.Run(ctx,
		[]string{"unlock", "--raw", "--passwordenv", PasswordEnvVar},
		map[string]string{PasswordEnvVar: masterPassword},
	)
}

// ListItems returns every item visible to session, in the CLI's order.
func (c *Client) ListItems(ctx context.Context, session string) ([]models.Item, error) {
	out, err := c.runner.Run(ctx, []string{"list", "items", "--session", session}, nil)
	if err != nil {
		return nil, err
	}
	var items []models.Item
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		return nil, fmt.Errorf("failed to decode item list: %w", err)
	}
	return items, nil
}

// GetTOTP returns the current code for itemID.
func (c *Client) GetTOTP(ctx context.Context, itemID, session string) (string, error) {
	return c.runner.Run(ctx, []string{"get", "totp", itemID, "--session", session}, nil)
}

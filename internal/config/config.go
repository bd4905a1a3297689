package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is read once at startup and not modified afterwards.
type Config struct {
	Port            string        `mapstructure:"PORT"`
	GinMode         string        `mapstructure:"GIN_MODE"`
	ServerURL       string        `mapstructure:"BW_SERVER"`
	DefaultItemName string        `mapstructure:"BW_ITEM_NAME"`
	MasterPassword  string        `mapstructure:"BW_MASTER_PASSWORD"`
	AuthToken       string        `mapstructure:"BWHELPER_TOKEN"`
	Binary          string        `mapstructure:"BW_BINARY"`
	CommandTimeout  time.Duration `mapstructure:"BW_COMMAND_TIMEOUT"`
	SessionTTL      time.Duration `mapstructure:"BW_SESSION_TTL"`
	ClientURL       string        `mapstructure:"CLIENT_URL"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"BW_SERVER",
	"BW_ITEM_NAME",
	"BW_MASTER_PASSWORD",
	"BWHELPER_TOKEN",
	"BW_BINARY",
	"BW_COMMAND_TIMEOUT",
	"BW_SESSION_TTL",
	"CLIENT_URL",
	"SHUTDOWN_TIMEOUT",
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("BW_BINARY", "bw")
	v.SetDefault("BW_COMMAND_TIMEOUT", "30s")
	v.SetDefault("BW_SESSION_TTL", "10m")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.New("failed to bind " + key + ": " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	cfg.ServerURL = strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	cfg.DefaultItemName = strings.TrimSpace(cfg.DefaultItemName)

	if cfg.Port == "" {
		return nil, errors.New("PORT must not be empty")
	}
	if cfg.Binary == "" {
		return nil, errors.New("BW_BINARY must not be empty")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("BW_SESSION_TTL must be positive")
	}
	if cfg.CommandTimeout < 0 {
		return nil, errors.New("BW_COMMAND_TIMEOUT must not be negative")
	}

	return &cfg, nil
}

// IsRelease reports whether the service runs in gin release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// AuthEnabled reports whether inbound requests must carry the X-Auth token.
func (c *Config) AuthEnabled() bool {
	return c.AuthToken != ""
}

package config

import "time"

type ServiceConfig struct {
	Name        string         `yaml:"name"`
	Environment string         `yaml:"environment"`
	Version     string         `yaml:"version"`
	ClientURL   string         `yaml:"client_url"`
	JWTSecret   string         `yaml:"jwt_secret"`
	JWTTTL      time.Duration  `yaml:"jwt_ttl"`
	PayVault    PayVaultConfig `yaml:"payvault"`
}

// PayVaultConfig holds credentials for the PayVault wallet provider.
type PayVaultConfig struct {
	BaseURL       string        `yaml:"base_url"`
	ClientID      string        `yaml:"client_id"`
	ClientSecret  string        `yaml:"client_secret"`
	WebhookSecret string        `yaml:"webhook_secret"`
	// TokenTTL is deliberately shorter than the provider's real token
	// lifetime so a cached token is never used at the edge of expiry.
	TokenTTL       time.Duration `yaml:"token_ttl"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Package config loads service configuration from environment variables,
// optionally seeded from a .env file. Pinning credentials are deliberately
// only accepted through the environment: they must never be compiled in.
package config

import (
	"fmt"
	"os"
	"strings"

	"land-registry-workflow/internal/pinning"
)

// Config holds all service configuration.
type Config struct {
	// Ledger endpoints
	LedgerRPCEndpoint string
	LedgerWSEndpoint  string

	// Collaborator endpoints
	ExtractionEndpoint string
	PinningEndpoint    string
	PinningGateway     string

	// Pinning credentials
	PinningCredentials pinning.Credentials

	// Storage
	PostgresDSN string
	UseMemory   bool

	// Logging
	Verbose bool
}

// Load reads configuration from environment variables. LoadEnvFile should be
// called first if .env seeding is wanted.
func Load() (*Config, error) {
	cfg := &Config{
		LedgerRPCEndpoint:  os.Getenv("LEDGER_RPC_ENDPOINT"),
		LedgerWSEndpoint:   os.Getenv("LEDGER_WS_ENDPOINT"),
		ExtractionEndpoint: os.Getenv("EXTRACTION_ENDPOINT"),
		PinningEndpoint:    os.Getenv("PINNING_ENDPOINT"),
		PinningGateway:     os.Getenv("PINNING_GATEWAY"),
		PinningCredentials: pinning.Credentials{
			APIKey:    os.Getenv("PINNING_API_KEY"),
			APISecret: os.Getenv("PINNING_API_SECRET"),
		},
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		UseMemory:   boolEnv("USE_MEMORY"),
		Verbose:     boolEnv("VERBOSE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string

	if c.LedgerRPCEndpoint == "" {
		missing = append(missing, "LEDGER_RPC_ENDPOINT")
	}
	if c.ExtractionEndpoint == "" {
		missing = append(missing, "EXTRACTION_ENDPOINT")
	}
	if c.PinningEndpoint == "" {
		missing = append(missing, "PINNING_ENDPOINT")
	}
	if c.PinningCredentials.APIKey == "" {
		missing = append(missing, "PINNING_API_KEY")
	}
	if c.PinningCredentials.APISecret == "" {
		missing = append(missing, "PINNING_API_SECRET")
	}
	if !c.UseMemory && c.PostgresDSN == "" {
		missing = append(missing, "POSTGRES_DSN")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func boolEnv(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// LoadEnvFile loads KEY=VALUE pairs from .env in the working directory.
// Existing environment variables are never overridden.
func LoadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

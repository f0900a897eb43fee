package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// DefaultRPCURL is used when neither the settings store nor the environment name an endpoint.
const DefaultRPCURL = "https://api.mainnet-beta.solana.com"

// Config contains all configuration parameters for the application.
// Note: the store password is prompted at runtime - use PromptForPassword()
type Config struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	StorePath      string        `envconfig:"RENT_STORE_PATH" default:"rent-collector.db"`
	SolanaRPCURL   string        `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	BatchSize      int           `envconfig:"SCAN_BATCH_SIZE" default:"10"`
	RecordDelay    time.Duration `envconfig:"SCAN_RECORD_DELAY" default:"250ms"`
	BatchPause     time.Duration `envconfig:"SCAN_BATCH_PAUSE" default:"1500ms"`
	CloseDelay     time.Duration `envconfig:"CLOSE_DELAY" default:"2s"`
	RetryAttempts  int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"4"`
	RetryBaseDelay time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return errors.New("SCAN_BATCH_SIZE must be positive")
	}
	if c.RetryAttempts <= 0 {
		return errors.New("RETRY_MAX_ATTEMPTS must be positive")
	}
	if c.RecordDelay < 0 || c.BatchPause < 0 || c.CloseDelay < 0 || c.RetryBaseDelay < 0 {
		return errors.New("delays cannot be negative")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetStorePath returns path to the settings database
func GetStorePath() string {
	return Get().StorePath
}

// GetSolanaRPCURL returns the fallback Solana RPC URL from configuration
func GetSolanaRPCURL() string {
	return Get().SolanaRPCURL
}

// PromptForPassword prompts the user for the store password in the terminal.
// The password is read without echoing (hidden input).
// Caller must zero the returned slice after use.
func PromptForPassword(prompt string) ([]byte, error) {
	return promptHidden(prompt, "password")
}

// PromptForSecret reads a private key from the terminal without echoing it.
func PromptForSecret(prompt string) ([]byte, error) {
	return promptHidden(prompt, "secret")
}

func promptHidden(prompt, what string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("stdin is not a terminal: run interactively to enter the %s", what)
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", what, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", what)
	}
	return raw, nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/AlexZinkM/rent-collector/internal/client"
	"github.com/AlexZinkM/rent-collector/internal/config"
	"github.com/AlexZinkM/rent-collector/internal/keyfile"
	"github.com/AlexZinkM/rent-collector/internal/retry"
	"github.com/AlexZinkM/rent-collector/internal/store"
	"github.com/AlexZinkM/rent-collector/reclaim"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ reclaim.Network = (*client.SolanaClient)(nil)

type commandContext struct {
	verbose *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger

	kv *store.SQLiteStore

	// replaced in tests
	promptPassword func(prompt string) ([]byte, error)
	promptSecret   func(prompt string) ([]byte, error)
	newNetwork     func(rpcURL string) reclaim.Network
}

func newCommandContext(verbose *bool) *commandContext {
	return &commandContext{
		verbose:        verbose,
		promptPassword: config.PromptForPassword,
		promptSecret:   config.PromptForSecret,
		newNetwork: func(rpcURL string) reclaim.Network {
			return client.NewSolanaClient(rpcURL)
		},
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := config.Init(); err != nil {
			c.configErr = err
			return
		}
		c.config = config.Get()
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *zap.Logger {
	c.loggerOnce.Do(func() {
		level := "info"
		if c.config != nil {
			level = c.config.LogLevel
		}
		logger, err := newLogger(level, c.verbose != nil && *c.verbose)
		if err != nil {
			fmt.Fprintln(os.Stderr, "logger:", err)
			logger = zap.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// newLogger builds a production logger on stderr, human readable when stderr is a terminal.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return cfg.Build()
}

func (c *commandContext) settings() (*store.Settings, error) {
	if c.kv == nil {
		kv, err := store.Open(config.GetStorePath())
		if err != nil {
			return nil, err
		}
		c.kv = kv
	}
	return store.NewSettings(c.kv, config.GetSolanaRPCURL()), nil
}

func (c *commandContext) close() {
	if c.kv != nil {
		_ = c.kv.Close()
		c.kv = nil
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

func (c *commandContext) options() reclaim.Options {
	return reclaim.Options{
		BatchSize:   c.config.BatchSize,
		RecordDelay: c.config.RecordDelay,
		BatchPause:  c.config.BatchPause,
		CloseDelay:  c.config.CloseDelay,
		Retry: retry.Policy{
			MaxAttempts: c.config.RetryAttempts,
			BaseDelay:   c.config.RetryBaseDelay,
		},
	}
}

// loadKeys reads every key file into one ring.
func (c *commandContext) loadKeys(paths []string) (*keyfile.Ring, []keyfile.LoadReport, error) {
	if len(paths) == 0 {
		return nil, nil, errors.New("no key files given, use --keys")
	}
	ring := keyfile.NewRing(c.log())
	reports := make([]keyfile.LoadReport, 0, len(paths))
	for _, path := range paths {
		report, err := ring.LoadFile(path)
		if err != nil {
			ring.Clear()
			return nil, nil, err
		}
		reports = append(reports, report)
	}
	return ring, reports, nil
}

// promptNewPassword asks twice and fails when the answers differ.
func (c *commandContext) promptNewPassword(prompt string) ([]byte, error) {
	first, err := c.promptPassword(prompt)
	if err != nil {
		return nil, err
	}
	second, err := c.promptPassword("Repeat password: ")
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)
	if string(first) != string(second) {
		clear(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}

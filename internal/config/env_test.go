package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestInitDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "RENT_STORE_PATH", "SOLANA_RPC_URL", "SCAN_BATCH_SIZE", "SCAN_RECORD_DELAY",
		"SCAN_BATCH_PAUSE", "CLOSE_DELAY", "RETRY_MAX_ATTEMPTS", "RETRY_BASE_DELAY", "LOG_LEVEL")

	require.NoError(t, Init())
	c := Get()
	assert.Equal(t, "8080", GetPort())
	assert.Equal(t, "rent-collector.db", GetStorePath())
	assert.Equal(t, DefaultRPCURL, GetSolanaRPCURL())
	assert.Equal(t, 10, c.BatchSize)
	assert.Equal(t, 250*time.Millisecond, c.RecordDelay)
	assert.Equal(t, 1500*time.Millisecond, c.BatchPause)
	assert.Equal(t, 2*time.Second, c.CloseDelay)
	assert.Equal(t, 4, c.RetryAttempts)
	assert.Equal(t, time.Second, c.RetryBaseDelay)
}

func TestInitFromEnv(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://rpc.example.org")
	t.Setenv("SCAN_BATCH_SIZE", "25")
	t.Setenv("CLOSE_DELAY", "500ms")
	t.Setenv("RENT_STORE_PATH", "/tmp/x.db")

	require.NoError(t, Init())
	assert.Equal(t, "https://rpc.example.org", GetSolanaRPCURL())
	assert.Equal(t, 25, Get().BatchSize)
	assert.Equal(t, 500*time.Millisecond, Get().CloseDelay)
	assert.Equal(t, "/tmp/x.db", GetStorePath())
}

func TestInitRejectsInvalidValues(t *testing.T) {
	t.Setenv("SCAN_BATCH_SIZE", "0")
	assert.Error(t, Init())

	t.Setenv("SCAN_BATCH_SIZE", "10")
	t.Setenv("RETRY_BASE_DELAY", "not-a-duration")
	assert.Error(t, Init())
}

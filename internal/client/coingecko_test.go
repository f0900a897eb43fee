package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSOLRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "solana", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"solana":{"usd":151.237}}`))
	}))
	defer srv.Close()

	c := NewCoinGeckoClient()
	c.baseURL = srv.URL

	rate, err := c.GetSOLRate(context.Background(), " USD ")
	require.NoError(t, err)
	assert.Equal(t, "151.24", rate)
}

func TestGetSOLRateErrors(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{"solana":{"eur":140}}`))
	}))
	defer srv.Close()

	c := NewCoinGeckoClient()
	c.baseURL = srv.URL

	_, err := c.GetSOLRate(context.Background(), "usd")
	assert.ErrorContains(t, err, "no SOL rate")

	status = http.StatusTooManyRequests
	_, err = c.GetSOLRate(context.Background(), "eur")
	assert.ErrorContains(t, err, "429")
}

func TestGetSOLRateEscapesCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "solana", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd&ids=bitcoin", r.URL.Query().Get("vs_currencies"))
		assert.Len(t, r.URL.Query()["ids"], 1)
		w.Write([]byte(`{"solana":{"usd&ids=bitcoin":1}}`))
	}))
	defer srv.Close()

	c := NewCoinGeckoClient()
	c.baseURL = srv.URL

	rate, err := c.GetSOLRate(context.Background(), "usd&ids=bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "1.00", rate)
}

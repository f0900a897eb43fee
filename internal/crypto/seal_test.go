package crypto

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/AlexZinkM/rent-collector/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// keep key derivation cheap in tests
	if err := SetCost(1 << 10); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestSealOpenRoundTrip(t *testing.T) {
	secret := []byte("fee payer secret bytes")
	envelope, err := SealSecret("addr1", secret, []byte("hunter2"))
	require.NoError(t, err)
	assert.NotContains(t, envelope, string(secret))

	var sealed model.SealedSecret
	require.NoError(t, json.Unmarshal([]byte(envelope), &sealed))
	assert.Equal(t, 1<<10, sealed.N)
	assert.Equal(t, "addr1", sealed.Address)

	address, err := EnvelopeAddress(envelope)
	require.NoError(t, err)
	assert.Equal(t, "addr1", address)

	got, err := OpenSecret(envelope, []byte("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestOpenWrongPassword(t *testing.T) {
	envelope, err := SealSecret("", []byte("x"), []byte("right"))
	require.NoError(t, err)

	_, err = OpenSecret(envelope, []byte("wrong"))
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestSealRejectsEmptyPassword(t *testing.T) {
	_, err := SealSecret("", []byte("x"), nil)
	assert.Error(t, err)
}

func TestOpenRejectsMalformedEnvelope(t *testing.T) {
	_, err := OpenSecret("not json", []byte("pw"))
	assert.Error(t, err)

	_, err = OpenSecret(`{"n":3,"salt":"","nonce":"","cipherText":""}`, []byte("pw"))
	assert.Error(t, err)
}

func TestReseal(t *testing.T) {
	envelope, err := SealSecret("addr2", []byte("secret"), []byte("old"))
	require.NoError(t, err)

	resealed, err := Reseal(envelope, []byte("old"), []byte("new"))
	require.NoError(t, err)
	address, err := EnvelopeAddress(resealed)
	require.NoError(t, err)
	assert.Equal(t, "addr2", address)

	_, err = OpenSecret(resealed, []byte("old"))
	assert.ErrorIs(t, err, ErrInvalidPassword)

	got, err := OpenSecret(resealed, []byte("new"))
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), got)

	_, err = Reseal(envelope, []byte("bad"), []byte("new"))
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestSetCost(t *testing.T) {
	assert.Error(t, SetCost(1000))
	assert.Error(t, SetCost(1<<4))
	require.NoError(t, SetCost(1<<11))
	t.Cleanup(func() { _ = SetCost(1 << 10) })

	envelope, err := SealSecret("", []byte("x"), []byte("pw"))
	require.NoError(t, err)
	var sealed model.SealedSecret
	require.NoError(t, json.Unmarshal([]byte(envelope), &sealed))
	assert.Equal(t, 1<<11, sealed.N)
}

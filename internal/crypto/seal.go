package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AlexZinkM/rent-collector/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt parameters for the stored fee payer secret
	//
	// N=2^18 (~256MB RAM, 0.5-2s) keeps brute force expensive while still
	// running on small machines. N is written into the envelope so it can be
	// raised later without breaking existing stores.
	defaultScryptN = 1 << 18
	scryptR        = 8
	scryptP        = 1
	scryptKeyLen   = 32
	saltLen        = 32
	nonceLen       = 12
)

// scryptN is the cost used for new envelopes
var scryptN = defaultScryptN

// ErrInvalidPassword is returned when an envelope cannot be opened with the given password.
var ErrInvalidPassword = errors.New("invalid password")

// SetCost changes the scrypt cost for new envelopes. n must be a power of two of at least 2^10.
// Existing envelopes keep opening with the cost they were sealed with.
func SetCost(n int) error {
	if n < 1<<10 || n&(n-1) != 0 {
		return fmt.Errorf("invalid scrypt cost %d", n)
	}
	scryptN = n
	return nil
}

// SealSecret encrypts secret under password and returns the JSON envelope.
// address is stored unencrypted next to the ciphertext.
// password must be []byte for security (caller should zero it after use)
func SealSecret(address string, secret, password []byte) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password cannot be empty")
	}

	// Generate salt and nonce
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt, scryptN)
	if err != nil {
		return "", err
	}

	ciphertext := aesGCM.Seal(nil, nonce, secret, nil)

	envelope, err := json.Marshal(model.SealedSecret{
		Address:    address,
		N:          scryptN,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return string(envelope), nil
}

// EnvelopeAddress returns the address stored in clear in an envelope.
func EnvelopeAddress(envelope string) (string, error) {
	sealed, err := unmarshalEnvelope(envelope)
	if err != nil {
		return "", err
	}
	return sealed.Address, nil
}

func unmarshalEnvelope(envelope string) (model.SealedSecret, error) {
	var sealed model.SealedSecret
	if err := json.Unmarshal([]byte(envelope), &sealed); err != nil {
		return sealed, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return sealed, nil
}

// OpenSecret decrypts an envelope produced by SealSecret.
// The returned slice should be zeroed by the caller after use.
func OpenSecret(envelope string, password []byte) ([]byte, error) {
	sealed, err := unmarshalEnvelope(envelope)
	if err != nil {
		return nil, err
	}
	if sealed.N <= 1 || sealed.N&(sealed.N-1) != 0 {
		return nil, fmt.Errorf("invalid scrypt cost %d", sealed.N)
	}

	// Decode salt, nonce and ciphertext
	salt, err := base64.StdEncoding.DecodeString(sealed.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(sealed.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	aesGCM, err := newGCM(password, salt, sealed.N)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesGCM.NonceSize() {
		return nil, fmt.Errorf("invalid nonce length %d", len(nonce))
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}

// Reseal re-encrypts an envelope under a new password.
func Reseal(envelope string, oldPassword, newPassword []byte) (string, error) {
	address, err := EnvelopeAddress(envelope)
	if err != nil {
		return "", err
	}
	secret, err := OpenSecret(envelope, oldPassword)
	if err != nil {
		return "", err
	}
	defer clear(secret)
	return SealSecret(address, secret, newPassword)
}

func newGCM(password, salt []byte, n int) (cipher.AEAD, error) {
	// Derive key from password
	key, err := scrypt.Key(password, salt, n, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}

package model

import (
	"github.com/gagliardetto/solana-go"
)

// KeyRecord is one externally supplied wallet key and what the scan found for it.
// Identity is PublicKey, derived from Secret.
type KeyRecord struct {
	Secret            solana.PrivateKey `json:"-"`
	PublicKey         solana.PublicKey  `json:"publicKey"`
	NativeBalance     uint64            `json:"nativeBalance"`     // lamports
	ReclaimableAmount uint64            `json:"reclaimableAmount"` // lamports held by closable token accounts
	Closable          bool              `json:"closable"`
}

// NewKeyRecord builds a record for a decoded secret.
func NewKeyRecord(secret solana.PrivateKey) *KeyRecord {
	return &KeyRecord{
		Secret:    secret,
		PublicKey: secret.PublicKey(),
	}
}

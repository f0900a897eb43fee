package model

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// DustThresholdLamports is the balance an account must exceed to be worth closing.
const DustThresholdLamports = 1000

const (
	// TokenAccountSize is the data length of a base token account (no extensions)
	TokenAccountSize = 165

	mintOffset   = 0
	amountOffset = 64
)

// Token2022ProgramID is the extended token program.
var Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// ProgramVariant tells which token program manages an account
type ProgramVariant string

const (
	ProgramLegacy   ProgramVariant = "spl-token"
	ProgramExtended ProgramVariant = "token-2022"
)

// ProgramVariants lists the supported variants in enumeration order.
var ProgramVariants = []ProgramVariant{ProgramLegacy, ProgramExtended}

// ProgramID returns the on-chain program address of the variant.
func (v ProgramVariant) ProgramID() solana.PublicKey {
	if v == ProgramExtended {
		return Token2022ProgramID
	}
	return solana.TokenProgramID
}

// VariantForOwner maps an account owner to a supported program variant.
func VariantForOwner(owner solana.PublicKey) (ProgramVariant, bool) {
	switch {
	case owner.Equals(solana.TokenProgramID):
		return ProgramLegacy, true
	case owner.Equals(Token2022ProgramID):
		return ProgramExtended, true
	}
	return "", false
}

// IsClosable reports whether an account balance is above the dust threshold.
func IsClosable(lamports uint64) bool {
	return lamports > DustThresholdLamports
}

// TokenAccount is an auxiliary account owned by a key record's public key.
type TokenAccount struct {
	Address    solana.PublicKey `json:"address"`
	Program    ProgramVariant   `json:"program"`
	Lamports   uint64           `json:"lamports"`
	Data       []byte           `json:"-"`
	RentExempt uint64           `json:"rentExempt"`
	Closable   bool             `json:"closable"`
}

// AccountInfo is the fresh on-chain state of a single account.
type AccountInfo struct {
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// TokenAmount reads the token balance from raw token account data.
// Returns 0 when the data is too short to hold one.
func TokenAmount(data []byte) uint64 {
	if len(data) < TokenAccountSize {
		return 0
	}
	return binary.LittleEndian.Uint64(data[amountOffset : amountOffset+8])
}

// Mint reads the mint address from raw token account data.
func Mint(data []byte) (solana.PublicKey, bool) {
	if len(data) < mintOffset+solana.PublicKeyLength {
		return solana.PublicKey{}, false
	}
	return solana.PublicKeyFromBytes(data[mintOffset : mintOffset+solana.PublicKeyLength]), true
}

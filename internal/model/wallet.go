package model

// SealedSecret is the at-rest form of the fee payer secret.
// Address is kept in clear so it can be shown without the password.
type SealedSecret struct {
	Address    string `json:"address"`
	N          int    `json:"n"` // scrypt cost
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

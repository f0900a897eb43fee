package model

// LoadKeysRequest represents request for POST /keys
type LoadKeysRequest struct {
	Source  string `json:"source"`
	Content string `json:"content" binding:"required"`
	Clear   bool   `json:"clear"`
}

// LoadKeysResponse represents response for POST /keys
type LoadKeysResponse struct {
	Source          string `json:"source"`
	Added           int    `json:"added"`
	Duplicates      int    `json:"duplicates"`
	ParseErrors     int    `json:"parseErrors"`
	OrphanAddresses int    `json:"orphanAddresses"`
	Total           int    `json:"total"`
}

// KeysResponse represents response for GET /keys
type KeysResponse struct {
	Count   int      `json:"count"`
	Wallets []string `json:"wallets"`
}

// ConfigResponse represents response for GET /config
type ConfigResponse struct {
	RPCURL          string `json:"rpcUrl"`
	FeePayerAddress string `json:"feePayerAddress,omitempty"`
}

// RPCURLRequest represents request for POST /config/rpc
type RPCURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// FeePayerRequest represents request for POST /config/fee-payer
type FeePayerRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// RunRequest represents request for POST /runs
type RunRequest struct {
	Destination string `json:"destination,omitempty"`
}

// ScanResponse represents response for POST /scan
type ScanResponse struct {
	TotalWallets     int          `json:"totalWallets"`
	ClosableWallets  int          `json:"closableWallets"`
	TotalReclaimable uint64       `json:"totalReclaimable"`
	Wallets          []*KeyRecord `json:"wallets"`
}

// FeePayerResponse represents response for POST /config/fee-payer
type FeePayerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Address string `json:"address"`
}

// RunStreamLine is one line of the newline-delimited JSON stream of POST /runs.
// Progress lines carry only Progress. The last line carries Summary, Error, or
// both when a run stopped after closing some accounts.
type RunStreamLine struct {
	Progress *ProgressEvent `json:"progress,omitempty"`
	Summary  *BatchSummary  `json:"summary,omitempty"`
	Error    string         `json:"error,omitempty"`
}

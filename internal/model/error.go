package model

// Error codes returned in ErrorResponse.Code
const (
	CodeFeePayerNotSet     = "fee_payer_not_set"
	CodeRunInProgress      = "run_in_progress"
	CodeInvalidDestination = "invalid_destination"
)

// ErrorResponse is the JSON body of every API error.
// Code is set when a client is expected to branch on the error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

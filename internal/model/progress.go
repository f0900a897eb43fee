package model

// Phase of a pipeline run
type Phase string

const (
	PhaseScan    Phase = "scan"
	PhaseReclaim Phase = "reclaim"
)

// ProgressEvent is emitted before and after each unit of work.
// Found is set on scan completion, Reclaimed on a successful closure.
type ProgressEvent struct {
	Phase     Phase  `json:"phase"`
	Current   int    `json:"current"`
	Total     int    `json:"total"`
	Wallet    string `json:"wallet"`
	Status    string `json:"status"`
	Found     uint64 `json:"found,omitempty"`
	Reclaimed uint64 `json:"reclaimed,omitempty"`
}

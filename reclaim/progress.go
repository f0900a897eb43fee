package reclaim

import (
	"fmt"

	"github.com/AlexZinkM/rent-collector/internal/common"
	"github.com/AlexZinkM/rent-collector/internal/model"
)

// ProgressFunc receives progress events. It is called synchronously from the run.
type ProgressFunc func(model.ProgressEvent)

func (f ProgressFunc) emit(ev model.ProgressEvent) {
	if f != nil {
		f(ev)
	}
}

const (
	statusChecking   = "Checking balance..."
	statusNoRent     = "No rent found"
	statusProcessing = "Processing token accounts..."
)

func statusFound(lamports uint64) string {
	return fmt.Sprintf("Found %s SOL rent", common.ShortSOL(lamports))
}

func statusCollected(lamports uint64) string {
	return fmt.Sprintf("Collected %s SOL", common.ShortSOL(lamports))
}

func statusFailed(account, reason string) string {
	return fmt.Sprintf("Failed to close %s: %s", account, reason)
}

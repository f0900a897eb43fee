package reclaim

import (
	"context"
	"sync"

	"github.com/AlexZinkM/rent-collector/internal/common"
	"github.com/AlexZinkM/rent-collector/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State of a pipeline
type State string

const (
	StateIdle       State = "idle"
	StateScanning   State = "scanning"
	StateReclaiming State = "reclaiming"
	StateCompleted  State = "completed"
)

// Run holds everything one pipeline run works on. The pipeline owns Records
// until Run returns.
type Run struct {
	ID          string
	Records     []*model.KeyRecord
	FeePayer    solana.PrivateKey
	Destination solana.PublicKey // zero value means the fee payer's address
}

// Pipeline scans every record and then reclaims every closable account.
type Pipeline struct {
	net    Network
	opts   Options
	logger *zap.Logger

	mu    sync.Mutex
	state State
}

// NewPipeline creates an idle pipeline.
func NewPipeline(net Network, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		net:    net,
		opts:   opts,
		logger: logger,
		state:  StateIdle,
	}
}

// State returns the current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Run executes both phases. Without a fee payer it returns ErrFeePayerNotSet
// before touching the network and the pipeline stays idle. Per-record and
// per-account failures end up in the summary instead of an error.
func (p *Pipeline) Run(ctx context.Context, run *Run, onProgress ProgressFunc) (*model.BatchSummary, error) {
	if run == nil || len(run.FeePayer) == 0 {
		return nil, ErrFeePayerNotSet
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	destination := run.Destination
	if destination.IsZero() {
		destination = run.FeePayer.PublicKey()
	}

	logger := p.logger.With(zap.String("run_id", run.ID))
	executor, err := NewExecutor(p.net, run.FeePayer, p.opts, logger)
	if err != nil {
		return nil, err
	}

	p.setState(StateScanning)
	if err := NewScanner(p.net, p.opts, logger).ScanAll(ctx, run.Records, onProgress); err != nil {
		return nil, err
	}

	p.setState(StateReclaiming)
	summary := &model.BatchSummary{
		RunID:        run.ID,
		Destination:  destination,
		TotalWallets: len(run.Records),
		Results:      []model.ReclaimOutcome{},
	}

	var closable []*model.KeyRecord
	for _, r := range run.Records {
		if r.Closable {
			closable = append(closable, r)
		}
	}
	logger.Info("collecting rent",
		zap.Int("wallets", len(closable)),
		zap.String("destination", destination.String()))

	for i, r := range closable {
		if err := executor.ReclaimRecord(ctx, r, i, len(closable), destination, summary, onProgress); err != nil {
			return summary, err
		}
	}

	p.setState(StateCompleted)
	LogSummary(logger, summary)
	return summary, nil
}

// LogSummary writes the run totals at info level.
func LogSummary(logger *zap.Logger, summary *model.BatchSummary) {
	logger.Info("rent collection complete",
		zap.String("run_id", summary.RunID),
		zap.Int("total_wallets", summary.TotalWallets),
		zap.Int("successful", summary.SuccessfulCollections),
		zap.Int("failed", summary.FailedCollections),
		zap.String("total_recovered_sol", common.LamportsToSOL(summary.TotalAmountRecovered)))
}

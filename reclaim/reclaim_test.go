package reclaim

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/rent-collector/internal/model"
	"github.com/AlexZinkM/rent-collector/internal/retry"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeNetwork struct {
	mu       sync.Mutex
	calls    int
	balances map[solana.PublicKey]uint64
	accounts map[solana.PublicKey][]model.TokenAccount // by owner
	info     map[solana.PublicKey]*model.AccountInfo
	sendErr  map[solana.PublicKey]error // by token account
	sent     []*solana.Transaction
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{
		balances: map[solana.PublicKey]uint64{},
		accounts: map[solana.PublicKey][]model.TokenAccount{},
		info:     map[solana.PublicKey]*model.AccountInfo{},
		sendErr:  map[solana.PublicKey]error{},
	}
}

func (f *fakeNetwork) addAccount(owner solana.PublicKey, variant model.ProgramVariant, lamports, tokens uint64) solana.PublicKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	addr := solana.NewWallet().PublicKey()
	data := tokenAccountData(solana.NewWallet().PublicKey(), tokens)
	f.accounts[owner] = append(f.accounts[owner], model.TokenAccount{
		Address:  addr,
		Program:  variant,
		Lamports: lamports,
		Data:     data,
	})
	f.info[addr] = &model.AccountInfo{Owner: variant.ProgramID(), Lamports: lamports, Data: data}
	return addr
}

func (f *fakeNetwork) setLamports(owner, account solana.PublicKey, lamports uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.accounts[owner] {
		if f.accounts[owner][i].Address.Equals(account) {
			f.accounts[owner][i].Lamports = lamports
		}
	}
	f.info[account].Lamports = lamports
}

func (f *fakeNetwork) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeNetwork) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.balances[owner], nil
}

func (f *fakeNetwork) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey, variant model.ProgramVariant) ([]model.TokenAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	var out []model.TokenAccount
	for _, acc := range f.accounts[owner] {
		if acc.Program == variant {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (f *fakeNetwork) GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 2039280, nil
}

func (f *fakeNetwork) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*model.AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	info, ok := f.info[account]
	if !ok {
		return nil, nil
	}
	cp := *info
	return &cp, nil
}

func (f *fakeNetwork) GetLatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return solana.Hash{1, 2, 3}, 1000, nil
}

func (f *fakeNetwork) SendAndConfirmTransaction(ctx context.Context, tx *solana.Transaction, lastValidBlockHeight uint64) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for account, err := range f.sendErr {
		for _, key := range tx.Message.AccountKeys {
			if key.Equals(account) {
				return solana.Signature{}, err
			}
		}
	}
	f.sent = append(f.sent, tx)
	return tx.Signatures[0], nil
}

func tokenAccountData(mint solana.PublicKey, amount uint64) []byte {
	data := make([]byte, model.TokenAccountSize)
	copy(data[0:32], mint[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	return data
}

func newRecord(t *testing.T) *model.KeyRecord {
	t.Helper()
	secret, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return model.NewKeyRecord(secret)
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) count(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.delays {
		if v == d {
			n++
		}
	}
	return n
}

func testOptions(s *sleepRecorder) Options {
	opts := DefaultOptions()
	opts.Sleep = s.sleep
	return opts
}

// instructionIDs returns the first data byte of each instruction, which is
// the instruction id for token program instructions.
func instructionIDs(t *testing.T, tx *solana.Transaction) []byte {
	t.Helper()
	var ids []byte
	for _, ix := range tx.Message.Instructions {
		require.NotEmpty(t, ix.Data)
		ids = append(ids, ix.Data[0])
	}
	return ids
}

func TestScanRecord(t *testing.T) {
	net := newFakeNetwork()
	rec := newRecord(t)
	net.balances[rec.PublicKey] = 42
	net.addAccount(rec.PublicKey, model.ProgramLegacy, 2039280, 0)
	net.addAccount(rec.PublicKey, model.ProgramExtended, 3000000, 0)
	net.addAccount(rec.PublicKey, model.ProgramLegacy, 1000, 0) // dust

	var events []model.ProgressEvent
	s := NewScanner(net, testOptions(&sleepRecorder{}), zaptest.NewLogger(t))
	s.ScanRecord(context.Background(), rec, 0, 1, func(ev model.ProgressEvent) {
		events = append(events, ev)
	})

	assert.Equal(t, uint64(42), rec.NativeBalance)
	assert.Equal(t, uint64(5039280), rec.ReclaimableAmount)
	assert.True(t, rec.Closable)

	require.Len(t, events, 2)
	assert.Equal(t, statusChecking, events[0].Status)
	assert.Equal(t, "Found 0.00503928 SOL rent", events[1].Status)
	assert.Equal(t, uint64(5039280), events[1].Found)
	assert.Equal(t, model.PhaseScan, events[1].Phase)
}

func TestScanRecordNothingFound(t *testing.T) {
	net := newFakeNetwork()
	rec := newRecord(t)
	net.addAccount(rec.PublicKey, model.ProgramLegacy, 1000, 0)

	var last model.ProgressEvent
	NewScanner(net, testOptions(&sleepRecorder{}), nil).ScanRecord(context.Background(), rec, 0, 1, func(ev model.ProgressEvent) {
		last = ev
	})

	assert.False(t, rec.Closable)
	assert.Zero(t, rec.ReclaimableAmount)
	assert.Equal(t, statusNoRent, last.Status)
	assert.Zero(t, last.Found)
}

type failingBalance struct {
	*fakeNetwork
	err error
}

func (f failingBalance) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	return 0, f.err
}

func TestScanRecordDegradesOnError(t *testing.T) {
	net := newFakeNetwork()
	rec := newRecord(t)
	net.addAccount(rec.PublicKey, model.ProgramLegacy, 5000000, 0)

	s := NewScanner(failingBalance{net, errors.New("connection refused")}, testOptions(&sleepRecorder{}), nil)
	s.ScanRecord(context.Background(), rec, 0, 1, nil)

	assert.False(t, rec.Closable)
	assert.Zero(t, rec.ReclaimableAmount)
}

func TestScanRetriesRateLimit(t *testing.T) {
	net := newFakeNetwork()
	rec := newRecord(t)
	net.balances[rec.PublicKey] = 7

	attempts := 0
	flaky := &flakyBalance{fakeNetwork: net, fail: 2, attempts: &attempts}
	sleeper := &sleepRecorder{}
	NewScanner(flaky, testOptions(sleeper), nil).ScanRecord(context.Background(), rec, 0, 1, nil)

	assert.Equal(t, 3, attempts)
	assert.Equal(t, uint64(7), rec.NativeBalance)
	assert.Equal(t, 1, sleeper.count(time.Second))
	assert.Equal(t, 1, sleeper.count(2*time.Second))
}

type flakyBalance struct {
	*fakeNetwork
	fail     int
	attempts *int
}

func (f *flakyBalance) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	*f.attempts++
	if *f.attempts <= f.fail {
		return 0, errors.New("HTTP 429 Too Many Requests")
	}
	return f.fakeNetwork.GetBalance(ctx, owner)
}

func TestScanAllPacing(t *testing.T) {
	net := newFakeNetwork()
	records := make([]*model.KeyRecord, 25)
	for i := range records {
		records[i] = newRecord(t)
	}

	sleeper := &sleepRecorder{}
	var order []string
	err := NewScanner(net, testOptions(sleeper), nil).ScanAll(context.Background(), records, func(ev model.ProgressEvent) {
		if ev.Status == statusChecking {
			order = append(order, ev.Wallet)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, 25, sleeper.count(250*time.Millisecond))
	// 3 batches, no pause after the last
	assert.Equal(t, 2, sleeper.count(1500*time.Millisecond))
	require.Len(t, order, 25)
	for i, r := range records {
		assert.Equal(t, r.PublicKey.String(), order[i])
	}
}

func TestRunCollectsRent(t *testing.T) {
	net := newFakeNetwork()
	rec := newRecord(t)
	feePayer := newRecord(t).Secret
	account := net.addAccount(rec.PublicKey, model.ProgramLegacy, 5000000, 0)

	sleeper := &sleepRecorder{}
	var reclaimed uint64
	p := NewPipeline(net, testOptions(sleeper), zaptest.NewLogger(t))
	summary, err := p.Run(context.Background(), &Run{
		Records:  []*model.KeyRecord{rec},
		FeePayer: feePayer,
	}, func(ev model.ProgressEvent) {
		reclaimed += ev.Reclaimed
	})
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, p.State())
	assert.True(t, rec.Closable)
	assert.Equal(t, uint64(5000000), rec.ReclaimableAmount)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, feePayer.PublicKey(), summary.Destination)
	assert.Equal(t, 1, summary.TotalWallets)
	assert.Equal(t, 1, summary.SuccessfulCollections)
	assert.Equal(t, 0, summary.FailedCollections)
	assert.Equal(t, uint64(5000000), summary.TotalAmountRecovered)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, account, summary.Results[0].Account)
	assert.Equal(t, uint64(5000000), summary.Results[0].AmountRecovered)
	assert.Equal(t, uint64(5000000), reclaimed)
	assert.Equal(t, 1, sleeper.count(2*time.Second))

	require.Len(t, net.sent, 1)
	tx := net.sent[0]
	assert.Equal(t, []byte{9}, instructionIDs(t, tx))
	assert.Equal(t, feePayer.PublicKey(), tx.Message.AccountKeys[0])
	assert.Len(t, tx.Signatures, 2)
}

func TestBurnBeforeClose(t *testing.T) {
	for _, variant := range model.ProgramVariants {
		t.Run(string(variant), func(t *testing.T) {
			net := newFakeNetwork()
			rec := newRecord(t)
			feePayer := newRecord(t).Secret
			account := net.addAccount(rec.PublicKey, variant, 2039280, 500)

			e, err := NewExecutor(net, feePayer, testOptions(&sleepRecorder{}), nil)
			require.NoError(t, err)
			outcome := e.CloseAccount(context.Background(), account, rec, feePayer.PublicKey())
			require.True(t, outcome.Success, outcome.Error)

			require.Len(t, net.sent, 1)
			tx := net.sent[0]
			assert.Equal(t, []byte{8, 9}, instructionIDs(t, tx))
			for _, ix := range tx.Message.Instructions {
				assert.Equal(t, variant.ProgramID(), tx.Message.AccountKeys[ix.ProgramIDIndex])
			}
		})
	}
}

func TestRunWithoutFeePayer(t *testing.T) {
	net := newFakeNetwork()
	rec := newRecord(t)
	net.addAccount(rec.PublicKey, model.ProgramLegacy, 5000000, 0)

	p := NewPipeline(net, testOptions(&sleepRecorder{}), nil)
	summary, err := p.Run(context.Background(), &Run{Records: []*model.KeyRecord{rec}}, nil)

	require.ErrorIs(t, err, ErrFeePayerNotSet)
	assert.Nil(t, summary)
	assert.Equal(t, StateIdle, p.State())
	assert.Zero(t, net.callCount())

	_, err = NewExecutor(net, nil, DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrFeePayerNotSet)
}

func TestRunContinuesAfterFailure(t *testing.T) {
	net := newFakeNetwork()
	feePayer := newRecord(t).Secret
	a, b := newRecord(t), newRecord(t)
	bad := net.addAccount(a.PublicKey, model.ProgramLegacy, 3000000, 0)
	net.addAccount(a.PublicKey, model.ProgramExtended, 2000000, 0)
	net.addAccount(b.PublicKey, model.ProgramLegacy, 4000000, 0)
	net.sendErr[bad] = errors.New("transaction simulation failed")

	sleeper := &sleepRecorder{}
	destination := solana.NewWallet().PublicKey()
	p := NewPipeline(net, testOptions(sleeper), nil)
	summary, err := p.Run(context.Background(), &Run{
		Records:     []*model.KeyRecord{a, b},
		FeePayer:    feePayer,
		Destination: destination,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, destination, summary.Destination)
	assert.Equal(t, 2, summary.SuccessfulCollections)
	assert.Equal(t, 1, summary.FailedCollections)
	assert.Equal(t, 3, summary.Attempts())
	assert.Len(t, summary.Results, 3)
	assert.Equal(t, uint64(6000000), summary.TotalAmountRecovered)
	assert.Equal(t, 3, sleeper.count(2*time.Second))

	failed := summary.Results[0]
	assert.False(t, failed.Success)
	assert.Equal(t, bad, failed.Account)
	assert.Contains(t, failed.Error, "transaction simulation failed")
	assert.Zero(t, failed.AmountRecovered)
}

func TestCloseAccountPermanentErrors(t *testing.T) {
	net := newFakeNetwork()
	rec := newRecord(t)
	feePayer := newRecord(t).Secret
	e, err := NewExecutor(net, feePayer, testOptions(&sleepRecorder{}), nil)
	require.NoError(t, err)

	missing := e.CloseAccount(context.Background(), solana.NewWallet().PublicKey(), rec, feePayer.PublicKey())
	assert.False(t, missing.Success)
	assert.Equal(t, ErrAccountNotFound.Error(), missing.Error)

	foreign := net.addAccount(rec.PublicKey, model.ProgramLegacy, 5000000, 0)
	net.info[foreign].Owner = solana.SystemProgramID
	unknown := e.CloseAccount(context.Background(), foreign, rec, feePayer.PublicKey())
	assert.False(t, unknown.Success)
	assert.Contains(t, unknown.Error, ErrUnknownProgram.Error())
	assert.Empty(t, net.sent)
}

func TestRunToleratesDrift(t *testing.T) {
	net := newFakeNetwork()
	rec := newRecord(t)
	feePayer := newRecord(t).Secret
	drained := net.addAccount(rec.PublicKey, model.ProgramLegacy, 3000000, 0)
	grown := net.addAccount(rec.PublicKey, model.ProgramLegacy, 500, 0)
	kept := net.addAccount(rec.PublicKey, model.ProgramExtended, 2000000, 0)

	p := NewPipeline(net, testOptions(&sleepRecorder{}), nil)
	summary, err := p.Run(context.Background(), &Run{
		Records:  []*model.KeyRecord{rec},
		FeePayer: feePayer,
	}, func(ev model.ProgressEvent) {
		if ev.Phase == model.PhaseReclaim && ev.Status == statusProcessing {
			net.setLamports(rec.PublicKey, drained, 1000)
			net.setLamports(rec.PublicKey, grown, 1500000)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(5000000), rec.ReclaimableAmount)
	assert.Equal(t, 2, summary.SuccessfulCollections)
	assert.Equal(t, 0, summary.FailedCollections)
	assert.Equal(t, uint64(3500000), summary.TotalAmountRecovered)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, grown, summary.Results[0].Account)
	assert.Equal(t, kept, summary.Results[1].Account)
}

func TestRunSkipsRecordsWithoutRent(t *testing.T) {
	net := newFakeNetwork()
	empty, full := newRecord(t), newRecord(t)
	net.addAccount(full.PublicKey, model.ProgramLegacy, 2039280, 0)

	var reclaimWallets []string
	p := NewPipeline(net, testOptions(&sleepRecorder{}), zap.NewNop())
	summary, err := p.Run(context.Background(), &Run{
		ID:       "run-1",
		Records:  []*model.KeyRecord{empty, full},
		FeePayer: newRecord(t).Secret,
	}, func(ev model.ProgressEvent) {
		if ev.Phase == model.PhaseReclaim && ev.Status == statusProcessing {
			reclaimWallets = append(reclaimWallets, ev.Wallet)
		}
	})
	require.NoError(t, err)

	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 2, summary.TotalWallets)
	assert.Equal(t, []string{full.PublicKey.String()}, reclaimWallets)
	assert.Equal(t, 1, summary.Attempts())
}

// Run honors a caller's cancellation. The HTTP handler and CLI never cancel a
// run once it starts.
func TestRunStopsWhenCallerCancels(t *testing.T) {
	net := newFakeNetwork()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(net, Options{Sleep: retry.Sleep}, nil)
	_, err := p.Run(ctx, &Run{
		Records:  []*model.KeyRecord{newRecord(t)},
		FeePayer: newRecord(t).Secret,
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

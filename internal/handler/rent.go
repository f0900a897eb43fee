package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/AlexZinkM/rent-collector/internal/keyfile"
	"github.com/AlexZinkM/rent-collector/internal/model"
	"github.com/AlexZinkM/rent-collector/internal/store"
	"github.com/AlexZinkM/rent-collector/reclaim"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// NetworkFactory returns the RPC client for an endpoint.
type NetworkFactory func(rpcURL string) reclaim.Network

// RentHandler serves key loading, settings, scans and reclaim runs.
type RentHandler struct {
	ring       *keyfile.Ring
	settings   *store.Settings
	password   []byte
	storePath  string
	newNetwork NetworkFactory
	opts       reclaim.Options
	logger     *zap.Logger

	// one scan or run at a time in this process; the file lock covers other processes
	busy sync.Mutex
}

// Deps groups what NewRentHandler needs.
type Deps struct {
	Ring      *keyfile.Ring
	Settings  *store.Settings
	Password  []byte // store password, kept for the life of the server
	StorePath string
	Network   NetworkFactory
	Options   reclaim.Options
	Logger    *zap.Logger
}

// NewRentHandler creates a RentHandler.
func NewRentHandler(d Deps) (*RentHandler, error) {
	if d.Ring == nil || d.Settings == nil || d.Network == nil {
		return nil, errors.New("ring, settings and network are required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &RentHandler{
		ring:       d.Ring,
		settings:   d.Settings,
		password:   d.Password,
		storePath:  d.StorePath,
		newNetwork: d.Network,
		opts:       d.Options,
		logger:     d.Logger,
	}, nil
}

// Keys handles POST, GET and DELETE /keys
// @Summary      Load, list or clear wallet keys
// @Description  POST adds keys from key file text (flat or sectioned), GET lists loaded wallets, DELETE clears them
// @Tags         keys
// @Accept       json
// @Produce      json
// @Param        request  body      model.LoadKeysRequest  false  "Key file content (POST only)"
// @Success      200      {object}  model.LoadKeysResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /keys [post]
// @Router       /keys [get]
// @Router       /keys [delete]
func (h *RentHandler) Keys(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records := h.ring.Records()
		resp := model.KeysResponse{Count: len(records), Wallets: make([]string, 0, len(records))}
		for _, rec := range records {
			resp.Wallets = append(resp.Wallets, rec.PublicKey.String())
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var req model.LoadKeysRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err, "")
			return
		}
		if req.Content == "" {
			writeError(w, http.StatusBadRequest, errors.New("content is required"), "")
			return
		}
		if req.Source == "" {
			req.Source = "request"
		}
		if !h.busy.TryLock() {
			writeError(w, http.StatusConflict, store.ErrRunInProgress, model.CodeRunInProgress)
			return
		}
		defer h.busy.Unlock()

		if req.Clear {
			h.ring.Clear()
		}
		report := h.ring.Load(req.Content, req.Source)
		writeJSON(w, http.StatusOK, model.LoadKeysResponse{
			Source:          report.Source,
			Added:           report.Added,
			Duplicates:      report.Duplicates,
			ParseErrors:     len(report.ParseErrors),
			OrphanAddresses: report.OrphanAddresses,
			Total:           report.Total,
		})

	case http.MethodDelete:
		if !h.busy.TryLock() {
			writeError(w, http.StatusConflict, store.ErrRunInProgress, model.CodeRunInProgress)
			return
		}
		defer h.busy.Unlock()
		h.ring.Clear()
		writeJSON(w, http.StatusOK, model.KeysResponse{Wallets: []string{}})

	default:
		http.Error(w, "Method not allowed. Should be GET, POST or DELETE", http.StatusMethodNotAllowed)
	}
}

// Config handles GET /config
// @Summary      Show settings
// @Description  Returns the RPC endpoint in use and the fee payer address if one is stored
// @Tags         config
// @Produce      json
// @Success      200  {object}  model.ConfigResponse
// @Failure      500  {object}  model.ErrorResponse
// @Router       /config [get]
func (h *RentHandler) Config(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	rpcURL, err := h.settings.RPCURL(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}
	resp := model.ConfigResponse{RPCURL: rpcURL}

	address, err := h.settings.FeePayerAddress(r.Context())
	switch {
	case err == nil:
		resp.FeePayerAddress = address.String()
	case !errors.Is(err, store.ErrNotSet):
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SetRPCURL handles POST /config/rpc
// @Summary      Set RPC endpoint
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        request  body      model.RPCURLRequest  true  "RPC endpoint"
// @Success      200      {object}  model.ConfigResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /config/rpc [post]
func (h *RentHandler) SetRPCURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RPCURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err, "")
		return
	}
	if err := h.settings.SetRPCURL(r.Context(), req.URL); err != nil {
		writeError(w, http.StatusBadRequest, err, "")
		return
	}
	h.logger.Info("rpc endpoint updated", zap.String("rpc_url", req.URL))
	writeJSON(w, http.StatusOK, model.ConfigResponse{RPCURL: req.URL})
}

// FeePayer handles POST and DELETE /config/fee-payer
// @Summary      Set or clear the fee payer
// @Description  POST stores the fee payer private key sealed with the server password. DELETE removes it.
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        request  body      model.FeePayerRequest  false  "Base58 private key (POST only)"
// @Success      200      {object}  model.FeePayerResponse
// @Failure      400      {object}  model.ErrorResponse
// @Router       /config/fee-payer [post]
// @Router       /config/fee-payer [delete]
func (h *RentHandler) FeePayer(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req model.FeePayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err, "")
			return
		}
		address, err := h.settings.SetFeePayer(r.Context(), req.Secret, h.password)
		if err != nil {
			writeError(w, http.StatusBadRequest, err, "")
			return
		}
		h.logger.Info("fee payer updated", zap.String("address", address.String()))
		writeJSON(w, http.StatusOK, model.FeePayerResponse{
			Success: true,
			Message: "Fee payer set successfully",
			Address: address.String(),
		})

	case http.MethodDelete:
		if err := h.settings.ClearFeePayer(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err, "")
			return
		}
		writeJSON(w, http.StatusOK, model.FeePayerResponse{
			Success: true,
			Message: "Fee payer cleared",
		})

	default:
		http.Error(w, "Method not allowed. Should be POST or DELETE", http.StatusMethodNotAllowed)
	}
}

// Scan handles POST /scan
// @Summary      Scan loaded wallets
// @Description  Finds token accounts with rent for every loaded wallet. Does not need a fee payer.
// @Tags         reclaim
// @Produce      json
// @Success      200  {object}  model.ScanResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /scan [post]
func (h *RentHandler) Scan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}
	if !h.busy.TryLock() {
		writeError(w, http.StatusConflict, store.ErrRunInProgress, model.CodeRunInProgress)
		return
	}
	defer h.busy.Unlock()

	net, err := h.network(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}

	records := h.ring.Records()
	if err := reclaim.NewScanner(net, h.opts, h.logger).ScanAll(r.Context(), records, nil); err != nil {
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}

	resp := model.ScanResponse{TotalWallets: len(records), Wallets: records}
	for _, rec := range records {
		if rec.Closable {
			resp.ClosableWallets++
			resp.TotalReclaimable += rec.ReclaimableAmount
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Run handles POST /runs
// @Summary      Collect rent
// @Description  Scans every loaded wallet, closes token accounts with rent and streams progress as newline-delimited JSON. The last line holds the summary.
// @Tags         reclaim
// @Accept       json
// @Produce      json
// @Param        request  body      model.RunRequest  false  "Optional destination address, defaults to the fee payer"
// @Success      200      {object}  model.RunStreamLine
// @Failure      409      {object}  model.ErrorResponse
// @Failure      412      {object}  model.ErrorResponse
// @Router       /runs [post]
func (h *RentHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err, "")
			return
		}
	}
	var destination solana.PublicKey
	if req.Destination != "" {
		var err error
		destination, err = solana.PublicKeyFromBase58(req.Destination)
		if err != nil {
			writeError(w, http.StatusBadRequest, err, model.CodeInvalidDestination)
			return
		}
	}

	if !h.busy.TryLock() {
		writeError(w, http.StatusConflict, store.ErrRunInProgress, model.CodeRunInProgress)
		return
	}
	defer h.busy.Unlock()

	feePayer, err := h.settings.FeePayer(r.Context(), h.password)
	if errors.Is(err, store.ErrNotSet) {
		writeError(w, http.StatusPreconditionFailed, reclaim.ErrFeePayerNotSet, model.CodeFeePayerNotSet)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}
	defer clear(feePayer)

	lock, err := store.AcquireRunLock(h.storePath)
	if err != nil {
		writeError(w, http.StatusConflict, err, model.CodeRunInProgress)
		return
	}
	defer lock.Release()

	net, err := h.network(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err, "")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	streaming := true
	// a client that goes away stops receiving lines, the run itself goes on
	send := func(line model.RunStreamLine) {
		if !streaming {
			return
		}
		if err := enc.Encode(line); err != nil {
			h.logger.Warn("client left, run continues without streaming", zap.Error(err))
			streaming = false
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	// Closures already on chain must end up in a summary
	runCtx := context.WithoutCancel(r.Context())

	pipeline := reclaim.NewPipeline(net, h.opts, h.logger)
	summary, err := pipeline.Run(runCtx, &reclaim.Run{
		Records:     h.ring.Records(),
		FeePayer:    feePayer,
		Destination: destination,
	}, func(ev model.ProgressEvent) {
		send(model.RunStreamLine{Progress: &ev})
	})
	if err != nil {
		h.logger.Error("reclaim run failed", zap.Error(err))
		if summary != nil {
			reclaim.LogSummary(h.logger, summary)
			send(model.RunStreamLine{Summary: summary, Error: err.Error()})
			return
		}
		send(model.RunStreamLine{Error: err.Error()})
		return
	}
	send(model.RunStreamLine{Summary: summary})
}

func (h *RentHandler) network(ctx context.Context) (reclaim.Network, error) {
	rpcURL, err := h.settings.RPCURL(ctx)
	if err != nil {
		return nil, err
	}
	return h.newNetwork(rpcURL), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error, code string) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

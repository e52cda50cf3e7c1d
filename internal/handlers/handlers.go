package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/NikkuRek/denarius/internal/httputil"
	"github.com/NikkuRek/denarius/internal/ledger"
	"github.com/NikkuRek/denarius/internal/logger"
	"github.com/NikkuRek/denarius/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	return uint(id), err
}

// writeLedgerError maps the ledger error taxonomy onto HTTP codes.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrUnknownType),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrLegacyType),
		errors.Is(err, ledger.ErrCurrencyMismatch),
		errors.Is(err, ledger.ErrSameBucket),
		errors.Is(err, ledger.ErrSameAccount),
		errors.Is(err, ledger.ErrAccountKind):
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrBucketInUse):
		httputil.WriteError(w, http.StatusConflict, err.Error())
	default:
		logger.Log.Error("ledger operation failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func GetAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := ledger.ListAccounts(r.Context(), store.DB)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, accounts)
}

func GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	acc, err := ledger.GetAccount(r.Context(), store.DB, id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acc)
}

func CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var in ledger.AccountInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	acc, err := ledger.CreateAccount(r.Context(), store.DB, in)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, acc)
}

func UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	var patch ledger.AccountPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	acc, err := ledger.UpdateAccount(r.Context(), store.DB, id, patch)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acc)
}

func DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	if err := ledger.DeleteAccount(r.Context(), store.DB, id); err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

type adjustRequest struct {
	Balance decimal.Decimal `json:"balance"`
	Note    string          `json:"note"`
}

func AdjustAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, err := ledger.AdjustAccountBalance(r.Context(), store.DB, id, req.Balance, req.Note)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"adjusted": tx != nil})
}

func GetBucketsHandler(w http.ResponseWriter, r *http.Request) {
	buckets, err := ledger.ListBuckets(r.Context(), store.DB)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, buckets)
}

func GetBucketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid bucket id")
		return
	}
	b, err := ledger.GetBucket(r.Context(), store.DB, id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b)
}

func CreateBucketHandler(w http.ResponseWriter, r *http.Request) {
	var in ledger.BucketInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b, err := ledger.CreateBucket(r.Context(), store.DB, in)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, b)
}

func UpdateBucketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid bucket id")
		return
	}
	var patch ledger.BucketPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b, err := ledger.UpdateBucket(r.Context(), store.DB, id, patch)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, b)
}

func DeleteBucketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid bucket id")
		return
	}
	if err := ledger.DeleteBucket(r.Context(), store.DB, id); err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func AdjustBucketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid bucket id")
		return
	}
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, err := ledger.AdjustBucketBalance(r.Context(), store.DB, id, req.Balance, req.Note)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"adjusted": tx != nil})
}

func GetTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	var accountID *uint
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid account_id filter")
			return
		}
		id := uint(parsed)
		accountID = &id
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	txs, err := ledger.ListTransactions(r.Context(), store.DB, accountID, limit)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, txs)
}

func CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var in ledger.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, err := ledger.CreateTransaction(r.Context(), store.DB, in)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tx)
}

func UpdateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var patch ledger.TransactionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx, err := ledger.UpdateTransaction(r.Context(), store.DB, id, patch)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tx)
}

func DeleteTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	if err := ledger.DeleteTransaction(r.Context(), store.DB, id); err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func TransferHandler(w http.ResponseWriter, r *http.Request) {
	var in ledger.TransferInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	outTx, inTx, err := ledger.TransferBetweenBuckets(r.Context(), store.DB, in)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"out": outTx, "in": inTx})
}

func SettleHandler(w http.ResponseWriter, r *http.Request) {
	var in ledger.SettleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	first, second, err := ledger.Settle(r.Context(), store.DB, in)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"postings": []any{first, second}})
}

func SyncHandler(w http.ResponseWriter, r *http.Request) {
	var snap ledger.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	batchID, err := ledger.ReplaceAll(r.Context(), store.DB, snap)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"synced": true, "batch_id": batchID})
}

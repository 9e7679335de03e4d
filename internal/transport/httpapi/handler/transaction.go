package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerly-app/ledgerly/internal/infra/gateway/mockapi"
	"github.com/ledgerly-app/ledgerly/internal/infra/memstore"
	"github.com/ledgerly-app/ledgerly/pkg/logger"
	"github.com/ledgerly-app/ledgerly/pkg/money"
)

const (
	// pageSize is fixed by the API contract.
	pageSize = 10

	// dailyExpenseLimit caps how many expenses can be recorded per calendar day.
	dailyExpenseLimit = 200

	// createdAtFormat is the display-only timestamp format on the wire.
	createdAtFormat = "02/01/2006 15:04"
)

// Machine codes attached to the two business-rule rejections.
const (
	codeInsufficientBalance = "INSUFFICIENT_BALANCE"
	codeDailyLimitExceeded  = "DAILY_LIMIT_EXCEEDED"
)

// FeedClient fetches the external transaction feed for bulk import.
type FeedClient interface {
	FetchTransactions(ctx context.Context) ([]mockapi.FeedTransaction, error)
}

// TransactionHandler handles the ledger API: paginated list, create, import.
type TransactionHandler struct {
	store  *memstore.Store
	feed   FeedClient
	logger *logger.Logger
	now    func() time.Time
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(store *memstore.Store, feed FeedClient, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{
		store:  store,
		feed:   feed,
		logger: log.WithField("component", "httpapi"),
		now:    time.Now,
	}
}

// SetClock overrides the handler clock (useful for testing)
func (h *TransactionHandler) SetClock(now func() time.Time) {
	h.now = now
}

// transactionPayload is the wire form of one transaction row.
type transactionPayload struct {
	Code           string          `json:"code"`
	CreatedAt      string          `json:"created_at"`
	Type           string          `json:"type"`
	TypeDisplay    string          `json:"type_display"`
	Amount         decimal.Decimal `json:"amount"`
	AmountDisplay  string          `json:"amount_display"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

func toPayload(tx memstore.Transaction, defaultCode bool) transactionPayload {
	code := tx.Code
	if code == "" && defaultCode {
		code = "N/A"
	}
	return transactionPayload{
		Code:           code,
		CreatedAt:      tx.CreatedAt.Format(createdAtFormat),
		Type:           tx.Type,
		TypeDisplay:    tx.TypeDisplay(),
		Amount:         tx.Amount,
		AmountDisplay:  money.Display(tx.Amount),
		RunningBalance: tx.RunningBalance,
	}
}

type listResponse struct {
	Transactions   []transactionPayload `json:"transactions"`
	TotalBalance   decimal.Decimal      `json:"total_balance"`
	HasNext        bool                 `json:"has_next"`
	NextPageNumber *int                 `json:"next_page_number"`
}

// ListTransactions handles GET /api/transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	filter := query.Get("type")
	if filter != memstore.TypeDeposit && filter != memstore.TypeExpense {
		filter = ""
	}

	items, hasNext := h.store.Page(filter, page, pageSize)

	resp := listResponse{
		Transactions: make([]transactionPayload, 0, len(items)),
		TotalBalance: h.store.TotalBalance(),
		HasNext:      hasNext,
	}
	for _, tx := range items {
		resp.Transactions = append(resp.Transactions, toPayload(tx, true))
	}
	if hasNext {
		next := page + 1
		resp.NextPageNumber = &next
	}

	respondJSON(w, http.StatusOK, resp)
}

type createRequest struct {
	Type   string          `json:"type"`
	Amount json.RawMessage `json:"amount"`
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Incorrect JSON request.")
		return
	}

	// The amount arrives as either a JSON number or a quoted string.
	amount, amountErr := money.ParseAmount(strings.Trim(string(req.Amount), `"`))

	fields := map[string][]string{}
	if req.Type != memstore.TypeDeposit && req.Type != memstore.TypeExpense {
		fields["type"] = []string{"Select a valid transaction type."}
	}
	if amountErr != nil || !amount.IsPositive() {
		fields["amount"] = []string{"Ensure this value is greater than 0."}
	}
	if len(fields) > 0 {
		respondFieldErrors(w, http.StatusBadRequest, fields, nil)
		return
	}

	if req.Type == memstore.TypeExpense {
		if h.store.TotalBalance().LessThan(amount) {
			respondFieldErrors(w, http.StatusBadRequest,
				map[string][]string{"amount": {"Not enough balance"}},
				map[string]string{"amount": codeInsufficientBalance})
			return
		}
		if h.store.CountExpensesOn(h.now()) >= dailyExpenseLimit {
			respondFieldErrors(w, http.StatusBadRequest,
				map[string][]string{"type": {"Too many expenses today"}},
				map[string]string{"type": codeDailyLimitExceeded})
			return
		}
	}

	tx := h.store.Add(req.Type, amount, "", h.now(), false)
	h.logger.Info("transaction recorded", "type", tx.Type, "amount", tx.Amount.String())

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "Transaction successfully executed.",
		"success":         true,
		"total_balance":   h.store.TotalBalance(),
		"new_transaction": toPayload(tx, false),
	})
}

// ImportTransactions handles POST /api/transactions/import
func (h *TransactionHandler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := h.feed.FetchTransactions(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("feed fetch failed")
		respondError(w, http.StatusBadGateway, fmt.Sprintf("Error connecting to external API: %v", err))
		return
	}

	imported, skipped := 0, 0
	for _, item := range items {
		if item.ID == "" {
			h.logger.Warn("skipping feed item without id")
			skipped++
			continue
		}
		if h.store.HasCode(item.ID) {
			skipped++
			continue
		}
		if item.Type != memstore.TypeDeposit && item.Type != memstore.TypeExpense {
			h.logger.Warn("skipping feed item with unknown type", "id", item.ID, "type", item.Type)
			skipped++
			continue
		}
		amount, err := item.ParseAmount()
		if err != nil {
			h.logger.WithError(err).Warn("skipping feed item with bad amount", "id", item.ID)
			skipped++
			continue
		}
		createdAt, err := item.ParseCreatedAt()
		if err != nil {
			createdAt = h.now()
		}

		h.store.Add(item.Type, amount, item.ID, createdAt, true)
		imported++
	}

	h.logger.Info("import finished", "imported", imported, "skipped", skipped)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":       fmt.Sprintf("Imported %d transactions. Skipped %d.", imported, skipped),
		"success":       true,
		"total_balance": h.store.TotalBalance(),
	})
}

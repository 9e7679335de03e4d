package ledgerview

import (
	"github.com/shopspring/decimal"
)

// Type is a transaction direction.
type Type string

const (
	TypeDeposit Type = "deposit"
	TypeExpense Type = "expense"
)

// IsValid reports whether the type is one of the known directions.
func (t Type) IsValid() bool {
	return t == TypeDeposit || t == TypeExpense
}

// Display returns the human-readable label for the type.
func (t Type) Display() string {
	switch t {
	case TypeDeposit:
		return "Deposit"
	case TypeExpense:
		return "Expense"
	default:
		return string(t)
	}
}

// Filter scopes the transaction list by type. The zero value means "all".
type Filter string

const (
	FilterAll     Filter = ""
	FilterDeposit Filter = "deposit"
	FilterExpense Filter = "expense"
)

// IsValid reports whether the filter is one of the known scopes.
func (f Filter) IsValid() bool {
	return f == FilterAll || f == FilterDeposit || f == FilterExpense
}

// Transaction is the view projection of a ledger entry. All values are
// server-authoritative: the running balance is never recomputed here and
// the created-at string is display-only.
type Transaction struct {
	Code           string
	CreatedAt      string
	Type           Type
	TypeDisplay    string
	Amount         decimal.Decimal
	AmountDisplay  string
	RunningBalance decimal.Decimal
}

// Pagination control labels shown on the "Load More" affordance.
const (
	LabelLoadMore = "Load More"
	LabelLoading  = "Loading..."
	LabelRetry    = "Error - Try Again"
	LabelNoMore   = "No More Transactions"
)

// PaginationState is the state of the "Load More" control.
type PaginationState struct {
	Visible    bool
	Enabled    bool
	Label      string
	NextCursor string // opaque page token, empty when exhausted
}

// State is the in-memory projection of the remote ledger: ordered rows
// (newest first), the latest authoritative balance, the pagination cursor
// and the active filter. It is created empty, hydrated by the first fetch
// and mutated by every subsequent operation.
type State struct {
	Rows         []Transaction
	TotalBalance decimal.Decimal
	HasBalance   bool
	Filter       Filter
	Placeholder  bool // true when an empty result set left the "no transactions" row
	Pagination   PaginationState
	Importing    bool
}

// Page is a successful paginated read response, already converted from the
// wire format.
type Page struct {
	Transactions []Transaction
	TotalBalance *decimal.Decimal // nil when absent or non-numeric
	HasNext      bool
	NextCursor   string
}

// CreateResult is a successful transaction creation response.
type CreateResult struct {
	Message      string
	TotalBalance *decimal.Decimal
	Transaction  Transaction
}

// ImportResult is a successful bulk import response.
type ImportResult struct {
	Message string
}

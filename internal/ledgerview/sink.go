package ledgerview

import "context"

// Gateway is the ledger API the controller synchronizes against.
type Gateway interface {
	// ListTransactions reads one page scoped by cursor and filter. An empty
	// cursor means the first page.
	ListTransactions(ctx context.Context, cursor string, filter Filter) (*Page, error)
	// CreateTransaction records a new transaction. The amount is passed
	// through as entered; the server is the validation authority. A
	// structured rejection is returned as *Rejection.
	CreateTransaction(ctx context.Context, txType Type, amount string) (*CreateResult, error)
	// Import triggers the server-side bulk import from the external source.
	Import(ctx context.Context) (*ImportResult, error)
}

// Renderer receives the full view state after every mutation.
type Renderer interface {
	Render(State)
}

// Notifier raises transient user-visible notifications.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// EntryForm is the add-transaction form surface: an inline error line next
// to the inputs and a way to dismiss the form after a confirmed insert.
type EntryForm interface {
	ShowError(message string)
	Close()
}

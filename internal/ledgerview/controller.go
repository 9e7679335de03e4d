package ledgerview

import (
	"context"
	"fmt"
	"sync"

	"github.com/ledgerly-app/ledgerly/pkg/logger"
)

// maxVisibleRows is the display window: the view never shows more rows than
// one server page, dropping the oldest row when a confirmed insert would
// exceed it.
const maxVisibleRows = 10

// Default notification texts when the server does not provide a message.
const (
	msgInsertDefault = "Transaction successfully executed."
	msgImportDefault = "Transactions imported."
	msgImportFailed  = "Failed to import transactions."
	msgFetchFailed   = "Failed to load transactions."
)

// Config wires a Controller to its collaborators.
type Config struct {
	Gateway  Gateway
	Renderer Renderer
	Notifier Notifier
	Form     EntryForm
	Logger   *logger.Logger
}

// Controller owns the ledger view state and the three operations that keep
// it consistent with the remote ledger: paginated fetch, confirmed insert
// and bulk import. One instance lives per view session.
//
// Each operation class carries its own single-flight guard: a second call
// while one is outstanding fails fast with the matching Err*InFlight error
// instead of racing a read-modify-write on the shared state.
type Controller struct {
	gateway  Gateway
	renderer Renderer
	notifier Notifier
	form     EntryForm
	logger   *logger.Logger

	mu             sync.Mutex
	state          State
	retry          *retryFetch
	fetchInFlight  bool
	insertInFlight bool
	importInFlight bool
}

// retryFetch remembers the parameters of a failed fetch so the retry
// control can re-issue it, including a failed first-page load whose
// cursor is empty.
type retryFetch struct {
	cursor     string
	appendRows bool
}

// NewController creates a controller with an empty view state. The state is
// hydrated by the first FetchPage call.
func NewController(cfg Config) *Controller {
	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("development")
	}
	return &Controller{
		gateway:  cfg.Gateway,
		renderer: cfg.Renderer,
		notifier: cfg.Notifier,
		form:     cfg.Form,
		logger:   log.WithField("component", "ledgerview"),
	}
}

// State returns a snapshot of the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// FetchPage issues a paginated read scoped by cursor and filter. With
// appendRows false the response replaces the displayed sequence, otherwise
// it is appended at the end. The balance is refreshed whenever the response
// carries a numeric one. On failure the sequence is left untouched and the
// pagination control becomes retry-eligible with an error label.
func (c *Controller) FetchPage(ctx context.Context, cursor string, filter Filter, appendRows bool) error {
	c.mu.Lock()
	if c.fetchInFlight {
		c.mu.Unlock()
		return ErrFetchInFlight
	}
	c.fetchInFlight = true
	c.state.Filter = filter
	c.state.Pagination = PaginationState{
		Visible:    true,
		Enabled:    false,
		Label:      LabelLoading,
		NextCursor: c.state.Pagination.NextCursor,
	}
	c.renderLocked()
	c.mu.Unlock()

	c.logger.Debug("fetching page", "cursor", cursor, "filter", string(filter), "append", appendRows)
	page, err := c.gateway.ListTransactions(ctx, cursor, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchInFlight = false

	if err != nil {
		// Keep the sequence as-is; the control stays usable for a retry
		// that replays this exact fetch.
		c.retry = &retryFetch{cursor: cursor, appendRows: appendRows}
		c.state.Pagination = PaginationState{
			Visible:    true,
			Enabled:    true,
			Label:      LabelRetry,
			NextCursor: cursor,
		}
		c.renderLocked()
		c.notify(false, msgFetchFailed)
		return fmt.Errorf("fetch page: %w", err)
	}
	c.retry = nil

	if appendRows {
		c.state.Rows = append(c.state.Rows, page.Transactions...)
		if len(page.Transactions) > 0 {
			c.state.Placeholder = false
		}
	} else {
		c.state.Rows = append([]Transaction(nil), page.Transactions...)
		c.state.Placeholder = len(page.Transactions) == 0
	}

	if page.TotalBalance != nil {
		c.state.TotalBalance = *page.TotalBalance
		c.state.HasBalance = true
	}

	if page.HasNext {
		c.state.Pagination = PaginationState{
			Visible:    true,
			Enabled:    true,
			Label:      LabelLoadMore,
			NextCursor: page.NextCursor,
		}
	} else {
		c.state.Pagination = PaginationState{
			Visible: false,
			Enabled: false,
			Label:   LabelNoMore,
		}
	}

	c.renderLocked()
	return nil
}

// LoadMore appends the next page under the current filter using the primed
// cursor. When the control is in its retry state it replays the failed
// fetch instead, with the original cursor and replace/append mode. It is a
// no-op error when the control is not primed.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	p := c.state.Pagination
	filter := c.state.Filter
	retry := c.retry
	c.mu.Unlock()

	if retry != nil {
		return c.FetchPage(ctx, retry.cursor, filter, retry.appendRows)
	}
	if !p.Enabled || p.NextCursor == "" {
		return fmt.Errorf("no further page to load")
	}
	return c.FetchPage(ctx, p.NextCursor, filter, true)
}

// SetFilter switches the active type filter and reloads from the first page
// with replace semantics.
func (c *Controller) SetFilter(ctx context.Context, filter Filter) error {
	if !filter.IsValid() {
		return fmt.Errorf("invalid filter %q", filter)
	}
	return c.FetchPage(ctx, "", filter, false)
}

// SubmitTransaction sends a creation request. No provisional row is shown:
// the row is prepended only after the server acknowledges it with the
// canonical transaction. On rejection the view state stays unmodified and
// the rendered error is shown both inline and as a notification.
func (c *Controller) SubmitTransaction(ctx context.Context, txType Type, amount string) error {
	c.mu.Lock()
	if c.insertInFlight {
		c.mu.Unlock()
		return ErrInsertInFlight
	}
	c.insertInFlight = true
	c.mu.Unlock()

	c.logger.Debug("submitting transaction", "type", string(txType))
	res, err := c.gateway.CreateTransaction(ctx, txType, amount)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertInFlight = false

	if err != nil {
		msg := MsgNetwork
		if rej, ok := AsRejection(err); ok {
			msg = rej.UserMessage()
		}
		if c.form != nil {
			c.form.ShowError(msg)
		}
		c.notify(false, msg)
		return fmt.Errorf("submit transaction: %w", err)
	}

	c.state.Rows = append([]Transaction{res.Transaction}, c.state.Rows...)
	if len(c.state.Rows) > maxVisibleRows {
		c.state.Rows = c.state.Rows[:maxVisibleRows]
	}
	c.state.Placeholder = false
	if res.TotalBalance != nil {
		c.state.TotalBalance = *res.TotalBalance
		c.state.HasBalance = true
	}
	c.renderLocked()

	if c.form != nil {
		c.form.Close()
	}
	msg := res.Message
	if msg == "" {
		msg = msgInsertDefault
	}
	c.notify(true, msg)
	return nil
}

// ImportFromExternalSource triggers the server-side bulk import and, on
// success, reloads the first page under the current filter. The import
// trigger is restored on every path, including errors.
func (c *Controller) ImportFromExternalSource(ctx context.Context) error {
	c.mu.Lock()
	if c.importInFlight {
		c.mu.Unlock()
		return ErrImportInFlight
	}
	c.importInFlight = true
	c.state.Importing = true
	c.renderLocked()
	filter := c.state.Filter
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.importInFlight = false
		c.state.Importing = false
		c.renderLocked()
		c.mu.Unlock()
	}()

	c.logger.Debug("importing from external source")
	res, err := c.gateway.Import(ctx)
	if err != nil {
		msg := msgImportFailed
		if rej, ok := AsRejection(err); ok {
			msg = rej.UserMessage()
		}
		c.notify(false, msg)
		return fmt.Errorf("import: %w", err)
	}

	msg := res.Message
	if msg == "" {
		msg = msgImportDefault
	}
	c.notify(true, msg)

	return c.FetchPage(ctx, "", filter, false)
}

func (c *Controller) notify(success bool, msg string) {
	if c.notifier == nil {
		return
	}
	if success {
		c.notifier.Success(msg)
	} else {
		c.notifier.Failure(msg)
	}
}

// snapshotLocked copies the state so sinks can retain it safely.
func (c *Controller) snapshotLocked() State {
	s := c.state
	s.Rows = append([]Transaction(nil), c.state.Rows...)
	return s
}

func (c *Controller) renderLocked() {
	if c.renderer == nil {
		return
	}
	c.renderer.Render(c.snapshotLocked())
}

package ledgerview

import (
	"errors"
	"sort"
	"strings"
	"unicode"
)

// In-flight guard errors. A second call of the same operation class while
// one is outstanding is rejected instead of racing the shared view state.
var (
	ErrFetchInFlight  = errors.New("a paginated fetch is already in flight")
	ErrInsertInFlight = errors.New("a transaction submission is already in flight")
	ErrImportInFlight = errors.New("an import is already in flight")
)

// Machine-readable rejection codes the server attaches to field errors.
// When present the client switches on these instead of matching message
// prose.
const (
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeDailyLimitExceeded  = "DAILY_LIMIT_EXCEEDED"
)

// MsgNetwork is shown when a mutation fails at the transport level or the
// response body cannot be interpreted, as opposed to a structured rejection.
const MsgNetwork = "Network error or invalid server response."

// Rejection is a structured validation rejection from the ledger API: either
// a top-level message or a mapping of field names to messages, optionally
// annotated with per-field machine codes.
type Rejection struct {
	Message string
	Fields  map[string][]string
	Codes   map[string]string
}

func (r *Rejection) Error() string {
	return "transaction rejected: " + r.UserMessage()
}

// AsRejection extracts a Rejection from an error chain.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// UserMessage renders the rejection the way the view presents it.
//
// Two business rules get verbatim passthrough of their sole message: the
// daily expense cap (keyed by "type") and insufficient balance (keyed by
// "amount"). They are recognized by machine code when the server sends one,
// with a case-insensitive message fallback for servers that do not. Every
// other field-keyed shape renders as "Field: msg1; msg2" blocks, and a
// top-level message renders verbatim.
func (r *Rejection) UserMessage() string {
	if msg, ok := r.businessRule("amount", CodeInsufficientBalance, "not enough balance"); ok {
		return msg
	}
	if msg, ok := r.businessRule("type", CodeDailyLimitExceeded, "too many expenses today"); ok {
		return msg
	}

	if len(r.Fields) > 0 {
		names := make([]string, 0, len(r.Fields))
		for name := range r.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		blocks := make([]string, 0, len(names))
		for _, name := range names {
			blocks = append(blocks, capitalize(name)+": "+strings.Join(r.Fields[name], "; "))
		}
		return strings.Join(blocks, "\n")
	}

	if r.Message != "" {
		return r.Message
	}
	return MsgNetwork
}

// businessRule matches a single-field, single-message rejection against one
// of the named business rules and returns its message verbatim.
func (r *Rejection) businessRule(field, code, fallback string) (string, bool) {
	if len(r.Fields) != 1 {
		return "", false
	}
	msgs, ok := r.Fields[field]
	if !ok || len(msgs) != 1 {
		return "", false
	}
	if r.Codes[field] == code {
		return msgs[0], true
	}
	if strings.Contains(strings.ToLower(msgs[0]), fallback) {
		return msgs[0], true
	}
	return "", false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

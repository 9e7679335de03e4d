package ledgerapi

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/ledgerly-app/ledgerly/internal/ledgerview"
	"github.com/ledgerly-app/ledgerly/pkg/money"
)

// transactionPayload is the wire form of one transaction row. Decimal fields
// accept both bare numbers and quoted strings.
type transactionPayload struct {
	Code           string          `json:"code"`
	CreatedAt      string          `json:"created_at"`
	Type           string          `json:"type"`
	TypeDisplay    string          `json:"type_display"`
	Amount         decimal.Decimal `json:"amount"`
	AmountDisplay  string          `json:"amount_display"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// listResponse is the paginated read response. TotalBalance and
// NextPageNumber stay raw: the balance may be null or non-numeric (and is
// then ignored), and the page token is opaque.
type listResponse struct {
	Transactions   []transactionPayload `json:"transactions"`
	TotalBalance   json.RawMessage      `json:"total_balance"`
	HasNext        bool                 `json:"has_next"`
	NextPageNumber json.RawMessage      `json:"next_page_number"`
}

type createRequest struct {
	Type   string `json:"type"`
	Amount string `json:"amount"`
}

type createResponse struct {
	Message        string             `json:"message"`
	Success        bool               `json:"success"`
	TotalBalance   json.RawMessage    `json:"total_balance"`
	NewTransaction transactionPayload `json:"new_transaction"`
}

type importResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// errorResponse is the rejection payload: Error is either a bare string or a
// mapping of field names to message lists, optionally annotated with
// per-field machine codes.
type errorResponse struct {
	Error      json.RawMessage   `json:"error"`
	ErrorCodes map[string]string `json:"error_codes"`
	Message    string            `json:"message"`
}

func toViewTransaction(p transactionPayload) ledgerview.Transaction {
	code := p.Code
	if code == "" {
		code = "N/A"
	}
	typeDisplay := p.TypeDisplay
	if typeDisplay == "" {
		typeDisplay = ledgerview.Type(p.Type).Display()
	}
	amountDisplay := p.AmountDisplay
	if amountDisplay == "" {
		amountDisplay = money.Display(p.Amount)
	}
	return ledgerview.Transaction{
		Code:           code,
		CreatedAt:      p.CreatedAt,
		Type:           ledgerview.Type(p.Type),
		TypeDisplay:    typeDisplay,
		Amount:         p.Amount,
		AmountDisplay:  amountDisplay,
		RunningBalance: p.RunningBalance,
	}
}

// parseOptionalDecimal returns nil for absent, null or non-numeric values;
// the caller ignores those silently.
func parseOptionalDecimal(raw json.RawMessage) *decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil
	}
	return &d
}

// parseCursor extracts the opaque next-page token, whatever scalar shape the
// server chose for it.
func parseCursor(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// parseRejection interprets a non-success body as a structured rejection.
// Bodies that fit neither the string nor the field-map shape are reported as
// transport-level failures instead.
func parseRejection(body []byte) (*ledgerview.Rejection, bool) {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		return nil, false
	}

	rej := &ledgerview.Rejection{
		Message: er.Message,
		Codes:   er.ErrorCodes,
	}

	if len(er.Error) > 0 && string(er.Error) != "null" {
		var s string
		if err := json.Unmarshal(er.Error, &s); err == nil {
			if s != "" {
				rej.Message = s
			}
		} else {
			var fields map[string][]string
			if err := json.Unmarshal(er.Error, &fields); err != nil {
				return nil, false
			}
			rej.Fields = fields
		}
	}

	if rej.Message == "" && len(rej.Fields) == 0 {
		return nil, false
	}
	return rej, true
}

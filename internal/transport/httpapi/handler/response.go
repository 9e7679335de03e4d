package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
)

// Amounts and balances go on the wire as JSON numbers, not quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondError sends a top-level string error response
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, map[string]interface{}{
		"error":   message,
		"success": false,
	})
}

// respondFieldErrors sends a field-keyed validation rejection, optionally
// annotated with per-field machine codes.
func respondFieldErrors(w http.ResponseWriter, code int, fields map[string][]string, codes map[string]string) {
	payload := map[string]interface{}{
		"error":   fields,
		"success": false,
	}
	if len(codes) > 0 {
		payload["error_codes"] = codes
	}
	respondJSON(w, code, payload)
}

// Package shared holds the JSON response envelope used by every HTTP handler
// so clients see one error shape regardless of which domain produced it.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "roost/pkg/domain-errors"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// WriteJSON writes v with the given status. Encoding failures are ignored;
// the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error to its HTTP status and envelope. This
// is the single place the mapping happens; handlers never pick status codes.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), errorEnvelope{
		Error: errorBody{Code: string(code), Message: dErrors.MessageOf(err)},
	})
}

package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/sgarciam/vibra/internal/http/errors"
)

const maxJSONBody = 1 << 20 // 1MB

// ReadJSON decodes the request body into v. Unknown fields are tolerated,
// Content-Type must be JSON and the body is capped at 1MB.
// Returns false if it already wrote an error response.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("Content-Type must be application/json"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
			return false
		}
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package errors

import (
	"encoding/json"
	"net/http"
)

// errorResponse controls exactly which fields reach the client.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error"`
}

// WriteError writes the JSON error envelope for err. The legacy "error" field
// mirrors the message for clients that predate the code/message split.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
		Error:   appErr.Message,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

package handler

import (
	"encoding/json"
	"net/http"

	"crypto-checkout/internal/errors"
)

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError renders an error as the wire shape clients get: validation
// failures carry field details, not-found carries its message, anything
// server-side collapses to a generic message with no internals leaked.
func writeError(w http.ResponseWriter, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.NewAppError(errors.InternalError, "Internal server error")
	}

	statusCode := appErr.HTTPStatus()

	body := map[string]interface{}{}
	if statusCode >= http.StatusInternalServerError {
		body["error"] = "Internal server error"
	} else {
		body["error"] = appErr.Message
	}
	if len(appErr.Fields) > 0 {
		body["details"] = appErr.Fields
	}

	writeJSON(w, statusCode, body)
}

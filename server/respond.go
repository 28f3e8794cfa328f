package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hrithikv/CourantInstituteNYUHyperloop/models"
)

// errorResponse is the JSON error body for every route except the legacy
// GOOD/BAD administrative routes
type errorResponse struct {
	Status  int         `json:"status"`
	Code    models.Code `json:"code"`
	Message string      `json:"message"`
}

const jsonHint = "request body is not valid JSON"

// writeJSON marshals v with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

// writeError maps a tagged error to its HTTP status. Unknown errors collapse
// to a generic 500 so internals never leak to callers.
func (rt *Router) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := models.CodeInternal
	message := "internal error"

	if e, ok := models.AsError(err); ok {
		code = e.Code
		message = e.Message
		switch e.Code {
		case models.CodeNotFound:
			status = http.StatusNotFound
		case models.CodeExists:
			status = http.StatusConflict
		case models.CodeStorageRead, models.CodeStorageWrite, models.CodeInternal:
			status = http.StatusInternalServerError
		default:
			status = http.StatusBadRequest
		}
	}

	if status == http.StatusInternalServerError {
		rt.log.WithError(err).Error("request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// decodeJSON reads a JSON request body; syntax errors become a 400 with a
// fixed hint rather than echoing decoder internals
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return &models.Error{Code: models.CodeBadRequest, Message: jsonHint}
		}
		return models.NewInternal(err)
	}
	return nil
}

package hostapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the host backend.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("hostapi: remote error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("hostapi: remote error %d: %s", e.Status, e.Body)
}

// APIMessage returns the message the backend put in its response body. Toasts
// prefer it over Error.
func (e *APIError) APIMessage() string { return e.Message }

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// newAPIError reads {"message": ...}, {"error": "..."} and
// {"error": {"message": ...}} bodies. Anything else keeps only the raw body.
func newAPIError(status int, body []byte) *APIError {
	out := &APIError{Status: status, Body: strings.TrimSpace(string(body))}
	var envelope struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if out.Body == "" {
			out.Body = http.StatusText(status)
		}
		return out
	}
	out.Message = strings.TrimSpace(envelope.Message)
	if out.Message == "" && len(envelope.Error) > 0 {
		var text string
		if json.Unmarshal(envelope.Error, &text) == nil {
			out.Message = strings.TrimSpace(text)
		} else {
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(envelope.Error, &nested) == nil {
				out.Message = strings.TrimSpace(nested.Message)
			}
		}
	}
	return out
}

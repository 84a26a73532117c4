package apiclient

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ServiceError is a non-2xx answer from the service.
type ServiceError struct {
	StatusCode int
	Message    string // from the body's "detail" or "message" field, if any
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// newServiceError pulls a human-readable message out of an error body without
// assuming its shape: FastAPI-style {"detail": "..."} and {"message": "..."} are
// both understood, anything else yields an empty message.
func newServiceError(code int, body []byte) *ServiceError {
	se := &ServiceError{StatusCode: code}
	if !gjson.ValidBytes(body) {
		return se
	}
	for _, path := range []string{"detail", "message"} {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
			se.Message = r.Str
			break
		}
	}
	return se
}

package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"aurabags-storefront/internal/domain"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the domain error taxonomy.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return domain.ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return domain.ErrAlreadyExists
	case e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout:
		return domain.ErrUnavailable
	case e.StatusCode >= 400:
		return domain.ErrInvalidInput
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{StatusCode: status, Message: errorMessage(body)}
}

// errorMessage extracts a readable message from common error bodies:
// {"detail": "..."}, {"error": "..."}, {"message": "..."} or field errors
// {"field": ["..."]}.
func errorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		if len(trimmed) > 200 {
			trimmed = trimmed[:200]
		}
		return trimmed
	}
	for _, k := range []string{"detail", "error", "message"} {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	fields := make([]string, 0, len(obj))
	for k := range obj {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, k := range fields {
		switch v := obj[k].(type) {
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					parts = append(parts, k+": "+s)
				}
			}
		case string:
			parts = append(parts, k+": "+v)
		}
	}
	return strings.Join(parts, "; ")
}

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized matches any *APIError carrying a 401 status.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is returned by every endpoint wrapper when the call does not
// succeed: non-2xx responses, transport failures and undecodable bodies.
type APIError struct {
	// Endpoint is the wrapper name, e.g. "Login".
	Endpoint string
	// Status is the HTTP status, 0 when no response was received.
	Status int
	// Message is the backend's message, or the endpoint fallback.
	Message string
	// Cause is the underlying transport or decode error, if any.
	Cause error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is reports true for ErrUnauthorized when the status is 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// ValidationError is a client-side rejection raised before any request is
// sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// messageFrom extracts the backend message from an error body. The backend
// answers either with a bare string (quoted or not) or with an object
// carrying "message". Anything else yields fallback.
func messageFrom(body []byte, fallback string) string {
	b := bytes.TrimSpace(body)
	if len(b) == 0 {
		return fallback
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil && strings.TrimSpace(s) != "" {
			return s
		}
		return fallback
	case '{':
		var obj struct {
			Message any `json:"message"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return fallback
		}
		if s, ok := obj.Message.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
		return fallback
	case '[', '<':
		return fallback
	}

	if json.Valid(b) {
		// numbers, booleans, null
		return fallback
	}
	return string(b)
}

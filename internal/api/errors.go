package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotConfigured = errors.New("api client not configured")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
)

// StatusError reports a non-2xx reply from the backend.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// BackendMessage extracts the "error" or "message" field the backend puts in
// failure bodies, if any.
func (e *StatusError) BackendMessage() string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// Message flattens err into the single line shown to staff.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var se *StatusError
	if errors.As(err, &se) {
		if msg := se.BackendMessage(); msg != "" {
			return msg
		}
		switch {
		case se.StatusCode == http.StatusUnauthorized:
			return "Session expired, please sign in again"
		case se.StatusCode == http.StatusNotFound:
			return "Not found"
		case se.StatusCode >= 500:
			return "Server error, please try again"
		}
		return strings.TrimSpace(http.StatusText(se.StatusCode))
	}

	if errors.Is(err, ErrNotConfigured) {
		return "Backend not configured"
	}
	return "Network error, please check the connection"
}

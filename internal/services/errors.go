package services

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/desertthunder/invsync/internal/shared"
)

// HTTPError is a non-2xx response from the instance.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Message    string // the "error" field of an Invidious error body, when present
}

// NewHTTPError builds the error for a non-2xx response, taking the message from an Invidious error body.
func NewHTTPError(method, path string, status int, body []byte) *HTTPError {
	msg := gjson.GetBytes(body, "error").String()
	if msg == "" && !gjson.ValidBytes(body) {
		msg = strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
	}
	return &HTTPError{Method: method, Path: path, StatusCode: status, Body: body, Message: msg}
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap maps the status code onto the remote error taxonomy.
func (e *HTTPError) Unwrap() error {
	return classifyStatus(e.StatusCode)
}

func classifyStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return shared.ErrRemoteAuth
	case http.StatusNotFound:
		return shared.ErrRemoteNotFound
	default:
		return shared.ErrRemoteTransient
	}
}

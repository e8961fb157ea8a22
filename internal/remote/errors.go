package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// HTTPError is returned for any non-2xx response from the notification API.
type HTTPError struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

// IsStatus reports whether err (or any error in its chain) is an HTTPError
// with the given status code.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}

// errorBody covers the error shapes returned by the API and the gin dev
// server.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// messageFromBody extracts a human-readable message from an error response,
// falling back to the raw text and then to a generic string.
func messageFromBody(status int, body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}

	return fmt.Sprintf("HTTP error (status %d)", status)
}

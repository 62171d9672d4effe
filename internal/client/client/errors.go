package client

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

var (
	ErrNetworkFailure    = errors.New("network failure")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMalformedResponse = errors.New("malformed response")
	ErrServerRejected    = errors.New("server rejected request")
	ErrMissingID         = errors.New("application id is required")
)

// maxMessageLen caps text copied from a non-JSON error body.
const maxMessageLen = 300

// ServerRejectedError is a non-2xx answer that is not an auth failure.
type ServerRejectedError struct {
	Status  int
	Message string
}

func (e *ServerRejectedError) Error() string {
	return e.Message
}

func (e *ServerRejectedError) Is(target error) bool {
	return target == ErrServerRejected
}

// newServerRejected picks the message from a JSON "message" or "error"
// field, then the raw body text, then a generic status line.
func newServerRejected(status int, body []byte) *ServerRejectedError {
	return &ServerRejectedError{Status: status, Message: rejectionMessage(status, body)}
}

func rejectionMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		if res.IsObject() {
			for _, key := range []string{"message", "error"} {
				if v := res.Get(key); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
					return strings.TrimSpace(v.Str)
				}
			}
			return genericMessage(status)
		}
		if res.Type == gjson.String && strings.TrimSpace(res.Str) != "" {
			return strings.TrimSpace(res.Str)
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" || !utf8.ValidString(text) {
		return genericMessage(status)
	}
	if len(text) > maxMessageLen {
		text = strings.ToValidUTF8(text[:maxMessageLen], "") + "..."
	}
	return text
}

func genericMessage(status int) string {
	return fmt.Sprintf("server error (%d)", status)
}

// IsDuplicateEmail reports whether err is the server refusing an application
// because the e-mail is already on file.
func IsDuplicateEmail(err error) bool {
	var rejected *ServerRejectedError
	if !errors.As(err, &rejected) {
		return false
	}
	return strings.Contains(strings.ToLower(rejected.Message), "email already exists")
}

// Message returns the text to show an operator for err.
func Message(err error) string {
	var rejected *ServerRejectedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &rejected):
		return rejected.Message
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please sign in again."
	case errors.Is(err, ErrNetworkFailure):
		return "Could not reach the server. Check your connection and try again."
	case errors.Is(err, ErrMalformedResponse):
		return "The server sent an unexpected response."
	default:
		return err.Error()
	}
}

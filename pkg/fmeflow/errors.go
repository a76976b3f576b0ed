package fmeflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error codes reported by *Error.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeServerError  = "SERVER_ERROR"
	CodeBadResponse  = "BAD_RESPONSE"
	CodeNetwork      = "NETWORK"
)

// Error is a failed call to the service.
type Error struct {
	Code    string
	Status  int
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("fmeflow: ")
	b.WriteString(e.Op)
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode exposes Code to callers that only know the error interface.
func (e *Error) ErrorCode() string { return e.Code }

func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status >= 500:
		return CodeServerError
	default:
		return CodeBadResponse
	}
}

func statusError(op string, status int, body []byte) *Error {
	var payload struct {
		Message string `json:"message"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		message = strings.TrimSpace(payload.Message)
	}
	return &Error{Code: codeForStatus(status), Status: status, Op: op, Message: message}
}

// transportError wraps a failed round trip. Cancellation is returned as is
// so callers can tell it apart from failures.
func transportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &Error{Code: CodeNetwork, Op: op, Err: err}
}

func decodeError(op string, err error) *Error {
	return &Error{Code: CodeBadResponse, Op: op, Err: err}
}

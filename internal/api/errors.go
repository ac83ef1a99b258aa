package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Category is the coarse failure taxonomy surfaced to the user.
type Category int

const (
	// CategoryNetworkOrUnknown covers transport errors, timeouts and any status not listed below.
	CategoryNetworkOrUnknown Category = iota
	// CategoryAuthRequired is HTTP 401.
	CategoryAuthRequired
	// CategoryServerError is any HTTP 5xx.
	CategoryServerError
	// CategoryValidationRejected is HTTP 400, 409 or 422.
	CategoryValidationRejected
)

func (c Category) String() string {
	switch c {
	case CategoryAuthRequired:
		return "auth_required"
	case CategoryServerError:
		return "server_error"
	case CategoryValidationRejected:
		return "validation_rejected"
	default:
		return "network_or_unknown"
	}
}

// Sentinel errors, one per category. Match with errors.Is.
var (
	ErrNetwork    = errors.New("network or unknown failure")
	ErrAuth       = errors.New("authentication required")
	ErrServer     = errors.New("server error")
	ErrValidation = errors.New("request rejected")
)

// Error is a failed backend call.
type Error struct {
	Op         string // e.g. "chat", "search internships"
	StatusCode int    // 0 for transport failures
	Detail     string // backend "detail"/"error" message, if any
	RequestID  string
	Err        error // underlying transport error, if any

	category Category
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the category sentinel and the transport cause.
func (e *Error) Unwrap() []error {
	errs := []error{sentinelFor(e.category)}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Category returns the error's taxonomy bucket.
func (e *Error) Category() Category {
	return e.category
}

// NotFound reports whether the backend answered 404.
func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// CategoryOf classifies any error. Non-api errors are NetworkOrUnknown.
func CategoryOf(err error) Category {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.category
	}
	switch {
	case errors.Is(err, ErrAuth):
		return CategoryAuthRequired
	case errors.Is(err, ErrServer):
		return CategoryServerError
	case errors.Is(err, ErrValidation):
		return CategoryValidationRejected
	}
	return CategoryNetworkOrUnknown
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

// CategoryForStatus maps an HTTP status to the taxonomy.
func CategoryForStatus(status int) Category {
	switch {
	case status == http.StatusUnauthorized:
		return CategoryAuthRequired
	case status >= 500:
		return CategoryServerError
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return CategoryValidationRejected
	default:
		return CategoryNetworkOrUnknown
	}
}

func sentinelFor(c Category) error {
	switch c {
	case CategoryAuthRequired:
		return ErrAuth
	case CategoryServerError:
		return ErrServer
	case CategoryValidationRejected:
		return ErrValidation
	default:
		return ErrNetwork
	}
}

func statusError(op, requestID string, status int, body []byte) *Error {
	return &Error{
		Op:         op,
		StatusCode: status,
		Detail:     parseDetail(body),
		RequestID:  requestID,
		category:   CategoryForStatus(status),
	}
}

func transportError(op, requestID string, err error) *Error {
	return &Error{Op: op, RequestID: requestID, Err: err, category: CategoryNetworkOrUnknown}
}

// parseDetail extracts FastAPI-style {"detail": ...} or {"error": ...} bodies.
// Validation errors carry a list of {"msg": ...} objects.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(truncate(string(body), 200))
	}
	if payload.Error != "" {
		return payload.Error
	}
	if len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(payload.Detail)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

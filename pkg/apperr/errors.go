// Package apperr defines the error taxonomy shared by every client component.
//
// Callers branch on Kind, never on message text. Unauthenticated is the only
// kind that triggers a structural reaction (navigate to login); everything
// else is turned into a user-visible message with UserMessage.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a failure.
type Kind string

const (
	KindUnauthenticated    Kind = "unauthenticated"
	KindValidation         Kind = "validation_error"
	KindServerRejected     Kind = "server_rejected"
	KindNetworkUnavailable Kind = "network_unavailable"
	KindMalformedResponse  Kind = "malformed_response"
	KindStorageUnavailable Kind = "storage_unavailable"
	KindRenderFailed       Kind = "render_failed"
)

// Error is the concrete error type returned across package boundaries.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status when the failure came from a response.
	Status int
	// Fields holds per-field validation messages.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind, so sentinel comparisons work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is checks.
var (
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrServerRejected     = &Error{Kind: KindServerRejected}
	ErrNetworkUnavailable = &Error{Kind: KindNetworkUnavailable}
	ErrMalformedResponse  = &Error{Kind: KindMalformedResponse}
	ErrStorageUnavailable = &Error{Kind: KindStorageUnavailable}
	ErrRenderFailed       = &Error{Kind: KindRenderFailed}
)

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// ValidationFields builds a validation error carrying per-field messages.
func ValidationFields(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func ServerRejected(status int, msg string) *Error {
	return &Error{Kind: KindServerRejected, Status: status, Message: msg}
}

func NetworkUnavailable(err error) *Error {
	return &Error{Kind: KindNetworkUnavailable, Message: "network unavailable", Err: err}
}

func MalformedResponse(err error) *Error {
	return &Error{Kind: KindMalformedResponse, Message: "unreadable response from server", Err: err}
}

func StorageUnavailable(msg string, err error) *Error {
	return &Error{Kind: KindStorageUnavailable, Message: msg, Err: err}
}

func RenderFailed(err error) *Error {
	return &Error{Kind: KindRenderFailed, Message: "document could not be rendered", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// UserMessage renders err for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch e.Kind {
	case KindUnauthenticated:
		return "session expired, please log in again"
	case KindNetworkUnavailable:
		return "cannot reach the server, check your connection"
	case KindMalformedResponse:
		return "the server sent an unreadable response"
	}
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

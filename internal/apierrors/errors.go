package apierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an API error for machine handling.
type Code string

const (
	CodeValidation       Code = "validation_error"
	CodeAuth             Code = "auth_error"
	CodeForbidden        Code = "forbidden"
	CodeNotFound         Code = "not_found"
	CodeAlreadyPublished Code = "already_published"
	CodeTransport        Code = "transport_error"
	CodeInternal         Code = "internal_error"
)

// APIError is a structured error crossing the API boundary. Message is what
// a view may show to the user; HTTPStatus drives the response status on the
// server and is reconstructed from it on the client.
type APIError struct {
	HTTPStatus int
	Code       Code
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// New creates an APIError with explicit status, code and message.
func New(status int, code Code, message string) *APIError {
	return &APIError{HTTPStatus: status, Code: code, Message: message}
}

func NewValidation(format string, args ...any) *APIError {
	return New(http.StatusBadRequest, CodeValidation, fmt.Sprintf(format, args...))
}

func NewInvalidCredentials() *APIError {
	return New(http.StatusUnauthorized, CodeAuth, "invalid username or password")
}

func NewUsernameTaken(username string) *APIError {
	return New(http.StatusConflict, CodeAuth, fmt.Sprintf("username %q is already taken", username))
}

func NewEmailTaken(email string) *APIError {
	return New(http.StatusConflict, CodeAuth, fmt.Sprintf("email %q is already registered", email))
}

func NewMissingAuthorizationToken() *APIError {
	return New(http.StatusUnauthorized, CodeAuth, "missing authorization token")
}

func NewInvalidAuthorizationToken() *APIError {
	return New(http.StatusUnauthorized, CodeAuth, "invalid authorization token")
}

func NewForbidden(capability string) *APIError {
	return New(http.StatusForbidden, CodeForbidden, fmt.Sprintf("role is not allowed to %s", capability))
}

func NewAuthorNotFound(username string) *APIError {
	return New(http.StatusNotFound, CodeNotFound, fmt.Sprintf("author %q not found", username))
}

func NewCommitteeNotFound(username string) *APIError {
	return New(http.StatusNotFound, CodeNotFound, fmt.Sprintf("committee member %q not found", username))
}

func NewPaperNotFound(id string) *APIError {
	return New(http.StatusNotFound, CodeNotFound, fmt.Sprintf("paper %s not found", id))
}

func NewAlreadyPublished(id string) *APIError {
	return New(http.StatusConflict, CodeAlreadyPublished, fmt.Sprintf("paper %s is already published", id))
}

// NewTransport wraps a failed remote call. The underlying message is kept so
// views can surface it.
func NewTransport(err error) *APIError {
	return New(0, CodeTransport, fmt.Sprintf("request failed: %v", err))
}

// FromResponse rebuilds an APIError from a response status, code and message.
// The message is preserved verbatim; an unknown code is inferred from the
// status so older servers still map onto the taxonomy.
func FromResponse(status int, code Code, message string) *APIError {
	if code == "" {
		switch status {
		case http.StatusBadRequest:
			code = CodeValidation
		case http.StatusUnauthorized:
			code = CodeAuth
		case http.StatusForbidden:
			code = CodeForbidden
		case http.StatusNotFound:
			code = CodeNotFound
		case http.StatusConflict:
			code = CodeAlreadyPublished
		default:
			code = CodeInternal
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return New(status, code, message)
}

// AsAPIError unwraps err into an APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// HasCode reports whether err is an APIError with the given code.
func HasCode(err error, code Code) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == code
}

func IsValidation(err error) bool { return HasCode(err, CodeValidation) }

func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

func IsAlreadyPublished(err error) bool { return HasCode(err, CodeAlreadyPublished) }

package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrAuthentication       = errors.New("authentication failed")
	ErrValidation           = errors.New("validation failed")
	ErrAuthorizationExpired = errors.New("authorization expired")
	ErrNetwork              = errors.New("network error")
	ErrBackend              = errors.New("backend error")
)

// BackendError is a non-2xx answer from the backend, passed through verbatim.
type BackendError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

// NewBackendError builds a BackendError and extracts the backend's message
// from a `{"message": "..."}` body when there is one.
func NewBackendError(method, path string, statusCode int, body []byte) *BackendError {
	return &BackendError{
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Message:    MessageFromBody(body),
		Body:       body,
	}
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

// AuthorizationExpiredError is returned for a 401 on any request other than
// the login call. By the time the caller sees it the session that Token
// belonged to is gone.
type AuthorizationExpiredError struct {
	Cause *BackendError
	// Token is the bearer the rejected request carried, empty when none.
	Token string
}

func (e *AuthorizationExpiredError) Error() string {
	return fmt.Sprintf("authorization expired: %s", e.Cause)
}

func (e *AuthorizationExpiredError) Is(target error) bool {
	return target == ErrAuthorizationExpired
}

func (e *AuthorizationExpiredError) Unwrap() error {
	return e.Cause
}

// NetworkError wraps a transport failure; no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthenticationError means the backend rejected the credentials.
type AuthenticationError struct {
	Message string
	Cause   error
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return ErrAuthentication.Error()
	}
	return fmt.Sprintf("%s: %s", ErrAuthentication, e.Message)
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// ValidationError carries the per-field messages of a rejected payload, either
// reported by the backend (`errors` object) or found by a local required-field check.
type ValidationError struct {
	Message string
	Fields  map[string][]string
	Cause   error
}

// NewValidationError builds a ValidationError out of a backend rejection.
func NewValidationError(cause *BackendError) *ValidationError {
	return &ValidationError{
		Message: cause.Message,
		Fields:  FieldErrorsFromBody(cause.Body),
		Cause:   cause,
	}
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrValidation.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(&b, "; %s: %s", field, strings.Join(e.Fields[field], ", "))
	}

	return b.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// MessageFromBody returns the top-level "message" of a JSON error body.
func MessageFromBody(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	return gjson.GetBytes(body, "message").String()
}

// FieldErrorsFromBody reads a `{"errors": {"field": ["msg", ...]}}` object.
// A field holding a single string is accepted too.
func FieldErrorsFromBody(body []byte) map[string][]string {
	if !gjson.ValidBytes(body) {
		return nil
	}

	result := gjson.GetBytes(body, "errors")
	if !result.IsObject() {
		return nil
	}

	fields := make(map[string][]string)
	result.ForEach(func(key, value gjson.Result) bool {
		if value.IsArray() {
			for _, msg := range value.Array() {
				fields[key.String()] = append(fields[key.String()], msg.String())
			}
		} else {
			fields[key.String()] = []string{value.String()}
		}
		return true
	})

	return fields
}

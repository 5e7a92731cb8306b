// Package errs defines babylog's error taxonomy on top of errbuilder.
package errs

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Category classifies an error for handling at the top level.
type Category string

const (
	CategoryMalformedInput Category = "malformed_input"
	CategoryConfiguration  Category = "configuration"
	CategorySink           Category = "sink"
)

// Error is a categorized babylog error.
type Error struct {
	*errbuilder.ErrBuilder
	Category Category
	Line     int // source row, 0 when not tied to a row
}

func (e *Error) Error() string {
	msg := e.ErrBuilder.Msg
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if cause := e.ErrBuilder.Unwrap(); cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, msg, cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, msg)
}

func (e *Error) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// MalformedInput reports a source row that cannot be parsed.
// field and value are attached as details.
func MalformedInput(line int, field, value, msg string) *Error {
	details := errbuilder.ErrorMap{}
	details.Set("field", errors.New(field))
	details.Set("value", errors.New(value))

	b := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg).
		WithDetails(errbuilder.NewErrDetails(details))
	return &Error{ErrBuilder: b, Category: CategoryMalformedInput, Line: line}
}

// WrapMalformed is MalformedInput with an underlying parse error.
func WrapMalformed(line int, field, value string, cause error) *Error {
	e := MalformedInput(line, field, value, fmt.Sprintf("invalid %s %q", field, value))
	e.ErrBuilder = e.ErrBuilder.WithCause(cause)
	return e
}

// Configuration reports an unusable setting.
func Configuration(msg string, cause error) *Error {
	b := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(msg)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return &Error{ErrBuilder: b, Category: CategoryConfiguration}
}

// Sink reports a failed delivery. The code follows the HTTP status:
// 429 is ResourceExhausted, 5xx and transport failures are Unavailable,
// anything else is InvalidArgument.
func Sink(status int, cause error) *Error {
	code := errbuilder.CodeInvalidArgument
	switch {
	case status == http.StatusTooManyRequests:
		code = errbuilder.CodeResourceExhausted
	case status == 0 || status >= 500:
		code = errbuilder.CodeUnavailable
	}
	msg := "delivery failed"
	if status > 0 {
		msg = fmt.Sprintf("delivery failed: HTTP %d", status)
	}
	b := errbuilder.New().WithCode(code).WithMsg(msg)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return &Error{ErrBuilder: b, Category: CategorySink}
}

// Is reports whether err is a babylog error of the given category.
func Is(err error, c Category) bool {
	var e *Error
	return errors.As(err, &e) && e.Category == c
}

// Retryable reports whether a sink error is worth another attempt.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.ErrBuilder.ErrCode() {
	case errbuilder.CodeUnavailable, errbuilder.CodeResourceExhausted:
		return true
	default:
		return false
	}
}

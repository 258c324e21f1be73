// Package errorx attaches registered codes to errors so handlers can map them to responses.
package errorx

import (
	"errors"
	"fmt"
)

type withCode struct {
	msg   string
	code  int
	cause error
}

func (w *withCode) Error() string {
	if w.cause == nil {
		return w.msg
	}
	if w.msg == "" {
		return w.cause.Error()
	}
	return w.msg + ": " + w.cause.Error()
}

func (w *withCode) Unwrap() error { return w.cause }

// Code returns the code attached to this error.
func (w *withCode) Code() int { return w.code }

// WithCode creates a new error carrying code.
func WithCode(code int, format string, args ...any) error {
	return &withCode{msg: fmt.Sprintf(format, args...), code: code}
}

// WrapC wraps err with a message and code. It returns nil when err is nil.
func WrapC(err error, code int, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &withCode{msg: fmt.Sprintf(format, args...), code: code, cause: err}
}

func Is(err, target error) bool    { return errors.Is(err, target) }
func As(err error, target any) bool { return errors.As(err, target) }
func Unwrap(err error) error        { return errors.Unwrap(err) }

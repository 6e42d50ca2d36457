// SPDX-FileCopyrightText: Copyright 2026 Pipewright Authors
// SPDX-License-Identifier: Apache-2.0

package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// CodedError is an error annotated with the HTTP status it should produce.
// Handlers unwrap it with [Code] at the response boundary, so the packages
// that generate errors never touch the ResponseWriter themselves.
type CodedError struct {
	err  error
	code int
}

// New builds a coded error from a plain message.
func New(message string, code int) error {
	return &CodedError{err: errors.New(message), code: code}
}

// Newf builds a coded error from a format string. Format verbs behave as in
// fmt.Errorf, including %w wrapping.
func Newf(code int, format string, args ...any) error {
	return &CodedError{err: fmt.Errorf(format, args...), code: code}
}

// WithCode annotates an existing error with a status code. A nil err stays
// nil.
func WithCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &CodedError{err: err, code: code}
}

// Code returns the status code for an error chain: the outermost
// CodedError's code, 500 when no CodedError is present, and 200 for nil.
func Code(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return http.StatusInternalServerError
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	return e.err.Error()
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *CodedError) Unwrap() error {
	return e.err
}

// HTTPCode returns the status code the error carries.
func (e *CodedError) HTTPCode() int {
	return e.code
}

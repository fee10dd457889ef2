/*
 * Copyright 2026 The CoEdit Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import (
	"errors"
)

// StatusError is an error that carries a status code. It allows type-safe
// error handling across package boundaries without string matching.
type StatusError interface {
	error
	Status() StatusCode
}

type statusError struct {
	err    error
	status StatusCode
}

// Error returns the error message.
func (e statusError) Error() string {
	return e.err.Error()
}

// Status returns the status code of the error.
func (e statusError) Status() StatusCode {
	return e.status
}

// Unwrap returns the underlying error for error chain compatibility.
func (e statusError) Unwrap() error {
	return e.err
}

func newStatusError(message string, status StatusCode) StatusError {
	return statusError{
		err:    errors.New(message),
		status: status,
	}
}

// NotFound creates a new "not found" error.
func NotFound(message string) StatusError {
	return newStatusError(message, CodeNotFound)
}

// InvalidArgument creates a new "invalid argument" error.
func InvalidArgument(message string) StatusError {
	return newStatusError(message, CodeInvalidArgument)
}

// AlreadyExists creates a new "already exists" error.
func AlreadyExists(message string) StatusError {
	return newStatusError(message, CodeAlreadyExists)
}

// PermissionDenied creates a new "permission denied" error.
func PermissionDenied(message string) StatusError {
	return newStatusError(message, CodePermissionDenied)
}

// FailedPrecond creates a new "failed precondition" error.
func FailedPrecond(message string) StatusError {
	return newStatusError(message, CodeFailedPrecondition)
}

// Unauthenticated creates a new "unauthenticated" error.
func Unauthenticated(message string) StatusError {
	return newStatusError(message, CodeUnauthenticated)
}

// Internal creates a new "internal" error.
func Internal(message string) StatusError {
	return newStatusError(message, CodeInternal)
}

// Unavailable creates a new "unavailable" error.
func Unavailable(message string) StatusError {
	return newStatusError(message, CodeUnavailable)
}

// StatusOf extracts the status code from an error, unwrapping if needed.
// It returns 0 if the error carries no status.
func StatusOf(err error) StatusCode {
	if err == nil {
		return 0
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status()
	}

	return 0
}

// IsStatus checks if the given error has the specified status code.
func IsStatus(err error, code StatusCode) bool {
	return StatusOf(err) == code
}

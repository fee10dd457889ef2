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

// Package errors provides server-side error management with structured
// status codes so that the gateway can translate errors into transport
// responses without inspecting error strings.
package errors

import (
	"fmt"
	"net/http"
)

// StatusCode represents the error codes used throughout the server.
type StatusCode int

const (
	// CodeInvalidArgument indicates that the client specified an invalid
	// argument, regardless of the state of the system.
	CodeInvalidArgument StatusCode = 3

	// CodeNotFound indicates that some requested entity was not found.
	CodeNotFound StatusCode = 5

	// CodeAlreadyExists indicates that the entity that a client attempted to
	// create already exists.
	CodeAlreadyExists StatusCode = 6

	// CodePermissionDenied indicates that the caller does not have permission
	// to execute the specified operation.
	CodePermissionDenied StatusCode = 7

	// CodeFailedPrecondition indicates that the operation was rejected because
	// the system is not in a state required for the operation's execution.
	CodeFailedPrecondition StatusCode = 9

	// CodeInternal indicates that some invariants expected by the underlying
	// system have been broken.
	CodeInternal StatusCode = 13

	// CodeUnavailable indicates that the service or one of its dependencies,
	// such as the durable store, is currently unreachable.
	CodeUnavailable StatusCode = 14

	// CodeUnauthenticated indicates that the request does not have valid
	// authentication credentials.
	CodeUnauthenticated StatusCode = 16
)

// String returns the string representation of the status code.
func (c StatusCode) String() string {
	switch c {
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeNotFound:
		return "not_found"
	case CodeAlreadyExists:
		return "already_exists"
	case CodePermissionDenied:
		return "permission_denied"
	case CodeFailedPrecondition:
		return "failed_precondition"
	case CodeInternal:
		return "internal"
	case CodeUnavailable:
		return "unavailable"
	case CodeUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("code_%d", int(c))
	}
}

// HTTPStatus returns the HTTP status code this status code maps to.
func (c StatusCode) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument, CodeFailedPrecondition:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError returns true if the status code represents a client-side error.
func (c StatusCode) IsClientError() bool {
	switch c {
	case CodeInvalidArgument, CodeNotFound, CodeAlreadyExists,
		CodePermissionDenied, CodeFailedPrecondition, CodeUnauthenticated:
		return true
	default:
		return false
	}
}

// IsServerError returns true if the status code represents a server-side error.
func (c StatusCode) IsServerError() bool {
	switch c {
	case CodeInternal, CodeUnavailable:
		return true
	default:
		return false
	}
}

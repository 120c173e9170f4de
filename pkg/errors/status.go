/*
 * Copyright 2026 The License Curator Authors. All rights reserved.
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

// Package errors provides structured error statuses shared by the document
// store transport, the curation client and the CLI.
package errors

import "fmt"

// StatusCode classifies an error. The numeric values follow the gRPC/Connect
// code space so they stay stable if the codes ever cross a wire.
type StatusCode int

const (
	// ErrCodeInvalidArgument indicates a malformed request, either caught
	// before sending or rejected by the document store.
	ErrCodeInvalidArgument StatusCode = 3

	// ErrCodeNotFound indicates that the targeted document does not exist.
	ErrCodeNotFound StatusCode = 5

	// ErrCodeFailedPrecondition indicates that the presented revision is not
	// the current revision of the document.
	ErrCodeFailedPrecondition StatusCode = 9

	// ErrCodeInternal indicates that the store answered with something the
	// client could not interpret.
	ErrCodeInternal StatusCode = 13

	// ErrCodeUnavailable indicates a network, DNS, timeout or server-side
	// failure. The outcome of a write that failed this way is unknown.
	ErrCodeUnavailable StatusCode = 14

	// ErrCodeUnauthenticated indicates that the store rejected the credentials.
	ErrCodeUnauthenticated StatusCode = 16
)

// String returns the string representation of the status code.
func (c StatusCode) String() string {
	switch c {
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeFailedPrecondition:
		return "failed_precondition"
	case ErrCodeInternal:
		return "internal"
	case ErrCodeUnavailable:
		return "unavailable"
	case ErrCodeUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("code_%d", int(c))
	}
}

// IsClientError returns true if the code points at the caller's request or
// the caller's view of the document.
func (c StatusCode) IsClientError() bool {
	switch c {
	case ErrCodeInvalidArgument, ErrCodeNotFound, ErrCodeFailedPrecondition,
		ErrCodeUnauthenticated:
		return true
	default:
		return false
	}
}

// IsServerError returns true if the code points at the store or the network.
func (c StatusCode) IsServerError() bool {
	switch c {
	case ErrCodeInternal, ErrCodeUnavailable:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether a caller may retry after this code. A failed
// precondition is only retryable after re-reading the document.
func (c StatusCode) IsRetryable() bool {
	return c == ErrCodeUnavailable || c == ErrCodeFailedPrecondition
}

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

package couchdb

import (
	"context"
	goerrors "errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sw360/license-curator/pkg/errors"
)

var (
	// ErrTransport is returned when the store could not be reached, did not
	// answer in time or failed on its side.
	ErrTransport = errors.Unavailable("document store unavailable").WithCode("ErrTransport")

	// ErrOutcomeUnknown is returned with ErrTransport when a write failed in
	// a way that leaves its effect unknown. Read the document before
	// retrying.
	ErrOutcomeUnknown = errors.Unavailable("outcome of write unknown").WithCode("ErrOutcomeUnknown")

	// ErrUnauthorized is returned when the store rejects the credentials.
	ErrUnauthorized = errors.Unauthenticated("unauthorized").WithCode("ErrUnauthorized")

	// ErrDocumentNotFound is returned when the document or the database does
	// not exist.
	ErrDocumentNotFound = errors.NotFound("document not found").WithCode("ErrDocumentNotFound")

	// ErrRevisionConflict is returned when the presented revision is not the
	// current revision of the document.
	ErrRevisionConflict = errors.FailedPrecond("revision conflict").WithCode("ErrRevisionConflict")

	// ErrValidation is returned when the request is malformed.
	ErrValidation = errors.InvalidArgument("invalid request").WithCode("ErrValidation")

	// ErrUnexpectedResponse is returned when a successful response can not
	// be decoded.
	ErrUnexpectedResponse = errors.Internal("unexpected response from document store").WithCode("ErrUnexpectedResponse")
)

// errorBody is the body of an error response.
type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// errorOfStatus returns the sentinel error for the given HTTP status code.
func errorOfStatus(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType:
		return ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrDocumentNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		return ErrRevisionConflict
	default:
		return ErrTransport
	}
}

// statusError builds the error of a non-2xx response.
func statusError(method, path string, status int, body *errorBody) error {
	err := fmt.Errorf("%s %s: %d: %w", method, path, status, errorOfStatus(status))
	if body == nil || (body.Error == "" && body.Reason == "") {
		return err
	}

	return errors.WithMetadata(err, map[string]string{
		"error":  body.Error,
		"reason": body.Reason,
	})
}

// transportError builds the error of a request that got no response.
// write marks requests that may have changed the store.
func transportError(method, path string, write bool, cause error) error {
	if write {
		return fmt.Errorf("%s %s: %w: %w: %w", method, path, ErrTransport, ErrOutcomeUnknown, cause)
	}
	return fmt.Errorf("%s %s: %w: %w", method, path, ErrTransport, cause)
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if goerrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return goerrors.As(err, &netErr) && netErr.Timeout()
}

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

package curation

import (
	"errors"

	"github.com/sw360/license-curator/pkg/couchdb"
)

// Errors returned by the client. Every error of an operation wraps exactly
// one of the kind sentinels, so they can be checked with errors.Is.
var (
	// ErrTransport is returned when the store can not be reached, times
	// out or fails on its side.
	ErrTransport = couchdb.ErrTransport

	// ErrOutcomeUnknown accompanies ErrTransport on writes whose effect is
	// unknown.
	ErrOutcomeUnknown = couchdb.ErrOutcomeUnknown

	// ErrUnauthorized is returned when the store rejects the credentials.
	ErrUnauthorized = couchdb.ErrUnauthorized

	// ErrNotFound is returned when the document does not exist.
	ErrNotFound = couchdb.ErrDocumentNotFound

	// ErrRevisionConflict is returned when the presented revision is stale.
	ErrRevisionConflict = couchdb.ErrRevisionConflict

	// ErrValidation is returned when the input is rejected before sending
	// or by the store.
	ErrValidation = couchdb.ErrValidation

	// ErrUnexpectedResponse is returned when the store answers with
	// something that is not the expected document shape.
	ErrUnexpectedResponse = couchdb.ErrUnexpectedResponse
)

// Kind classifies the errors of the client.
type Kind int

// Kinds of errors.
const (
	KindNone Kind = iota
	KindTransport
	KindUnauthorized
	KindNotFound
	KindRevisionConflict
	KindValidation
	KindUnexpectedResponse
	KindUnknown
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindTransport:
		return "Transport"
	case KindUnauthorized:
		return "Unauthorized"
	case KindNotFound:
		return "NotFound"
	case KindRevisionConflict:
		return "RevisionConflict"
	case KindValidation:
		return "Validation"
	case KindUnexpectedResponse:
		return "UnexpectedResponse"
	default:
		return "Unknown"
	}
}

// KindOf returns the kind of the given error.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrRevisionConflict):
		return KindRevisionConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrUnexpectedResponse):
		return KindUnexpectedResponse
	case errors.Is(err, ErrTransport), errors.Is(err, ErrOutcomeUnknown):
		return KindTransport
	default:
		return KindUnknown
	}
}
